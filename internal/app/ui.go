package app

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/labmatch/labmatch"
)

const windowTitle = "LabMatch"

type uiDeps struct {
	cfg       labmatch.Config
	client    *labmatch.Client
	discovery *labmatch.Discovery
	liked     *labmatch.LikedStore
	logger    *log.Logger
	logBind   binding.String
}

type uiState struct {
	cfg       labmatch.Config
	client    *labmatch.Client
	discovery *labmatch.Discovery
	liked     *labmatch.LikedStore
	logger    *log.Logger

	w          fyne.Window
	tabs       *container.AppTabs
	likedTab   *container.TabItem
	banner     *widget.Label
	bannerBox  *fyne.Container
	status     *widget.Label
	statusBind binding.String
	logBind    binding.String
	log        *widget.Entry

	discover  *discoverView
	likedView *likedView
	unsubs    []func()
}

func buildUI(a fyne.App, deps uiDeps) *uiState {
	u := &uiState{
		cfg:       deps.cfg,
		client:    deps.client,
		discovery: deps.discovery,
		liked:     deps.liked,
		logger:    deps.logger,
		logBind:   deps.logBind,
	}
	if u.logBind == nil {
		u.logBind = binding.NewString()
	}
	u.w = a.NewWindow(windowTitle)

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set("Ready")
	u.status = widget.NewLabelWithData(u.statusBind)
	u.status.Truncation = fyne.TextTruncateEllipsis

	u.banner = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	u.banner.Importance = widget.WarningImportance
	u.banner.Wrapping = fyne.TextWrapWord
	u.bannerBox = container.NewVBox(container.NewBorder(nil, nil, widget.NewIcon(theme.WarningIcon()), nil, u.banner), widget.NewSeparator())
	u.bannerBox.Hide()

	u.log = widget.NewEntryWithData(u.logBind)
	u.log.MultiLine = true
	u.log.Wrapping = fyne.TextWrapWord
	u.log.SetPlaceHolder("Agent log")
	u.log.SetMinRowsVisible(6)
	u.log.Disable()

	u.discover = newDiscoverView(u)
	u.likedView = newLikedView(u)

	discoverTab := container.NewTabItemWithIcon("Discover", theme.SearchIcon(), u.discover.root)
	u.likedTab = container.NewTabItemWithIcon(likedTabTitle(0), theme.ListIcon(), u.likedView.root)
	u.tabs = container.NewAppTabs(discoverTab, u.likedTab)
	u.tabs.SetTabLocation(container.TabLocationBottom)

	logs := widget.NewAccordion(widget.NewAccordionItem("Agent Log", u.log))
	footer := container.NewVBox(widget.NewSeparator(), u.status, logs)
	u.w.SetContent(container.NewBorder(u.bannerBox, footer, nil, nil, u.tabs))
	u.w.Resize(fyne.NewSize(u.cfg.Window.Width, u.cfg.Window.Height))

	u.unsubs = append(u.unsubs,
		u.discovery.OnChange(func(st labmatch.DiscoverState) {
			fyne.Do(func() { u.applyDiscover(st) })
		}),
		u.liked.Subscribe(func(items []labmatch.Professor) {
			fyne.Do(func() { u.applyLiked(items) })
		}),
	)
	u.discovery.OnError(func(err error) {
		fyne.Do(func() { dialog.ShowError(err, u.w) })
	})
	return u
}

func (u *uiState) applyDiscover(st labmatch.DiscoverState) {
	u.discover.apply(st)
	u.setStatus(statusText(st))
}

func (u *uiState) applyLiked(items []labmatch.Professor) {
	u.likedView.apply(items)
	u.likedTab.Text = likedTabTitle(len(items))
	u.tabs.Refresh()
}

func (u *uiState) setHealth(h labmatch.Health) {
	text := labmatch.HealthBanner(h)
	u.banner.SetText(text)
	if text == "" {
		u.bannerBox.Hide()
	} else {
		u.bannerBox.Show()
	}
}

func (u *uiState) setStatus(text string) {
	_ = u.statusBind.Set(text)
}

func (u *uiState) close() {
	for _, fn := range u.unsubs {
		fn()
	}
	u.unsubs = nil
}

func likedTabTitle(n int) string {
	if n == 0 {
		return "Liked"
	}
	return fmt.Sprintf("Liked (%d)", n)
}

func statusText(st labmatch.DiscoverState) string {
	switch st.Stage {
	case labmatch.StageScanning:
		return st.Summary().Status
	case labmatch.StageCards:
		text := fmt.Sprintf("%d professors found", len(st.Cards))
		if st.Notice != "" {
			text += " (" + st.Notice + ")"
		}
		return text
	case labmatch.StageNoResults:
		if st.Notice != "" {
			return "Scan stopped: " + st.Notice
		}
		return "No professors found"
	case labmatch.StageCaughtUp:
		return "All caught up"
	}
	return "Ready"
}
