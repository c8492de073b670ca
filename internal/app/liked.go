package app

import (
	"fmt"
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/labmatch/labmatch"
)

// likedView lists the liked professors.
type likedView struct {
	u *uiState

	root  *fyne.Container
	count *widget.Label
	list  *widget.List
	empty fyne.CanvasObject
	body  *fyne.Container
	items []labmatch.Professor
}

func newLikedView(u *uiState) *likedView {
	v := &likedView{u: u}
	v.count = widget.NewLabel("")
	v.list = widget.NewList(
		func() int { return len(v.items) },
		newLikedRowTemplate,
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(v.items) {
				return
			}
			v.updateRow(obj, v.items[id])
		},
	)
	v.list.OnSelected = func(id widget.ListItemID) {
		v.list.UnselectAll()
		if id >= 0 && id < len(v.items) {
			v.open(v.items[id])
		}
	}
	v.empty = container.NewCenter(container.NewVBox(
		widget.NewIcon(theme.AccountIcon()),
		widget.NewLabelWithStyle("No liked professors yet", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Swipe right on professors you're interested in\nto save them here.", fyne.TextAlignCenter, fyne.TextStyle{}),
	))
	v.body = container.NewStack(v.empty)
	header := container.NewVBox(
		widget.NewLabelWithStyle("Liked Professors", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		v.count,
		widget.NewSeparator(),
	)
	v.root = container.NewBorder(header, nil, nil, nil, v.body)
	v.apply(nil)
	return v
}

// apply renders the liked list. It must run on the UI goroutine.
func (v *likedView) apply(items []labmatch.Professor) {
	v.items = items
	v.count.SetText(savedCount(len(items)))
	var content fyne.CanvasObject = v.list
	if len(items) == 0 {
		content = v.empty
	}
	if len(v.body.Objects) != 1 || v.body.Objects[0] != content {
		v.body.Objects = []fyne.CanvasObject{content}
		v.body.Refresh()
	}
	v.list.Refresh()
}

func savedCount(n int) string {
	if n == 1 {
		return "1 professor saved"
	}
	return fmt.Sprintf("%d professors saved", n)
}

func newLikedRowTemplate() fyne.CanvasObject {
	avatar := widget.NewLabelWithStyle("?", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	name := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	name.Truncation = fyne.TextTruncateEllipsis
	detail := widget.NewLabel("")
	detail.Truncation = fyne.TextTruncateEllipsis
	keywords := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Italic: true})
	keywords.Truncation = fyne.TextTruncateEllipsis
	match := widget.NewLabelWithStyle("", fyne.TextAlignTrailing, fyne.TextStyle{Bold: true})
	match.Importance = widget.SuccessImportance
	remove := widget.NewButtonWithIcon("", theme.CancelIcon(), nil)
	email := widget.NewButtonWithIcon("", theme.MailComposeIcon(), nil)
	actions := container.NewVBox(match, container.NewHBox(remove, email))
	return container.NewBorder(nil, nil, avatar, actions, container.NewVBox(name, detail, keywords))
}

func (v *likedView) updateRow(obj fyne.CanvasObject, p labmatch.Professor) {
	row := obj.(*fyne.Container)
	center := row.Objects[0].(*fyne.Container)
	avatar := row.Objects[1].(*widget.Label)
	actions := row.Objects[2].(*fyne.Container)

	avatar.SetText(p.Initial())
	center.Objects[0].(*widget.Label).SetText(p.DisplayName())
	center.Objects[1].(*widget.Label).SetText(joinNonEmpty(" · ", p.Title, p.School))
	center.Objects[2].(*widget.Label).SetText(strings.Join(p.TopKeywords(2), ", "))

	actions.Objects[0].(*widget.Label).SetText(p.MatchLabel())
	buttons := actions.Objects[1].(*fyne.Container)
	id := p.ID
	buttons.Objects[0].(*widget.Button).OnTapped = func() { v.u.liked.Remove(id) }
	buttons.Objects[1].(*widget.Button).OnTapped = func() { v.draftEmail(p) }
}

func (v *likedView) open(p labmatch.Professor) {
	if strings.TrimSpace(p.PrimaryURL) == "" {
		return
	}
	u, err := url.Parse(p.PrimaryURL)
	if err != nil {
		v.u.logger.Printf("open %s: %v", p.PrimaryURL, err)
		return
	}
	if err := fyne.CurrentApp().OpenURL(u); err != nil {
		v.u.logger.Printf("open %s: %v", p.PrimaryURL, err)
	}
}

func (v *likedView) draftEmail(p labmatch.Professor) {
	v.u.logger.Printf("draft email for: %s", p.DisplayName())
	dialog.ShowInformation("Draft Email", "Email drafting for "+p.DisplayName()+" is coming soon.", v.u.w)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, sep)
}
