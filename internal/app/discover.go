package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/labmatch/labmatch"
)

// discoverView is the Discover tab: search form, live scan, card stack and
// the two end states.
type discoverView struct {
	u *uiState

	root    *fyne.Container
	welcome fyne.CanvasObject
	scan    *scanView
	cards   fyne.CanvasObject
	empty   fyne.CanvasObject
	done    fyne.CanvasObject

	urlEntry    *widget.Entry
	promptEntry *widget.Entry
	startBtn    *widget.Button
	uploadBtn   *widget.Button
	resumeInfo  *widget.Label
	stack       *cardStack
	counter     *widget.Label
	emptyNotice *widget.Label
	doneCounts  *widget.Label
	passBtn     *widget.Button
	likeBtn     *widget.Button

	stage labmatch.Stage
	shown string
}

func newDiscoverView(u *uiState) *discoverView {
	v := &discoverView{u: u, stage: labmatch.StageWelcome}

	v.urlEntry = widget.NewEntry()
	v.urlEntry.SetPlaceHolder("https://cs.university.edu/people/faculty")
	v.urlEntry.OnSubmitted = func(string) { v.onStart() }
	v.promptEntry = widget.NewMultiLineEntry()
	v.promptEntry.Wrapping = fyne.TextWrapWord
	v.promptEntry.SetMinRowsVisible(4)
	v.promptEntry.SetPlaceHolder("What are you looking for? e.g. undergrad-friendly robotics labs")
	v.startBtn = widget.NewButtonWithIcon("Start Scanning", theme.SearchIcon(), func() { v.onStart() })
	v.startBtn.Importance = widget.HighImportance
	v.uploadBtn = widget.NewButtonWithIcon("Upload Resume (PDF)", theme.UploadIcon(), func() { v.onUploadResume() })
	v.resumeInfo = widget.NewLabel("")
	v.resumeInfo.Wrapping = fyne.TextWrapWord
	v.resumeInfo.Hide()

	v.welcome = container.NewVBox(
		widget.NewLabelWithStyle("Find Your Research Lab", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Paste a department faculty page and let the agent find professors for you.", fyne.TextAlignCenter, fyne.TextStyle{}),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("University URL", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		v.urlEntry,
		widget.NewLabelWithStyle("Research Interests", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		v.promptEntry,
		v.uploadBtn,
		v.resumeInfo,
		v.startBtn,
	)

	v.scan = newScanView()

	v.stack = newCardStack(v.onDecided)
	v.counter = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})
	v.passBtn = widget.NewButtonWithIcon("Pass", theme.CancelIcon(), func() { v.stack.Commit(labmatch.DecisionPass) })
	v.passBtn.Importance = widget.DangerImportance
	v.likeBtn = widget.NewButtonWithIcon("Like", theme.ConfirmIcon(), func() { v.stack.Commit(labmatch.DecisionLike) })
	v.likeBtn.Importance = widget.SuccessImportance
	buttons := container.NewGridWithColumns(2, v.passBtn, v.likeBtn)
	v.cards = container.NewBorder(v.counter, buttons, nil, nil, container.NewPadded(v.stack))

	v.emptyNotice = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	v.emptyNotice.Wrapping = fyne.TextWrapWord
	v.empty = container.NewCenter(container.NewVBox(
		widget.NewIcon(theme.SearchIcon()),
		widget.NewLabelWithStyle("No professors found", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		v.emptyNotice,
		widget.NewButtonWithIcon("Try Another URL", theme.ViewRefreshIcon(), func() { v.onStartOver() }),
	))
	v.doneCounts = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})
	v.done = container.NewCenter(container.NewVBox(
		widget.NewIcon(theme.ConfirmIcon()),
		widget.NewLabelWithStyle("All caught up!", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		v.doneCounts,
		widget.NewLabelWithStyle("Check your Liked tab to review your matches.", fyne.TextAlignCenter, fyne.TextStyle{}),
		widget.NewButtonWithIcon("Start Over", theme.ViewRefreshIcon(), func() { v.onStartOver() }),
	))

	v.root = container.NewStack(container.NewPadded(v.welcome))
	v.shown = v.cardKey(labmatch.DiscoverState{})
	return v
}

func (v *discoverView) onStart() {
	rawURL := v.urlEntry.Text
	prompt := v.promptEntry.Text
	if strings.TrimSpace(rawURL) == "" {
		dialog.ShowInformation("URL Required", "Please enter a university URL to start scanning.", v.u.w)
		return
	}
	v.startBtn.Disable()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), v.u.cfg.RequestTimeout())
		defer cancel()
		err := v.u.discovery.Start(ctx, rawURL, prompt)
		fyne.Do(func() {
			v.startBtn.Enable()
			if err == nil {
				return
			}
			if errors.Is(err, labmatch.ErrURLRequired) {
				dialog.ShowInformation("URL Required", "Please enter a university URL to start scanning.", v.u.w)
				return
			}
			dialog.ShowError(fmt.Errorf("failed to start crawling session: %w", err), v.u.w)
		})
	}()
}

func (v *discoverView) onUploadResume() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.u.w)
			return
		}
		if rc == nil {
			return
		}
		name := filepath.Base(rc.URI().Path())
		v.uploadBtn.Disable()
		v.resumeInfo.SetText("Analyzing " + name + "...")
		v.resumeInfo.Show()
		go func() {
			defer rc.Close()
			ctx, cancel := context.WithTimeout(context.Background(), v.u.cfg.RequestTimeout())
			defer cancel()
			out, err := v.u.client.ParseResume(ctx, name, rc)
			fyne.Do(func() { v.applyResume(name, out, err) })
		}()
	}, v.u.w)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	fd.Show()
}

func (v *discoverView) applyResume(name string, out labmatch.ResumeSummary, err error) {
	v.uploadBtn.Enable()
	if err != nil {
		v.resumeInfo.Hide()
		v.u.logger.Printf("resume %s: %v", name, err)
		dialog.ShowError(fmt.Errorf("could not read resume: %w", err), v.u.w)
		return
	}
	v.resumeInfo.SetText("Resume analyzed: " + name)
	if out.Summary == "" {
		return
	}
	v.promptEntry.SetText(out.Summary)
	dialog.ShowInformation("Resume Analyzed", "Your research interests were filled in from "+name+".", v.u.w)
}

func (v *discoverView) onDecided(d labmatch.Decision) {
	v.u.discovery.Decide(d)
}

func (v *discoverView) onStartOver() {
	v.u.discovery.Reset()
	v.urlEntry.SetText("")
	v.promptEntry.SetText("")
	v.resumeInfo.Hide()
}

// apply renders a snapshot. It must run on the UI goroutine.
func (v *discoverView) apply(st labmatch.DiscoverState) {
	switch st.Stage {
	case labmatch.StageScanning:
		v.scan.update(st.Events)
	case labmatch.StageCards:
		if key := v.cardKey(st); key != v.shown {
			v.shown = key
			var front, back *labmatch.Professor
			if p, ok := st.Current(); ok {
				front = &p
			}
			if p, ok := st.Next(); ok {
				back = &p
			}
			v.stack.SetCards(front, back)
		}
		v.counter.SetText(fmt.Sprintf("%d of %d", st.Index+1, len(st.Cards)))
	case labmatch.StageCaughtUp:
		v.doneCounts.SetText(reviewSummary(len(st.Cards), v.u.liked.Len()))
	case labmatch.StageNoResults:
		v.emptyNotice.SetText(st.Notice)
		if st.Notice == "" {
			v.emptyNotice.Hide()
		} else {
			v.emptyNotice.Show()
		}
	}
	if st.Stage != labmatch.StageCards {
		v.shown = v.cardKey(labmatch.DiscoverState{})
	}
	if st.Stage == v.stage && len(v.root.Objects) > 0 {
		return
	}
	v.stage = st.Stage
	v.root.Objects = []fyne.CanvasObject{container.NewPadded(v.viewFor(st.Stage))}
	v.root.Refresh()
}

func reviewSummary(reviewed, liked int) string {
	noun := "professors"
	if reviewed == 1 {
		noun = "professor"
	}
	return fmt.Sprintf("You reviewed %d %s and liked %d.", reviewed, noun, liked)
}

func (v *discoverView) viewFor(stage labmatch.Stage) fyne.CanvasObject {
	switch stage {
	case labmatch.StageScanning:
		return v.scan.root
	case labmatch.StageCards:
		return v.cards
	case labmatch.StageNoResults:
		return v.empty
	case labmatch.StageCaughtUp:
		return v.done
	}
	return v.welcome
}

func (v *discoverView) cardKey(st labmatch.DiscoverState) string {
	p, ok := st.Current()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s#%d#%s", st.SessionID, st.Index, p.ID)
}
