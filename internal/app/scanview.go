package app

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/labmatch/labmatch"
)

// scanView is the live visualizer shown while a crawl runs.
type scanView struct {
	root       fyne.CanvasObject
	professors *widget.Label
	pages      *widget.Label
	status     *widget.Label
	url        *widget.Label
	spinner    *widget.ProgressBarInfinite
	feed       *widget.List
	rows       []labmatch.FeedRow
}

func newScanView() *scanView {
	v := &scanView{}
	v.professors = widget.NewLabelWithStyle("0", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	v.pages = widget.NewLabelWithStyle("0", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	v.status = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	v.status.Truncation = fyne.TextTruncateEllipsis
	v.url = widget.NewLabel("")
	v.url.Truncation = fyne.TextTruncateEllipsis
	v.url.Hide()
	v.spinner = widget.NewProgressBarInfinite()

	v.feed = widget.NewList(
		func() int { return len(v.rows) },
		newFeedRowTemplate,
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(v.rows) {
				return
			}
			updateFeedRow(obj, v.rows[id])
		},
	)

	hud := container.NewGridWithColumns(2,
		container.NewVBox(v.professors, widget.NewLabelWithStyle("Professors Found", fyne.TextAlignCenter, fyne.TextStyle{})),
		container.NewVBox(v.pages, widget.NewLabelWithStyle("Pages Scanned", fyne.TextAlignCenter, fyne.TextStyle{})),
	)
	header := container.NewVBox(
		widget.NewLabelWithStyle("AI Agent Scanning", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		hud,
		v.spinner,
		v.status,
		v.url,
		widget.NewSeparator(),
	)
	v.root = container.NewBorder(header, nil, nil, nil, v.feed)
	v.update(nil)
	return v
}

// update redraws the visualizer for the given event log.
func (v *scanView) update(events []labmatch.ScanEvent) {
	sum := labmatch.Summarize(events)
	v.professors.SetText(strconv.Itoa(sum.ProfessorsFound))
	v.pages.SetText(strconv.Itoa(sum.PagesScanned))
	v.status.SetText(sum.Status)
	if sum.ScanningURL != "" {
		v.url.SetText(sum.ScanningURL)
		v.url.Show()
	} else {
		v.url.Hide()
	}
	if sum.Current.Kind() == labmatch.KindComplete {
		v.spinner.Stop()
		v.spinner.Hide()
	} else {
		v.spinner.Show()
		v.spinner.Start()
	}

	rows := labmatch.Feed(events)
	grew := len(rows) > len(v.rows)
	v.rows = rows
	v.feed.Refresh()
	if grew {
		v.feed.ScrollToBottom()
	}
}

func newFeedRowTemplate() fyne.CanvasObject {
	title := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	title.Truncation = fyne.TextTruncateEllipsis
	detail := widget.NewLabel("")
	detail.Truncation = fyne.TextTruncateEllipsis
	badge := widget.NewLabelWithStyle("", fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true})
	icon := widget.NewIcon(theme.InfoIcon())
	return container.NewBorder(nil, nil, icon, badge, container.NewVBox(title, detail))
}

func updateFeedRow(obj fyne.CanvasObject, row labmatch.FeedRow) {
	border := obj.(*fyne.Container)
	var text *fyne.Container
	var icon *widget.Icon
	var badge *widget.Label
	for _, o := range border.Objects {
		switch w := o.(type) {
		case *fyne.Container:
			text = w
		case *widget.Icon:
			icon = w
		case *widget.Label:
			badge = w
		}
	}
	if text == nil || icon == nil || badge == nil {
		return
	}
	title := text.Objects[0].(*widget.Label)
	detail := text.Objects[1].(*widget.Label)

	icon.SetResource(feedIcon(row.Style))
	title.SetText(row.Title)
	title.TextStyle = fyne.TextStyle{Bold: row.Style == labmatch.RowFoundCard || row.Style == labmatch.RowInvestigating}
	title.Importance = feedImportance(row.Style)
	title.Refresh()
	if row.Detail != "" {
		detail.SetText(row.Detail)
		detail.Show()
	} else {
		detail.SetText("")
		detail.Hide()
	}
	badge.SetText(row.Badge)
}

func feedIcon(style labmatch.RowStyle) fyne.Resource {
	switch style {
	case labmatch.RowFoundCard:
		return theme.AccountIcon()
	case labmatch.RowBlocked:
		return theme.WarningIcon()
	case labmatch.RowError:
		return theme.ErrorIcon()
	case labmatch.RowPhase:
		return theme.NavigateNextIcon()
	case labmatch.RowDiscovery:
		return theme.SearchIcon()
	case labmatch.RowInvestigating:
		return theme.DocumentIcon()
	case labmatch.RowLog:
		return theme.ListIcon()
	case labmatch.RowSuggestion:
		return theme.QuestionIcon()
	}
	return theme.InfoIcon()
}

func feedImportance(style labmatch.RowStyle) widget.Importance {
	switch style {
	case labmatch.RowFoundCard:
		return widget.SuccessImportance
	case labmatch.RowBlocked:
		return widget.WarningImportance
	case labmatch.RowError:
		return widget.DangerImportance
	case labmatch.RowPhase, labmatch.RowDiscovery:
		return widget.HighImportance
	case labmatch.RowInfo, labmatch.RowLog:
		return widget.LowImportance
	}
	return widget.MediumImportance
}
