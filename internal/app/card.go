package app

import (
	"image/color"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/labmatch/labmatch"
)

const (
	summaryMaxRunes = 480
	avatarSize      = 72
)

var (
	cardBackground = color.NRGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}
	cardBorder     = color.NRGBA{R: 0x33, G: 0x41, B: 0x55, A: 0xff}
	avatarFill     = color.NRGBA{R: 0x63, G: 0x66, B: 0xf1, A: 0xff}
)

// newCardFace renders the front of a professor card.
func newCardFace(p labmatch.Professor) fyne.CanvasObject {
	bg := canvas.NewRectangle(cardBackground)
	bg.CornerRadius = 20
	bg.StrokeColor = cardBorder
	bg.StrokeWidth = 1

	circle := canvas.NewCircle(avatarFill)
	initial := canvas.NewText(p.Initial(), color.White)
	initial.TextSize = 30
	initial.TextStyle = fyne.TextStyle{Bold: true}
	initial.Alignment = fyne.TextAlignCenter
	avatar := container.NewGridWrap(fyne.NewSize(avatarSize, avatarSize),
		container.NewStack(circle, container.NewCenter(initial)))

	name := widget.NewLabelWithStyle(p.DisplayName(), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	name.Wrapping = fyne.TextWrapWord
	title := widget.NewLabelWithStyle(p.DisplayTitle(), fyne.TextAlignCenter, fyne.TextStyle{})
	title.Wrapping = fyne.TextWrapWord

	items := []fyne.CanvasObject{container.NewCenter(avatar), name, title}
	if p.Department != "" {
		dept := widget.NewLabelWithStyle(p.Department, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
		dept.Importance = widget.HighImportance
		dept.Wrapping = fyne.TextWrapWord
		items = append(items, dept)
	}
	if p.School != "" {
		school := widget.NewLabelWithStyle(p.School, fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
		school.Importance = widget.LowImportance
		items = append(items, school)
	}

	match := widget.NewLabelWithStyle(p.MatchLabel()+" Match", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	match.Importance = widget.SuccessImportance
	items = append(items, match)

	if summary := p.CleanSummary(); summary != "" {
		lbl := widget.NewLabel(truncateText(summary, summaryMaxRunes))
		lbl.Wrapping = fyne.TextWrapWord
		items = append(items, lbl)
	}
	if kw := p.KeywordLine(); kw != "" {
		lbl := widget.NewLabelWithStyle(kw, fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
		lbl.Wrapping = fyne.TextWrapWord
		items = append(items, lbl)
	}
	if links := linkRow(p.DisplayLinks()); links != nil {
		items = append(items, links)
	}

	content := container.NewVBox(items...)
	return container.NewStack(bg, container.NewPadded(content))
}

func linkRow(links []labmatch.Link) fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, len(links))
	for _, l := range links {
		u, err := url.Parse(l.URL)
		if err != nil {
			continue
		}
		objs = append(objs, container.NewHBox(widget.NewIcon(theme.MailAttachmentIcon()), widget.NewHyperlink(l.Label, u)))
	}
	if len(objs) == 0 {
		return nil
	}
	return container.New(layout.NewCustomPaddedVBoxLayout(0), objs...)
}
