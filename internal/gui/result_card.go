//go:build !nogui

package gui

import (
	"image/color"

	"leafscan/internal/render"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// resultCard is the classification panel. Reset shows the static parts of
// a result; Update copies the animated parts from a display.
type resultCard struct {
	badge       *widget.Label
	name        *widget.Label
	description *widget.Label
	counter     *widget.Label
	bar         *tierBar
	causes      *widget.Label
	prevention  *widget.Label
	treatment   *widget.Label
	content     *fyne.Container
}

func newResultCard() *resultCard {
	c := &resultCard{
		badge:       widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		name:        widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		description: widget.NewLabel(""),
		counter:     widget.NewLabelWithStyle("", fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true}),
		bar:         newTierBar(),
		causes:      widget.NewLabel(""),
		prevention:  widget.NewLabel(""),
		treatment:   widget.NewLabel(""),
	}
	for _, l := range []*widget.Label{c.description, c.causes, c.prevention, c.treatment} {
		l.Wrapping = fyne.TextWrapWord
	}

	heading := func(s string) *widget.Label {
		return widget.NewLabelWithStyle(s, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}

	c.content = container.NewVBox(
		c.badge,
		c.name,
		c.description,
		container.NewBorder(nil, nil, widget.NewLabel("Confidence"), c.counter, c.bar),
		widget.NewSeparator(),
		heading("Causes"), c.causes,
		heading("Prevention"), c.prevention,
		heading("Treatment"), c.treatment,
	)
	return c
}

// Content returns the card's canvas object
func (c *resultCard) Content() fyne.CanvasObject {
	return c.content
}

// Reset shows the badge and description of v and clears the animated parts
func (c *resultCard) Reset(v *render.ResultView) {
	c.badge.Importance = styleImportance(v.Badge.Header)
	c.badge.SetText(v.Badge.Label)
	c.description.SetText(v.Description)
	c.bar.SetStyle(v.Bar)
	c.Update(v, &render.Display{})
}

// Update copies the revealed state of d
func (c *resultCard) Update(_ *render.ResultView, d *render.Display) {
	c.name.SetText(d.Name)
	c.counter.SetText(d.CounterText())
	c.bar.SetValue(d.BarWidth)
	c.causes.SetText(bulletList(d.Causes))
	c.prevention.SetText(bulletList(d.Prevention))
	c.treatment.SetText(bulletList(d.Treatment))
}

// tierBar is a horizontal bar filled to a percentage in the color of its tier.
type tierBar struct {
	widget.BaseWidget

	value int
	style render.Style
}

func newTierBar() *tierBar {
	b := &tierBar{style: render.StyleDanger}
	b.ExtendBaseWidget(b)
	return b
}

// SetValue sets the filled percentage, clamped to 0..100
func (b *tierBar) SetValue(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	b.value = percent
	b.Refresh()
}

// SetStyle sets the fill color
func (b *tierBar) SetStyle(s render.Style) {
	b.style = s
	b.Refresh()
}

// Value returns the filled percentage
func (b *tierBar) Value() int {
	return b.value
}

func (b *tierBar) CreateRenderer() fyne.WidgetRenderer {
	track := canvas.NewRectangle(theme.InputBackgroundColor())
	track.CornerRadius = 4
	fill := canvas.NewRectangle(styleColor(b.style))
	fill.CornerRadius = 4
	return &tierBarRenderer{bar: b, track: track, fill: fill}
}

type tierBarRenderer struct {
	bar   *tierBar
	track *canvas.Rectangle
	fill  *canvas.Rectangle
}

func (r *tierBarRenderer) Layout(size fyne.Size) {
	r.track.Resize(size)
	r.track.Move(fyne.NewPos(0, 0))
	r.fill.Resize(fyne.NewSize(size.Width*float32(r.bar.value)/100, size.Height))
	r.fill.Move(fyne.NewPos(0, 0))
}

func (r *tierBarRenderer) MinSize() fyne.Size {
	return fyne.NewSize(120, theme.Padding()*3)
}

func (r *tierBarRenderer) Refresh() {
	r.fill.FillColor = styleColor(r.bar.style)
	r.track.FillColor = theme.InputBackgroundColor()
	r.Layout(r.bar.Size())
	canvas.Refresh(r.bar)
}

func (r *tierBarRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.track, r.fill}
}

func (r *tierBarRenderer) Destroy() {}

// styleColor maps a render style to the theme's status colors
func styleColor(s render.Style) color.Color {
	switch s {
	case render.StyleSuccess:
		return theme.SuccessColor()
	case render.StyleWarning:
		return theme.WarningColor()
	}
	return theme.ErrorColor()
}
