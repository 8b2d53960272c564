package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// StatCard is a small reusable card showing one labeled numeric value.
// It is a pure render over its inputs; SetValue is the only mutation.
type StatCard struct {
	widget.BaseWidget

	title string
	value *widget.Label
}

// NewStatCard creates a StatCard with the given title and a zero value.
func NewStatCard(title string) *StatCard {
	c := &StatCard{
		title: title,
		value: widget.NewLabel("0"),
	}
	c.value.TextStyle = fyne.TextStyle{Bold: true}
	c.value.Alignment = fyne.TextAlignCenter
	c.ExtendBaseWidget(c)
	return c
}

// SetValue updates the displayed value.
func (c *StatCard) SetValue(v string) {
	c.value.SetText(v)
}

// Value returns the currently displayed value.
func (c *StatCard) Value() string {
	return c.value.Text
}

// CreateRenderer implements fyne.Widget.
func (c *StatCard) CreateRenderer() fyne.WidgetRenderer {
	card := widget.NewCard("", c.title, c.value)
	return widget.NewSimpleRenderer(card)
}
