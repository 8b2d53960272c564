package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// AlertStyle tags an alert action for presentation only; it carries no
// behavior of its own.
type AlertStyle int

const (
	AlertStyleDefault AlertStyle = iota
	AlertStyleCancel
	AlertStyleDestructive
)

// AlertAction is one labeled choice of an ActionAlert.
type AlertAction struct {
	Label    string
	Style    AlertStyle
	OnSelect func()
}

// ActionAlert is a modal alert with zero, one, or many actions. A single
// action renders one full-width button; N actions render N equally
// distributed buttons. Selecting any action invokes its own callback first,
// then the shared dismissal callback, each exactly once.
type ActionAlert struct {
	Buttons []*widget.Button

	content   *fyne.Container
	popup     *widget.PopUp
	onDismiss func()
	dismissed bool
}

// NewActionAlert builds the alert without showing it.
func NewActionAlert(title, message string, onDismiss func(), actions ...AlertAction) *ActionAlert {
	a := &ActionAlert{onDismiss: onDismiss}

	titleLbl := widget.NewLabel(title)
	titleLbl.TextStyle = fyne.TextStyle{Bold: true}
	titleLbl.Alignment = fyne.TextAlignCenter

	messageLbl := widget.NewLabel(message)
	messageLbl.Wrapping = fyne.TextWrapWord
	messageLbl.Alignment = fyne.TextAlignCenter

	items := []fyne.CanvasObject{titleLbl, messageLbl}

	if len(actions) > 0 {
		buttons := make([]fyne.CanvasObject, 0, len(actions))
		for _, act := range actions {
			act := act
			btn := widget.NewButton(act.Label, func() {
				a.selectAction(act)
			})
			btn.Importance = importanceFor(act.Style)
			a.Buttons = append(a.Buttons, btn)
			buttons = append(buttons, btn)
		}
		items = append(items, container.NewGridWithColumns(len(buttons), buttons...))
	}

	a.content = container.NewVBox(items...)
	return a
}

// Show displays the alert as a modal popup over the given window.
func (a *ActionAlert) Show(w fyne.Window) {
	a.popup = widget.NewModalPopUp(a.content, w.Canvas())
	a.popup.Show()
}

// Hide dismisses the alert without selecting an action. The dismissal
// callback still runs, once.
func (a *ActionAlert) Hide() {
	a.dismiss()
}

// selectAction runs the action callback, then dismisses.
func (a *ActionAlert) selectAction(act AlertAction) {
	if act.OnSelect != nil {
		act.OnSelect()
	}
	a.dismiss()
}

func (a *ActionAlert) dismiss() {
	if a.dismissed {
		return
	}
	a.dismissed = true
	if a.popup != nil {
		a.popup.Hide()
	}
	if a.onDismiss != nil {
		a.onDismiss()
	}
}

// ShowActionAlert is the convenience path used by the screens.
func ShowActionAlert(w fyne.Window, title, message string, onDismiss func(), actions ...AlertAction) *ActionAlert {
	a := NewActionAlert(title, message, onDismiss, actions...)
	a.Show(w)
	return a
}

func importanceFor(style AlertStyle) widget.Importance {
	switch style {
	case AlertStyleDestructive:
		return widget.DangerImportance
	case AlertStyleCancel:
		return widget.MediumImportance
	default:
		return widget.HighImportance
	}
}
