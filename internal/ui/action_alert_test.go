package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionAlert_SingleAction(t *testing.T) {
	_ = test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	alert := ShowActionAlert(w, "Title", "Message", nil,
		AlertAction{Label: "OK"})

	require.Len(t, alert.Buttons, 1, "one action renders one button")
	assert.Equal(t, "OK", alert.Buttons[0].Text)
}

func TestActionAlert_MultipleActions(t *testing.T) {
	_ = test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	alert := ShowActionAlert(w, "Title", "Message", nil,
		AlertAction{Label: "Keep"},
		AlertAction{Label: "Discard", Style: AlertStyleDestructive},
		AlertAction{Label: "Cancel", Style: AlertStyleCancel})

	require.Len(t, alert.Buttons, 3, "N actions render N buttons")
	assert.Equal(t, "Keep", alert.Buttons[0].Text)
	assert.Equal(t, "Discard", alert.Buttons[1].Text)
	assert.Equal(t, "Cancel", alert.Buttons[2].Text)
}

// TestActionAlert_CallbackThenDismiss pins the ordering contract: the action
// callback fires before the dismissal callback, each exactly once.
func TestActionAlert_CallbackThenDismiss(t *testing.T) {
	_ = test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	var order []string
	alert := ShowActionAlert(w, "Title", "Message",
		func() { order = append(order, "dismiss") },
		AlertAction{Label: "Go", OnSelect: func() { order = append(order, "action") }})

	test.Tap(alert.Buttons[0])

	assert.Equal(t, []string{"action", "dismiss"}, order)

	// Further dismissal attempts are no-ops.
	alert.Hide()
	assert.Equal(t, []string{"action", "dismiss"}, order, "dismissal callback must fire exactly once")
}

func TestActionAlert_NoActions(t *testing.T) {
	_ = test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	dismissed := false
	alert := ShowActionAlert(w, "Title", "Message", func() { dismissed = true })

	assert.Empty(t, alert.Buttons)
	alert.Hide()
	assert.True(t, dismissed, "Hide still runs the dismissal callback")
}

func TestActionAlert_ActionWithoutCallback(t *testing.T) {
	_ = test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	dismissed := 0
	alert := ShowActionAlert(w, "Title", "Message", func() { dismissed++ },
		AlertAction{Label: "OK"})

	test.Tap(alert.Buttons[0])
	assert.Equal(t, 1, dismissed, "selecting an action without OnSelect still dismisses")
}
