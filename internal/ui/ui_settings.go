package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/picpoul/donorhub/internal/config"
	"github.com/zalando/go-keyring"
)

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	serverEntry  *widget.Entry
	donorIDEntry *NumericalEntry
	userEntry    *widget.Entry
	tokenEntry   *widget.Entry
	langSelect   *widget.Select
	pollEntry    *NumericalEntry
}

// ShowSettingsWindow displays the configuration dialog allowing users to manage settings.
func (app *DonorHubApp) ShowSettingsWindow() {
	if app.Window != nil {
		slog.Debug("Settings window already open, requesting focus", config.LogKeyComponent, config.CompUISet)
		app.Window.RequestFocus()
		return
	}

	slog.Info("Opening settings window", config.LogKeyComponent, config.CompUISet)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.Window = w

	sw := &settingsWidgets{}

	// --- 1. Server Section ---
	sw.serverEntry = widget.NewEntry()
	sw.serverEntry.SetText(app.Preferences.StringWithFallback(config.PrefServerURL, config.DefaultServerURL))
	sw.serverEntry.PlaceHolder = config.DefaultServerURL

	sw.donorIDEntry = NewNumericalEntry()
	if id := app.Preferences.Int(config.PrefDonorID); id > 0 {
		sw.donorIDEntry.SetText(strconv.Itoa(id))
	}
	sw.donorIDEntry.Validator = func(s string) error {
		if s == "" {
			return errors.New(app.GetMsg(config.TKeyErrDonorIDReq))
		}
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			return errors.New(app.GetMsg(config.TKeyErrDonorIDNum))
		}
		return nil
	}

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(app.Preferences.String(config.PrefAPIUser))

	sw.tokenEntry = widget.NewPasswordEntry()
	// Attempt to pre-fill the token from secure storage
	if user := sw.userEntry.Text; user != "" {
		if token, err := keyring.Get(config.KeyringService, user); err == nil {
			sw.tokenEntry.SetText(token)
		}
	}

	itemServer := widget.NewFormItem(app.GetMsg(config.TKeyLblServerURL), sw.serverEntry)
	itemServer.HintText = app.GetMsg(config.TKeyHelpServerURL)

	itemDonorID := widget.NewFormItem(app.GetMsg(config.TKeyLblDonorID), sw.donorIDEntry)
	itemDonorID.HintText = app.GetMsg(config.TKeyHelpDonorID)

	itemUser := widget.NewFormItem(app.GetMsg(config.TKeyLblAPIUser), sw.userEntry)

	itemToken := widget.NewFormItem(app.GetMsg(config.TKeyLblAPIToken), sw.tokenEntry)
	itemToken.HintText = app.GetMsg(config.TKeyHelpAPIToken)

	serverForm := widget.NewForm(itemServer, itemDonorID, itemUser, itemToken)
	serverCard := widget.NewCard(app.GetMsg(config.TKeyLblServer), "", serverForm)

	// --- 2. General Section (Language & Poll Interval) ---
	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	sw.pollEntry = NewNumericalEntry()
	sw.pollEntry.SetText(strconv.Itoa(app.Preferences.IntWithFallback(config.PrefPollSec, config.DefaultPollSec)))
	sw.pollEntry.Validator = func(s string) error {
		sec, err := strconv.Atoi(s)
		if err != nil || sec < config.MinPollSec || sec > config.MaxPollSec {
			return errors.New(app.pollRangeError())
		}
		return nil
	}

	itemLang := widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect)
	itemLang.HintText = app.GetMsg(config.TKeyHelpLanguage)

	widPoll := container.NewBorder(nil, nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblSeconds)), sw.pollEntry)
	itemPoll := widget.NewFormItem(app.GetMsg(config.TKeyLblPoll), widPoll)
	itemPoll.HintText = app.GetMsg(config.TKeyHelpPoll)

	generalForm := widget.NewForm(itemLang, itemPoll)
	generalCard := widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "", generalForm)

	// --- Actions ---
	saveAction := func() {
		if err := sw.donorIDEntry.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		if err := sw.pollEntry.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw, w)
	}

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), saveAction)
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	// --- Footer ---
	footerText := fmt.Sprintf("%s %s", app.GetMsg(config.TKeyLblFooter), config.Version)
	footerLabel := widget.NewLabel(footerText)
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	paddedContent := container.NewPadded(container.NewVBox(
		serverCard,
		generalCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footerLabel,
	))

	w.SetContent(paddedContent)
	w.SetFixedSize(true)
	w.Resize(fyne.NewSize(config.SettingsWindowWidth, paddedContent.MinSize().Height))
	w.SetOnClosed(func() { app.Window = nil })

	w.Show()
}

// pollRangeError builds the localized range validation message.
func (app *DonorHubApp) pollRangeError() string {
	if app.Localizer != nil {
		msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
			MessageID: config.TKeyErrPollRange,
			TemplateData: map[string]interface{}{
				"Min": config.MinPollSec,
				"Max": config.MaxPollSec,
			},
		})
		if err == nil {
			return msg
		}
	}
	return fmt.Sprintf(config.FallbackPollRange, config.MinPollSec, config.MaxPollSec)
}

// saveSettings persists the data and remounts the dashboard controller so the
// new server, donor, and cadence take effect immediately.
func (app *DonorHubApp) saveSettings(sw *settingsWidgets, w fyne.Window) {
	slog.Info("Saving preferences", config.LogKeyComponent, config.CompUISet)

	oldServer := app.Preferences.String(config.PrefServerURL)
	oldUser := app.Preferences.String(config.PrefAPIUser)
	oldDonor := app.Preferences.Int(config.PrefDonorID)
	oldToken := app.loadAPIToken()

	app.Preferences.SetString(config.PrefServerURL, sw.serverEntry.Text)
	app.Preferences.SetString(config.PrefAPIUser, sw.userEntry.Text)
	app.Preferences.SetString(config.PrefLanguage, sw.langSelect.Selected)

	if id, err := strconv.Atoi(sw.donorIDEntry.Text); err == nil {
		app.Preferences.SetInt(config.PrefDonorID, id)
	}
	if sec, err := strconv.Atoi(sw.pollEntry.Text); err == nil {
		app.Preferences.SetInt(config.PrefPollSec, sec)
	}

	// Save token to keyring only if provided
	if sw.userEntry.Text != "" && sw.tokenEntry.Text != "" {
		if err := keyring.Set(config.KeyringService, sw.userEntry.Text, sw.tokenEntry.Text); err != nil {
			slog.Error("Failed to save credentials to keyring", config.LogKeyError, err, config.LogKeyComponent, config.CompUISet)
		}
	}

	app.UpdateLocalizer()
	app.RefreshTrayMenu()

	// A mounted dashboard keeps polling with the old client otherwise. A
	// pure cadence change only needs the ticker reloaded.
	if id := app.donorID(); id > 0 && app.dashboardWindow != nil {
		clientChanged := sw.serverEntry.Text != oldServer ||
			sw.userEntry.Text != oldUser ||
			sw.tokenEntry.Text != oldToken ||
			int(id) != oldDonor
		if clientChanged {
			app.mountController(id)
		} else {
			app.ctrlMu.Lock()
			ctrl := app.controller
			app.ctrlMu.Unlock()
			if ctrl != nil {
				ctrl.NotifyIntervalChanged()
			}
		}
	}

	w.Close()
}
