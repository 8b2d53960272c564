package ui

import (
	"fmt"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/picpoul/donorhub/internal/api"
	"github.com/picpoul/donorhub/internal/config"
	"github.com/picpoul/donorhub/internal/dashboard"
	"github.com/picpoul/donorhub/internal/reminder"
)

// dashboardScreen holds references to the widgets mutated on every snapshot.
type dashboardScreen struct {
	statusTitle *widget.Label
	statusMsg   *widget.Label
	remarks     *widget.Label

	bloodGroup   *widget.Label
	lastDonation *widget.Label
	nextEligible *widget.Label
	countdown    *widget.Label
	eligibleNow  *widget.Label

	statDonations *StatCard
	statRequests  *StatCard

	donationRows *fyne.Container
	emptyHistory *widget.Label

	reminderBtn *widget.Button

	lastSnapshot dashboard.Snapshot
}

// ShowDashboardWindow opens the donor dashboard (singleton) and mounts its
// refresh controller. Closing the window unmounts the controller; reopening
// re-fetches everything from scratch, nothing is persisted locally.
func (app *DonorHubApp) ShowDashboardWindow() {
	if app.dashboardWindow != nil {
		app.dashboardWindow.RequestFocus()
		return
	}

	donorID := app.donorID()
	if donorID == 0 {
		// No donor configured yet; settings must come first.
		app.ShowSettingsWindow()
		return
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinDashboard))
	w.Resize(fyne.NewSize(config.DashboardWinWidth, config.DashboardWinHeight))
	app.dashboardWindow = w

	d := &dashboardScreen{
		statusTitle:   widget.NewLabel(""),
		statusMsg:     widget.NewLabel(""),
		remarks:       widget.NewLabel(""),
		bloodGroup:    widget.NewLabel(config.FallbackBloodGroup),
		lastDonation:  widget.NewLabel(config.FallbackBloodGroup),
		nextEligible:  widget.NewLabel(config.FallbackBloodGroup),
		countdown:     widget.NewLabel(""),
		eligibleNow:   widget.NewLabel(""),
		statDonations: NewStatCard(app.GetMsg(config.TKeyStatDonations)),
		statRequests:  NewStatCard(app.GetMsg(config.TKeyStatRequests)),
		donationRows:  container.NewVBox(),
		emptyHistory:  widget.NewLabel(app.GetMsg(config.TKeyEmptyHistory)),
	}
	d.statusTitle.TextStyle = fyne.TextStyle{Bold: true}
	d.statusMsg.Wrapping = fyne.TextWrapWord
	d.remarks.Wrapping = fyne.TextWrapWord
	d.remarks.TextStyle = fyne.TextStyle{Italic: true}
	d.countdown.TextStyle = fyne.TextStyle{Bold: true}
	d.emptyHistory.TextStyle = fyne.TextStyle{Italic: true}

	refreshBtn := widget.NewButton(app.GetMsg(config.TKeyBtnRefresh), func() {
		app.RefreshAll()
	})

	d.reminderBtn = widget.NewButton(app.GetMsg(config.TKeyBtnReminder), func() {
		app.exportReminder(w, d.lastSnapshot.Detail)
	})
	d.reminderBtn.Disable()

	statusCard := widget.NewCard("", "", container.NewVBox(d.statusTitle, d.statusMsg, d.remarks))

	eligibilityForm := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblBloodGroup), d.bloodGroup),
		widget.NewFormItem(app.GetMsg(config.TKeyLblLastDon), d.lastDonation),
		widget.NewFormItem(app.GetMsg(config.TKeyLblNextElig), d.nextEligible),
	)
	eligibilityCard := widget.NewCard("", "",
		container.NewVBox(eligibilityForm, d.countdown, d.eligibleNow, d.reminderBtn))

	statsRow := container.NewGridWithColumns(config.LayoutColumnsDouble, d.statDonations, d.statRequests)

	historyCard := widget.NewCard(app.GetMsg(config.TKeyLblRecent), "",
		container.NewVBox(d.donationRows, d.emptyHistory))

	content := container.NewVScroll(container.NewVBox(
		statusCard,
		statsRow,
		eligibilityCard,
		historyCard,
		refreshBtn,
	))
	w.SetContent(content)

	app.dash = d
	d.render(app, dashboard.Snapshot{ProfileStatus: config.StatusLoading})

	app.mountController(donorID)

	w.SetOnClosed(func() {
		app.unmountController()
		app.dash = nil
		app.dashboardWindow = nil
	})

	w.Show()
}

// render maps one snapshot onto the widgets. Runs on the UI thread.
func (d *dashboardScreen) render(app *DonorHubApp, s dashboard.Snapshot) {
	d.lastSnapshot = s

	branch := dashboard.StatusBranch(s.ProfileStatus)
	d.statusTitle.SetText(app.GetMsg(bannerKey(branch)))
	d.statusMsg.SetText(app.GetMsg(statusMsgKey(branch)))

	if branch == config.StatusRejected && s.Remarks != "" {
		d.remarks.SetText(fmt.Sprintf("%s: %s", app.GetMsg(config.TKeyLblRemarks), s.Remarks))
		d.remarks.Show()
	} else {
		d.remarks.Hide()
	}

	// Eligibility block, all values verbatim from the server.
	d.bloodGroup.SetText(orDash(s.Detail.BloodGroup))
	if s.Detail.LastDonation != nil {
		d.lastDonation.SetText(s.Detail.LastDonation.Format(config.DateFormatDay))
	} else {
		d.lastDonation.SetText(config.FallbackBloodGroup)
	}
	if s.Detail.NextEligible != nil {
		d.nextEligible.SetText(s.Detail.NextEligible.Format(config.DateFormatDay))
	} else {
		d.nextEligible.SetText(config.FallbackBloodGroup)
	}

	if dashboard.ShowCountdown(s.Detail) {
		d.countdown.SetText(app.countdownText(*s.Detail.DaysUntilEligible))
		d.countdown.Show()
	} else {
		d.countdown.Hide()
	}

	if s.Detail.IsEligible {
		d.eligibleNow.SetText(app.GetMsg(config.TKeyLblEligible))
		d.eligibleNow.Show()
	} else {
		d.eligibleNow.Hide()
	}

	if s.Detail.NextEligible != nil {
		d.reminderBtn.Enable()
	} else {
		d.reminderBtn.Disable()
	}

	d.statDonations.SetValue(strconv.Itoa(s.Stats.TotalDonations))
	d.statRequests.SetValue(strconv.Itoa(s.AvailableRequests))

	// Donation list and empty-state message are mutually exclusive.
	d.donationRows.Objects = nil
	for _, rec := range s.Donations {
		d.donationRows.Add(donationRow(app, rec))
	}
	if len(s.Donations) == 0 {
		d.emptyHistory.Show()
	} else {
		d.emptyHistory.Hide()
	}
	d.donationRows.Refresh()
}

// donationRow renders one history entry.
func donationRow(app *DonorHubApp, rec api.DonationRecord) fyne.CanvasObject {
	date := widget.NewLabel(rec.Date.Format(config.DateFormatDay))
	date.TextStyle = fyne.TextStyle{Bold: true}

	location := widget.NewLabel(rec.Location)
	location.Truncation = fyne.TextTruncateEllipsis

	units := widget.NewLabel(app.unitsText(rec.Units))

	return container.NewBorder(nil, nil, date, units, location)
}

// bannerKey maps a rendered status branch to its translation key.
func bannerKey(branch string) string {
	switch branch {
	case config.StatusNone:
		return config.TKeyBannerNone
	case config.StatusPending:
		return config.TKeyBannerPending
	case config.StatusApproved:
		return config.TKeyBannerApprove
	case config.StatusRejected:
		return config.TKeyBannerReject
	default:
		return config.TKeyBannerLoading
	}
}

// statusMsgKey maps a branch to the descriptive line under the banner.
func statusMsgKey(branch string) string {
	switch branch {
	case config.StatusNone:
		return config.TKeyStatusNone
	case config.StatusPending:
		return config.TKeyStatusPending
	case config.StatusApproved:
		return config.TKeyStatusApprove
	case config.StatusRejected:
		return config.TKeyStatusReject
	default:
		return config.TKeyStatusLoading
	}
}

func orDash(s string) string {
	if s == "" {
		return config.FallbackBloodGroup
	}
	return s
}

// countdownText localizes the day count with pluralization.
func (app *DonorHubApp) countdownText(days int) string {
	if app.Localizer != nil {
		msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyCountdown,
			TemplateData: map[string]interface{}{"Days": days},
			PluralCount:  days,
		})
		if err == nil {
			return msg
		}
	}
	return fmt.Sprintf(config.FallbackCountdown, days)
}

// unitsText localizes the unit count of one donation record.
func (app *DonorHubApp) unitsText(units int) string {
	if app.Localizer != nil {
		msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyUnitsFmt,
			TemplateData: map[string]interface{}{"Units": units},
			PluralCount:  units,
		})
		if err == nil {
			return msg
		}
	}
	return strconv.Itoa(units)
}

// exportReminder builds the next-eligible ICS event and saves it where the
// user chooses.
func (app *DonorHubApp) exportReminder(w fyne.Window, detail api.DonorDetail) {
	if detail.NextEligible == nil {
		ShowActionAlert(w, app.GetMsg(config.TKeyRemTitle), app.GetMsg(config.TKeyRemNotAvail), nil,
			AlertAction{Label: app.GetMsg(config.TKeyAlertOK)})
		return
	}

	data, err := reminder.Build(app.donorID(), detail, app.Clock.Now(), app.GetMsg(config.TKeyRemTitle))
	if err != nil {
		slog.Error(config.ErrICalEncode,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return
	}

	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer func() { _ = wc.Close() }()
		if _, err := wc.Write(data); err != nil {
			slog.Error(config.ErrICalEncode,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyError, err)
			return
		}
		slog.Info(config.MsgRemExported, config.LogKeyComponent, config.CompUI)
		ShowActionAlert(w, app.GetMsg(config.TKeyRemTitle), app.GetMsg(config.TKeyRemSaved), nil,
			AlertAction{Label: app.GetMsg(config.TKeyAlertOK)})
	}, w)
	d.SetFileName(config.FallbackRemFileName + config.ExtICS)
	d.Show()
}
