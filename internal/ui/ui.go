package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/picpoul/donorhub/internal/api"
	"github.com/picpoul/donorhub/internal/config"
	"github.com/picpoul/donorhub/internal/dashboard"
	"github.com/zalando/go-keyring"
)

// DonorHubApp encapsulates the UI state, preferences, and the dashboard
// refresh lifecycle.
type DonorHubApp struct {
	App         fyne.App
	Window      fyne.Window // settings window, nil when closed
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Clock dashboard.Clock

	// NewClient builds the API client from preferences. Tests inject mocks
	// through it.
	NewClient func(baseURL, token string) api.Client

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem    *fyne.MenuItem
	TrayDashboardItem *fyne.MenuItem
	TrayRefreshItem   *fyne.MenuItem
	TraySettingsItem  *fyne.MenuItem

	SupportedLanguages []string

	// Dashboard screen lifecycle. The controller lives exactly as long as
	// the dashboard window: closing the window cancels its context so no
	// in-flight poll can touch state afterwards.
	ctrlMu          sync.Mutex
	controller      *dashboard.Controller
	ctrlCtx         context.Context
	ctrlCancel      context.CancelFunc
	dashboardWindow fyne.Window
	dash            *dashboardScreen
}

// NewDonorHubApp constructs the application and wires dependencies.
func NewDonorHubApp(a fyne.App, ctx context.Context) *DonorHubApp {
	return &DonorHubApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Clock:              dashboard.RealClock{},
		NewClient:          func(baseURL, token string) api.Client { return api.NewHTTPClient(baseURL, token) },
		SupportedLanguages: config.SupportedLanguages,
	}
}

// Run launches the application services and the main UI loop.
func (app *DonorHubApp) Run() {
	app.SetupI18n()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	// Re-entering the foreground is the mobile analogue of the screen
	// regaining focus: every resource is refreshed, not just the polled set.
	app.App.Lifecycle().SetOnEnteredForeground(func() {
		slog.Info(config.MsgForeground, config.LogKeyComponent, config.CompUI)
		app.RefreshAll()
	})

	app.ShowDashboardWindow()
	app.App.Run()
}

// setupTrayMenu constructs the system tray menu.
func (app *DonorHubApp) setupTrayMenu() {
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, func() {
		app.ShowDashboardWindow()
	})

	app.TrayDashboardItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuDashboard), func() {
		app.ShowDashboardWindow()
	})

	app.TrayRefreshItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuRefresh), func() {
		app.RefreshAll()
	})

	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayDashboardItem,
		app.TrayRefreshItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *DonorHubApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayDashboardItem.Label = app.GetMsg(config.TKeyMenuDashboard)
	app.TrayRefreshItem.Label = app.GetMsg(config.TKeyMenuRefresh)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.Menu.Refresh()
}

// RefreshAll triggers a full refresh of the mounted dashboard, if any.
func (app *DonorHubApp) RefreshAll() {
	app.ctrlMu.Lock()
	ctrl, ctx := app.controller, app.ctrlCtx
	app.ctrlMu.Unlock()
	if ctrl == nil {
		return
	}
	slog.Info(config.MsgRefreshReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, true)
	ctrl.RefreshAll(ctx)
}

// mountController creates the refresh controller for the current preferences
// and starts its polling loop. Any previous controller is torn down first.
func (app *DonorHubApp) mountController(donorID int64) {
	app.unmountController()

	serverURL := app.Preferences.StringWithFallback(config.PrefServerURL, config.DefaultServerURL)
	token := app.loadAPIToken()
	client := app.NewClient(serverURL, token)

	ctx, cancel := context.WithCancel(app.Ctx)
	ctrl := dashboard.NewController(client, app.Clock, donorID,
		app.pollInterval,
		func(s dashboard.Snapshot) {
			fyne.Do(func() { app.applySnapshot(s) })
		})

	app.ctrlMu.Lock()
	app.controller = ctrl
	app.ctrlCtx = ctx
	app.ctrlCancel = cancel
	app.ctrlMu.Unlock()

	go ctrl.Start(ctx)
}

// unmountController cancels the controller context. In-flight requests may
// still complete on the wire but their results are dropped, never applied.
func (app *DonorHubApp) unmountController() {
	app.ctrlMu.Lock()
	defer app.ctrlMu.Unlock()
	if app.ctrlCancel != nil {
		app.ctrlCancel()
	}
	app.controller = nil
	app.ctrlCtx = nil
	app.ctrlCancel = nil
}

// pollInterval reads the timer cadence from preferences.
func (app *DonorHubApp) pollInterval() time.Duration {
	sec := app.Preferences.IntWithFallback(config.PrefPollSec, config.DefaultPollSec)
	if sec < config.MinPollSec {
		sec = config.DefaultPollSec
	}
	return time.Duration(sec) * time.Second
}

// applySnapshot renders the new state and refreshes the tray badge. Called
// on the UI thread.
func (app *DonorHubApp) applySnapshot(s dashboard.Snapshot) {
	if app.dash != nil {
		app.dash.render(app, s)
	}
	if s.LastError != nil {
		app.updateTrayUnread(-1)
	} else {
		app.updateTrayUnread(s.UnreadCount)
	}
}

// updateTrayUnread updates the top menu item with the unread badge.
func (app *DonorHubApp) updateTrayUnread(count int) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}

	var label string
	switch {
	case count < 0:
		label = config.FallbackTrayError
	case count == 0:
		label = app.GetMsg(config.TKeyUnreadZero)
		if label == config.TKeyUnreadZero {
			label = config.FallbackTrayLabel
		}
	default:
		if app.Localizer != nil {
			msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
				MessageID:    config.TKeyUnreadBadge,
				TemplateData: map[string]interface{}{"Count": count},
				PluralCount:  count,
			})
			if err == nil {
				label = msg
			}
		}
		if label == "" {
			label = fmt.Sprintf(config.FallbackUnreadFmt, count)
		}
	}

	app.TrayStatusItem.Label = label
	app.Menu.Refresh()
}

// loadAPIToken pulls the API token for the configured user from the keyring.
func (app *DonorHubApp) loadAPIToken() string {
	user := app.Preferences.String(config.PrefAPIUser)
	if user == "" {
		return ""
	}
	token, err := keyring.Get(config.KeyringService, user)
	if err != nil {
		slog.Debug(config.MsgTokenFail,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return ""
	}
	return token
}

// donorID reads and validates the configured donor ID; 0 means unset.
func (app *DonorHubApp) donorID() int64 {
	id := app.Preferences.Int(config.PrefDonorID)
	if id <= 0 {
		return 0
	}
	return int64(id)
}
