package ui

import (
	"context"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/picpoul/donorhub/internal/api"
	"github.com/picpoul/donorhub/internal/config"
	"github.com/picpoul/donorhub/internal/dashboard"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockAPIClient simulates the api.Client interface using testify/mock.
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) Profile(ctx context.Context, donorID int64) (api.DonorProfile, error) {
	args := m.Called(ctx, donorID)
	return args.Get(0).(api.DonorProfile), args.Error(1)
}

func (m *MockAPIClient) Detail(ctx context.Context, donorID int64) (api.DonorDetail, error) {
	args := m.Called(ctx, donorID)
	return args.Get(0).(api.DonorDetail), args.Error(1)
}

func (m *MockAPIClient) RecentDonations(ctx context.Context, donorID int64, limit int) ([]api.DonationRecord, error) {
	args := m.Called(ctx, donorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.DonationRecord), args.Error(1)
}

func (m *MockAPIClient) Stats(ctx context.Context, donorID int64) (api.DonorStats, error) {
	args := m.Called(ctx, donorID)
	return args.Get(0).(api.DonorStats), args.Error(1)
}

func (m *MockAPIClient) AvailableRequests(ctx context.Context, donorID int64) (int, error) {
	args := m.Called(ctx, donorID)
	return args.Int(0), args.Error(1)
}

func (m *MockAPIClient) UnreadNotifications(ctx context.Context, donorID int64) (int, error) {
	args := m.Called(ctx, donorID)
	return args.Int(0), args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockTray implements minimal system tray functionality for headless testing.
type MockTray struct {
	Menu *fyne.Menu
}

func (m *MockTray) SetSystemTrayMenu(menu *fyne.Menu) {
	m.Menu = menu
}

func (m *MockTray) SetSystemTrayIcon(icon fyne.Resource) {}
func (m *MockTray) SetSystemTrayWindow(w fyne.Window)    {}
func (m *MockTray) Run()                                 {}
func (m *MockTray) Quit()                                {}

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

// setupTestApp initializes a headless Fyne app with mocked dependencies. The
// returned app context is already cancelled, so a mounted controller never
// applies results: screens stay static and tests drive render() directly.
func setupTestApp(t *testing.T) (*DonorHubApp, *MockAPIClient, *MockTray) {
	a := test.NewApp()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := new(MockAPIClient)
	client.On("Profile", mock.Anything, mock.Anything).Return(api.DonorProfile{}, context.Canceled).Maybe()
	client.On("Detail", mock.Anything, mock.Anything).Return(api.DonorDetail{}, context.Canceled).Maybe()
	client.On("RecentDonations", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()
	client.On("Stats", mock.Anything, mock.Anything).Return(api.DonorStats{}, context.Canceled).Maybe()
	client.On("AvailableRequests", mock.Anything, mock.Anything).Return(0, context.Canceled).Maybe()
	client.On("UnreadNotifications", mock.Anything, mock.Anything).Return(0, context.Canceled).Maybe()

	mockTray := &MockTray{}

	app := NewDonorHubApp(a, ctx)
	app.Tray = mockTray
	app.Clock = MockClock{CurrentTime: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	app.NewClient = func(baseURL, token string) api.Client { return client }

	// Manually load I18n as Run() is skipped
	app.SetupI18n()

	return app, client, mockTray
}

// -----------------------------------------------------------------------------
// Localization Tests
// -----------------------------------------------------------------------------

func TestLocalization_Switching(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.Preferences.SetString(config.PrefLanguage, "en")
	app.UpdateLocalizer()
	assert.Equal(t, "Settings", app.GetMsg(config.TKeyMenuSettings))

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	assert.Equal(t, "Paramètres", app.GetMsg(config.TKeyMenuSettings))
}

func TestLocalization_DetectsBundledLanguages(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.ElementsMatch(t, []string{"en", "fr"}, app.SupportedLanguages)
}

// -----------------------------------------------------------------------------
// Dashboard Rendering Tests
// -----------------------------------------------------------------------------

func openDashboard(t *testing.T, app *DonorHubApp) *dashboardScreen {
	t.Helper()
	app.Preferences.SetInt(config.PrefDonorID, 42)
	app.ShowDashboardWindow()
	require.NotNil(t, app.dashboardWindow)
	require.NotNil(t, app.dash)
	t.Cleanup(func() {
		if app.dashboardWindow != nil {
			app.dashboardWindow.Close()
		}
	})
	return app.dash
}

func TestDashboard_OpensSettingsWhenUnconfigured(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.ShowDashboardWindow()

	assert.Nil(t, app.dashboardWindow, "no dashboard without a donor ID")
	require.NotNil(t, app.Window, "settings must open instead")
	app.Window.Close()
}

func TestDashboard_InitialStateIsLoading(t *testing.T) {
	app, _, _ := setupTestApp(t)
	d := openDashboard(t, app)

	assert.Equal(t, app.GetMsg(config.TKeyBannerLoading), d.statusTitle.Text)
	assert.True(t, d.emptyHistory.Visible())
	assert.True(t, d.reminderBtn.Disabled())
}

func TestDashboard_RendersApprovedSnapshot(t *testing.T) {
	app, _, _ := setupTestApp(t)
	d := openDashboard(t, app)

	next := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC)
	days := 61

	d.render(app, dashboard.Snapshot{
		ProfileStatus: config.StatusApproved,
		Detail: api.DonorDetail{
			BloodGroup:        "O+",
			LastDonation:      &last,
			NextEligible:      &next,
			DaysUntilEligible: &days,
			IsEligible:        false,
		},
		Stats:             api.DonorStats{TotalDonations: 7},
		AvailableRequests: 2,
		Donations: []api.DonationRecord{
			{Date: last, Location: "City Hospital", Units: 1},
		},
	})

	assert.Equal(t, app.GetMsg(config.TKeyBannerApprove), d.statusTitle.Text)
	assert.Equal(t, app.GetMsg(config.TKeyStatusApprove), d.statusMsg.Text)
	assert.Equal(t, "O+", d.bloodGroup.Text)
	assert.Equal(t, "2026-07-03", d.lastDonation.Text)
	assert.Equal(t, "2026-10-01", d.nextEligible.Text)
	assert.True(t, d.countdown.Visible())
	assert.Contains(t, d.countdown.Text, "61")
	assert.False(t, d.eligibleNow.Visible())
	assert.False(t, d.reminderBtn.Disabled(), "a known next-eligible date enables the reminder export")
	assert.Equal(t, "7", d.statDonations.Value())
	assert.Equal(t, "2", d.statRequests.Value())
	assert.False(t, d.emptyHistory.Visible())
	assert.Len(t, d.donationRows.Objects, 1)
}

func TestDashboard_RendersEligibleDonor(t *testing.T) {
	app, _, _ := setupTestApp(t)
	d := openDashboard(t, app)

	next := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	days := 0

	d.render(app, dashboard.Snapshot{
		ProfileStatus: config.StatusApproved,
		Detail: api.DonorDetail{
			BloodGroup:        "A-",
			NextEligible:      &next,
			DaysUntilEligible: &days,
			IsEligible:        true,
		},
	})

	assert.False(t, d.countdown.Visible(), "zero days suppresses the countdown")
	assert.True(t, d.eligibleNow.Visible())
}

func TestDashboard_RendersRejectionRemarks(t *testing.T) {
	app, _, _ := setupTestApp(t)
	d := openDashboard(t, app)

	d.render(app, dashboard.Snapshot{
		ProfileStatus: config.StatusRejected,
		Remarks:       "low hemoglobin",
	})
	assert.Equal(t, app.GetMsg(config.TKeyBannerReject), d.statusTitle.Text)
	assert.True(t, d.remarks.Visible())
	assert.Contains(t, d.remarks.Text, "low hemoglobin")

	// Remarks only show on the rejected branch.
	d.render(app, dashboard.Snapshot{
		ProfileStatus: config.StatusApproved,
		Remarks:       "leftover text",
	})
	assert.False(t, d.remarks.Visible())
}

func TestDashboard_RendersNoProfile(t *testing.T) {
	app, _, _ := setupTestApp(t)
	d := openDashboard(t, app)

	d.render(app, dashboard.Snapshot{ProfileStatus: config.StatusNone})

	assert.Equal(t, app.GetMsg(config.TKeyBannerNone), d.statusTitle.Text)
	assert.Equal(t, app.GetMsg(config.TKeyStatusNone), d.statusMsg.Text)
	assert.Equal(t, config.FallbackBloodGroup, d.bloodGroup.Text)
	assert.True(t, d.emptyHistory.Visible())
	assert.True(t, d.reminderBtn.Disabled())
}

// TestDashboard_CloseUnmountsController pins the lifecycle: closing the
// window tears the controller down so no poll can touch the dead screen.
func TestDashboard_CloseUnmountsController(t *testing.T) {
	app, _, _ := setupTestApp(t)
	openDashboard(t, app)

	app.ctrlMu.Lock()
	mounted := app.controller != nil
	app.ctrlMu.Unlock()
	require.True(t, mounted)

	app.dashboardWindow.Close()

	app.ctrlMu.Lock()
	defer app.ctrlMu.Unlock()
	assert.Nil(t, app.controller)
	assert.Nil(t, app.dash)
	assert.Nil(t, app.dashboardWindow)
}

// -----------------------------------------------------------------------------
// Tray Tests
// -----------------------------------------------------------------------------

func TestTray_UnreadBadge(t *testing.T) {
	app, _, mockTray := setupTestApp(t)
	app.setupTrayMenu()
	require.NotNil(t, mockTray.Menu)

	app.updateTrayUnread(0)
	assert.Equal(t, app.GetMsg(config.TKeyUnreadZero), app.TrayStatusItem.Label)

	app.updateTrayUnread(3)
	assert.Contains(t, app.TrayStatusItem.Label, "3")

	app.updateTrayUnread(-1)
	assert.Equal(t, config.FallbackTrayError, app.TrayStatusItem.Label)
}

func TestTray_ApplySnapshotUpdatesBadge(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.setupTrayMenu()

	app.applySnapshot(dashboard.Snapshot{UnreadCount: 5})
	assert.Contains(t, app.TrayStatusItem.Label, "5")

	// A transport failure flips the badge to the error label instead of
	// pretending the counter went to zero.
	app.applySnapshot(dashboard.Snapshot{UnreadCount: 0, LastError: context.DeadlineExceeded})
	assert.Equal(t, config.FallbackTrayError, app.TrayStatusItem.Label)
}

func TestTray_RefreshMenuRelabels(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.setupTrayMenu()

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	app.RefreshTrayMenu()

	assert.Equal(t, "Paramètres", app.TraySettingsItem.Label)
	assert.Equal(t, "Tableau de bord", app.TrayDashboardItem.Label)
}

// -----------------------------------------------------------------------------
// Controller Lifecycle
// -----------------------------------------------------------------------------

func TestUnmountController_Idempotent(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.mountController(42)
	app.unmountController()
	app.unmountController()

	app.ctrlMu.Lock()
	defer app.ctrlMu.Unlock()
	assert.Nil(t, app.controller)
	assert.Nil(t, app.ctrlCancel)
}

func TestRefreshAll_WithoutControllerIsNoop(t *testing.T) {
	app, _, _ := setupTestApp(t)

	// Must not panic with nothing mounted.
	app.RefreshAll()
}
