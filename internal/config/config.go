package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "DonorHub/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "DonorHub"
	AppID          = "com.github.picpoul.donorhub"
	KeyringService = "com.github.picpoul.donorhub"
	LogFileName    = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating secure cache directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth  = 600
	DashboardWinWidth    = 420
	DashboardWinHeight   = 640
	RecentDonationsShown = 5

	// Preference Keys
	PrefServerURL = "server_url"
	PrefDonorID   = "donor_id"
	PrefAPIUser   = "api_user"
	PrefLanguage  = "language"
	PrefPollSec   = "poll_interval_sec"
	PrefLastRun   = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Donor Profile Statuses
// -----------------------------------------------------------------------------

// Status values mirror the server-side lifecycle of a submitted donor profile.
// StatusLoading is a purely client-side state used before the first response.
const (
	StatusLoading  = "loading"
	StatusNone     = "none"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinDashboard  = "win_dashboard_title"
	TKeyWinSettings   = "win_settings_title"
	TKeyBannerLoading = "banner_loading"
	TKeyBannerNone    = "banner_none"
	TKeyBannerPending = "banner_pending"
	TKeyBannerApprove = "banner_approved"
	TKeyBannerReject  = "banner_rejected"
	TKeyStatusLoading = "status_msg_loading"
	TKeyStatusNone    = "status_msg_none"
	TKeyStatusPending = "status_msg_pending"
	TKeyStatusApprove = "status_msg_approved"
	TKeyStatusReject  = "status_msg_rejected"
	TKeyLblRemarks    = "lbl_remarks"
	TKeyLblBloodGroup = "lbl_blood_group"
	TKeyLblLastDon    = "lbl_last_donation"
	TKeyLblNextElig   = "lbl_next_eligible"
	TKeyLblEligible   = "lbl_eligible_now"
	TKeyCountdown     = "countdown_days" // Requires Days (plural)
	TKeyStatDonations = "stat_donations"
	TKeyStatRequests  = "stat_requests"
	TKeyLblRecent     = "lbl_recent_donations"
	TKeyEmptyHistory  = "empty_history"
	TKeyUnitsFmt      = "units_format" // Requires Units (plural)
	TKeyUnreadBadge   = "unread_badge" // Requires Count (plural)
	TKeyUnreadZero    = "unread_zero"
	TKeyMenuDashboard = "menu_dashboard"
	TKeyMenuRefresh   = "menu_refresh"
	TKeyMenuSettings  = "menu_settings"
	TKeyBtnRefresh    = "btn_refresh"
	TKeyBtnReminder   = "btn_export_reminder"
	TKeyBtnSave       = "btn_save"
	TKeyBtnCancel     = "btn_cancel"
	TKeyLblServer     = "lbl_server"
	TKeyLblServerURL  = "lbl_server_url"
	TKeyHelpServerURL = "help_server_url"
	TKeyLblDonorID    = "lbl_donor_id"
	TKeyHelpDonorID   = "help_donor_id"
	TKeyLblAPIUser    = "lbl_api_user"
	TKeyLblAPIToken   = "lbl_api_token"
	TKeyHelpAPIToken  = "help_api_token"
	TKeyLblGeneral    = "lbl_general"
	TKeyLblLanguage   = "lbl_language"
	TKeyHelpLanguage  = "help_language"
	TKeyLblPoll       = "lbl_poll_interval"
	TKeyHelpPoll      = "help_poll_interval"
	TKeyLblSeconds    = "lbl_seconds_suffix"
	TKeyLblFooter     = "lbl_footer"
	TKeyRemTitle      = "reminder_title"
	TKeyRemSaved      = "reminder_saved"
	TKeyRemNotAvail   = "reminder_not_available"
	TKeyAlertOK       = "alert_ok"

	// Validation Errors (UI)
	TKeyErrDonorIDReq = "err_donor_id_required"
	TKeyErrDonorIDNum = "err_donor_id_number"
	TKeyErrPollRange  = "err_poll_range"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultServerURL = "http://localhost:8080"
	DefaultLanguage  = "en"
	DefaultPollSec   = 1
	MinPollSec       = 1
	MaxPollSec       = 3600

	// ReminderUIDSalt keeps exported reminder UIDs stable across exports.
	ReminderUIDSalt = "donorhub-v1-"
)

// -----------------------------------------------------------------------------
// API Routes & Wire Format
// -----------------------------------------------------------------------------

const (
	RouteRoot        = "/"
	RouteHealth      = "/health"
	RouteProfileFmt  = "/api/donor/%d/profile"
	RouteDetailsFmt  = "/api/donor/%d/details"
	RouteRecentFmt   = "/api/donor/%d/recent-donations?limit=%d"
	RouteStatsFmt    = "/api/donor/%d/stats"
	RouteAvailFmt    = "/api/donor/%d/available"
	RouteUnreadFmt   = "/api/donor/%d/notifications/unread-count"
	DateFormatWire   = time.RFC3339
	DateFormatDay    = "2006-01-02"
	HealthStatusOK   = "OK"
	LivenessBody     = "DonorHub API is running"
	DefaultRecentLim = 5
	MaxRecentLim     = 50
)

// -----------------------------------------------------------------------------
// iCalendar Export (Eligibility Reminder)
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//DonorHub//Reminder//EN"
	ICalDomain  = "donorhub"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"

	ICalAlarmComponent = "VALARM"
	ICalAlarmAction    = "DISPLAY"
	ICalAlarmTrigger   = "-P1D"

	UIDHashLength   = 16
	FormatHashInput = "%d|%s|%s"
	FormatUID       = "%s@%s"
	ExtICS          = ".ics"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 10 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	MaxHTTPResponseSize = 1 * 1024 * 1024 // API payloads are small JSON documents
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderUserAgent     = "User-Agent"

	MimeJSON     = "application/json"
	MimeText     = "text/plain; charset=utf-8"
	BearerPrefix = "Bearer "
)

// -----------------------------------------------------------------------------
// Server Environment (donorhub-server)
// -----------------------------------------------------------------------------

const (
	EnvAppEnv      = "APP_ENV"
	EnvPort        = "PORT"
	EnvDBPath      = "DB_PATH"
	EnvSeedPath    = "SEED_PATH"
	EnvExpireSpec  = "REQUEST_EXPIRY_CRON"
	EnvDevelopment = "development"
	DefaultPort    = "8080"
	DefaultDBPath  = "donorhub.db"
	// DefaultExpireSpec closes stale blood requests at the top of every hour.
	DefaultExpireSpec = "0 * * * *"

	// RecoveryDays is the minimum gap between two whole-blood donations.
	RecoveryDays = 90
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerURLEmpty   = "configuration error: server URL is empty"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrStatusCode       = "server returned unexpected status"
	ErrDecodeBody       = "failed to decode response body"
	ErrProfileNotFound  = "donor profile not found"
	ErrNoNextEligible   = "no next-eligible date available"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrStoreOpen        = "failed to open database"
	ErrStoreSchema      = "failed to apply database schema"
	ErrSeedRead         = "failed to read seed file"
	ErrSeedParse        = "failed to parse seed file"
	ErrSchedulerSpec    = "invalid cron spec for request expiry"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackTrayLabel   = "DonorHub"
	FallbackTrayError   = "DonorHub: Refresh Error"
	FallbackUnreadFmt   = "DonorHub (%d unread)"
	FallbackCountdown   = "%d day(s) until eligible"
	FallbackRemSummary  = "Blood donation: eligible again"
	FallbackBloodGroup  = "-"
	FallbackRemFileName = "donorhub-reminder"
	FallbackPollRange   = "poll interval must be between %d and %d seconds"

	MsgRefreshReq    = "Refresh requested"
	MsgRefreshOK     = "Refresh completed"
	MsgRefreshFailed = "Refresh failed"
	MsgRefreshSkip   = "Refresh skipped, previous still in flight"
	MsgStaleDropped  = "Stale response dropped"
	MsgWorkerStart   = "Polling worker started"
	MsgWorkerStop    = "Polling worker stopping due to context cancellation"
	MsgUpdatePoll    = "Updating poll interval"
	MsgAppStop       = "Application stopped gracefully"
	MsgCtxCancel     = "Context cancelled, shutting down UI"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgLocaleLoaded  = "Locales loaded"
	MsgLangActive    = "Language selected"
	MsgTransMissing  = "Missing translation key"
	MsgTokenFail     = "API token retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgRemExported   = "Eligibility reminder exported"
	MsgForeground    = "Entered foreground, refreshing all resources"
	MsgStoreFail     = "store query failed"
	MsgSeedApplied   = "Seed data applied"
	MsgSeedSkipped   = "Database not empty, seed skipped"
	MsgExpiryRun     = "Expiring stale blood requests"
	MsgExpiryDone    = "Stale blood requests closed"
	MsgExpiryFail    = "Request expiry job failed"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyResource  = "resource"
	LogKeySeq       = "seq"
	LogKeyDonorID   = "donor_id"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyCount     = "count"
	LogKeyPath      = "path"
	LogKeySpec      = "spec"
	LogKeyPort      = "port"
	LogKeyManual    = "manual"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "build_date"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI        = "ui"
	CompUISet     = "ui_settings"
	CompDashboard = "dashboard"
	CompAPI       = "api_client"
	CompServer    = "server"
	CompStore     = "store"
	CompScheduler = "scheduler"
	CompWorker    = "worker"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompReminder  = "reminder"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
)
