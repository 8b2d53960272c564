package dashboard

import (
	"time"

	"github.com/picpoul/donorhub/internal/api"
	"github.com/picpoul/donorhub/internal/config"
)

// Resource identifies one independently refreshed piece of remote state.
type Resource string

const (
	ResourceProfile   Resource = "profile"
	ResourceDetail    Resource = "detail"
	ResourceStats     Resource = "stats"
	ResourceDonations Resource = "donations"
	ResourceAvailable Resource = "available"
	ResourceUnread    Resource = "unread"
)

// AllResources is the full refresh set used on mount and on foreground re-entry.
var AllResources = []Resource{
	ResourceProfile,
	ResourceDetail,
	ResourceStats,
	ResourceDonations,
	ResourceAvailable,
	ResourceUnread,
}

// PolledResources is the subset refreshed by the repeating timer.
var PolledResources = []Resource{
	ResourceAvailable,
	ResourceStats,
	ResourceDetail,
}

// Snapshot is the complete dashboard state at one point in time. The
// controller hands out copies, so readers never observe a partial update.
type Snapshot struct {
	ProfileStatus     string
	Remarks           string
	Detail            api.DonorDetail
	Stats             api.DonorStats
	Donations         []api.DonationRecord
	AvailableRequests int
	UnreadCount       int

	// LastRefresh is the clock time of the most recent successful apply.
	LastRefresh time.Time

	// LastError records the most recent transport failure. It is cleared by
	// the next successful refresh and is never rendered as a hard error:
	// the values above keep their previous content until a poll succeeds.
	LastError error
}

// newSnapshot returns the pre-first-response state.
func newSnapshot() Snapshot {
	return Snapshot{
		ProfileStatus: config.StatusLoading,
		Donations:     []api.DonationRecord{},
	}
}

// StatusBranch maps a profile status to the banner branch the UI must render.
// Anything outside the four server-assigned states falls back to the loading
// branch.
func StatusBranch(status string) string {
	switch status {
	case config.StatusNone, config.StatusPending, config.StatusApproved, config.StatusRejected:
		return status
	default:
		return config.StatusLoading
	}
}

// ShowCountdown reports whether the eligibility countdown badge is rendered.
// Both conditions come from the server response; zero and negative day counts
// suppress the badge.
func ShowCountdown(d api.DonorDetail) bool {
	return d.NextEligible != nil && d.DaysUntilEligible != nil && *d.DaysUntilEligible > 0
}
