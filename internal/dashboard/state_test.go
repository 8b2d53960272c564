package dashboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/picpoul/donorhub/internal/api"
	"github.com/picpoul/donorhub/internal/config"
	"github.com/picpoul/donorhub/internal/dashboard"
)

func TestStatusBranch(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   string
	}{
		{"None", config.StatusNone, config.StatusNone},
		{"Pending", config.StatusPending, config.StatusPending},
		{"Approved", config.StatusApproved, config.StatusApproved},
		{"Rejected", config.StatusRejected, config.StatusRejected},
		{"Loading", config.StatusLoading, config.StatusLoading},
		{"UnknownFallsBackToLoading", "archived", config.StatusLoading},
		{"EmptyFallsBackToLoading", "", config.StatusLoading},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dashboard.StatusBranch(tt.status))
		})
	}
}

func TestShowCountdown(t *testing.T) {
	next := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	days := func(n int) *int { return &n }

	tests := []struct {
		name   string
		detail api.DonorDetail
		want   bool
	}{
		{"PositiveDays", api.DonorDetail{NextEligible: &next, DaysUntilEligible: days(12)}, true},
		{"ZeroDaysSuppressed", api.DonorDetail{NextEligible: &next, DaysUntilEligible: days(0)}, false},
		{"NegativeDaysSuppressed", api.DonorDetail{NextEligible: &next, DaysUntilEligible: days(-3)}, false},
		{"NoDateSuppressed", api.DonorDetail{DaysUntilEligible: days(5)}, false},
		{"NoDaysSuppressed", api.DonorDetail{NextEligible: &next}, false},
		{"EmptyDetail", api.DonorDetail{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dashboard.ShowCountdown(tt.detail))
		})
	}
}

// TestPolledResources_Subset documents which resources ride the timer: the
// fast-moving counters and eligibility, while profile, history, and the unread
// badge wait for a mount or an explicit refresh.
func TestPolledResources_Subset(t *testing.T) {
	assert.Subset(t, dashboard.AllResources, dashboard.PolledResources)
	assert.NotContains(t, dashboard.PolledResources, dashboard.ResourceProfile)
	assert.NotContains(t, dashboard.PolledResources, dashboard.ResourceDonations)
	assert.NotContains(t, dashboard.PolledResources, dashboard.ResourceUnread)
}
