package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/picpoul/donorhub/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var storeNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestStore_DonorProfile(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertDonor(ctx, 1, "Ada", "O+", config.StatusRejected, "incomplete form"))

	profile, err := store.DonorProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, config.StatusRejected, profile.Status)
	assert.Equal(t, "incomplete form", profile.Remarks)

	_, err = store.DonorProfile(ctx, 99)
	assert.ErrorIs(t, err, ErrDonorNotFound)
}

func TestStore_DonorDetail_Eligibility(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertDonor(ctx, 1, "Ada", "A-", config.StatusApproved, ""))

	// No donations yet: immediately eligible, no dates.
	detail, err := store.DonorDetail(ctx, 1, storeNow)
	require.NoError(t, err)
	assert.Equal(t, "A-", detail.BloodGroup)
	assert.Nil(t, detail.LastDonation)
	assert.Nil(t, detail.NextEligible)
	assert.True(t, detail.IsEligible)

	// The newest of several donations drives the computation.
	old := storeNow.AddDate(0, 0, -200)
	recent := storeNow.AddDate(0, 0, -30)
	require.NoError(t, store.InsertDonation(ctx, 1, old, "Old Clinic", 1, "A-"))
	require.NoError(t, store.InsertDonation(ctx, 1, recent, "City Hospital", 1, "A-"))

	detail, err = store.DonorDetail(ctx, 1, storeNow)
	require.NoError(t, err)
	require.NotNil(t, detail.LastDonation)
	assert.True(t, detail.LastDonation.Equal(recent))
	require.NotNil(t, detail.NextEligible)
	assert.True(t, detail.NextEligible.Equal(recent.AddDate(0, 0, config.RecoveryDays)))
	require.NotNil(t, detail.DaysUntilEligible)
	assert.Equal(t, config.RecoveryDays-30, *detail.DaysUntilEligible)
	assert.False(t, detail.IsEligible)

	_, err = store.DonorDetail(ctx, 99, storeNow)
	assert.ErrorIs(t, err, ErrDonorNotFound)
}

func TestStore_RecentDonations_OrderAndLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertDonor(ctx, 1, "Ada", "O+", config.StatusApproved, ""))
	for i := 0; i < 8; i++ {
		when := storeNow.AddDate(0, 0, -100*(i+1))
		require.NoError(t, store.InsertDonation(ctx, 1, when, "Clinic", 1, "O+"))
	}

	records, err := store.RecentDonations(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, records, 5, "history is server-truncated")

	for i := 1; i < len(records); i++ {
		assert.True(t, records[i-1].Date.After(records[i].Date), "newest first")
	}

	// Empty history is an empty slice, not an error.
	require.NoError(t, store.InsertDonor(ctx, 2, "Ben", "B+", config.StatusPending, ""))
	records, err = store.RecentDonations(ctx, 2, 5)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)

	_, err = store.RecentDonations(ctx, 99, 5)
	assert.ErrorIs(t, err, ErrDonorNotFound)
}

func TestStore_DonorStats(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertDonor(ctx, 1, "Ada", "O+", config.StatusApproved, ""))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.InsertDonation(ctx, 1, storeNow.AddDate(0, 0, -100*(i+1)), "Clinic", 1, "O+"))
	}

	stats, err := store.DonorStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDonations)

	_, err = store.DonorStats(ctx, 99)
	assert.ErrorIs(t, err, ErrDonorNotFound)
}

func TestStore_AvailableRequests(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertDonor(ctx, 1, "Ada", "O+", config.StatusApproved, ""))

	// Matching group, any-group, other group, and an already-expired one.
	require.NoError(t, store.InsertRequest(ctx, "O+", storeNow, storeNow.AddDate(0, 0, 7)))
	require.NoError(t, store.InsertRequest(ctx, "", storeNow, storeNow.AddDate(0, 0, 7)))
	require.NoError(t, store.InsertRequest(ctx, "AB-", storeNow, storeNow.AddDate(0, 0, 7)))
	require.NoError(t, store.InsertRequest(ctx, "O+", storeNow.AddDate(0, 0, -10), storeNow.AddDate(0, 0, -3)))

	count, err := store.AvailableRequests(ctx, 1, storeNow)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "matching group plus any-group, expired excluded")

	_, err = store.AvailableRequests(ctx, 99, storeNow)
	assert.ErrorIs(t, err, ErrDonorNotFound)
}

func TestStore_UnreadNotifications(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertDonor(ctx, 1, "Ada", "O+", config.StatusApproved, ""))
	require.NoError(t, store.InsertNotification(ctx, 1, storeNow, false))
	require.NoError(t, store.InsertNotification(ctx, 1, storeNow, false))
	require.NoError(t, store.InsertNotification(ctx, 1, storeNow, true))

	count, err := store.UnreadNotifications(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = store.UnreadNotifications(ctx, 99)
	assert.ErrorIs(t, err, ErrDonorNotFound)
}

func TestStore_MixedZoneTimestamps(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertDonor(ctx, 1, "Ada", "O+", config.StatusApproved, ""))

	// Instants written from different zones must keep their real order in
	// the TEXT column, or MAX picks the wrong "most recent" donation.
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	earlier := time.Date(2026, 6, 1, 10, 0, 0, 0, tokyo) // 01:00Z
	later := time.Date(2026, 6, 1, 5, 0, 0, 0, time.UTC)
	require.True(t, later.After(earlier))

	require.NoError(t, store.InsertDonation(ctx, 1, earlier, "Harbor Clinic", 1, "O+"))
	require.NoError(t, store.InsertDonation(ctx, 1, later, "City Hospital", 1, "O+"))

	detail, err := store.DonorDetail(ctx, 1, storeNow)
	require.NoError(t, err)
	require.NotNil(t, detail.LastDonation)
	assert.True(t, detail.LastDonation.Equal(later), "newest instant wins regardless of the writer's zone")

	records, err := store.RecentDonations(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Date.Equal(later))

	// A local-offset `now` must not hide a request that is still open.
	karachi := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, karachi)     // 07:00Z
	expires := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC) // two hours later
	require.True(t, expires.After(now))

	require.NoError(t, store.InsertRequest(ctx, "O+", now.Add(-time.Hour), expires))

	count, err := store.AvailableRequests(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Nor may expiry close it early.
	n, err := store.ExpireRequests(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_ExpireRequests(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertDonor(ctx, 1, "Ada", "O+", config.StatusApproved, ""))
	require.NoError(t, store.InsertRequest(ctx, "O+", storeNow.AddDate(0, 0, -10), storeNow.AddDate(0, 0, -1)))
	require.NoError(t, store.InsertRequest(ctx, "O+", storeNow, storeNow.AddDate(0, 0, 7)))

	n, err := store.ExpireRequests(ctx, storeNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// The open one must survive and still be counted.
	count, err := store.AvailableRequests(ctx, 1, storeNow)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Idempotent: nothing left to expire.
	n, err = store.ExpireRequests(ctx, storeNow)
	require.NoError(t, err)
	assert.Zero(t, n)
}
