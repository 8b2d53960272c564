package server

import (
	"time"

	"github.com/picpoul/donorhub/internal/config"
)

// ComputeEligibility derives the full eligibility triple from the most
// recent donation. All three values come from the same computation, so the
// flag and the day count cannot drift apart. A donor with no donations is
// eligible immediately and carries no next-eligible date.
func ComputeEligibility(lastDonation *time.Time, now time.Time) (next *time.Time, days *int, eligible bool) {
	if lastDonation == nil {
		return nil, nil, true
	}

	n := lastDonation.AddDate(0, 0, config.RecoveryDays)
	next = &n

	d := 0
	if now.Before(n) {
		// Ceiling division: a partial remaining day still counts as one.
		remaining := n.Sub(now)
		d = int((remaining + 24*time.Hour - 1) / (24 * time.Hour))
	}
	days = &d

	return next, days, d == 0
}
