package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/picpoul/donorhub/internal/api"
	"github.com/picpoul/donorhub/internal/config"
	_ "modernc.org/sqlite"
)

// ErrDonorNotFound marks lookups for donors that do not exist. Handlers map
// it to a success:false envelope rather than an HTTP error.
var ErrDonorNotFound = errors.New(config.ErrProfileNotFound)

const schema = `
CREATE TABLE IF NOT EXISTS donors (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	blood_group TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending',
	remarks     TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS donations (
	id          TEXT PRIMARY KEY,
	donor_id    INTEGER NOT NULL REFERENCES donors(id),
	donated_at  TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	units       INTEGER NOT NULL DEFAULT 1,
	blood_group TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_donations_donor ON donations(donor_id, donated_at DESC);
CREATE TABLE IF NOT EXISTS blood_requests (
	id          TEXT PRIMARY KEY,
	blood_group TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'open',
	created_at  TEXT NOT NULL,
	expires_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	donor_id   INTEGER NOT NULL REFERENCES donors(id),
	created_at TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0
);
`

const (
	requestStatusOpen    = "open"
	requestStatusExpired = "expired"
)

// Store wraps the SQLite database holding donors, donations, blood requests
// and notifications.
type Store struct {
	db *sql.DB
}

// wireTime serializes a timestamp for storage. Times are normalized to UTC
// so every stored string carries the Z suffix and byte order equals time
// order; MAX() and range comparisons on TEXT columns depend on this.
func wireTime(t time.Time) string {
	return t.UTC().Format(config.DateFormatWire)
}

// OpenStore opens (or creates) the database at path and applies the schema.
// Use ":memory:" for tests.
func OpenStore(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrStoreSchema, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DonorProfile returns the approval status and reviewer remarks of a donor.
func (s *Store) DonorProfile(ctx context.Context, donorID int64) (api.DonorProfile, error) {
	var p api.DonorProfile
	row := s.db.QueryRowContext(ctx,
		`SELECT status, remarks FROM donors WHERE id = ?`, donorID)
	if err := row.Scan(&p.Status, &p.Remarks); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.DonorProfile{}, ErrDonorNotFound
		}
		return api.DonorProfile{}, err
	}
	return p, nil
}

// DonorDetail returns blood group and eligibility data, computed at read
// time from the most recent donation so the flag and the day count can
// never disagree.
func (s *Store) DonorDetail(ctx context.Context, donorID int64, now time.Time) (api.DonorDetail, error) {
	var bloodGroup string
	row := s.db.QueryRowContext(ctx,
		`SELECT blood_group FROM donors WHERE id = ?`, donorID)
	if err := row.Scan(&bloodGroup); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.DonorDetail{}, ErrDonorNotFound
		}
		return api.DonorDetail{}, err
	}

	var lastRaw sql.NullString
	row = s.db.QueryRowContext(ctx,
		`SELECT MAX(donated_at) FROM donations WHERE donor_id = ?`, donorID)
	if err := row.Scan(&lastRaw); err != nil {
		return api.DonorDetail{}, err
	}

	var last *time.Time
	if lastRaw.Valid && lastRaw.String != "" {
		t, err := time.Parse(config.DateFormatWire, lastRaw.String)
		if err != nil {
			return api.DonorDetail{}, err
		}
		last = &t
	}

	next, days, eligible := ComputeEligibility(last, now)
	return api.DonorDetail{
		BloodGroup:        bloodGroup,
		LastDonation:      last,
		NextEligible:      next,
		DaysUntilEligible: days,
		IsEligible:        eligible,
	}, nil
}

// RecentDonations returns the donor's newest donations, truncated to limit.
func (s *Store) RecentDonations(ctx context.Context, donorID int64, limit int) ([]api.DonationRecord, error) {
	if exists, err := s.donorExists(ctx, donorID); err != nil {
		return nil, err
	} else if !exists {
		return nil, ErrDonorNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT donated_at, location, units, blood_group
		 FROM donations WHERE donor_id = ?
		 ORDER BY donated_at DESC LIMIT ?`, donorID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	records := []api.DonationRecord{}
	for rows.Next() {
		var raw string
		var rec api.DonationRecord
		if err := rows.Scan(&raw, &rec.Location, &rec.Units, &rec.BloodGroup); err != nil {
			return nil, err
		}
		if rec.Date, err = time.Parse(config.DateFormatWire, raw); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DonorStats returns lifetime donation figures.
func (s *Store) DonorStats(ctx context.Context, donorID int64) (api.DonorStats, error) {
	if exists, err := s.donorExists(ctx, donorID); err != nil {
		return api.DonorStats{}, err
	} else if !exists {
		return api.DonorStats{}, ErrDonorNotFound
	}

	var stats api.DonorStats
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM donations WHERE donor_id = ?`, donorID)
	if err := row.Scan(&stats.TotalDonations); err != nil {
		return api.DonorStats{}, err
	}
	return stats, nil
}

// AvailableRequests counts open, unexpired blood requests matching the
// donor's group. Requests with an empty group accept any donor.
func (s *Store) AvailableRequests(ctx context.Context, donorID int64, now time.Time) (int, error) {
	var bloodGroup string
	row := s.db.QueryRowContext(ctx,
		`SELECT blood_group FROM donors WHERE id = ?`, donorID)
	if err := row.Scan(&bloodGroup); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrDonorNotFound
		}
		return 0, err
	}

	var count int
	row = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blood_requests
		 WHERE status = ? AND expires_at > ?
		   AND (blood_group = '' OR blood_group = ?)`,
		requestStatusOpen, wireTime(now), bloodGroup)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UnreadNotifications counts unread notifications for the donor.
func (s *Store) UnreadNotifications(ctx context.Context, donorID int64) (int, error) {
	if exists, err := s.donorExists(ctx, donorID); err != nil {
		return 0, err
	} else if !exists {
		return 0, ErrDonorNotFound
	}

	var count int
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE donor_id = ? AND read = 0`, donorID)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ExpireRequests closes open blood requests past their expiry time and
// returns the number of rows affected.
func (s *Store) ExpireRequests(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE blood_requests SET status = ?
		 WHERE status = ? AND expires_at <= ?`,
		requestStatusExpired, requestStatusOpen, wireTime(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountDonors reports how many donors exist; used to gate seeding.
func (s *Store) CountDonors(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM donors`)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// InsertDonor creates a donor row.
func (s *Store) InsertDonor(ctx context.Context, id int64, name, bloodGroup, status, remarks string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO donors (id, name, blood_group, status, remarks) VALUES (?, ?, ?, ?, ?)`,
		id, name, bloodGroup, status, remarks)
	return err
}

// InsertDonation records a donation for a donor.
func (s *Store) InsertDonation(ctx context.Context, donorID int64, donatedAt time.Time, location string, units int, bloodGroup string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO donations (id, donor_id, donated_at, location, units, blood_group)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), donorID, wireTime(donatedAt), location, units, bloodGroup)
	return err
}

// InsertRequest creates an open blood request.
func (s *Store) InsertRequest(ctx context.Context, bloodGroup string, createdAt, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blood_requests (id, blood_group, status, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), bloodGroup, requestStatusOpen,
		wireTime(createdAt), wireTime(expiresAt))
	return err
}

// InsertNotification creates a notification row for a donor.
func (s *Store) InsertNotification(ctx context.Context, donorID int64, createdAt time.Time, read bool) error {
	readVal := 0
	if read {
		readVal = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, donor_id, created_at, read) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), donorID, wireTime(createdAt), readVal)
	return err
}

func (s *Store) donorExists(ctx context.Context, donorID int64) (bool, error) {
	var one int
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM donors WHERE id = ?`, donorID)
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
