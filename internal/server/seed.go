package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/picpoul/donorhub/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML document loaded into an empty database at startup.
type seedFile struct {
	Donors []struct {
		ID         int64  `yaml:"id"`
		Name       string `yaml:"name"`
		BloodGroup string `yaml:"blood_group"`
		Status     string `yaml:"status"`
		Remarks    string `yaml:"remarks"`
	} `yaml:"donors"`
	Donations []struct {
		DonorID    int64  `yaml:"donor_id"`
		Date       string `yaml:"date"` // RFC3339
		Location   string `yaml:"location"`
		Units      int    `yaml:"units"`
		BloodGroup string `yaml:"blood_group"`
	} `yaml:"donations"`
	Requests []struct {
		BloodGroup string `yaml:"blood_group"`
		ExpiresIn  int    `yaml:"expires_in_days"`
	} `yaml:"requests"`
	Notifications []struct {
		DonorID int64 `yaml:"donor_id"`
		Read    bool  `yaml:"read"`
	} `yaml:"notifications"`
}

// Seed loads the YAML file at path into the store, but only when the donors
// table is empty. Restarting the service against an existing database is a
// no-op.
func Seed(ctx context.Context, store *Store, path string, now time.Time, log zerolog.Logger) error {
	count, err := store.CountDonors(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Debug().Msg(config.MsgSeedSkipped)
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSeedRead, err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSeedParse, err)
	}

	for _, d := range seed.Donors {
		if err := store.InsertDonor(ctx, d.ID, d.Name, d.BloodGroup, d.Status, d.Remarks); err != nil {
			return err
		}
	}
	for _, d := range seed.Donations {
		donatedAt, err := time.Parse(config.DateFormatWire, d.Date)
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrSeedParse, err)
		}
		units := d.Units
		if units <= 0 {
			units = 1
		}
		if err := store.InsertDonation(ctx, d.DonorID, donatedAt, d.Location, units, d.BloodGroup); err != nil {
			return err
		}
	}
	for _, r := range seed.Requests {
		expires := now.AddDate(0, 0, r.ExpiresIn)
		if err := store.InsertRequest(ctx, r.BloodGroup, now, expires); err != nil {
			return err
		}
	}
	for _, n := range seed.Notifications {
		if err := store.InsertNotification(ctx, n.DonorID, now, n.Read); err != nil {
			return err
		}
	}

	log.Info().
		Int("donors", len(seed.Donors)).
		Int("donations", len(seed.Donations)).
		Int("requests", len(seed.Requests)).
		Msg(config.MsgSeedApplied)
	return nil
}
