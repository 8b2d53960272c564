package server

import (
	"context"
	"fmt"
	"time"

	"github.com/picpoul/donorhub/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler runs periodic store maintenance. Its single job closes blood
// requests whose expiry time has passed, so the available-request counts the
// clients poll stay honest between writes.
type Scheduler struct {
	cronEngine *cron.Cron
	store      *Store
	log        zerolog.Logger
}

// NewScheduler registers the expiry job under the given cron spec.
func NewScheduler(store *Store, log zerolog.Logger, spec string) (*Scheduler, error) {
	s := &Scheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		store:      store,
		log:        log,
	}

	if _, err := s.cronEngine.AddFunc(spec, s.expireRequests); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSchedulerSpec, err)
	}
	return s, nil
}

// Start launches the cron engine in its own goroutine.
func (s *Scheduler) Start() {
	s.cronEngine.Start()
}

// Stop halts the cron engine and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
}

func (s *Scheduler) expireRequests() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s.log.Debug().Msg(config.MsgExpiryRun)
	n, err := s.store.ExpireRequests(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg(config.MsgExpiryFail)
		return
	}
	if n > 0 {
		s.log.Info().Int64(config.LogKeyCount, n).Msg(config.MsgExpiryDone)
	}
}
