package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/picpoul/donorhub/internal/api"
	"github.com/picpoul/donorhub/internal/config"
)

// Controller keeps the dashboard snapshot current against the donor API.
//
// Refreshes are single-flight per resource: a trigger that fires while the
// same resource is already being fetched is dropped rather than queued.
// Every fetch carries a sequence number and a result is only applied when it
// is newer than the last applied one and the controller context is still
// alive, so teardown and overlapping triggers can never produce an
// out-of-order write to the snapshot.
type Controller struct {
	Client   api.Client
	Clock    Clock
	DonorID  int64
	Interval func() time.Duration // polling cadence, re-read after each signal
	OnChange func(Snapshot)       // invoked with a copy after every apply

	pollSignal chan struct{}

	mu       sync.Mutex
	snap     Snapshot
	inflight map[Resource]bool
	seq      uint64
	applied  map[Resource]uint64
}

// NewController constructs a controller for one donor.
func NewController(client api.Client, clock Clock, donorID int64, interval func() time.Duration, onChange func(Snapshot)) *Controller {
	return &Controller{
		Client:     client,
		Clock:      clock,
		DonorID:    donorID,
		Interval:   interval,
		OnChange:   onChange,
		pollSignal: make(chan struct{}, config.ChannelBufferSize),
		snap:       newSnapshot(),
		inflight:   make(map[Resource]bool),
		applied:    make(map[Resource]uint64),
	}
}

// Snapshot returns a copy of the current dashboard state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copySnapshotLocked()
}

func (c *Controller) copySnapshotLocked() Snapshot {
	s := c.snap
	s.Donations = make([]api.DonationRecord, len(c.snap.Donations))
	copy(s.Donations, c.snap.Donations)
	return s
}

// Start performs the initial full refresh and runs the polling loop until the
// context is cancelled. Interval changes are picked up through
// NotifyIntervalChanged without restarting the loop.
func (c *Controller) Start(ctx context.Context) {
	log := slog.With(slog.String(config.LogKeyComponent, config.CompWorker))

	c.RefreshAll(ctx)

	interval := c.pollInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-c.pollSignal:
			next := c.pollInterval()
			if next != interval {
				log.Info(config.MsgUpdatePoll, config.LogKeyOld, interval, config.LogKeyNew, next)
				interval = next
				ticker.Reset(interval)
			}

		case <-ticker.C:
			for _, res := range PolledResources {
				go c.Refresh(ctx, res)
			}
		}
	}
}

// NotifyIntervalChanged signals the polling loop to re-read Interval.
func (c *Controller) NotifyIntervalChanged() {
	select {
	case c.pollSignal <- struct{}{}:
	default:
	}
}

func (c *Controller) pollInterval() time.Duration {
	d := config.DefaultPollSec * time.Second
	if c.Interval != nil {
		if v := c.Interval(); v > 0 {
			d = v
		}
	}
	return d
}

// RefreshAll triggers a refresh of every resource. Each one is an independent
// round trip; resources already in flight are skipped.
func (c *Controller) RefreshAll(ctx context.Context) {
	for _, res := range AllResources {
		go c.Refresh(ctx, res)
	}
}

// Refresh fetches one resource and applies the result. It returns once the
// fetch has completed (or was skipped), which keeps tests deterministic.
func (c *Controller) Refresh(ctx context.Context, res Resource) {
	seq, ok := c.begin(res)
	if !ok {
		slog.Debug(config.MsgRefreshSkip,
			config.LogKeyComponent, config.CompDashboard,
			config.LogKeyResource, string(res))
		return
	}

	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompDashboard,
		config.LogKeyResource, string(res),
		config.LogKeySeq, seq,
	)
	log.Debug(config.MsgRefreshReq)

	apply := c.fetch(ctx, res)
	if c.finish(ctx, res, seq, apply) {
		log.Debug(config.MsgRefreshOK, config.LogKeyDuration, time.Since(start).Milliseconds())
	}
}

// begin marks the resource in flight and allocates its sequence number.
func (c *Controller) begin(res Resource) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[res] {
		return 0, false
	}
	c.inflight[res] = true
	c.seq++
	return c.seq, true
}

// finish clears the in-flight flag and applies the mutation unless the
// context was cancelled or a newer result has been applied meanwhile.
// It reports whether the mutation was applied.
func (c *Controller) finish(ctx context.Context, res Resource, seq uint64, apply func(*Snapshot)) bool {
	c.mu.Lock()
	c.inflight[res] = false

	if ctx.Err() != nil {
		c.mu.Unlock()
		return false
	}
	if seq < c.applied[res] {
		c.mu.Unlock()
		slog.Debug(config.MsgStaleDropped,
			config.LogKeyComponent, config.CompDashboard,
			config.LogKeyResource, string(res),
			config.LogKeySeq, seq)
		return false
	}
	c.applied[res] = seq
	apply(&c.snap)
	copied := c.copySnapshotLocked()
	c.mu.Unlock()

	if c.OnChange != nil {
		c.OnChange(copied)
	}
	return true
}

// fetch performs the network round trip for one resource and returns the
// snapshot mutation to apply. Failures are folded into the mutation so the
// error policy lives in exactly one place per resource.
func (c *Controller) fetch(ctx context.Context, res Resource) func(*Snapshot) {
	now := c.now()

	switch res {
	case ResourceProfile:
		profile, err := c.Client.Profile(ctx, c.DonorID)
		return func(s *Snapshot) {
			switch {
			case errors.Is(err, api.ErrNotFound):
				// Explicit not-found: no profile has been created yet.
				s.ProfileStatus = config.StatusNone
				s.Remarks = ""
				s.LastError = nil
				s.LastRefresh = now
			case err != nil:
				// Transient failure: keep the last known status instead of
				// masking a backend outage as "no profile yet".
				c.recordFailure(s, res, err)
			default:
				s.ProfileStatus = profile.Status
				s.Remarks = profile.Remarks
				s.LastError = nil
				s.LastRefresh = now
			}
		}

	case ResourceDetail:
		detail, err := c.Client.Detail(ctx, c.DonorID)
		return func(s *Snapshot) {
			if err != nil {
				c.recordFailure(s, res, err)
				return
			}
			s.Detail = detail
			s.LastError = nil
			s.LastRefresh = now
		}

	case ResourceStats:
		stats, err := c.Client.Stats(ctx, c.DonorID)
		return func(s *Snapshot) {
			if err != nil {
				c.recordFailure(s, res, err)
				return
			}
			s.Stats = stats
			s.LastError = nil
			s.LastRefresh = now
		}

	case ResourceDonations:
		donations, err := c.Client.RecentDonations(ctx, c.DonorID, config.RecentDonationsShown)
		return func(s *Snapshot) {
			if err != nil {
				c.recordFailure(s, res, err)
				return
			}
			if donations == nil {
				donations = []api.DonationRecord{}
			}
			s.Donations = donations
			s.LastError = nil
			s.LastRefresh = now
		}

	case ResourceAvailable:
		count, err := c.Client.AvailableRequests(ctx, c.DonorID)
		return func(s *Snapshot) {
			if err != nil {
				c.recordFailure(s, res, err)
				return
			}
			s.AvailableRequests = count
			s.LastError = nil
			s.LastRefresh = now
		}

	case ResourceUnread:
		count, err := c.Client.UnreadNotifications(ctx, c.DonorID)
		return func(s *Snapshot) {
			if err != nil {
				c.recordFailure(s, res, err)
				return
			}
			s.UnreadCount = count
			s.LastError = nil
			s.LastRefresh = now
		}
	}

	return func(*Snapshot) {}
}

// recordFailure logs a failed round trip and keeps previous values in place.
// ErrNotFound for secondary resources is treated like an empty result source
// and therefore also retained; only the profile maps it to a state change.
func (c *Controller) recordFailure(s *Snapshot, res Resource, err error) {
	s.LastError = err
	slog.Warn(config.MsgRefreshFailed,
		config.LogKeyComponent, config.CompDashboard,
		config.LogKeyResource, string(res),
		config.LogKeyError, err)
}

func (c *Controller) now() time.Time {
	if c.Clock != nil {
		return c.Clock.Now()
	}
	return time.Now()
}
