// Package server implements the DonorHub donor API service: a chi router in
// front of a SQLite store, with a cron job expiring stale blood requests.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/picpoul/donorhub/internal/config"
	"github.com/rs/zerolog"
)

// Server serves the donor API over HTTP.
type Server struct {
	Port  string
	Store *Store
	Log   zerolog.Logger

	// Now is swappable for deterministic eligibility in tests.
	Now func() time.Time
}

// New creates a Server bound to the given port.
func New(port string, store *Store, log zerolog.Logger) *Server {
	return &Server{
		Port:  port,
		Store: store,
		Log:   log,
		Now:   time.Now,
	}
}

// Handler builds the chi router. Exposed separately so tests can drive it
// through httptest without opening a socket.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
	)

	r.Get(config.RouteRoot, s.handleRoot)
	r.Get(config.RouteHealth, s.handleHealth)

	r.Route("/api/donor/{donorID}", func(r chi.Router) {
		r.Get("/profile", s.handleProfile)
		r.Get("/details", s.handleDetails)
		r.Get("/recent-donations", s.handleRecentDonations)
		r.Get("/stats", s.handleStats)
		r.Get("/available", s.handleAvailable)
		r.Get("/notifications/unread-count", s.handleUnreadCount)
	})

	return r
}

// Start runs the HTTP server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		s.Log.Info().Str(config.LogKeyPort, s.Port).Msg(config.MsgServerListen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.Log.Info().Msg(config.MsgServerStop)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HeaderContentType, config.MimeText)
	_, _ = w.Write([]byte(config.LivenessBody))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, map[string]string{"status": config.HealthStatusOK})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	donorID, ok := s.donorID(w, r)
	if !ok {
		return
	}
	profile, err := s.Store.DonorProfile(r.Context(), donorID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  profile.Status,
		"remarks": profile.Remarks,
	})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	donorID, ok := s.donorID(w, r)
	if !ok {
		return
	}
	detail, err := s.Store.DonorDetail(r.Context(), donorID, s.Now())
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{
		"success":           true,
		"bloodGroup":        detail.BloodGroup,
		"lastDonation":      detail.LastDonation,
		"nextEligible":      detail.NextEligible,
		"daysUntilEligible": detail.DaysUntilEligible,
		"isEligible":        detail.IsEligible,
	})
}

func (s *Server) handleRecentDonations(w http.ResponseWriter, r *http.Request) {
	donorID, ok := s.donorID(w, r)
	if !ok {
		return
	}

	limit := config.DefaultRecentLim
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > config.MaxRecentLim {
		limit = config.MaxRecentLim
	}

	donations, err := s.Store.RecentDonations(r.Context(), donorID, limit)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{
		"success":   true,
		"donations": donations,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	donorID, ok := s.donorID(w, r)
	if !ok {
		return
	}
	stats, err := s.Store.DonorStats(r.Context(), donorID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{
		"success":        true,
		"totalDonations": stats.TotalDonations,
	})
}

func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	donorID, ok := s.donorID(w, r)
	if !ok {
		return
	}
	count, err := s.Store.AvailableRequests(r.Context(), donorID, s.Now())
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   count,
	})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	donorID, ok := s.donorID(w, r)
	if !ok {
		return
	}
	count, err := s.Store.UnreadNotifications(r.Context(), donorID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   count,
	})
}

// donorID parses the path parameter. A malformed ID is indistinguishable
// from an unknown donor as far as clients are concerned.
func (s *Server) donorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "donorID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.json(w, http.StatusOK, map[string]any{"success": false})
		return 0, false
	}
	return id, true
}

// storeError maps store failures to wire responses: unknown donor becomes a
// success:false envelope, anything else is a 500.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrDonorNotFound) {
		s.json(w, http.StatusOK, map[string]any{"success": false})
		return
	}
	s.Log.Error().Err(err).Msg(config.MsgStoreFail)
	s.json(w, http.StatusInternalServerError, map[string]any{"success": false})
}

func (s *Server) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
