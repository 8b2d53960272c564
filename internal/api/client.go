package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/picpoul/donorhub/internal/config"
)

// ErrNotFound is returned when the server answered successfully but reported
// success:false, i.e. the donor or their profile does not exist yet. It is a
// distinct outcome from transport errors and must never be conflated with
// them by callers.
var ErrNotFound = errors.New(config.ErrProfileNotFound)

// Client defines the contract to the donor API. The interface exists so the
// dashboard controller and the UI can be tested against a mock.
type Client interface {
	Profile(ctx context.Context, donorID int64) (DonorProfile, error)
	Detail(ctx context.Context, donorID int64) (DonorDetail, error)
	RecentDonations(ctx context.Context, donorID int64, limit int) ([]DonationRecord, error)
	Stats(ctx context.Context, donorID int64) (DonorStats, error)
	AvailableRequests(ctx context.Context, donorID int64) (int, error)
	UnreadNotifications(ctx context.Context, donorID int64) (int, error)
}

// HTTPClient implements Client against a DonorHub API server.
type HTTPClient struct {
	BaseURL string
	Token   string // optional bearer token, attached when non-empty
	Client  *http.Client
}

// NewHTTPClient creates an HTTPClient with configured timeouts.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// envelope is the common response wrapper of every API route.
type envelope struct {
	Success bool `json:"success"`
}

type profileResponse struct {
	envelope
	DonorProfile
}

type detailResponse struct {
	envelope
	DonorDetail
}

type donationsResponse struct {
	envelope
	Donations []DonationRecord `json:"donations"`
}

type statsResponse struct {
	envelope
	DonorStats
}

type countResponse struct {
	envelope
	Count int `json:"count"`
}

// Profile fetches the donor profile approval status.
func (c *HTTPClient) Profile(ctx context.Context, donorID int64) (DonorProfile, error) {
	var resp profileResponse
	if err := c.get(ctx, fmt.Sprintf(config.RouteProfileFmt, donorID), &resp); err != nil {
		return DonorProfile{}, err
	}
	if !resp.Success {
		return DonorProfile{}, ErrNotFound
	}
	return resp.DonorProfile, nil
}

// Detail fetches blood group and eligibility data.
func (c *HTTPClient) Detail(ctx context.Context, donorID int64) (DonorDetail, error) {
	var resp detailResponse
	if err := c.get(ctx, fmt.Sprintf(config.RouteDetailsFmt, donorID), &resp); err != nil {
		return DonorDetail{}, err
	}
	if !resp.Success {
		return DonorDetail{}, ErrNotFound
	}
	return resp.DonorDetail, nil
}

// RecentDonations fetches the server-truncated donation history, newest first.
func (c *HTTPClient) RecentDonations(ctx context.Context, donorID int64, limit int) ([]DonationRecord, error) {
	if limit <= 0 {
		limit = config.DefaultRecentLim
	}
	var resp donationsResponse
	if err := c.get(ctx, fmt.Sprintf(config.RouteRecentFmt, donorID, limit), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, ErrNotFound
	}
	return resp.Donations, nil
}

// Stats fetches lifetime donation figures.
func (c *HTTPClient) Stats(ctx context.Context, donorID int64) (DonorStats, error) {
	var resp statsResponse
	if err := c.get(ctx, fmt.Sprintf(config.RouteStatsFmt, donorID), &resp); err != nil {
		return DonorStats{}, err
	}
	if !resp.Success {
		return DonorStats{}, ErrNotFound
	}
	return resp.DonorStats, nil
}

// AvailableRequests fetches the count of open blood requests matching the donor.
func (c *HTTPClient) AvailableRequests(ctx context.Context, donorID int64) (int, error) {
	var resp countResponse
	if err := c.get(ctx, fmt.Sprintf(config.RouteAvailFmt, donorID), &resp); err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, ErrNotFound
	}
	return resp.Count, nil
}

// UnreadNotifications fetches the unread notification counter.
func (c *HTTPClient) UnreadNotifications(ctx context.Context, donorID int64) (int, error) {
	var resp countResponse
	if err := c.get(ctx, fmt.Sprintf(config.RouteUnreadFmt, donorID), &resp); err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, ErrNotFound
	}
	return resp.Count, nil
}

// get performs a single GET round trip and decodes the JSON body into out.
// The URL is validated and sanitized before logging so tokens embedded in
// query strings never reach the logs.
func (c *HTTPClient) get(ctx context.Context, route string, out any) error {
	if c.BaseURL == "" {
		return errors.New(config.ErrServerURLEmpty)
	}

	target := c.BaseURL + route
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	safeURL := u.Scheme + "://" + u.Host + u.Path
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompAPI),
		slog.String(config.LogKeyURL, safeURL),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if c.Token != "" {
		req.Header.Set(config.HeaderAuthorization, config.BearerPrefix+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("network error during fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Warn(config.ErrStatusCode, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return fmt.Errorf("%s: %d %s", config.ErrStatusCode, resp.StatusCode, resp.Status)
	}

	body := io.LimitReader(resp.Body, config.MaxHTTPResponseSize)
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", config.ErrDecodeBody, err)
	}
	return nil
}
