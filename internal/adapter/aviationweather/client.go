// Package aviationweather fetches METAR observations from the aviationweather.gov
// data API in a single batched request per cycle.
package aviationweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/observability"
)

// DefaultBaseURL is the public data API root.
const DefaultBaseURL = "https://aviationweather.gov/api/data"

const (
	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 5 * time.Second
	maxErrorBody      = 512
)

// Client implements pipeline.Fetcher against the aviationweather.gov METAR endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	retryDelay time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client. timeout bounds each attempt; maxRetries
// is the number of additional attempts after a transport or status failure.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: maxRetries,
		retryDelay: initialRetryDelay,
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchMETARs requests the current METAR for every airport in reg. The result
// is the provider's records in response order; callers match them to the
// registry. A 204 or empty body is an empty batch, not an error.
//
// Transport failures and non-2xx statuses wrap domain.ErrFetchFailed and are
// retried with exponential backoff. An undecodable payload wraps
// domain.ErrParseFailed and is never retried.
func (c *Client) FetchMETARs(ctx context.Context, reg *domain.Registry) ([]domain.RawMETAR, error) {
	params := url.Values{
		"ids":    {reg.QueryParam()},
		"format": {"json"},
	}
	fullURL := c.baseURL + "/metar?" + params.Encode()

	start := time.Now()
	records, err := c.fetchWithRetry(ctx, fullURL)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		c.metrics.FetchRequests.WithLabelValues("success").Inc()
		c.logger.Debug("metar fetch complete", "airports", reg.Len(), "records", len(records))
	case errors.Is(err, domain.ErrParseFailed):
		c.metrics.FetchRequests.WithLabelValues("parse_error").Inc()
	default:
		c.metrics.FetchRequests.WithLabelValues("fetch_error").Inc()
	}
	return records, err
}

func (c *Client) fetchWithRetry(ctx context.Context, fullURL string) ([]domain.RawMETAR, error) {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Info("retrying metar fetch", "attempt", attempt, "backoff", delay.String(), "error", lastErr)
			c.metrics.FetchRetries.Inc()
			if !sleepWithContext(ctx, delay) {
				return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, ctx.Err())
			}
			delay = nextBackoff(delay, maxRetryDelay)
		}

		records, err := c.doRequest(ctx, fullURL)
		if err == nil {
			return records, nil
		}
		if errors.Is(err, domain.ErrParseFailed) || ctx.Err() != nil {
			return nil, err
		}
		c.logger.Warn("metar fetch failed, may retry",
			"error", err,
			"attempt", attempt+1,
			"max_attempts", c.maxRetries+1,
		)
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.RawMETAR, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: metar request: %w", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return []domain.RawMETAR{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrFetchFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrFetchFailed, err)
	}
	return decodeMETARs(body)
}

func decodeMETARs(body []byte) ([]domain.RawMETAR, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return []domain.RawMETAR{}, nil
	}
	var records []domain.RawMETAR
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: decode metar payload: %w", domain.ErrParseFailed, err)
	}
	if records == nil {
		records = []domain.RawMETAR{}
	}
	return records, nil
}

// DecodeMETARs decodes a saved feed payload the same way a live response is decoded.
func DecodeMETARs(r io.Reader) ([]domain.RawMETAR, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return decodeMETARs(body)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
