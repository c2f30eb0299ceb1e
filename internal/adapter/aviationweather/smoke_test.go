//go:build live

package aviationweather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real aviationweather.gov API.
// Run with: go test -tags=live ./internal/adapter/aviationweather/ -v -count=1

func TestSmoke_FetchDefaultAirports(t *testing.T) {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		maxRetries: 1,
		retryDelay: time.Second,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	reg, err := domain.NewRegistry(domain.DefaultAirports)
	require.NoError(t, err)

	records, err := c.FetchMETARs(context.Background(), reg)
	require.NoError(t, err)
	assert.NotEmpty(t, records)

	batch := domain.NormalizeBatch(reg, records)
	require.Len(t, batch, reg.Len())
	for _, obs := range batch {
		t.Logf("%s present=%v category=%s raw=%q", obs.Code, obs.Present, obs.Category(), obs.RawText)
	}
}
