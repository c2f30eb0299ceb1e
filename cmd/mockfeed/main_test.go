package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/metar-map-service/internal/adapter/aviationweather"
	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/observability"
)

const fixture = "../../internal/adapter/aviationweather/testdata/metars.json"

func testFeed(t *testing.T) *feed {
	t.Helper()
	f, err := loadFeed(fixture, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return f
}

func TestFeed_FiltersByIDs(t *testing.T) {
	srv := httptest.NewServer(testFeed(t).routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metar?format=json&ids=KPHX,ktpa")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	records, err := aviationweather.DecodeMETARs(resp.Body)
	require.NoError(t, err)
	var codes []string
	for _, r := range records {
		codes = append(codes, r.ICAOID)
	}
	assert.ElementsMatch(t, []string{"KPHX", "KTPA"}, codes)
}

func TestFeed_NoMatchIsNoContent(t *testing.T) {
	srv := httptest.NewServer(testFeed(t).routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metar?ids=KZZZ")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// The client under test retries through an injected failure.
func TestFeed_InjectedFailureIsRetried(t *testing.T) {
	f := testFeed(t)
	f.failEvery = 2
	f.requests.Store(1) // the next request fails
	srv := httptest.NewServer(f.routes())
	defer srv.Close()

	reg, err := domain.NewRegistry([]string{"KPHX"})
	require.NoError(t, err)

	client := aviationweather.NewClient(srv.URL, 2*time.Second, 2, observability.NewMetricsForTesting(), f.logger)
	records, err := client.FetchMETARs(context.Background(), reg)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), f.requests.Load())
}
