// Command mockfeed serves a fixture file as a stand-in for the
// aviationweather.gov METAR endpoint, so the map can be run on a bench
// without network access.
//
// Usage:
//
//	go run ./cmd/mockfeed -fixture internal/adapter/aviationweather/testdata/metars.json
//	WEATHER_BASE_URL=http://localhost:8081 go run ./cmd/metarmap
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/couchcryptid/metar-map-service/internal/observability"
)

type feed struct {
	records    []map[string]any
	failEvery  int64
	failStatus int
	delay      time.Duration
	logger     *slog.Logger

	requests atomic.Int64
}

func main() {
	if err := run(); err != nil {
		slog.Error("mockfeed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", ":8081", "listen address")
	fixture := flag.String("fixture", "", "JSON array of METAR records to serve")
	failEvery := flag.Int64("fail-every", 0, "fail every Nth request (0 disables)")
	failStatus := flag.Int("fail-status", http.StatusServiceUnavailable, "status code for injected failures")
	delay := flag.Duration("delay", 0, "latency added to every response")
	flag.Parse()

	if *fixture == "" {
		flag.Usage()
		return errors.New("missing required flag: -fixture")
	}

	logger := observability.NewLogger(os.Stderr, "info", "text")
	f, err := loadFeed(*fixture, logger)
	if err != nil {
		return err
	}
	f.failEvery = *failEvery
	f.failStatus = *failStatus
	f.delay = *delay

	logger.Info("mock feed listening", "addr", *addr, "records", len(f.records), "fail_every", f.failEvery)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           f.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func loadFeed(path string, logger *slog.Logger) (*feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return &feed{records: records, failStatus: http.StatusServiceUnavailable, logger: logger}, nil
}

func (f *feed) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/metar", f.handleMETAR)
	return r
}

func (f *feed) handleMETAR(w http.ResponseWriter, r *http.Request) {
	n := f.requests.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}
	if f.failEvery > 0 && n%f.failEvery == 0 {
		f.logger.Warn("injecting failure", "request", n, "status", f.failStatus)
		http.Error(w, "injected failure", f.failStatus)
		return
	}

	out := f.filter(r.URL.Query().Get("ids"))
	if len(out) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out) //nolint:errcheck // best-effort response
}

// filter keeps records whose icaoId is in the comma-separated ids list.
// An empty list matches everything.
func (f *feed) filter(ids string) []map[string]any {
	if ids == "" {
		return f.records
	}
	want := make(map[string]bool)
	for _, id := range strings.Split(ids, ",") {
		want[strings.ToUpper(strings.TrimSpace(id))] = true
	}
	var out []map[string]any
	for _, rec := range f.records {
		if id, _ := rec["icaoId"].(string); want[id] {
			out = append(out, rec)
		}
	}
	return out
}
