package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/led"
	"github.com/couchcryptid/metar-map-service/internal/observability"
	"github.com/couchcryptid/metar-map-service/internal/settings"
	"github.com/jonboulle/clockwork"
)

// Fetcher retrieves the raw observations for every airport in the registry.
type Fetcher interface {
	FetchMETARs(ctx context.Context, reg *domain.Registry) ([]domain.RawMETAR, error)
}

// SettingsStore reads and writes the operator settings.
type SettingsStore interface {
	Get(ctx context.Context, name string) (int, error)
	Set(ctx context.Context, name string, value int) error
}

// ReportPublisher receives the airport reports of every successful active cycle.
type ReportPublisher interface {
	PublishReports(ctx context.Context, reports []domain.AirportReport) error
}

// State is the outcome of the most recent schedule evaluation.
type State string

const (
	StateStarting State = "starting"
	StateActive   State = "active"
	StateInactive State = "inactive"
)

// Status is a read-only snapshot of the controller.
type Status struct {
	State       State                  `json:"state"`
	Hour        int                    `json:"hour"`
	Window      Window                 `json:"window"`
	Brightness  uint8                  `json:"brightness"`
	LastAttempt *time.Time             `json:"last_attempt,omitempty"`
	LastSuccess *time.Time             `json:"last_success,omitempty"`
	LastError   string                 `json:"last_error,omitempty"`
	Airports    []domain.AirportReport `json:"airports"`
}

// Options configures a Controller.
type Options struct {
	Registry  *domain.Registry
	Fetcher   Fetcher
	Settings  SettingsStore
	Renderer  *led.Renderer
	Publisher ReportPublisher // optional
	Clock     clockwork.Clock
	Location  *time.Location
	Interval  time.Duration
	Animate   bool
	Logger    *slog.Logger
	Metrics   *observability.Metrics
}

// Controller decides on every tick whether the map should be lit, and if so
// runs one fetch, normalize, classify and render cycle. It is the only
// writer of the LED frame apart from brightness commands.
type Controller struct {
	reg       *domain.Registry
	fetcher   Fetcher
	settings  SettingsStore
	renderer  *led.Renderer
	publisher ReportPublisher
	clock     clockwork.Clock
	loc       *time.Location
	interval  time.Duration
	animate   bool
	logger    *slog.Logger
	metrics   *observability.Metrics

	// cycle is held from fetch through render.
	cycle sync.Mutex
	ready atomic.Bool

	mu     sync.RWMutex
	status Status
}

// New creates a Controller. Clock defaults to the real clock and Location to UTC.
func New(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Controller{
		reg:       opts.Registry,
		fetcher:   opts.Fetcher,
		settings:  opts.Settings,
		renderer:  opts.Renderer,
		publisher: opts.Publisher,
		clock:     opts.Clock,
		loc:       opts.Location,
		interval:  opts.Interval,
		animate:   opts.Animate,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		status:    Status{State: StateStarting},
	}
}

// CheckReadiness returns nil once the controller has completed at least one
// evaluation.
func (c *Controller) CheckReadiness(_ context.Context) error {
	if !c.ready.Load() {
		return errors.New("controller has not completed an evaluation yet")
	}
	return nil
}

// Run plays the startup animation if enabled, evaluates once immediately,
// then evaluates on every tick until ctx is cancelled. Manual triggers do
// not reset the tick phase.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("controller started", "interval", c.interval.String(), "airports", c.reg.Len())
	c.metrics.ControllerRunning.Set(1)
	defer c.metrics.ControllerRunning.Set(0)

	if c.animate {
		if err := c.renderer.StartupSequence(ctx, c.clock); err != nil {
			c.logger.Warn("startup sequence failed", "error", err)
		}
	}

	c.evaluateLogged(ctx)

	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("controller stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			c.evaluateLogged(ctx)
		}
	}
}

func (c *Controller) evaluateLogged(ctx context.Context) {
	err := c.Evaluate(ctx)
	switch {
	case err == nil, ctx.Err() != nil:
	case errors.Is(err, domain.ErrBusy):
		c.logger.Debug("scheduled evaluation skipped, cycle in progress")
	default:
		c.logger.Error("evaluation failed", "error", err)
	}
}

// Evaluate runs one schedule evaluation. Inside the active window it fetches
// and renders; outside it turns every LED off without touching the network.
// A fetch or parse failure aborts the cycle before rendering, leaving the
// previous frame on the strip. ErrBusy is returned if a cycle is already running.
func (c *Controller) Evaluate(ctx context.Context) error {
	if !c.cycle.TryLock() {
		return domain.ErrBusy
	}
	defer c.cycle.Unlock()
	defer c.ready.Store(true)

	now := c.clock.Now()
	hour := now.In(c.loc).Hour()
	window := c.window(ctx)

	c.mu.Lock()
	c.status.Hour = hour
	c.status.Window = window
	c.status.LastAttempt = &now
	c.mu.Unlock()

	if !window.Active(hour) {
		return c.deactivate(window, hour)
	}
	return c.refresh(ctx, now, window, hour)
}

func (c *Controller) deactivate(window Window, hour int) error {
	c.logger.Debug("outside active window, lights off", "hour", hour, "window", window.String())
	c.metrics.Cycles.WithLabelValues(string(StateInactive)).Inc()

	c.mu.Lock()
	c.status.State = StateInactive
	c.mu.Unlock()

	if err := c.renderer.AllOff(); err != nil {
		c.recordError(err)
		return fmt.Errorf("turn lights off: %w", err)
	}
	return nil
}

func (c *Controller) refresh(ctx context.Context, now time.Time, window Window, hour int) error {
	c.mu.Lock()
	c.status.State = StateActive
	c.mu.Unlock()

	records, err := c.fetcher.FetchMETARs(ctx, c.reg)
	if err != nil {
		c.metrics.Cycles.WithLabelValues("failed").Inc()
		c.recordError(err)
		return fmt.Errorf("fetch observations: %w", err)
	}

	reports := BuildReports(c.reg, records, c.renderer.Palette(), now)
	if err := c.renderer.Render(categories(reports)); err != nil {
		c.metrics.Cycles.WithLabelValues("failed").Inc()
		c.recordError(err)
		return fmt.Errorf("render frame: %w", err)
	}

	counts := countByCategory(reports)
	for cat, n := range counts {
		c.metrics.AirportsByCategory.WithLabelValues(string(cat)).Set(float64(n))
	}
	c.metrics.Cycles.WithLabelValues(string(StateActive)).Inc()
	c.metrics.LastSuccess.Set(float64(now.Unix()))

	c.mu.Lock()
	c.status.LastSuccess = &now
	c.status.LastError = ""
	c.status.Airports = reports
	c.mu.Unlock()

	c.logger.Info("map updated",
		"hour", hour,
		"window", window.String(),
		"records", len(records),
		"vfr", counts[domain.VFR],
		"mvfr", counts[domain.MVFR],
		"ifr", counts[domain.IFR],
		"lifr", counts[domain.LIFR],
		"unknown", counts[domain.Unknown],
	)

	if c.publisher != nil {
		if err := c.publisher.PublishReports(ctx, reports); err != nil {
			c.logger.Warn("publish reports failed", "error", err)
		}
	}
	return nil
}

// window reads the active hours. A settings failure still yields the
// fallback values, so the cycle proceeds.
func (c *Controller) window(ctx context.Context) Window {
	start, err := c.settings.Get(ctx, settings.StartTime)
	if err != nil {
		c.logger.Warn("read start time failed", "error", err, "using", start)
	}
	end, err := c.settings.Get(ctx, settings.EndTime)
	if err != nil {
		c.logger.Warn("read end time failed", "error", err, "using", end)
	}
	return Window{Start: start, End: end}
}

func (c *Controller) recordError(err error) {
	c.mu.Lock()
	c.status.LastError = err.Error()
	c.mu.Unlock()
}

// Status returns a snapshot. Airports holds the last successful batch, which
// is kept while the map is dark or a fetch fails.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.status
	s.Airports = append([]domain.AirportReport(nil), c.status.Airports...)
	s.Brightness = c.renderer.Frame().Brightness
	return s
}

// Frame returns the last committed LED frame.
func (c *Controller) Frame() led.Frame { return c.renderer.Frame() }
