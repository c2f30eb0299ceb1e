package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/metar-map-service/internal/adapter/aviationweather"
	httpadapter "github.com/couchcryptid/metar-map-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/metar-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/metar-map-service/internal/adapter/sqlite"
	"github.com/couchcryptid/metar-map-service/internal/adapter/websocket"
	"github.com/couchcryptid/metar-map-service/internal/config"
	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/led"
	"github.com/couchcryptid/metar-map-service/internal/observability"
	"github.com/couchcryptid/metar-map-service/internal/pipeline"
	"github.com/couchcryptid/metar-map-service/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	reg, err := domain.NewRegistry(cfg.Airports)
	if err != nil {
		return err
	}

	backend, closeBackend, err := openSettings(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := settings.NewStore(backend, logger, metrics)
	if err := store.Load(ctx); err != nil {
		// Defaults are in effect for anything that failed; keep running.
		logger.Warn("settings load incomplete", "error", err)
	}
	brightness, _ := store.Get(ctx, settings.LEDBrightness)

	hub := websocket.NewHub(reg.Len(), logger)
	defer hub.Close()

	sink, closeSink, err := openSink(cfg, reg.Len(), hub)
	if err != nil {
		return err
	}
	defer closeSink()

	renderer := led.NewRenderer(sink, cfg.Palette, uint8(brightness), metrics, logger)

	opts := pipeline.Options{
		Registry: reg,
		Fetcher:  aviationweather.NewClient(cfg.WeatherBaseURL, cfg.FetchTimeout, cfg.FetchMaxRetries, metrics, logger),
		Settings: store,
		Renderer: renderer,
		Clock:    clockwork.NewRealClock(),
		Location: cfg.Location(),
		Interval: cfg.UpdateInterval,
		Animate:  cfg.StartupAnimation,
		Logger:   logger,
		Metrics:  metrics,
	}

	var writer *kafkaadapter.Writer
	if cfg.PublishEnabled() {
		writer = kafkaadapter.NewWriter(cfg, metrics, logger)
		opts.Publisher = writer
		logger.Info("report publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("report publishing disabled")
	}

	ctrl := pipeline.New(opts)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:       cfg.HTTPAddr,
		Controller: ctrl,
		Frames:     hub,
		StaticDir:  cfg.StaticDir,
		Logger:     logger,
	})

	logger.Info("metar map starting",
		"airports", reg.Len(),
		"led_driver", cfg.LEDDriver,
		"settings_backend", cfg.SettingsBackend,
		"interval", cfg.UpdateInterval,
		"utc_offset", cfg.UTCOffset,
	)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start schedule controller.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("controller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("controller did not stop before shutdown timeout")
	}
	if err := renderer.AllOff(); err != nil {
		logger.Error("blank strip on shutdown", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

func openSettings(cfg *config.Config, logger *slog.Logger) (settings.Backend, func(), error) {
	if cfg.SettingsBackend == config.SettingsBackendMemory {
		logger.Warn("settings are not persisted across restarts", "backend", cfg.SettingsBackend)
		return settings.NewMemoryBackend(), func() {}, nil
	}
	db, err := sqlite.Open(cfg.SettingsDBPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open settings db: %w", err)
	}
	return db, func() {
		if err := db.Close(); err != nil {
			logger.Error("settings db close error", "error", err)
		}
	}, nil
}

// openSink returns the strip for hardware drivers, or an in-memory strip for
// the virtual driver. The websocket hub mirrors every commit either way.
func openSink(cfg *config.Config, n int, hub led.PixelSink) (led.PixelSink, func(), error) {
	if cfg.LEDDriver == config.LEDDriverVirtual {
		return led.Tee(led.NewMemorySink(n), hub), func() {}, nil
	}
	chipset, err := led.ParseChipset(cfg.LEDDriver)
	if err != nil {
		return nil, nil, err
	}
	strip, f, err := led.OpenStrip(cfg.LEDDevice, n, chipset)
	if err != nil {
		return nil, nil, err
	}
	return led.Tee(strip, hub), closer(f), nil
}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}
