// Package settings holds the operator-adjustable map settings (brightness and
// the active hour window) with compiled-in defaults and durable persistence.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/metar-map-service/internal/domain"
)

// Setting names. This set is fixed; anything else is ErrUnknownSetting.
const (
	LEDBrightness = "led_brightness"
	StartTime     = "start_time"
	EndTime       = "end_time"
)

// Definition describes one setting: its compiled-in default and valid range.
type Definition struct {
	Name    string
	Default int
	Min     int
	Max     int
}

// Definitions lists every known setting in display order.
var Definitions = []Definition{
	{Name: LEDBrightness, Default: 75, Min: 0, Max: 255},
	{Name: StartTime, Default: 7, Min: 0, Max: 23},
	{Name: EndTime, Default: 20, Min: 0, Max: 23},
}

// Lookup returns the definition for name.
func Lookup(name string) (Definition, bool) {
	for _, d := range Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Backend persists integer settings in a flat namespace.
type Backend interface {
	// Load returns the stored value and whether one was found.
	Load(ctx context.Context, name string) (int, bool, error)
	// Save durably writes value before returning.
	Save(ctx context.Context, name string, value int) error
}

// Observer is notified after a write attempt, e.g. for metrics.
type Observer interface {
	SettingWritten(name string, err error)
}

// Store is the process-wide settings cache backed by a durable Backend. The
// cache is the source of truth for the running process; the backend is what
// survives a restart.
type Store struct {
	backend  Backend
	logger   *slog.Logger
	observer Observer

	mu     sync.RWMutex
	values map[string]int
}

// NewStore creates a Store over backend. observer may be nil.
func NewStore(backend Backend, logger *slog.Logger, observer Observer) *Store {
	return &Store{
		backend:  backend,
		logger:   logger,
		observer: observer,
		values:   make(map[string]int, len(Definitions)),
	}
}

// Load resolves every setting once, writing back defaults for any that were
// never persisted. Call at startup.
func (s *Store) Load(ctx context.Context) error {
	var errs []error
	for _, d := range Definitions {
		if _, err := s.Get(ctx, d.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get returns the value of name. Lookup order is cache, backend, default.
// When the default is used it is persisted immediately so later reads are
// stable. A backend failure still yields a usable value alongside the error.
func (s *Store) Get(ctx context.Context, name string) (int, error) {
	def, ok := Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownSetting, name)
	}

	s.mu.RLock()
	v, cached := s.values[name]
	s.mu.RUnlock()
	if cached {
		return v, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have resolved it while we waited for the write lock.
	if v, cached := s.values[name]; cached {
		return v, nil
	}

	stored, found, err := s.backend.Load(ctx, name)
	if err != nil {
		s.logger.Warn("settings load failed, using default", "setting", name, "default", def.Default, "error", err)
		s.values[name] = def.Default
		return def.Default, fmt.Errorf("load %s: %w", name, err)
	}
	if found {
		s.logger.Debug("setting loaded", "setting", name, "value", stored)
		s.values[name] = stored
		return stored, nil
	}

	s.logger.Info("setting not persisted, writing default", "setting", name, "default", def.Default)
	s.values[name] = def.Default
	if err := s.persist(ctx, name, def.Default); err != nil {
		return def.Default, err
	}
	return def.Default, nil
}

// Set validates value, updates the cache, and persists it synchronously.
// Unknown names and out-of-range values are rejected without any change.
// If only the durable write fails, the new value is live in memory and
// ErrPersistWriteFailed is returned.
func (s *Store) Set(ctx context.Context, name string, value int) error {
	def, ok := Lookup(name)
	if !ok {
		s.logger.Warn("rejected unknown setting", "setting", name)
		return fmt.Errorf("%w: %q", domain.ErrUnknownSetting, name)
	}
	if value < def.Min || value > def.Max {
		return fmt.Errorf("%w: %s=%d (want %d-%d)", domain.ErrInvalidValue, name, value, def.Min, def.Max)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[name] = value
	if err := s.persist(ctx, name, value); err != nil {
		return err
	}
	s.logger.Info("setting saved", "setting", name, "value", value)
	return nil
}

// Snapshot returns the cached values. Settings not yet resolved are omitted.
func (s *Store) Snapshot() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context, name string, value int) error {
	err := s.backend.Save(ctx, name, value)
	if s.observer != nil {
		s.observer.SettingWritten(name, err)
	}
	if err != nil {
		s.logger.Error("settings persist failed", "setting", name, "value", value, "error", err)
		return fmt.Errorf("%w: %s: %w", domain.ErrPersistWriteFailed, name, err)
	}
	return nil
}
