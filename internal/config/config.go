package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/metar-map-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables
// and an optional TOML map file.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Weather feed.
	WeatherBaseURL  string
	FetchTimeout    time.Duration
	FetchMaxRetries int
	UpdateInterval  time.Duration

	// Map layout. UTCOffset is the fixed local offset used for the active window.
	UTCOffset time.Duration
	MapFile   string
	Airports  []string
	Palette   domain.Palette

	SettingsBackend string
	SettingsDBPath  string

	// LED output.
	LEDDriver        string
	LEDDevice        string
	StartupAnimation bool
	StaticDir        string

	// Report publishing; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

const (
	SettingsBackendSQLite = "sqlite"
	SettingsBackendMemory = "memory"

	LEDDriverWS2812B = "ws2812b"
	LEDDriverWS2811  = "ws2811"
	LEDDriverVirtual = "virtual"
)

// maxUTCOffset bounds UTC_OFFSET to real-world zones.
const maxUTCOffset = 14 * time.Hour

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	updateInterval, err := parsePositiveDuration("UPDATE_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}

	maxRetries, err := strconv.Atoi(sharedcfg.EnvOrDefault("FETCH_MAX_RETRIES", "2"))
	if err != nil || maxRetries < 0 || maxRetries > 10 {
		return nil, errors.New("invalid FETCH_MAX_RETRIES: must be an integer between 0 and 10")
	}

	offset, err := time.ParseDuration(sharedcfg.EnvOrDefault("UTC_OFFSET", "-7h"))
	if err != nil || offset < -maxUTCOffset || offset > maxUTCOffset || offset%time.Minute != 0 {
		return nil, errors.New("invalid UTC_OFFSET: must be a whole-minute duration within ±14h, e.g. -7h")
	}

	animate, err := strconv.ParseBool(sharedcfg.EnvOrDefault("STARTUP_ANIMATION", "true"))
	if err != nil {
		return nil, errors.New("invalid STARTUP_ANIMATION: must be true or false")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WeatherBaseURL:  sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://aviationweather.gov/api/data"),
		FetchTimeout:    fetchTimeout,
		FetchMaxRetries: maxRetries,
		UpdateInterval:  updateInterval,

		UTCOffset: offset,
		MapFile:   os.Getenv("MAP_FILE"),
		Airports:  domain.DefaultAirports,
		Palette:   domain.DefaultPalette(),

		SettingsBackend: sharedcfg.EnvOrDefault("SETTINGS_BACKEND", SettingsBackendSQLite),
		SettingsDBPath:  sharedcfg.EnvOrDefault("SETTINGS_DB_PATH", "metar-map.db"),

		LEDDriver:        strings.ToLower(sharedcfg.EnvOrDefault("LED_DRIVER", LEDDriverVirtual)),
		LEDDevice:        os.Getenv("LED_DEVICE"),
		StartupAnimation: animate,
		StaticDir:        os.Getenv("STATIC_DIR"),

		KafkaBrokers: parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "metar-map-reports"),
	}

	if cfg.MapFile != "" {
		if err := cfg.applyMapFile(cfg.MapFile); err != nil {
			return nil, err
		}
	}
	if v := os.Getenv("AIRPORTS"); v != "" {
		cfg.Airports = splitList(v)
	}
	if _, err := domain.NewRegistry(cfg.Airports); err != nil {
		return nil, fmt.Errorf("invalid AIRPORTS: %w", err)
	}

	switch cfg.SettingsBackend {
	case SettingsBackendSQLite:
		if cfg.SettingsDBPath == "" {
			return nil, errors.New("SETTINGS_DB_PATH is required for the sqlite settings backend")
		}
	case SettingsBackendMemory:
	default:
		return nil, fmt.Errorf("invalid SETTINGS_BACKEND %q: must be sqlite or memory", cfg.SettingsBackend)
	}

	switch cfg.LEDDriver {
	case LEDDriverWS2812B, LEDDriverWS2811:
		if cfg.LEDDevice == "" {
			return nil, fmt.Errorf("LED_DEVICE is required for LED_DRIVER=%s", cfg.LEDDriver)
		}
	case LEDDriverVirtual:
	default:
		return nil, fmt.Errorf("invalid LED_DRIVER %q: must be ws2812b, ws2811 or virtual", cfg.LEDDriver)
	}

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// Location is the fixed zone the active window is evaluated in.
func (c *Config) Location() *time.Location {
	secs := int(c.UTCOffset / time.Second)
	return time.FixedZone(fmt.Sprintf("UTC%+03d:%02d", secs/3600, abs(secs%3600)/60), secs)
}

// PublishEnabled reports whether airport reports go to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseBrokers(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return sharedcfg.ParseBrokers(raw)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
