package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDevice = "/dev/ttyUSB0"

func writeMapFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://aviationweather.gov/api/data", cfg.WeatherBaseURL)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.FetchMaxRetries)
	assert.Equal(t, 15*time.Minute, cfg.UpdateInterval)
	assert.Equal(t, -7*time.Hour, cfg.UTCOffset)
	assert.Equal(t, domain.DefaultAirports, cfg.Airports)
	assert.Equal(t, domain.DefaultPalette(), cfg.Palette)
	assert.Equal(t, SettingsBackendSQLite, cfg.SettingsBackend)
	assert.Equal(t, "metar-map.db", cfg.SettingsDBPath)
	assert.Equal(t, LEDDriverVirtual, cfg.LEDDriver)
	assert.True(t, cfg.StartupAnimation)
	assert.Empty(t, cfg.StaticDir)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.PublishEnabled())
	assert.Equal(t, "metar-map-reports", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("WEATHER_BASE_URL", "http://localhost:8081/api/data")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("FETCH_MAX_RETRIES", "0")
	t.Setenv("UPDATE_INTERVAL", "5m")
	t.Setenv("UTC_OFFSET", "-5h")
	t.Setenv("AIRPORTS", "KTPA, KPIE,KSPG")
	t.Setenv("SETTINGS_BACKEND", "memory")
	t.Setenv("LED_DRIVER", "WS2811")
	t.Setenv("LED_DEVICE", testDevice)
	t.Setenv("STARTUP_ANIMATION", "false")
	t.Setenv("STATIC_DIR", "/srv/www")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-reports")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8081/api/data", cfg.WeatherBaseURL)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 0, cfg.FetchMaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.UpdateInterval)
	assert.Equal(t, -5*time.Hour, cfg.UTCOffset)
	assert.Equal(t, []string{"KTPA", "KPIE", "KSPG"}, cfg.Airports)
	assert.Equal(t, SettingsBackendMemory, cfg.SettingsBackend)
	assert.Equal(t, LEDDriverWS2811, cfg.LEDDriver)
	assert.Equal(t, testDevice, cfg.LEDDevice)
	assert.False(t, cfg.StartupAnimation)
	assert.Equal(t, "/srv/www", cfg.StaticDir)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.PublishEnabled())
	assert.Equal(t, "custom-reports", cfg.KafkaTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"FETCH_TIMEOUT", "soon"},
		{"FETCH_TIMEOUT", "0s"},
		{"UPDATE_INTERVAL", "-1m"},
		{"FETCH_MAX_RETRIES", "-1"},
		{"FETCH_MAX_RETRIES", "lots"},
		{"UTC_OFFSET", "15h"},
		{"UTC_OFFSET", "MST"},
		{"STARTUP_ANIMATION", "maybe"},
		{"AIRPORTS", "KPHX,PHX"},
		{"SETTINGS_BACKEND", "redis"},
		{"LED_DRIVER", "apa102"},
	}

	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestLoad_StripDriverRequiresDevice(t *testing.T) {
	t.Setenv("LED_DRIVER", "ws2812b")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LED_DEVICE")
}

func TestLoad_MapFile(t *testing.T) {
	path := writeMapFile(t, `
airports = ["KCHD", "KPHX"]

[colors]
vfr = "#00FF00"
lifr = "#FF00FF"
`)
	t.Setenv("MAP_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"KCHD", "KPHX"}, cfg.Airports)
	assert.Equal(t, domain.Color{R: 255, B: 255}, cfg.Palette.LIFR)
	assert.Equal(t, domain.DefaultPalette().IFR, cfg.Palette.IFR, "unset colors keep defaults")
}

func TestLoad_AirportsEnvOverridesMapFile(t *testing.T) {
	t.Setenv("MAP_FILE", writeMapFile(t, `airports = ["KCHD", "KPHX"]`))
	t.Setenv("AIRPORTS", "KLAL")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"KLAL"}, cfg.Airports)
}

func TestLoad_MapFileErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("MAP_FILE", filepath.Join(t.TempDir(), "nope.toml"))
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MAP_FILE")
	})

	t.Run("bad color", func(t *testing.T) {
		t.Setenv("MAP_FILE", writeMapFile(t, "[colors]\nifr = \"red\"\n"))
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MAP_FILE")
	})

	t.Run("bad toml", func(t *testing.T) {
		t.Setenv("MAP_FILE", writeMapFile(t, "airports = [\n"))
		_, err := Load()
		require.Error(t, err)
	})
}

func TestConfig_Location(t *testing.T) {
	cfg := &Config{UTCOffset: -7 * time.Hour}
	loc := cfg.Location()

	at := time.Date(2024, time.October, 14, 14, 0, 0, 0, time.UTC).In(loc)
	assert.Equal(t, 7, at.Hour())
	assert.Equal(t, "UTC-07:00", loc.String())

	cfg = &Config{UTCOffset: 5*time.Hour + 30*time.Minute}
	assert.Equal(t, "UTC+05:30", cfg.Location().String())
}
