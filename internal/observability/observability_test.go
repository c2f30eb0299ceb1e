package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("fetched", "airports", 15)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "fetched", rec["msg"])
	assert.EqualValues(t, 15, rec["airports"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "debug", "text").Debug("frame committed", "pixels", 3)
	assert.Contains(t, buf.String(), "pixels=3")
}

func TestMetrics_SettingWritten(t *testing.T) {
	m := NewMetricsForTesting()
	m.SettingWritten("led_brightness", nil)
	m.SettingWritten("led_brightness", errors.New("boom"))
	m.SettingWritten("led_brightness", nil)

	assert.InDelta(t, 2, testutil.ToFloat64(m.SettingsWrites.WithLabelValues("led_brightness", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SettingsWrites.WithLabelValues("led_brightness", "error")), 0)
}
