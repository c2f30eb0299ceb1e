package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/metar-map-service/internal/config"
	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 10, 14, 16, 51, 0, 0, time.UTC)
	report := domain.AirportReport{
		Observation: domain.Observation{
			AirportIndex:  1,
			Code:          "KPHX",
			VisibilityMi:  10,
			CeilingFeet:   domain.CeilingUnlimited,
			DominantCover: domain.CoverCLR,
			Present:       true,
		},
		Category:    domain.VFR,
		Color:       domain.Color{G: 255},
		GeneratedAt: now,
	}

	msg, err := serializeToMessage(report)
	require.NoError(t, err)

	assert.Equal(t, []byte("KPHX"), msg.Key)
	assert.Equal(t, now, msg.Time)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "flight_category", msg.Headers[0].Key)
	assert.Equal(t, []byte("VFR"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "KPHX", decoded["code"])
	assert.Equal(t, "VFR", decoded["flight_category"])
	assert.Equal(t, "#00ff00", decoded["color"])
	assert.Equal(t, float64(1), decoded["index"])
	assert.Equal(t, "CLR", decoded["dominant_cover"])
	assert.Equal(t, true, decoded["present"])
}

func TestWriter_PublishReportsEmpty(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaTopic: "unused"}
	w := NewWriter(cfg, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.PublishReports(context.Background(), nil))
}
