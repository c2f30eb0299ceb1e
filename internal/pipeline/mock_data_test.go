package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/metar-map-service/internal/adapter/aviationweather"
	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildReports_WithFixtureFeed runs a recorded feed payload through
// normalization and classification.
func TestBuildReports_WithFixtureFeed(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "metars.json"))
	require.NoError(t, err)
	defer f.Close()

	records, err := aviationweather.DecodeMETARs(f)
	require.NoError(t, err)

	reg, err := domain.NewRegistry([]string{"KLAL", "KTPA", "KSDL", "KPHX", "KGYR"})
	require.NoError(t, err)

	now := time.Date(2024, time.October, 14, 17, 0, 0, 0, time.UTC)
	reports := pipeline.BuildReports(reg, records, domain.DefaultPalette(), now)
	require.Len(t, reports, reg.Len())

	cases := []struct {
		code    string
		cat     domain.FlightCategory
		ceiling int
		cover   domain.CloudCover
		vis     float64
	}{
		{"KLAL", domain.LIFR, domain.CeilingUnset, domain.CoverOther, 0.5},
		{"KTPA", domain.IFR, 800, domain.CoverOVC, 2},
		{"KSDL", domain.MVFR, 2500, domain.CoverBKN, 4},
		{"KPHX", domain.VFR, 8000, domain.CoverFEW, 10},
		{"KGYR", domain.Unknown, domain.CeilingUnset, domain.CoverOther, domain.VisibilityUnknown},
	}

	for i, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			r := reports[i]
			assert.Equal(t, i, r.AirportIndex)
			assert.Equal(t, tc.code, r.Code)
			assert.Equal(t, tc.cat, r.Category)
			assert.Equal(t, tc.ceiling, r.CeilingFeet)
			assert.Equal(t, tc.cover, r.DominantCover)
			assert.InDelta(t, tc.vis, r.VisibilityMi, 0.0001)
			assert.Equal(t, domain.DefaultPalette().ColorFor(tc.cat), r.Color)
			assert.Equal(t, now, r.GeneratedAt)
		})
	}

	assert.Equal(t, "Lakeland Linder Intl, FL, US", reports[0].Name)
	assert.Contains(t, reports[1].RawText, "OVC008")
	require.NotNil(t, reports[2].WindSpeedKt)
	assert.Nil(t, reports[2].WindDirDeg, "VRB wind has no direction")
}
