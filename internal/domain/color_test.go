package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#78FFB4")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 120, G: 255, B: 180}, c)

	c, err = ParseHexColor("00ff00")
	require.NoError(t, err)
	assert.Equal(t, Color{G: 255}, c)

	for _, bad := range []string{"", "#fff", "#gggggg", "#1234567"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestColor_HexAndJSON(t *testing.T) {
	c := Color{R: 120, G: 255, B: 180}
	assert.Equal(t, "#78ffb4", c.Hex())

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `"#78ffb4"`, string(data))
}

func TestPalette_ColorFor(t *testing.T) {
	p := DefaultPalette()

	assert.Equal(t, Color{G: 255}, p.ColorFor(VFR))
	assert.Equal(t, Color{B: 255}, p.ColorFor(MVFR))
	assert.Equal(t, Color{R: 255}, p.ColorFor(IFR))
	assert.Equal(t, Color{R: 120, G: 255, B: 180}, p.ColorFor(LIFR))
	assert.Equal(t, Off, p.ColorFor(Unknown))
	assert.Equal(t, Off, p.ColorFor(FlightCategory("")))
}
