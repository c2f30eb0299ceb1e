package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB pixel value.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// Off is the color of an unlit LED.
var Off = Color{}

// ParseHexColor parses "#RRGGBB" (the leading '#' is optional).
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalJSON encodes the color as its hex string.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

// Palette maps each flight category to the LED color that displays it.
type Palette struct {
	VFR  Color
	MVFR Color
	IFR  Color
	LIFR Color
}

// DefaultPalette is the stock color table: green, blue, red, pale teal.
func DefaultPalette() Palette {
	return Palette{
		VFR:  Color{R: 0, G: 255, B: 0},
		MVFR: Color{R: 0, G: 0, B: 255},
		IFR:  Color{R: 255, G: 0, B: 0},
		LIFR: Color{R: 120, G: 255, B: 180},
	}
}

// ColorFor returns the color for a category. Unknown and anything
// unrecognized render as Off.
func (p Palette) ColorFor(cat FlightCategory) Color {
	switch cat {
	case VFR:
		return p.VFR
	case MVFR:
		return p.MVFR
	case IFR:
		return p.IFR
	case LIFR:
		return p.LIFR
	default:
		return Off
	}
}
