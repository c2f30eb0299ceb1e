package domain

import (
	"bytes"
	"encoding/json"
)

// RawMETAR is one station object from the aviationweather.gov JSON feed.
// Every field is optional; fields whose type varies between stations are
// decoded as FlexValue and resolved during normalization.
type RawMETAR struct {
	ICAOID     string     `json:"icaoId"`
	Name       string     `json:"name"`
	RawOb      string     `json:"rawOb"`
	Temp       *float64   `json:"temp"`  // degrees Celsius
	Altim      *float64   `json:"altim"` // hectopascals
	WindDir    FlexValue  `json:"wdir"`  // degrees, or "VRB"
	WindSpeed  FlexValue  `json:"wspd"`  // knots
	Visibility FlexValue  `json:"visib"` // statute miles, or "10+"
	Clouds     []RawCloud `json:"clouds"`
	ObsTime    *int64     `json:"obsTime"` // unix seconds
}

// RawCloud is a single reported cloud layer.
type RawCloud struct {
	Cover string   `json:"cover"`
	Base  *float64 `json:"base"` // feet AGL
}

// FlexKind identifies which variant a FlexValue holds.
type FlexKind uint8

const (
	FlexAbsent FlexKind = iota
	FlexNumber
	FlexText
)

// FlexValue is a JSON field that the feed sends as a number, a string, or
// not at all. It is a tagged union: exactly one of Number or Text is
// meaningful, selected by Kind.
type FlexValue struct {
	Kind   FlexKind
	Number float64
	Text   string
}

// Num builds a numeric FlexValue.
func Num(v float64) FlexValue { return FlexValue{Kind: FlexNumber, Number: v} }

// Text builds a textual FlexValue.
func Text(s string) FlexValue { return FlexValue{Kind: FlexText, Text: s} }

// UnmarshalJSON decodes numbers and strings; null, booleans, objects and
// arrays all decode as absent rather than failing the whole batch.
func (f *FlexValue) UnmarshalJSON(data []byte) error {
	*f = FlexValue{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Text(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = Num(n)
	}
	return nil
}

// CloudCover is the sky cover reported for a cloud layer.
type CloudCover string

const (
	CoverFEW   CloudCover = "FEW"
	CoverSCT   CloudCover = "SCT"
	CoverBKN   CloudCover = "BKN"
	CoverOVC   CloudCover = "OVC"
	CoverCLR   CloudCover = "CLR"
	CoverOther CloudCover = "OTHER"
)

// ParseCloudCover maps the feed's cover string to a CloudCover. Matching is
// exact; unrecognized values (SKC, CAVOK, OVX, "") are OTHER.
func ParseCloudCover(s string) CloudCover {
	switch CloudCover(s) {
	case CoverFEW, CoverSCT, CoverBKN, CoverOVC, CoverCLR:
		return CloudCover(s)
	default:
		return CoverOther
	}
}

// CloudLayer is a normalized cloud layer. Base is nil when not reported.
type CloudLayer struct {
	Cover CloudCover
	Base  *int
}
