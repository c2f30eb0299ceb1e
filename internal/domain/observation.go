package domain

import "time"

const (
	// VisibilityUnknown is the sentinel for a missing or unparsable visibility.
	VisibilityUnknown = -1.0

	// CeilingUnset is the sentinel for "no ceiling resolved".
	CeilingUnset = -1

	// CeilingUnlimited is the ceiling assigned when a CLR layer is reported.
	CeilingUnlimited = 60000
)

// Observation is the canonical, normalized form of one airport's METAR.
// There is exactly one per registry index per cycle. Present is false when
// the feed returned nothing for the airport; every other field then holds
// its sentinel.
type Observation struct {
	AirportIndex  int        `json:"index"`
	Code          string     `json:"code"`
	Name          string     `json:"name,omitempty"`
	TemperatureF  *float64   `json:"temperature_f,omitempty"`
	AltimeterInHg *float64   `json:"altimeter_inhg,omitempty"`
	WindDirDeg    *int       `json:"wind_dir_deg,omitempty"`
	WindSpeedKt   *int       `json:"wind_speed_kt,omitempty"`
	VisibilityMi  float64    `json:"visibility_mi"`
	CeilingFeet   int        `json:"ceiling_ft"`
	DominantCover CloudCover `json:"dominant_cover"`
	RawText       string     `json:"raw_text,omitempty"`
	ObservedAt    *time.Time `json:"observed_at,omitempty"`
	Present       bool       `json:"present"`
}

// Missing builds the "no data" observation for an airport absent from the feed.
func Missing(entry AirportEntry) Observation {
	return Observation{
		AirportIndex:  entry.Index,
		Code:          entry.Code,
		VisibilityMi:  VisibilityUnknown,
		CeilingFeet:   CeilingUnset,
		DominantCover: CoverOther,
	}
}

// Category classifies the observation. Absent observations are Unknown.
func (o Observation) Category() FlightCategory {
	if !o.Present {
		return Unknown
	}
	return Classify(o.VisibilityMi, o.CeilingFeet, o.DominantCover)
}

// AirportReport is the per-airport outcome of one cycle, as exposed to the
// control surface and published downstream.
type AirportReport struct {
	Observation
	Category    FlightCategory `json:"flight_category"`
	Color       Color          `json:"color"`
	GeneratedAt time.Time      `json:"generated_at"`
}
