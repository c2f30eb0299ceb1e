package domain

import (
	"strconv"
	"strings"
	"time"
)

const (
	// hpaToInHg converts hectopascals to inches of mercury.
	hpaToInHg = 0.02952998

	// visibilityTenPlus is the feed's token for "10 statute miles or more".
	visibilityTenPlus = "10+"
)

// NormalizeBatch produces one Observation per registry entry, in LED order.
// Records are matched by exact, case-sensitive icaoId; the first matching
// record wins. Entries with no matching record come back as Missing.
func NormalizeBatch(reg *Registry, records []RawMETAR) []Observation {
	out := make([]Observation, reg.Len())
	for i, entry := range reg.entries {
		raw, ok := findRecord(records, entry.Code)
		if !ok {
			out[i] = Missing(entry)
			continue
		}
		out[i] = Normalize(entry, raw)
	}
	return out
}

func findRecord(records []RawMETAR, code string) (RawMETAR, bool) {
	for _, r := range records {
		if r.ICAOID == code {
			return r, true
		}
	}
	return RawMETAR{}, false
}

// Normalize converts a raw feed record into an Observation for entry,
// applying unit conversions and resolving the visibility, wind and cloud
// fields to their canonical forms.
func Normalize(entry AirportEntry, raw RawMETAR) Observation {
	obs := Observation{
		AirportIndex: entry.Index,
		Code:         entry.Code,
		Name:         raw.Name,
		RawText:      raw.RawOb,
		VisibilityMi: resolveVisibility(raw.Visibility),
		WindDirDeg:   resolveInt(raw.WindDir),
		WindSpeedKt:  resolveInt(raw.WindSpeed),
		Present:      true,
	}

	if raw.Temp != nil {
		f := *raw.Temp*9/5 + 32
		obs.TemperatureF = &f
	}
	if raw.Altim != nil {
		inHg := *raw.Altim * hpaToInHg
		obs.AltimeterInHg = &inHg
	}
	if raw.ObsTime != nil {
		t := time.Unix(*raw.ObsTime, 0).UTC()
		obs.ObservedAt = &t
	}

	obs.CeilingFeet, obs.DominantCover = ResolveCeiling(cloudLayers(raw.Clouds))
	return obs
}

// resolveVisibility reads the visibility union: "10+" is 10.0, other text is
// parsed as a decimal, numbers pass through, everything else is -1.0.
func resolveVisibility(v FlexValue) float64 {
	switch v.Kind {
	case FlexNumber:
		return v.Number
	case FlexText:
		s := strings.TrimSpace(v.Text)
		if s == visibilityTenPlus {
			return 10.0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return VisibilityUnknown
		}
		return f
	default:
		return VisibilityUnknown
	}
}

// resolveInt truncates a numeric union to an int; text ("VRB") and absent
// values yield nil.
func resolveInt(v FlexValue) *int {
	if v.Kind != FlexNumber {
		return nil
	}
	n := int(v.Number)
	return &n
}

func cloudLayers(raw []RawCloud) []CloudLayer {
	layers := make([]CloudLayer, 0, len(raw))
	for _, c := range raw {
		layer := CloudLayer{Cover: ParseCloudCover(c.Cover)}
		if c.Base != nil {
			b := int(*c.Base)
			layer.Base = &b
		}
		layers = append(layers, layer)
	}
	return layers
}

// ResolveCeiling walks the layers in reported order and returns the ceiling
// and dominant cover. OVC/BKN layers with a positive base keep a running
// minimum; FEW/SCT layers overwrite both values unconditionally (a missing
// base resets the ceiling to unset); CLR overwrites with CeilingUnlimited.
// With no matching layer the ceiling stays CeilingUnset and cover is OTHER.
func ResolveCeiling(layers []CloudLayer) (int, CloudCover) {
	ceiling := CeilingUnset
	cover := CoverOther

	for _, l := range layers {
		base := CeilingUnset
		if l.Base != nil {
			base = *l.Base
		}

		switch l.Cover {
		case CoverOVC, CoverBKN:
			if base > 0 && (ceiling == CeilingUnset || base < ceiling) {
				ceiling = base
				cover = l.Cover
			}
		case CoverFEW, CoverSCT:
			ceiling = base
			cover = l.Cover
		case CoverCLR:
			ceiling = CeilingUnlimited
			cover = CoverCLR
		}
	}

	return ceiling, cover
}
