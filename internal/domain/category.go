package domain

// FlightCategory is the FAA flight-rules category derived from visibility and ceiling.
type FlightCategory string

const (
	VFR     FlightCategory = "VFR"
	MVFR    FlightCategory = "MVFR"
	IFR     FlightCategory = "IFR"
	LIFR    FlightCategory = "LIFR"
	Unknown FlightCategory = "UNKNOWN"
)

// Categories lists every category, in order of decreasing conditions.
var Categories = []FlightCategory{VFR, MVFR, IFR, LIFR, Unknown}

// nonLimitingCeiling replaces the ceiling when the dominant cover is FEW, SCT or CLR.
const nonLimitingCeiling = 10000

// Classify maps visibility (statute miles), ceiling (feet, -1 when unset) and
// dominant cover to a flight category. Rules are evaluated in a fixed order
// and the first match wins; the MVFR/IFR/LIFR bands overlap for some inputs
// and the order is what resolves them.
func Classify(visibility float64, ceiling int, cover CloudCover) FlightCategory {
	switch cover {
	case CoverFEW, CoverCLR, CoverSCT:
		ceiling = nonLimitingCeiling
	}

	switch {
	case visibility > 5.0 && ceiling > 3000:
		return VFR
	case (visibility >= 3.0 && visibility <= 5.0) || (ceiling >= 1000 && ceiling <= 3000):
		return MVFR
	case (visibility >= 1.0 && visibility < 3.0) || (ceiling >= 500 && ceiling < 1000):
		return IFR
	case visibility < 1.0 || ceiling < 500:
		return LIFR
	default:
		return Unknown
	}
}
