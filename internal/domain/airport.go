package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// icaoRe matches a four-character ICAO location identifier, e.g. "KPHX" or "KA39".
var icaoRe = regexp.MustCompile(`^[A-Z0-9]{4}$`)

// DefaultAirports is the compiled-in map layout, one entry per LED in strip order.
var DefaultAirports = []string{
	"KCHD", "KPHX", "KGYR", "KGEU", "KDVT", "KSDL", "KFFZ", "KIWA",
	"KSRQ", "KSPG", "KPIE", "KTPA", "KBKV", "KZPH", "KLAL",
}

// AirportEntry binds an airport identifier to its LED position.
type AirportEntry struct {
	Code  string `json:"code"`
	Index int    `json:"index"`
}

// Registry is the fixed, ordered list of airports on the map. Its length is
// the number of addressable LEDs and never changes after startup.
type Registry struct {
	entries []AirportEntry
}

// NewRegistry validates the codes and assigns each one the LED index of its
// position. Duplicate codes are allowed; each LED resolves independently.
func NewRegistry(codes []string) (*Registry, error) {
	if len(codes) == 0 {
		return nil, errors.New("airport registry must not be empty")
	}
	entries := make([]AirportEntry, len(codes))
	for i, code := range codes {
		code = strings.TrimSpace(code)
		if !icaoRe.MatchString(code) {
			return nil, fmt.Errorf("%w: %q at index %d", ErrInvalidAirport, code, i)
		}
		entries[i] = AirportEntry{Code: code, Index: i}
	}
	return &Registry{entries: entries}, nil
}

// Len returns the number of airports, equal to the LED count.
func (r *Registry) Len() int { return len(r.entries) }

// Entries returns a copy of the registry entries in LED order.
func (r *Registry) Entries() []AirportEntry {
	out := make([]AirportEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Codes returns the airport identifiers in LED order.
func (r *Registry) Codes() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Code
	}
	return out
}

// QueryParam joins every identifier with commas for the batched feed request.
func (r *Registry) QueryParam() string {
	return strings.Join(r.Codes(), ",")
}
