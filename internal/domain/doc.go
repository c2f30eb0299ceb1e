// Package domain models aviation weather observations (METARs) and the
// flight-category decisions derived from them for an LED sectional map.
//
// # Data Source
//
// Observations come from the aviationweather.gov Data API, requested in one
// batched call per cycle: https://aviationweather.gov/api/data/metar?format=json&ids=KPHX,KSDL,...
// The response is a JSON array with one object per station. Any field may be
// absent or null, and several fields change type between stations.
//
// # Feed Conventions
//
// Temperature ("temp"): degrees Celsius, converted to Fahrenheit.
//
// Altimeter ("altim"): hectopascals, converted to inches of mercury by
// multiplying by 0.02952998.
//
// Visibility ("visib"): statute miles, sent either as a number (2.5) or as
// text. The text token "10+" means ten miles or more and is read as 10.0;
// any other text is parsed as a decimal. Missing or unparsable values become
// the sentinel -1.0.
//
// Wind direction ("wdir"): degrees true as a number, or the text "VRB" for
// variable winds. Text is treated as absent.
//
// Clouds ("clouds"): a list of {cover, base} layers in the order the station
// reported them. Cover is one of FEW, SCT, BKN, OVC, CLR; anything else is
// OTHER. Base is feet AGL and may be missing.
//
// # Ceiling Resolution
//
// The ceiling and dominant cover are resolved in feed order, not sorted:
//
//	OVC/BKN with base > 0  running minimum of the base
//	FEW/SCT                unconditionally overwrite with this layer
//	CLR                    unconditionally overwrite with 60000 ft
//
// A later FEW/SCT/CLR layer therefore overrides a lower BKN/OVC layer
// reported before it. The map has always behaved this way and the ordering
// dependency is preserved on purpose. See [Normalize].
//
// # Flight Categories
//
// Derived by [Classify] with first-match-wins rules:
//
//	FEW/SCT/CLR cover         ceiling forced to 10000 ft
//	vis > 5 and ceil > 3000   VFR
//	3 <= vis <= 5 or 1000 <= ceil <= 3000   MVFR
//	1 <= vis < 3 or 500 <= ceil < 1000      IFR
//	vis < 1 or ceil < 500     LIFR
//	otherwise                 Unknown
//
// The bands overlap for some inputs; evaluation order decides.
package domain
