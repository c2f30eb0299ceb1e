package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/couchcryptid/metar-map-service/internal/domain"
)

// MapFile is the on-disk map layout: the airport list in LED order and
// optional color overrides.
//
//	airports = ["KCHD", "KPHX"]
//
//	[colors]
//	vfr  = "#00FF00"
//	lifr = "#78FFB4"
type MapFile struct {
	Airports []string `toml:"airports"`
	Colors   struct {
		VFR  string `toml:"vfr"`
		MVFR string `toml:"mvfr"`
		IFR  string `toml:"ifr"`
		LIFR string `toml:"lifr"`
	} `toml:"colors"`
}

func (c *Config) applyMapFile(path string) error {
	var mf MapFile
	if _, err := toml.DecodeFile(path, &mf); err != nil {
		return fmt.Errorf("invalid MAP_FILE %s: %w", path, err)
	}

	if len(mf.Airports) > 0 {
		c.Airports = mf.Airports
	}

	overrides := []struct {
		hex string
		dst *domain.Color
	}{
		{mf.Colors.VFR, &c.Palette.VFR},
		{mf.Colors.MVFR, &c.Palette.MVFR},
		{mf.Colors.IFR, &c.Palette.IFR},
		{mf.Colors.LIFR, &c.Palette.LIFR},
	}
	for _, o := range overrides {
		if o.hex == "" {
			continue
		}
		color, err := domain.ParseHexColor(o.hex)
		if err != nil {
			return fmt.Errorf("invalid MAP_FILE %s: %w", path, err)
		}
		*o.dst = color
	}
	return nil
}
