// Command classify runs a saved feed payload through the normalizer and the
// flight-category classifier and prints what each LED would show. The
// airport list and palette come from the same AIRPORTS and MAP_FILE
// environment the service reads, unless -airports is given.
//
// Usage:
//
//	curl -s 'https://aviationweather.gov/api/data/metar?format=json&ids=KPHX,KSDL' > payload.json
//	go run ./cmd/classify -payload payload.json -airports KPHX,KSDL
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/metar-map-service/internal/adapter/aviationweather"
	"github.com/couchcryptid/metar-map-service/internal/config"
	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/pipeline"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	payload := fs.String("payload", "", "feed payload file (JSON array); - for stdin")
	airports := fs.String("airports", "", "comma-separated airport codes in LED order (overrides AIRPORTS/MAP_FILE)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *payload == "" {
		fs.Usage()
		return errors.New("missing required flag: -payload")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	codes := cfg.Airports
	if *airports != "" {
		codes = strings.Split(*airports, ",")
	}
	reg, err := domain.NewRegistry(codes)
	if err != nil {
		return err
	}

	records, err := readPayload(*payload)
	if err != nil {
		return err
	}

	reports := pipeline.BuildReports(reg, records, cfg.Palette, time.Now())
	return printReports(out, reports)
}

func readPayload(path string) ([]domain.RawMETAR, error) {
	if path == "-" {
		return aviationweather.DecodeMETARs(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	defer f.Close()
	return aviationweather.DecodeMETARs(f)
}

func printReports(out io.Writer, reports []domain.AirportReport) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LED\tAIRPORT\tCATEGORY\tCOLOR\tVIS_MI\tCEILING_FT\tCOVER")
	for _, r := range reports {
		if !r.Present {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t-\t-\t-\n", r.AirportIndex, r.Code, r.Category, r.Color.Hex())
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.AirportIndex, r.Code, r.Category, r.Color.Hex(),
			formatVisibility(r.VisibilityMi), formatCeiling(r.CeilingFeet), r.DominantCover)
	}
	return tw.Flush()
}

func formatVisibility(v float64) string {
	if v == domain.VisibilityUnknown {
		return "?"
	}
	return fmt.Sprintf("%g", v)
}

func formatCeiling(c int) string {
	switch c {
	case domain.CeilingUnset:
		return "none"
	case domain.CeilingUnlimited:
		return "unlimited"
	}
	return fmt.Sprintf("%d", c)
}
