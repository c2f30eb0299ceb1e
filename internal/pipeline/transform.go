package pipeline

import (
	"time"

	"github.com/couchcryptid/metar-map-service/internal/domain"
)

// BuildReports normalizes a feed batch against the registry and classifies
// every airport. The result has exactly one report per registry index, in
// index order.
func BuildReports(reg *domain.Registry, records []domain.RawMETAR, palette domain.Palette, now time.Time) []domain.AirportReport {
	batch := domain.NormalizeBatch(reg, records)
	reports := make([]domain.AirportReport, len(batch))
	for i, obs := range batch {
		cat := obs.Category()
		reports[i] = domain.AirportReport{
			Observation: obs,
			Category:    cat,
			Color:       palette.ColorFor(cat),
			GeneratedAt: now,
		}
	}
	return reports
}

func categories(reports []domain.AirportReport) []domain.FlightCategory {
	cats := make([]domain.FlightCategory, len(reports))
	for i, r := range reports {
		cats[i] = r.Category
	}
	return cats
}

func countByCategory(reports []domain.AirportReport) map[domain.FlightCategory]int {
	counts := make(map[domain.FlightCategory]int, len(domain.Categories))
	for _, cat := range domain.Categories {
		counts[cat] = 0
	}
	for _, r := range reports {
		counts[r.Category]++
	}
	return counts
}
