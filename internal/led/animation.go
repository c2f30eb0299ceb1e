package led

import (
	"context"
	"time"

	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

const (
	sweepStep     = 200 * time.Millisecond
	gradientStep  = 100 * time.Millisecond
	gradientSteps = 30
)

// StartupSequence plays the power-on animation: a sweep that lights one more
// LED per step, a short color cycle across the whole strip, then all off.
// It returns early, still ending all off, when ctx is cancelled.
func (r *Renderer) StartupSequence(ctx context.Context, clock clockwork.Clock) error {
	n := r.Len()
	if n == 0 {
		return nil
	}

	for lit := 1; lit <= n; lit++ {
		colors := make([]domain.Color, n)
		c := hueColor(lit, n)
		for j := 0; j < lit; j++ {
			colors[j] = c
		}
		if err := r.commitColors(colors); err != nil {
			return err
		}
		if !sleep(ctx, clock, sweepStep) {
			return r.AllOff()
		}
	}

	for step := 0; step < gradientSteps; step++ {
		if err := r.Fill(hueColor(step, n)); err != nil {
			return err
		}
		if !sleep(ctx, clock, gradientStep) {
			return r.AllOff()
		}
	}

	return r.AllOff()
}

// hueColor blends green to red along the strip. The hue wraps as a uint8
// once step exceeds n.
func hueColor(step, n int) domain.Color {
	hue := uint8((step * 255) / n)
	return domain.Color{R: hue, G: 255 - hue}
}

func sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-clock.After(d):
		return true
	}
}
