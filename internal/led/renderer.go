package led

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/observability"
)

// ErrFrameSize is returned when a render does not supply one category per LED.
var ErrFrameSize = errors.New("frame size does not match strip length")

// Renderer maps flight categories to colors and commits whole frames to a
// sink. Pixels and brightness change together under one lock, so a partial
// frame is never shown.
type Renderer struct {
	sink    PixelSink
	palette domain.Palette
	metrics *observability.Metrics
	logger  *slog.Logger
	n       int

	mu    sync.Mutex
	frame Frame
}

// NewRenderer creates a renderer for sink. Nothing is shown until the first commit.
func NewRenderer(sink PixelSink, palette domain.Palette, brightness uint8, metrics *observability.Metrics, logger *slog.Logger) *Renderer {
	return &Renderer{
		sink:    sink,
		palette: palette,
		metrics: metrics,
		logger:  logger,
		n:       sink.Len(),
		frame: Frame{
			Pixels:     make([]domain.Color, sink.Len()),
			Brightness: brightness,
		},
	}
}

// Len is the number of LEDs.
func (r *Renderer) Len() int { return r.n }

// Palette returns the category color table.
func (r *Renderer) Palette() domain.Palette { return r.palette }

// Render colors LED i by cats[i] and commits the frame.
func (r *Renderer) Render(cats []domain.FlightCategory) error {
	if len(cats) != r.Len() {
		return fmt.Errorf("%w: got %d categories for %d LEDs", ErrFrameSize, len(cats), r.Len())
	}
	colors := make([]domain.Color, len(cats))
	for i, cat := range cats {
		colors[i] = r.palette.ColorFor(cat)
	}
	return r.commit(colors, nil)
}

// Fill sets every LED to c and commits the frame.
func (r *Renderer) Fill(c domain.Color) error {
	colors := make([]domain.Color, r.Len())
	for i := range colors {
		colors[i] = c
	}
	return r.commit(colors, nil)
}

// AllOff turns every LED off.
func (r *Renderer) AllOff() error {
	return r.Fill(domain.Off)
}

// SetBrightness changes the global brightness and re-commits the current pixels.
func (r *Renderer) SetBrightness(b uint8) error {
	return r.commit(nil, &b)
}

// Frame returns a copy of the last committed frame.
func (r *Renderer) Frame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame.clone()
}

// commitColors shows an arbitrary frame, used by the startup animation.
func (r *Renderer) commitColors(colors []domain.Color) error {
	return r.commit(colors, nil)
}

// commit shows colors at the given brightness. nil colors re-commit the
// current pixels; nil brightness keeps the current level.
func (r *Renderer) commit(colors []domain.Color, brightness *uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if colors == nil {
		colors = r.frame.clone().Pixels
	}

	b := r.frame.Brightness
	if brightness != nil {
		b = *brightness
	}

	r.sink.SetBrightness(b)
	for i, c := range colors {
		r.sink.SetPixel(i, c)
	}
	if err := r.sink.Show(); err != nil {
		r.metrics.FrameCommits.WithLabelValues("error").Inc()
		r.logger.Error("LED frame commit failed", "error", err)
		return err
	}

	r.frame = Frame{Pixels: colors, Brightness: b}
	r.metrics.FrameCommits.WithLabelValues("success").Inc()
	r.metrics.LEDBrightness.Set(float64(b))
	return nil
}
