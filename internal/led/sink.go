// Package led drives the airport indicator strip. A Renderer owns the current
// frame and commits it to one or more PixelSinks as a single unit.
package led

import (
	"errors"
	"sync"

	"github.com/couchcryptid/metar-map-service/internal/domain"
)

// PixelSink is an addressable pixel strip. SetPixel and SetBrightness only
// stage state; nothing is visible until Show.
type PixelSink interface {
	Len() int
	SetPixel(i int, c domain.Color)
	SetBrightness(b uint8)
	Show() error
}

// Frame is a committed strip state: one color per LED plus global brightness.
type Frame struct {
	Pixels     []domain.Color `json:"pixels"`
	Brightness uint8          `json:"brightness"`
}

func (f Frame) clone() Frame {
	px := make([]domain.Color, len(f.Pixels))
	copy(px, f.Pixels)
	return Frame{Pixels: px, Brightness: f.Brightness}
}

// MemorySink is a virtual strip that records every committed frame.
type MemorySink struct {
	mu      sync.Mutex
	staged  Frame
	commits []Frame
	ShowErr error
}

// NewMemorySink creates a virtual strip of n pixels.
func NewMemorySink(n int) *MemorySink {
	return &MemorySink{staged: Frame{Pixels: make([]domain.Color, n)}}
}

func (m *MemorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.staged.Pixels)
}

func (m *MemorySink) SetPixel(i int, c domain.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= 0 && i < len(m.staged.Pixels) {
		m.staged.Pixels[i] = c
	}
}

func (m *MemorySink) SetBrightness(b uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged.Brightness = b
}

func (m *MemorySink) Show() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShowErr != nil {
		return m.ShowErr
	}
	m.commits = append(m.commits, m.staged.clone())
	return nil
}

// Commits returns every frame shown so far, oldest first.
func (m *MemorySink) Commits() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Frame, len(m.commits))
	for i, f := range m.commits {
		out[i] = f.clone()
	}
	return out
}

// Last returns the most recently shown frame.
func (m *MemorySink) Last() (Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.commits) == 0 {
		return Frame{}, false
	}
	return m.commits[len(m.commits)-1].clone(), true
}

type tee []PixelSink

// Tee fans every call out to all sinks. Len reports the first sink's length.
func Tee(sinks ...PixelSink) PixelSink {
	return tee(sinks)
}

func (t tee) Len() int {
	if len(t) == 0 {
		return 0
	}
	return t[0].Len()
}

func (t tee) SetPixel(i int, c domain.Color) {
	for _, s := range t {
		s.SetPixel(i, c)
	}
}

func (t tee) SetBrightness(b uint8) {
	for _, s := range t {
		s.SetBrightness(b)
	}
}

// Show commits every sink even if an earlier one fails.
func (t tee) Show() error {
	var errs []error
	for _, s := range t {
		if err := s.Show(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
