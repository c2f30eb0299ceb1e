package led

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/couchcryptid/metar-map-service/internal/domain"
)

// Chipset selects the on-wire byte order of the strip.
type Chipset string

const (
	// WS2812B strips take bytes in RGB order.
	WS2812B Chipset = "ws2812b"
	// WS2811 strips take bytes in GRB order.
	WS2811 Chipset = "ws2811"
)

// ParseChipset validates a chipset name.
func ParseChipset(s string) (Chipset, error) {
	switch c := Chipset(s); c {
	case WS2812B, WS2811:
		return c, nil
	default:
		return "", fmt.Errorf("unknown LED chipset %q", s)
	}
}

// StripSink writes Adalight frames to a serial-attached LED controller.
// Brightness is applied in software before the bytes go out.
type StripSink struct {
	mu         sync.Mutex
	w          io.Writer
	chipset    Chipset
	pixels     []domain.Color
	brightness uint8
	buf        []byte
}

// NewStripSink creates a sink of n pixels writing to w.
func NewStripSink(w io.Writer, n int, chipset Chipset) *StripSink {
	return &StripSink{
		w:          w,
		chipset:    chipset,
		pixels:     make([]domain.Color, n),
		brightness: 255,
		buf:        make([]byte, 0, adalightHeaderLen+3*n),
	}
}

// OpenStrip opens the serial device at path. The caller closes the returned file.
func OpenStrip(path string, n int, chipset Chipset) (*StripSink, *os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("open LED device: %w", err)
	}
	return NewStripSink(f, n, chipset), f, nil
}

func (s *StripSink) Len() int { return len(s.pixels) }

func (s *StripSink) SetPixel(i int, c domain.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 && i < len(s.pixels) {
		s.pixels[i] = c
	}
}

func (s *StripSink) SetBrightness(b uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brightness = b
}

// Show writes the whole frame in one Write call.
func (s *StripSink) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = appendAdalightHeader(s.buf[:0], len(s.pixels))
	for _, c := range s.pixels {
		r, g, b := scale(c.R, s.brightness), scale(c.G, s.brightness), scale(c.B, s.brightness)
		if s.chipset == WS2811 {
			s.buf = append(s.buf, g, r, b)
		} else {
			s.buf = append(s.buf, r, g, b)
		}
	}
	if _, err := s.w.Write(s.buf); err != nil {
		return fmt.Errorf("write LED frame: %w", err)
	}
	return nil
}

const adalightHeaderLen = 6

// appendAdalightHeader writes "Ada", the big-endian LED count minus one,
// and the checksum byte.
func appendAdalightHeader(buf []byte, n int) []byte {
	count := n - 1
	if count < 0 {
		count = 0
	}
	hi, lo := byte(count>>8), byte(count)
	return append(buf, 'A', 'd', 'a', hi, lo, hi^lo^0x55)
}

func scale(c, brightness uint8) uint8 {
	return uint8((uint16(c) * (uint16(brightness) + 1)) >> 8)
}
