// Package surface hides how each platform hands out a drawing area.
// The engine and the loop only see logical sizes and a pixel density.
package surface

import "math"

// DefaultDensityCap bounds the backing buffer scale on dense displays.
const DefaultDensityCap = 2.0

// Surface is a drawing area measured in logical units.
type Surface interface {
	LogicalSize() (w, h float64)
	PixelDensity() float64
}

// Fixed is a Surface with constant dimensions, used headless and in tests.
type Fixed struct {
	W, H    float64
	Density float64
}

func (f Fixed) LogicalSize() (float64, float64) { return f.W, f.H }
func (f Fixed) PixelDensity() float64           { return f.Density }

// Scale is min(density, densityCap). Non-positive densities count as 1 and a
// non-positive cap disables capping.
func Scale(s Surface, densityCap float64) float64 {
	d := s.PixelDensity()
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		d = 1
	}
	if densityCap > 0 && d > densityCap {
		d = densityCap
	}
	return d
}

// BufferSize is the physical backing buffer for s: logical size times the
// capped density, rounded, at least 1x1.
func BufferSize(s Surface, densityCap float64) (int, int) {
	w, h := s.LogicalSize()
	k := Scale(s, densityCap)
	bw := int(math.Round(w * k))
	bh := int(math.Round(h * k))
	return max(bw, 1), max(bh, 1)
}
