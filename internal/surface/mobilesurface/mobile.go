// Package mobilesurface adapts x/mobile size events.
package mobilesurface

import "golang.org/x/mobile/event/size"

// Mobile adapts an x/mobile size event. Logical units are points.
type Mobile struct {
	Event size.Event
}

func (m Mobile) LogicalSize() (float64, float64) {
	if m.Event.PixelsPerPt <= 0 {
		return float64(m.Event.WidthPx), float64(m.Event.HeightPx)
	}
	return float64(m.Event.WidthPt), float64(m.Event.HeightPt)
}

func (m Mobile) PixelDensity() float64 {
	if m.Event.PixelsPerPt <= 0 {
		return 1
	}
	return float64(m.Event.PixelsPerPt)
}

// Ready reports whether the host has laid out a non-empty surface yet.
func (m Mobile) Ready() bool {
	return m.Event.WidthPx > 0 && m.Event.HeightPx > 0
}
