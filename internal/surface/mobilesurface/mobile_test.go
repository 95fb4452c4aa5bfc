package mobilesurface

import (
	"testing"

	"golang.org/x/mobile/event/size"

	"pointfall/internal/surface"
)

func TestMobileUsesPoints(t *testing.T) {
	m := Mobile{Event: size.Event{WidthPx: 1080, HeightPx: 2160, WidthPt: 360, HeightPt: 720, PixelsPerPt: 3}}
	w, h := m.LogicalSize()
	if w != 360 || h != 720 {
		t.Fatalf("logical = %vx%v, want 360x720", w, h)
	}
	bw, bh := surface.BufferSize(m, surface.DefaultDensityCap)
	if bw != 720 || bh != 1440 {
		t.Fatalf("buffer = %dx%d, want 720x1440", bw, bh)
	}
	if !m.Ready() {
		t.Fatal("laid out surface not ready")
	}
	if (Mobile{}).Ready() {
		t.Fatal("zero event reported ready")
	}
}
