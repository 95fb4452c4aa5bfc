//go:build !android

package game

import (
	"testing"

	"pointfall/internal/logger"
	"pointfall/internal/surface"
)

func TestSpriteRendererUninitialised(t *testing.T) {
	r := NewSpriteRenderer(2, 10, logger.Discard())
	sc, _ := testScene(nil, 0)
	if err := r.Render(sc, 0); err == nil {
		t.Fatal("render before Init succeeded")
	}
}

func TestSpriteRendererTargetStale(t *testing.T) {
	r := NewSpriteRenderer(2, 10, logger.Discard())
	r.surf = surface.Fixed{W: 100, H: 50, Density: 1}
	if !r.targetStale() {
		t.Fatal("missing target not stale")
	}

	r.fbo, r.bufW, r.bufH = 1, 100, 50
	if r.targetStale() {
		t.Fatal("matching target reported stale")
	}

	r.surf = surface.Fixed{W: 100, H: 50, Density: 3}
	if !r.targetStale() {
		t.Fatal("target kept after density change")
	}

	// A failed reallocation leaves no framebuffer; the next frame retries.
	r.surf = surface.Fixed{W: 100, H: 50, Density: 1}
	r.fbo = 0
	if !r.targetStale() {
		t.Fatal("released target not retried")
	}
}
