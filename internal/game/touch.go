package game

import "golang.org/x/mobile/event/touch"

// PointerTarget is what touch input drives; *Scene implements it.
type PointerTarget interface {
	SetPointer(x, y float64, down bool)
	Explode(x, y float64)
}

// TouchTracker turns x/mobile touch events into pointer calls. The first
// finger repels while held; a second finger landing fires an explosion
// midway between the two. Coordinates arrive in pixels and are divided by
// Density to get logical units.
type TouchTracker struct {
	Density float64

	down map[touch.Sequence][2]float64
	lead touch.Sequence
}

func NewTouchTracker(density float64) *TouchTracker {
	return &TouchTracker{Density: density, down: make(map[touch.Sequence][2]float64)}
}

func (t *TouchTracker) logical(e touch.Event) (float64, float64) {
	k := t.Density
	if k <= 0 {
		k = 1
	}
	return float64(e.X) / k, float64(e.Y) / k
}

func (t *TouchTracker) Handle(e touch.Event, p PointerTarget) {
	x, y := t.logical(e)
	switch e.Type {
	case touch.TypeBegin:
		if len(t.down) == 0 {
			t.lead = e.Sequence
		}
		t.down[e.Sequence] = [2]float64{x, y}
		if len(t.down) == 2 {
			lx, ly := t.leadPos()
			p.Explode((lx+x)/2, (ly+y)/2)
		}
	case touch.TypeMove:
		if _, ok := t.down[e.Sequence]; ok {
			t.down[e.Sequence] = [2]float64{x, y}
		}
	case touch.TypeEnd:
		delete(t.down, e.Sequence)
		if e.Sequence == t.lead {
			for s := range t.down {
				t.lead = s
				break
			}
		}
	}

	if len(t.down) == 0 {
		p.SetPointer(x, y, false)
		return
	}
	lx, ly := t.leadPos()
	// Repel only with a single finger down.
	p.SetPointer(lx, ly, len(t.down) == 1)
}

func (t *TouchTracker) leadPos() (float64, float64) {
	pos := t.down[t.lead]
	return pos[0], pos[1]
}

// Active is the number of fingers down.
func (t *TouchTracker) Active() int { return len(t.down) }
