package physics

// SpriteStride is the number of float32 values per sprite in AppendSprites.
const SpriteStride = 8

// Visual describes how a particle should be drawn on top of its position.
type Visual struct {
	Scale   float64 // multiplier on the diameter
	Alpha   float64
	OffsetY float64 // extra vertical offset in pixels, negative is up
}

// Visual returns the drawing parameters for h. Active particles draw at full
// size; Dying ones float with a slight wobble, then shrink and fade.
func (e *Engine) Visual(h Handle) (Visual, bool) {
	i, ok := e.row(h)
	if !ok {
		return Visual{}, false
	}
	return e.visualOf(i), true
}

func (e *Engine) visualOf(i int) Visual {
	switch e.state[i] {
	case Dying, PendingRemoval:
		t := e.death[i]
		fp := e.cfg.DeathFloatPhase
		if t < fp {
			// Small swell while floating.
			k := t / fp
			return Visual{Scale: 1 + 0.15*k, Alpha: 1, OffsetY: -2 * k}
		}
		k := clampF((t-fp)/(1-fp), 0, 1)
		s := 1.15 * (1 - k)
		return Visual{Scale: s, Alpha: 1 - k*k, OffsetY: -2}
	default:
		return Visual{Scale: 1, Alpha: 1}
	}
}

// Color returns the palette entry for h's depth layer.
func (e *Engine) Color(h Handle) (RGB, bool) {
	i, ok := e.row(h)
	if !ok {
		return RGB{}, false
	}
	return e.colorOf(int(e.layer[i])), true
}

func (e *Engine) colorOf(layer int) RGB {
	p := e.cfg.Palette
	if layer >= len(p) {
		layer = len(p) - 1
	}
	return p[layer]
}

// AppendSprites appends one sprite per live particle to buf using the
// interpolated position. Layout per sprite:
//
//	[x, y, size, r, g, b, a, rotation]
//
// Sprites are grouped by depth layer from back to front, so painting them in
// order gives a stable depth.
func (e *Engine) AppendSprites(buf []float32, alpha float64) []float32 {
	if e.destroyed {
		return buf
	}
	for l := 0; l < e.cfg.DepthLevels; l++ {
		col := e.colorOf(l)
		r := float32(col.R) / 255
		g := float32(col.G) / 255
		b := float32(col.B) / 255
		for i := 0; i < e.n; i++ {
			if int(e.layer[i]) != l {
				continue
			}
			v := e.visualOf(i)
			if v.Alpha <= 0 || v.Scale <= 0 {
				continue
			}
			x, y := e.lerpRow(i, alpha)
			buf = append(buf,
				float32(x),
				float32(y+v.OffsetY),
				float32(2*e.radius[i]*v.Scale),
				r, g, b,
				float32(v.Alpha),
				float32(e.rot[i]),
			)
		}
	}
	return buf
}
