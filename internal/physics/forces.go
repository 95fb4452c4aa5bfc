package physics

import "math"

// ApplyRepulsion pushes Active particles within RepulsionRadius away from
// (x, y). The push falls off linearly to zero at the edge of the radius.
func (e *Engine) ApplyRepulsion(x, y float64) {
	if e.destroyed {
		return
	}
	rad := e.cfg.RepulsionRadius
	strength := e.cfg.RepulsionStrength
	for i := 0; i < e.n; i++ {
		if e.state[i] != Active {
			continue
		}
		dx := e.x[i] - x
		dy := e.y[i] - y
		d2 := dx*dx + dy*dy
		if d2 >= rad*rad {
			continue
		}
		d := math.Sqrt(d2)
		if d < minSeparation {
			continue
		}
		e.kick(i, dx/d, dy/d, strength*(1-d/rad))
	}
}

// ApplyExplosion kicks every Active particle away from (x, y) with an
// impulse of power/distance, capped at ExplosionMaxImpulse.
func (e *Engine) ApplyExplosion(x, y, power float64) {
	if e.destroyed || power <= 0 {
		return
	}
	minD := e.cfg.ExplosionMinDistance
	maxImp := e.cfg.ExplosionMaxImpulse
	for i := 0; i < e.n; i++ {
		if e.state[i] != Active {
			continue
		}
		dx := e.x[i] - x
		dy := e.y[i] - y
		d := math.Hypot(dx, dy)
		if d < minSeparation {
			continue
		}
		imp := power / math.Max(d, minD)
		if imp > maxImp {
			imp = maxImp
		}
		e.kick(i, dx/d, dy/d, imp)
	}
}

// kick adds to the implicit velocity by moving the previous position.
func (e *Engine) kick(i int, nx, ny, amount float64) {
	e.px[i] -= nx * amount
	e.py[i] -= ny * amount
}
