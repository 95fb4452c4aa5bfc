package physics

import "math"

const minSeparation = 1e-9

// collide runs one positional-correction pass over the grid. Each pair is
// visited once (j > i) and both particles move half the overlap.
func (e *Engine) collide() {
	g := &e.grid
	if len(g.head) == 0 {
		return
	}
	eps := e.cfg.DepthEpsilon
	levels := e.cfg.DepthLevels
	for i := 0; i < e.n; i++ {
		if e.state[i] != Active {
			continue
		}
		cx, cy := g.cellOf(e.x[i], e.y[i])
		for oy := -1; oy <= 1; oy++ {
			ny := cy + oy
			if ny < 0 || ny >= g.rows {
				continue
			}
			for ox := -1; ox <= 1; ox++ {
				nx := cx + ox
				if nx < 0 || nx >= g.cols {
					continue
				}
				for j := g.head[ny*g.cols+nx]; j != -1; j = g.next[j] {
					if int(j) <= i || e.state[j] != Active {
						continue
					}
					if !sameLayer(e.layer[i], e.layer[j], levels, eps) {
						continue
					}
					e.separate(i, int(j))
				}
			}
		}
	}
}

func sameLayer(a, b uint8, levels int, eps float64) bool {
	if a == b {
		return true
	}
	if levels <= 1 {
		return true
	}
	d := math.Abs(float64(a)-float64(b)) / float64(levels-1)
	return d < eps
}

func (e *Engine) separate(i, j int) {
	dx := e.x[j] - e.x[i]
	dy := e.y[j] - e.y[i]
	minDist := e.radius[i] + e.radius[j]
	d2 := dx*dx + dy*dy
	if d2 >= minDist*minDist {
		return
	}
	d := math.Sqrt(d2)
	var nx, ny float64
	if d < minSeparation {
		// Coincident centres have no direction; split them along +x.
		nx, ny = 1, 0
	} else {
		nx, ny = dx/d, dy/d
	}
	half := (minDist - d) * 0.5
	e.x[i] -= nx * half
	e.y[i] -= ny * half
	e.x[j] += nx * half
	e.y[j] += ny * half
}

// applyBounds clamps Active particles to the side walls and the floor.
// Only motion into a boundary is reflected, scaled by Bounce; a particle
// already moving away is moved back inside with its velocity kept, so later
// solver passes cannot turn it around again. There is no ceiling clamp;
// particles spawn above the top edge.
func (e *Engine) applyBounds() {
	w, h := e.width, e.height
	bounce := e.cfg.Bounce
	fric := e.cfg.FloorFriction
	for i := 0; i < e.n; i++ {
		if e.state[i] != Active {
			continue
		}
		r := e.radius[i]
		if e.x[i] < r {
			vx := e.x[i] - e.px[i]
			shift := r - e.x[i]
			e.x[i] = r
			if vx < 0 {
				e.px[i] = e.x[i] + vx*bounce
			} else {
				e.px[i] += shift
			}
		} else if e.x[i] > w-r {
			vx := e.x[i] - e.px[i]
			shift := (w - r) - e.x[i]
			e.x[i] = w - r
			if vx > 0 {
				e.px[i] = e.x[i] + vx*bounce
			} else {
				e.px[i] += shift
			}
		}
		if e.y[i] > h-r {
			vy := e.y[i] - e.py[i]
			shift := (h - r) - e.y[i]
			e.y[i] = h - r
			if vy > 0 {
				vx := e.x[i] - e.px[i]
				e.py[i] = e.y[i] + vy*bounce
				e.px[i] = e.x[i] - vx*fric
			} else {
				e.py[i] += shift
			}
		}
	}
}
