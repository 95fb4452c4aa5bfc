package physics

// Update advances the simulation by dt seconds: integrate, rebuild the grid,
// run the solver passes with boundaries, then promote finished particles.
func (e *Engine) Update(dt float64) {
	if e.destroyed || dt <= 0 {
		return
	}
	e.integrate(dt)
	e.rebuildGrid()
	for p := 0; p < e.cfg.SolverPasses; p++ {
		e.collide()
		e.applyBounds()
	}
	e.promote()
}

func (e *Engine) integrate(dt float64) {
	g := e.cfg.Gravity * dt * dt
	damp := e.cfg.Damping
	for i := 0; i < e.n; i++ {
		switch e.state[i] {
		case Active:
			vx := (e.x[i] - e.px[i]) * damp
			vy := (e.y[i]-e.py[i])*damp + g
			e.px[i], e.py[i] = e.x[i], e.y[i]
			e.x[i] += vx
			e.y[i] += vy
			e.rot[i] += e.spin[i] * dt
		case Dying:
			e.advanceDying(i, dt)
		}
	}
}

// advanceDying runs the two-phase death: first the particle floats upward
// and spins faster at full size, then it holds still while it shrinks and
// fades (see Visual).
func (e *Engine) advanceDying(i int, dt float64) {
	t := e.death[i] + dt/e.cfg.DeathDuration
	if t > 1 {
		t = 1
	}
	e.death[i] = t
	e.px[i], e.py[i] = e.x[i], e.y[i]
	if t < e.cfg.DeathFloatPhase {
		e.y[i] -= e.cfg.DeathRiseSpeed * dt
		e.rot[i] += e.spin[i] * e.cfg.DeathSpinBoost * dt
		return
	}
	e.rot[i] += e.spin[i] * dt
}

func (e *Engine) promote() {
	ceiling := -e.cfg.CeilingMargin
	for i := 0; i < e.n; i++ {
		switch e.state[i] {
		case Active:
			if e.y[i] < ceiling {
				e.state[i] = PendingRemoval
			}
		case Dying:
			if e.death[i] >= 1 {
				e.state[i] = PendingRemoval
			}
		}
	}
}
