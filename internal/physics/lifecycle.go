package physics

// MarkForRemoval moves up to count randomly chosen Active particles into
// Dying and returns how many were marked.
func (e *Engine) MarkForRemoval(count int) int {
	if e.destroyed || count <= 0 {
		return 0
	}
	e.scratch = e.scratch[:0]
	for i := 0; i < e.n; i++ {
		if e.state[i] == Active {
			e.scratch = append(e.scratch, int32(i))
		}
	}
	k := min(count, len(e.scratch))
	for m := 0; m < k; m++ {
		j := m + e.rng.Intn(len(e.scratch)-m)
		e.scratch[m], e.scratch[j] = e.scratch[j], e.scratch[m]
		e.startDying(int(e.scratch[m]))
	}
	return k
}

// MarkHandleForRemoval starts the death animation of one particle. It
// reports false when h is not an Active particle.
func (e *Engine) MarkHandleForRemoval(h Handle) bool {
	i, ok := e.row(h)
	if !ok || e.state[i] != Active {
		return false
	}
	e.startDying(i)
	return true
}

func (e *Engine) startDying(i int) {
	e.state[i] = Dying
	e.death[i] = 0
	e.px[i], e.py[i] = e.x[i], e.y[i]
}

// Cleanup compacts away PendingRemoval particles. onRemoved, when non-nil,
// sees each handle before it returns to the pool. Removal swaps the last row
// into the hole, so rows are not stable across calls.
func (e *Engine) Cleanup(onRemoved func(Handle)) int {
	if e.destroyed {
		return 0
	}
	removed := 0
	for i := 0; i < e.n; {
		if e.state[i] != PendingRemoval {
			i++
			continue
		}
		h := e.rowHandle[i]
		if onRemoved != nil {
			onRemoved(h)
		}
		e.handleRow[h] = -1
		e.free = append(e.free, h)
		last := e.n - 1
		if i != last {
			e.moveRow(last, i)
		}
		e.n--
		removed++
	}
	return removed
}

func (e *Engine) moveRow(from, to int) {
	e.x[to], e.y[to] = e.x[from], e.y[from]
	e.px[to], e.py[to] = e.px[from], e.py[from]
	e.radius[to] = e.radius[from]
	e.layer[to] = e.layer[from]
	e.rot[to] = e.rot[from]
	e.spin[to] = e.spin[from]
	e.death[to] = e.death[from]
	e.state[to] = e.state[from]
	h := e.rowHandle[from]
	e.rowHandle[to] = h
	e.handleRow[h] = int32(to)
}

// Sync drives the number of Active particles toward target. Increases spawn
// new particles in a band above the top edge; decreases mark random Active
// particles as Dying. Target is clamped to [0, capacity].
func (e *Engine) Sync(target int) (spawned, dying int) {
	if e.destroyed {
		return 0, 0
	}
	target = clampI(target, 0, e.cfg.MaxParticles)
	active := e.CountByState(Active)
	switch {
	case target > active:
		for k := 0; k < target-active; k++ {
			x, y := e.spawnPoint()
			if e.AddParticle(x, y) == NoHandle {
				break
			}
			spawned++
		}
	case target < active:
		dying = e.MarkForRemoval(active - target)
	}
	return spawned, dying
}

func (e *Engine) spawnPoint() (float64, float64) {
	r := e.cfg.RadiusMax
	lo, hi := r, e.width-r
	if hi < lo {
		lo, hi = e.width/2, e.width/2
	}
	x := e.rng.RangeF(lo, hi)
	y := -r - e.rng.RangeF(0, e.cfg.SpawnBand)
	return x, y
}
