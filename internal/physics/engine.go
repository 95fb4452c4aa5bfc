package physics

import "math"

// Handle identifies a particle for as long as it is alive. Rows move when
// the arrays are compacted; handles never do.
type Handle int32

// NoHandle is returned when a particle could not be added.
const NoHandle Handle = -1

// State is the lifecycle stage of a particle.
type State uint8

const (
	Active State = iota
	Dying
	PendingRemoval
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Dying:
		return "dying"
	case PendingRemoval:
		return "pending-removal"
	default:
		return "unknown"
	}
}

// Engine owns every particle in parallel arrays sized to the configured
// capacity. It is not safe for concurrent use; the loop drives it from one
// goroutine.
type Engine struct {
	cfg Config
	rng *Rand

	width, height float64

	n int

	x, y   []float64
	px, py []float64
	radius []float64
	layer  []uint8
	rot    []float64
	spin   []float64
	death  []float64
	state  []State

	rowHandle []Handle // row -> handle
	handleRow []int32  // handle -> row, -1 when free
	free      []Handle // LIFO pool of unused handles

	grid    grid
	scratch []int32

	destroyed bool
}

// New allocates an engine for cfg.MaxParticles particles. Call Init before
// adding particles.
func New(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	c := cfg.MaxParticles
	e := &Engine{
		cfg:       cfg,
		rng:       NewRand(cfg.Seed),
		x:         make([]float64, c),
		y:         make([]float64, c),
		px:        make([]float64, c),
		py:        make([]float64, c),
		radius:    make([]float64, c),
		layer:     make([]uint8, c),
		rot:       make([]float64, c),
		spin:      make([]float64, c),
		death:     make([]float64, c),
		state:     make([]State, c),
		rowHandle: make([]Handle, c),
		handleRow: make([]int32, c),
		free:      make([]Handle, 0, c),
		scratch:   make([]int32, 0, c),
	}
	e.resetHandles()
	return e
}

func (e *Engine) resetHandles() {
	e.n = 0
	e.free = e.free[:0]
	for h := len(e.handleRow) - 1; h >= 0; h-- {
		e.handleRow[h] = -1
		e.free = append(e.free, Handle(h))
	}
}

// Config returns the effective configuration after defaults were applied.
func (e *Engine) Config() Config { return e.cfg }

// Init sizes the domain, builds the grid and clears every particle.
func (e *Engine) Init(width, height float64) {
	if e.destroyed {
		return
	}
	e.width, e.height = width, height
	e.resetHandles()
	e.buildGrid()
}

// Resize changes the domain and rebuilds the grid. Particles outside the new
// walls are pulled back in by the next Update.
func (e *Engine) Resize(width, height float64) {
	if e.destroyed {
		return
	}
	e.width, e.height = width, height
	e.buildGrid()
}

func (e *Engine) buildGrid() {
	cell := 2 * (e.cfg.RadiusMin + e.cfg.RadiusMax)
	top := -(e.cfg.SpawnBand + 2*e.cfg.RadiusMax)
	e.grid.init(e.width, top, e.height, cell, len(e.x))
}

// Destroy drops all particle storage. Further calls on the engine are no-ops.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.n = 0
	e.x, e.y, e.px, e.py = nil, nil, nil, nil
	e.radius, e.layer, e.rot, e.spin, e.death, e.state = nil, nil, nil, nil, nil, nil
	e.rowHandle, e.handleRow, e.free, e.scratch = nil, nil, nil, nil
	e.grid = grid{}
}

// Destroyed reports whether Destroy has been called.
func (e *Engine) Destroyed() bool { return e.destroyed }

// AddParticle places a new Active particle at rest at (x, y). Radius, depth
// layer and spin are drawn from the engine's RNG. It returns NoHandle when
// the engine is full.
func (e *Engine) AddParticle(x, y float64) Handle {
	if e.destroyed || e.n >= len(e.x) || len(e.free) == 0 {
		return NoHandle
	}
	h := e.free[len(e.free)-1]
	e.free = e.free[:len(e.free)-1]

	i := e.n
	e.n++
	e.rowHandle[i] = h
	e.handleRow[h] = int32(i)

	e.x[i], e.y[i] = x, y
	e.px[i], e.py[i] = x, y
	e.radius[i] = e.rng.RangeF(e.cfg.RadiusMin, e.cfg.RadiusMax)
	e.layer[i] = uint8(e.rng.Intn(e.cfg.DepthLevels))
	e.rot[i] = e.rng.RangeF(0, 2*math.Pi)
	e.spin[i] = e.rng.RangeF(-e.cfg.SpinMax, e.cfg.SpinMax)
	e.death[i] = 0
	e.state[i] = Active
	return h
}

func (e *Engine) row(h Handle) (int, bool) {
	if e.destroyed || h < 0 || int(h) >= len(e.handleRow) {
		return 0, false
	}
	r := e.handleRow[h]
	if r < 0 {
		return 0, false
	}
	return int(r), true
}

// Alive reports whether h names a particle that has not been cleaned up.
func (e *Engine) Alive(h Handle) bool {
	_, ok := e.row(h)
	return ok
}

func (e *Engine) Position(h Handle) (x, y float64, ok bool) {
	i, ok := e.row(h)
	if !ok {
		return 0, 0, false
	}
	return e.x[i], e.y[i], true
}

func (e *Engine) PrevPosition(h Handle) (x, y float64, ok bool) {
	i, ok := e.row(h)
	if !ok {
		return 0, 0, false
	}
	return e.px[i], e.py[i], true
}

// Interpolated blends the previous and current position:
// current*alpha + previous*(1-alpha).
func (e *Engine) Interpolated(h Handle, alpha float64) (x, y float64, ok bool) {
	i, ok := e.row(h)
	if !ok {
		return 0, 0, false
	}
	x, y = e.lerpRow(i, alpha)
	return x, y, true
}

func (e *Engine) lerpRow(i int, alpha float64) (float64, float64) {
	a := clampF(alpha, 0, 1)
	return e.x[i]*a + e.px[i]*(1-a), e.y[i]*a + e.py[i]*(1-a)
}

func (e *Engine) Radius(h Handle) (float64, bool) {
	i, ok := e.row(h)
	if !ok {
		return 0, false
	}
	return e.radius[i], true
}

// Depth returns the particle's layer mapped into [0, 1].
func (e *Engine) Depth(h Handle) (float64, bool) {
	i, ok := e.row(h)
	if !ok {
		return 0, false
	}
	return e.depthOf(i), true
}

func (e *Engine) depthOf(i int) float64 {
	if e.cfg.DepthLevels <= 1 {
		return 0
	}
	return float64(e.layer[i]) / float64(e.cfg.DepthLevels-1)
}

func (e *Engine) Rotation(h Handle) (float64, bool) {
	i, ok := e.row(h)
	if !ok {
		return 0, false
	}
	return e.rot[i], true
}

func (e *Engine) State(h Handle) (State, bool) {
	i, ok := e.row(h)
	if !ok {
		return 0, false
	}
	return e.state[i], true
}

// DeathProgress is the death timer in [0, 1]; zero for Active particles.
func (e *Engine) DeathProgress(h Handle) (float64, bool) {
	i, ok := e.row(h)
	if !ok {
		return 0, false
	}
	return e.death[i], true
}

// Count is the number of live rows, whatever their state.
func (e *Engine) Count() int { return e.n }

func (e *Engine) CountByState(s State) int {
	c := 0
	for i := 0; i < e.n; i++ {
		if e.state[i] == s {
			c++
		}
	}
	return c
}

func (e *Engine) Capacity() int { return e.cfg.MaxParticles }

func (e *Engine) Width() float64  { return e.width }
func (e *Engine) Height() float64 { return e.height }

// Handles appends the handle of every live particle to dst in row order.
func (e *Engine) Handles(dst []Handle) []Handle {
	return append(dst, e.rowHandle[:e.n]...)
}
