package loop

import (
	"fmt"
	"math"
	"sync"

	"pointfall/internal/logger"
)

const (
	DefaultStep             = 1.0 / 60.0
	DefaultMaxFrameDelta    = 0.25
	DefaultMaxStepsPerFrame = 5
)

type Options struct {
	Step             float64
	MaxFrameDelta    float64
	MaxStepsPerFrame int

	// Lifecycle, when set, follows Start/Stop/Destroy.
	Lifecycle Lifecycle
	Logger    *logger.Logger
}

func (o Options) withDefaults() Options {
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	if o.MaxFrameDelta <= 0 {
		o.MaxFrameDelta = DefaultMaxFrameDelta
	}
	if o.MaxStepsPerFrame <= 0 {
		o.MaxStepsPerFrame = DefaultMaxStepsPerFrame
	}
	return o
}

// Stats are running counters for HUDs and logs.
type Stats struct {
	Ticks   uint64
	Steps   uint64
	Dropped float64 // seconds discarded by delta clamping and the step cap
	Alpha   float64
}

// Scheduler is a fixed-timestep loop. It is not safe for concurrent use:
// call it from the goroutine that services the FrameSource. Stop and Destroy
// may be called from inside Update or Render.
type Scheduler struct {
	sim      Simulation
	renderer Renderer
	frames   FrameSource
	clock    Clock
	opts     Options
	log      *logger.Logger

	running   bool
	destroyed bool
	gen       uint64 // bumped on Stop; frames from an older generation are ignored
	last      float64
	acc       float64
	stats     Stats

	destroyOnce sync.Once
}

func New(sim Simulation, renderer Renderer, frames FrameSource, clock Clock, opts Options) *Scheduler {
	opts = opts.withDefaults()
	return &Scheduler{
		sim:      sim,
		renderer: renderer,
		frames:   frames,
		clock:    clock,
		opts:     opts,
		log:      opts.Logger,
	}
}

// Start records the clock baseline and requests the first frame. It is a
// no-op while running or after Destroy. The accumulator survives a
// Stop/Start cycle.
func (s *Scheduler) Start() {
	if s.running || s.destroyed {
		return
	}
	s.running = true
	s.last = s.clock.Now()
	if lc := s.opts.Lifecycle; lc != nil {
		if err := lc.Resume(); err != nil {
			s.log.Warnf("resume: %v", err)
		}
	}
	s.request()
}

// Stop halts the frame chain. Simulation state is untouched.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.gen++
	if lc := s.opts.Lifecycle; lc != nil {
		if err := lc.Suspend(); err != nil {
			s.log.Warnf("suspend: %v", err)
		}
	}
}

// Destroy stops the loop and releases the simulation, renderer and
// lifecycle exactly once.
func (s *Scheduler) Destroy() {
	s.Stop()
	s.destroyOnce.Do(func() {
		s.destroyed = true
		if s.sim != nil {
			s.sim.Destroy()
		}
		if s.renderer != nil {
			s.renderer.Destroy()
		}
		if lc := s.opts.Lifecycle; lc != nil {
			if err := lc.Close(); err != nil {
				s.log.Warnf("close: %v", err)
			}
		}
	})
}

// Resize forwards new logical dimensions to the simulation, and to the
// renderer when it has a Resize method.
func (s *Scheduler) Resize(width, height float64) {
	if s.destroyed {
		return
	}
	s.sim.Resize(width, height)
	if r, ok := s.renderer.(interface{ Resize(w, h float64) }); ok {
		r.Resize(width, height)
	}
}

func (s *Scheduler) Running() bool { return s.running }

func (s *Scheduler) Stats() Stats { return s.stats }

func (s *Scheduler) request() {
	gen := s.gen
	s.frames.RequestFrame(func(now float64) error {
		return s.tick(gen, now)
	})
}

func (s *Scheduler) tick(gen uint64, now float64) error {
	if gen != s.gen || !s.running {
		return nil
	}
	// Schedule first so a failing frame does not end the chain.
	s.request()
	s.stats.Ticks++

	delta := now - s.last
	s.last = now
	if delta < 0 {
		delta = 0
	}
	if delta > s.opts.MaxFrameDelta {
		s.stats.Dropped += delta - s.opts.MaxFrameDelta
		delta = s.opts.MaxFrameDelta
	}
	s.acc += delta

	step := s.opts.Step
	steps := 0
	for s.acc >= step && steps < s.opts.MaxStepsPerFrame {
		s.sim.Update(step)
		s.acc -= step
		steps++
		s.stats.Steps++
		if gen != s.gen {
			// Stopped from inside Update.
			return nil
		}
	}
	if s.acc >= step {
		keep := math.Mod(s.acc, step)
		s.stats.Dropped += s.acc - keep
		s.acc = keep
	}

	alpha := s.acc / step
	s.stats.Alpha = alpha
	if err := s.renderer.Render(s.sim, alpha); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
