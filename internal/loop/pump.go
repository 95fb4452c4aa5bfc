package loop

import (
	"errors"
	"sync"
	"time"
)

// Pump is a FrameSource for hosts that own their own loop: the glfw swap
// loop, x/mobile paint events, a terminal ticker, or a test. Each Run
// services the frames requested before it started.
type Pump struct {
	queue []FrameFunc
	spare []FrameFunc
}

func (p *Pump) RequestFrame(fn FrameFunc) {
	p.queue = append(p.queue, fn)
}

// Pending is the number of frames waiting for the next Run.
func (p *Pump) Pending() int { return len(p.queue) }

// Run calls every queued frame with now. Frames requested during Run wait
// for the next call. Errors from frames are joined and returned.
func (p *Pump) Run(now float64) error {
	if len(p.queue) == 0 {
		return nil
	}
	frames := p.queue
	p.queue = p.spare[:0]

	var errs []error
	for i, fn := range frames {
		if err := fn(now); err != nil {
			errs = append(errs, err)
		}
		frames[i] = nil
	}
	p.spare = frames[:0]
	return errors.Join(errs...)
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu sync.RWMutex
	t  float64
}

func NewManualClock(start float64) *ManualClock {
	return &ManualClock{t: start}
}

func (c *ManualClock) Now() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

func (c *ManualClock) Set(t float64) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *ManualClock) Advance(d float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t += d
	return c.t
}

// WallClock counts seconds since it was created.
type WallClock struct {
	start time.Time
}

func NewWallClock() WallClock { return WallClock{start: time.Now()} }

func (c WallClock) Now() float64 { return time.Since(c.start).Seconds() }
