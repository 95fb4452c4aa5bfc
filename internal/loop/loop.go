// Package loop drives a Simulation at a fixed rate from whatever frame
// callbacks the host provides, and hands the Renderer an interpolation
// factor for the time left over between steps.
package loop

import "pointfall/internal/surface"

// Simulation is advanced in fixed steps by the Scheduler.
type Simulation interface {
	Init(width, height float64)
	Update(dt float64)
	Resize(width, height float64)
	Destroy()
}

// Renderer draws the simulation. Render receives the live simulation and
// must not keep it past the call.
type Renderer interface {
	Init(s surface.Surface) error
	Render(sim Simulation, alpha float64) error
	Destroy()
}

// FrameFunc runs one frame at host time now, in seconds.
type FrameFunc func(now float64) error

// FrameSource is the host's "call me on the next frame" primitive.
type FrameSource interface {
	RequestFrame(fn FrameFunc)
}

// Clock reports time in seconds.
type Clock interface {
	Now() float64
}

// Lifecycle is a resource whose activity follows the scheduler: resumed on
// Start, suspended on Stop, closed on Destroy.
type Lifecycle interface {
	Resume() error
	Suspend() error
	Close() error
}
