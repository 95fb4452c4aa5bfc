//go:build !android

package game

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"pointfall/internal/config"
	"pointfall/internal/logger"
	"pointfall/internal/loop"
	"pointfall/internal/surface/glfwsurface"
)

// RunDesktop opens a window and runs the scene until it is closed.
func RunDesktop(cfg config.Config, log *logger.Logger) error {
	runtime.LockOSThread()

	window, err := initWindow(cfg.Display)
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	log.Infof("gl %s", gl.GoStr(gl.GetString(gl.VERSION)))

	app := NewApp(cfg, log)
	defer func() {
		if err := app.Close(); err != nil {
			log.Warnf("store close: %v", err)
		}
	}()

	surf := glfwsurface.Window{W: window}
	rend := NewSpriteRenderer(cfg.Display.DensityCap, cfg.Physics.MaxParticles, log)
	if err := rend.Init(surf); err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	w, h := surf.LogicalSize()
	app.Scene.Init(w, h)

	pump := &loop.Pump{}
	sched := loop.New(app.Scene, rend, pump, surf, app.LoopOptions())
	// Runs before window.Destroy so GL objects go while the context lives.
	defer sched.Destroy()

	window.SetSizeCallback(func(_ *glfw.Window, w, h int) {
		if w > 0 && h > 0 {
			sched.Resize(float64(w), float64(h))
		}
	})
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		if w > 0 && h > 0 {
			rend.Resize(float64(w), float64(h))
		}
	})
	window.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		if iconified {
			sched.Stop()
		} else {
			sched.Start()
		}
	})

	input := NewInput()
	sched.Start()
	for !window.ShouldClose() {
		glfw.PollEvents()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
			continue
		}
		if !sched.Running() {
			glfw.WaitEventsTimeout(0.1)
			continue
		}

		input.Apply(surf, app.Scene)
		if err := pump.Run(surf.Now()); err != nil {
			log.Warnf("frame: %v", err)
		}
		window.SwapBuffers()
	}
	log.Infof("closing after %d steps", sched.Stats().Steps)
	return nil
}
