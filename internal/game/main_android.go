//go:build android

package game

import (
	"golang.org/x/mobile/app"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"
	"golang.org/x/mobile/gl"

	"pointfall/internal/config"
	"pointfall/internal/logger"
	"pointfall/internal/loop"
	"pointfall/internal/surface/mobilesurface"
)

// RunAndroid runs the scene under the x/mobile app lifecycle: visible
// starts the loop, invisible stops it, dead destroys it.
func RunAndroid(cfg config.Config, log *logger.Logger) {
	game := NewApp(cfg, log)
	rend := NewMobileRenderer(cfg.Display.DensityCap)
	pump := &loop.Pump{}
	clock := loop.NewWallClock()
	sched := loop.New(game.Scene, rend, pump, clock, game.LoopOptions())
	touches := NewTouchTracker(1)

	app.Main(func(a app.App) {
		var inited, painting bool
		repaint := func() {
			if !painting {
				painting = true
				a.Send(paint.Event{})
			}
		}

		for e := range a.Events() {
			switch e := a.Filter(e).(type) {
			case lifecycle.Event:
				switch e.Crosses(lifecycle.StageVisible) {
				case lifecycle.CrossOn:
					glctx, ok := e.DrawContext.(gl.Context)
					if !ok {
						continue
					}
					if err := rend.Attach(glctx); err != nil {
						log.Errorf("gl: %v", err)
						continue
					}
					sched.Start()
					repaint()
				case lifecycle.CrossOff:
					sched.Stop()
					rend.Detach()
				}
				if e.To == lifecycle.StageDead {
					sched.Destroy()
					if err := game.Close(); err != nil {
						log.Warnf("close: %v", err)
					}
					return
				}

			case size.Event:
				surf := mobilesurface.Mobile{Event: e}
				touches.Density = surf.PixelDensity()
				rend.SetSurface(surf)
				if !surf.Ready() {
					continue
				}
				w, h := surf.LogicalSize()
				if !inited {
					if err := rend.Init(surf); err != nil {
						log.Errorf("renderer: %v", err)
					}
					game.Scene.Init(w, h)
					inited = true
					repaint()
				} else {
					sched.Resize(w, h)
				}

			case touch.Event:
				if inited {
					touches.Handle(e, game.Scene)
				}

			case paint.Event:
				if e.External {
					continue
				}
				painting = false
				if !sched.Running() {
					continue
				}
				if inited {
					if err := pump.Run(clock.Now()); err != nil {
						log.Warnf("frame: %v", err)
					}
					a.Publish()
				}
				repaint()
			}
		}
	})
}
