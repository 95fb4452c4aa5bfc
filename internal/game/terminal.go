package game

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"pointfall/internal/config"
	"pointfall/internal/logger"
	"pointfall/internal/loop"
)

const termFrame = 16 * time.Millisecond

// termSession routes tcell events to the scene and scheduler.
type termSession struct {
	screen tcell.Screen
	rend   *TermRenderer
	scene  *Scene
	sched  *loop.Scheduler

	lastX, lastY float64
}

// handle applies one event and reports whether the session goes on.
func (s *termSession) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case nil:
		return false
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
			return false
		case ev.Rune() == ' ':
			s.scene.Explode(s.lastX, s.lastY)
		case ev.Rune() == 'p':
			if s.sched.Running() {
				s.sched.Stop()
			} else {
				s.sched.Start()
			}
		}
	case *tcell.EventMouse:
		cx, cy := ev.Position()
		x, y := s.rend.Terminal().Logical(cx, cy)
		s.lastX, s.lastY = x, y
		btn := ev.Buttons()
		s.scene.SetPointer(x, y, btn&tcell.Button1 != 0)
		if btn&tcell.Button2 != 0 {
			s.scene.Explode(x, y)
		}
	case *tcell.EventResize:
		s.screen.Sync()
		w, h := s.rend.Terminal().LogicalSize()
		s.sched.Resize(w, h)
	}
	return true
}

// RunTerminal runs the scene in the terminal until q or Esc.
func RunTerminal(cfg config.Config, log *logger.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	game := NewApp(cfg, log)
	defer func() {
		if err := game.Close(); err != nil {
			log.Warnf("store close: %v", err)
		}
	}()

	rend := NewTermRenderer(screen)
	if err := rend.Init(rend.Terminal()); err != nil {
		return err
	}
	w, h := rend.Terminal().LogicalSize()
	game.Scene.Init(w, h)

	pump := &loop.Pump{}
	clock := loop.NewWallClock()
	sched := loop.New(game.Scene, rend, pump, clock, game.LoopOptions())
	defer sched.Destroy()

	sess := &termSession{screen: screen, rend: rend, scene: game.Scene, sched: sched}
	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go pumpEvents(screen.PollEvent, events, done)

	ticker := time.NewTicker(termFrame)
	defer ticker.Stop()
	sched.Start()
	for {
		select {
		case ev := <-events:
			if !sess.handle(ev) {
				return nil
			}
		case <-ticker.C:
			rend.Settled = game.Scene.Balance().UpdatedAt
			if err := pump.Run(clock.Now()); err != nil {
				log.Warnf("frame: %v", err)
			}
		}
	}
}

// pumpEvents forwards polled events until poll returns nil or done closes.
func pumpEvents(poll func() tcell.Event, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := poll()
		select {
		case events <- ev:
		case <-done:
			return
		}
		if ev == nil {
			return
		}
	}
}
