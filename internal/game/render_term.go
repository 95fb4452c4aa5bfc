package game

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"pointfall/internal/loop"
	"pointfall/internal/physics"
	"pointfall/internal/surface"
	"pointfall/internal/surface/termsurface"
)

// HUDSource is implemented by simulations that can report a balance.
type HUDSource interface {
	Points() float64
	Target() int
}

// TermRenderer draws sprites as shaded glyphs on a tcell screen. Later
// sprites (front layers) overwrite earlier ones in the same cell.
type TermRenderer struct {
	screen tcell.Screen
	term   termsurface.Terminal
	buf    []float32
	bg     tcell.Color

	// Settled is shown in the HUD as "updated ... ago" when non-zero.
	Settled time.Time
}

func NewTermRenderer(screen tcell.Screen) *TermRenderer {
	return &TermRenderer{
		screen: screen,
		term:   termsurface.NewTerminal(screen),
		bg:     tcell.NewRGBColor(18, 14, 26),
	}
}

func (r *TermRenderer) Init(s surface.Surface) error {
	if t, ok := s.(termsurface.Terminal); ok {
		r.term = t
		r.screen = t.Screen
	}
	if r.screen == nil {
		return fmt.Errorf("term renderer: no screen")
	}
	return nil
}

func (r *TermRenderer) Terminal() termsurface.Terminal { return r.term }

func (r *TermRenderer) Render(sim loop.Simulation, alpha float64) error {
	src, ok := sim.(SpriteSource)
	if !ok {
		return fmt.Errorf("term renderer: %T has no sprites", sim)
	}
	base := tcell.StyleDefault.Background(r.bg)
	r.screen.Fill(' ', base)

	cols, rows := r.screen.Size()
	r.buf = src.AppendSprites(r.buf[:0], alpha)
	for i := 0; i+physics.SpriteStride <= len(r.buf); i += physics.SpriteStride {
		sp := r.buf[i : i+physics.SpriteStride]
		cx, cy := r.term.Cell(float64(sp[0]), float64(sp[1]))
		if cx < 0 || cy < 1 || cx >= cols || cy >= rows {
			continue // row 0 is the HUD
		}
		a := float64(sp[6])
		col := tcell.NewRGBColor(shade(sp[3], a), shade(sp[4], a), shade(sp[5], a))
		r.screen.SetContent(cx, cy, glyph(float64(sp[2]), a, r.term.CellW), nil, base.Foreground(col))
	}

	if hud, ok := sim.(HUDSource); ok {
		r.drawHUD(hud, cols)
	}
	r.screen.Show()
	return nil
}

func shade(c float32, a float64) int32 {
	return int32(math.Round(float64(c) * 255 * (0.25 + 0.75*a)))
}

// glyph picks a character by apparent size relative to a cell.
func glyph(size, alpha, cellW float64) rune {
	switch k := size * alpha / cellW; {
	case k >= 2.2:
		return '@'
	case k >= 1.6:
		return 'O'
	case k >= 1.0:
		return 'o'
	case k > 0.4:
		return '°'
	default:
		return '.'
	}
}

func (r *TermRenderer) drawHUD(hud HUDSource, cols int) {
	line := fmt.Sprintf(" %s pts  %s coins", humanize.Comma(int64(math.Round(hud.Points()))), humanize.Comma(int64(hud.Target())))
	if !r.Settled.IsZero() {
		line += "  updated " + humanize.Time(r.Settled)
	}
	st := tcell.StyleDefault.Background(tcell.NewRGBColor(40, 30, 60)).Foreground(tcell.NewRGBColor(255, 216, 110)).Bold(true)
	x := 0
	for _, ch := range line {
		if x >= cols {
			break
		}
		r.screen.SetContent(x, 0, ch, nil, st)
		x++
	}
	for ; x < cols; x++ {
		r.screen.SetContent(x, 0, ' ', nil, st)
	}
}

// Resize picks up a new screen size; tcell reports it directly.
func (r *TermRenderer) Resize(w, h float64) {
	r.screen.Sync()
}

func (r *TermRenderer) Destroy() {
	r.buf = nil
}
