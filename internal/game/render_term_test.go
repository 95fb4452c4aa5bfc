package game

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"pointfall/internal/economy"
	"pointfall/internal/physics"
	"pointfall/internal/surface/termsurface"
)

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	s.SetSize(cols, rows)
	t.Cleanup(s.Fini)
	return s
}

func TestTermRendererDrawsParticlesAndHUD(t *testing.T) {
	screen := newSimScreen(t, 40, 20)
	term := termsurface.NewTerminal(screen)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := physics.DefaultConfig()
	cfg.ZeroGravity = true
	sc := NewScene(SceneOptions{Physics: cfg, Now: func() time.Time { return now }})
	w, h := term.Logical(40, 20)
	sc.Init(w, h)
	sc.SyncBalance(economy.Balance{Points: 1234, UpdatedAt: now}, now)

	// One particle at a known cell; the synced ones are above the screen.
	lx, ly := term.Logical(10, 5)
	sc.Engine().AddParticle(lx, ly)

	r := NewTermRenderer(screen)
	if err := r.Init(term); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(sc, 1); err != nil {
		t.Fatal(err)
	}

	mainc, _, _, _ := screen.GetContent(10, 5)
	if mainc == ' ' {
		t.Fatal("no glyph drawn at the particle's cell")
	}

	var hud strings.Builder
	for x := 0; x < 40; x++ {
		c, _, _, _ := screen.GetContent(x, 0)
		hud.WriteRune(c)
	}
	if !strings.Contains(hud.String(), "1,234 pts") {
		t.Fatalf("hud = %q, want humanized points", hud.String())
	}
}

func TestTermRendererRejectsForeignSimulation(t *testing.T) {
	screen := newSimScreen(t, 10, 10)
	r := NewTermRenderer(screen)
	if err := r.Render(noSprites{}, 0); err == nil {
		t.Fatal("expected an error for a simulation without sprites")
	}
}

type noSprites struct{}

func (noSprites) Init(w, h float64)   {}
func (noSprites) Update(dt float64)   {}
func (noSprites) Resize(w, h float64) {}
func (noSprites) Destroy()            {}

func TestGlyphScalesWithSize(t *testing.T) {
	if glyph(24, 1, 8) != '@' || glyph(10, 1, 8) != 'o' || glyph(1, 1, 8) != '.' {
		t.Fatal("unexpected glyph ladder")
	}
	if glyph(24, 0.1, 8) == '@' {
		t.Fatal("faded sprite kept the largest glyph")
	}
}
