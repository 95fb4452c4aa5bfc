package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pointfall/internal/audio"
	"pointfall/internal/economy"
	"pointfall/internal/logger"
	"pointfall/internal/physics"
)

const step = 1.0 / 60.0

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedSource struct {
	mu    sync.Mutex
	b     economy.Balance
	err   error
	calls int
	// gate, when set, holds Balance until it is closed.
	gate chan struct{}
}

func (f *fixedSource) Balance(ctx context.Context, user string) (economy.Balance, error) {
	f.mu.Lock()
	gate := f.gate
	f.calls++
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.b, f.err
}

func (f *fixedSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// awaitTarget polls sc until a background fetch moves the target to want.
func awaitTarget(t *testing.T, sc *Scene, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for sc.Target() != want {
		if time.Now().After(deadline) {
			t.Fatalf("target %d, want %d", sc.Target(), want)
		}
		time.Sleep(time.Millisecond)
		sc.Poll()
	}
}

func testScene(src BalanceSource, refresh time.Duration) (*Scene, *[]Event) {
	cfg := physics.DefaultConfig()
	cfg.MaxParticles = 100
	bus := NewEventBus()
	var events []Event
	for _, et := range []EventType{EventParticleRemoved, EventExplosion, EventSpawned, EventTargetChanged} {
		bus.Subscribe(et, func(e Event) { events = append(events, e) })
	}
	sc := NewScene(SceneOptions{
		Physics:         cfg,
		Source:          src,
		User:            "ana",
		RefreshInterval: refresh,
		Bus:             bus,
		Logger:          logger.Discard(),
		Now:             func() time.Time { return t0 },
	})
	return sc, &events
}

func count(events []Event, t EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func TestSceneInitSyncsFromSource(t *testing.T) {
	src := &fixedSource{b: economy.Balance{Points: 30, UpdatedAt: t0}}
	sc, events := testScene(src, 0)
	sc.Init(300, 500)

	if src.calls != 1 {
		t.Fatalf("source calls = %d, want 1", src.calls)
	}
	if sc.Target() != 30 || sc.Engine().Count() != 30 {
		t.Fatalf("target %d count %d, want 30", sc.Target(), sc.Engine().Count())
	}
	if count(*events, EventTargetChanged) != 1 || count(*events, EventSpawned) != 1 {
		t.Fatalf("events = %+v", *events)
	}
	if (*events)[0].Type != EventTargetChanged || (*events)[1].Data != 30 {
		t.Fatalf("events out of order: %+v", *events)
	}
}

func TestSceneCleanupEmitsRemovals(t *testing.T) {
	sc, events := testScene(nil, 0)
	sc.Init(300, 500)
	sc.SyncBalance(economy.Balance{Points: 20, UpdatedAt: t0}, t0)
	sc.SyncBalance(economy.Balance{Points: 5, UpdatedAt: t0}, t0)

	for i := 0; i < 120; i++ {
		sc.Update(step)
	}
	if got := count(*events, EventParticleRemoved); got != 15 {
		t.Fatalf("removed events = %d, want 15", got)
	}
	if sc.Engine().Count() != 5 {
		t.Fatalf("count = %d, want 5", sc.Engine().Count())
	}
	for _, e := range *events {
		if e.Type == EventParticleRemoved && sc.Engine().Alive(e.Handle) {
			t.Fatalf("removed handle %d still alive", e.Handle)
		}
	}
}

func TestSceneRefreshesOnInterval(t *testing.T) {
	src := &fixedSource{b: economy.Balance{Points: 10, UpdatedAt: t0}}
	sc, _ := testScene(src, time.Second)
	sc.Init(300, 500)

	src.b.Points = 25
	for i := 0; i < 59; i++ {
		sc.Update(step)
	}
	if sc.Target() != 10 {
		t.Fatalf("target refreshed early: %d", sc.Target())
	}
	sc.Update(step)
	sc.Update(step)
	awaitTarget(t, sc, 25)
	if n := src.callCount(); n != 2 {
		t.Fatalf("source calls = %d, want 2", n)
	}
}

func TestSceneUpdateDoesNotWaitOnSource(t *testing.T) {
	src := &fixedSource{b: economy.Balance{Points: 10, UpdatedAt: t0}}
	sc, _ := testScene(src, time.Second)
	sc.Init(300, 500)

	gate := make(chan struct{})
	src.mu.Lock()
	src.gate = gate
	src.b.Points = 40
	src.mu.Unlock()

	// Three intervals pass while the source is stuck; steps keep running
	// and only one fetch is started.
	for i := 0; i < 3*60+1; i++ {
		sc.Update(step)
	}
	if sc.Target() != 10 {
		t.Fatalf("target %d changed before the fetch finished", sc.Target())
	}
	if n := src.callCount(); n != 2 {
		t.Fatalf("source calls = %d, want 2", n)
	}

	close(gate)
	awaitTarget(t, sc, 40)
}

func TestSceneKeepsBalanceWhenSourceFails(t *testing.T) {
	src := &fixedSource{b: economy.Balance{Points: 12, UpdatedAt: t0}}
	sc, _ := testScene(src, 0)
	sc.Init(300, 500)

	src.err = errors.New("offline")
	sc.Refresh(context.Background())
	if sc.Target() != 12 || sc.Balance().Points != 12 {
		t.Fatalf("target %d balance %v after failed refresh", sc.Target(), sc.Balance().Points)
	}
}

func TestScenePointerRepelsWhileHeld(t *testing.T) {
	sc, _ := testScene(nil, 0)
	cfg := physics.DefaultConfig()
	cfg.ZeroGravity = true
	sc.engine = physics.New(cfg)
	sc.Init(300, 500)
	h := sc.Engine().AddParticle(150, 250)

	sc.SetPointer(130, 250, true)
	sc.Update(step)
	x1, _, _ := sc.Engine().Position(h)
	if x1 <= 150 {
		t.Fatalf("x = %v, want pushed right", x1)
	}

	sc.SetPointer(130, 250, false)
	sc.Update(step)
	x2, _, _ := sc.Engine().Position(h)
	sc.Update(step)
	x3, _, _ := sc.Engine().Position(h)
	if x3-x2 >= x2-x1 {
		t.Fatalf("released pointer still accelerating: %v %v %v", x1, x2, x3)
	}
}

func TestSceneExplodeEmits(t *testing.T) {
	sc, events := testScene(nil, 0)
	sc.Init(300, 500)
	sc.Explode(10, 20)
	if n := count(*events, EventExplosion); n != 1 {
		t.Fatalf("explosion events = %d", n)
	}
	sc.Destroy()
	sc.Explode(10, 20)
	if n := count(*events, EventExplosion); n != 1 {
		t.Fatal("destroyed scene still explodes")
	}
}

type cueRecorder struct{ cues []audio.Cue }

func (c *cueRecorder) Play(q audio.Cue) { c.cues = append(c.cues, q) }

func TestBindSoundsThrottlesPops(t *testing.T) {
	bus := NewEventBus()
	rec := &cueRecorder{}
	BindSounds(bus, rec)

	for i := 0; i < 10; i++ {
		bus.Emit(Event{Type: EventParticleRemoved})
	}
	bus.Emit(Event{Type: EventExplosion})
	bus.Emit(Event{Type: EventSpawned, Data: 3})

	want := []audio.Cue{audio.CuePop, audio.CueBurst, audio.CueChime}
	if len(rec.cues) != len(want) {
		t.Fatalf("cues = %v, want %v", rec.cues, want)
	}
	for i := range want {
		if rec.cues[i] != want[i] {
			t.Fatalf("cues = %v, want %v", rec.cues, want)
		}
	}
}

func TestEventBusOrder(t *testing.T) {
	bus := NewEventBus()
	var got []int
	bus.Subscribe(EventSpawned, func(Event) { got = append(got, 1) })
	bus.Subscribe(EventSpawned, func(Event) { got = append(got, 2) })
	bus.Subscribe(EventExplosion, func(Event) { got = append(got, 99) })
	bus.Emit(Event{Type: EventSpawned})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("handlers ran as %v", got)
	}
}
