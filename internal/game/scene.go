package game

import (
	"context"
	"time"

	"pointfall/internal/economy"
	"pointfall/internal/logger"
	"pointfall/internal/physics"
)

// SpriteSource is what renderers read each frame. They never mutate it.
type SpriteSource interface {
	AppendSprites(buf []float32, alpha float64) []float32
}

// BalanceSource supplies the user's stored balance, typically the store.
type BalanceSource interface {
	Balance(ctx context.Context, user string) (economy.Balance, error)
}

type SceneOptions struct {
	Physics           physics.Config
	Model             economy.Model
	PointsPerParticle float64
	ExplosionPower    float64

	// Source is polled every RefreshInterval of simulated time. Nil
	// disables polling; SyncBalance can still be called directly.
	Source          BalanceSource
	User            string
	RefreshInterval time.Duration

	Bus    *EventBus
	Logger *logger.Logger
	Now    func() time.Time
}

// Scene is the particle view of a point balance. It implements the loop's
// Simulation and feeds renderers through AppendSprites.
type Scene struct {
	engine *physics.Engine
	bus    *EventBus
	log    *logger.Logger
	opts   SceneOptions

	balance economy.Balance
	target  int
	synced  bool

	pointerX, pointerY float64
	pointerDown        bool

	sinceRefresh float64
	fetching     bool
	fetched      chan fetchResult
}

type fetchResult struct {
	b   economy.Balance
	err error
}

const fetchTimeout = 5 * time.Second

func NewScene(opts SceneOptions) *Scene {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PointsPerParticle <= 0 {
		opts.PointsPerParticle = 1
	}
	if opts.ExplosionPower <= 0 {
		opts.ExplosionPower = physics.DefaultExplosionPower
	}
	if opts.Model.Lambda == 0 && opts.Model.MaxPoints == 0 {
		opts.Model = economy.DefaultModel()
	}
	if opts.Bus == nil {
		opts.Bus = NewEventBus()
	}
	return &Scene{
		engine: physics.New(opts.Physics),
		bus:    opts.Bus,
		log:    opts.Logger,
		opts:   opts,
		// One fetch is in flight at a time, so the send never blocks.
		fetched: make(chan fetchResult, 1),
	}
}

func (s *Scene) Engine() *physics.Engine { return s.engine }
func (s *Scene) Bus() *EventBus          { return s.bus }

func (s *Scene) Init(width, height float64) {
	s.engine.Init(width, height)
	s.synced = false
	s.Refresh(context.Background())
}

func (s *Scene) Resize(width, height float64) {
	s.engine.Resize(width, height)
}

func (s *Scene) Destroy() {
	s.engine.Destroy()
}

// Update runs one fixed step: held-pointer repulsion, physics, then cleanup
// of finished particles. On the refresh interval the balance is fetched in
// the background; the result is applied by a later Update.
func (s *Scene) Update(dt float64) {
	if s.engine.Destroyed() {
		return
	}
	s.Poll()
	if s.pointerDown {
		s.engine.ApplyRepulsion(s.pointerX, s.pointerY)
	}
	s.engine.Update(dt)
	s.engine.Cleanup(s.removed)

	if iv := s.opts.RefreshInterval.Seconds(); iv > 0 {
		s.sinceRefresh += dt
		if s.sinceRefresh >= iv {
			s.sinceRefresh = 0
			s.refreshAsync()
		}
	}
}

func (s *Scene) refreshAsync() {
	src := s.opts.Source
	if src == nil {
		s.SyncBalance(s.balance, s.opts.Now())
		return
	}
	if s.fetching {
		return
	}
	s.fetching = true
	user := s.opts.User
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		b, err := src.Balance(ctx, user)
		s.fetched <- fetchResult{b: b, err: err}
	}()
}

// Poll applies a finished background fetch, if any. It never blocks.
func (s *Scene) Poll() {
	select {
	case r := <-s.fetched:
		s.fetching = false
		if r.err != nil {
			s.log.Warnf("balance refresh for %q: %v", s.opts.User, r.err)
			return
		}
		s.SyncBalance(r.b, s.opts.Now())
	default:
	}
}

func (s *Scene) removed(h physics.Handle) {
	x, y, _ := s.engine.Position(h)
	s.bus.Emit(Event{Type: EventParticleRemoved, X: x, Y: y, Handle: h})
}

// SetPointer records the pointer; while down it repels particles every step.
func (s *Scene) SetPointer(x, y float64, down bool) {
	s.pointerX, s.pointerY, s.pointerDown = x, y, down
}

// Explode kicks the pile away from (x, y).
func (s *Scene) Explode(x, y float64) {
	if s.engine.Destroyed() {
		return
	}
	s.engine.ApplyExplosion(x, y, s.opts.ExplosionPower)
	s.bus.Emit(Event{Type: EventExplosion, X: x, Y: y})
}

// Refresh reads the balance from the source, if any, and resyncs. Without a
// source it resyncs the last known balance so decay keeps showing.
func (s *Scene) Refresh(ctx context.Context) {
	b := s.balance
	if src := s.opts.Source; src != nil {
		got, err := src.Balance(ctx, s.opts.User)
		if err != nil {
			s.log.Warnf("balance refresh for %q: %v", s.opts.User, err)
		} else {
			b = got
		}
	}
	s.SyncBalance(b, s.opts.Now())
}

// SyncBalance maps b at now to a particle target and drives the engine
// toward it.
func (s *Scene) SyncBalance(b economy.Balance, now time.Time) {
	s.balance = b
	target := s.opts.Model.TargetCount(b, now, s.opts.PointsPerParticle, s.engine.Capacity())
	spawned, _ := s.engine.Sync(target)
	if !s.synced || target != s.target {
		s.bus.Emit(Event{Type: EventTargetChanged, Data: target})
	}
	s.target, s.synced = target, true
	if spawned > 0 {
		s.bus.Emit(Event{Type: EventSpawned, Data: spawned})
	}
}

// Target is the particle count the last sync aimed for.
func (s *Scene) Target() int { return s.target }

// Balance is the last balance handed to SyncBalance.
func (s *Scene) Balance() economy.Balance { return s.balance }

// Points is the balance decayed to now.
func (s *Scene) Points() float64 {
	return s.opts.Model.Current(s.balance.Points, s.balance.UpdatedAt, s.opts.Now())
}

func (s *Scene) AppendSprites(buf []float32, alpha float64) []float32 {
	return s.engine.AppendSprites(buf, alpha)
}
