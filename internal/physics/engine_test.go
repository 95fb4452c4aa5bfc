package physics

import (
	"math"
	"testing"
)

const step = 1.0 / 60.0

func still(max int) Config {
	cfg := DefaultConfig()
	cfg.MaxParticles = max
	cfg.ZeroGravity = true
	return cfg
}

func TestCapacityIsNeverExceeded(t *testing.T) {
	e := New(Config{MaxParticles: 10})
	e.Init(300, 500)

	for i := 0; i < 15; i++ {
		h := e.AddParticle(100, 100)
		if i < 10 && h == NoHandle {
			t.Fatalf("add %d rejected below capacity", i)
		}
		if i >= 10 && h != NoHandle {
			t.Fatalf("add %d returned handle %d above capacity", i, h)
		}
	}
	if e.Count() != 10 {
		t.Fatalf("count = %d, want 10", e.Count())
	}
	if e.Capacity() != 10 {
		t.Fatalf("capacity = %d, want 10", e.Capacity())
	}
}

func TestHandlesSurviveCompaction(t *testing.T) {
	e := New(still(8))
	e.Init(300, 500)

	a := e.AddParticle(50, 100)
	b := e.AddParticle(150, 100)
	c := e.AddParticle(250, 100)

	if !e.MarkHandleForRemoval(b) {
		t.Fatal("mark b failed")
	}
	for i := 0; i < 200; i++ {
		e.Update(step)
		if s, _ := e.State(b); s == PendingRemoval {
			break
		}
	}
	if s, _ := e.State(b); s != PendingRemoval {
		t.Fatalf("b state = %v, want pending-removal", s)
	}

	var removed []Handle
	if n := e.Cleanup(func(h Handle) { removed = append(removed, h) }); n != 1 {
		t.Fatalf("cleanup removed %d, want 1", n)
	}
	if len(removed) != 1 || removed[0] != b {
		t.Fatalf("removed = %v, want [%d]", removed, b)
	}
	if e.Alive(b) {
		t.Fatal("b still alive after cleanup")
	}

	ax, ay, ok := e.Position(a)
	if !ok || ax != 50 || ay != 100 {
		t.Fatalf("a = (%v, %v, %v), want (50, 100, true)", ax, ay, ok)
	}
	cx, cy, ok := e.Position(c)
	if !ok || cx != 250 || cy != 100 {
		t.Fatalf("c = (%v, %v, %v), want (250, 100, true)", cx, cy, ok)
	}
	if e.handleRow[c] != 1 {
		t.Fatalf("c row = %d, want 1 after swap-with-last", e.handleRow[c])
	}
}

func TestFreedHandlesAreNotSharedWithLiveOnes(t *testing.T) {
	e := New(still(4))
	e.Init(300, 500)
	for i := 0; i < 4; i++ {
		e.AddParticle(40+float64(i)*60, 200)
	}
	e.MarkForRemoval(2)
	for i := 0; i < 120; i++ {
		e.Update(step)
	}
	if n := e.Cleanup(nil); n != 2 {
		t.Fatalf("cleanup = %d, want 2", n)
	}
	e.AddParticle(20, 50)
	e.AddParticle(280, 50)

	seen := map[Handle]bool{}
	for _, h := range e.Handles(nil) {
		if seen[h] {
			t.Fatalf("handle %d appears twice", h)
		}
		seen[h] = true
	}
	if len(seen) != 4 {
		t.Fatalf("live handles = %d, want 4", len(seen))
	}
}

func TestDifferentDepthLayersDoNotCollide(t *testing.T) {
	cfg := still(4)
	cfg.DepthLevels = 2
	e := New(cfg)
	e.Init(300, 500)

	e.AddParticle(150, 250)
	e.AddParticle(150, 250)
	e.layer[0], e.layer[1] = 0, 1

	e.Update(step)
	for i := 0; i < 2; i++ {
		if e.x[i] != 150 || e.y[i] != 250 {
			t.Fatalf("row %d moved to (%v, %v)", i, e.x[i], e.y[i])
		}
	}
}

func TestSameDepthLayerSeparates(t *testing.T) {
	cfg := still(4)
	cfg.DepthLevels = 2
	e := New(cfg)
	e.Init(300, 500)

	a := e.AddParticle(150, 250)
	b := e.AddParticle(150, 250)
	e.layer[0], e.layer[1] = 1, 1

	for i := 0; i < 5; i++ {
		e.Update(step)
		ax, ay, _ := e.Position(a)
		bx, by, _ := e.Position(b)
		ra, _ := e.Radius(a)
		rb, _ := e.Radius(b)
		d := math.Hypot(bx-ax, by-ay)
		if d < ra+rb-1e-9 {
			t.Fatalf("step %d: distance %v < radii sum %v", i, d, ra+rb)
		}
		if math.IsNaN(ax) || math.IsNaN(bx) {
			t.Fatal("NaN position")
		}
	}
}

func TestBoundsClampWallsAndFloor(t *testing.T) {
	e := New(still(4))
	e.Init(300, 500)
	l := e.AddParticle(1, 250)
	f := e.AddParticle(150, 900)

	e.Update(step)

	lx, _, _ := e.Position(l)
	lr, _ := e.Radius(l)
	if lx < lr {
		t.Fatalf("left particle x = %v, want >= %v", lx, lr)
	}
	_, fy, _ := e.Position(f)
	fr, _ := e.Radius(f)
	if math.Abs(fy-(500-fr)) > 1e-9 {
		t.Fatalf("floor particle y = %v, want %v", fy, 500-fr)
	}
}

func TestBoundsKeepOutwardVelocity(t *testing.T) {
	e := New(still(4))
	e.Init(300, 500)
	f := e.AddParticle(150, 400)
	l := e.AddParticle(100, 200)
	r := e.AddParticle(200, 200)

	fi, _ := e.row(f)
	e.y[fi] = 500 - e.radius[fi] + 0.2
	e.py[fi] = e.y[fi] + 1.5 // rising
	li, _ := e.row(l)
	e.x[li] = e.radius[li] - 0.3
	e.px[li] = e.x[li] - 2 // moving right
	ri, _ := e.row(r)
	e.x[ri] = 300 - e.radius[ri] + 0.3
	e.px[ri] = e.x[ri] + 2 // moving left

	e.applyBounds()

	if vy := e.y[fi] - e.py[fi]; math.Abs(vy+1.5) > 1e-9 {
		t.Fatalf("floor vy = %v, want -1.5", vy)
	}
	if vx := e.x[li] - e.px[li]; math.Abs(vx-2) > 1e-9 {
		t.Fatalf("left wall vx = %v, want 2", vx)
	}
	if vx := e.x[ri] - e.px[ri]; math.Abs(vx+2) > 1e-9 {
		t.Fatalf("right wall vx = %v, want -2", vx)
	}
}

func TestBoundsReflectInwardVelocityOnce(t *testing.T) {
	e := New(still(1))
	e.Init(300, 500)
	h := e.AddParticle(150, 400)
	i, _ := e.row(h)
	e.y[i] = 500 - e.radius[i] + 1
	e.py[i] = e.y[i] - 4 // falling

	for pass := 0; pass < 3; pass++ {
		e.applyBounds()
	}

	want := -4 * e.cfg.Bounce
	if vy := e.y[i] - e.py[i]; math.Abs(vy-want) > 1e-9 {
		t.Fatalf("vy after passes = %v, want %v", vy, want)
	}
}

func TestCeilingCullsLaunchedParticles(t *testing.T) {
	e := New(still(2))
	e.Init(300, 500)
	h := e.AddParticle(150, -e.Config().CeilingMargin-5)
	e.Update(step)
	if s, _ := e.State(h); s != PendingRemoval {
		t.Fatalf("state = %v, want pending-removal", s)
	}
}

func TestRepulsionPushesAway(t *testing.T) {
	e := New(still(2))
	e.Init(300, 500)
	h := e.AddParticle(150, 250)

	e.ApplyRepulsion(140, 250)
	e.Update(step)

	x, _, _ := e.Position(h)
	if x <= 150 {
		t.Fatalf("x = %v, want > 150", x)
	}
}

func TestForcesIgnoreCoincidentPoint(t *testing.T) {
	e := New(still(2))
	e.Init(300, 500)
	h := e.AddParticle(150, 250)

	e.ApplyRepulsion(150, 250)
	e.ApplyExplosion(150, 250, 5000)

	px, py, _ := e.PrevPosition(h)
	if px != 150 || py != 250 {
		t.Fatalf("prev = (%v, %v), want untouched", px, py)
	}
}

func TestExplosionImpulseIsCapped(t *testing.T) {
	e := New(still(2))
	e.Init(300, 500)
	h := e.AddParticle(150, 250)

	e.ApplyExplosion(150, 240, 1e9)

	_, py, _ := e.PrevPosition(h)
	want := 250 - e.Config().ExplosionMaxImpulse
	if math.Abs(py-want) > 1e-9 {
		t.Fatalf("prev y = %v, want %v", py, want)
	}
}

func TestMarkForRemovalTakesWhatExists(t *testing.T) {
	e := New(still(8))
	e.Init(300, 500)
	for i := 0; i < 3; i++ {
		e.AddParticle(50+float64(i)*80, 100)
	}
	if n := e.MarkForRemoval(10); n != 3 {
		t.Fatalf("marked %d, want 3", n)
	}
	if n := e.MarkForRemoval(1); n != 0 {
		t.Fatalf("marked %d on an empty active set, want 0", n)
	}
	if e.CountByState(Dying) != 3 {
		t.Fatalf("dying = %d, want 3", e.CountByState(Dying))
	}
}

func TestSyncClampsToCapacity(t *testing.T) {
	e := New(Config{MaxParticles: 20})
	e.Init(300, 500)
	spawned, dying := e.Sync(1000)
	if spawned != 20 || dying != 0 {
		t.Fatalf("sync = (%d, %d), want (20, 0)", spawned, dying)
	}
	if spawned, _ = e.Sync(-5); spawned != 0 || e.CountByState(Dying) != 20 {
		t.Fatalf("sync(-5) left %d dying", e.CountByState(Dying))
	}
}

func TestInterpolatedBlendsPositions(t *testing.T) {
	e := New(DefaultConfig())
	e.Init(300, 500)
	h := e.AddParticle(150, 100)
	e.Update(step)

	px, py, _ := e.PrevPosition(h)
	x, y, _ := e.Position(h)
	ix, iy, _ := e.Interpolated(h, 0)
	if ix != px || iy != py {
		t.Fatalf("alpha 0 = (%v, %v), want prev (%v, %v)", ix, iy, px, py)
	}
	ix, iy, _ = e.Interpolated(h, 1)
	if ix != x || iy != y {
		t.Fatalf("alpha 1 = (%v, %v), want current (%v, %v)", ix, iy, x, y)
	}
	_, iy, _ = e.Interpolated(h, 0.5)
	if math.Abs(iy-(y+py)/2) > 1e-9 {
		t.Fatalf("alpha 0.5 y = %v, want %v", iy, (y+py)/2)
	}
}

func TestDyingParticleFadesOut(t *testing.T) {
	e := New(still(2))
	e.Init(300, 500)
	h := e.AddParticle(150, 250)
	e.MarkHandleForRemoval(h)

	e.Update(step)
	v, _ := e.Visual(h)
	if v.Alpha != 1 || v.Scale < 1 {
		t.Fatalf("float phase visual = %+v", v)
	}
	_, y, _ := e.Position(h)
	if y >= 250 {
		t.Fatalf("dying particle should rise, y = %v", y)
	}

	for i := 0; i < 120; i++ {
		e.Update(step)
	}
	v, _ = e.Visual(h)
	if v.Alpha > 1e-9 || v.Scale > 1e-9 {
		t.Fatalf("finished visual = %+v, want invisible", v)
	}
	if p, _ := e.DeathProgress(h); p != 1 {
		t.Fatalf("death progress = %v, want 1", p)
	}
}

func TestAppendSpritesOrdersByLayer(t *testing.T) {
	e := New(DefaultConfig())
	e.Init(300, 500)
	e.Sync(60)

	buf := e.AppendSprites(nil, 0.5)
	if len(buf) != 60*SpriteStride {
		t.Fatalf("len = %d, want %d", len(buf), 60*SpriteStride)
	}
	// The default palette brightens toward the front layer.
	prev := float32(-1)
	for i := 0; i < len(buf); i += SpriteStride {
		r := buf[i+3]
		if r < prev {
			t.Fatalf("sprite %d red %v after %v: layers out of order", i/SpriteStride, r, prev)
		}
		prev = r
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	e := New(DefaultConfig())
	e.Init(300, 500)
	h := e.AddParticle(10, 10)
	e.Destroy()
	e.Destroy()

	if e.AddParticle(10, 10) != NoHandle {
		t.Fatal("add after destroy returned a handle")
	}
	if _, _, ok := e.Position(h); ok {
		t.Fatal("position after destroy reported ok")
	}
	e.Update(step)
	e.ApplyExplosion(0, 0, 100)
	if e.Cleanup(nil) != 0 || e.Count() != 0 {
		t.Fatal("destroyed engine still holds particles")
	}
	if got := e.AppendSprites(nil, 0); len(got) != 0 {
		t.Fatalf("sprites after destroy = %d", len(got))
	}
}

func TestSyncSettleAndShrink(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxParticles = 100
	e := New(cfg)
	e.Init(300, 500)

	spawned, dying := e.Sync(50)
	if spawned != 50 || dying != 0 {
		t.Fatalf("sync(50) = (%d, %d), want (50, 0)", spawned, dying)
	}
	for _, h := range e.Handles(nil) {
		if _, y, _ := e.Position(h); y >= 0 {
			t.Fatalf("particle %d spawned at y = %v, want above the top edge", h, y)
		}
	}

	for i := 0; i < 120; i++ {
		e.Update(step)
	}
	if n := e.CountByState(Active); n != 50 {
		t.Fatalf("active after settling = %d, want 50", n)
	}
	if e.CountByState(Dying) != 0 || e.CountByState(PendingRemoval) != 0 {
		t.Fatal("particles left the active state while settling")
	}
	for _, h := range e.Handles(nil) {
		x, y, _ := e.Position(h)
		px, py, _ := e.PrevPosition(h)
		r, _ := e.Radius(h)
		if y > 500-r+1e-9 || y <= 0 {
			t.Fatalf("particle %d at y = %v, want within (0, %v]", h, y, 500-r)
		}
		if v := math.Hypot(x-px, y-py); v > 8 {
			t.Fatalf("particle %d still moving at %v px/step", h, v)
		}
	}

	spawned, dying = e.Sync(10)
	if spawned != 0 || dying != 40 {
		t.Fatalf("sync(10) = (%d, %d), want (0, 40)", spawned, dying)
	}
	for i := 0; i < 600 && e.Count() > 10; i++ {
		e.Update(step)
		e.Cleanup(nil)
	}
	if e.Count() != 10 || e.CountByState(Active) != 10 {
		t.Fatalf("count = %d active = %d, want 10/10", e.Count(), e.CountByState(Active))
	}
}
