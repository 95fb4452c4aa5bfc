package economy

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestAddSettlesBeforeCrediting(t *testing.T) {
	m := DefaultModel()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	b := Balance{Points: 1280, UpdatedAt: now.Add(-24 * time.Hour)}

	got, err := m.Add(b, 100, now)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	want := m.Decay(1280, 24) + 100
	if math.Abs(got.Points-want) > 1e-9 {
		t.Fatalf("Points = %v, want %v", got.Points, want)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
	}
}

func TestSubtractInsufficient(t *testing.T) {
	m := DefaultModel()
	now := time.Now()
	b := Balance{Points: 50, UpdatedAt: now}

	got, err := m.Subtract(b, 80, now)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}
	if got != b {
		t.Fatalf("balance changed on failed debit: %+v", got)
	}
}

func TestInvalidAmounts(t *testing.T) {
	m := DefaultModel()
	for _, amt := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		if _, err := m.Add(Balance{}, amt, time.Now()); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("Add(%v) err = %v, want ErrInvalidAmount", amt, err)
		}
	}
}

func TestTransferConservesAtSameInstant(t *testing.T) {
	m := DefaultModel()
	now := time.Now()
	from := Balance{Points: 300, UpdatedAt: now}
	to := Balance{Points: 20, UpdatedAt: now}

	f, tt, err := m.Transfer(from, to, 120, now)
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if f.Points != 180 || tt.Points != 140 {
		t.Fatalf("after transfer from=%v to=%v, want 180/140", f.Points, tt.Points)
	}

	f2, t2, err := m.Transfer(from, to, 1000, now)
	if err == nil {
		t.Fatal("expected error transferring more than available")
	}
	if f2 != from || t2 != to {
		t.Fatal("balances changed on failed transfer")
	}
}

func TestTargetCount(t *testing.T) {
	m := DefaultModel()
	now := time.Now()
	cases := []struct {
		points float64
		per    float64
		cap    int
		want   int
	}{
		{0, 1, 100, 0},
		{49.6, 1, 100, 50},
		{500, 10, 100, 50},
		{5000, 1, 100, 100},
		{12, 0, 100, 12},
		{1e20, 1, 1000, 1000},
		{1e300, 1, 100, 100},
		{math.MaxFloat64, 0.5, 100, 100},
	}
	for _, tc := range cases {
		got := m.TargetCount(Balance{Points: tc.points, UpdatedAt: now}, now, tc.per, tc.cap)
		if got != tc.want {
			t.Fatalf("TargetCount(%v, per=%v, cap=%d) = %d, want %d", tc.points, tc.per, tc.cap, got, tc.want)
		}
	}
}
