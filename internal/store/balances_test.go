package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"pointfall/internal/economy"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "points.db"), economy.DefaultModel())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestGetMissingUser(t *testing.T) {
	s := openTest(t)
	_, err := s.Get(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	b, err := s.Balance(context.Background(), "nobody")
	if err != nil || b.Points != 0 {
		t.Fatalf("balance = %+v, %v; want zero", b, err)
	}
}

func TestAddPersistsAndLogs(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	if _, err := s.Add(ctx, "ana", 100, t0); err != nil {
		t.Fatal(err)
	}
	b, err := s.Add(ctx, "ana", 50, t0)
	if err != nil {
		t.Fatal(err)
	}
	if b.Points != 150 {
		t.Fatalf("points = %v, want 150", b.Points)
	}

	got, err := s.Get(ctx, "ana")
	if err != nil {
		t.Fatal(err)
	}
	if got.Points != 150 || !got.UpdatedAt.Equal(t0) {
		t.Fatalf("stored = %+v, want 150 at %v", got, t0)
	}

	hist, err := s.History(ctx, "ana", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 2 {
		t.Fatalf("history = %d entries, want 2", len(hist))
	}
	if hist[0].Delta != 50 || hist[0].PointsAfter != 150 || hist[0].Kind != KindAdd {
		t.Fatalf("newest entry = %+v", hist[0])
	}
	if hist[0].ID == hist[1].ID || hist[0].ID == "" {
		t.Fatalf("entry ids not unique: %q %q", hist[0].ID, hist[1].ID)
	}
}

func TestAddSettlesDecayFirst(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	m := s.Model()

	if _, err := s.Add(ctx, "ana", 1280, t0); err != nil {
		t.Fatal(err)
	}
	later := t0.Add(24 * time.Hour)
	b, err := s.Add(ctx, "ana", 10, later)
	if err != nil {
		t.Fatal(err)
	}
	want := m.Decay(1280, 24) + 10
	if math.Abs(b.Points-want) > 1e-9 {
		t.Fatalf("points = %v, want %v", b.Points, want)
	}
}

func TestSubtractInsufficientRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if _, err := s.Add(ctx, "ana", 20, t0); err != nil {
		t.Fatal(err)
	}

	_, err := s.Subtract(ctx, "ana", 30, t0)
	if !errors.Is(err, economy.ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}
	got, _ := s.Get(ctx, "ana")
	if got.Points != 20 {
		t.Fatalf("points = %v after failed subtract, want 20", got.Points)
	}
	hist, _ := s.History(ctx, "ana", 0)
	if len(hist) != 1 {
		t.Fatalf("history = %d entries, want 1", len(hist))
	}
}

func TestTransferMovesPoints(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if _, err := s.Add(ctx, "ana", 100, t0); err != nil {
		t.Fatal(err)
	}

	from, to, err := s.Transfer(ctx, "ana", "ben", 40, t0)
	if err != nil {
		t.Fatal(err)
	}
	if from.Points != 60 || to.Points != 40 {
		t.Fatalf("transfer = %v / %v, want 60 / 40", from.Points, to.Points)
	}

	ben, err := s.History(ctx, "ben", 5)
	if err != nil || len(ben) != 1 || ben[0].Kind != KindTransferIn {
		t.Fatalf("ben history = %+v, %v", ben, err)
	}

	if _, _, err := s.Transfer(ctx, "ben", "ana", 1000, t0); !errors.Is(err, economy.ErrInsufficientPoints) {
		t.Fatalf("overdraw err = %v", err)
	}
	if _, _, err := s.Transfer(ctx, "ana", "ana", 1, t0); err == nil {
		t.Fatal("self transfer accepted")
	}
	a, _ := s.Get(ctx, "ana")
	b, _ := s.Get(ctx, "ben")
	if a.Points != 60 || b.Points != 40 {
		t.Fatalf("balances changed by failed transfers: %v / %v", a.Points, b.Points)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "points.db")
	s, err := Open(path, economy.DefaultModel())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(ctx, "ana", 7, t0); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path, economy.DefaultModel())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	b, err := s.Get(ctx, "ana")
	if err != nil || b.Points != 7 {
		t.Fatalf("after reopen = %+v, %v", b, err)
	}
}
