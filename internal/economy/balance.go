package economy

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInsufficientPoints = errors.New("economy: insufficient points")
	ErrInvalidAmount      = errors.New("economy: amount must be positive and finite")
)

// Balance is a user's stored point value and when it was last settled.
type Balance struct {
	Points    float64
	UpdatedAt time.Time
}

// Settle applies decay up to now and stamps the balance. A stamp in the
// future (clock skew) keeps the points and moves the stamp to now.
func (m Model) Settle(b Balance, now time.Time) Balance {
	return Balance{Points: m.Current(b.Points, b.UpdatedAt, now), UpdatedAt: now}
}

// Add settles b and credits amount.
func (m Model) Add(b Balance, amount float64, now time.Time) (Balance, error) {
	if err := checkAmount(amount); err != nil {
		return b, err
	}
	s := m.Settle(b, now)
	s.Points += amount
	return s, nil
}

// Subtract settles b and debits amount. The balance is left untouched when
// the decayed points do not cover the debit.
func (m Model) Subtract(b Balance, amount float64, now time.Time) (Balance, error) {
	if err := checkAmount(amount); err != nil {
		return b, err
	}
	s := m.Settle(b, now)
	if s.Points < amount {
		return b, fmt.Errorf("%w: have %.2f, need %.2f", ErrInsufficientPoints, s.Points, amount)
	}
	s.Points -= amount
	return s, nil
}

// Transfer moves amount from one balance to another. Both are settled to the
// same instant; on error neither changes.
func (m Model) Transfer(from, to Balance, amount float64, now time.Time) (Balance, Balance, error) {
	debited, err := m.Subtract(from, amount, now)
	if err != nil {
		return from, to, err
	}
	credited, err := m.Add(to, amount, now)
	if err != nil {
		return from, to, err
	}
	return debited, credited, nil
}

// TargetCount maps the balance at now to a particle count: one particle per
// pointsPerParticle, rounded, clamped to [0, capacity].
func (m Model) TargetCount(b Balance, now time.Time, pointsPerParticle float64, capacity int) int {
	if pointsPerParticle <= 0 {
		pointsPerParticle = 1
	}
	pts := m.Current(b.Points, b.UpdatedAt, now)
	if !(pts > 0) {
		return 0
	}
	q := math.Round(pts / pointsPerParticle)
	if q >= float64(capacity) {
		return capacity
	}
	return int(q)
}

func checkAmount(amount float64) error {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return nil
}
