// Package economy implements point evaporation: a stored balance decays
// toward zero over time, faster for large balances than small ones.
package economy

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Default tuning: a maxed balance of DefaultMaxPoints is designed around a
// DefaultDaysToCap day horizon.
const (
	DefaultMaxPoints = 1280.0
	DefaultDaysToCap = 7.0
)

// Model holds the derived decay constants. The zero value never decays.
type Model struct {
	MaxPoints   float64
	DaysToCap   float64
	DailyGrowth float64 // G_DAILY
	Lambda      float64 // per hour, per point^2
}

// NewModel derives G_DAILY = 8·pMax/(7·days) and LAMBDA = G_DAILY/(24·pMax³).
func NewModel(pMax, daysToCap float64) Model {
	m := Model{MaxPoints: pMax, DaysToCap: daysToCap}
	if pMax <= 0 || daysToCap <= 0 {
		return m
	}
	m.DailyGrowth = (8 * pMax) / (7 * daysToCap)
	m.Lambda = m.DailyGrowth / (24 * pMax * pMax * pMax)
	return m
}

// DefaultModel uses DefaultMaxPoints and DefaultDaysToCap.
func DefaultModel() Model {
	return NewModel(DefaultMaxPoints, DefaultDaysToCap)
}

// Decay returns lastPoints / sqrt(1 + 2·λ·lastPoints²·hours).
// Non-positive balances, non-positive or non-finite elapsed time, and any
// non-finite result all return lastPoints unchanged.
func (m Model) Decay(lastPoints, hours float64) float64 {
	if lastPoints <= 0 || math.IsNaN(lastPoints) || math.IsInf(lastPoints, 0) {
		return lastPoints
	}
	if !(hours > 0) || math.IsInf(hours, 0) || m.Lambda <= 0 {
		return lastPoints
	}
	cur := lastPoints / math.Sqrt(1+2*m.Lambda*lastPoints*lastPoints*hours)
	if math.IsNaN(cur) || math.IsInf(cur, 0) || cur > lastPoints {
		return lastPoints
	}
	return cur
}

// Current decays lastPoints from updatedAt to now. A zero updatedAt means
// the balance has never been stamped, so nothing is applied.
func (m Model) Current(lastPoints float64, updatedAt, now time.Time) float64 {
	if updatedAt.IsZero() {
		return lastPoints
	}
	return m.Decay(lastPoints, now.Sub(updatedAt).Hours())
}

// CurrentFromStamp is Current for a stored timestamp string, either RFC 3339
// or Unix milliseconds. Empty or unparseable stamps leave the balance as is.
func (m Model) CurrentFromStamp(lastPoints float64, stamp string, now time.Time) float64 {
	t, ok := ParseStamp(stamp)
	if !ok {
		return lastPoints
	}
	return m.Current(lastPoints, t, now)
}

// ParseStamp accepts RFC 3339 (with or without fractional seconds) and Unix
// millisecond integers.
func ParseStamp(stamp string) (time.Time, bool) {
	stamp = strings.TrimSpace(stamp)
	if stamp == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
		return t, true
	}
	if ms, err := strconv.ParseInt(stamp, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}
