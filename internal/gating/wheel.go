package gating

import (
	"math"
	"time"
)

const (
	// wheelThreshold is the accumulated delta a gesture must reach to
	// qualify as one unit transition
	wheelThreshold = 120.0

	// wheelCooldown swallows the tail of a physical scroll motion so one
	// gesture cannot skip multiple units
	wheelCooldown = 600 * time.Millisecond
)

// Clock abstracts time for the accumulator so the cooldown is testable
// without real timers
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// WheelAccumulator collapses a stream of wheel/trackpad deltas into
// discrete unit transitions
type WheelAccumulator struct {
	clock     Clock
	accum     float64
	lastFired time.Time
}

// NewWheelAccumulator creates a new accumulator. A nil clock falls back to
// the system clock.
func NewWheelAccumulator(clock Clock) *WheelAccumulator {
	if clock == nil {
		clock = systemClock{}
	}
	return &WheelAccumulator{clock: clock}
}

// Add feeds one raw delta and returns the transition it completes:
// +1 forward, -1 backward, 0 when the gesture has not qualified yet or the
// cooldown is still absorbing the tail of the previous one
func (w *WheelAccumulator) Add(delta float64) int {
	now := w.clock.Now()
	if !w.lastFired.IsZero() && now.Sub(w.lastFired) < wheelCooldown {
		return 0
	}

	// A direction change discards what the previous direction accumulated.
	if w.accum != 0 && math.Signbit(w.accum) != math.Signbit(delta) {
		w.accum = 0
	}
	w.accum += delta

	if math.Abs(w.accum) < wheelThreshold {
		return 0
	}

	w.lastFired = now
	direction := 1
	if w.accum < 0 {
		direction = -1
	}
	w.accum = 0
	return direction
}
