package display

import "math"

// minStep bounds the animation step from below. A stalled or
// duplicate-timestamp tick still advances by at least 1/240 s; there is no
// upper bound.
const minStep = 1.0 / 240.0

// Spinner is the loop's animation state: a phase advanced from wall-clock
// deltas and a bounded oscillation derived from it. Only the loop mutates it.
type Spinner struct {
	phase float64
	rate  float64
}

// NewSpinner returns a spinner advancing at the given rate in phase units
// per second.
func NewSpinner(rate float64) *Spinner {
	return &Spinner{rate: rate}
}

// Update advances the phase by dt seconds, clamped to the minimum step.
func (s *Spinner) Update(dt float64) {
	if dt < minStep {
		dt = minStep
	}
	s.phase += dt * s.rate
}

// Scale returns the draw-time scalar in [-1, 1].
func (s *Spinner) Scale() float64 {
	return math.Sin(s.phase)
}
