package metrics

import "math"

// SpeedError is the RMS difference between the ground speed and a target.
type SpeedError struct {
	name   string
	target float64
	sumSq  float64
	n      int
}

func NewSpeedError(target float64) *SpeedError {
	return &SpeedError{name: "speed_error", target: target}
}

func (e *SpeedError) Name() string { return e.name }

func (e *SpeedError) Observe(s Sample) {
	diff := s.State.Velocity.Horizontal().Norm() - e.target
	e.sumSq += diff * diff
	e.n++
}

func (e *SpeedError) Value() float64 {
	if e.n == 0 {
		return 0
	}
	return math.Sqrt(e.sumSq / float64(e.n))
}

func (e *SpeedError) Reset() {
	e.sumSq = 0
	e.n = 0
}
