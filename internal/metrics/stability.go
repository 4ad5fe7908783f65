package metrics

import "math"

const (
	DefaultSpeedBound = 100.0
	DefaultRateBound  = 2.0
)

// Stability is the fraction of ticks in which the drone stays within a
// speed bound and an angular rate bound.
type Stability struct {
	name       string
	speedBound float64
	rateBound  float64
	violations int
	samples    int
}

func NewStability(speedBound, rateBound float64) *Stability {
	return &Stability{
		name:       "stability",
		speedBound: speedBound,
		rateBound:  rateBound,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x Sample) {
	s.samples++
	st := x.State
	if st.Velocity.Norm() > s.speedBound {
		s.violations++
		return
	}
	for _, rate := range []float64{st.HeadingRate, st.PitchRate, st.RollRate} {
		if math.Abs(rate) > s.rateBound {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
