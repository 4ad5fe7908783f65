package autopilot

import (
	"sort"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
)

// Schedule holds each segment's outputs until its end time. Past the last
// segment all outputs are zero.
type Schedule struct {
	segments []config.Segment
}

func NewSchedule(segments []config.Segment) (*Schedule, error) {
	prev := 0.0
	for i, seg := range segments {
		if seg.Until <= prev {
			return nil, dynamo.InvalidArgument("segment %d ends at %g, not after %g", i, seg.Until, prev)
		}
		if err := seg.Outputs.Validate(); err != nil {
			return nil, err
		}
		prev = seg.Until
	}
	return &Schedule{segments: append([]config.Segment(nil), segments...)}, nil
}

func (s *Schedule) Outputs(_ kinematics.State, t float64) dynamics.Actuators {
	i := sort.Search(len(s.segments), func(i int) bool { return t < s.segments[i].Until })
	if i == len(s.segments) {
		return dynamics.Actuators{}
	}
	return s.segments[i].Outputs
}
