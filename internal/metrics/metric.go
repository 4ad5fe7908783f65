// Package metrics holds per-tick observers that summarise a run.
package metrics

import (
	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/kinematics"
)

// Sample is the drone as committed at the end of one tick.
type Sample struct {
	Step     int
	Time     float64
	State    kinematics.State
	Outputs  dynamics.Actuators
	Depths   [3]float64
	Grounded int
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Standard returns the metrics reported for every run.
func Standard(mass, gravity float64, inertia [3]float64) []Metric {
	return []Metric{
		NewGroundContact(),
		NewMaxDepth(),
		NewStability(DefaultSpeedBound, DefaultRateBound),
		NewBrakeEffort(),
		NewEnergy(mass, gravity, inertia),
		NewEnergyDrift(mass, gravity, inertia),
	}
}
