package metrics

import (
	"math"

	"github.com/san-kum/dronesim/internal/kinematics"
)

// mechanicalEnergy is kinetic plus potential energy, with the ground at y = 0.
func mechanicalEnergy(s kinematics.State, mass, gravity float64, inertia [3]float64) float64 {
	v := s.Velocity
	w := s.ToBody(s.AngularVelocity())
	ke := 0.5 * mass * v.Dot(v)
	keRot := 0.5 * (inertia[0]*w.X*w.X + inertia[1]*w.Y*w.Y + inertia[2]*w.Z*w.Z)
	pe := mass * gravity * s.Position.Y
	return ke + keRot + pe
}

// Energy is the mean mechanical energy over the run.
type Energy struct {
	name        string
	mass        float64
	gravity     float64
	inertia     [3]float64
	samples     int
	totalEnergy float64
}

func NewEnergy(mass, gravity float64, inertia [3]float64) *Energy {
	return &Energy{
		name:    "energy",
		mass:    mass,
		gravity: gravity,
		inertia: inertia,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s Sample) {
	e.totalEnergy += mechanicalEnergy(s.State, e.mass, e.gravity, e.inertia)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of mechanical energy from
// the first observed tick.
type EnergyDrift struct {
	name          string
	mass          float64
	gravity       float64
	inertia       [3]float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(mass, gravity float64, inertia [3]float64) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		mass:    mass,
		gravity: gravity,
		inertia: inertia,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s Sample) {
	energy := mechanicalEnergy(s.State, e.mass, e.gravity, e.inertia)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
