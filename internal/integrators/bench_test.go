package integrators

import (
	"testing"

	"github.com/san-kum/dronesim/internal/dynamo"
)

type benchDynamics struct{}

func (b *benchDynamics) StateDim() int   { return 2 }
func (b *benchDynamics) ControlDim() int { return 0 }
func (b *benchDynamics) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, nil, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, nil, 0, 0.01)
	}
}

// benchRigidBody has the 12-slot (value, rate) pair layout of the drone state.
type benchRigidBody struct{}

func (b *benchRigidBody) StateDim() int   { return 12 }
func (b *benchRigidBody) ControlDim() int { return 0 }
func (b *benchRigidBody) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, 12)
	for i := 0; i < 6; i++ {
		dx[i*2] = x[i*2+1]
		dx[i*2+1] = -x[i*2] * 0.1
	}
	return dx
}

func BenchmarkRK4_RigidBody(b *testing.B) {
	integrator := NewRK4()
	dyn := &benchRigidBody{}
	x := make(dynamo.State, 12)
	for i := range x {
		x[i] = float64(i) * 0.1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, nil, 0, 0.001)
	}
}

func BenchmarkRK4_DepthSubsteps(b *testing.B) {
	integrator := NewRK4()
	dyn := &benchRigidBody{}
	x := make(dynamo.State, 12)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Integrate(dyn, x, nil, 0, 0.01, 10)
	}
}

