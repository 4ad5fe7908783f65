// Package dynamics adapts a drone force model to the 12-state ODE form
// consumed by the fixed-step integrators.
package dynamics

import (
	"fmt"
	"math"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
)

// Equations is the rigid-body ODE for one tick. It is built with the
// actuator commands of that tick and discarded afterwards.
type Equations struct {
	model ForceModel
	out   Actuators
	err   error
}

func New(model ForceModel, out Actuators) (*Equations, error) {
	if model == nil {
		return nil, dynamo.InvalidArgument("force model is nil")
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &Equations{model: model, out: out}, nil
}

func (e *Equations) Dimension() int  { return kinematics.Dim }
func (e *Equations) StateDim() int   { return kinematics.Dim }
func (e *Equations) ControlDim() int { return 0 }

func (e *Equations) Actuators() Actuators { return e.out }

// Derivative evaluates ẏ at y. Angles are wrapped into [0, 2π) before the
// force model sees them; position and orientation slots of the result are
// copied from the paired rate slots of y.
func (e *Equations) Derivative(t float64, y dynamo.State) (dynamo.State, error) {
	s, err := kinematics.FromVector(y)
	if err != nil {
		return nil, err
	}
	s = s.Wrapped()

	acc, err := e.model.Acceleration(s, e.out)
	if err != nil {
		return nil, fmt.Errorf("acceleration at t=%.4f: %w", t, err)
	}
	ang, err := e.model.AngularAccelerations(s, e.out)
	if err != nil {
		return nil, fmt.Errorf("angular acceleration at t=%.4f: %w", t, err)
	}

	dy := make(dynamo.State, kinematics.Dim)
	for i := 0; i < kinematics.Dim; i += 2 {
		dy[i] = y[i+1]
	}
	dy[kinematics.IdxVX] = acc.X
	dy[kinematics.IdxVY] = acc.Y
	dy[kinematics.IdxVZ] = acc.Z
	dy[kinematics.IdxHeadingRate] = ang.Heading
	dy[kinematics.IdxPitchRate] = ang.Pitch
	dy[kinematics.IdxRollRate] = ang.Roll
	return dy, nil
}

// Derive implements dynamo.System. The first force-model error is latched
// and reported by Err; the returned derivative is then NaN so the
// integrated state fails validation.
func (e *Equations) Derive(x dynamo.State, _ dynamo.Control, t float64) dynamo.State {
	if e.err == nil {
		dy, err := e.Derivative(t, x)
		if err == nil {
			return dy
		}
		e.err = err
	}
	dy := make(dynamo.State, len(x))
	for i := range dy {
		dy[i] = math.NaN()
	}
	return dy
}

// Err returns the first error raised while integrating.
func (e *Equations) Err() error {
	return e.err
}

// Commit turns an integrated vector into the next drone state.
func (e *Equations) Commit(y dynamo.State) (kinematics.State, error) {
	s, err := kinematics.FromVector(y)
	if err != nil {
		return kinematics.State{}, err
	}
	s = s.Wrapped()
	if err := s.Validate(); err != nil {
		return kinematics.State{}, err
	}
	return s, nil
}
