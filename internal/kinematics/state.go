// Package kinematics holds the 12-component kinematic state of a drone
// and the body/world frame conversions derived from it.
//
// Vector layout, shared with the ODE adapter and the run storage:
//
//	[x, vx, y, vy, z, vz, heading, headingRate, pitch, pitchRate, roll, rollRate]
//
// Orientation follows the testbed convention: the drone flies towards -Z
// in its own frame, Y is up, X points along the right wing. The
// drone-to-world rotation is RotY(heading)·RotX(pitch)·RotZ(roll).
package kinematics

import (
	"fmt"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/vecmath"
)

// Dim is the length of the state vector.
const Dim = 12

// Slot indices into the state vector.
const (
	IdxX = iota
	IdxVX
	IdxY
	IdxVY
	IdxZ
	IdxVZ
	IdxHeading
	IdxHeadingRate
	IdxPitch
	IdxPitchRate
	IdxRoll
	IdxRollRate
)

// SlotNames labels the state vector, in order.
var SlotNames = [Dim]string{
	"x", "vx", "y", "vy", "z", "vz",
	"heading", "heading_rate", "pitch", "pitch_rate", "roll", "roll_rate",
}

// State is an immutable snapshot of the drone's position, velocity,
// orientation and angular velocity. Force models receive it by value.
type State struct {
	Position vecmath.Vec3
	Velocity vecmath.Vec3

	Heading, HeadingRate float64
	Pitch, PitchRate     float64
	Roll, RollRate       float64
}

// FromVector unpacks a 12-slot state vector. Angles are taken as is; use
// Wrapped to normalise them.
func FromVector(y dynamo.State) (State, error) {
	if len(y) != Dim {
		return State{}, fmt.Errorf("%w: kinematic state has %d slots, want %d", dynamo.ErrDimensionMismatch, len(y), Dim)
	}
	return State{
		Position:    vecmath.Vec3{X: y[IdxX], Y: y[IdxY], Z: y[IdxZ]},
		Velocity:    vecmath.Vec3{X: y[IdxVX], Y: y[IdxVY], Z: y[IdxVZ]},
		Heading:     y[IdxHeading],
		HeadingRate: y[IdxHeadingRate],
		Pitch:       y[IdxPitch],
		PitchRate:   y[IdxPitchRate],
		Roll:        y[IdxRoll],
		RollRate:    y[IdxRollRate],
	}, nil
}

// Vector packs the state into a new 12-slot vector.
func (s State) Vector() dynamo.State {
	return dynamo.State{
		s.Position.X, s.Velocity.X,
		s.Position.Y, s.Velocity.Y,
		s.Position.Z, s.Velocity.Z,
		s.Heading, s.HeadingRate,
		s.Pitch, s.PitchRate,
		s.Roll, s.RollRate,
	}
}

// Wrapped returns a copy with heading, pitch and roll in [0, 2π).
func (s State) Wrapped() State {
	s.Heading = vecmath.WrapAngle(s.Heading)
	s.Pitch = vecmath.WrapAngle(s.Pitch)
	s.Roll = vecmath.WrapAngle(s.Roll)
	return s
}

// Validate reports dynamo.ErrInvalidState if any component is NaN or Inf.
func (s State) Validate() error {
	if !s.Vector().IsValid() {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidState, s.Vector())
	}
	return nil
}

// Rotation is the drone-to-world rotation matrix.
func (s State) Rotation() vecmath.Mat3 {
	return vecmath.RotY(s.Heading).Mul(vecmath.RotX(s.Pitch)).Mul(vecmath.RotZ(s.Roll))
}

// ToWorld rotates a drone-frame vector into world coordinates.
func (s State) ToWorld(v vecmath.Vec3) vecmath.Vec3 {
	return s.Rotation().MulVec(v)
}

// ToBody rotates a world-frame vector into drone coordinates.
func (s State) ToBody(v vecmath.Vec3) vecmath.Vec3 {
	return s.Rotation().Transpose().MulVec(v)
}

// AngularVelocity is the world-frame angular velocity vector. Heading
// turns about world Y, pitch about the headed X axis and roll about the
// headed and pitched Z axis.
func (s State) AngularVelocity() vecmath.Vec3 {
	heading := vecmath.RotY(s.Heading)
	pitchAxis := heading.MulVec(vecmath.UnitX)
	rollAxis := heading.Mul(vecmath.RotX(s.Pitch)).MulVec(vecmath.UnitZ)

	return vecmath.UnitY.Scale(s.HeadingRate).
		Add(pitchAxis.Scale(s.PitchRate)).
		Add(rollAxis.Scale(s.RollRate))
}

// PointVelocity is the world velocity of a point rigidly attached to the
// drone at world-frame offset r from the centre of mass.
func (s State) PointVelocity(r vecmath.Vec3) vecmath.Vec3 {
	return s.Velocity.Add(s.AngularVelocity().Cross(r))
}
