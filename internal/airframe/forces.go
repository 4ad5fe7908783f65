package airframe

import (
	"fmt"

	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/tyre"
	"github.com/san-kum/dronesim/internal/vecmath"
)

// Loads is the total external load on the drone for one state.
type Loads struct {
	// Force is the resultant in world coordinates.
	Force vecmath.Vec3
	// Moment is about the centre of mass, in drone coordinates.
	Moment vecmath.Vec3
	// Lift is the aerodynamic part of Force.
	Lift vecmath.Vec3
}

// Loads sums gravity, thrust, lift and the tyre reactions. Tyres are
// evaluated in Roles order; each sees the force accumulated before it.
func (d *Drone) Loads(s kinematics.State, out dynamics.Actuators) (Loads, error) {
	if out.Thrust > d.cfg.MaxThrust {
		return Loads{}, dynamo.InvalidArgument("thrust %g exceeds max thrust %g", out.Thrust, d.cfg.MaxThrust)
	}

	var l Loads
	for _, sf := range d.surfaces {
		lift, err := d.lift(sf, s, out)
		if err != nil {
			return Loads{}, err
		}
		l.Lift = l.Lift.Add(s.ToWorld(lift))
		l.Moment = l.Moment.Add(sf.position.Cross(lift))
	}

	gravity := vecmath.Vec3{Y: -d.weight}
	thrust := vecmath.Vec3{Z: -out.Thrust}
	l.Force = gravity.Add(s.ToWorld(thrust)).Add(l.Lift)
	l.Moment = l.Moment.Add(d.enginePos.Cross(thrust))

	brakes := out.Brakes()
	for i, w := range d.wheels.All() {
		f, err := w.Force(s, brakes[i], l.Force)
		if err != nil {
			return Loads{}, fmt.Errorf("%s tyre: %w", w.Role(), err)
		}
		l.Force = l.Force.Add(f)
		l.Moment = l.Moment.Add(w.MomentOf(s, f))
	}
	return l, nil
}

// Acceleration implements dynamics.ForceModel.
func (d *Drone) Acceleration(s kinematics.State, out dynamics.Actuators) (vecmath.Vec3, error) {
	l, err := d.Loads(s, out)
	if err != nil {
		return vecmath.Zero, err
	}
	return l.Force.Scale(1 / d.mass), nil
}

// AngularAccelerations implements dynamics.ForceModel. Body angular
// accelerations from Euler's equations are mapped onto the orientation
// angles as heading about Y, pitch about X and roll about Z.
func (d *Drone) AngularAccelerations(s kinematics.State, out dynamics.Actuators) (dynamics.AngularAcceleration, error) {
	l, err := d.Loads(s, out)
	if err != nil {
		return dynamics.AngularAcceleration{}, err
	}

	w := s.ToBody(s.AngularVelocity())
	iw := vecmath.Vec3{X: d.inertia.X * w.X, Y: d.inertia.Y * w.Y, Z: d.inertia.Z * w.Z}
	m := l.Moment.Sub(w.Cross(iw))

	return dynamics.AngularAcceleration{
		Heading: m.Y / d.inertia.Y,
		Pitch:   m.X / d.inertia.X,
		Roll:    m.Z / d.inertia.Z,
	}, nil
}

// DepthRate is the depth dynamics of a tyre carrying an equal share of
// the weight with grounded-1 other wheels.
func (d *Drone) DepthRate(depth float64, grounded int) float64 {
	return loadShare{load: d.weight, tyreSlope: d.cfg.TyreSlope, dampSlope: d.cfg.DampSlope}.DepthRate(depth, grounded)
}

// LoadModel returns the depth dynamics for state s, with the weight
// relieved by the current lift.
func (d *Drone) LoadModel(s kinematics.State, out dynamics.Actuators) (tyre.DepthModel, error) {
	var liftY float64
	for _, sf := range d.surfaces {
		lift, err := d.lift(sf, s, out)
		if err != nil {
			return nil, err
		}
		liftY += s.ToWorld(lift).Y
	}
	load := d.weight - liftY
	if load < 0 {
		load = 0
	}
	return loadShare{load: load, tyreSlope: d.cfg.TyreSlope, dampSlope: d.cfg.DampSlope}, nil
}

type loadShare struct {
	load      float64
	tyreSlope float64
	dampSlope float64
}

func (l loadShare) DepthRate(depth float64, grounded int) float64 {
	return (l.load/float64(grounded) - l.tyreSlope*depth) / l.dampSlope
}
