package tyre

import (
	"fmt"
	"math"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/integrators"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/vecmath"
)

// DepthModel supplies the compression-depth dynamics dD/dt for a wheel
// that shares the load with grounded-1 other wheels.
type DepthModel interface {
	DepthRate(d float64, grounded int) float64
}

// Tyre is one wheel of the landing gear. Geometry and material values are
// fixed at construction; only the compression depth changes afterwards.
type Tyre struct {
	role   WheelRole
	offset vecmath.Vec3

	wheelY    float64
	tyreSlope float64
	dampSlope float64
	radius    float64
	rMax      float64
	fcMax     float64

	depth    float64
	substeps int
	integ    *integrators.RK4
}

// New builds the wheel for role from the shared landing-gear parameters.
// wingX is the lateral wing position the rear wheels must stay within.
func New(role WheelRole, p Params, wingX float64) (*Tyre, error) {
	geo, ok := geometries[role]
	if !ok {
		return nil, dynamo.InvalidArgument("unknown wheel role %v", role)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s wheel: %w", role, err)
	}
	if !vecmath.IsFinite(wingX) || wingX <= 0 {
		return nil, dynamo.InvalidArgument("%s wheel: wingX must be positive and finite, got %g", role, wingX)
	}

	z := geo.offsetZ(p)
	if !geo.validZ(z) {
		return nil, dynamo.InvalidArgument("%s wheel: fore/aft offset %g violates role geometry", role, z)
	}
	x := geo.offsetX(p)
	if !geo.validX(math.Abs(x), wingX) {
		return nil, dynamo.InvalidArgument("%s wheel: lateral offset %g violates role geometry (wingX %g)", role, x, wingX)
	}

	return &Tyre{
		role:      role,
		offset:    vecmath.Vec3{X: x, Y: -p.WheelY, Z: z},
		wheelY:    p.WheelY,
		tyreSlope: p.TyreSlope,
		dampSlope: p.DampSlope,
		radius:    p.Radius,
		rMax:      p.RMax,
		fcMax:     p.FcMax,
		substeps:  DefaultSubsteps,
		integ:     integrators.NewRK4(),
	}, nil
}

func NewFront(p Params, wingX float64) (*Tyre, error)     { return New(Front, p, wingX) }
func NewLeftRear(p Params, wingX float64) (*Tyre, error)  { return New(LeftRear, p, wingX) }
func NewRightRear(p Params, wingX float64) (*Tyre, error) { return New(RightRear, p, wingX) }

func (t *Tyre) Role() WheelRole      { return t.role }
func (t *Tyre) Offset() vecmath.Vec3 { return t.offset }
func (t *Tyre) WheelX() float64      { return t.offset.X }
func (t *Tyre) WheelY() float64      { return t.wheelY }
func (t *Tyre) WheelZ() float64      { return t.offset.Z }
func (t *Tyre) TyreSlope() float64   { return t.tyreSlope }
func (t *Tyre) DampSlope() float64   { return t.dampSlope }
func (t *Tyre) Radius() float64      { return t.radius }
func (t *Tyre) RMax() float64        { return t.rMax }
func (t *Tyre) FcMax() float64       { return t.fcMax }
func (t *Tyre) Depth() float64       { return t.depth }
func (t *Tyre) Grounded() bool       { return t.depth > 0 }

// SetDepth overrides the compression depth, e.g. with the static-load
// value when the drone is assembled on the ground.
func (t *Tyre) SetDepth(d float64) error {
	if !t.validDepth(d) {
		return dynamo.InvalidArgument("%s wheel: depth %g outside [0, %g)", t.role, d, t.radius)
	}
	t.depth = d
	return nil
}

// SetSubsteps changes the number of RK4 substeps per depth update.
func (t *Tyre) SetSubsteps(n int) error {
	if n < 1 {
		return dynamo.InvalidArgument("substeps must be at least 1, got %d", n)
	}
	t.substeps = n
	return nil
}

func (t *Tyre) validDepth(d float64) bool {
	return vecmath.IsFinite(d) && d >= 0 && d < t.radius
}

// Position is the world position of the wheel hub.
func (t *Tyre) Position(s kinematics.State) vecmath.Vec3 {
	return s.Position.Add(s.ToWorld(t.offset))
}

// Height is the world height of the wheel mount, wheelY above the hub.
func (t *Tyre) Height(s kinematics.State) float64 {
	return t.Position(s).Y + t.wheelY
}

// Airborne reports whether the wheel is out of reach of the ground.
func (t *Tyre) Airborne(s kinematics.State) bool {
	return t.Height(s) > t.wheelY+t.radius
}

// GroundClearance is the distance from the hub to the ground for depth d.
func (t *Tyre) GroundClearance(d float64) float64 {
	return t.radius - d
}

// Penetration is how far the ground reaches into the tyre, radius minus
// the hub height. It is negative while the wheel is out of reach.
func (t *Tyre) Penetration(s kinematics.State) float64 {
	return t.radius - t.Position(s).Y
}

// UpdateDepth advances the compression depth over dt and reports whether
// the wheel is still in contact. grounded is the number of wheels sharing
// the load and is passed through to the depth model. While in contact the
// depth never falls below the geometric penetration. A hub at or below the
// ground fails with dynamo.ErrCrashed and leaves the depth unchanged.
func (t *Tyre) UpdateDepth(dt float64, s kinematics.State, model DepthModel, grounded int) (bool, error) {
	if !vecmath.IsFinite(dt) || dt < 0 {
		return false, dynamo.InvalidArgument("%s wheel: dt must be finite and non-negative, got %g", t.role, dt)
	}
	if model == nil {
		return false, dynamo.InvalidArgument("%s wheel: depth model is nil", t.role)
	}
	if hub := t.Position(s).Y; !(hub > 0) {
		return false, fmt.Errorf("%s wheel: %w: hub height %g", t.role, dynamo.ErrCrashed, hub)
	}

	if t.Airborne(s) {
		t.depth = 0
		return false, nil
	}
	if dt == 0 {
		return t.Grounded(), nil
	}
	if grounded < 1 || grounded > len(Roles) {
		return false, dynamo.InvalidArgument("%s wheel: grounded wheel count %d outside [1, %d]", t.role, grounded, len(Roles))
	}

	sys := &depthSystem{model: model, grounded: grounded}
	next := t.integ.Integrate(sys, dynamo.State{t.depth}, nil, 0, dt, t.substeps)

	if !t.validDepth(next[0]) || next[0] == 0 {
		t.depth = 0
		return false, nil
	}
	t.depth = math.Max(next[0], t.Penetration(s))
	return true, nil
}

// contact describes the ground contact point for the current state.
type contact struct {
	arm      vecmath.Vec3 // world-frame offset from the centre of mass
	velocity vecmath.Vec3 // world velocity of the contact point
	body     vecmath.Vec3 // the same velocity in drone coordinates
}

func (t *Tyre) contactPoint(s kinematics.State) contact {
	local := t.offset.Add(vecmath.Vec3{Y: -t.GroundClearance(t.depth)})
	arm := s.ToWorld(local)
	vel := s.PointVelocity(arm)
	return contact{arm: arm, velocity: vel, body: s.ToBody(vel)}
}

// DepthRate is the rate of compression along the wheel's up axis.
func (t *Tyre) DepthRate(s kinematics.State) float64 {
	return -t.contactPoint(s).body.Y
}

// LateralVelocity is the sideways slip of the contact point in the drone frame.
func (t *Tyre) LateralVelocity(s kinematics.State) float64 {
	return t.contactPoint(s).body.X
}

func (t *Tyre) checkBrake(brake float64) error {
	if !vecmath.IsFinite(brake) || brake < 0 || brake > t.rMax {
		return dynamo.InvalidArgument("%s wheel: brake force %g outside [0, %g]", t.role, brake, t.rMax)
	}
	return nil
}

// Force is the world-frame ground reaction of this wheel. accumulated is
// the force already acting on the drone; it gives the brake a direction
// when the contact point is not moving horizontally.
func (t *Tyre) Force(s kinematics.State, brake float64, accumulated vecmath.Vec3) (vecmath.Vec3, error) {
	if err := t.checkBrake(brake); err != nil {
		return vecmath.Zero, err
	}
	if t.depth == 0 {
		return vecmath.Zero, nil
	}

	c := t.contactPoint(s)

	// A tyre can push but never pull the airframe down.
	normal := math.Max(0, t.tyreSlope*t.depth+t.dampSlope*(-c.body.Y))

	var force vecmath.Vec3
	if geometries[t.role].lateralFriction {
		local := vecmath.Vec3{X: -t.fcMax * normal * c.body.X, Y: normal}
		force = s.ToWorld(local)
	} else {
		force = vecmath.Vec3{Y: normal}
	}

	if brake > 0 {
		dir, err := t.brakeDirection(c.velocity, accumulated.Add(force), brake)
		if err != nil {
			return vecmath.Zero, err
		}
		force = force.Add(dir.Scale(brake))
	}

	if !force.IsFinite() {
		return vecmath.Zero, fmt.Errorf("%s wheel: %w: force %v", t.role, dynamo.ErrInvalidState, force)
	}
	return force, nil
}

func (t *Tyre) brakeDirection(velocity, accumulated vecmath.Vec3, brake float64) (vecmath.Vec3, error) {
	if h := velocity.Horizontal(); !h.IsZero() {
		return h.Neg().Unit()
	}
	h := accumulated.Horizontal()
	if h.Norm() < brake {
		return vecmath.Zero, dynamo.InvalidArgument("%s wheel: stationary brake force %g exceeds horizontal load %g", t.role, brake, h.Norm())
	}
	return h.Neg().Unit()
}

// Moment is the drone-frame moment of the wheel force about the centre of mass.
func (t *Tyre) Moment(s kinematics.State, brake float64, accumulated vecmath.Vec3) (vecmath.Vec3, error) {
	f, err := t.Force(s, brake, accumulated)
	if err != nil {
		return vecmath.Zero, err
	}
	return t.MomentOf(s, f), nil
}

// MomentOf is the drone-frame moment of a world force f applied at this
// wheel's contact point.
func (t *Tyre) MomentOf(s kinematics.State, f vecmath.Vec3) vecmath.Vec3 {
	if f.IsZero() {
		return vecmath.Zero
	}
	arm := t.contactPoint(s).arm
	return s.ToBody(arm).Cross(s.ToBody(f))
}

// depthSystem adapts a DepthModel to the 1-state dynamo.System used by
// the substep integrator.
type depthSystem struct {
	model    DepthModel
	grounded int
}

func (d *depthSystem) Derive(x dynamo.State, _ dynamo.Control, _ float64) dynamo.State {
	return dynamo.State{d.model.DepthRate(x[0], d.grounded)}
}

func (d *depthSystem) StateDim() int   { return 1 }
func (d *depthSystem) ControlDim() int { return 0 }
