// Package airframe is the force and moment model of a fixed-wing drone
// on tricycle landing gear: gravity, engine thrust, wing and stabiliser
// lift and the three tyre reactions.
package airframe

import (
	"fmt"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/tyre"
	"github.com/san-kum/dronesim/internal/vecmath"
)

type Drone struct {
	cfg config.Drone

	mass      float64
	weight    float64
	inertia   vecmath.Vec3
	enginePos vecmath.Vec3
	surfaces  []surface

	wheels *tyre.Set
	state  kinematics.State
}

// New validates cfg, builds the landing gear and places the drone at s.
// Wheels that start within reach of the ground are preloaded with their
// share of the static weight; a hub starting at or below the ground fails
// with dynamo.ErrCrashed.
func New(cfg config.Drone, s kinematics.State) (*Drone, error) {
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("drone %q: %w", cfg.ID, err)
	}
	wheels, err := tyre.NewSet(cfg.TyreParams(), cfg.WingX)
	if err != nil {
		return nil, fmt.Errorf("drone %q: %w", cfg.ID, err)
	}

	d := &Drone{
		cfg:    cfg,
		mass:   cfg.EngineMass + cfg.TailMass + 2*cfg.WingMass,
		wheels: wheels,
	}
	d.weight = d.mass * cfg.Gravity
	d.enginePos = vecmath.Vec3{Z: -cfg.TailMass * cfg.TailSize / cfg.EngineMass}
	d.inertia = inertia(cfg, d.enginePos)
	d.surfaces = surfacesOf(cfg)

	if err := d.SetState(s); err != nil {
		return nil, err
	}

	static := d.StaticDepth()
	if static >= cfg.TyreRadius {
		return nil, dynamo.InvalidArgument("drone %q: static tyre depth %g exceeds tyre radius %g", cfg.ID, static, cfg.TyreRadius)
	}
	for _, w := range wheels.All() {
		if w.Airborne(d.state) {
			continue
		}
		if hub := w.Position(d.state).Y; !(hub > 0) {
			return nil, fmt.Errorf("drone %q: %s wheel: %w: hub height %g", cfg.ID, w.Role(), dynamo.ErrCrashed, hub)
		}
		if err := w.SetDepth(static); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func validate(cfg config.Drone) error {
	positive := []struct {
		name  string
		value float64
	}{
		{"gravity", cfg.Gravity},
		{"wing_x", cfg.WingX},
		{"tail_size", cfg.TailSize},
		{"engine_mass", cfg.EngineMass},
		{"wing_mass", cfg.WingMass},
		{"tail_mass", cfg.TailMass},
		{"wing_lift_slope", cfg.WingLiftSlope},
		{"hor_stab_lift_slope", cfg.HorStabLiftSlope},
		{"ver_stab_lift_slope", cfg.VerStabLiftSlope},
	}
	for _, p := range positive {
		if !vecmath.IsFinite(p.value) || p.value <= 0 {
			return dynamo.InvalidArgument("%s must be positive and finite, got %g", p.name, p.value)
		}
	}
	if !vecmath.IsFinite(cfg.MaxThrust) || cfg.MaxThrust < 0 {
		return dynamo.InvalidArgument("max_thrust must be non-negative and finite, got %g", cfg.MaxThrust)
	}
	if !vecmath.IsFinite(cfg.MaxAOA) || cfg.MaxAOA < 0 || cfg.MaxAOA >= vecmath.TwoPi {
		return dynamo.InvalidArgument("max_aoa must be in [0, 2π), got %g", cfg.MaxAOA)
	}
	return nil
}

// inertia returns the principal moments of the point-mass airframe.
func inertia(cfg config.Drone, engine vecmath.Vec3) vecmath.Vec3 {
	xx := cfg.TailMass*cfg.TailSize*cfg.TailSize + cfg.EngineMass*engine.Z*engine.Z
	zz := 2 * cfg.WingMass * cfg.WingX * cfg.WingX
	return vecmath.Vec3{X: xx, Y: xx + zz, Z: zz}
}

func (d *Drone) ID() string                   { return d.cfg.ID }
func (d *Drone) Config() config.Drone         { return d.cfg }
func (d *Drone) Mass() float64                { return d.mass }
func (d *Drone) Weight() float64              { return d.weight }
func (d *Drone) Inertia() vecmath.Vec3        { return d.inertia }
func (d *Drone) EnginePosition() vecmath.Vec3 { return d.enginePos }
func (d *Drone) Wheels() *tyre.Set            { return d.wheels }
func (d *Drone) State() kinematics.State      { return d.state }

// SetState commits a new kinematic state.
func (d *Drone) SetState(s kinematics.State) error {
	s = s.Wrapped()
	if err := s.Validate(); err != nil {
		return err
	}
	d.state = s
	return nil
}

// StaticDepth is the compression of each tyre when the weight rests
// evenly on all three wheels.
func (d *Drone) StaticDepth() float64 {
	return d.weight / (3 * d.cfg.TyreSlope)
}

// GetParams lists the derived airframe values.
func (d *Drone) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":         d.mass,
		"weight":       d.weight,
		"inertia_xx":   d.inertia.X,
		"inertia_yy":   d.inertia.Y,
		"inertia_zz":   d.inertia.Z,
		"engine_z":     d.enginePos.Z,
		"static_depth": d.StaticDepth(),
		"max_thrust":   d.cfg.MaxThrust,
	}
}
