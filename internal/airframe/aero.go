package airframe

import (
	"math"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/vecmath"
)

// minLiftSpeed is the airspeed below which a surface produces no lift and
// its angle of attack is not checked.
const minLiftSpeed = 0.5

// surface is one lifting surface in drone coordinates.
type surface struct {
	name        string
	position    vecmath.Vec3
	vertical    bool
	slope       float64
	inclination func(dynamics.Actuators) float64
}

func surfacesOf(cfg config.Drone) []surface {
	tail := vecmath.Vec3{Z: cfg.TailSize}
	return []surface{
		{
			name:        "left_wing",
			position:    vecmath.Vec3{X: -cfg.WingX},
			slope:       cfg.WingLiftSlope,
			inclination: func(a dynamics.Actuators) float64 { return a.LeftWingInclination },
		},
		{
			name:        "right_wing",
			position:    vecmath.Vec3{X: cfg.WingX},
			slope:       cfg.WingLiftSlope,
			inclination: func(a dynamics.Actuators) float64 { return a.RightWingInclination },
		},
		{
			name:        "hor_stab",
			position:    tail,
			slope:       cfg.HorStabLiftSlope,
			inclination: func(a dynamics.Actuators) float64 { return a.HorStabInclination },
		},
		{
			name:        "ver_stab",
			position:    tail,
			vertical:    true,
			slope:       cfg.VerStabLiftSlope,
			inclination: func(a dynamics.Actuators) float64 { return a.VerStabInclination },
		},
	}
}

// frame returns the attack vector and the normal of the surface for the
// given inclination, both in drone coordinates.
func (sf surface) frame(incl float64) (attack, normal vecmath.Vec3) {
	sin, cos := math.Sincos(incl)
	if sf.vertical {
		attack = vecmath.Vec3{X: -sin, Z: -cos}
		return attack, vecmath.UnitY.Cross(attack)
	}
	attack = vecmath.Vec3{Y: sin, Z: -cos}
	return attack, vecmath.UnitX.Cross(attack)
}

// airflow is the surface velocity in drone coordinates with the component
// along the surface axis removed.
func (sf surface) airflow(s kinematics.State) vecmath.Vec3 {
	v := s.ToBody(s.PointVelocity(s.ToWorld(sf.position)))
	if sf.vertical {
		v.Y = 0
	} else {
		v.X = 0
	}
	return v
}

// lift is the drone-frame lift of the surface.
func (d *Drone) lift(sf surface, s kinematics.State, out dynamics.Actuators) (vecmath.Vec3, error) {
	v := sf.airflow(s)
	speed2 := v.Dot(v)
	if speed2 < minLiftSpeed*minLiftSpeed {
		return vecmath.Zero, nil
	}
	attack, normal := sf.frame(sf.inclination(out))
	aoa := -math.Atan2(normal.Dot(v), attack.Dot(v))
	if aoa > d.cfg.MaxAOA {
		return vecmath.Zero, dynamo.InvalidArgument("%s stalls: angle of attack %.4f exceeds %.4f", sf.name, aoa, d.cfg.MaxAOA)
	}
	return normal.Scale(aoa * sf.slope * speed2), nil
}
