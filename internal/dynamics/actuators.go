package dynamics

import (
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/vecmath"
)

// Actuators are the control-surface and brake commands for one tick.
// Inclinations are in radians, thrust and brake forces in newtons.
type Actuators struct {
	Thrust               float64 `yaml:"thrust" json:"thrust"`
	LeftWingInclination  float64 `yaml:"left_wing_inclination" json:"left_wing_inclination"`
	RightWingInclination float64 `yaml:"right_wing_inclination" json:"right_wing_inclination"`
	HorStabInclination   float64 `yaml:"hor_stab_inclination" json:"hor_stab_inclination"`
	VerStabInclination   float64 `yaml:"ver_stab_inclination" json:"ver_stab_inclination"`
	FrontBrakeForce      float64 `yaml:"front_brake_force" json:"front_brake_force"`
	LeftBrakeForce       float64 `yaml:"left_brake_force" json:"left_brake_force"`
	RightBrakeForce      float64 `yaml:"right_brake_force" json:"right_brake_force"`
}

// Brakes returns the brake forces in front, left rear, right rear order.
func (a Actuators) Brakes() [3]float64 {
	return [3]float64{a.FrontBrakeForce, a.LeftBrakeForce, a.RightBrakeForce}
}

func (a Actuators) Validate() error {
	values := map[string]float64{
		"thrust":                 a.Thrust,
		"left_wing_inclination":  a.LeftWingInclination,
		"right_wing_inclination": a.RightWingInclination,
		"hor_stab_inclination":   a.HorStabInclination,
		"ver_stab_inclination":   a.VerStabInclination,
		"front_brake_force":      a.FrontBrakeForce,
		"left_brake_force":       a.LeftBrakeForce,
		"right_brake_force":      a.RightBrakeForce,
	}
	for name, v := range values {
		if !vecmath.IsFinite(v) {
			return dynamo.InvalidArgument("actuator %s is not finite: %g", name, v)
		}
	}
	if a.Thrust < 0 {
		return dynamo.InvalidArgument("thrust must be non-negative, got %g", a.Thrust)
	}
	for i, b := range a.Brakes() {
		if b < 0 {
			return dynamo.InvalidArgument("brake force %d must be non-negative, got %g", i, b)
		}
	}
	return nil
}

// AngularAcceleration is the second derivative of the three orientation angles.
type AngularAcceleration struct {
	Heading float64
	Pitch   float64
	Roll    float64
}

// ForceModel computes the accelerations of a drone from a state snapshot
// and the actuator commands. Implementations must not retain s.
type ForceModel interface {
	Acceleration(s kinematics.State, out Actuators) (vecmath.Vec3, error)
	AngularAccelerations(s kinematics.State, out Actuators) (AngularAcceleration, error)
}
