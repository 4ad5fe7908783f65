package autopilot

import (
	"math"

	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/vecmath"
)

// Taxi holds a target ground speed. A positive PID output is applied as
// thrust, a negative one as an equal brake force on every wheel.
type Taxi struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	integral float64
	prevErr  float64
	prevT    float64
	first    bool

	maxThrust float64
	maxBrake  float64
}

func NewTaxi(kp, ki, kd, target, maxThrust, maxBrake float64) (*Taxi, error) {
	for name, v := range map[string]float64{"kp": kp, "ki": ki, "kd": kd} {
		if !vecmath.IsFinite(v) || v < 0 {
			return nil, dynamo.InvalidArgument("taxi gain %s must be non-negative, got %g", name, v)
		}
	}
	if !vecmath.IsFinite(target) || target < 0 {
		return nil, dynamo.InvalidArgument("taxi target speed must be non-negative, got %g", target)
	}
	return &Taxi{
		Kp:        kp,
		Ki:        ki,
		Kd:        kd,
		Target:    target,
		first:     true,
		maxThrust: maxThrust,
		maxBrake:  maxBrake,
	}, nil
}

func (p *Taxi) Outputs(s kinematics.State, t float64) dynamics.Actuators {
	speed := s.Velocity.Horizontal().Norm()
	err := p.Target - speed

	var u float64
	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		u = p.Kp * err
	} else if dt := t - p.prevT; dt > 0 {
		p.integral += err * dt
		derivative := (err - p.prevErr) / dt
		u = p.Kp*err + p.Ki*p.integral + p.Kd*derivative
		p.prevErr = err
		p.prevT = t
	} else {
		u = p.Kp * err
	}

	if u >= 0 {
		return dynamics.Actuators{Thrust: math.Min(u, p.maxThrust)}
	}
	// Brakes need motion to push against.
	if speed == 0 {
		return dynamics.Actuators{}
	}
	b := math.Min(-u/3, p.maxBrake)
	return dynamics.Actuators{FrontBrakeForce: b, LeftBrakeForce: b, RightBrakeForce: b}
}

// Reset clears integral and derivative state
func (p *Taxi) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// GetParams returns the tunable gains.
func (p *Taxi) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     p.Kp,
		"Ki":     p.Ki,
		"Kd":     p.Kd,
		"Target": p.Target,
	}
}

// SetParam adjusts a gain or the target speed.
func (p *Taxi) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
	}
}
