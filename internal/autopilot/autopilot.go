package autopilot

import (
	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
)

type Autopilot interface {
	Outputs(s kinematics.State, t float64) dynamics.Actuators
}

type Idle struct{}

func (Idle) Outputs(kinematics.State, float64) dynamics.Actuators {
	return dynamics.Actuators{}
}

// Constant returns the last command set on it.
type Constant struct {
	Out dynamics.Actuators
}

func NewConstant(out dynamics.Actuators) *Constant {
	return &Constant{Out: out}
}

func (c *Constant) Set(out dynamics.Actuators) {
	c.Out = out
}

func (c *Constant) Outputs(kinematics.State, float64) dynamics.Actuators {
	return c.Out
}

// FromConfig builds the autopilot selected by cfg.Autopilot.
func FromConfig(cfg *config.Config, drone config.Drone) (Autopilot, error) {
	switch cfg.Autopilot {
	case "idle":
		return Idle{}, nil
	case "", "schedule":
		return NewSchedule(cfg.Schedule)
	case "taxi":
		p := cfg.AutopilotParams
		return NewTaxi(p.Kp, p.Ki, p.Kd, p.Target, drone.MaxThrust, drone.RMax)
	default:
		return nil, dynamo.InvalidArgument("unknown autopilot %q", cfg.Autopilot)
	}
}
