package config

import (
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/integrators"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/tyre"
	"github.com/san-kum/dronesim/internal/vecmath"
)

const (
	DefaultDt            = 0.01
	DefaultDuration      = 10.0
	DefaultIntegrator    = "rk4"
	DefaultLogLevel      = "info"
	DefaultDepthSubsteps = tyre.DefaultSubsteps
	DefaultGravity       = 9.81
	DefaultAutopilot     = "schedule"
	DefaultKp            = 400.0
	DefaultKi            = 20.0
	DefaultKd            = 0.0
)

// AutopilotModes lists the accepted values of Config.Autopilot.
var AutopilotModes = []string{"idle", "schedule", "taxi"}

type Config struct {
	Name          string          `yaml:"name"`
	Integrator    string          `yaml:"integrator"`
	Dt            float64         `yaml:"dt"`
	Duration      float64         `yaml:"duration"`
	DepthSubsteps int             `yaml:"depth_substeps"`
	LogLevel      string          `yaml:"log_level"`
	Drone         Drone           `yaml:"drone"`
	InitState     InitStateConfig `yaml:"init_state"`
	Schedule      []Segment       `yaml:"schedule"`

	Autopilot       string          `yaml:"autopilot"`
	AutopilotParams AutopilotConfig `yaml:"autopilot_params"`
}

// AutopilotConfig tunes the taxi speed-hold autopilot.
type AutopilotConfig struct {
	Kp     float64 `yaml:"kp"`
	Ki     float64 `yaml:"ki"`
	Kd     float64 `yaml:"kd"`
	Target float64 `yaml:"target"`
}

// Drone holds the airframe and landing-gear parameters of one drone.
type Drone struct {
	ID               string  `yaml:"drone_id"`
	Gravity          float64 `yaml:"gravity"`
	WingX            float64 `yaml:"wing_x"`
	TailSize         float64 `yaml:"tail_size"`
	EngineMass       float64 `yaml:"engine_mass"`
	WingMass         float64 `yaml:"wing_mass"`
	TailMass         float64 `yaml:"tail_mass"`
	MaxThrust        float64 `yaml:"max_thrust"`
	MaxAOA           float64 `yaml:"max_aoa"`
	WingLiftSlope    float64 `yaml:"wing_lift_slope"`
	HorStabLiftSlope float64 `yaml:"hor_stab_lift_slope"`
	VerStabLiftSlope float64 `yaml:"ver_stab_lift_slope"`
	WheelY           float64 `yaml:"wheel_y"`
	FrontWheelZ      float64 `yaml:"front_wheel_z"`
	RearWheelZ       float64 `yaml:"rear_wheel_z"`
	RearWheelX       float64 `yaml:"rear_wheel_x"`
	TyreSlope        float64 `yaml:"tyre_slope"`
	DampSlope        float64 `yaml:"damp_slope"`
	TyreRadius       float64 `yaml:"tyre_radius"`
	RMax             float64 `yaml:"r_max"`
	FcMax            float64 `yaml:"fc_max"`
}

type InitStateConfig struct {
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Z           float64 `yaml:"z"`
	VX          float64 `yaml:"vx"`
	VY          float64 `yaml:"vy"`
	VZ          float64 `yaml:"vz"`
	Heading     float64 `yaml:"heading"`
	HeadingRate float64 `yaml:"heading_rate"`
	Pitch       float64 `yaml:"pitch"`
	PitchRate   float64 `yaml:"pitch_rate"`
	Roll        float64 `yaml:"roll"`
	RollRate    float64 `yaml:"roll_rate"`
}

// Segment holds actuator outputs until the given simulation time.
type Segment struct {
	Until   float64            `yaml:"until"`
	Outputs dynamics.Actuators `yaml:"outputs"`
}

// DefaultDrone is a light fixed-wing airframe with its centre of mass
// balanced over the landing gear.
func DefaultDrone() Drone {
	return Drone{
		ID:               "drone-0",
		Gravity:          DefaultGravity,
		WingX:            4,
		TailSize:         4,
		EngineMass:       100,
		WingMass:         50,
		TailMass:         25,
		MaxThrust:        4000,
		MaxAOA:           math.Pi / 12,
		WingLiftSlope:    10,
		HorStabLiftSlope: 5,
		VerStabLiftSlope: 5,
		WheelY:           1,
		FrontWheelZ:      -2,
		RearWheelZ:       1,
		RearWheelX:       1.5,
		TyreSlope:        50000,
		DampSlope:        5000,
		TyreRadius:       0.2,
		RMax:             2000,
		FcMax:            0.7,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Name:          "default",
		Integrator:    DefaultIntegrator,
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		DepthSubsteps: DefaultDepthSubsteps,
		LogLevel:      DefaultLogLevel,
		Drone:         DefaultDrone(),
		InitState:     InitStateConfig{Y: 1.19},
		Autopilot:     DefaultAutopilot,
		AutopilotParams: AutopilotConfig{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Schedule = append([]Segment(nil), c.Schedule...)
	return &out
}

// Validate checks the simulation settings. Airframe ranges are checked
// when the drone is built.
func (c *Config) Validate() error {
	if !vecmath.IsFinite(c.Dt) || c.Dt <= 0 {
		return dynamo.InvalidArgument("dt must be positive, got %g", c.Dt)
	}
	if !vecmath.IsFinite(c.Duration) || c.Duration <= 0 {
		return dynamo.InvalidArgument("duration must be positive, got %g", c.Duration)
	}
	if _, err := integrators.ByName(c.Integrator); err != nil {
		return err
	}
	if c.DepthSubsteps < 1 {
		return dynamo.InvalidArgument("depth_substeps must be at least 1, got %d", c.DepthSubsteps)
	}
	if !slices.Contains(AutopilotModes, c.Autopilot) {
		return dynamo.InvalidArgument("unknown autopilot %q (available: %v)", c.Autopilot, AutopilotModes)
	}
	if c.Autopilot == "taxi" && (!vecmath.IsFinite(c.AutopilotParams.Target) || c.AutopilotParams.Target < 0) {
		return dynamo.InvalidArgument("taxi target speed must be non-negative, got %g", c.AutopilotParams.Target)
	}
	prev := 0.0
	for i, seg := range c.Schedule {
		if !vecmath.IsFinite(seg.Until) || seg.Until <= prev {
			return dynamo.InvalidArgument("schedule segment %d ends at %g, not after %g", i, seg.Until, prev)
		}
		if err := seg.Outputs.Validate(); err != nil {
			return fmt.Errorf("schedule segment %d: %w", i, err)
		}
		prev = seg.Until
	}
	if err := c.InitialState().Validate(); err != nil {
		return err
	}
	return nil
}

// InitialState converts the init_state block.
func (c *Config) InitialState() kinematics.State {
	s := c.InitState
	return kinematics.State{
		Position:    vecmath.Vec3{X: s.X, Y: s.Y, Z: s.Z},
		Velocity:    vecmath.Vec3{X: s.VX, Y: s.VY, Z: s.VZ},
		Heading:     s.Heading,
		HeadingRate: s.HeadingRate,
		Pitch:       s.Pitch,
		PitchRate:   s.PitchRate,
		Roll:        s.Roll,
		RollRate:    s.RollRate,
	}.Wrapped()
}

// TyreParams extracts the landing-gear block shared by the three wheels.
func (d Drone) TyreParams() tyre.Params {
	return tyre.Params{
		WheelY:      d.WheelY,
		FrontWheelZ: d.FrontWheelZ,
		RearWheelZ:  d.RearWheelZ,
		RearWheelX:  d.RearWheelX,
		TyreSlope:   d.TyreSlope,
		DampSlope:   d.DampSlope,
		Radius:      d.TyreRadius,
		RMax:        d.RMax,
		FcMax:       d.FcMax,
	}
}

// Steps is the number of ticks needed to cover Duration.
func (c *Config) Steps() int {
	return int(math.Ceil(c.Duration/c.Dt - 1e-9))
}
