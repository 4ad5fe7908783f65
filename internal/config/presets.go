package config

import (
	"sort"

	"github.com/san-kum/dronesim/internal/dynamics"
)

var Presets = map[string]*Config{
	"rest": {
		Name: "rest", Integrator: "rk4", Dt: 0.01, Duration: 5.0,
		InitState: InitStateConfig{Y: 1.19},
	},
	"taxi": {
		Name: "taxi", Integrator: "rk4", Dt: 0.005, Duration: 10.0,
		InitState: InitStateConfig{Y: 1.19},
		Schedule: []Segment{
			{Until: 4, Outputs: dynamics.Actuators{Thrust: 1500}},
			{Until: 10, Outputs: dynamics.Actuators{}},
		},
	},
	"taxi_hold": {
		Name: "taxi_hold", Integrator: "rk4", Dt: 0.005, Duration: 15.0,
		InitState:       InitStateConfig{Y: 1.19},
		Autopilot:       "taxi",
		AutopilotParams: AutopilotConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, Target: 8},
	},
	"brake": {
		Name: "brake", Integrator: "rk4", Dt: 0.005, Duration: 8.0,
		InitState: InitStateConfig{Y: 1.19, VZ: -15},
		Schedule: []Segment{
			{Until: 8, Outputs: dynamics.Actuators{FrontBrakeForce: 300, LeftBrakeForce: 400, RightBrakeForce: 400}},
		},
	},
	"landing": {
		Name: "landing", Integrator: "rk4", Dt: 0.002, Duration: 4.0,
		InitState: InitStateConfig{Y: 1.5, VY: -0.8, VZ: -20},
		Schedule: []Segment{
			{Until: 1, Outputs: dynamics.Actuators{}},
			{Until: 4, Outputs: dynamics.Actuators{FrontBrakeForce: 200, LeftBrakeForce: 300, RightBrakeForce: 300}},
		},
	},
}

func init() {
	for _, p := range Presets {
		p.DepthSubsteps = DefaultDepthSubsteps
		p.LogLevel = DefaultLogLevel
		p.Drone = DefaultDrone()
		if p.Autopilot == "" {
			p.Autopilot = DefaultAutopilot
			p.AutopilotParams = AutopilotConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd}
		}
	}
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
