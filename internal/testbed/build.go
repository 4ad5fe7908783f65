package testbed

import (
	"fmt"

	"github.com/san-kum/dronesim/internal/airframe"
	"github.com/san-kum/dronesim/internal/autopilot"
	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/integrators"
	"github.com/san-kum/dronesim/internal/metrics"
)

// FromConfig assembles a driver with the standard metrics for cfg.
func FromConfig(cfg *config.Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", cfg.Name, err)
	}
	drone, err := airframe.New(cfg.Drone, cfg.InitialState())
	if err != nil {
		return nil, err
	}
	integ, err := integrators.ByName(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	pilot, err := autopilot.FromConfig(cfg, cfg.Drone)
	if err != nil {
		return nil, err
	}

	in := drone.Inertia()
	std := metrics.Standard(drone.Mass(), cfg.Drone.Gravity, in.Array())
	opts = append([]Option{WithMetrics(std...)}, opts...)

	d, err := New(drone, integ, pilot, opts...)
	if err != nil {
		return nil, err
	}
	if err := d.SetSubsteps(cfg.DepthSubsteps); err != nil {
		return nil, err
	}
	return d, nil
}

// RunConfigOf extracts the loop settings from cfg.
func RunConfigOf(cfg *config.Config) RunConfig {
	return RunConfig{Dt: cfg.Dt, Duration: cfg.Duration}
}
