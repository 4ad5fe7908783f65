package config

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/san-kum/dronesim/internal/dynamo"
)

// EnvPrefix is prepended to every environment override,
// e.g. DRONESIM_DT or DRONESIM_DRONE_TYRE_SLOPE.
const EnvPrefix = "DRONESIM"

// NewEnv returns a viper instance bound to the DRONESIM_* environment.
func NewEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyEnv overrides fields of c with any values set in v.
func (c *Config) ApplyEnv(v *viper.Viper) error {
	for key, dst := range c.stringKeys() {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	if v.IsSet("depth_substeps") {
		n, err := cast.ToIntE(v.Get("depth_substeps"))
		if err != nil || n < 1 {
			return dynamo.InvalidArgument("%s_DEPTH_SUBSTEPS must be a positive integer, got %q", EnvPrefix, v.GetString("depth_substeps"))
		}
		c.DepthSubsteps = n
	}
	for key, dst := range c.floatKeys() {
		if !v.IsSet(key) {
			continue
		}
		f, err := cast.ToFloat64E(v.Get(key))
		if err != nil {
			return dynamo.InvalidArgument("%s_%s is not a number: %q", EnvPrefix, envName(key), v.GetString(key))
		}
		*dst = f
	}
	return nil
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (c *Config) stringKeys() map[string]*string {
	return map[string]*string{
		"name":           &c.Name,
		"integrator":     &c.Integrator,
		"log_level":      &c.LogLevel,
		"autopilot":      &c.Autopilot,
		"drone.drone_id": &c.Drone.ID,
	}
}

func (c *Config) floatKeys() map[string]*float64 {
	d := &c.Drone
	return map[string]*float64{
		"dt":                        &c.Dt,
		"duration":                  &c.Duration,
		"autopilot_params.kp":       &c.AutopilotParams.Kp,
		"autopilot_params.ki":       &c.AutopilotParams.Ki,
		"autopilot_params.kd":       &c.AutopilotParams.Kd,
		"autopilot_params.target":   &c.AutopilotParams.Target,
		"drone.gravity":             &d.Gravity,
		"drone.wing_x":              &d.WingX,
		"drone.tail_size":           &d.TailSize,
		"drone.engine_mass":         &d.EngineMass,
		"drone.wing_mass":           &d.WingMass,
		"drone.tail_mass":           &d.TailMass,
		"drone.max_thrust":          &d.MaxThrust,
		"drone.max_aoa":             &d.MaxAOA,
		"drone.wing_lift_slope":     &d.WingLiftSlope,
		"drone.hor_stab_lift_slope": &d.HorStabLiftSlope,
		"drone.ver_stab_lift_slope": &d.VerStabLiftSlope,
		"drone.wheel_y":             &d.WheelY,
		"drone.front_wheel_z":       &d.FrontWheelZ,
		"drone.rear_wheel_z":        &d.RearWheelZ,
		"drone.rear_wheel_x":        &d.RearWheelX,
		"drone.tyre_slope":          &d.TyreSlope,
		"drone.damp_slope":          &d.DampSlope,
		"drone.tyre_radius":         &d.TyreRadius,
		"drone.r_max":               &d.RMax,
		"drone.fc_max":              &d.FcMax,
	}
}
