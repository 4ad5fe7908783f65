// Package autopilot provides the actuator commands fed to the drone each
// tick:
//
//   - [Idle]: all outputs zero
//   - [Constant]: a fixed, externally settable command
//   - [Schedule]: piecewise-constant commands over simulation time
//   - [Taxi]: PID ground-speed hold driving thrust and brakes
//
// # Usage
//
//	ap, err := autopilot.FromConfig(cfg, drone.Config())
//	out := ap.Outputs(drone.State(), t)
package autopilot
