// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical integrator interface
//
// The drone testbed builds on these: the rigid-body adapter is a 12-state
// [System], and each tyre integrates its 1-state compression depth with
// the same [Integrator] implementations.
//
// # Example
//
//	eq, _ := dynamics.New(drone, outputs)
//	integ := integrators.NewRK4()
//	next := integ.Step(eq, x, nil, t, dt)
package dynamo
