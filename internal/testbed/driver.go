// Package testbed owns the tick loop: it feeds autopilot outputs into the
// rigid-body equations, advances the tyre compression depths against the
// integrated state and then commits it.
package testbed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/dronesim/internal/airframe"
	"github.com/san-kum/dronesim/internal/autopilot"
	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/tyre"
	"github.com/san-kum/dronesim/internal/vecmath"
)

// Observer is notified after every committed tick.
type Observer interface {
	OnTick(s metrics.Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s metrics.Sample)

func (f ObserverFunc) OnTick(s metrics.Sample) { f(s) }

type Option func(*Driver)

func WithLogger(log zerolog.Logger) Option {
	return func(d *Driver) { d.log = log }
}

func WithObserver(o Observer) Option {
	return func(d *Driver) { d.observers = append(d.observers, o) }
}

func WithMetrics(ms ...metrics.Metric) Option {
	return func(d *Driver) { d.metrics = append(d.metrics, ms...) }
}

// Driver steps one drone. It is not safe for concurrent use; run several
// drones with a Fleet instead.
type Driver struct {
	drone      *airframe.Drone
	integrator dynamo.Integrator
	pilot      autopilot.Autopilot
	log        zerolog.Logger
	observers  []Observer
	metrics    []metrics.Metric

	step     int
	time     float64
	grounded [3]bool
	last     dynamics.Actuators
}

func New(drone *airframe.Drone, integrator dynamo.Integrator, pilot autopilot.Autopilot, opts ...Option) (*Driver, error) {
	if drone == nil {
		return nil, dynamo.InvalidArgument("drone is nil")
	}
	if integrator == nil {
		return nil, dynamo.InvalidArgument("integrator is nil")
	}
	if pilot == nil {
		return nil, dynamo.InvalidArgument("autopilot is nil")
	}
	d := &Driver{
		drone:      drone,
		integrator: integrator,
		pilot:      pilot,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With().Str("drone", drone.ID()).Logger()
	for i, w := range drone.Wheels().All() {
		d.grounded[i] = w.Grounded()
	}
	return d, nil
}

func (d *Driver) Drone() *airframe.Drone { return d.drone }
func (d *Driver) Step() int              { return d.step }
func (d *Driver) Time() float64          { return d.time }

// SetSubsteps changes the RK4 substep count of every wheel.
func (d *Driver) SetSubsteps(n int) error {
	for _, w := range d.drone.Wheels().All() {
		if err := w.SetSubsteps(n); err != nil {
			return err
		}
	}
	return nil
}

// Sample describes the drone as it is now.
func (d *Driver) Sample() metrics.Sample {
	wheels := d.drone.Wheels()
	return metrics.Sample{
		Step:     d.step,
		Time:     d.time,
		State:    d.drone.State(),
		Outputs:  d.last,
		Depths:   wheels.Depths(),
		Grounded: wheels.GroundedCount(),
	}
}

// Tick advances the drone by dt. Tyre depths are updated against the new
// position and velocity, and the state is committed only once every wheel
// has accepted it. On error the drone keeps its last committed state and
// depths.
func (d *Driver) Tick(ctx context.Context, dt float64) (metrics.Sample, error) {
	if err := ctx.Err(); err != nil {
		return metrics.Sample{}, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err)
	}
	if !vecmath.IsFinite(dt) || dt < 0 {
		return metrics.Sample{}, dynamo.InvalidArgument("dt must be finite and non-negative, got %g", dt)
	}

	prev := d.drone.State()
	out := d.pilot.Outputs(prev, d.time)

	eq, err := dynamics.New(d.drone, out)
	if err != nil {
		return metrics.Sample{}, d.fail(err)
	}
	y := d.integrator.Step(eq, prev.Vector(), nil, d.time, dt)
	if err := eq.Err(); err != nil {
		return metrics.Sample{}, d.fail(err)
	}
	next, err := eq.Commit(y)
	if err != nil {
		return metrics.Sample{}, d.fail(err)
	}
	model, err := d.drone.LoadModel(next, out)
	if err != nil {
		return metrics.Sample{}, d.fail(err)
	}
	depths := d.drone.Wheels().Depths()
	grounded, err := d.updateDepths(dt, next, model)
	if err == nil {
		err = d.drone.SetState(next)
	}
	if err != nil {
		d.restoreDepths(depths)
		return metrics.Sample{}, d.fail(err)
	}
	for i, w := range d.drone.Wheels().All() {
		d.logContact(w, grounded[i], d.grounded[i])
	}
	d.grounded = grounded

	d.step++
	d.time += dt
	d.last = out

	sample := d.Sample()
	for _, m := range d.metrics {
		m.Observe(sample)
	}
	for _, o := range d.observers {
		o.OnTick(sample)
	}
	return sample, nil
}

func (d *Driver) updateDepths(dt float64, s kinematics.State, model tyre.DepthModel) ([3]bool, error) {
	wheels := d.drone.Wheels().All()
	inReach := 0
	for _, w := range wheels {
		if !w.Airborne(s) {
			inReach++
		}
	}

	var grounded [3]bool
	for i, w := range wheels {
		g, err := w.UpdateDepth(dt, s, model, inReach)
		if err != nil {
			return grounded, err
		}
		grounded[i] = g
	}
	return grounded, nil
}

func (d *Driver) restoreDepths(depths [3]float64) {
	for i, w := range d.drone.Wheels().All() {
		if err := w.SetDepth(depths[i]); err != nil {
			d.log.Warn().Err(err).Str("wheel", w.Role().String()).Msg("restore depth")
		}
	}
}

func (d *Driver) logContact(w *tyre.Tyre, now, before bool) {
	switch {
	case now && !before:
		d.log.Debug().Str("wheel", w.Role().String()).Float64("t", d.time).
			Float64("depth", w.Depth()).Msg("touchdown")
	case !now && before:
		d.log.Debug().Str("wheel", w.Role().String()).Float64("t", d.time).Msg("liftoff")
	}
}

func (d *Driver) fail(err error) error {
	simErr := &dynamo.SimulationError{
		Step:    d.step,
		Time:    d.time,
		State:   d.drone.State().Vector(),
		Wrapped: err,
	}
	d.log.Error().Err(err).Int("step", d.step).Float64("t", d.time).Msg("tick failed")
	return simErr
}
