package testbed

import (
	"context"
	"math"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/vecmath"
)

type RunConfig struct {
	Dt       float64
	Duration float64
}

func (c RunConfig) validate() error {
	if !vecmath.IsFinite(c.Dt) || c.Dt <= 0 {
		return dynamo.InvalidArgument("dt must be positive, got %g", c.Dt)
	}
	if !vecmath.IsFinite(c.Duration) || c.Duration <= 0 {
		return dynamo.InvalidArgument("duration must be positive, got %g", c.Duration)
	}
	return nil
}

// Result is the trace of one run. Samples[0] is the state before the
// first tick.
type Result struct {
	DroneID    string
	Samples    []metrics.Sample
	Metrics    map[string]float64
	StepsTaken int
}

// Times returns the sample times.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Time
	}
	return out
}

// Final returns the last sample.
func (r *Result) Final() metrics.Sample {
	return r.Samples[len(r.Samples)-1]
}

// Run ticks the drone for cfg.Duration with a constant-interval stopwatch.
// On error the partial trace is returned together with the error.
func (d *Driver) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	sw, err := NewStopwatch(cfg.Dt)
	if err != nil {
		return nil, err
	}

	steps := int(math.Ceil(cfg.Duration/cfg.Dt - 1e-9))
	result := &Result{
		DroneID: d.drone.ID(),
		Samples: make([]metrics.Sample, 0, steps+1),
		Metrics: make(map[string]float64),
	}
	for _, m := range d.metrics {
		m.Reset()
	}

	result.Samples = append(result.Samples, d.Sample())
	d.log.Info().Float64("dt", cfg.Dt).Float64("duration", cfg.Duration).Int("steps", steps).Msg("run started")

	for i := 0; i < steps; i++ {
		sample, err := d.Tick(ctx, sw.Tick())
		if err != nil {
			d.collect(result)
			return result, err
		}
		result.Samples = append(result.Samples, sample)
		result.StepsTaken++
	}

	d.collect(result)
	d.log.Info().Int("steps", result.StepsTaken).Float64("t", d.time).Msg("run finished")
	return result, nil
}

func (d *Driver) collect(r *Result) {
	for _, m := range d.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}
