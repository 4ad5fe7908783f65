package testbed

import (
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/vecmath"
)

// Stopwatch advances simulation time by a constant interval per tick,
// scaled by a speed multiplier. A paused stopwatch does not advance.
type Stopwatch struct {
	interval   float64
	multiplier float64
	elapsed    float64
	paused     bool
}

func NewStopwatch(interval float64) (*Stopwatch, error) {
	sw := &Stopwatch{multiplier: 1}
	if err := sw.SetInterval(interval); err != nil {
		return nil, err
	}
	return sw, nil
}

func (sw *Stopwatch) SetInterval(interval float64) error {
	if !vecmath.IsFinite(interval) || interval <= 0 {
		return dynamo.InvalidArgument("interval must be finite and positive, got %g", interval)
	}
	sw.interval = interval
	return nil
}

func (sw *Stopwatch) SetSpeedMultiplier(m float64) error {
	if !vecmath.IsFinite(m) || m <= 0 {
		return dynamo.InvalidArgument("speed multiplier must be finite and positive, got %g", m)
	}
	sw.multiplier = m
	return nil
}

// Tick advances the clock and returns the simulated time step, which is
// zero while paused.
func (sw *Stopwatch) Tick() float64 {
	if sw.paused {
		return 0
	}
	dt := sw.interval * sw.multiplier
	sw.elapsed += dt
	return dt
}

func (sw *Stopwatch) Elapsed() float64      { return sw.elapsed }
func (sw *Stopwatch) Interval() float64     { return sw.interval }
func (sw *Stopwatch) SetPaused(paused bool) { sw.paused = paused }
func (sw *Stopwatch) Paused() bool          { return sw.paused }
func (sw *Stopwatch) Reset()                { sw.elapsed = 0 }
