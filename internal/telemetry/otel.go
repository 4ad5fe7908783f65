package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/tyre"
)

const instrumentationName = "github.com/san-kum/dronesim/internal/telemetry"

// Meter returns the meter of the global provider, a no-op unless the
// process installed one.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Instruments records driver ticks as OpenTelemetry metrics.
type Instruments struct {
	attrs metric.MeasurementOption

	ticks      metric.Int64Counter
	touchdowns metric.Int64Counter
	depth      metric.Float64ObservableGauge
	speed      metric.Float64ObservableGauge
	reg        metric.Registration

	mu         sync.RWMutex
	last       metrics.Sample
	seen       bool
	touchCount int64
}

func NewInstruments(m metric.Meter, droneID string) (*Instruments, error) {
	in := &Instruments{attrs: metric.WithAttributes(attribute.String("drone", droneID))}

	var err error
	in.ticks, err = m.Int64Counter(
		"dronesim.ticks",
		metric.WithDescription("Committed driver ticks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	in.touchdowns, err = m.Int64Counter(
		"dronesim.touchdowns",
		metric.WithDescription("Wheels entering ground contact"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating touchdown counter: %w", err)
	}

	in.depth, err = m.Float64ObservableGauge(
		"dronesim.tyre.depth",
		metric.WithDescription("Tyre compression depth"),
		metric.WithUnit("m"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating depth gauge: %w", err)
	}

	in.speed, err = m.Float64ObservableGauge(
		"dronesim.speed",
		metric.WithDescription("Centre of mass speed"),
		metric.WithUnit("m/s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating speed gauge: %w", err)
	}

	in.reg, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			in.mu.RLock()
			defer in.mu.RUnlock()
			if !in.seen {
				return nil
			}
			for i, r := range tyre.Roles {
				o.ObserveFloat64(in.depth, in.last.Depths[i],
					metric.WithAttributes(attribute.String("drone", droneID), attribute.String("wheel", r.String())))
			}
			o.ObserveFloat64(in.speed, in.last.State.Velocity.Norm(), in.attrs)
			return nil
		},
		in.depth, in.speed,
	)
	if err != nil {
		return nil, fmt.Errorf("registering gauge callback: %w", err)
	}
	return in, nil
}

func (in *Instruments) OnTick(s metrics.Sample) {
	ctx := context.Background()
	in.ticks.Add(ctx, 1, in.attrs)

	in.mu.Lock()
	var landed int
	for i, d := range s.Depths {
		if in.seen && d > 0 && in.last.Depths[i] == 0 {
			landed++
		}
	}
	in.last = s
	in.seen = true
	in.touchCount += int64(landed)
	in.mu.Unlock()

	if landed > 0 {
		in.touchdowns.Add(ctx, int64(landed), in.attrs)
	}
}

// Touchdowns is the number of wheel touchdowns recorded so far.
func (in *Instruments) Touchdowns() int64 {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.touchCount
}

func (in *Instruments) Close() error {
	return in.reg.Unregister()
}
