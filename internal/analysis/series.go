package analysis

import (
	"sort"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/tyre"
)

type extractor func(s metrics.Sample) float64

var channels = func() map[string]extractor {
	m := make(map[string]extractor)
	for i, name := range kinematics.SlotNames {
		idx := i
		m[name] = func(s metrics.Sample) float64 { return s.State.Vector()[idx] }
	}
	for i, r := range tyre.Roles {
		idx := i
		m["depth_"+r.String()] = func(s metrics.Sample) float64 { return s.Depths[idx] }
	}
	m["grounded"] = func(s metrics.Sample) float64 { return float64(s.Grounded) }
	m["speed"] = func(s metrics.Sample) float64 { return s.State.Velocity.Norm() }
	m["thrust"] = func(s metrics.Sample) float64 { return s.Outputs.Thrust }
	return m
}()

// Channels lists the names Series accepts.
func Channels() []string {
	out := make([]string, 0, len(channels))
	for name := range channels {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Series extracts one channel from a trace.
func Series(samples []metrics.Sample, channel string) ([]float64, error) {
	get, ok := channels[channel]
	if !ok {
		return nil, dynamo.InvalidArgument("unknown channel %q (available: %v)", channel, Channels())
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = get(s)
	}
	return out, nil
}
