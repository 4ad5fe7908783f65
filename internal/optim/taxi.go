package optim

import (
	"context"
	"runtime"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/testbed"
)

// TaxiBuilder returns a BuildFunc that runs cfg under the taxi autopilot
// with the gains kp, ki and kd taken from the grid point. Missing gains
// keep their configured value. Trials are scored by speed_error.
func TaxiBuilder(cfg *config.Config) BuildFunc {
	return func(params map[string]float64) (*testbed.Driver, testbed.RunConfig, error) {
		c := cfg.Clone()
		c.Autopilot = "taxi"
		for name, dst := range map[string]*float64{
			"kp": &c.AutopilotParams.Kp,
			"ki": &c.AutopilotParams.Ki,
			"kd": &c.AutopilotParams.Kd,
		} {
			if v, ok := params[name]; ok {
				*dst = v
			}
		}

		d, err := testbed.FromConfig(c, testbed.WithMetrics(metrics.NewSpeedError(c.AutopilotParams.Target)))
		if err != nil {
			return nil, testbed.RunConfig{}, err
		}
		return d, testbed.RunConfigOf(c), nil
	}
}

// TuneTaxi searches kp and ki for the taxi autopilot of cfg, one trial
// per CPU at a time.
func TuneTaxi(ctx context.Context, cfg *config.Config, kps, kis []float64) (map[string]float64, float64, []Trial, error) {
	g, err := NewGridSearch([]string{"kp", "ki"}, [][]float64{kps, kis})
	if err != nil {
		return nil, 0, nil, err
	}
	if err := g.SetWorkers(runtime.NumCPU()); err != nil {
		return nil, 0, nil, err
	}
	return g.Search(ctx, TaxiBuilder(cfg), "speed_error")
}
