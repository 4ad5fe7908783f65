// Package optim searches autopilot parameters by running the testbed.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/testbed"
)

// BuildFunc assembles a driver and its loop settings for one parameter set.
type BuildFunc func(params map[string]float64) (*testbed.Driver, testbed.RunConfig, error)

// Trial is one evaluated grid point. Failed runs carry Err and an infinite
// Value.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, dynamo.InvalidArgument("need one range per parameter, got %d names and %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, dynamo.InvalidArgument("range for %s is empty", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, workers: 1}, nil
}

// SetWorkers sets how many trials run at once. build must be safe for
// concurrent use when n > 1.
func (g *GridSearch) SetWorkers(n int) error {
	if n < 1 {
		return dynamo.InvalidArgument("workers must be at least 1, got %d", n)
	}
	g.workers = n
	return nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Points lists every grid point, last parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	points := make([]map[string]float64, 0, g.Size())
	g.collect(0, make(map[string]float64), &points)
	return points
}

func (g *GridSearch) collect(depth int, current map[string]float64, points *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*points = append(*points, current)
		return
	}
	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val
		g.collect(depth+1, newParams, points)
	}
}

// Search runs every grid point and returns the one that minimises
// metricName, along with all trials in grid order.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) (map[string]float64, float64, []Trial, error) {
	points := g.Points()
	trials := make([]Trial, len(points))
	if err := ctx.Err(); err != nil {
		return nil, 0, nil, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err)
	}

	dynamo.ParallelFor(len(points), g.workers, 1, func(start, end int) {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				trials[i] = Trial{Params: points[i], Value: math.Inf(1), Err: err}
				continue
			}
			trials[i] = evaluate(ctx, points[i], build, metricName)
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, 0, trials, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err)
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for _, tr := range trials {
		if tr.Err == nil && tr.Value < best {
			best = tr.Value
			bestParams = tr.Params
		}
	}
	if bestParams == nil {
		return nil, 0, trials, fmt.Errorf("all %d trials failed: %w", len(trials), trials[0].Err)
	}
	return bestParams, best, trials, nil
}

func evaluate(ctx context.Context, params map[string]float64, build BuildFunc, metricName string) Trial {
	tr := Trial{Params: params, Value: math.Inf(1)}

	d, cfg, err := build(params)
	if err != nil {
		tr.Err = err
		return tr
	}
	res, err := d.Run(ctx, cfg)
	if err != nil {
		tr.Err = err
		return tr
	}
	val, ok := res.Metrics[metricName]
	if !ok {
		tr.Err = errors.New("metric " + metricName + " not reported")
		return tr
	}
	tr.Value = val
	return tr
}
