package optim

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/testbed"
)

func TestNewGridSearch_Rejects(t *testing.T) {
	_, err := NewGridSearch(nil, nil)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
	_, err = NewGridSearch([]string{"kp"}, [][]float64{{}})
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
	_, err = NewGridSearch([]string{"kp", "ki"}, [][]float64{{1}})
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

func TestGridSearch_VisitsEveryPoint(t *testing.T) {
	g, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2, 3}, {10, 20}})
	require.NoError(t, err)
	assert.Equal(t, 6, g.Size())

	var seen []map[string]float64
	build := func(p map[string]float64) (*testbed.Driver, testbed.RunConfig, error) {
		seen = append(seen, p)
		return nil, testbed.RunConfig{}, dynamo.InvalidArgument("skip")
	}

	_, _, trials, err := g.Search(context.Background(), build, "x")
	require.Error(t, err)
	assert.Len(t, trials, 6)
	assert.Len(t, seen, 6)
	assert.Equal(t, map[string]float64{"a": 3, "b": 20}, seen[5])
	for _, tr := range trials {
		assert.True(t, math.IsInf(tr.Value, 1))
	}
}

func TestGridSearch_Parallel(t *testing.T) {
	g, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2, 3, 4}, {10, 20, 30}})
	require.NoError(t, err)
	assert.Error(t, g.SetWorkers(0))
	require.NoError(t, g.SetWorkers(3))

	var mu sync.Mutex
	calls := 0
	build := func(p map[string]float64) (*testbed.Driver, testbed.RunConfig, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil, testbed.RunConfig{}, dynamo.InvalidArgument("skip")
	}

	_, _, trials, err := g.Search(context.Background(), build, "x")
	require.Error(t, err)
	assert.Equal(t, 12, calls)
	// Trials stay in grid order regardless of scheduling.
	for i, p := range g.Points() {
		assert.Equal(t, p, trials[i].Params)
	}
}

func TestGridSearch_Canceled(t *testing.T) {
	g, err := NewGridSearch([]string{"a"}, [][]float64{{1}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, _, err = g.Search(ctx, nil, "x")
	assert.ErrorIs(t, err, dynamo.ErrContextCanceled)
}

func TestTuneTaxi(t *testing.T) {
	cfg := config.GetPreset("taxi_hold")
	require.NotNil(t, cfg)
	cfg.Duration = 2
	cfg.Dt = 0.01

	best, val, trials, err := TuneTaxi(context.Background(), cfg, []float64{50, 400}, []float64{0, 20})
	require.NoError(t, err)
	require.Len(t, trials, 4)

	for _, tr := range trials {
		require.NoError(t, tr.Err)
		assert.GreaterOrEqual(t, tr.Value, val)
	}
	// A stiffer proportional gain reaches the target speed sooner.
	assert.Equal(t, 400.0, best["kp"])
	assert.Greater(t, val, 0.0)
}
