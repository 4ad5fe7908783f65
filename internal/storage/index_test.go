package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/vecmath"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, isPostgres("postgres://u:p@localhost/db"))
	assert.True(t, isPostgres("host=localhost port=5432 dbname=runs"))
	assert.False(t, isPostgres("runs.db"))
	assert.False(t, isPostgres(""))
}

func TestIndex_SaveQuery(t *testing.T) {
	idx := openTestIndex(t)
	st := New(t.TempDir()).WithIndex(idx)

	cfg, res := runPreset(t, "rest", 0.02)
	okID, err := st.Save(cfg, res, nil)
	require.NoError(t, err)
	failID, err := st.Save(cfg, res, errors.New("stall"))
	require.NoError(t, err)

	rec, err := idx.Get(okID)
	require.NoError(t, err)
	assert.Equal(t, "rest", rec.Name)
	assert.False(t, rec.Failed)
	assert.Equal(t, res.StepsTaken, rec.Steps)

	values, err := rec.MetricValues()
	require.NoError(t, err)
	assert.Equal(t, 1.0, values["ground_contact"])

	all, err := idx.Query(Filter{Name: "rest"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := idx.Query(Filter{FailedOnly: true})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, failID, failed[0].ID)
	assert.Equal(t, "stall", failed[0].Error)

	limited, err := idx.Query(Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := idx.Query(Filter{Name: "landing"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIndex_Delete(t *testing.T) {
	idx := openTestIndex(t)
	st := New(t.TempDir()).WithIndex(idx)

	cfg, res := runPreset(t, "rest", 0.02)
	id, err := st.Save(cfg, res, nil)
	require.NoError(t, err)

	require.NoError(t, st.Delete(id))
	_, err = idx.Get(id)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestTrack(t *testing.T) {
	origin := Origin{Longitude: 10, Latitude: 50, Altitude: 200}
	samples := []metrics.Sample{
		{State: kinematics.State{Position: vecmath.Vec3{Y: 1}}},
		{State: kinematics.State{Position: vecmath.Vec3{Y: 1, Z: -1000}}},
		{State: kinematics.State{Position: vecmath.Vec3{X: 1000, Y: 11, Z: -1000}}},
	}

	ls, err := Track(samples, origin)
	require.NoError(t, err)

	seq := ls.Coordinates()
	require.Equal(t, 3, seq.Length())

	start := seq.Get(0)
	assert.InDelta(t, 10, start.X, 1e-9)
	assert.InDelta(t, 50, start.Y, 1e-9)
	assert.InDelta(t, 201, start.Z, 1e-9)

	// 1 km north is about 0.009 degrees of latitude.
	north := seq.Get(1)
	assert.InDelta(t, 10, north.X, 1e-9)
	assert.InDelta(t, 50.009, north.Y, 2e-4)

	// 1 km east at 50°N is about 0.014 degrees of longitude.
	east := seq.Get(2)
	assert.InDelta(t, 10.014, east.X, 2e-4)
	assert.InDelta(t, 211, east.Z, 1e-9)
}

func TestTrack_Rejects(t *testing.T) {
	two := make([]metrics.Sample, 2)

	_, err := Track(two, Origin{Latitude: 89})
	assert.Error(t, err)
	_, err = Track(two, Origin{Longitude: 200})
	assert.Error(t, err)
	_, err = Track(two[:1], Origin{})
	assert.Error(t, err)
}
