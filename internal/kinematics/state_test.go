package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/vecmath"
)

func TestVectorRoundTrip(t *testing.T) {
	y := dynamo.State{1, 2, 3, 4, 5, 6, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6}

	s, err := FromVector(y)
	require.NoError(t, err)

	assert.Equal(t, vecmath.Vec3{X: 1, Y: 3, Z: 5}, s.Position)
	assert.Equal(t, vecmath.Vec3{X: 2, Y: 4, Z: 6}, s.Velocity)
	assert.Equal(t, 0.1, s.Heading)
	assert.Equal(t, 0.6, s.RollRate)
	assert.Equal(t, y, s.Vector())
}

func TestFromVector_WrongLength(t *testing.T) {
	_, err := FromVector(dynamo.State{1, 2, 3})
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestWrapped(t *testing.T) {
	s := State{Heading: -0.1, Pitch: vecmath.TwoPi, Roll: 7}.Wrapped()

	assert.InDelta(t, vecmath.TwoPi-0.1, s.Heading, 1e-12)
	assert.Equal(t, 0.0, s.Pitch)
	assert.InDelta(t, 7-vecmath.TwoPi, s.Roll, 1e-12)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, State{}.Validate())

	s := State{PitchRate: math.Inf(1)}
	assert.ErrorIs(t, s.Validate(), dynamo.ErrInvalidState)
}

func TestToWorldToBodyInverse(t *testing.T) {
	s := State{Heading: 0.4, Pitch: 0.2, Roll: -0.3}
	v := vecmath.Vec3{X: 1, Y: -2, Z: 0.5}

	assert.True(t, s.ToBody(s.ToWorld(v)).ApproxEqual(v, 1e-12))
	assert.True(t, s.ToWorld(s.ToBody(v)).ApproxEqual(v, 1e-12))
}

func TestLevelDroneFrameIsWorldFrame(t *testing.T) {
	v := vecmath.Vec3{X: 0.5, Y: -1, Z: 1.5}
	assert.Equal(t, v, State{}.ToWorld(v))
}

func TestAngularVelocity_PureHeading(t *testing.T) {
	s := State{Pitch: 0.3, HeadingRate: 2}
	assert.True(t, s.AngularVelocity().ApproxEqual(vecmath.Vec3{Y: 2}, 1e-12))
}

func TestPointVelocity_Spin(t *testing.T) {
	s := State{Velocity: vecmath.Vec3{Z: -10}, HeadingRate: 1}

	// the right wing runs ahead of the body in a left turn
	got := s.PointVelocity(vecmath.Vec3{X: 2})
	assert.True(t, got.ApproxEqual(vecmath.Vec3{Z: -12}, 1e-12), "got %v", got)
}
