package airframe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/vecmath"
)

func resting() kinematics.State {
	return kinematics.State{Position: vecmath.Vec3{Y: 1.185}}
}

func flying(v vecmath.Vec3) kinematics.State {
	return kinematics.State{Position: vecmath.Vec3{Y: 100}, Velocity: v}
}

func mustDrone(t *testing.T, s kinematics.State) *Drone {
	t.Helper()
	d, err := New(config.DefaultDrone(), s)
	require.NoError(t, err)
	return d
}

func TestNew_DerivedValues(t *testing.T) {
	d := mustDrone(t, resting())

	assert.Equal(t, 225.0, d.Mass())
	assert.InDelta(t, 225*9.81, d.Weight(), 1e-9)
	assert.Equal(t, vecmath.Vec3{Z: -1}, d.EnginePosition())
	assert.Equal(t, vecmath.Vec3{X: 500, Y: 2100, Z: 1600}, d.Inertia())
	assert.Equal(t, "drone-0", d.ID())

	static := d.StaticDepth()
	assert.InDelta(t, 225*9.81/150000, static, 1e-12)
	for _, w := range d.Wheels().All() {
		assert.Equal(t, static, w.Depth(), w.Role().String())
	}
	assert.Equal(t, 3, d.Wheels().GroundedCount())
	assert.Contains(t, d.GetParams(), "static_depth")
}

func TestNew_AirborneStartHasNoPreload(t *testing.T) {
	d := mustDrone(t, flying(vecmath.Zero))
	assert.Equal(t, [3]float64{}, d.Wheels().Depths())
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Drone)
	}{
		{"zero engine mass", func(c *config.Drone) { c.EngineMass = 0 }},
		{"negative gravity", func(c *config.Drone) { c.Gravity = -9.81 }},
		{"nan lift slope", func(c *config.Drone) { c.WingLiftSlope = math.NaN() }},
		{"max aoa full turn", func(c *config.Drone) { c.MaxAOA = 2 * math.Pi }},
		{"negative max thrust", func(c *config.Drone) { c.MaxThrust = -1 }},
		{"soft tyres", func(c *config.Drone) { c.TyreSlope = 100 }},
		{"front wheel behind", func(c *config.Drone) { c.FrontWheelZ = 0.5 }},
		{"rear wheel outside wing", func(c *config.Drone) { c.RearWheelX = 5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultDrone()
			tt.mutate(&cfg)
			_, err := New(cfg, resting())
			assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
		})
	}

	_, err := New(config.DefaultDrone(), kinematics.State{Velocity: vecmath.Vec3{X: math.Inf(1)}})
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)

	_, err = New(config.DefaultDrone(), kinematics.State{Position: vecmath.Vec3{Y: 0.9}})
	assert.ErrorIs(t, err, dynamo.ErrCrashed)
}

func TestAcceleration_AtRestIsBalanced(t *testing.T) {
	d := mustDrone(t, resting())

	a, err := d.Acceleration(d.State(), dynamics.Actuators{})
	require.NoError(t, err)
	assert.True(t, a.ApproxEqual(vecmath.Zero, 1e-9), "a = %v", a)

	ang, err := d.AngularAccelerations(d.State(), dynamics.Actuators{})
	require.NoError(t, err)
	assert.InDelta(t, 0, ang.Heading, 1e-9)
	assert.InDelta(t, 0, ang.Pitch, 1e-9)
	assert.InDelta(t, 0, ang.Roll, 1e-9)
}

func TestAcceleration_FreeFallAndThrust(t *testing.T) {
	d := mustDrone(t, flying(vecmath.Zero))

	a, err := d.Acceleration(d.State(), dynamics.Actuators{})
	require.NoError(t, err)
	assert.True(t, a.ApproxEqual(vecmath.Vec3{Y: -9.81}, 1e-12), "a = %v", a)

	a, err = d.Acceleration(d.State(), dynamics.Actuators{Thrust: 450})
	require.NoError(t, err)
	assert.InDelta(t, -2, a.Z, 1e-12)

	_, err = d.Acceleration(d.State(), dynamics.Actuators{Thrust: 5000})
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

func TestAcceleration_WingLift(t *testing.T) {
	d := mustDrone(t, flying(vecmath.Vec3{Z: -40}))
	out := dynamics.Actuators{LeftWingInclination: 0.1, RightWingInclination: 0.1}

	a, err := d.Acceleration(d.State(), out)
	require.NoError(t, err)

	perWing := 0.1 * 10 * 40 * 40
	wantY := (2*perWing*math.Cos(0.1) - d.Weight()) / d.Mass()
	wantZ := 2 * perWing * math.Sin(0.1) / d.Mass()
	assert.InDelta(t, wantY, a.Y, 1e-9)
	assert.InDelta(t, wantZ, a.Z, 1e-9)
}

func TestAcceleration_Stall(t *testing.T) {
	d := mustDrone(t, flying(vecmath.Vec3{Z: -40}))
	_, err := d.Acceleration(d.State(), dynamics.Actuators{LeftWingInclination: 0.5})
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)

	// Below the lift speed the surface is ignored.
	slow := mustDrone(t, flying(vecmath.Vec3{Y: -0.3}))
	_, err = slow.Acceleration(slow.State(), dynamics.Actuators{})
	assert.NoError(t, err)
}

func TestAngularAccelerations_AsymmetricWings(t *testing.T) {
	d := mustDrone(t, flying(vecmath.Vec3{Z: -40}))

	ang, err := d.AngularAccelerations(d.State(), dynamics.Actuators{LeftWingInclination: 0.1})
	require.NoError(t, err)
	assert.Less(t, ang.Roll, 0.0, "more lift on the left wing rolls to the right")

	ang, err = d.AngularAccelerations(d.State(), dynamics.Actuators{HorStabInclination: 0.1})
	require.NoError(t, err)
	assert.Less(t, ang.Pitch, 0.0, "tail lift pitches the nose down")
}

func TestAngularAccelerations_BrakingPitchesForward(t *testing.T) {
	s := resting()
	s.Velocity = vecmath.Vec3{Z: -10}
	d := mustDrone(t, s)

	out := dynamics.Actuators{FrontBrakeForce: 500, LeftBrakeForce: 500, RightBrakeForce: 500}
	a, err := d.Acceleration(d.State(), out)
	require.NoError(t, err)
	assert.Greater(t, a.Z, 0.0)

	ang, err := d.AngularAccelerations(d.State(), out)
	require.NoError(t, err)
	assert.Less(t, ang.Pitch, 0.0)
}

func TestLoads_MomentMatchesWheelMoments(t *testing.T) {
	s := resting()
	s.Velocity = vecmath.Vec3{X: 0.4, Z: -10}
	s.Pitch = -0.01
	d := mustDrone(t, s)
	out := dynamics.Actuators{FrontBrakeForce: 300, LeftBrakeForce: 400, RightBrakeForce: 400}

	l, err := d.Loads(d.State(), out)
	require.NoError(t, err)
	bare, err := d.Loads(d.State(), dynamics.Actuators{})
	require.NoError(t, err)
	noTyres := bare.Moment
	for _, w := range d.Wheels().All() {
		m, err := w.Moment(d.State(), 0, vecmath.Zero)
		require.NoError(t, err)
		noTyres = noTyres.Sub(m)
	}

	want := noTyres
	acc := vecmath.Vec3{Y: -d.Weight()}.Add(l.Lift)
	brakes := out.Brakes()
	for i, w := range d.Wheels().All() {
		f, err := w.Force(d.State(), brakes[i], acc)
		require.NoError(t, err)
		m, err := w.Moment(d.State(), brakes[i], acc)
		require.NoError(t, err)
		assert.True(t, m.ApproxEqual(w.MomentOf(d.State(), f), 1e-9), w.Role().String())
		acc = acc.Add(f)
		want = want.Add(m)
	}
	assert.True(t, l.Moment.ApproxEqual(want, 1e-6), "got %v want %v", l.Moment, want)
	assert.True(t, l.Force.ApproxEqual(acc, 1e-6), "got %v want %v", l.Force, acc)
}

func TestDepthRate(t *testing.T) {
	d := mustDrone(t, resting())
	static := d.StaticDepth()

	assert.InDelta(t, 0, d.DepthRate(static, 3), 1e-12)
	assert.Greater(t, d.DepthRate(static, 2), 0.0)
	assert.InDelta(t, (d.Weight()-50000*static)/5000, d.DepthRate(static, 1), 1e-9)
}

func TestLoadModel_LiftRelievesTyres(t *testing.T) {
	s := resting()
	s.Velocity = vecmath.Vec3{Z: -30}
	d := mustDrone(t, s)

	still, err := d.LoadModel(d.State(), dynamics.Actuators{})
	require.NoError(t, err)
	lifting, err := d.LoadModel(d.State(), dynamics.Actuators{LeftWingInclination: 0.1, RightWingInclination: 0.1})
	require.NoError(t, err)

	static := d.StaticDepth()
	assert.InDelta(t, 0, still.DepthRate(static, 3), 1e-12)
	assert.Less(t, lifting.DepthRate(static, 3), 0.0)
}

func TestSetState(t *testing.T) {
	d := mustDrone(t, resting())
	s := resting()
	s.Heading = -0.1
	require.NoError(t, d.SetState(s))
	assert.InDelta(t, 2*math.Pi-0.1, d.State().Heading, 1e-12)

	s.Position.X = math.NaN()
	assert.ErrorIs(t, d.SetState(s), dynamo.ErrInvalidState)
}
