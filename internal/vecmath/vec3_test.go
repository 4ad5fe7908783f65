package vecmath

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVec3_RejectsNonFinite(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z float64
		wantErr bool
	}{
		{"finite", 1, 2, 3, false},
		{"NaN", math.NaN(), 0, 0, true},
		{"+Inf", 0, math.Inf(1), 0, true},
		{"-Inf", 0, 0, math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVec3(tt.x, tt.y, tt.z)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNonFinite)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVec3_Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	assert.Equal(t, Vec3{5, 7, 9}, a.Add(b))
	assert.Equal(t, Vec3{3, 3, 3}, b.Sub(a))
	assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	assert.Equal(t, 32.0, a.Dot(b))
	assert.Equal(t, Vec3{-3, 6, -3}, a.Cross(b))
	assert.Equal(t, Vec3{1, 0, 3}, a.Horizontal())
}

func TestVec3_CrossOfAxes(t *testing.T) {
	assert.Equal(t, UnitZ, UnitX.Cross(UnitY))
	assert.Equal(t, UnitX, UnitY.Cross(UnitZ))
	assert.Equal(t, UnitY, UnitZ.Cross(UnitX))
}

func TestVec3_Unit(t *testing.T) {
	u, err := Vec3{3, 0, 4}.Unit()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, u.Norm(), 1e-12)
	assert.InDelta(t, 0.6, u.X, 1e-12)

	_, err = Zero.Unit()
	assert.True(t, errors.Is(err, ErrZeroVector))
}

func TestMat3_RotationsAreOrthonormal(t *testing.T) {
	r := RotY(0.7).Mul(RotX(-0.3)).Mul(RotZ(1.2))
	v := Vec3{0.3, -1.1, 2.5}

	back := r.Transpose().MulVec(r.MulVec(v))
	assert.True(t, back.ApproxEqual(v, 1e-12), "got %v", back)
	assert.InDelta(t, v.Norm(), r.MulVec(v).Norm(), 1e-12)
}

func TestRotY_QuarterTurn(t *testing.T) {
	// forward (-Z) turned left by 90 degrees points to -X
	got := RotY(math.Pi / 2).MulVec(Vec3{0, 0, -1})
	assert.True(t, got.ApproxEqual(Vec3{-1, 0, 0}, 1e-12), "got %v", got)
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{-0.1, TwoPi - 0.1},
		{TwoPi, 0},
		{TwoPi + 0.5, 0.5},
		{-TwoPi, 0},
		{3 * math.Pi, math.Pi},
		{-1e-18, 0},
	}

	for _, tt := range tests {
		got := WrapAngle(tt.in)
		assert.InDelta(t, tt.want, got, 1e-12, "WrapAngle(%v)", tt.in)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.Less(t, got, TwoPi)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(5, -1, 1))
	assert.Equal(t, -1.0, Clamp(-5, -1, 1))
	assert.Equal(t, 0.5, Clamp(0.5, -1, 1))
	assert.Equal(t, -2.0, ClampSym(-3, 2))
}
