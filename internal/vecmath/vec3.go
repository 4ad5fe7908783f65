package vecmath

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNonFinite indicates a NaN or Inf component.
	ErrNonFinite = errors.New("vecmath: non-finite value")

	// ErrZeroVector indicates a unit vector was requested for a zero-length vector.
	ErrZeroVector = errors.New("vecmath: zero-length vector has no direction")
)

// Vec3 is a 3D vector. Components follow the testbed convention: X right,
// Y up, Z backwards (the drone flies towards -Z).
type Vec3 struct {
	X, Y, Z float64
}

var (
	Zero  = Vec3{}
	UnitX = Vec3{1, 0, 0}
	UnitY = Vec3{0, 1, 0}
	UnitZ = Vec3{0, 0, 1}
)

// NewVec3 returns a vector, failing if any component is NaN or Inf.
func NewVec3(x, y, z float64) (Vec3, error) {
	v := Vec3{x, y, z}
	if !v.IsFinite() {
		return Vec3{}, fmt.Errorf("%w: (%g, %g, %g)", ErrNonFinite, x, y, z)
	}
	return v, nil
}

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func (a Vec3) Scale(f float64) Vec3 {
	return Vec3{a.X * f, a.Y * f, a.Z * f}
}

func (a Vec3) Neg() Vec3 {
	return Vec3{-a.X, -a.Y, -a.Z}
}

func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) Norm() float64 {
	return math.Sqrt(a.Dot(a))
}

// Unit returns the vector scaled to length 1.
func (a Vec3) Unit() (Vec3, error) {
	n := a.Norm()
	if n == 0 {
		return Vec3{}, ErrZeroVector
	}
	u := a.Scale(1 / n)
	if !u.IsFinite() {
		return Vec3{}, fmt.Errorf("%w: unit of %v", ErrNonFinite, a)
	}
	return u, nil
}

// Horizontal drops the vertical component.
func (a Vec3) Horizontal() Vec3 {
	return Vec3{a.X, 0, a.Z}
}

func (a Vec3) IsZero() bool {
	return a.X == 0 && a.Y == 0 && a.Z == 0
}

func (a Vec3) IsFinite() bool {
	return isFinite(a.X) && isFinite(a.Y) && isFinite(a.Z)
}

// Validate returns ErrNonFinite when any component is NaN or Inf.
func (a Vec3) Validate() error {
	if !a.IsFinite() {
		return fmt.Errorf("%w: %v", ErrNonFinite, a)
	}
	return nil
}

// ApproxEqual compares component-wise within eps.
func (a Vec3) ApproxEqual(b Vec3, eps float64) bool {
	return ApproxEqual(a.X, b.X, eps) && ApproxEqual(a.Y, b.Y, eps) && ApproxEqual(a.Z, b.Z, eps)
}

func (a Vec3) Array() [3]float64 {
	return [3]float64{a.X, a.Y, a.Z}
}

func (a Vec3) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", a.X, a.Y, a.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
