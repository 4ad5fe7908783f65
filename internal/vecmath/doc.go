// Package vecmath provides the small linear-algebra toolkit used by the
// airframe and tyre models.
//
//   - [Vec3]: immutable 3D vector value
//   - [Mat3]: immutable 3x3 matrix value, row-major
//   - scalar helpers: [Clamp], [ClampSym], [WrapAngle], [ApproxEqual]
//
// All operations return new values. Constructors and checked helpers
// report non-finite results with [ErrNonFinite] instead of letting NaN
// or Inf leak into the simulation state.
package vecmath
