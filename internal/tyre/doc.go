// Package tyre models the ground contact of one landing-gear wheel.
//
// A [Tyre] is a vertical spring-damper with compression depth D. While
// the wheel touches the ground it produces a reaction force made of
//
//   - a normal term tyreSlope*D + dampSlope*dD/dt along the wheel's up axis,
//   - lateral friction on the rear wheels, proportional to the normal term
//     and the sideways slip of the contact point,
//   - a brake force opposing the horizontal motion of the contact point.
//
// The three wheels of a drone share one type; their differences live in a
// small per-[WheelRole] geometry table.
//
// Depth is advanced once per tick by [Tyre.UpdateDepth] against the newly
// integrated rigid body state. While in contact D never drops below the
// geometric penetration of the hub. Losing contact is a normal outcome and
// resets D to zero rather than returning an error; a hub at or below the
// ground is a crash.
package tyre
