package tyre

import "fmt"

// WheelRole identifies a wheel position on the airframe.
type WheelRole int

const (
	Front WheelRole = iota
	LeftRear
	RightRear
)

// Roles lists every wheel position in the order the drone stores them.
var Roles = [...]WheelRole{Front, LeftRear, RightRear}

func (r WheelRole) String() string {
	switch r {
	case Front:
		return "front"
	case LeftRear:
		return "left_rear"
	case RightRear:
		return "right_rear"
	default:
		return fmt.Sprintf("WheelRole(%d)", int(r))
	}
}

// geometry holds the per-role placement rules.
type geometry struct {
	// validZ checks the fore/aft offset; the drone flies towards -Z.
	validZ func(z float64) bool
	// validX checks the configured lateral placement against the wing position.
	validX func(x, wingX float64) bool
	// offsetX and offsetZ place the hub from the shared parameters.
	offsetX func(p Params) float64
	offsetZ func(p Params) float64
	// lateralFriction is false for the single-axis front contact.
	lateralFriction bool
}

var geometries = map[WheelRole]geometry{
	Front: {
		validZ:          func(z float64) bool { return z < 0 },
		validX:          func(x, _ float64) bool { return x == 0 },
		offsetX:         func(Params) float64 { return 0 },
		offsetZ:         func(p Params) float64 { return p.FrontWheelZ },
		lateralFriction: false,
	},
	LeftRear: {
		validZ:          validRearZ,
		validX:          validRearX,
		offsetX:         func(p Params) float64 { return -p.RearWheelX },
		offsetZ:         func(p Params) float64 { return p.RearWheelZ },
		lateralFriction: true,
	},
	RightRear: {
		validZ:          validRearZ,
		validX:          validRearX,
		offsetX:         func(p Params) float64 { return p.RearWheelX },
		offsetZ:         func(p Params) float64 { return p.RearWheelZ },
		lateralFriction: true,
	},
}

func validRearZ(z float64) bool {
	return z > 0
}

func validRearX(x, wingX float64) bool {
	return x > 0 && x <= wingX
}
