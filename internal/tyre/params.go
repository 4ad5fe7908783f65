package tyre

import (
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/vecmath"
)

// DefaultSubsteps is the number of RK4 substeps used per depth update.
const DefaultSubsteps = 10

// Params are the landing-gear values shared by the three wheels of one
// drone. WheelY is the distance from the body reference point down to
// each hub.
type Params struct {
	WheelY      float64
	FrontWheelZ float64
	RearWheelZ  float64
	RearWheelX  float64
	TyreSlope   float64
	DampSlope   float64
	Radius      float64
	RMax        float64
	FcMax       float64
}

// Validate checks the role-independent ranges.
func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"wheelY", p.WheelY},
		{"tyreSlope", p.TyreSlope},
		{"dampSlope", p.DampSlope},
		{"tyreRadius", p.Radius},
		{"rMax", p.RMax},
	}
	for _, c := range checks {
		if !vecmath.IsFinite(c.value) || c.value <= 0 {
			return dynamo.InvalidArgument("%s must be positive and finite, got %g", c.name, c.value)
		}
	}
	if !vecmath.IsFinite(p.FcMax) || p.FcMax <= 0 || p.FcMax > 1 {
		return dynamo.InvalidArgument("fcMax must be in (0, 1], got %g", p.FcMax)
	}
	for name, v := range map[string]float64{
		"frontWheelZ": p.FrontWheelZ,
		"rearWheelZ":  p.RearWheelZ,
		"rearWheelX":  p.RearWheelX,
	} {
		if !vecmath.IsFinite(v) {
			return dynamo.InvalidArgument("%s must be finite, got %g", name, v)
		}
	}
	return nil
}
