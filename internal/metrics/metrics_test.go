package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/vecmath"
)

func sampleAt(y float64, grounded int, depths [3]float64) Sample {
	return Sample{
		State:    kinematics.State{Position: vecmath.Vec3{Y: y}},
		Depths:   depths,
		Grounded: grounded,
	}
}

func TestGroundContact(t *testing.T) {
	m := NewGroundContact()
	if m.Value() != 0 {
		t.Errorf("expected 0 before samples, got %f", m.Value())
	}

	m.Observe(sampleAt(1, 3, [3]float64{}))
	m.Observe(sampleAt(2, 0, [3]float64{}))
	m.Observe(sampleAt(3, 0, [3]float64{}))
	m.Observe(sampleAt(1, 1, [3]float64{}))

	if got := m.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestMaxDepth(t *testing.T) {
	m := NewMaxDepth()
	m.Observe(sampleAt(1, 3, [3]float64{0.01, 0.02, 0.015}))
	m.Observe(sampleAt(1, 3, [3]float64{0.03, 0.0, 0.0}))
	m.Observe(sampleAt(1, 3, [3]float64{0.01, 0.01, 0.01}))

	if got := m.Value(); got != 0.03 {
		t.Errorf("expected 0.03, got %f", got)
	}
}

func TestStability(t *testing.T) {
	m := NewStability(10, 1)
	if m.Value() != 1 {
		t.Errorf("expected 1 before samples, got %f", m.Value())
	}

	ok := Sample{State: kinematics.State{Velocity: vecmath.Vec3{Z: -5}}}
	fast := Sample{State: kinematics.State{Velocity: vecmath.Vec3{Z: -50}}}
	spinning := Sample{State: kinematics.State{RollRate: -3}}

	m.Observe(ok)
	m.Observe(fast)
	m.Observe(spinning)
	m.Observe(ok)

	if got := m.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestBrakeEffort(t *testing.T) {
	m := NewBrakeEffort()
	m.Observe(Sample{Outputs: dynamics.Actuators{FrontBrakeForce: 100, LeftBrakeForce: 50, RightBrakeForce: 50}})
	m.Observe(Sample{})

	if got := m.Value(); got != 100 {
		t.Errorf("expected 100, got %f", got)
	}
}

func TestEnergy(t *testing.T) {
	m := NewEnergy(2, 10, [3]float64{1, 1, 1})
	s := Sample{State: kinematics.State{
		Position: vecmath.Vec3{Y: 3},
		Velocity: vecmath.Vec3{X: 1, Z: -2},
	}}
	m.Observe(s)

	expected := 0.5*2*5 + 2*10*3.0
	if math.Abs(m.Value()-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(1, 10, [3]float64{1, 1, 1})
	m.Observe(sampleAt(10, 0, [3]float64{}))
	m.Observe(sampleAt(9, 0, [3]float64{}))
	m.Observe(sampleAt(9.5, 0, [3]float64{}))

	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("expected drift 0.1, got %f", m.Value())
	}
}

func TestStandard(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Standard(1, 9.81, [3]float64{1, 1, 1}) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 metrics, got %d", len(seen))
	}
}

func TestSpeedError(t *testing.T) {
	m := NewSpeedError(5)
	if m.Value() != 0 {
		t.Errorf("expected 0 before samples, got %f", m.Value())
	}

	at := func(vx, vy, vz float64) Sample {
		return Sample{State: kinematics.State{Velocity: vecmath.Vec3{X: vx, Y: vy, Z: vz}}}
	}
	m.Observe(at(0, 0, -5))
	m.Observe(at(3, 9, -4))
	m.Observe(at(0, 0, -2))

	// Vertical speed is ignored: errors are 0, 0 and 3.
	want := math.Sqrt(9.0 / 3)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}
