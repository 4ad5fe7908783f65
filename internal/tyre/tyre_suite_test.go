package tyre_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/tyre"
	"github.com/san-kum/dronesim/internal/vecmath"
)

func TestTyre(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Tyre Contact Suite")
}

type restingLoad struct {
	weight, k, c float64
}

func (m restingLoad) DepthRate(d float64, n int) float64 {
	return (m.weight/float64(n) - m.k*d) / m.c
}

var _ = Describe("Tyre", func() {
	var (
		params tyre.Params
		set    *tyre.Set
		load   restingLoad
		rest   kinematics.State
	)

	BeforeEach(func() {
		params = tyre.Params{
			WheelY:      1,
			FrontWheelZ: -2.5,
			RearWheelZ:  0.8,
			RearWheelX:  1.2,
			TyreSlope:   20000,
			DampSlope:   2000,
			Radius:      0.3,
			RMax:        500,
			FcMax:       0.7,
		}
		var err error
		set, err = tyre.NewSet(params, 3)
		Expect(err).NotTo(HaveOccurred())

		load = restingLoad{weight: 981, k: params.TyreSlope, c: params.DampSlope}
		rest = kinematics.State{Position: vecmath.Vec3{Y: 1.29}}
	})

	Context("without compression", func() {
		It("returns the exact zero vector for every wheel", func() {
			moving := rest
			moving.Velocity = vecmath.Vec3{X: 1, Z: -20}
			for _, w := range set.All() {
				f, err := w.Force(moving, 0, vecmath.Zero)
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(Equal(vecmath.Zero))
			}
		})
	})

	Context("with a brake request above RMax", func() {
		It("fails with an invalid argument for every wheel", func() {
			for _, w := range set.All() {
				Expect(w.SetDepth(0.01)).To(Succeed())
				_, err := w.Force(rest, 600, vecmath.Zero)
				Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
			}
		})
	})

	Context("when the wheel is out of reach of the ground", func() {
		It("drops the depth to zero and reports no contact", func() {
			high := kinematics.State{Position: vecmath.Vec3{Y: 1.5}}
			for _, w := range set.All() {
				Expect(w.SetDepth(0.05)).To(Succeed())
				Expect(w.Height(high)).To(BeNumerically("~", 1.5, 1e-12))

				grounded, err := w.UpdateDepth(0.01, high, load, 3)
				Expect(err).NotTo(HaveOccurred())
				Expect(grounded).To(BeFalse())
				Expect(w.Depth()).To(BeZero())
			}
		})
	})

	Context("with no elapsed time", func() {
		It("keeps the configured depth", func() {
			Expect(set.Front.SetDepth(0.0123)).To(Succeed())
			_, err := set.Front.UpdateDepth(0, rest, load, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(set.Front.Depth()).To(Equal(0.0123))
		})
	})

	Context("resting under static load", func() {
		It("stays within the damped-spring equilibrium band", func() {
			static := load.weight / (3 * params.TyreSlope)
			Expect(set.Front.SetDepth(static)).To(Succeed())

			grounded, err := set.Front.UpdateDepth(0.01, rest, load, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(grounded).To(BeTrue())
			Expect(set.Front.Depth()).To(BeNumerically("~", static, 0.1*static))
		})

		It("settles towards the new share when a wheel lifts", func() {
			static := load.weight / (3 * params.TyreSlope)
			Expect(set.LeftRear.SetDepth(static)).To(Succeed())

			for range 200 {
				_, err := set.LeftRear.UpdateDepth(0.01, rest, load, 2)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(set.LeftRear.Depth()).To(BeNumerically("~", load.weight/(2*params.TyreSlope), 1e-6))
		})
	})
})
