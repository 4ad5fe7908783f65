package analysis

import (
	"math"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/metrics"
)

type Point struct{ X, Y float64 }

// PhasePortrait is one channel plotted against another over a run.
type PhasePortrait struct {
	XChannel, YChannel string
	Points             []Point
}

func NewPhasePortrait(samples []metrics.Sample, xChannel, yChannel string) (*PhasePortrait, error) {
	xs, err := Series(samples, xChannel)
	if err != nil {
		return nil, err
	}
	ys, err := Series(samples, yChannel)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, dynamo.InvalidArgument("phase portrait needs samples")
	}

	p := &PhasePortrait{XChannel: xChannel, YChannel: yChannel, Points: make([]Point, len(xs))}
	for i := range xs {
		p.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return p, nil
}

// Bounds returns the bounding box of the portrait.
func (p *PhasePortrait) Bounds() (minX, maxX, minY, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, pt := range p.Points {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}
	return
}

// Settled reports whether the last window points stay within tol of the
// final point, i.e. the trajectory has reached a fixed point.
func (p *PhasePortrait) Settled(window int, tol float64) bool {
	if window <= 0 || window > len(p.Points) {
		return false
	}
	last := p.Points[len(p.Points)-1]
	for _, pt := range p.Points[len(p.Points)-window:] {
		if math.Hypot(pt.X-last.X, pt.Y-last.Y) > tol {
			return false
		}
	}
	return true
}
