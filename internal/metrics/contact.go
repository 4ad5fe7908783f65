package metrics

// GroundContact is the fraction of ticks with at least one wheel grounded.
type GroundContact struct {
	name     string
	grounded int
	samples  int
}

func NewGroundContact() *GroundContact {
	return &GroundContact{name: "ground_contact"}
}

func (g *GroundContact) Name() string { return g.name }

func (g *GroundContact) Observe(s Sample) {
	g.samples++
	if s.Grounded > 0 {
		g.grounded++
	}
}

func (g *GroundContact) Value() float64 {
	if g.samples == 0 {
		return 0
	}
	return float64(g.grounded) / float64(g.samples)
}

func (g *GroundContact) Reset() {
	g.grounded = 0
	g.samples = 0
}

// MaxDepth is the deepest tyre compression seen.
type MaxDepth struct {
	name string
	max  float64
}

func NewMaxDepth() *MaxDepth {
	return &MaxDepth{name: "max_depth"}
}

func (m *MaxDepth) Name() string { return m.name }

func (m *MaxDepth) Observe(s Sample) {
	for _, d := range s.Depths {
		if d > m.max {
			m.max = d
		}
	}
}

func (m *MaxDepth) Value() float64 { return m.max }

func (m *MaxDepth) Reset() { m.max = 0 }
