package metrics

// BrakeEffort is the mean total brake force commanded per tick.
type BrakeEffort struct {
	name    string
	sum     float64
	samples int
}

func NewBrakeEffort() *BrakeEffort {
	return &BrakeEffort{
		name: "brake_effort",
	}
}

func (c *BrakeEffort) Name() string {
	return c.name
}

func (c *BrakeEffort) Observe(s Sample) {
	for _, b := range s.Outputs.Brakes() {
		c.sum += b
	}
	c.samples++
}

func (c *BrakeEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *BrakeEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
