package tyre

// Set is the landing gear of one drone.
type Set struct {
	Front     *Tyre
	LeftRear  *Tyre
	RightRear *Tyre
}

// NewSet builds all three wheels from one parameter block.
func NewSet(p Params, wingX float64) (*Set, error) {
	front, err := NewFront(p, wingX)
	if err != nil {
		return nil, err
	}
	left, err := NewLeftRear(p, wingX)
	if err != nil {
		return nil, err
	}
	right, err := NewRightRear(p, wingX)
	if err != nil {
		return nil, err
	}
	return &Set{Front: front, LeftRear: left, RightRear: right}, nil
}

// All returns the wheels in Roles order.
func (s *Set) All() [3]*Tyre {
	return [3]*Tyre{s.Front, s.LeftRear, s.RightRear}
}

// Depths returns the compression depth of each wheel in Roles order.
func (s *Set) Depths() [3]float64 {
	var out [3]float64
	for i, t := range s.All() {
		out[i] = t.Depth()
	}
	return out
}

// GroundedCount is the number of wheels currently in contact.
func (s *Set) GroundedCount() int {
	n := 0
	for _, t := range s.All() {
		if t.Grounded() {
			n++
		}
	}
	return n
}
