package testbed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/san-kum/dronesim/internal/airframe"
	"github.com/san-kum/dronesim/internal/dynamo"
)

// Fleet runs independent drivers concurrently, one goroutine each. No
// two drivers may share a drone.
type Fleet struct {
	drivers []*Driver
}

func NewFleet(drivers ...*Driver) (*Fleet, error) {
	seen := make(map[*airframe.Drone]bool, len(drivers))
	for i, d := range drivers {
		if d == nil {
			return nil, dynamo.InvalidArgument("driver %d is nil", i)
		}
		if seen[d.drone] {
			return nil, dynamo.InvalidArgument("drone %q is driven twice", d.drone.ID())
		}
		seen[d.drone] = true
	}
	return &Fleet{drivers: drivers}, nil
}

func (f *Fleet) Len() int { return len(f.drivers) }

// Run runs every driver with the same settings. Results are in driver
// order; a failed run keeps its partial trace and its error is joined into
// the returned error.
func (f *Fleet) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, len(f.drivers))
	errs := make([]error, len(f.drivers))

	var wg sync.WaitGroup
	for i, d := range f.drivers {
		wg.Add(1)
		go func(idx int, d *Driver) {
			defer wg.Done()
			res, err := d.Run(ctx, cfg)
			results[idx] = res
			if err != nil {
				errs[idx] = fmt.Errorf("drone %q: %w", d.drone.ID(), err)
			}
		}(i, d)
	}

	wg.Wait()

	return results, errors.Join(errs...)
}
