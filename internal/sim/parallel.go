package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/carsim/internal/vehicle"
)

// Job is one independent scenario: a simulator and a factory producing the
// car it drives. Each job gets its own car, so jobs share no state.
type Job struct {
	Sim       *Simulator
	NewCar    func() (*vehicle.Car, error)
	Observers []Observer
}

// Batch runs jobs concurrently and returns their trajectories in order.
func Batch(ctx context.Context, jobs []Job) ([]*Trajectory, error) {
	results := make([]*Trajectory, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			car, err := jobs[idx].NewCar()
			if err != nil {
				errs[idx] = err
				return
			}

			results[idx], errs[idx] = jobs[idx].Sim.Simulate(ctx, car, jobs[idx].Observers...)
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}
	}

	return results, nil
}
