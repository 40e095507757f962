package analysis

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

var ErrTooFewLevels = errors.New("analysis: convergence study needs at least two levels")

// Level is one step size of a convergence study. Diff fields compare with
// the previous (coarser) level; Order compares consecutive diffs and is NaN
// where it is undefined.
type Level struct {
	Dt      float64
	Steps   int
	FinalX  float64
	FinalY  float64
	DiffX   float64
	DiffPos float64
	Order   float64
}

type Study struct {
	Levels []Level
}

// Convergence runs cfg at cfg.Dt, cfg.Dt/2, ... for the given number of
// levels, concurrently, each with a fresh car.
func Convergence(ctx context.Context, cfg sim.Config, newCar func() (*vehicle.Car, error), levels int) (*Study, error) {
	if levels < 2 {
		return nil, ErrTooFewLevels
	}

	jobs := make([]sim.Job, levels)
	for i := range jobs {
		c := cfg
		c.Dt = cfg.Dt / math.Pow(2, float64(i))
		s, err := sim.New(c)
		if err != nil {
			return nil, err
		}
		jobs[i] = sim.Job{Sim: s, NewCar: newCar}
	}

	trajs, err := sim.Batch(ctx, jobs)
	if err != nil {
		return nil, err
	}

	study := &Study{Levels: make([]Level, levels)}
	for i, tr := range trajs {
		_, final := tr.Final()
		lvl := Level{
			Dt:      jobs[i].Sim.Dt(),
			Steps:   jobs[i].Sim.Steps(),
			FinalX:  final.X,
			FinalY:  final.Y,
			DiffX:   math.NaN(),
			DiffPos: math.NaN(),
			Order:   math.NaN(),
		}
		if i > 0 {
			prev := study.Levels[i-1]
			lvl.DiffX = math.Abs(final.X - prev.FinalX)
			lvl.DiffPos = floats.Distance([]float64{prev.FinalX, prev.FinalY}, []float64{final.X, final.Y}, 2)
			if i > 1 && lvl.DiffX > 0 && prev.DiffX > 0 {
				lvl.Order = math.Log2(prev.DiffX / lvl.DiffX)
			}
		}
		study.Levels[i] = lvl
	}

	return study, nil
}

// Converging reports whether every successive terminal-x difference is
// smaller than the one before it.
func (s *Study) Converging() bool {
	for i := 2; i < len(s.Levels); i++ {
		if !(s.Levels[i].DiffX < s.Levels[i-1].DiffX) {
			return false
		}
	}
	return true
}

// MeanOrder averages the defined observed orders.
func (s *Study) MeanOrder() float64 {
	var orders []float64
	for _, l := range s.Levels {
		if !math.IsNaN(l.Order) {
			orders = append(orders, l.Order)
		}
	}
	if len(orders) == 0 {
		return math.NaN()
	}
	return floats.Sum(orders) / float64(len(orders))
}
