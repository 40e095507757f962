// Package optim searches scenario parameters for the run that minimises an
// objective.
package optim

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/carsim/internal/metrics"
	"github.com/san-kum/carsim/internal/sim"
)

var ErrEmptyGrid = errors.New("optim: grid has no candidates")

// Candidate assigns a value to every searched parameter.
type Candidate map[string]float64

type Evaluation struct {
	Params  Candidate
	Value   float64
	Metrics map[string]float64
}

// Builder turns a candidate into a runnable job. The returned metric set is
// attached to the job and reported to the objective.
type Builder func(c Candidate) (sim.Job, metrics.Set, error)

// Objective scores a finished run; lower is better.
type Objective func(tr *sim.Trajectory, values map[string]float64) float64

// MetricObjective scores runs by one named metric.
func MetricObjective(name string) Objective {
	return func(_ *sim.Trajectory, values map[string]float64) float64 { return values[name] }
}

// Negate turns a minimiser into a maximiser.
func Negate(o Objective) Objective {
	return func(tr *sim.Trajectory, values map[string]float64) float64 { return -o(tr, values) }
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Candidates is the cartesian product of the ranges, first parameter
// varying slowest.
func (g *GridSearch) Candidates() []Candidate {
	if len(g.paramNames) == 0 {
		return nil
	}
	var out []Candidate
	g.collect(0, Candidate{}, &out)
	return out
}

func (g *GridSearch) collect(depth int, current Candidate, out *[]Candidate) {
	if depth == len(g.paramNames) {
		c := make(Candidate, len(current))
		for k, v := range current {
			c[k] = v
		}
		*out = append(*out, c)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.collect(depth+1, current, out)
	}
	delete(current, paramName)
}

// Search runs every candidate concurrently and returns the evaluations
// ordered from best to worst.
func (g *GridSearch) Search(ctx context.Context, build Builder, objective Objective) ([]Evaluation, error) {
	candidates := g.Candidates()
	if len(candidates) == 0 {
		return nil, ErrEmptyGrid
	}

	jobs := make([]sim.Job, len(candidates))
	sets := make([]metrics.Set, len(candidates))
	for i, c := range candidates {
		job, set, err := build(c)
		if err != nil {
			return nil, fmt.Errorf("candidate %v: %w", c, err)
		}
		job.Observers = append(job.Observers, set)
		jobs[i], sets[i] = job, set
	}

	trajs, err := sim.Batch(ctx, jobs)
	if err != nil {
		return nil, err
	}

	evals := make([]Evaluation, len(candidates))
	for i, tr := range trajs {
		values := sets[i].Values()
		evals[i] = Evaluation{
			Params:  candidates[i],
			Value:   objective(tr, values),
			Metrics: values,
		}
	}
	sort.SliceStable(evals, func(i, j int) bool { return evals[i].Value < evals[j].Value })
	return evals, nil
}
