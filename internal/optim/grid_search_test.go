package optim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/carsim/internal/metrics"
	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

func builder(c Candidate) (sim.Job, metrics.Set, error) {
	steer := c["steer"]
	s, err := sim.New(sim.Config{
		Dt:        0.01,
		FinalTime: 2,
		Times:     []float64{0, 2},
		Steering:  []float64{steer, steer},
		Slip:      []float64{0, 0},
	})
	if err != nil {
		return sim.Job{}, nil, err
	}
	newCar := func() (*vehicle.Car, error) {
		initial := vehicle.DefaultState()
		initial.Vx = 10
		return vehicle.New(vehicle.DefaultParams(), nil, initial)
	}
	return sim.Job{Sim: s, NewCar: newCar}, metrics.Set{metrics.NewMaxYawRate()}, nil
}

func TestCandidates(t *testing.T) {
	g, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})
	require.NoError(t, err)

	cs := g.Candidates()
	require.Len(t, cs, 6)
	assert.Equal(t, Candidate{"a": 1, "b": 10}, cs[0])
	assert.Equal(t, Candidate{"a": 1, "b": 20}, cs[1])
	assert.Equal(t, Candidate{"a": 2, "b": 30}, cs[5])
}

func TestNewGridSearchMismatch(t *testing.T) {
	_, err := NewGridSearch([]string{"a"}, nil)
	assert.Error(t, err)
}

func TestSearchEmpty(t *testing.T) {
	g, err := NewGridSearch(nil, nil)
	require.NoError(t, err)
	_, err = g.Search(context.Background(), builder, MetricObjective("max_yaw_rate_rad_per_s"))
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestSearchMinimisesYawRate(t *testing.T) {
	g, err := NewGridSearch([]string{"steer"}, [][]float64{{0.05, -0.02, 0.1}})
	require.NoError(t, err)

	evals, err := g.Search(context.Background(), builder, MetricObjective("max_yaw_rate_rad_per_s"))
	require.NoError(t, err)
	require.Len(t, evals, 3)
	assert.Equal(t, -0.02, evals[0].Params["steer"])
	assert.Equal(t, 0.1, evals[2].Params["steer"])
	assert.IsNonDecreasing(t, []float64{evals[0].Value, evals[1].Value, evals[2].Value})
}

func TestSearchMaximise(t *testing.T) {
	g, err := NewGridSearch([]string{"steer"}, [][]float64{{0.05, 0.1}})
	require.NoError(t, err)

	evals, err := g.Search(context.Background(), builder, Negate(MetricObjective("max_yaw_rate_rad_per_s")))
	require.NoError(t, err)
	assert.Equal(t, 0.1, evals[0].Params["steer"])
	assert.Greater(t, evals[0].Metrics["max_yaw_rate_rad_per_s"], 0.0)
}

func TestSearchHeadingObjective(t *testing.T) {
	target := math.Pi/2 + 0.2
	g, err := NewGridSearch([]string{"steer"}, [][]float64{{0, 0.01, 0.02, 0.04, 0.08}})
	require.NoError(t, err)

	heading := func(tr *sim.Trajectory, _ map[string]float64) float64 {
		_, st := tr.Final()
		return math.Abs(st.Psi - target)
	}
	evals, err := g.Search(context.Background(), builder, heading)
	require.NoError(t, err)
	assert.NotEqual(t, 0.0, evals[0].Params["steer"])
	assert.Less(t, evals[0].Value, 0.2)
}
