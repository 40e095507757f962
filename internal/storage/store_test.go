package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

func sampleRun(t *testing.T) Run {
	t.Helper()
	s, err := sim.New(sim.Config{
		Dt:        0.01,
		FinalTime: 0.5,
		Times:     []float64{0, 0.5},
		Steering:  []float64{0.05, 0.05},
		Slip:      []float64{0, 0.1},
	})
	require.NoError(t, err)
	initial := vehicle.DefaultState()
	initial.Vx = 5
	car, err := vehicle.New(vehicle.DefaultParams(), nil, initial)
	require.NoError(t, err)
	tr, err := s.Simulate(context.Background(), car)
	require.NoError(t, err)

	return Run{
		Preset:     "circle_left",
		Dt:         s.Dt(),
		FinalTime:  s.FinalTime(),
		Tire:       "linear",
		Car:        vehicle.DefaultParams(),
		Metrics:    map[string]float64{"distance_m": 2.5},
		Trajectory: tr,
	}
}

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())
	t.Cleanup(func() { st.Close() })
	return st, dir
}

func TestStoreSaveLoad(t *testing.T) {
	st, _ := newStore(t)
	run := sampleRun(t)

	runID, err := st.Save(run)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "circle_left_"))
	assert.Len(t, runID, len("circle_left_")+8)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "circle_left", meta.Preset)
	assert.Equal(t, run.Trajectory.Len()-1, meta.Steps)
	assert.Equal(t, "post-step", meta.Timestamps)
	assert.Equal(t, 2.5, meta.Metrics["distance_m"])
	_, final := run.Trajectory.Final()
	assert.Equal(t, final, meta.Final)

	tr, err := st.LoadTrajectory(runID)
	require.NoError(t, err)
	assert.Equal(t, run.Trajectory.Times, tr.Times)
	assert.Equal(t, run.Trajectory.States, tr.States)
}

func TestStoreFileStructure(t *testing.T) {
	st, dir := newStore(t)
	runID, err := st.Save(sampleRun(t))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "metadata.json"))
	assert.FileExists(t, filepath.Join(dir, "runs.db"))

	data, err := os.ReadFile(filepath.Join(dir, runID, "states.csv"))
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Equal(t, "time,x_m,y_m,psi_rad,vx_m_per_s,vy_m_per_s,psi_dot_rad_per_s,delta_rad,s_x", header)
}

func TestStoreList(t *testing.T) {
	st, _ := newStore(t)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save(sampleRun(t))
	require.NoError(t, err)
	second, err := st.Save(sampleRun(t))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreNotFound(t *testing.T) {
	st, _ := newStore(t)
	_, err := st.Load("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = st.LoadTrajectory("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, st.Delete("missing"), ErrRunNotFound)
}

func TestStoreRejectsEmptyTrajectory(t *testing.T) {
	st, _ := newStore(t)
	_, err := st.Save(Run{Preset: "x", Trajectory: &sim.Trajectory{}})
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	st, _ := newStore(t)
	run := sampleRun(t)

	left, err := st.Save(run)
	require.NoError(t, err)
	run.Preset = "straight"
	straight, err := st.Save(run)
	require.NoError(t, err)

	all, err := st.Catalog().Runs("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, err := st.Catalog().Runs("straight")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, straight, only[0].ID)
	assert.Equal(t, 2.5, only[0].Metrics["distance_m"])
	_, final := run.Trajectory.Final()
	assert.InDelta(t, final.Speed(), only[0].FinalSpeed, 1e-12)

	require.NoError(t, st.Delete(left))
	all, err = st.Catalog().Runs("")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NoDirExists(t, filepath.Join(st.baseDir, left))
}

func TestCatalogReopen(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())
	_, err := st.Save(sampleRun(t))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	cat, err := OpenCatalog(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer cat.Close()
	entries, err := cat.Runs("circle_left")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCSVRoundTrip(t *testing.T) {
	run := sampleRun(t)
	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, run.Trajectory))

	tr, err := ReadCSV(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Equal(t, run.Trajectory.Times, tr.Times)
	assert.Equal(t, run.Trajectory.States, tr.States)
}

type closeFailer struct {
	strings.Builder
	closeErr error
	closed   bool
}

func (c *closeFailer) Close() error {
	c.closed = true
	return c.closeErr
}

func TestWriteAndCloseReportsCloseError(t *testing.T) {
	flushErr := errors.New("flush failed")
	wc := &closeFailer{closeErr: flushErr}

	err := writeAndClose(wc, func(w io.Writer) error {
		_, err := io.WriteString(w, "{}")
		return err
	})
	assert.ErrorIs(t, err, flushErr)
	assert.True(t, wc.closed)
	assert.Equal(t, "{}", wc.String())
}

func TestWriteAndCloseKeepsWriteError(t *testing.T) {
	writeErr := errors.New("encode failed")
	wc := &closeFailer{closeErr: errors.New("flush failed")}

	err := writeAndClose(wc, func(io.Writer) error { return writeErr })
	assert.ErrorIs(t, err, writeErr)
	assert.True(t, wc.closed)
}
