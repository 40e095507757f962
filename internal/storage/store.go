package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	catalogFile  = "runs.db"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	log     zerolog.Logger
	catalog *Catalog
}

type Option func(*Store)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

func New(baseDir string, opts ...Option) *Store {
	s := &Store{baseDir: baseDir, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the base directory and opens the run catalog inside it.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	if s.catalog != nil {
		return nil
	}
	cat, err := OpenCatalog(filepath.Join(s.baseDir, catalogFile))
	if err != nil {
		return err
	}
	s.catalog = cat
	return nil
}

func (s *Store) Close() error {
	if s.catalog == nil {
		return nil
	}
	err := s.catalog.Close()
	s.catalog = nil
	return err
}

// Catalog is nil until Init succeeds.
func (s *Store) Catalog() *Catalog { return s.catalog }

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	FinalTime  float64            `json:"final_time"`
	Steps      int                `json:"steps"`
	Tire       string             `json:"tire"`
	Timestamps string             `json:"timestamps"`
	Car        vehicle.Params     `json:"car"`
	Final      vehicle.State      `json:"final_state"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Run is everything Save needs to persist one simulation.
type Run struct {
	Preset     string
	Dt         float64
	FinalTime  float64
	Tire       string
	Timestamps sim.TimestampMode
	Car        vehicle.Params
	Metrics    map[string]float64
	Trajectory *sim.Trajectory
}

func newRunID(preset string) string {
	if preset == "" {
		preset = "run"
	}
	return fmt.Sprintf("%s_%s", preset, uuid.NewString()[:8])
}

func (s *Store) runDir(id string) string { return filepath.Join(s.baseDir, id) }

func (s *Store) Save(run Run) (string, error) {
	if run.Trajectory == nil || run.Trajectory.Len() == 0 {
		return "", errors.New("storage: empty trajectory")
	}

	runID := newRunID(run.Preset)
	runDir := s.runDir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	_, final := run.Trajectory.Final()
	meta := RunMetadata{
		ID:         runID,
		Preset:     run.Preset,
		Timestamp:  time.Now().UTC(),
		Dt:         run.Dt,
		FinalTime:  run.FinalTime,
		Steps:      run.Trajectory.Len() - 1,
		Tire:       run.Tire,
		Timestamps: run.Timestamps.String(),
		Car:        run.Car,
		Final:      final,
		Metrics:    run.Metrics,
	}
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), run.Trajectory); err != nil {
		return "", err
	}
	if s.catalog != nil {
		if err := s.catalog.Record(meta); err != nil {
			return "", err
		}
	}

	s.log.Info().Str("run_id", runID).Int("steps", meta.Steps).Msg("saved run")
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return writeAndClose(f, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
}

// writeAndClose runs write against wc and closes it. A close failure is
// reported when the write itself succeeded.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) error {
	if err := write(wc); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

// List reads every run directory under the base directory, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.log.Debug().Err(err).Str("dir", entry.Name()).Msg("skipping directory")
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*sim.Trajectory, error) {
	tr, err := readStates(filepath.Join(s.runDir(runID), statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	return tr, nil
}

// Delete removes a run directory and its catalog entry.
func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	if err := os.RemoveAll(s.runDir(runID)); err != nil {
		return err
	}
	if s.catalog != nil {
		return s.catalog.Remove(runID)
	}
	return nil
}
