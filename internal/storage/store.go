// Package storage persists run traces on disk and indexes them in a
// database.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/kinematics"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/testbed"
	"github.com/san-kum/dronesim/internal/tyre"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

// ErrRunNotFound is returned when a run id has no directory.
var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	index   *Index
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// WithIndex makes Save also record every run in idx.
func (s *Store) WithIndex(idx *Index) *Store {
	s.index = idx
	return s
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	DroneID    string             `json:"drone_id"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator"`
	Autopilot  string             `json:"autopilot"`
	Metrics    map[string]float64 `json:"metrics"`
	Error      string             `json:"error,omitempty"`
}

// Header is the column layout of states.csv.
func Header() []string {
	header := []string{"time"}
	header = append(header, kinematics.SlotNames[:]...)
	for _, r := range tyre.Roles {
		header = append(header, "depth_"+r.String())
	}
	return append(header, "grounded", "thrust", "front_brake", "left_brake", "right_brake")
}

// Save writes the run under a fresh id. runErr is the error that ended a
// partial run, if any.
func (s *Store) Save(cfg *config.Config, result *testbed.Result, runErr error) (string, error) {
	if result == nil {
		return "", dynamo.InvalidArgument("result is nil")
	}
	runID := fmt.Sprintf("%s_%s", cfg.Name, uuid.NewString())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       cfg.Name,
		DroneID:    result.DroneID,
		Timestamp:  time.Now().UTC(),
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Steps:      result.StepsTaken,
		Integrator: cfg.Integrator,
		Autopilot:  cfg.Autopilot,
		Metrics:    result.Metrics,
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, statesFile), result.Samples); err != nil {
		return "", err
	}

	if s.index != nil {
		if err := s.index.Record(meta); err != nil {
			return runID, fmt.Errorf("index run %s: %w", runID, err)
		}
	}
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeSamples(path string, samples []metrics.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header()); err != nil {
		return err
	}
	for _, smp := range samples {
		if err := w.Write(sampleRow(smp)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sampleRow(smp metrics.Sample) []string {
	row := make([]string, 0, len(Header()))
	row = append(row, formatFloat(smp.Time))
	for _, v := range smp.State.Vector() {
		row = append(row, formatFloat(v))
	}
	for _, d := range smp.Depths {
		row = append(row, formatFloat(d))
	}
	row = append(row, strconv.Itoa(smp.Grounded), formatFloat(smp.Outputs.Thrust))
	for _, b := range smp.Outputs.Brakes() {
		row = append(row, formatFloat(b))
	}
	return row
}

// List returns the metadata of every stored run, newest first.
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
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads the stored trace back. Wing and stabiliser
// inclinations are not stored and come back as zero.
func (s *Store) LoadSamples(runID string) ([]metrics.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header())

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s states: %w", runID, err)
	}
	if len(records) < 2 {
		return []metrics.Sample{}, nil
	}

	samples := make([]metrics.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		smp, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%s states row %d: %w", runID, i+1, err)
		}
		smp.Step = i
		samples = append(samples, smp)
	}
	return samples, nil
}

func parseRow(record []string) (metrics.Sample, error) {
	values := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return metrics.Sample{}, err
		}
		values[i] = v
	}

	state, err := kinematics.FromVector(dynamo.State(values[1 : 1+kinematics.Dim]))
	if err != nil {
		return metrics.Sample{}, err
	}
	rest := values[1+kinematics.Dim:]

	return metrics.Sample{
		Time:     values[0],
		State:    state,
		Depths:   [3]float64{rest[0], rest[1], rest[2]},
		Grounded: int(rest[3]),
		Outputs: dynamics.Actuators{
			Thrust:          rest[4],
			FrontBrakeForce: rest[5],
			LeftBrakeForce:  rest[6],
			RightBrakeForce: rest[7],
		},
	}, nil
}

// Delete removes a stored run and its index entry.
func (s *Store) Delete(runID string) error {
	runDir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(runDir); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err := os.RemoveAll(runDir); err != nil {
		return err
	}
	if s.index != nil {
		return s.index.Delete(runID)
	}
	return nil
}

// LoadResult rebuilds the run settings and trace of a stored run, enough
// to export or analyse it again.
func (s *Store) LoadResult(runID string) (*config.Config, *testbed.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.DefaultConfig()
	cfg.Name = meta.Name
	cfg.Drone.ID = meta.DroneID
	cfg.Integrator = meta.Integrator
	cfg.Autopilot = meta.Autopilot
	cfg.Dt = meta.Dt
	cfg.Duration = meta.Duration

	return cfg, &testbed.Result{
		DroneID:    meta.DroneID,
		Samples:    samples,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}, nil
}
