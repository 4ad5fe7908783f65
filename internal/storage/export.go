package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/dynamics"
	"github.com/san-kum/dronesim/internal/testbed"
)

type ExportData struct {
	Name       string               `json:"name"`
	DroneID    string               `json:"drone_id"`
	Integrator string               `json:"integrator"`
	Autopilot  string               `json:"autopilot"`
	Dt         float64              `json:"dt"`
	Duration   float64              `json:"duration"`
	Steps      int                  `json:"steps"`
	Times      []float64            `json:"times"`
	States     [][]float64          `json:"states"`
	Depths     [][3]float64         `json:"depths"`
	Grounded   []int                `json:"grounded"`
	Outputs    []dynamics.Actuators `json:"outputs"`
	Metrics    map[string]float64   `json:"metrics"`
}

// NewExportData flattens a run result for JSON consumers.
func NewExportData(cfg *config.Config, result *testbed.Result) ExportData {
	data := ExportData{
		Name:       cfg.Name,
		DroneID:    result.DroneID,
		Integrator: cfg.Integrator,
		Autopilot:  cfg.Autopilot,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Steps:      result.StepsTaken,
		Times:      result.Times(),
		States:     make([][]float64, len(result.Samples)),
		Depths:     make([][3]float64, len(result.Samples)),
		Grounded:   make([]int, len(result.Samples)),
		Outputs:    make([]dynamics.Actuators, len(result.Samples)),
		Metrics:    result.Metrics,
	}
	for i, s := range result.Samples {
		data.States[i] = s.State.Vector()
		data.Depths[i] = s.Depths
		data.Grounded[i] = s.Grounded
		data.Outputs[i] = s.Outputs
	}
	return data
}

func ExportJSON(w io.Writer, cfg *config.Config, result *testbed.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(cfg, result))
}
