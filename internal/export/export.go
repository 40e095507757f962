// Package export renders stored trajectories as JSON, SVG, PNG and HTML.
package export

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

var ErrTooShort = errors.New("export: trajectory needs at least two states")

type Data struct {
	ID        string             `json:"id,omitempty"`
	Preset    string             `json:"preset,omitempty"`
	Dt        float64            `json:"dt"`
	FinalTime float64            `json:"final_time"`
	Steps     int                `json:"steps"`
	Times     []float64          `json:"times"`
	States    []vehicle.State    `json:"states"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

func NewData(tr *sim.Trajectory, dt, finalTime float64) Data {
	return Data{
		Dt:        dt,
		FinalTime: finalTime,
		Steps:     max(tr.Len()-1, 0),
		Times:     tr.Times,
		States:    tr.States,
	}
}

func JSON(w io.Writer, data Data) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
