package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/boilersim/internal/config"
	"github.com/san-kum/boilersim/internal/dynamo"
)

// Document is the JSON form of one run.
type Document struct {
	Config  *config.Config     `json:"config,omitempty"`
	Dt      float64            `json:"dt"`
	Steps   int                `json:"steps"`
	Columns []string           `json:"columns"`
	Samples []dynamo.Sample    `json:"samples"`
	Metrics map[string]float64 `json:"metrics"`
}

// NewDocument wraps a trajectory and, optionally, the configuration that produced it.
func NewDocument(traj *dynamo.Trajectory, cfg *config.Config) Document {
	return Document{
		Config:  cfg,
		Dt:      traj.Dt,
		Steps:   traj.Len() - 1,
		Columns: dynamo.Columns,
		Samples: traj.Samples,
		Metrics: traj.Metrics,
	}
}

func WriteJSON(w io.Writer, traj *dynamo.Trajectory, cfg *config.Config) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewDocument(traj, cfg))
}
