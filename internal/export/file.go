package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/boilersim/internal/config"
	"github.com/san-kum/boilersim/internal/dynamo"
)

// SaveFile writes a trajectory in the format given by the file extension: .csv (with the
// energy column), .json, or .svg (temperature).
func SaveFile(path string, traj *dynamo.Trajectory, cfg *config.Config) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".json", ".svg":
	default:
		return fmt.Errorf("export: unsupported file extension %q", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch ext {
	case ".csv":
		err = WriteCSV(f, traj, CSVOptions{Energy: true})
	case ".json":
		err = WriteJSON(f, traj, cfg)
	default:
		err = WriteSVG(f, traj, "temperature", DefaultSVGOptions())
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// LoadCSV reads a trajectory written with SaveFile or WriteCSV.
func LoadCSV(path string) (*dynamo.Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}
