// Package export writes trajectories as CSV, JSON and SVG.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/boilersim/internal/dynamo"
)

// EnergyColumn is the optional cumulative heater energy column, in joules.
const EnergyColumn = "energy_in_j"

// CSVOptions controls WriteCSV.
type CSVOptions struct {
	Energy bool // append EnergyColumn
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one row per sample with a header of dynamo.Columns.
func WriteCSV(w io.Writer, traj *dynamo.Trajectory, opts CSVOptions) error {
	cw := csv.NewWriter(w)

	header := append([]string{}, dynamo.Columns...)
	if opts.Energy {
		header = append(header, EnergyColumn)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	var energy []float64
	if opts.Energy {
		energy = traj.CumulativeHeaterEnergy()
	}

	row := make([]string, len(header))
	for i, s := range traj.Samples {
		row[0] = formatFloat(s.Time)
		row[1] = formatFloat(s.Temperature)
		row[2] = formatFloat(s.Power)
		row[3] = formatFloat(s.QOut)
		row[4] = formatFloat(s.PTerm)
		row[5] = formatFloat(s.ITerm)
		row[6] = formatFloat(s.DTerm)
		if opts.Energy {
			row[7] = formatFloat(energy[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file written by WriteCSV. Columns are matched by header name; extra
// columns are ignored and missing ones read as zero, except time which is required. Dt is
// taken from the first two rows.
func ReadCSV(r io.Reader) (*dynamo.Trajectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("export: empty csv")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}
	if _, ok := index["time"]; !ok {
		return nil, fmt.Errorf("export: csv has no time column")
	}

	traj := dynamo.NewTrajectory(0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		var s dynamo.Sample
		for _, col := range dynamo.Columns {
			i, ok := index[col]
			if !ok || i >= len(record) {
				continue
			}
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return nil, fmt.Errorf("export: line %d column %s: %w", line+2, col, err)
			}
			setColumn(&s, col, v)
		}
		traj.Append(s)
	}

	if traj.Len() > 1 {
		traj.Dt = traj.Samples[1].Time - traj.Samples[0].Time
	}
	return traj, nil
}

func setColumn(s *dynamo.Sample, col string, v float64) {
	switch col {
	case "time":
		s.Time = v
	case "temperature":
		s.Temperature = v
	case "power":
		s.Power = v
	case "q_out":
		s.QOut = v
	case "P_term":
		s.PTerm = v
	case "I_term":
		s.ITerm = v
	case "D_term":
		s.DTerm = v
	}
}
