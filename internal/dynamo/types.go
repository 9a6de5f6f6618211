package dynamo

import (
	"fmt"
	"math"
)

// Columns lists the output series in export order.
var Columns = []string{"time", "temperature", "power", "q_out", "P_term", "I_term", "D_term"}

// Sample is one row of a trajectory.
type Sample struct {
	Time        float64 `json:"time"`
	Temperature float64 `json:"temperature"`
	Power       float64 `json:"power"`
	QOut        float64 `json:"q_out"`
	PTerm       float64 `json:"P_term"`
	ITerm       float64 `json:"I_term"`
	DTerm       float64 `json:"D_term"`
}

func (s Sample) IsValid() bool {
	for _, v := range [...]float64{s.Time, s.Temperature, s.Power, s.QOut, s.PTerm, s.ITerm, s.DTerm} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Value returns the field named by column.
func (s Sample) Value(column string) (float64, error) {
	switch column {
	case "time":
		return s.Time, nil
	case "temperature":
		return s.Temperature, nil
	case "power":
		return s.Power, nil
	case "q_out":
		return s.QOut, nil
	case "P_term":
		return s.PTerm, nil
	case "I_term":
		return s.ITerm, nil
	case "D_term":
		return s.DTerm, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
}

type Metric interface {
	Name() string
	Observe(s Sample, dt float64)
	Value() float64
	Reset()
}

// MetricFactory builds a fresh Metric for one run.
type MetricFactory func() Metric

type Observer interface {
	OnSample(s Sample)
}

// Trajectory is the ordered, append-only output of one run.
type Trajectory struct {
	Dt      float64
	Samples []Sample
	Metrics map[string]float64
}

func NewTrajectory(dt float64, capacity int) *Trajectory {
	return &Trajectory{
		Dt:      dt,
		Samples: make([]Sample, 0, capacity),
		Metrics: make(map[string]float64),
	}
}

func (t *Trajectory) Append(s Sample) { t.Samples = append(t.Samples, s) }
func (t *Trajectory) Len() int        { return len(t.Samples) }

// Last returns the final sample, or the zero Sample for an empty trajectory.
func (t *Trajectory) Last() Sample {
	if len(t.Samples) == 0 {
		return Sample{}
	}
	return t.Samples[len(t.Samples)-1]
}

// Column extracts one series by name.
func (t *Trajectory) Column(name string) ([]float64, error) {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		v, err := s.Value(name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (t *Trajectory) Times() []float64        { return t.pick(func(s Sample) float64 { return s.Time }) }
func (t *Trajectory) Temperatures() []float64 { return t.pick(func(s Sample) float64 { return s.Temperature }) }
func (t *Trajectory) Powers() []float64       { return t.pick(func(s Sample) float64 { return s.Power }) }
func (t *Trajectory) Flows() []float64        { return t.pick(func(s Sample) float64 { return s.QOut }) }
func (t *Trajectory) PTerms() []float64       { return t.pick(func(s Sample) float64 { return s.PTerm }) }
func (t *Trajectory) ITerms() []float64       { return t.pick(func(s Sample) float64 { return s.ITerm }) }
func (t *Trajectory) DTerms() []float64       { return t.pick(func(s Sample) float64 { return s.DTerm }) }

func (t *Trajectory) pick(f func(Sample) float64) []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = f(s)
	}
	return out
}

// CumulativeHeaterEnergy returns the heater energy in joules delivered up to each sample.
// The power of sample k is held over the tick that produced it.
func (t *Trajectory) CumulativeHeaterEnergy() []float64 {
	out := make([]float64, len(t.Samples))
	for i := 1; i < len(t.Samples); i++ {
		out[i] = out[i-1] + t.Samples[i].Power*t.Dt
	}
	return out
}

// Window returns the samples with from <= Time <= to.
func (t *Trajectory) Window(from, to float64) []Sample {
	out := make([]Sample, 0)
	for _, s := range t.Samples {
		if s.Time >= from && s.Time <= to {
			out = append(out, s)
		}
	}
	return out
}
