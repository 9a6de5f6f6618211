package disturbance

import (
	"fmt"

	"github.com/san-kum/boilersim/internal/dynamo"
)

// Profile describes the hot-water draw as a pure function of time. Implementations must be
// safe to evaluate in any order and any number of times.
type Profile interface {
	Flow(t float64) float64
}

// Boxcar draws FlowLPS during [StartS, EndS] and nothing outside it.
type Boxcar struct {
	FlowLPS float64 `json:"flow_lps"`
	StartS  float64 `json:"start_s"`
	EndS    float64 `json:"end_s"`
}

func NewBoxcar(flowLPS, startS, endS float64) (Boxcar, error) {
	b := Boxcar{FlowLPS: flowLPS, StartS: startS, EndS: endS}
	if err := b.Validate(); err != nil {
		return Boxcar{}, err
	}
	return b, nil
}

func (b Boxcar) Validate() error {
	if err := dynamo.RequireNonNegative("flow", b.FlowLPS); err != nil {
		return err
	}
	if err := dynamo.RequireFinite("shower_start_s", b.StartS); err != nil {
		return err
	}
	if err := dynamo.RequireFinite("shower_end_s", b.EndS); err != nil {
		return err
	}
	if b.EndS < b.StartS {
		return dynamo.Invalid("shower_end_s", b.EndS, fmt.Sprintf("must not precede shower_start_s (%v)", b.StartS))
	}
	return nil
}

func (b Boxcar) Flow(t float64) float64 {
	if t >= b.StartS && t <= b.EndS {
		return b.FlowLPS
	}
	return 0
}

// None never draws.
type None struct{}

func (None) Flow(float64) float64 { return 0 }

// Constant draws the same flow at every instant.
type Constant float64

func (c Constant) Validate() error { return dynamo.RequireNonNegative("flow", float64(c)) }

func (c Constant) Flow(float64) float64 { return float64(c) }

// Schedule sums several boxcar windows; overlapping windows add up.
type Schedule []Boxcar

func (s Schedule) Validate() error {
	for i, b := range s {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("window %d: %w", i, err)
		}
	}
	return nil
}

func (s Schedule) Flow(t float64) float64 {
	q := 0.0
	for _, b := range s {
		q += b.Flow(t)
	}
	return q
}
