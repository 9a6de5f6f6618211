package metrics

import (
	"github.com/san-kum/boilersim/internal/dynamo"
)

// ControlEffort is the mean heater power in W.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "mean_power",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s dynamo.Sample, dt float64) {
	c.sum += s.Power
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Saturation is the fraction of ticks with the heater at full power.
type Saturation struct {
	name      string
	pMax      float64
	saturated int
	samples   int
}

func NewSaturation(pMax float64) *Saturation {
	return &Saturation{
		name: "saturation",
		pMax: pMax,
	}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(sample dynamo.Sample, dt float64) {
	s.samples++
	if s.pMax > 0 && sample.Power >= s.pMax {
		s.saturated++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
