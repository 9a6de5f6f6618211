package metrics

import (
	"math"

	"github.com/san-kum/boilersim/internal/dynamo"
)

// IAE is the integral of absolute setpoint error, in °C·s.
type IAE struct {
	setpoint float64
	sum      float64
}

func NewIAE(setpoint float64) *IAE {
	return &IAE{setpoint: setpoint}
}

func (m *IAE) Name() string { return "iae" }

func (m *IAE) Observe(s dynamo.Sample, dt float64) {
	m.sum += math.Abs(m.setpoint-s.Temperature) * dt
}

func (m *IAE) Value() float64 { return m.sum }
func (m *IAE) Reset()         { m.sum = 0 }

// Overshoot is the largest excursion above the setpoint, in °C. It is 0 when the
// temperature never exceeds the setpoint.
type Overshoot struct {
	setpoint float64
	max      float64
}

func NewOvershoot(setpoint float64) *Overshoot {
	return &Overshoot{setpoint: setpoint}
}

func (m *Overshoot) Name() string { return "overshoot" }

func (m *Overshoot) Observe(s dynamo.Sample, dt float64) {
	m.max = math.Max(m.max, s.Temperature-m.setpoint)
}

func (m *Overshoot) Value() float64 { return m.max }
func (m *Overshoot) Reset()         { m.max = 0 }
