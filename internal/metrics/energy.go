package metrics

import (
	"github.com/san-kum/boilersim/internal/dynamo"
	"github.com/san-kum/boilersim/internal/physics"
)

// JoulesPerKWh converts joules to kilowatt-hours.
const JoulesPerKWh = 3.6e6

// Flow selects one of the power flows of the tank.
type Flow int

const (
	Heater Flow = iota
	Loss
	Draw
)

func (f Flow) String() string {
	switch f {
	case Heater:
		return "heater"
	case Loss:
		return "loss"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// Energy integrates one power flow over a run, in kWh. Loss and draw are evaluated at the
// temperature the tick started from, the same one the model step used.
type Energy struct {
	name   string
	flow   Flow
	params physics.BoilerParams
	prevT  float64
	joules float64
}

func NewEnergy(flow Flow, p physics.BoilerParams) *Energy {
	e := &Energy{
		name:   flow.String() + "_kwh",
		flow:   flow,
		params: p,
	}
	e.Reset()
	return e
}

func NewHeaterEnergy(p physics.BoilerParams) *Energy { return NewEnergy(Heater, p) }
func NewLossEnergy(p physics.BoilerParams) *Energy   { return NewEnergy(Loss, p) }
func NewDrawEnergy(p physics.BoilerParams) *Energy   { return NewEnergy(Draw, p) }

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s dynamo.Sample, dt float64) {
	b := physics.Balance(e.prevT, s.Power, s.QOut, e.params)
	switch e.flow {
	case Heater:
		e.joules += b.In * dt
	case Loss:
		e.joules += b.Loss * dt
	case Draw:
		e.joules += b.Draw * dt
	}
	e.prevT = s.Temperature
}

func (e *Energy) Value() float64 {
	return e.joules / JoulesPerKWh
}

// Joules returns the integrated energy in joules.
func (e *Energy) Joules() float64 {
	return e.joules
}

func (e *Energy) Reset() {
	e.joules = 0
	e.prevT = e.params.TCold
}
