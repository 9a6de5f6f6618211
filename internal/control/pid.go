package control

import (
	"math"

	"github.com/san-kum/boilersim/internal/dynamo"
)

// Config is the tuning of a heater PID loop. Ti and Td are in seconds; zero disables the
// corresponding action.
type Config struct {
	TSet float64 `json:"t_set"`
	Kp   float64 `json:"kp"`
	Ti   float64 `json:"ti"`
	Td   float64 `json:"td"`
	PMax float64 `json:"p_max"`
}

func (c Config) Validate() error {
	if err := dynamo.RequireFinite("t_set", c.TSet); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"kp", c.Kp},
		{"ti", c.Ti},
		{"td", c.Td},
		{"p_max", c.PMax},
	} {
		if err := dynamo.RequireNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// Ki returns the integral gain Kp/Ti, or 0 when integral action is off.
func (c Config) Ki() float64 {
	if c.Ti > 0 {
		return c.Kp / c.Ti
	}
	return 0
}

// Kd returns the derivative gain Kp·Td, or 0 when derivative action is off.
func (c Config) Kd() float64 {
	if c.Td > 0 {
		return c.Kp * c.Td
	}
	return 0
}

// Params returns the tunable parameters for display.
func (c Config) Params() map[string]float64 {
	return map[string]float64{
		"T_set": c.TSet,
		"Kp":    c.Kp,
		"Ti":    c.Ti,
		"Td":    c.Td,
		"P_max": c.PMax,
	}
}

// State is the mutable memory of one controller.
type State struct {
	Integral      float64 // accumulated error·time, °C·s
	PreviousError float64
}

// Output is the result of one controller update.
type Output struct {
	Power float64 // clamped to [0, PMax]
	PTerm float64
	ITerm float64
	DTerm float64
}

// Command returns the unclamped sum of the three terms.
func (o Output) Command() float64 { return o.PTerm + o.ITerm + o.DTerm }

// PID is a positional PID controller driving a heater in [0, PMax].
// A PID must not be shared between simulation runs.
type PID struct {
	cfg   Config
	aw    AntiWindup
	ki    float64
	kd    float64
	state State
	first bool
}

// NewPID builds a controller. A nil anti-windup policy falls back to Clamping.
func NewPID(cfg Config, aw AntiWindup) *PID {
	if aw == nil {
		aw = Clamping{}
	}
	return &PID{
		cfg:   cfg,
		aw:    aw,
		ki:    cfg.Ki(),
		kd:    cfg.Kd(),
		first: true,
	}
}

func (p *PID) Config() Config         { return p.cfg }
func (p *PID) AntiWindup() AntiWindup { return p.aw }
func (p *PID) State() State           { return p.state }

// Prime starts the controller from a measurement: the integral is cleared and the previous
// error is set to the current error so the first derivative term is zero.
func (p *PID) Prime(measurement float64) {
	p.state = State{PreviousError: p.cfg.TSet - measurement}
	p.first = false
}

// Reset clears integral and derivative state; the next Update primes again.
func (p *PID) Reset() {
	p.state = State{}
	p.first = true
}

// Update computes the heater command for one tick of length dt. The integral term uses the
// integral accumulated before this tick.
func (p *PID) Update(measurement, dt float64) Output {
	if p.first {
		p.Prime(measurement)
	}

	e := p.cfg.TSet - measurement

	out := Output{PTerm: p.cfg.Kp * e}
	if p.ki > 0 {
		out.ITerm = p.ki * p.state.Integral
	}
	if p.kd > 0 && dt > 0 {
		out.DTerm = p.kd * (e - p.state.PreviousError) / dt
	}

	u := out.Command()
	out.Power = math.Max(0, math.Min(u, p.cfg.PMax))

	if p.ki > 0 {
		p.state.Integral = p.aw.Integrate(p.state.Integral, Step{
			Error:   e,
			Dt:      dt,
			Ki:      p.ki,
			Command: u,
			Output:  out.Power,
			PMax:    p.cfg.PMax,
		})
	}

	p.state.PreviousError = e
	return out
}
