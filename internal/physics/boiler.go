package physics

import "github.com/san-kum/boilersim/internal/dynamo"

const (
	SpecificHeatWater = 4186.0 // J/(kg·°C)
	WaterDensity      = 1.0    // kg/L

	DefaultKDraw = 4186.0 // W per °C per L/s
	DefaultTOut  = 22.0
	DefaultTCold = 10.0
)

// BoilerParams holds the lumped parameters of a single well-mixed tank.
type BoilerParams struct {
	C     float64 `json:"c"`      // heat capacity, J/°C
	KLoss float64 `json:"k_loss"` // ambient loss coefficient, W/°C
	KDraw float64 `json:"k_draw"` // draw cooling coefficient, W/(°C·L/s)
	TOut  float64 `json:"t_out"`  // ambient temperature, °C
	TCold float64 `json:"t_cold"` // cold supply temperature, °C
}

func (p BoilerParams) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"k_loss", p.KLoss},
		{"k_draw", p.KDraw},
		{"t_out", p.TOut},
		{"t_cold", p.TCold},
	} {
		if err := dynamo.RequireFinite(f.name, f.v); err != nil {
			return err
		}
	}
	return dynamo.RequirePositive("C", p.C)
}

// PowerBalance is the instantaneous power flow of the tank, in watts.
type PowerBalance struct {
	In   float64
	Loss float64
	Draw float64
}

func (b PowerBalance) Net() float64 { return b.In - b.Loss - b.Draw }

func Balance(T, pIn, qOut float64, p BoilerParams) PowerBalance {
	return PowerBalance{
		In:   pIn,
		Loss: p.KLoss * (T - p.TOut),
		Draw: p.KDraw * qOut * (T - p.TCold),
	}
}

// Derivative returns dT/dt in °C/s.
func Derivative(T, pIn, qOut float64, p BoilerParams) float64 {
	return Balance(T, pIn, qOut, p).Net() / p.C
}

// Step advances the tank temperature by one explicit Euler step. The result is not
// clamped; a first-order model may leave the physical range.
func Step(T, pIn, qOut float64, p BoilerParams, dt float64) float64 {
	return T + dt*Derivative(T, pIn, qOut, p)
}

// Equilibrium returns the temperature at which constant inputs balance. ok is false when
// neither loss nor draw couples the tank to anything.
func Equilibrium(pIn, qOut float64, p BoilerParams) (temp float64, ok bool) {
	g := p.KLoss + p.KDraw*qOut
	if g == 0 {
		return 0, false
	}
	return (pIn + p.KLoss*p.TOut + p.KDraw*qOut*p.TCold) / g, true
}
