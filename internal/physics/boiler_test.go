package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/boilersim/internal/dynamo"
)

func testParams() BoilerParams {
	return BoilerParams{
		C:     80 * SpecificHeatWater,
		KLoss: 5,
		KDraw: DefaultKDraw,
		TOut:  DefaultTOut,
		TCold: DefaultTCold,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BoilerParams)
		wantErr bool
	}{
		{"valid", func(*BoilerParams) {}, false},
		{"zero heat capacity", func(p *BoilerParams) { p.C = 0 }, true},
		{"negative heat capacity", func(p *BoilerParams) { p.C = -1 }, true},
		{"NaN loss", func(p *BoilerParams) { p.KLoss = math.NaN() }, true},
		{"Inf ambient", func(p *BoilerParams) { p.TOut = math.Inf(1) }, true},
		{"zero loss is allowed", func(p *BoilerParams) { p.KLoss = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestStepEnergyBalance(t *testing.T) {
	p := testParams()

	tests := []struct {
		name string
		T    float64
		pIn  float64
		qOut float64
		want float64
	}{
		{"at ambient, no input", 22, 0, 0, 22},
		{"heating only", 22, p.C, 0, 23},
		{"loss only", 32, 0, 0, 32 - 50/p.C},
		{"draw only", 22, 0.5 * p.KDraw * 12, 0.1, 22 + (0.5*p.KDraw*12-p.KDraw*0.1*12)/p.C},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Step(tt.T, tt.pIn, tt.qOut, p, 1.0)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Step() = %.12f, want %.12f", got, tt.want)
			}
		})
	}
}

func TestStepScalesWithDt(t *testing.T) {
	p := testParams()
	d1 := Step(40, 1000, 0.05, p, 1) - 40
	d5 := Step(40, 1000, 0.05, p, 5) - 40
	if math.Abs(d5-5*d1) > 1e-12 {
		t.Errorf("explicit Euler increment should be linear in dt: %v vs %v", d5, 5*d1)
	}
}

func TestStepIsNotClamped(t *testing.T) {
	p := testParams()
	p.C = 1
	got := Step(10, 0, 1, p, 1)
	if got >= p.TCold {
		t.Fatalf("expected an unphysical undershoot below TCold, got %v", got)
	}
}

func TestBalance(t *testing.T) {
	p := testParams()
	b := Balance(60, 2000, 0.1, p)
	if b.In != 2000 {
		t.Errorf("In = %v", b.In)
	}
	if b.Loss != 5*(60-22) {
		t.Errorf("Loss = %v", b.Loss)
	}
	if math.Abs(b.Draw-p.KDraw*0.1*50) > 1e-9 {
		t.Errorf("Draw = %v", b.Draw)
	}
	if math.Abs(b.Net()-(b.In-b.Loss-b.Draw)) > 1e-12 {
		t.Errorf("Net = %v", b.Net())
	}
}

func TestEquilibrium(t *testing.T) {
	p := testParams()

	eq, ok := Equilibrium(0, 0, p)
	if !ok || eq != p.TOut {
		t.Errorf("no input, no draw: got %v (ok=%v), want %v", eq, ok, p.TOut)
	}

	eq, ok = Equilibrium(500, 0.1, p)
	if !ok {
		t.Fatal("expected equilibrium")
	}
	if d := Derivative(eq, 500, 0.1, p); math.Abs(d) > 1e-12 {
		t.Errorf("derivative at equilibrium = %v", d)
	}

	p.KLoss = 0
	if _, ok := Equilibrium(100, 0, p); ok {
		t.Error("expected no equilibrium for an isolated tank")
	}
}
