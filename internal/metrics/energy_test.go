package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/boilersim/internal/config"
	"github.com/san-kum/boilersim/internal/dynamo"
	"github.com/san-kum/boilersim/internal/physics"
	"github.com/san-kum/boilersim/internal/sim"
)

func testParams() physics.BoilerParams {
	return physics.BoilerParams{C: 334880, KLoss: 5, KDraw: 4186, TOut: 22, TCold: 10}
}

func TestHeaterEnergy(t *testing.T) {
	m := NewHeaterEnergy(testParams())

	for i := 0; i < 3600; i++ {
		m.Observe(dynamo.Sample{Power: 1000, Temperature: 10}, 1)
	}

	if math.Abs(m.Value()-1.0) > 1e-12 {
		t.Errorf("expected 1 kWh, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestLossAndDrawUseStartTemperature(t *testing.T) {
	p := testParams()
	loss := NewLossEnergy(p)
	draw := NewDrawEnergy(p)

	// First tick starts from TCold: loss is negative (ambient heats the tank), draw is zero.
	s := dynamo.Sample{Temperature: 40, QOut: 0.1}
	loss.Observe(s, 10)
	draw.Observe(s, 10)

	if want := 5 * (10.0 - 22) * 10; loss.Joules() != want {
		t.Errorf("expected loss %f J, got %f", want, loss.Joules())
	}
	if draw.Joules() != 0 {
		t.Errorf("expected no draw energy at cold temperature, got %f", draw.Joules())
	}

	loss.Observe(s, 10)
	draw.Observe(s, 10)
	if want := 5*(10.0-22)*10 + 5*(40.0-22)*10; loss.Joules() != want {
		t.Errorf("expected loss %f J, got %f", want, loss.Joules())
	}
	if want := 4186 * 0.1 * (40.0 - 10) * 10; math.Abs(draw.Joules()-want) > 1e-9 {
		t.Errorf("expected draw %f J, got %f", want, draw.Joules())
	}
}

func TestEnergyBalanceCloses(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Draw.FlowLPerMin = 8

	d, err := cfg.Derive()
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	s, err := sim.FromConfig(cfg, sim.WithMetrics(Standard(d.Params, d.Controller)...))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	traj, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, name := range Names {
		if _, ok := traj.Metrics[name]; !ok {
			t.Errorf("missing metric %q", name)
		}
	}

	stored := d.Params.C * (traj.Last().Temperature - d.Params.TCold) / JoulesPerKWh
	net := traj.Metrics["heater_kwh"] - traj.Metrics["loss_kwh"] - traj.Metrics["draw_kwh"]
	if math.Abs(stored-net) > 1e-9*math.Max(1, math.Abs(stored)) {
		t.Errorf("energy balance: stored %f kWh, net %f kWh", stored, net)
	}

	cum := traj.CumulativeHeaterEnergy()
	if got := cum[len(cum)-1] / JoulesPerKWh; math.Abs(got-traj.Metrics["heater_kwh"]) > 1e-9 {
		t.Errorf("cumulative heater energy %f kWh, metric %f kWh", got, traj.Metrics["heater_kwh"])
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	if m.Value() != 0 {
		t.Error("expected zero before any sample")
	}

	for _, p := range []float64{0, 1000, 2000} {
		m.Observe(dynamo.Sample{Power: p}, 1)
	}
	if m.Value() != 1000 {
		t.Errorf("expected mean power 1000, got %f", m.Value())
	}
}

func TestSaturation(t *testing.T) {
	tests := []struct {
		name   string
		pMax   float64
		powers []float64
		want   float64
	}{
		{"none", 2000, []float64{0, 500, 1999}, 0},
		{"half", 2000, []float64{2000, 100, 2000, 0}, 0.5},
		{"heater off never saturates", 0, []float64{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSaturation(tt.pMax)
			for _, p := range tt.powers {
				m.Observe(dynamo.Sample{Power: p}, 1)
			}
			if m.Value() != tt.want {
				t.Errorf("expected %f, got %f", tt.want, m.Value())
			}
		})
	}
}

func TestTracking(t *testing.T) {
	iae := NewIAE(55)
	over := NewOvershoot(55)

	for _, temp := range []float64{50, 56, 57.5, 55} {
		s := dynamo.Sample{Temperature: temp}
		iae.Observe(s, 2)
		over.Observe(s, 2)
	}

	if want := (5 + 1 + 2.5 + 0) * 2.0; iae.Value() != want {
		t.Errorf("expected IAE %f, got %f", want, iae.Value())
	}
	if over.Value() != 2.5 {
		t.Errorf("expected overshoot 2.5, got %f", over.Value())
	}

	over.Reset()
	over.Observe(dynamo.Sample{Temperature: 40}, 1)
	if over.Value() != 0 {
		t.Errorf("expected no overshoot below setpoint, got %f", over.Value())
	}
}

func TestValid(t *testing.T) {
	if !Valid("iae") || Valid("energy") {
		t.Error("unexpected metric name validation")
	}
}
