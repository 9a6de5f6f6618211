package config

import (
	"fmt"
	"math"

	"github.com/san-kum/boilersim/internal/control"
	"github.com/san-kum/boilersim/internal/disturbance"
	"github.com/san-kum/boilersim/internal/dynamo"
	"github.com/san-kum/boilersim/internal/physics"
)

// HeatCapacity returns the heat capacity in J/°C of volumeL litres of water.
func HeatCapacity(volumeL float64) float64 {
	return volumeL * physics.WaterDensity * physics.SpecificHeatWater
}

// LossCoefficient scales the reference loss with tank surface area, which grows with the
// 2/3 power of volume.
func LossCoefficient(volumeL, kLossRef, vRef float64) float64 {
	return kLossRef * math.Pow(volumeL/vRef, 2.0/3.0)
}

// FlowLPS converts litres per minute to litres per second.
func FlowLPS(lpm float64) float64 {
	return lpm / 60.0
}

// Params derives the physical tank parameters.
func (t TankConfig) Params() physics.BoilerParams {
	return physics.BoilerParams{
		C:     HeatCapacity(t.VolumeL),
		KLoss: LossCoefficient(t.VolumeL, t.KLossRef, t.VRef),
		KDraw: t.KDraw,
		TOut:  t.TOut,
		TCold: t.TCold,
	}
}

func (c ControllerConfig) Control() control.Config {
	return control.Config{TSet: c.TSet, Kp: c.Kp, Ti: c.Ti, Td: c.Td, PMax: c.PMax}
}

// Build returns the draw profile in L/s.
func (d DrawConfig) Build() (disturbance.Profile, error) {
	switch d.Profile {
	case "boxcar", "":
		return disturbance.NewBoxcar(FlowLPS(d.FlowLPerMin), d.StartS, d.EndS)
	case "none":
		return disturbance.None{}, nil
	case "constant":
		if err := dynamo.RequireNonNegative("flow_l_per_min", d.FlowLPerMin); err != nil {
			return nil, err
		}
		return disturbance.Constant(FlowLPS(d.FlowLPerMin)), nil
	case "schedule":
		s := make(disturbance.Schedule, 0, len(d.Windows))
		for _, w := range d.Windows {
			s = append(s, disturbance.Boxcar{FlowLPS: FlowLPS(w.FlowLPerMin), StartS: w.StartS, EndS: w.EndS})
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, dynamo.Invalid("draw.profile", d.Profile, "expected boxcar, none, constant or schedule")
	}
}

// Derived is everything the driver needs for one run.
type Derived struct {
	Params     physics.BoilerParams
	Profile    disturbance.Profile
	Controller control.Config
	AntiWindup control.AntiWindup
	Dt         float64
	TotalTime  float64
}

// Validate rejects configurations the engine cannot run. Degenerate values such as zero
// gains or zero heater power are accepted.
func (c *Config) Validate() error {
	if err := dynamo.RequirePositive("dt", c.Run.Dt); err != nil {
		return err
	}
	if err := dynamo.RequirePositive("total_time", c.Run.TotalTime); err != nil {
		return err
	}
	if err := dynamo.RequireSteps(c.Run.Dt, c.Run.TotalTime); err != nil {
		return err
	}
	if err := dynamo.RequirePositive("volume_l", c.Tank.VolumeL); err != nil {
		return err
	}
	if err := dynamo.RequirePositive("v_ref", c.Tank.VRef); err != nil {
		return err
	}
	if err := dynamo.RequireNonNegative("k_loss_ref", c.Tank.KLossRef); err != nil {
		return err
	}
	if err := dynamo.RequireNonNegative("k_draw", c.Tank.KDraw); err != nil {
		return err
	}
	if err := c.Tank.Params().Validate(); err != nil {
		return err
	}
	if err := c.Controller.Control().Validate(); err != nil {
		return err
	}
	if _, err := control.ParseKind(c.Controller.AntiWindup); err != nil {
		return dynamo.Invalid("anti_windup", c.Controller.AntiWindup, err.Error())
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"integral_limit", c.Controller.IntegralLimit},
		{"tracking_time", c.Controller.TrackingTime},
		{"band", c.Controller.Band},
	} {
		if err := dynamo.RequireNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	if _, err := c.Draw.Build(); err != nil {
		return err
	}
	return nil
}

// Derive validates the configuration and maps it to physical parameters, draw profile and
// controller tuning.
func (c *Config) Derive() (*Derived, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	params := c.Tank.Params()
	profile, err := c.Draw.Build()
	if err != nil {
		return nil, err
	}

	ctrl := c.Controller.Control()
	kind, _ := control.ParseKind(c.Controller.AntiWindup)
	aw, err := control.New(kind, ctrl, control.Options{
		Limit:        c.Controller.IntegralLimit,
		TrackingTime: c.Controller.TrackingTime,
		LossEstimate: params.KLoss * (ctrl.TSet - params.TOut),
		Band:         c.Controller.Band,
	})
	if err != nil {
		return nil, fmt.Errorf("anti-windup: %w", err)
	}

	return &Derived{
		Params:     params,
		Profile:    profile,
		Controller: ctrl,
		AntiWindup: aw,
		Dt:         c.Run.Dt,
		TotalTime:  c.Run.TotalTime,
	}, nil
}
