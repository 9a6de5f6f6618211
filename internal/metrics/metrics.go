// Package metrics holds the per-run figures of merit reported after a simulation.
package metrics

import (
	"github.com/san-kum/boilersim/internal/control"
	"github.com/san-kum/boilersim/internal/dynamo"
	"github.com/san-kum/boilersim/internal/physics"
)

// Names lists the metrics built by Standard, in display order.
var Names = []string{"heater_kwh", "loss_kwh", "draw_kwh", "mean_power", "saturation", "iae", "overshoot"}

// Standard returns factories for every metric of a run with the given tank and controller.
func Standard(p physics.BoilerParams, ctrl control.Config) []dynamo.MetricFactory {
	return []dynamo.MetricFactory{
		func() dynamo.Metric { return NewHeaterEnergy(p) },
		func() dynamo.Metric { return NewLossEnergy(p) },
		func() dynamo.Metric { return NewDrawEnergy(p) },
		func() dynamo.Metric { return NewControlEffort() },
		func() dynamo.Metric { return NewSaturation(ctrl.PMax) },
		func() dynamo.Metric { return NewIAE(ctrl.TSet) },
		func() dynamo.Metric { return NewOvershoot(ctrl.TSet) },
	}
}

// Valid reports whether name is one of Names.
func Valid(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}
