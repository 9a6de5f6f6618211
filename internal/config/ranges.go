package config

import (
	"math"
	"strings"
)

// Range bounds an interactively tunable parameter.
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(v, r.Max))
}

// Nudge moves v by n steps and keeps it in range.
func (r Range) Nudge(v float64, n int) float64 {
	return r.Clamp(v + float64(n)*r.Step)
}

// Tunable names a parameter of Config with its interactive range.
type Tunable struct {
	Name  string
	Unit  string
	Range Range
	Get   func(*Config) float64
	Set   func(*Config, float64)
}

// Tunables are the parameters exposed by the interactive tuner, in display order.
var Tunables = []Tunable{
	{
		Name: "T_set", Unit: "°C", Range: Range{30, 70, 1},
		Get: func(c *Config) float64 { return c.Controller.TSet },
		Set: func(c *Config, v float64) { c.Controller.TSet = v },
	},
	{
		Name: "Kp", Unit: "W/°C", Range: Range{1, 500, 5},
		Get: func(c *Config) float64 { return c.Controller.Kp },
		Set: func(c *Config, v float64) { c.Controller.Kp = v },
	},
	{
		Name: "Ti", Unit: "s", Range: Range{10, 2000, 50},
		Get: func(c *Config) float64 { return c.Controller.Ti },
		Set: func(c *Config, v float64) { c.Controller.Ti = v },
	},
	{
		Name: "Td", Unit: "s", Range: Range{0, 100, 5},
		Get: func(c *Config) float64 { return c.Controller.Td },
		Set: func(c *Config, v float64) { c.Controller.Td = v },
	},
	{
		Name: "P_max", Unit: "W", Range: Range{1500, 4000, 100},
		Get: func(c *Config) float64 { return c.Controller.PMax },
		Set: func(c *Config, v float64) { c.Controller.PMax = v },
	},
	{
		Name: "volume", Unit: "L", Range: Range{30, 150, 5},
		Get: func(c *Config) float64 { return c.Tank.VolumeL },
		Set: func(c *Config, v float64) { c.Tank.VolumeL = v },
	},
	{
		Name: "flow", Unit: "L/min", Range: Range{0, 20, 0.5},
		Get: func(c *Config) float64 { return c.Draw.FlowLPerMin },
		Set: func(c *Config, v float64) { c.Draw.FlowLPerMin = v },
	},
}

// LookupTunable finds a tunable by name, ignoring case.
func LookupTunable(name string) (Tunable, bool) {
	for _, t := range Tunables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Tunable{}, false
}
