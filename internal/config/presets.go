package config

import "sort"

// Presets are named starting points; flags and config files layer on top.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"shower": preset(func(c *Config) {
		c.Draw.FlowLPerMin = 8.0
	}),
	"no-draw": preset(func(c *Config) {
		c.Controller.Td = 0
		c.Draw.Profile = "none"
	}),
	"heater-off": preset(func(c *Config) {
		c.Controller.Kp = 0
		c.Controller.Ti = 0
		c.Controller.Td = 0
	}),
	"aggressive": preset(func(c *Config) {
		c.Controller.Kp = 400
		c.Controller.Ti = 150
		c.Controller.Td = 20
		c.Controller.PMax = 3000
	}),
	"large-tank": preset(func(c *Config) {
		c.Tank.VolumeL = 150
		c.Controller.PMax = 3000
		c.Draw.FlowLPerMin = 12.0
	}),
	"two-showers": preset(func(c *Config) {
		c.Draw.Profile = "schedule"
		c.Draw.Windows = []WindowConfig{
			{FlowLPerMin: 8.0, StartS: 7200, EndS: 7800},
			{FlowLPerMin: 8.0, StartS: 14400, EndS: 15000},
		}
	}),
}

func preset(mutate func(*Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
