package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/boilersim/internal/control"
	"github.com/san-kum/boilersim/internal/disturbance"
	"github.com/san-kum/boilersim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 55.0, cfg.Controller.TSet)
	assert.Equal(t, "dynamic_bound", cfg.Controller.AntiWindup)
	assert.Equal(t, 80.0, cfg.Tank.VolumeL)
	assert.Equal(t, 6.0, cfg.Draw.FlowLPerMin)
	assert.Equal(t, 1.0, cfg.Run.Dt)
	assert.Equal(t, 18000.0, cfg.Run.TotalTime)
	assert.NoError(t, cfg.Validate())
}

func TestParameterDerivation(t *testing.T) {
	assert.InDelta(t, 334880.0, HeatCapacity(80), 1e-9)
	assert.InDelta(t, 5.0, LossCoefficient(80, 5, 80), 1e-12)
	assert.InDelta(t, 5*math.Pow(2, 2.0/3.0), LossCoefficient(160, 5, 80), 1e-12)
	assert.InDelta(t, 0.1, FlowLPS(6), 1e-12)

	// larger tanks lose less per litre
	small := LossCoefficient(40, 5, 80) / 40
	large := LossCoefficient(160, 5, 80) / 160
	assert.Less(t, large, small)

	p := DefaultConfig().Tank.Params()
	assert.InDelta(t, 334880.0, p.C, 1e-9)
	assert.InDelta(t, 5.0, p.KLoss, 1e-12)
	assert.Equal(t, 4186.0, p.KDraw)
	assert.Equal(t, 22.0, p.TOut)
	assert.Equal(t, 10.0, p.TCold)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(*Config)
	}{
		{"zero dt", "dt", func(c *Config) { c.Run.Dt = 0 }},
		{"negative dt", "dt", func(c *Config) { c.Run.Dt = -1 }},
		{"zero total time", "total_time", func(c *Config) { c.Run.TotalTime = 0 }},
		{"too many steps", "dt", func(c *Config) { c.Run.Dt = 1e-6 }},
		{"zero volume", "volume_l", func(c *Config) { c.Tank.VolumeL = 0 }},
		{"negative volume", "volume_l", func(c *Config) { c.Tank.VolumeL = -10 }},
		{"shower ends before it starts", "shower_end_s", func(c *Config) { c.Draw.StartS, c.Draw.EndS = 500, 100 }},
		{"negative flow", "flow", func(c *Config) { c.Draw.FlowLPerMin = -1 }},
		{"negative kp", "kp", func(c *Config) { c.Controller.Kp = -1 }},
		{"unknown anti-windup", "anti_windup", func(c *Config) { c.Controller.AntiWindup = "magic" }},
		{"unknown profile", "draw.profile", func(c *Config) { c.Draw.Profile = "tsunami" }},
		{"NaN ambient", "t_out", func(c *Config) { c.Tank.TOut = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, dynamo.ErrInvalidConfig))

			var ce *dynamo.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)

			_, err = cfg.Derive()
			assert.Error(t, err)
		})
	}
}

func TestValidate_AcceptsDegenerate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Controller.Kp = 0
	cfg.Controller.Ti = 0
	cfg.Controller.Td = 0
	cfg.Controller.PMax = 0
	cfg.Draw.FlowLPerMin = 0
	assert.NoError(t, cfg.Validate())
}

func TestDerive(t *testing.T) {
	d, err := DefaultConfig().Derive()
	require.NoError(t, err)

	assert.Equal(t, control.Config{TSet: 55, Kp: 100, Ti: 500, Td: 50, PMax: 2000}, d.Controller)
	assert.Equal(t, disturbance.Boxcar{FlowLPS: 0.1, StartS: 10000, EndS: 12000}, d.Profile)
	assert.Equal(t, control.KindDynamicBound, d.AntiWindup.Kind())
	assert.InDelta(t, 5*(55.0-22.0), d.AntiWindup.(control.DynamicBound).LossEstimate, 1e-9)
	assert.Equal(t, 1.0, d.Dt)
	assert.Equal(t, 18000.0, d.TotalTime)
}

func TestDerive_Profiles(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Draw.Profile = "none"
	d, err := cfg.Derive()
	require.NoError(t, err)
	assert.Equal(t, disturbance.None{}, d.Profile)

	cfg.Draw.Profile = "constant"
	d, err = cfg.Derive()
	require.NoError(t, err)
	assert.InDelta(t, 0.1, d.Profile.Flow(123), 1e-12)

	cfg = GetPreset("two-showers")
	require.NotNil(t, cfg)
	d, err = cfg.Derive()
	require.NoError(t, err)
	assert.InDelta(t, 8.0/60.0, d.Profile.Flow(7500), 1e-12)
	assert.Equal(t, 0.0, d.Profile.Flow(10000))
}

func TestPresets(t *testing.T) {
	names := ListPresets()
	require.NotEmpty(t, names)
	assert.Contains(t, names, "default")
	assert.Contains(t, names, "shower")

	for _, name := range names {
		cfg := GetPreset(name)
		require.NotNil(t, cfg, name)
		assert.NoError(t, cfg.Validate(), name)
	}

	assert.Nil(t, GetPreset("nonexistent"))

	// presets are handed out as copies
	cfg := GetPreset("two-showers")
	cfg.Draw.Windows[0].StartS = 1
	assert.Equal(t, 7200.0, Presets["two-showers"].Draw.Windows[0].StartS)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boiler.yaml")
	content := `
controller:
  t_set: 60
  kp: 150
  anti_windup: back_calculation
tank:
  volume_l: 120
draw:
  flow_l_per_min: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60.0, cfg.Controller.TSet)
	assert.Equal(t, 150.0, cfg.Controller.Kp)
	assert.Equal(t, "back_calculation", cfg.Controller.AntiWindup)
	assert.Equal(t, DefaultTi, cfg.Controller.Ti, "unset keys keep their defaults")
	assert.Equal(t, 120.0, cfg.Tank.VolumeL)
	assert.Equal(t, 10.0, cfg.Draw.FlowLPerMin)
	assert.Equal(t, DefaultTotalTime, cfg.Run.TotalTime)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boiler.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"run": {"dt": 0.5, "total_time": 3600}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Run.Dt)
	assert.Equal(t, 3600.0, cfg.Run.TotalTime)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "boiler.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "unsupported config extension")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BOILERSIM_CONTROLLER_T_SET", "65")
	t.Setenv("BOILERSIM_DRAW_FLOW_L_PER_MIN", "12.5")
	t.Setenv("BOILERSIM_RUN_TOTAL_TIME", "7200")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 65.0, cfg.Controller.TSet)
	assert.Equal(t, 12.5, cfg.Draw.FlowLPerMin)
	assert.Equal(t, 7200.0, cfg.Run.TotalTime)
}

func TestLoadFrom_PresetBase(t *testing.T) {
	cfg, err := LoadFrom(GetPreset("aggressive"), "")
	require.NoError(t, err)
	assert.Equal(t, 400.0, cfg.Controller.Kp)
	assert.Equal(t, 3000.0, cfg.Controller.PMax)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	orig := GetPreset("large-tank")
	require.NoError(t, Save(path, orig))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, orig, loaded)
}

func TestEnvKeyTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CONTROLLER_T_SET", "controller.t_set"},
		{"CONTROLLER_KP", "controller.kp"},
		{"TANK_VOLUME_L", "tank.volume_l"},
		{"DRAW_FLOW_L_PER_MIN", "draw.flow_l_per_min"},
		{"RUN_TOTAL_TIME", "run.total_time"},
		{"RUN", "run"},
		{"LOG_LEVEL", "log_level"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := envKeyTransform(tt.in); got != tt.want {
			t.Errorf("envKeyTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRange(t *testing.T) {
	r := Range{Min: 0, Max: 20, Step: 0.5}
	assert.Equal(t, 0.0, r.Clamp(-3))
	assert.Equal(t, 20.0, r.Clamp(25))
	assert.Equal(t, 7.0, r.Nudge(6, 2))
	assert.Equal(t, 20.0, r.Nudge(19.5, 4))

	cfg := DefaultConfig()
	for _, tn := range Tunables {
		v := tn.Get(cfg)
		tn.Set(cfg, tn.Range.Nudge(v, 1))
		assert.NotEqual(t, v, tn.Get(cfg), tn.Name)
	}
}

func TestLookupTunable(t *testing.T) {
	tn, ok := LookupTunable("kp")
	require.True(t, ok)
	assert.Equal(t, "Kp", tn.Name)

	_, ok = LookupTunable("gain")
	assert.False(t, ok)
}
