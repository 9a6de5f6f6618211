package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/boilersim/internal/logger"
)

const (
	DefaultTSet       = 55.0
	DefaultKp         = 100.0
	DefaultTi         = 500.0
	DefaultTd         = 50.0
	DefaultPMax       = 2000.0
	DefaultVolumeL    = 80.0
	DefaultKLossRef   = 5.0
	DefaultVRef       = 80.0
	DefaultFlowLPM    = 6.0
	DefaultShowerFrom = 10000.0
	DefaultShowerTo   = 12000.0
	DefaultDt         = 1.0
	DefaultTotalTime  = 18000.0
	DefaultAntiWindup = "dynamic_bound"
	DefaultProfile    = "boxcar"

	EnvPrefix = "BOILERSIM_"
)

type Config struct {
	Controller ControllerConfig `yaml:"controller" json:"controller"`
	Tank       TankConfig       `yaml:"tank" json:"tank"`
	Draw       DrawConfig       `yaml:"draw" json:"draw"`
	Run        RunConfig        `yaml:"run" json:"run"`
}

type ControllerConfig struct {
	TSet float64 `yaml:"t_set" json:"t_set"`
	Kp   float64 `yaml:"kp" json:"kp"`
	Ti   float64 `yaml:"ti" json:"ti"`
	Td   float64 `yaml:"td" json:"td"`
	PMax float64 `yaml:"p_max" json:"p_max"`

	AntiWindup    string  `yaml:"anti_windup" json:"anti_windup"`       // "clamping" | "back_calculation" | "dynamic_bound"
	IntegralLimit float64 `yaml:"integral_limit" json:"integral_limit"` // clamping only, 0 = none
	TrackingTime  float64 `yaml:"tracking_time" json:"tracking_time"`   // back_calculation only, 0 = default
	Band          float64 `yaml:"band" json:"band"`                     // dynamic_bound only, 0 = default
}

type TankConfig struct {
	VolumeL  float64 `yaml:"volume_l" json:"volume_l"`
	KLossRef float64 `yaml:"k_loss_ref" json:"k_loss_ref"`
	VRef     float64 `yaml:"v_ref" json:"v_ref"`
	KDraw    float64 `yaml:"k_draw" json:"k_draw"`
	TOut     float64 `yaml:"t_out" json:"t_out"`
	TCold    float64 `yaml:"t_cold" json:"t_cold"`
}

type DrawConfig struct {
	Profile     string         `yaml:"profile" json:"profile"` // "boxcar" | "none" | "constant" | "schedule"
	FlowLPerMin float64        `yaml:"flow_l_per_min" json:"flow_l_per_min"`
	StartS      float64        `yaml:"shower_start_s" json:"shower_start_s"`
	EndS        float64        `yaml:"shower_end_s" json:"shower_end_s"`
	Windows     []WindowConfig `yaml:"windows,omitempty" json:"windows,omitempty"`
}

type WindowConfig struct {
	FlowLPerMin float64 `yaml:"flow_l_per_min" json:"flow_l_per_min"`
	StartS      float64 `yaml:"start_s" json:"start_s"`
	EndS        float64 `yaml:"end_s" json:"end_s"`
}

type RunConfig struct {
	Dt        float64 `yaml:"dt" json:"dt"`
	TotalTime float64 `yaml:"total_time" json:"total_time"`
}

func DefaultConfig() *Config {
	return &Config{
		Controller: ControllerConfig{
			TSet:       DefaultTSet,
			Kp:         DefaultKp,
			Ti:         DefaultTi,
			Td:         DefaultTd,
			PMax:       DefaultPMax,
			AntiWindup: DefaultAntiWindup,
		},
		Tank: TankConfig{
			VolumeL:  DefaultVolumeL,
			KLossRef: DefaultKLossRef,
			VRef:     DefaultVRef,
			KDraw:    4186.0,
			TOut:     22.0,
			TCold:    10.0,
		},
		Draw: DrawConfig{
			Profile:     DefaultProfile,
			FlowLPerMin: DefaultFlowLPM,
			StartS:      DefaultShowerFrom,
			EndS:        DefaultShowerTo,
		},
		Run: RunConfig{
			Dt:        DefaultDt,
			TotalTime: DefaultTotalTime,
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Draw.Windows != nil {
		out.Draw.Windows = append([]WindowConfig(nil), c.Draw.Windows...)
	}
	return &out
}

// Load reads path on top of the defaults, then applies BOILERSIM_* environment overrides.
func Load(path string) (*Config, error) {
	return LoadFrom(DefaultConfig(), path)
}

// LoadFrom is Load with an explicit base, e.g. a preset. An empty path skips the file layer.
func LoadFrom(base *Config, path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(base, "yaml"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = kyaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config extension %q", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		logger.Debug("loaded config file %s", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return envKeyTransform(strings.TrimPrefix(key, EnvPrefix)), value
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

var sections = map[string]bool{
	"controller": true,
	"tank":       true,
	"draw":       true,
	"run":        true,
}

// envKeyTransform maps SECTION_KEY_WITH_UNDERSCORES to section.key_with_underscores.
// Keys without a known section are lower-cased and passed through.
func envKeyTransform(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return ""
	}
	section, rest, ok := strings.Cut(key, "_")
	if !ok || !sections[section] || rest == "" {
		return key
	}
	return section + "." + rest
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
