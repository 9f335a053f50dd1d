// Package config loads partscan configuration with viper: built-in
// defaults, then an optional YAML file, then PARTSCAN_* environment
// variables. The result is validated before use.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chazu/partscan/pkg/dfm"
	"github.com/chazu/partscan/pkg/engine"
	"github.com/chazu/partscan/pkg/features"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PARTSCAN_"

// DefaultTimeout bounds detection of a single part.
const DefaultTimeout = 30 * time.Second

// Config is the full partscan configuration.
type Config struct {
	Calibration features.Calibration `yaml:"calibration"`
	Limits      dfm.Limits           `yaml:"limits"`
	Pipeline    Pipeline             `yaml:"pipeline"`
	Log         Log                  `yaml:"log"`
	Kernel      Kernel               `yaml:"kernel"`
}

// Pipeline configures per-part processing.
type Pipeline struct {
	// Timeout bounds feature detection of one part.
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	// EvalTimeout bounds evaluation of one part script.
	EvalTimeout time.Duration `yaml:"eval_timeout" validate:"gt=0"`
	// Workers bounds parallel part processing in the CLI.
	Workers int `yaml:"workers" validate:"gte=1"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Kernel selects the geometry backend.
type Kernel struct {
	Name        string `yaml:"name" validate:"oneof=prism sdfx"`
	VolumeCells int    `yaml:"volume_cells" validate:"gte=1"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Calibration: features.DefaultCalibration(),
		Limits:      dfm.DefaultLimits(),
		Pipeline:    Pipeline{Timeout: DefaultTimeout, EvalTimeout: engine.DefaultTimeout, Workers: 4},
		Log:         Log{Level: "info", Format: "text"},
		Kernel:      Kernel{Name: "prism", VolumeCells: 200},
	}
}

var validate = validator.New()

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// envAliases are the short environment names kept alongside the full
// PARTSCAN_<SECTION>_<KEY> form.
var envAliases = map[string]string{
	"kernel.name":           "KERNEL",
	"kernel.volume_cells":   "VOLUME_CELLS",
	"pipeline.workers":      "WORKERS",
	"pipeline.timeout":      "TIMEOUT",
	"pipeline.eval_timeout": "EVAL_TIMEOUT",
	"limits.max_x":          "MAX_X",
	"limits.max_y":          "MAX_Y",
	"limits.max_z":          "MAX_Z",
}

// Load reads path over the defaults, applies environment overrides and
// validates. An empty path skips the file. Unknown keys are rejected.
func Load(path string) (Config, error) {
	v, err := newViper(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// newViper layers the defaults, the file at path and the environment.
func newViper(path string) (*viper.Viper, error) {
	defaults, err := Default().Marshal()
	if err != nil {
		return nil, fmt.Errorf("config: encoding defaults: %w", err)
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("config: reading defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	for _, key := range v.AllKeys() {
		names := []string{EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		if alias, ok := envAliases[key]; ok {
			names = append(names, EnvPrefix+alias)
		}
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("config: binding %s: %w", key, err)
		}
	}
	return v, nil
}

// Marshal renders cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
