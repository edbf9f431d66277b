package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/evoforge/evonn-go/pkg/errors"
)

// Config represents the complete configuration for one optimization run.
type Config struct {
	// Problem configuration
	Problem ProblemConfig `yaml:"problem" validate:"required"`

	// Evolution configuration
	Evolution EvolutionConfig `yaml:"evolution,omitempty"`

	// Selection configuration
	Selection SelectionConfig `yaml:"selection,omitempty"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ProblemConfig describes the surrogate model search space.
type ProblemConfig struct {
	// Genome encoding (flat or modular)
	Encoding string `yaml:"encoding" validate:"required,oneof=flat modular"`

	// Hidden-layer activation function
	Activation string `yaml:"activation" validate:"required,oneof=sigmoid relu tanh"`

	// Training-error loss function
	Loss string `yaml:"loss" validate:"required,oneof=rmse mse"`

	// Hidden nodes for the flat encoding
	NumNodes int `yaml:"num_nodes" validate:"min=1"`

	// Modular encoding bounds
	NumSubnets int `yaml:"num_subnets,omitempty" validate:"omitempty,min=1"`
	MaxLayers  int `yaml:"max_layers,omitempty" validate:"omitempty,min=1"`
	MaxNodes   int `yaml:"max_nodes,omitempty" validate:"omitempty,min=1"`

	// Weight initialization range and sparsity
	WLow     float64 `yaml:"w_low"`
	WHigh    float64 `yaml:"w_high" validate:"gtfield=WLow"`
	ProbOmit float64 `yaml:"prob_omit" validate:"min=0,max=1"`
}

// EvolutionConfig drives the evolutionary loop.
type EvolutionConfig struct {
	// Population size
	PopSize int `yaml:"pop_size" validate:"min=2"`

	// Generation budget
	Generations int `yaml:"generations" validate:"min=1"`

	// Concurrent candidate evaluations inside add; <=1 is sequential
	Parallelism int `yaml:"parallelism" validate:"min=0"`

	// Seed for the pseudo-random sequence; a fixed seed reproduces the
	// population trajectory
	Seed int64 `yaml:"seed"`

	// Abort a generation on the first evaluation failure instead of
	// inserting sentinel objectives
	FatalEvalErrors bool `yaml:"fatal_eval_errors"`
}

// SelectionConfig picks the champion-selection policy.
type SelectionConfig struct {
	Policy string `yaml:"policy" validate:"required,oneof=min_error akaike_corrected manual"`
}

// LoggingConfig configures run logging.
type LoggingConfig struct {
	// Severity level (DEBUG, INFO, WARN, ERROR, FATAL)
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`

	// Optional log file appended alongside console output
	File string `yaml:"file,omitempty"`
}

// Default returns the baseline configuration mirroring the historical model
// training defaults.
func Default() *Config {
	return &Config{
		Problem: ProblemConfig{
			Encoding:   "flat",
			Activation: "sigmoid",
			Loss:       "rmse",
			NumNodes:   15,
			NumSubnets: 4,
			MaxLayers:  8,
			MaxNodes:   10,
			WLow:       -5.0,
			WHigh:      5.0,
			ProbOmit:   0.2,
		},
		Evolution: EvolutionConfig{
			PopSize:     500,
			Generations: 100,
			Parallelism: 1,
			Seed:        1,
		},
		Selection: SelectionConfig{
			Policy: "min_error",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfig, "failed to read config file")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfig, "failed to parse config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return errors.WithFields(
				errors.New(errors.InvalidConfig, "invalid configuration"),
				errors.Fields{"field": first.Namespace(), "constraint": first.Tag()},
			)
		}
		return errors.Wrap(err, errors.InvalidConfig, "invalid configuration")
	}
	return nil
}
