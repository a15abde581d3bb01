package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds settings read from PLANCTL_* environment variables.
// Command-line flags override these; these override the built-in defaults.
type Config struct {
	// Root is the directory scanned by 'planctl list' and resume discovery.
	Root string `envconfig:"ROOT" default:"."`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Output. The conventional bare NO_COLOR variable is honored separately
	// by the terminal renderer; this one wins when both are set.
	NoColor string `envconfig:"NO_COLOR"` // any non-empty value disables color

	// NonInteractive suppresses all prompts; commands that would ask fail
	// instead with instructions for the flag form.
	NonInteractive bool `envconfig:"NON_INTERACTIVE" default:"false"`

	// Subtask execution
	MaxParallel    int           `envconfig:"MAX_PARALLEL" default:"4"`
	SubtaskTimeout time.Duration `envconfig:"SUBTASK_TIMEOUT" default:"10m"`
}

// ColorDisabled returns true if PLANCTL_NO_COLOR requests plain output.
func (c *Config) ColorDisabled() bool {
	return c.NoColor != ""
}

// Load reads configuration from PLANCTL_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("PLANCTL", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}
	return &cfg, nil
}
