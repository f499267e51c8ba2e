// Package config loads the demo binary's configuration: a YAML file,
// defaulted and then overridden by environment variables, validated
// before use. Trimmed from this project's original `LoadConfig`
// file->defaults->env-override->validate pipeline down to the handful
// of fields the logging core and its demo actually need.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/mdzesseis/logflow/internal/levels"
	"github.com/mdzesseis/logflow/internal/options"
	"github.com/mdzesseis/logflow/internal/tracing"
)

// ConsoleConfig toggles the demo's console transport.
type ConsoleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DemoConfig is the demo binary's full configuration: logger options
// expressed in a YAML-friendly shape (Transports cannot be expressed in
// YAML since they're live interfaces, so the demo wires its console
// transport in code, gated by Console.Enabled), plus the ambient
// tracing config.
type DemoConfig struct {
	Level              string         `yaml:"level"`
	Levels             map[string]int `yaml:"levels"`
	ChannelCapacity    int            `yaml:"channel_capacity"`
	BackpressurePolicy string         `yaml:"backpressure_policy"`
	Console            ConsoleConfig  `yaml:"console"`
	Tracing            tracing.Config `yaml:"tracing"`
}

// Default returns the baseline demo configuration: info level, the
// default registry, capacity 1024, block policy, console enabled,
// tracing disabled.
func Default() DemoConfig {
	return DemoConfig{
		Level:              "info",
		ChannelCapacity:    1024,
		BackpressurePolicy: "block",
		Console:            ConsoleConfig{Enabled: true},
		Tracing:            tracing.DefaultConfig(),
	}
}

// Load reads configFile (if non-empty), applies defaults for anything
// left unset, applies environment overrides, and validates the result.
// A missing or unreadable configFile is not an error: Load proceeds
// with the default configuration.
func Load(configFile string) (*DemoConfig, error) {
	cfg := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			fmt.Printf("warning: failed to read config file %s: %v\n", configFile, err)
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *DemoConfig) {
	if v := os.Getenv("LOGFLOW_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOGFLOW_BACKPRESSURE_POLICY"); v != "" {
		cfg.BackpressurePolicy = v
	}
	if v := os.Getenv("LOGFLOW_CHANNEL_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ChannelCapacity = n
		}
	}
	if v := os.Getenv("LOGFLOW_CONSOLE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Console.Enabled = b
		}
	}
	if v := os.Getenv("LOGFLOW_TRACING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tracing.Enabled = b
		}
	}
}

func validate(cfg *DemoConfig) error {
	if cfg.Level == "" {
		return fmt.Errorf("level must not be empty")
	}
	switch cfg.BackpressurePolicy {
	case "block", "drop_oldest", "drop_current":
	default:
		return fmt.Errorf("backpressure_policy must be one of block, drop_oldest, drop_current, got %q", cfg.BackpressurePolicy)
	}
	if cfg.ChannelCapacity <= 0 {
		return fmt.Errorf("channel_capacity must be positive, got %d", cfg.ChannelCapacity)
	}
	return nil
}

// ToOptions converts the YAML-shaped configuration into a
// options.Options ready for logflow.New. Transports are never set
// here; the demo binary attaches its console transport separately.
func (cfg DemoConfig) ToOptions() options.Options {
	opts := options.Default()
	opts.Level, opts.HasLevel = cfg.Level, true
	opts.ChannelCapacity = cfg.ChannelCapacity

	if len(cfg.Levels) > 0 {
		reg := make(levels.Registry, len(cfg.Levels))
		for name, sev := range cfg.Levels {
			reg[name] = uint8(sev)
		}
		opts.Levels, opts.HasLevels = reg, true
	}

	switch cfg.BackpressurePolicy {
	case "drop_oldest":
		opts.BackpressurePolicy = options.DropOldest
	case "drop_current":
		opts.BackpressurePolicy = options.DropCurrent
	default:
		opts.BackpressurePolicy = options.Block
	}

	return opts
}
