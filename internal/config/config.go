// Package config loads and validates buildbar configuration via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config captures all CLI configuration knobs loaded via Viper.
type Config struct {
	Render  RenderConfig   `mapstructure:"render"`
	Logging LoggingConfig  `mapstructure:"logging"`
	Demo    DemoConfig     `mapstructure:"demo"`
	Bundles []BundleConfig `mapstructure:"bundles"`
}

// RenderConfig controls the live frame.
type RenderConfig struct {
	IntervalMs int `mapstructure:"interval_ms"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// DemoConfig governs the simulated builds driven by the demo command.
type DemoConfig struct {
	Steps       int `mapstructure:"steps"`
	StepDelayMs int `mapstructure:"step_delay_ms"`
}

// BundleConfig holds one bundle's reporter options.
type BundleConfig struct {
	Name       string `mapstructure:"name"`
	Color      string `mapstructure:"color"`
	Profile    bool   `mapstructure:"profile"`
	CompiledIn bool   `mapstructure:"compiled_in"`
	Minimal    bool   `mapstructure:"minimal"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BUILDBAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("render.interval_ms", 100)
	v.SetDefault("logging.development", true)
	v.SetDefault("demo.steps", 20)
	v.SetDefault("demo.step_delay_ms", 120)
	v.SetDefault("bundles", []map[string]any{
		{"name": "client", "color": "green", "profile": false, "compiled_in": true},
		{"name": "server", "color": "blue", "profile": false, "compiled_in": true},
	})
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Render.IntervalMs <= 0 {
		return fmt.Errorf("render.interval_ms must be > 0")
	}
	if c.Demo.Steps <= 0 {
		return fmt.Errorf("demo.steps must be > 0")
	}
	if len(c.Bundles) == 0 {
		return fmt.Errorf("at least one bundle is required")
	}
	seen := make(map[string]struct{}, len(c.Bundles))
	for _, b := range c.Bundles {
		if b.Name == "" {
			return fmt.Errorf("bundle name must not be empty")
		}
		if _, ok := seen[b.Name]; ok {
			return fmt.Errorf("duplicate bundle name %q", b.Name)
		}
		seen[b.Name] = struct{}{}
	}
	return nil
}
