// config.go — YAML-backed encoder configuration.
//
// The config file carries the encoder options that are also exposed as CLI
// flags; flags override file values. Example:
//
//	max_depth: 64
//	sort_sets: true
package pyeval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable encoder options.
type Config struct {
	// MaxDepth bounds encoder recursion; 0 means unbounded.
	MaxDepth int `yaml:"max_depth"`
	// SortSets orders set payloads by encoded form.
	SortSets bool `yaml:"sort_sets"`
}

// DefaultConfig returns the defaults: unbounded depth, insertion-ordered
// sets.
func DefaultConfig() Config {
	return Config{}
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.MaxDepth < 0 {
		return cfg, fmt.Errorf("config %s: max_depth must be >= 0, got %d", path, cfg.MaxDepth)
	}
	return cfg, nil
}

// Options converts the config to encoder options.
func (c Config) Options() Options {
	return Options{MaxDepth: c.MaxDepth, SortSets: c.SortSets}
}
