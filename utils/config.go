package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sheikhrachel/go-gol3d/rules"
)

// Seed places a single cell before the first generation
type Seed struct {
	X     int   `json:"x" yaml:"x"`
	Y     int   `json:"y" yaml:"y"`
	Z     int   `json:"z" yaml:"z"`
	Value uint8 `json:"value" yaml:"value"`
}

// Config holds the configuration for a simulation run
type Config struct {
	Width               int     `json:"width" yaml:"width"`
	Height              int     `json:"height" yaml:"height"`
	Depth               int     `json:"depth" yaml:"depth"`
	Rule                string  `json:"rule" yaml:"rule"`
	Generations         int     `json:"generations" yaml:"generations"`
	Seeds               []Seed  `json:"seeds" yaml:"seeds"`
	RandomDensity       float64 `json:"random_density" yaml:"random_density"`
	RandomSeed          int64   `json:"random_seed" yaml:"random_seed"`
	Workers             int     `json:"workers" yaml:"workers"`
	StopOnStagnation    bool    `json:"stop_on_stagnation" yaml:"stop_on_stagnation"`
	StagnationThreshold int     `json:"stagnation_threshold" yaml:"stagnation_threshold"`
	LogLevel            string  `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Width:               32,
		Height:              32,
		Depth:               32,
		Rule:                "4/4/5/M",
		Generations:         100,
		RandomDensity:       0.05,
		RandomSeed:          1,
		Workers:             0, // 0 means runtime.NumCPU()
		StopOnStagnation:    true,
		StagnationThreshold: 5,
		LogLevel:            "info",
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

// Validate checks the values a run cannot start without
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.Depth <= 0 {
		return errors.Errorf("[Validate] dimensions must be positive, got %dx%dx%d", c.Width, c.Height, c.Depth)
	}
	if c.Generations < 0 {
		return errors.Errorf("[Validate] generations must not be negative, got %d", c.Generations)
	}
	if c.RandomDensity < 0 || c.RandomDensity > 1 {
		return errors.Errorf("[Validate] random_density must be within [0, 1], got %v", c.RandomDensity)
	}
	if _, err := c.RuleSet(); err != nil {
		return errors.Wrap(err, "[Validate] bad rule")
	}
	for i, s := range c.Seeds {
		if s.X < 0 || s.X >= c.Width || s.Y < 0 || s.Y >= c.Height || s.Z < 0 || s.Z >= c.Depth {
			return errors.Errorf("[Validate] seed %d at (%d,%d,%d) is outside the lattice", i, s.X, s.Y, s.Z)
		}
	}
	return nil
}

// RuleSet parses the configured rule notation
func (c Config) RuleSet() (rules.RuleSet, error) {
	return rules.Parse(c.Rule)
}
