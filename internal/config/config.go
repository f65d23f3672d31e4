// Package config defines the data structures related to configuration and
// includes functions for loading, normalizing, and validating the config.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrValidation indicates malformed or contradictory deal assumptions. The
// pipeline never runs against a configuration that fails validation.
var ErrValidation = errors.New("invalid configuration")

// Configuration holds all configuration for lbo-forecast.
type Configuration struct {
	Deal       Deal             `yaml:"deal"`
	Scenarios  []Scenario       `yaml:"scenarios,omitempty"`
	Waterfall  WaterfallConfig  `yaml:"waterfall,omitempty"`
	Grid       GridConfig       `yaml:"grid,omitempty"`
	MonteCarlo MonteCarloConfig `yaml:"monteCarlo,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Scenario names one assumption set to be simulated. Inactive scenarios are
// loaded but skipped. YAML anchors are the intended way to share a base case
// across scenarios while overriding individual fields.
type Scenario struct {
	Name   string `yaml:"name"`
	Active bool   `yaml:"active"`
	Deal   Deal   `yaml:"deal"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ActiveScenarios returns the scenarios to simulate. A configuration with no
// scenario list runs the top-level deal as a single base case.
func (conf *Configuration) ActiveScenarios() []Scenario {
	if len(conf.Scenarios) == 0 {
		return []Scenario{{Name: "Base Case", Active: true, Deal: conf.Deal}}
	}
	var active []Scenario
	for _, s := range conf.Scenarios {
		if s.Active {
			active = append(active, s)
		}
	}
	return active
}

// Normalize applies defaults and derived values across all assumption sets,
// then validates everything. Warnings are non-fatal observations; the error
// wraps ErrValidation and is fatal.
func (conf *Configuration) Normalize() ([]string, error) {
	var warnings []string

	w, err := conf.Deal.normalize("deal")
	warnings = append(warnings, w...)
	if err != nil {
		return warnings, err
	}

	for i := range conf.Scenarios {
		s := &conf.Scenarios[i]
		if s.Name == "" {
			return warnings, fmt.Errorf("scenario %d has no name: %w", i, ErrValidation)
		}
		if !s.Active {
			continue
		}
		w, err := s.Deal.normalize(fmt.Sprintf("scenario %q", s.Name))
		warnings = append(warnings, w...)
		if err != nil {
			return warnings, err
		}
	}

	if err := conf.Waterfall.normalize(); err != nil {
		return warnings, err
	}
	if err := conf.Grid.validate(); err != nil {
		return warnings, err
	}
	if err := conf.MonteCarlo.normalize(); err != nil {
		return warnings, err
	}

	return warnings, nil
}
