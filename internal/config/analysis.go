package config

import (
	"fmt"

	"github.com/dealforge/lbo-forecast/pkg/constants"
)

// Axis parameter names accepted by the sensitivity grid.
const (
	ParamExitMultiple  = "exitMultiple"
	ParamEntryMultiple = "entryMultiple"
	ParamGrowth        = "revenueGrowth"
	ParamMargin        = "ebitdaMargin"
	ParamSweepPct      = "sweepPct"
	ParamTaxRate       = "taxRate"
)

// GridConfig describes a 2-D sensitivity sweep over two assumption axes.
type GridConfig struct {
	Enabled bool `yaml:"enabled"`
	Rows    Axis `yaml:"rows"`
	Cols    Axis `yaml:"cols"`
}

// Axis is one evenly spaced parameter sweep.
type Axis struct {
	Param string  `yaml:"param"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Steps int     `yaml:"steps"`
}

// Values expands the axis into its evenly spaced sample points.
func (a Axis) Values() []float64 {
	if a.Steps <= 1 {
		return []float64{a.Min}
	}
	values := make([]float64, a.Steps)
	step := (a.Max - a.Min) / float64(a.Steps-1)
	for i := range values {
		values[i] = a.Min + float64(i)*step
	}
	return values
}

func (a Axis) validate(side string) error {
	switch a.Param {
	case ParamExitMultiple, ParamEntryMultiple, ParamGrowth, ParamMargin, ParamSweepPct, ParamTaxRate:
	default:
		return fmt.Errorf("grid %s: unknown param %q: %w", side, a.Param, ErrValidation)
	}
	if a.Steps < 1 {
		return fmt.Errorf("grid %s: steps must be at least 1, got %d: %w", side, a.Steps, ErrValidation)
	}
	if a.Max < a.Min {
		return fmt.Errorf("grid %s: max %.4f is below min %.4f: %w", side, a.Max, a.Min, ErrValidation)
	}
	return nil
}

func (g *GridConfig) validate() error {
	if !g.Enabled {
		return nil
	}
	if err := g.Rows.validate("rows"); err != nil {
		return err
	}
	if err := g.Cols.validate("cols"); err != nil {
		return err
	}
	return nil
}

// MonteCarloConfig describes the randomized risk view: N seeded draws over
// growth, margin, and exit-multiple perturbations.
type MonteCarloConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Draws     int     `yaml:"draws,omitempty"`
	Seed      int64   `yaml:"seed,omitempty"`
	HurdleIRR float64 `yaml:"hurdleIRR,omitempty"` // success threshold
	Workers   int     `yaml:"workers,omitempty"`   // 0 or 1 runs sequentially
}

func (m *MonteCarloConfig) normalize() error {
	if !m.Enabled {
		return nil
	}
	if m.Draws == 0 {
		m.Draws = constants.DefaultDrawCount
	}
	if m.Seed == 0 {
		m.Seed = constants.DefaultSeed
	}
	if m.Draws < 1 {
		return fmt.Errorf("monteCarlo draws must be at least 1, got %d: %w", m.Draws, ErrValidation)
	}
	if m.Workers < 0 {
		return fmt.Errorf("monteCarlo workers must be non-negative, got %d: %w", m.Workers, ErrValidation)
	}
	if m.HurdleIRR < 0 {
		return fmt.Errorf("monteCarlo hurdleIRR must be non-negative, got %.4f: %w", m.HurdleIRR, ErrValidation)
	}
	return nil
}
