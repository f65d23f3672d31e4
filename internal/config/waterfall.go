package config

import (
	"fmt"
	"sort"

	"github.com/dealforge/lbo-forecast/pkg/constants"
)

// Management fee basis values.
const (
	FeeBasisCommitted = "committed"
	FeeBasisDrawn     = "drawn"
)

// Claw-back interest treatments.
const (
	ClawbackSimple = "simple"
	ClawbackNone   = "none"
)

// WaterfallConfig describes how equity proceeds split between LP and GP.
type WaterfallConfig struct {
	Enabled bool `yaml:"enabled"`

	// Tiers are processed in ascending hurdle order. Empty defaults to a
	// single 8% preferred / 20% carry tier.
	Tiers []Tier `yaml:"tiers,omitempty"`

	GPCommitmentPct float64 `yaml:"gpCommitmentPct,omitempty"` // GP share of capital calls
	MgmtFeePct      float64 `yaml:"mgmtFeePct,omitempty"`      // annual management fee
	MgmtFeeBasis    string  `yaml:"mgmtFeeBasis,omitempty"`    // committed or drawn

	// Cashless defers GP carry to a single payout in the final year.
	Cashless bool `yaml:"cashless,omitempty"`

	// ClawbackInterest selects the interest treatment on clawed-back carry.
	ClawbackInterest string `yaml:"clawbackInterest,omitempty"` // simple or none
}

// Tier is one distribution tier: a preferred-return hurdle and the GP carry
// percentage applied to profit above it.
type Tier struct {
	Hurdle float64 `yaml:"hurdle"` // annual preferred return, compounding
	Carry  float64 `yaml:"carry"`  // GP share of profit above the hurdle
}

func (w *WaterfallConfig) normalize() error {
	if !w.Enabled {
		return nil
	}

	if len(w.Tiers) == 0 {
		w.Tiers = []Tier{{Hurdle: constants.DefaultHurdleRate, Carry: constants.DefaultCarryPct}}
	}
	sort.Slice(w.Tiers, func(i, j int) bool { return w.Tiers[i].Hurdle < w.Tiers[j].Hurdle })

	if w.MgmtFeeBasis == "" {
		w.MgmtFeeBasis = FeeBasisCommitted
	}
	if w.ClawbackInterest == "" {
		w.ClawbackInterest = ClawbackSimple
	}

	for i, tier := range w.Tiers {
		if tier.Hurdle < 0 {
			return fmt.Errorf("waterfall tier %d hurdle must be non-negative, got %.4f: %w", i, tier.Hurdle, ErrValidation)
		}
		if tier.Carry < 0 || tier.Carry >= 1 {
			return fmt.Errorf("waterfall tier %d carry must be in [0, 1), got %.4f: %w", i, tier.Carry, ErrValidation)
		}
	}
	if w.GPCommitmentPct < 0 || w.GPCommitmentPct >= 1 {
		return fmt.Errorf("gpCommitmentPct must be in [0, 1), got %.4f: %w", w.GPCommitmentPct, ErrValidation)
	}
	if w.MgmtFeePct < 0 || w.MgmtFeePct >= 1 {
		return fmt.Errorf("mgmtFeePct must be in [0, 1), got %.4f: %w", w.MgmtFeePct, ErrValidation)
	}
	if w.MgmtFeeBasis != FeeBasisCommitted && w.MgmtFeeBasis != FeeBasisDrawn {
		return fmt.Errorf("mgmtFeeBasis must be %q or %q, got %q: %w", FeeBasisCommitted, FeeBasisDrawn, w.MgmtFeeBasis, ErrValidation)
	}
	if w.ClawbackInterest != ClawbackSimple && w.ClawbackInterest != ClawbackNone {
		return fmt.Errorf("clawbackInterest must be %q or %q, got %q: %w", ClawbackSimple, ClawbackNone, w.ClawbackInterest, ErrValidation)
	}

	return nil
}
