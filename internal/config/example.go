package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Example returns a fully populated configuration suitable as a starting
// point: a 60%-levered hospitality-style deal with a senior/mezzanine
// structure, lease-in-debt treatment, covenant tracking, and both risk views
// enabled.
func Example() Configuration {
	return Configuration{
		Deal: Deal{
			EntryMultiple:     8.5,
			ExitMultiple:      9.0,
			EntryFeesPct:      0.02,
			SaleCostPct:       0.01,
			Revenue:           5000.0,
			RevenueGrowth:     0.04,
			EBITDAMarginStart: 0.22,
			EBITDAMarginEnd:   0.25,
			MaintCapexPct:     0.025,
			GrowthCapexPct:    0.015,
			DAPct:             0.03,
			TaxRate:           0.25,
			DaysReceivable:    15,
			DaysInventory:     5,
			DaysPayable:       30,
			DaysDeferred:      20,
			Tranches: []Tranche{
				{Name: "Senior Term Loan", Principal: 3927.0, Rate: 0.045, Rank: 1, AmortPct: 0.05},
				{Name: "Mezzanine", Principal: 1122.0, Rate: 0.08, Rank: 2},
			},
			RevolverLimit: 200.0,
			RevolverRate:  0.04,
			SweepPct:      0.85,
			MinCash:       150.0,
			LeaseMultiple: 3.2,
			LeaseRate:     0.045,
			LeaseYears:    10,
			MaxLeverage:   9.0,
			MinICR:        1.8,
			HoldYears:     5,
			SigmaGrowth:   0.015,
			SigmaMargin:   0.02,
			SigmaMultiple: 0.5,
		},
		Waterfall: WaterfallConfig{
			Enabled:         true,
			Tiers:           []Tier{{Hurdle: 0.08, Carry: 0.20}},
			GPCommitmentPct: 0.02,
			MgmtFeePct:      0.0,
			MgmtFeeBasis:    FeeBasisCommitted,
		},
		Grid: GridConfig{
			Enabled: true,
			Rows:    Axis{Param: ParamExitMultiple, Min: 8.0, Max: 10.0, Steps: 5},
			Cols:    Axis{Param: ParamMargin, Min: 0.20, Max: 0.26, Steps: 4},
		},
		MonteCarlo: MonteCarloConfig{
			Enabled:   true,
			Draws:     400,
			Seed:      42,
			HurdleIRR: 0.08,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Output:  OutputConfig{Format: "pretty"},
	}
}

// WriteExample marshals the example configuration to YAML at the given path.
func WriteExample(path string) error {
	data, err := yaml.Marshal(Example())
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write example config: %w", err)
	}
	return nil
}
