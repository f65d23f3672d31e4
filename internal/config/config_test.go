package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

// baseDeal returns a minimal valid assumption set that tests mutate.
func baseDeal() Deal {
	return Deal{
		EntryMultiple:     8.0,
		ExitMultiple:      9.0,
		Revenue:           1000.0,
		RevenueGrowth:     0.05,
		EBITDAMarginStart: 0.20,
		TaxRate:           0.25,
		Tranches: []Tranche{
			{Name: "Senior", Principal: 500.0, Rate: 0.08},
		},
		SweepPct:  0.75,
		HoldYears: 5,
	}
}

func TestNormalizeDefaults(t *testing.T) {
	conf := Configuration{Deal: baseDeal()}
	conf.Deal.Tranches = append(conf.Deal.Tranches, Tranche{Name: "Mezz", Principal: 200.0, Rate: 0.10})

	warnings, err := conf.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}

	if conf.Deal.EBITDAMarginEnd != conf.Deal.EBITDAMarginStart {
		t.Errorf("EBITDAMarginEnd = %v, expected default to start margin %v",
			conf.Deal.EBITDAMarginEnd, conf.Deal.EBITDAMarginStart)
	}
	if conf.Deal.Tranches[0].Rank != 1 || conf.Deal.Tranches[1].Rank != 2 {
		t.Errorf("unset ranks should default to declaration order, got %d and %d",
			conf.Deal.Tranches[0].Rank, conf.Deal.Tranches[1].Rank)
	}
}

func TestNormalizeWarnings(t *testing.T) {
	conf := Configuration{Deal: baseDeal()}
	conf.Deal.SweepPct = 0
	conf.Deal.Tranches[0].Principal = 10000.0 // exceeds entry EV of 1600

	warnings, err := conf.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Configuration)
	}{
		{"Non-positive revenue", func(c *Configuration) { c.Deal.Revenue = 0 }},
		{"Zero hold years", func(c *Configuration) { c.Deal.HoldYears = 0 }},
		{"Zero entry multiple", func(c *Configuration) { c.Deal.EntryMultiple = 0 }},
		{"Margin above one", func(c *Configuration) { c.Deal.EBITDAMarginStart = 1.5 }},
		{"Growth below -100%", func(c *Configuration) { c.Deal.RevenueGrowth = -1.5 }},
		{"Sweep above one", func(c *Configuration) { c.Deal.SweepPct = 1.2 }},
		{"Tax rate at one", func(c *Configuration) { c.Deal.TaxRate = 1.0 }},
		{"Negative days", func(c *Configuration) { c.Deal.DaysPayable = -5 }},
		{"No financing at all", func(c *Configuration) {
			c.Deal.Tranches = nil
			c.Deal.RevolverLimit = 0
		}},
		{"Unnamed tranche", func(c *Configuration) { c.Deal.Tranches[0].Name = "" }},
		{"Negative principal", func(c *Configuration) { c.Deal.Tranches[0].Principal = -1 }},
		{"PIK with amortization", func(c *Configuration) {
			c.Deal.Tranches[0].PIK = true
			c.Deal.Tranches[0].AmortPct = 0.05
		}},
		{"Duplicate ranks", func(c *Configuration) {
			c.Deal.Tranches = []Tranche{
				{Name: "A", Principal: 100, Rank: 1},
				{Name: "B", Principal: 100, Rank: 1},
			}
		}},
		{"Lease without amortization period", func(c *Configuration) {
			c.Deal.LeaseMultiple = 3.0
			c.Deal.LeaseYears = 0
		}},
		{"Unnamed scenario", func(c *Configuration) {
			c.Scenarios = []Scenario{{Active: true, Deal: baseDeal()}}
		}},
		{"Invalid active scenario", func(c *Configuration) {
			bad := baseDeal()
			bad.Revenue = -1
			c.Scenarios = []Scenario{{Name: "Downside", Active: true, Deal: bad}}
		}},
		{"Waterfall carry at one", func(c *Configuration) {
			c.Waterfall = WaterfallConfig{Enabled: true, Tiers: []Tier{{Hurdle: 0.08, Carry: 1.0}}}
		}},
		{"Waterfall bad fee basis", func(c *Configuration) {
			c.Waterfall = WaterfallConfig{Enabled: true, MgmtFeeBasis: "quarterly"}
		}},
		{"Grid unknown param", func(c *Configuration) {
			c.Grid = GridConfig{
				Enabled: true,
				Rows:    Axis{Param: "ebit", Min: 1, Max: 2, Steps: 2},
				Cols:    Axis{Param: ParamExitMultiple, Min: 8, Max: 10, Steps: 3},
			}
		}},
		{"Grid inverted bounds", func(c *Configuration) {
			c.Grid = GridConfig{
				Enabled: true,
				Rows:    Axis{Param: ParamExitMultiple, Min: 10, Max: 8, Steps: 3},
				Cols:    Axis{Param: ParamMargin, Min: 0.2, Max: 0.25, Steps: 2},
			}
		}},
		{"Monte Carlo negative workers", func(c *Configuration) {
			c.MonteCarlo = MonteCarloConfig{Enabled: true, Workers: -1}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Configuration{Deal: baseDeal()}
			tt.mutate(&conf)
			_, err := conf.Normalize()
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Normalize error = %v, expected ErrValidation", err)
			}
		})
	}
}

func TestInactiveScenarioSkipsValidation(t *testing.T) {
	bad := baseDeal()
	bad.Revenue = -1

	conf := Configuration{
		Deal: baseDeal(),
		Scenarios: []Scenario{
			{Name: "Base", Active: true, Deal: baseDeal()},
			{Name: "Shelved", Active: false, Deal: bad},
		},
	}
	if _, err := conf.Normalize(); err != nil {
		t.Fatalf("inactive scenario should not be validated, got %v", err)
	}

	active := conf.ActiveScenarios()
	if len(active) != 1 || active[0].Name != "Base" {
		t.Errorf("ActiveScenarios = %v, expected just Base", active)
	}
}

func TestActiveScenariosDefaultsToBaseCase(t *testing.T) {
	conf := Configuration{Deal: baseDeal()}
	active := conf.ActiveScenarios()
	if len(active) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(active))
	}
	if active[0].Name != "Base Case" || !active[0].Active {
		t.Errorf("unexpected default scenario %+v", active[0])
	}
}

func TestMarginRamp(t *testing.T) {
	deal := baseDeal()
	deal.EBITDAMarginStart = 0.20
	deal.EBITDAMarginEnd = 0.28
	deal.HoldYears = 5

	tests := []struct {
		year     int
		expected float64
	}{
		{1, 0.20},
		{2, 0.22},
		{3, 0.24},
		{4, 0.26},
		{5, 0.28},
	}
	for _, tt := range tests {
		if got := deal.Margin(tt.year); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Margin(%d) = %v, expected %v", tt.year, got, tt.expected)
		}
	}

	flat := baseDeal()
	flat.EBITDAMarginEnd = flat.EBITDAMarginStart
	if got := flat.Margin(3); got != flat.EBITDAMarginStart {
		t.Errorf("flat ramp Margin(3) = %v, expected %v", got, flat.EBITDAMarginStart)
	}
}

func TestDerivedEntryFigures(t *testing.T) {
	deal := baseDeal()
	deal.LeaseMultiple = 3.2
	deal.LeaseYears = 10

	if got := deal.EntryEBITDA(); math.Abs(got-200.0) > 1e-9 {
		t.Errorf("EntryEBITDA = %v, expected 200", got)
	}
	if got := deal.TotalDebt(); math.Abs(got-500.0) > 1e-9 {
		t.Errorf("TotalDebt = %v, expected 500", got)
	}
	if got := deal.LeaseLiability(); math.Abs(got-640.0) > 1e-9 {
		t.Errorf("LeaseLiability = %v, expected 640", got)
	}
}

func TestTranchesBySeniority(t *testing.T) {
	deal := baseDeal()
	deal.Tranches = []Tranche{
		{Name: "Mezz", Principal: 200, Rank: 2},
		{Name: "Senior", Principal: 500, Rank: 1},
	}

	sorted := deal.TranchesBySeniority()
	if sorted[0].Name != "Senior" || sorted[1].Name != "Mezz" {
		t.Errorf("unexpected seniority order: %v then %v", sorted[0].Name, sorted[1].Name)
	}
	if deal.Tranches[0].Name != "Mezz" {
		t.Errorf("TranchesBySeniority mutated the receiver slice")
	}
}

func TestCloneDetachesTranches(t *testing.T) {
	deal := baseDeal()
	clone := deal.Clone()
	clone.Tranches[0].Principal = 999.0
	if deal.Tranches[0].Principal != 500.0 {
		t.Errorf("Clone shares the tranche slice with the original")
	}
}

func TestAxisValues(t *testing.T) {
	axis := Axis{Param: ParamExitMultiple, Min: 8.0, Max: 10.0, Steps: 5}
	values := axis.Values()
	expected := []float64{8.0, 8.5, 9.0, 9.5, 10.0}
	if len(values) != len(expected) {
		t.Fatalf("Values returned %d points, expected %d", len(values), len(expected))
	}
	for i := range expected {
		if math.Abs(values[i]-expected[i]) > 1e-12 {
			t.Errorf("Values[%d] = %v, expected %v", i, values[i], expected[i])
		}
	}

	single := Axis{Param: ParamMargin, Min: 0.2, Max: 0.3, Steps: 1}
	if got := single.Values(); len(got) != 1 || got[0] != 0.2 {
		t.Errorf("single-step axis Values = %v, expected [0.2]", got)
	}
}

func TestMonteCarloDefaults(t *testing.T) {
	conf := Configuration{Deal: baseDeal(), MonteCarlo: MonteCarloConfig{Enabled: true}}
	if _, err := conf.Normalize(); err != nil {
		t.Fatalf("Normalize returned error %v", err)
	}
	if conf.MonteCarlo.Draws != 400 {
		t.Errorf("default draws = %d, expected 400", conf.MonteCarlo.Draws)
	}
	if conf.MonteCarlo.Seed != 42 {
		t.Errorf("default seed = %d, expected 42", conf.MonteCarlo.Seed)
	}
}

func TestWaterfallDefaultsAndTierOrder(t *testing.T) {
	conf := Configuration{Deal: baseDeal(), Waterfall: WaterfallConfig{Enabled: true}}
	if _, err := conf.Normalize(); err != nil {
		t.Fatalf("Normalize returned error %v", err)
	}
	wf := conf.Waterfall
	if len(wf.Tiers) != 1 || wf.Tiers[0].Hurdle != 0.08 || wf.Tiers[0].Carry != 0.20 {
		t.Errorf("default tiers = %+v, expected single 8%%/20%% tier", wf.Tiers)
	}
	if wf.MgmtFeeBasis != FeeBasisCommitted {
		t.Errorf("default fee basis = %q, expected committed", wf.MgmtFeeBasis)
	}
	if wf.ClawbackInterest != ClawbackSimple {
		t.Errorf("default clawback interest = %q, expected simple", wf.ClawbackInterest)
	}

	conf = Configuration{Deal: baseDeal(), Waterfall: WaterfallConfig{
		Enabled: true,
		Tiers:   []Tier{{Hurdle: 0.12, Carry: 0.30}, {Hurdle: 0.08, Carry: 0.20}},
	}}
	if _, err := conf.Normalize(); err != nil {
		t.Fatalf("Normalize returned error %v", err)
	}
	if conf.Waterfall.Tiers[0].Hurdle != 0.08 || conf.Waterfall.Tiers[1].Hurdle != 0.12 {
		t.Errorf("tiers not sorted ascending by hurdle: %+v", conf.Waterfall.Tiers)
	}
}

func TestExampleConfigurationRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deal.yaml")
	if err := WriteExample(path); err != nil {
		t.Fatalf("WriteExample returned error %v", err)
	}

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration returned error %v", err)
	}
	if _, err := conf.Normalize(); err != nil {
		t.Fatalf("example configuration failed validation: %v", err)
	}
	if conf.Deal.Revenue != 5000.0 {
		t.Errorf("loaded revenue = %v, expected 5000", conf.Deal.Revenue)
	}
	if len(conf.Deal.Tranches) != 2 {
		t.Errorf("loaded %d tranches, expected 2", len(conf.Deal.Tranches))
	}
	if !conf.MonteCarlo.Enabled || conf.MonteCarlo.Seed != 42 {
		t.Errorf("Monte Carlo settings not round-tripped: %+v", conf.MonteCarlo)
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("expected error loading a missing configuration file")
	}
}
