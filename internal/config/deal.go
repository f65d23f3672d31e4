package config

import (
	"fmt"
	"sort"
)

// Deal is the validated, immutable set of assumptions for one buyout
// scenario. It is passed by value through the pipeline; nothing mutates it
// after Normalize.
type Deal struct {
	// Entry / exit pricing
	EntryMultiple float64 `yaml:"entryMultiple"` // EV / entry EBITDA
	ExitMultiple  float64 `yaml:"exitMultiple"`  // EV / exit EBITDA
	EntryFeesPct  float64 `yaml:"entryFeesPct"`  // fees and OID, pct of entry EV
	SaleCostPct   float64 `yaml:"saleCostPct"`   // transaction costs at exit, pct of exit EV

	// Operating assumptions
	Revenue           float64 `yaml:"revenue"`       // year-0 revenue
	RevenueGrowth     float64 `yaml:"revenueGrowth"` // annual geometric growth
	EBITDAMarginStart float64 `yaml:"ebitdaMarginStart"`
	EBITDAMarginEnd   float64 `yaml:"ebitdaMarginEnd,omitempty"` // 0 means flat at start margin
	MaintCapexPct     float64 `yaml:"maintCapexPct"`             // pct of revenue
	GrowthCapexPct    float64 `yaml:"growthCapexPct"`            // pct of revenue
	DAPct             float64 `yaml:"daPct"`                     // depreciation & amortization, pct of revenue
	TaxRate           float64 `yaml:"taxRate"`

	// Working capital day counts
	DaysReceivable float64 `yaml:"daysReceivable"`
	DaysInventory  float64 `yaml:"daysInventory"`
	DaysPayable    float64 `yaml:"daysPayable"`
	DaysDeferred   float64 `yaml:"daysDeferred"` // deferred revenue / bookings

	// Financing
	Tranches      []Tranche `yaml:"tranches"`
	RevolverLimit float64   `yaml:"revolverLimit"`
	RevolverRate  float64   `yaml:"revolverRate"`
	SweepPct      float64   `yaml:"sweepPct"` // share of excess cash swept to prepayment
	MinCash       float64   `yaml:"minCash"`  // cash balance retained each year

	// IFRS-16 lease liability, included in net debt at entry and exit
	LeaseMultiple float64 `yaml:"leaseMultiple"` // lease liability as multiple of entry EBITDA
	LeaseRate     float64 `yaml:"leaseRate"`
	LeaseYears    int     `yaml:"leaseYears"` // straight-line amortization period

	// Covenant thresholds; zero disables the test
	MaxLeverage float64 `yaml:"maxLeverage"` // net debt / EBITDA ceiling
	MinICR      float64 `yaml:"minICR"`      // EBITDA / cash interest floor

	// Horizon
	HoldYears int `yaml:"holdYears"`

	// Monte Carlo volatility priors
	SigmaGrowth   float64 `yaml:"sigmaGrowth,omitempty"`   // std dev of revenue growth
	SigmaMargin   float64 `yaml:"sigmaMargin,omitempty"`   // std dev of EBITDA margin
	SigmaMultiple float64 `yaml:"sigmaMultiple,omitempty"` // std dev of exit multiple
}

// Tranche defines one debt facility at entry.
type Tranche struct {
	Name      string  `yaml:"name"`
	Principal float64 `yaml:"principal"`
	Rate      float64 `yaml:"rate"`
	Rank      int     `yaml:"rank"`     // seniority, 1 = most senior; must be unique
	AmortPct  float64 `yaml:"amortPct"` // mandatory amortization, pct of original principal per year; 0 = bullet
	PIK       bool    `yaml:"pik"`      // interest accrues to principal instead of paying cash
}

// EntryEBITDA returns year-0 EBITDA implied by the operating assumptions.
func (d Deal) EntryEBITDA() float64 {
	return d.Revenue * d.EBITDAMarginStart
}

// TotalDebt returns the sum of tranche principals at entry, excluding the
// undrawn revolver and the lease liability.
func (d Deal) TotalDebt() float64 {
	total := 0.0
	for _, t := range d.Tranches {
		total += t.Principal
	}
	return total
}

// LeaseLiability returns the capitalized lease balance at entry.
func (d Deal) LeaseLiability() float64 {
	return d.EntryEBITDA() * d.LeaseMultiple
}

// Margin returns the EBITDA margin for simulation year (1-based), ramping
// linearly from the start margin in year 1 to the end margin in the final
// hold year.
func (d Deal) Margin(year int) float64 {
	if d.HoldYears <= 1 || d.EBITDAMarginEnd == d.EBITDAMarginStart {
		return d.EBITDAMarginStart
	}
	frac := float64(year-1) / float64(d.HoldYears-1)
	return d.EBITDAMarginStart + (d.EBITDAMarginEnd-d.EBITDAMarginStart)*frac
}

// Clone returns a deep copy of the assumptions, detaching the tranche slice
// so perturbation drivers can modify the copy freely.
func (d Deal) Clone() Deal {
	out := d
	out.Tranches = make([]Tranche, len(d.Tranches))
	copy(out.Tranches, d.Tranches)
	return out
}

// Validate re-checks an assumption set that was already normalized, e.g. a
// perturbed copy produced by a sensitivity or Monte Carlo driver.
func (d Deal) Validate() error {
	return d.validate("deal")
}

// normalize applies defaults, then validates. The context string names the
// assumption set in error messages.
func (d *Deal) normalize(context string) ([]string, error) {
	var warnings []string

	if d.EBITDAMarginEnd == 0 {
		d.EBITDAMarginEnd = d.EBITDAMarginStart
	}

	// Seniority ranks must be a strict total order. Unset ranks default to
	// declaration order when no ranks were given at all.
	allZero := true
	for _, t := range d.Tranches {
		if t.Rank != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		for i := range d.Tranches {
			d.Tranches[i].Rank = i + 1
		}
	}

	if err := d.validate(context); err != nil {
		return warnings, err
	}

	if d.TotalDebt() > d.EntryMultiple*d.EntryEBITDA() {
		warnings = append(warnings, fmt.Sprintf("%s: total debt %.2f exceeds entry enterprise value %.2f; equity cheque is negative",
			context, d.TotalDebt(), d.EntryMultiple*d.EntryEBITDA()))
	}
	if d.SweepPct == 0 {
		warnings = append(warnings, fmt.Sprintf("%s: sweepPct is 0; no discretionary prepayment will occur", context))
	}

	return warnings, nil
}

func (d *Deal) validate(context string) error {
	fail := func(format string, args ...interface{}) error {
		return fmt.Errorf("%s: %s: %w", context, fmt.Sprintf(format, args...), ErrValidation)
	}

	if d.Revenue <= 0 {
		return fail("revenue must be positive, got %.2f", d.Revenue)
	}
	if d.HoldYears < 1 {
		return fail("holdYears must be at least 1, got %d", d.HoldYears)
	}
	if d.EntryMultiple <= 0 || d.ExitMultiple <= 0 {
		return fail("entry and exit multiples must be positive, got %.2f / %.2f", d.EntryMultiple, d.ExitMultiple)
	}
	if d.EBITDAMarginStart <= 0 || d.EBITDAMarginStart > 1 {
		return fail("ebitdaMarginStart must be in (0, 1], got %.4f", d.EBITDAMarginStart)
	}
	if d.EBITDAMarginEnd <= 0 || d.EBITDAMarginEnd > 1 {
		return fail("ebitdaMarginEnd must be in (0, 1], got %.4f", d.EBITDAMarginEnd)
	}
	if d.RevenueGrowth <= -1 {
		return fail("revenueGrowth must be greater than -100%%, got %.4f", d.RevenueGrowth)
	}
	if d.SweepPct < 0 || d.SweepPct > 1 {
		return fail("sweepPct must be in [0, 1], got %.4f", d.SweepPct)
	}
	if d.TaxRate < 0 || d.TaxRate >= 1 {
		return fail("taxRate must be in [0, 1), got %.4f", d.TaxRate)
	}

	for name, v := range map[string]float64{
		"entryFeesPct":   d.EntryFeesPct,
		"saleCostPct":    d.SaleCostPct,
		"maintCapexPct":  d.MaintCapexPct,
		"growthCapexPct": d.GrowthCapexPct,
		"daPct":          d.DAPct,
		"daysReceivable": d.DaysReceivable,
		"daysInventory":  d.DaysInventory,
		"daysPayable":    d.DaysPayable,
		"daysDeferred":   d.DaysDeferred,
		"revolverLimit":  d.RevolverLimit,
		"revolverRate":   d.RevolverRate,
		"minCash":        d.MinCash,
		"leaseMultiple":  d.LeaseMultiple,
		"leaseRate":      d.LeaseRate,
		"maxLeverage":    d.MaxLeverage,
		"minICR":         d.MinICR,
		"sigmaGrowth":    d.SigmaGrowth,
		"sigmaMargin":    d.SigmaMargin,
		"sigmaMultiple":  d.SigmaMultiple,
	} {
		if v < 0 {
			return fail("%s must be non-negative, got %.4f", name, v)
		}
	}

	if d.LeaseMultiple > 0 && d.LeaseYears < 1 {
		return fail("leaseYears must be at least 1 when a lease liability is modeled")
	}

	if len(d.Tranches) == 0 && d.RevolverLimit == 0 {
		return fail("at least one debt tranche or a revolver is required")
	}

	seen := make(map[int]string, len(d.Tranches))
	for i, t := range d.Tranches {
		if t.Name == "" {
			return fail("tranche %d has no name", i)
		}
		if t.Principal < 0 {
			return fail("tranche %q principal must be non-negative, got %.2f", t.Name, t.Principal)
		}
		if t.Rate < 0 {
			return fail("tranche %q rate must be non-negative, got %.4f", t.Name, t.Rate)
		}
		if t.AmortPct < 0 || t.AmortPct > 1 {
			return fail("tranche %q amortPct must be in [0, 1], got %.4f", t.Name, t.AmortPct)
		}
		if t.PIK && t.AmortPct > 0 {
			return fail("tranche %q cannot both PIK and amortize", t.Name)
		}
		if other, dup := seen[t.Rank]; dup {
			return fail("tranches %q and %q share seniority rank %d", other, t.Name, t.Rank)
		}
		seen[t.Rank] = t.Name
	}

	return nil
}

// TranchesBySeniority returns the tranche definitions sorted most senior
// first. The receiver's slice is not modified.
func (d Deal) TranchesBySeniority() []Tranche {
	sorted := make([]Tranche, len(d.Tranches))
	copy(sorted, d.Tranches)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })
	return sorted
}
