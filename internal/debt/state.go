// Package debt simulates the financing side of a deal year by year: interest,
// mandatory amortization, revolver support, discretionary cash sweep, PIK
// accrual, lease amortization, and covenant tracking.
package debt

// TrancheState is one tranche's activity within a single year.
type TrancheState struct {
	Name string
	Rank int
	PIK  bool

	Opening float64
	Closing float64

	// Interest accrued on the opening balance. For PIK tranches this is
	// capitalized rather than paid; CashInterest is zero in that case.
	Interest     float64
	CashInterest float64
	PIKAccrued   float64

	MandatoryPaydown float64
	SweepPaydown     float64
}

// RevolverState tracks the revolving credit facility within a single year.
// The revolver is the most senior claim: it is drawn when cash cannot cover
// mandatory service plus the minimum balance, and repaid first in the sweep.
type RevolverState struct {
	Limit        float64
	Opening      float64
	Draw         float64
	Interest     float64
	SweepPaydown float64
	Closing      float64
}

// LeaseState tracks the capitalized lease liability within a single year.
// The lease amortizes straight-line over its stated life; its service is paid
// ahead of debt service and its balance counts in net debt.
type LeaseState struct {
	Opening  float64
	Interest float64
	Paydown  float64
	Closing  float64
}

// CovenantStatus is the per-year result of one covenant test.
type CovenantStatus struct {
	Ratio     float64
	Threshold float64
	Breached  bool
}

// YearState is one simulation time step. Each year's opening balances are the
// prior year's closing balances; the ordered sequence over the hold period is
// the full financing trajectory.
type YearState struct {
	Year int

	Revenue      float64
	EBITDA       float64
	FreeCashFlow float64 // before financing, from the cash-flow projection

	Tranches []TrancheState
	Revolver RevolverState
	Lease    LeaseState

	CashInterest float64 // all cash-pay interest: tranches, revolver, lease

	OpeningCash        float64
	ClosingCash        float64
	EquityDistribution float64 // cash above the minimum balance after the sweep

	Leverage CovenantStatus // net debt (incl. lease) / EBITDA
	Coverage CovenantStatus // EBITDA / cash interest

	// LiquidityBreach reports that the revolver was exhausted and the minimum
	// cash balance could not be met. The simulation continues regardless.
	LiquidityBreach bool
}

// TotalDebt returns closing funded debt plus the revolver and lease balances.
func (ys YearState) TotalDebt() float64 {
	total := ys.Revolver.Closing + ys.Lease.Closing
	for _, t := range ys.Tranches {
		total += t.Closing
	}
	return total
}

// NetDebt returns closing total debt less closing cash.
func (ys YearState) NetDebt() float64 {
	return ys.TotalDebt() - ys.ClosingCash
}

// CovenantBreached reports whether either covenant failed this year.
func (ys YearState) CovenantBreached() bool {
	return ys.Leverage.Breached || ys.Coverage.Breached
}
