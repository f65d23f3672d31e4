// Package cashflow projects the operating side of a deal: revenue, EBITDA,
// capex, working capital, and unlevered free cash flow for each hold year.
package cashflow

import (
	"fmt"

	"github.com/dealforge/lbo-forecast/internal/config"
	"github.com/dealforge/lbo-forecast/pkg/constants"
	"go.uber.org/zap"
)

// Year holds the operating results for one simulation year.
type Year struct {
	Year    int
	Revenue float64
	Margin  float64
	EBITDA  float64
	DA      float64
	Capex   float64

	// NetWorkingCapital is the days-based balance AR + inventory - AP -
	// deferred revenue; DeltaNWC is its change versus the prior year and is a
	// cash outflow when positive.
	NetWorkingCapital float64
	DeltaNWC          float64

	// CashTaxes are unlevered: tax on EBITDA less D&A, floored at zero.
	CashTaxes float64

	// FreeCashFlow is cash generated before any financing: EBITDA - capex -
	// change in working capital - cash taxes.
	FreeCashFlow float64
}

// Projection is the ordered operating forecast over the hold period.
type Projection struct {
	Years       []Year
	EntryEBITDA float64
}

// ExitEBITDA returns the final hold year's EBITDA.
func (p Projection) ExitEBITDA() float64 {
	return p.Years[len(p.Years)-1].EBITDA
}

// Project computes the operating forecast from validated deal assumptions.
// Revenue compounds geometrically from the year-0 base; the EBITDA margin
// ramps linearly between the start and end assumptions. Returns a
// config.ErrValidation-wrapped error if the hold period is empty or the
// assumptions imply non-positive revenue or EBITDA in any year.
func Project(logger *zap.Logger, deal config.Deal) (Projection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if deal.HoldYears < 1 {
		return Projection{}, fmt.Errorf("holdYears must be at least 1, got %d: %w", deal.HoldYears, config.ErrValidation)
	}

	proj := Projection{
		Years:       make([]Year, 0, deal.HoldYears),
		EntryEBITDA: deal.EntryEBITDA(),
	}

	revenue := deal.Revenue
	prevNWC := workingCapital(deal, revenue, deal.EBITDAMarginStart)

	for year := 1; year <= deal.HoldYears; year++ {
		revenue = revenue * (1 + deal.RevenueGrowth)
		margin := deal.Margin(year)
		ebitda := revenue * margin

		if revenue <= 0 {
			return proj, fmt.Errorf("year %d: projected revenue %.2f is not positive: %w", year, revenue, config.ErrValidation)
		}
		if ebitda <= 0 {
			return proj, fmt.Errorf("year %d: projected EBITDA %.2f is not positive: %w", year, ebitda, config.ErrValidation)
		}

		da := revenue * deal.DAPct
		capex := revenue * (deal.MaintCapexPct + deal.GrowthCapexPct)

		nwc := workingCapital(deal, revenue, margin)
		deltaNWC := nwc - prevNWC
		prevNWC = nwc

		taxes := 0.0
		if ebit := ebitda - da; ebit > 0 {
			taxes = ebit * deal.TaxRate
		}

		fcf := ebitda - capex - deltaNWC - taxes

		logger.Debug("projected operating year",
			zap.Int("year", year),
			zap.Float64("revenue", revenue),
			zap.Float64("ebitda", ebitda),
			zap.Float64("deltaNWC", deltaNWC),
			zap.Float64("freeCashFlow", fcf),
		)

		proj.Years = append(proj.Years, Year{
			Year:              year,
			Revenue:           revenue,
			Margin:            margin,
			EBITDA:            ebitda,
			DA:                da,
			Capex:             capex,
			NetWorkingCapital: nwc,
			DeltaNWC:          deltaNWC,
			CashTaxes:         taxes,
			FreeCashFlow:      fcf,
		})
	}

	return proj, nil
}

// workingCapital returns the days-based net working capital balance for a
// year with the given revenue and margin. Receivables and deferred revenue
// run on daily revenue; inventory and payables run on daily cost of sales.
func workingCapital(deal config.Deal, revenue, margin float64) float64 {
	dailyRevenue := revenue / constants.DaysPerYear
	dailyCost := revenue * (1 - margin) / constants.DaysPerYear

	ar := dailyRevenue * deal.DaysReceivable
	inventory := dailyCost * deal.DaysInventory
	ap := dailyCost * deal.DaysPayable
	deferred := dailyRevenue * deal.DaysDeferred

	return ar + inventory - ap - deferred
}
