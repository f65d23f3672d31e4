package debt

import (
	"math"

	"github.com/dealforge/lbo-forecast/internal/cashflow"
	"github.com/dealforge/lbo-forecast/internal/config"
	"github.com/dealforge/lbo-forecast/pkg/constants"
	"github.com/dealforge/lbo-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// tranche carries the running balance between years.
type tranche struct {
	config.Tranche
	balance float64
}

// Simulate runs the financing waterfall over every projected year and returns
// the ordered YearState sequence. Each year, in order: lease service, interest
// senior to junior (PIK accrues), mandatory amortization, revolver support up
// to the minimum cash balance, discretionary sweep in strict seniority order,
// and covenant tests. Breaches are flagged, never fatal; the full trajectory
// is always produced.
func Simulate(logger *zap.Logger, deal config.Deal, proj cashflow.Projection) []YearState {
	if logger == nil {
		logger = zap.NewNop()
	}

	sorted := deal.TranchesBySeniority()
	tranches := make([]*tranche, len(sorted))
	for i, tc := range sorted {
		tranches[i] = &tranche{Tranche: tc, balance: tc.Principal}
	}

	revolverBalance := 0.0
	leaseBalance := deal.LeaseLiability()
	leaseAnnualPaydown := 0.0
	if deal.LeaseYears > 0 {
		leaseAnnualPaydown = leaseBalance / float64(deal.LeaseYears)
	}

	// The minimum balance is funded at close.
	cash := deal.MinCash

	states := make([]YearState, 0, len(proj.Years))

	for _, opYear := range proj.Years {
		ys := YearState{
			Year:         opYear.Year,
			Revenue:      opYear.Revenue,
			EBITDA:       opYear.EBITDA,
			FreeCashFlow: opYear.FreeCashFlow,
			OpeningCash:  cash,
			Revolver:     RevolverState{Limit: deal.RevolverLimit, Opening: revolverBalance},
			Lease:        LeaseState{Opening: leaseBalance},
		}

		available := cash + opYear.FreeCashFlow

		// 1) Lease service: interest plus straight-line principal.
		ys.Lease.Interest = leaseBalance * deal.LeaseRate
		ys.Lease.Paydown = mathutil.Min(leaseAnnualPaydown, leaseBalance)
		leaseBalance -= ys.Lease.Paydown
		ys.Lease.Closing = leaseBalance
		available -= ys.Lease.Interest + ys.Lease.Paydown
		ys.CashInterest += ys.Lease.Interest

		// 2) Revolver interest on the opening balance.
		ys.Revolver.Interest = revolverBalance * deal.RevolverRate
		available -= ys.Revolver.Interest
		ys.CashInterest += ys.Revolver.Interest

		// 3) Tranche interest, senior to junior. PIK capitalizes; a tranche
		// repaid in an earlier year has a zero opening balance and accrues
		// nothing.
		ys.Tranches = make([]TrancheState, len(tranches))
		for i, t := range tranches {
			ts := TrancheState{Name: t.Name, Rank: t.Rank, PIK: t.PIK, Opening: t.balance}
			ts.Interest = t.balance * t.Rate
			if t.PIK {
				ts.PIKAccrued = ts.Interest
				t.balance += ts.Interest
			} else {
				ts.CashInterest = ts.Interest
				available -= ts.Interest
				ys.CashInterest += ts.Interest
			}
			ys.Tranches[i] = ts
		}

		// 4) Mandatory amortization, senior to junior, as a fixed share of
		// original principal.
		for i, t := range tranches {
			due := mathutil.Min(t.Principal*t.AmortPct, t.balance)
			if due <= 0 {
				continue
			}
			t.balance -= due
			available -= due
			ys.Tranches[i].MandatoryPaydown = due
		}

		// 5) Revolver support: draw up to the commitment so the minimum cash
		// balance survives mandatory service. Exhaustion is flagged and the
		// simulation continues with whatever cash remains.
		if available < deal.MinCash {
			draw := mathutil.Min(deal.MinCash-available, deal.RevolverLimit-revolverBalance)
			if draw > 0 {
				revolverBalance += draw
				available += draw
				ys.Revolver.Draw = draw
			}
			if available < deal.MinCash-constants.CurrencyTolerance {
				ys.LiquidityBreach = true
				logger.Warn("revolver exhausted below minimum cash",
					zap.Int("year", ys.Year),
					zap.Float64("cash", available),
					zap.Float64("minCash", deal.MinCash),
				)
			}
		}

		// 6) Discretionary sweep of the excess-cash pool, strict seniority
		// order: revolver first, then non-PIK tranches senior to junior, each
		// repaid in full before cash reaches the next.
		pool := mathutil.Max(0, available-deal.MinCash) * deal.SweepPct
		if pool > 0 {
			pay := mathutil.Min(pool, revolverBalance)
			revolverBalance -= pay
			pool -= pay
			available -= pay
			ys.Revolver.SweepPaydown = pay

			for i, t := range tranches {
				if pool <= 0 {
					break
				}
				if t.PIK {
					continue
				}
				pay := mathutil.Min(pool, t.balance)
				t.balance -= pay
				pool -= pay
				available -= pay
				ys.Tranches[i].SweepPaydown += pay
			}
		}

		// 7) Cash above the minimum balance distributes to equity.
		if dist := available - deal.MinCash; dist > 0 {
			ys.EquityDistribution = dist
			available -= dist
		}

		cash = available
		ys.ClosingCash = cash
		ys.Revolver.Closing = revolverBalance
		for i, t := range tranches {
			ys.Tranches[i].Closing = t.balance
		}

		// 8) Covenant tests on closing balances.
		ys.Leverage = leverageCovenant(ys.NetDebt(), ys.EBITDA, deal.MaxLeverage)
		ys.Coverage = coverageCovenant(ys.EBITDA, ys.CashInterest, deal.MinICR)

		if ys.CovenantBreached() {
			logger.Info("covenant breached",
				zap.Int("year", ys.Year),
				zap.Float64("leverage", ys.Leverage.Ratio),
				zap.Float64("coverage", ys.Coverage.Ratio),
			)
		}

		states = append(states, ys)
	}

	return states
}

// leverageCovenant tests net debt / EBITDA against the configured ceiling.
// Non-positive EBITDA with debt outstanding is an automatic breach; the ratio
// is reported as +Inf rather than a division fault.
func leverageCovenant(netDebt, ebitda, threshold float64) CovenantStatus {
	status := CovenantStatus{Threshold: threshold}
	switch {
	case ebitda > 0:
		status.Ratio = netDebt / ebitda
	case netDebt > 0:
		status.Ratio = math.Inf(1)
	default:
		status.Ratio = 0
	}
	if threshold > 0 {
		status.Breached = status.Ratio > threshold
	}
	return status
}

// coverageCovenant tests EBITDA / cash interest against the configured floor.
// Non-positive EBITDA defines the ratio as 0, an automatic breach; zero cash
// interest with positive EBITDA means no interest burden at all.
func coverageCovenant(ebitda, cashInterest, threshold float64) CovenantStatus {
	status := CovenantStatus{Threshold: threshold}
	switch {
	case ebitda <= 0:
		status.Ratio = 0
		status.Breached = threshold > 0
	case cashInterest <= 0:
		status.Ratio = math.Inf(1)
	default:
		status.Ratio = ebitda / cashInterest
		if threshold > 0 {
			status.Breached = status.Ratio < threshold
		}
	}
	return status
}
