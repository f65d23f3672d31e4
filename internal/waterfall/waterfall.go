// Package waterfall distributes equity proceeds between LP and GP through
// ordered tiers: return of capital, preferred return, GP catch-up, and
// carried-interest split, with a claw-back correction pass at the end.
package waterfall

import (
	"fmt"
	"sort"

	"github.com/dealforge/lbo-forecast/internal/config"
	"github.com/dealforge/lbo-forecast/pkg/constants"
	"github.com/dealforge/lbo-forecast/pkg/irr"
	"github.com/dealforge/lbo-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// YearResult is the allocation of one year's capital call and distribution.
type YearResult struct {
	Year int

	CapitalCall    float64
	LPContribution float64
	GPContribution float64

	MgmtFee           float64
	GrossDistribution float64
	NetDistribution   float64

	LPReturnOfCapital float64
	GPReturnOfCapital float64
	LPPreferred       float64
	GPCatchUp         float64
	LPResidual        float64
	GPCarry           float64

	// GPAccrued is carry earned but deferred under cashless treatment.
	GPAccrued float64

	LPTotal float64
	GPTotal float64
}

// Clawback reports the correction pass: carry the GP must return because
// interim distributions exceeded the entitlement implied by final results.
type Clawback struct {
	Triggered bool
	Excess    float64 // overpaid carry
	Interest  float64 // simple interest from year of original payment
	Amount    float64 // Excess + Interest, paid GP to LP in the final year
}

// Summary aggregates the full waterfall.
type Summary struct {
	Years []YearResult

	LPContributed float64
	GPContributed float64
	FeesPaid      float64

	LPDistributed float64
	GPDistributed float64 // carry plus GP return of capital, before claw-back

	GPCarryPaid   float64
	GPFinalPayout float64 // deferred carry released in the final year (cashless)

	Clawback Clawback

	LPIRR        float64
	LPIRRDefined bool
	GPIRR        float64
	GPIRRDefined bool
	LPMOIC       float64
}

// TotalDistributed returns net proceeds allocated across LP and GP.
func (s Summary) TotalDistributed() float64 {
	return s.LPDistributed + s.GPDistributed + s.GPFinalPayout
}

// state carries waterfall balances across years.
type state struct {
	cfg config.WaterfallConfig

	committed  float64
	totalDrawn float64

	lpCapitalOutstanding float64
	gpCapitalOutstanding float64

	// prefBalance is the unpaid compounding preferred return at the first
	// tier's hurdle. prefEntitlement tracks the same accrual per tier without
	// reduction and gates the higher carry tiers.
	prefBalance     float64
	prefEntitlement []float64

	lpProfitPaid float64 // LP distributions beyond return of capital
	gpCarryPaid  float64
	gpAccrued    float64

	// carryByYear records when carry was paid, for claw-back interest.
	carryByYear map[int]float64
}

// Distribute runs the waterfall over aligned annual capital-call and
// distribution vectors. Calls land at the start of each year, distributions
// at the end. Returns an error only for malformed inputs; economic outcomes
// such as claw-back are reported in the Summary.
func Distribute(logger *zap.Logger, cfg config.WaterfallConfig, contributions, distributions []float64) (Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(contributions) != len(distributions) {
		return Summary{}, fmt.Errorf("waterfall: %d contributions vs %d distributions: %w",
			len(contributions), len(distributions), config.ErrValidation)
	}
	if len(contributions) == 0 {
		return Summary{}, fmt.Errorf("waterfall: empty cash-flow vectors: %w", config.ErrValidation)
	}

	st := &state{
		cfg:             cfg,
		prefEntitlement: make([]float64, len(cfg.Tiers)),
		carryByYear:     make(map[int]float64),
	}
	for _, c := range contributions {
		st.committed += c
	}

	summary := Summary{Years: make([]YearResult, 0, len(contributions))}
	lpCF := make([]float64, 0, len(contributions)+1)
	gpCF := make([]float64, 0, len(contributions)+1)

	years := len(contributions)
	for i := 0; i < years; i++ {
		yr := st.processYear(i+1, contributions[i], distributions[i])

		summary.LPContributed += yr.LPContribution
		summary.GPContributed += yr.GPContribution
		summary.FeesPaid += yr.MgmtFee
		summary.LPDistributed += yr.LPTotal
		summary.GPDistributed += yr.GPTotal
		summary.GPCarryPaid += yr.GPCatchUp + yr.GPCarry - yr.GPAccrued

		lpCF = append(lpCF, yr.LPTotal-yr.LPContribution-yr.MgmtFee)
		gpCF = append(gpCF, yr.GPTotal-yr.GPContribution)

		summary.Years = append(summary.Years, yr)
	}

	// Cashless carry releases as a single GP payout in the final year.
	if cfg.Cashless && st.gpAccrued > 0 {
		payout := st.gpAccrued
		summary.GPFinalPayout = payout
		summary.GPCarryPaid += payout
		st.gpCarryPaid += payout
		st.carryByYear[years] += payout
		gpCF[len(gpCF)-1] += payout
		st.gpAccrued = 0
	}

	// Claw-back correction pass against final, not interim, results.
	summary.Clawback = st.clawback(years)
	if summary.Clawback.Triggered {
		logger.Info("GP claw-back triggered",
			zap.Float64("excess", summary.Clawback.Excess),
			zap.Float64("interest", summary.Clawback.Interest),
		)
		lpCF[len(lpCF)-1] += summary.Clawback.Amount
		gpCF[len(gpCF)-1] -= summary.Clawback.Amount
	}

	if v, err := irr.IRR(lpCF); err == nil {
		summary.LPIRR = v
		summary.LPIRRDefined = true
	}
	if v, err := irr.IRR(gpCF); err == nil {
		summary.GPIRR = v
		summary.GPIRRDefined = true
	}
	if summary.LPContributed > 0 {
		summary.LPMOIC = (summary.LPDistributed + summary.Clawback.Amount) / summary.LPContributed
	}

	return summary, nil
}

// processYear applies one year's call and distribution through the tiers.
func (st *state) processYear(year int, call, dist float64) YearResult {
	yr := YearResult{Year: year, CapitalCall: call, GrossDistribution: dist}

	// 1) Capital call, split by commitment share.
	yr.GPContribution = call * st.cfg.GPCommitmentPct
	yr.LPContribution = call - yr.GPContribution
	st.lpCapitalOutstanding += yr.LPContribution
	st.gpCapitalOutstanding += yr.GPContribution
	st.totalDrawn += call

	// 2) Preferred return accrues on outstanding LP capital plus any unpaid
	// preferred, compounding annually. Entitlement trackers accrue per tier.
	for k, tier := range st.cfg.Tiers {
		st.prefEntitlement[k] += (st.lpCapitalOutstanding + st.prefEntitlement[k]) * tier.Hurdle
	}
	if len(st.cfg.Tiers) > 0 {
		st.prefBalance += (st.lpCapitalOutstanding + st.prefBalance) * st.cfg.Tiers[0].Hurdle
	}

	// 3) Management fee comes off the top of the distribution.
	feeBase := st.committed
	if st.cfg.MgmtFeeBasis == config.FeeBasisDrawn {
		feeBase = st.totalDrawn
	}
	yr.MgmtFee = feeBase * st.cfg.MgmtFeePct
	remaining := mathutil.Max(0, dist-yr.MgmtFee)
	yr.NetDistribution = remaining

	// 4) Return of capital: LP first, then the GP's committed share.
	yr.LPReturnOfCapital = mathutil.Min(remaining, st.lpCapitalOutstanding)
	st.lpCapitalOutstanding -= yr.LPReturnOfCapital
	remaining -= yr.LPReturnOfCapital

	yr.GPReturnOfCapital = mathutil.Min(remaining, st.gpCapitalOutstanding)
	st.gpCapitalOutstanding -= yr.GPReturnOfCapital
	remaining -= yr.GPReturnOfCapital

	// 5) Preferred return, all to LP.
	yr.LPPreferred = mathutil.Min(remaining, st.prefBalance)
	st.prefBalance -= yr.LPPreferred
	remaining -= yr.LPPreferred
	st.lpProfitPaid += yr.LPPreferred

	// 6) Carry tiers on whatever is left.
	if remaining > 0 && len(st.cfg.Tiers) > 0 {
		tier := st.marginalTier()
		carry := tier.Carry

		// GP catch-up: 100% of incremental proceeds until the GP's cumulative
		// carry equals its share of all profit distributed beyond capital.
		profitSoFar := st.lpProfitPaid + st.gpCarryPaid + st.gpAccrued
		target := (carry*profitSoFar - (st.gpCarryPaid + st.gpAccrued)) / (1 - carry)
		catchUp := mathutil.Clamp(target, 0, remaining)
		yr.GPCatchUp = catchUp
		remaining -= catchUp
		st.recordCarry(year, catchUp)

		// Residual split at the marginal carry percentage.
		yr.GPCarry = remaining * carry
		yr.LPResidual = remaining - yr.GPCarry
		remaining = 0
		st.recordCarry(year, yr.GPCarry)
		st.lpProfitPaid += yr.LPResidual
	} else {
		// No carry tiers: residual belongs to LP.
		yr.LPResidual = remaining
		st.lpProfitPaid += remaining
		remaining = 0
	}

	yr.LPTotal = yr.LPReturnOfCapital + yr.LPPreferred + yr.LPResidual
	yr.GPTotal = yr.GPReturnOfCapital + yr.GPCatchUp + yr.GPCarry
	if st.cfg.Cashless {
		yr.GPAccrued = yr.GPCatchUp + yr.GPCarry
		yr.GPTotal = yr.GPReturnOfCapital
	}

	return yr
}

// marginalTier returns the highest tier whose preferred entitlement the LP's
// cumulative profit has already cleared. The first tier always applies once
// the preferred balance itself is paid down.
func (st *state) marginalTier() config.Tier {
	tier := st.cfg.Tiers[0]
	for k := 1; k < len(st.cfg.Tiers); k++ {
		if st.lpProfitPaid >= st.prefEntitlement[k] {
			tier = st.cfg.Tiers[k]
		}
	}
	return tier
}

// recordCarry books a carry payment (or accrual, under cashless treatment).
func (st *state) recordCarry(year int, amount float64) {
	if amount <= 0 {
		return
	}
	if st.cfg.Cashless {
		st.gpAccrued += amount
		return
	}
	st.gpCarryPaid += amount
	st.carryByYear[year] += amount
}

// clawback recomputes the GP's entitled carry from final results and returns
// the correction. Excess carry is attributed to payment years proportionally;
// simple interest accrues at the first tier's hurdle from each payment year
// to the final year.
func (st *state) clawback(finalYear int) Clawback {
	var cb Clawback
	if len(st.cfg.Tiers) == 0 || st.gpCarryPaid <= 0 {
		return cb
	}

	// Net distributed = profit allocations plus capital actually returned.
	capitalReturned := st.committed - st.lpCapitalOutstanding - st.gpCapitalOutstanding
	totalNetDist := st.lpProfitPaid + st.gpCarryPaid + capitalReturned

	finalProfit := mathutil.Max(0, totalNetDist-st.totalDrawn)
	entitled := st.finalCarryRate() * finalProfit

	excess := st.gpCarryPaid - entitled
	if excess <= constants.CurrencyTolerance {
		return cb
	}

	cb.Triggered = true
	cb.Excess = excess

	if st.cfg.ClawbackInterest == config.ClawbackSimple {
		rate := st.cfg.Tiers[0].Hurdle
		// Sum in year order; map iteration would make the float accumulation
		// order-dependent across runs.
		years := make([]int, 0, len(st.carryByYear))
		for year := range st.carryByYear {
			years = append(years, year)
		}
		sort.Ints(years)
		for _, year := range years {
			share := st.carryByYear[year] / st.gpCarryPaid
			cb.Interest += excess * share * rate * float64(finalYear-year)
		}
	}
	cb.Amount = cb.Excess + cb.Interest
	return cb
}

// finalCarryRate returns the carry percentage the final results support.
func (st *state) finalCarryRate() float64 {
	rate := st.cfg.Tiers[0].Carry
	for k := 1; k < len(st.cfg.Tiers); k++ {
		if st.lpProfitPaid >= st.prefEntitlement[k] {
			rate = st.cfg.Tiers[k].Carry
		}
	}
	return rate
}
