// Package engine runs the full deal pipeline: operating projection, debt
// simulation, exit bridge, equity returns, and the optional fund waterfall.
package engine

import (
	"fmt"

	"github.com/dealforge/lbo-forecast/internal/cashflow"
	"github.com/dealforge/lbo-forecast/internal/config"
	"github.com/dealforge/lbo-forecast/internal/debt"
	"github.com/dealforge/lbo-forecast/internal/waterfall"
	"github.com/dealforge/lbo-forecast/pkg/irr"
	"go.uber.org/zap"
)

// SourcesUses captures the entry economics of the deal.
type SourcesUses struct {
	EntryEBITDA     float64
	EnterpriseValue float64
	EntryFees       float64
	TotalDebt       float64
	LeaseLiability  float64 // in net debt, not a cash source
	MinCashFunding  float64 // opening cash balance funded at close
	EquityCheque    float64 // EV plus fees plus opening cash, less debt proceeds
}

// ExitBridge walks from exit EBITDA to equity proceeds: EBITDA times the exit
// multiple, less net debt including the lease liability, less sale costs on
// enterprise value. Computed once at hold-period end.
type ExitBridge struct {
	ExitEBITDA      float64
	ExitMultiple    float64
	EnterpriseValue float64
	NetDebt         float64
	SaleCosts       float64
	EquityValue     float64

	// Negative reports that the bridge produced equity below zero. The
	// scenario is marked unsuccessful but the pipeline completes.
	Negative bool
}

// Result is the output of one full pipeline run.
type Result struct {
	Scenario string
	Deal     config.Deal

	Entry SourcesUses
	Years []debt.YearState
	Exit  ExitBridge

	// EquityCashFlows is the signed annual vector: the equity cheque at time
	// zero, interim distributions, and exit proceeds in the final year.
	EquityCashFlows []float64

	IRR        float64
	IRRDefined bool
	MOIC       float64

	CovenantBreached bool
	LiquidityBreach  bool

	Waterfall *waterfall.Summary
}

// Success reports whether the scenario cleared every gate: no covenant or
// liquidity breach, positive exit equity, and a defined IRR at or above the
// hurdle.
func (r Result) Success(hurdleIRR float64) bool {
	return !r.CovenantBreached &&
		!r.LiquidityBreach &&
		!r.Exit.Negative &&
		r.IRRDefined &&
		r.IRR >= hurdleIRR
}

// Run executes the pipeline for one validated assumption set. The only error
// condition is a failed projection (malformed assumptions); economic outcomes
// such as breaches and negative equity are reported on the Result.
func Run(logger *zap.Logger, scenario string, deal config.Deal, wf config.WaterfallConfig) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	proj, err := cashflow.Project(logger, deal)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", scenario, err)
	}

	years := debt.Simulate(logger, deal, proj)

	result := Result{
		Scenario: scenario,
		Deal:     deal,
		Entry:    entryEconomics(deal),
		Years:    years,
	}

	final := years[len(years)-1]
	result.Exit = exitBridge(deal, proj.ExitEBITDA(), final.NetDebt())

	for _, ys := range years {
		if ys.CovenantBreached() {
			result.CovenantBreached = true
		}
		if ys.LiquidityBreach {
			result.LiquidityBreach = true
		}
	}

	// Signed equity vector: cheque out at close, interim distributions, exit
	// proceeds added to the final year.
	cfs := make([]float64, 0, len(years)+1)
	cfs = append(cfs, -result.Entry.EquityCheque)
	for _, ys := range years {
		cfs = append(cfs, ys.EquityDistribution)
	}
	cfs[len(cfs)-1] += result.Exit.EquityValue
	result.EquityCashFlows = cfs

	if rate, err := irr.IRR(cfs); err == nil {
		result.IRR = rate
		result.IRRDefined = true
	} else {
		logger.Debug("IRR undefined for scenario",
			zap.String("scenario", scenario),
			zap.Error(err),
		)
	}
	result.MOIC = irr.MOIC(cfs)

	if wf.Enabled {
		contributions := make([]float64, len(years))
		distributions := make([]float64, len(years))
		contributions[0] = result.Entry.EquityCheque
		for i, ys := range years {
			distributions[i] = ys.EquityDistribution
		}
		distributions[len(distributions)-1] += result.Exit.EquityValue

		summary, err := waterfall.Distribute(logger, wf, contributions, distributions)
		if err != nil {
			return result, fmt.Errorf("scenario %q: %w", scenario, err)
		}
		result.Waterfall = &summary
	}

	logger.Info("pipeline complete",
		zap.String("scenario", scenario),
		zap.Float64("exitEquity", result.Exit.EquityValue),
		zap.Float64("irr", result.IRR),
		zap.Bool("irrDefined", result.IRRDefined),
		zap.Float64("moic", result.MOIC),
		zap.Bool("covenantBreached", result.CovenantBreached),
	)

	return result, nil
}

// entryEconomics computes sources and uses at close.
func entryEconomics(deal config.Deal) SourcesUses {
	ebitda := deal.EntryEBITDA()
	ev := ebitda * deal.EntryMultiple
	fees := ev * deal.EntryFeesPct
	totalDebt := deal.TotalDebt()

	return SourcesUses{
		EntryEBITDA:     ebitda,
		EnterpriseValue: ev,
		EntryFees:       fees,
		TotalDebt:       totalDebt,
		LeaseLiability:  deal.LeaseLiability(),
		MinCashFunding:  deal.MinCash,
		EquityCheque:    ev + fees + deal.MinCash - totalDebt,
	}
}

// exitBridge computes equity proceeds at the end of the hold period.
func exitBridge(deal config.Deal, exitEBITDA, netDebt float64) ExitBridge {
	ev := exitEBITDA * deal.ExitMultiple
	saleCosts := ev * deal.SaleCostPct
	equity := ev - netDebt - saleCosts

	return ExitBridge{
		ExitEBITDA:      exitEBITDA,
		ExitMultiple:    deal.ExitMultiple,
		EnterpriseValue: ev,
		NetDebt:         netDebt,
		SaleCosts:       saleCosts,
		EquityValue:     equity,
		Negative:        equity < 0,
	}
}
