// Package output provides utilities for formatting and displaying simulation
// results. It is a thin presentation shim; all numbers come straight from the
// engine's result records.
package output

import (
	"fmt"
	"math"
	"strings"

	"github.com/dealforge/lbo-forecast/internal/debt"
	"github.com/dealforge/lbo-forecast/internal/engine"
	"github.com/dealforge/lbo-forecast/internal/sensitivity"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable view of
// one or more scenario results.
func PrettyFormat(results []engine.Result) {
	p := message.NewPrinter(language.English)
	for n, result := range results {
		fmt.Printf("--- Results for scenario %s ---\n", result.Scenario)

		_, _ = p.Printf("Entry: EV %.1f (%.2fx EBITDA %.1f) | debt %.1f | lease %.1f | equity cheque %.1f\n",
			result.Entry.EnterpriseValue, result.Deal.EntryMultiple, result.Entry.EntryEBITDA,
			result.Entry.TotalDebt, result.Entry.LeaseLiability, result.Entry.EquityCheque)

		fmt.Printf("Year | Revenue    | EBITDA    | FCF       | Interest  | Net Debt  | Lev    | ICR    | Flags\n")
		fmt.Printf("____ | __________ | _________ | _________ | _________ | _________ | ______ | ______ | _____\n")
		for _, ys := range result.Years {
			_, _ = p.Printf("%4d | %10.1f | %9.1f | %9.1f | %9.1f | %9.1f | %6.2f | %6s | %s\n",
				ys.Year, ys.Revenue, ys.EBITDA, ys.FreeCashFlow, ys.CashInterest,
				ys.NetDebt(), ys.Leverage.Ratio, formatRatio(ys.Coverage.Ratio), yearFlags(ys))
		}

		_, _ = p.Printf("Exit: EBITDA %.1f x %.2f = EV %.1f | net debt %.1f | sale costs %.1f | equity %.1f\n",
			result.Exit.ExitEBITDA, result.Exit.ExitMultiple, result.Exit.EnterpriseValue,
			result.Exit.NetDebt, result.Exit.SaleCosts, result.Exit.EquityValue)

		if result.IRRDefined {
			_, _ = p.Printf("IRR %.2f%% | MOIC %.2fx\n", result.IRR*100, result.MOIC)
		} else {
			_, _ = p.Printf("IRR undefined | MOIC %.2fx\n", result.MOIC)
		}

		if result.Waterfall != nil {
			printWaterfall(p, result)
		}

		if n < len(results)-1 {
			fmt.Printf("\n")
		}
	}
}

func printWaterfall(p *message.Printer, result engine.Result) {
	wf := result.Waterfall
	_, _ = p.Printf("Waterfall: LP in %.1f out %.1f | GP in %.1f out %.1f | carry %.1f\n",
		wf.LPContributed, wf.LPDistributed, wf.GPContributed, wf.GPDistributed+wf.GPFinalPayout, wf.GPCarryPaid)
	if wf.LPIRRDefined {
		_, _ = p.Printf("LP net IRR %.2f%% | LP MOIC %.2fx\n", wf.LPIRR*100, wf.LPMOIC)
	}
	if wf.Clawback.Triggered {
		_, _ = p.Printf("Claw-back: GP returns %.2f (excess %.2f + interest %.2f)\n",
			wf.Clawback.Amount, wf.Clawback.Excess, wf.Clawback.Interest)
	}
}

// CsvFormat outputs the year-by-year trajectories in comma-separated value
// format. All scenarios share the same hold period, so rows are years and
// each scenario contributes a column group.
func CsvFormat(results []engine.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Printf(`"year"`)
	for _, result := range results {
		fmt.Printf(`,"revenue (%s)","ebitda (%s)","fcf (%s)","net debt (%s)","leverage (%s)","icr (%s)","breach (%s)"`,
			result.Scenario, result.Scenario, result.Scenario, result.Scenario,
			result.Scenario, result.Scenario, result.Scenario)
	}
	fmt.Printf("\n")

	for i := range results[0].Years {
		fmt.Printf(`"%d"`, results[0].Years[i].Year)
		for _, result := range results {
			ys := result.Years[i]
			fmt.Printf(`,"%.2f","%.2f","%.2f","%.2f","%.4f","%.4f","%t"`,
				ys.Revenue, ys.EBITDA, ys.FreeCashFlow, ys.NetDebt(),
				ys.Leverage.Ratio, ys.Coverage.Ratio, ys.CovenantBreached())
		}
		fmt.Printf("\n")
	}
}

// PrettyFormatGrid renders the 2-D sensitivity table with rows down and
// columns across. Undefined cells render as "n/a".
func PrettyFormatGrid(grid sensitivity.GridResult) {
	fmt.Printf("--- IRR sensitivity: %s (rows) x %s (cols) ---\n", grid.RowParam, grid.ColParam)

	fmt.Printf("%12s", "")
	for _, cv := range grid.ColValues {
		fmt.Printf(" | %8.3f", cv)
	}
	fmt.Printf("\n")

	for i, rv := range grid.RowValues {
		fmt.Printf("%12.3f", rv)
		for j := range grid.ColValues {
			cell := grid.IRR[i][j]
			if math.IsNaN(cell) {
				fmt.Printf(" | %8s", "n/a")
			} else {
				fmt.Printf(" | %7.2f%%", cell*100)
			}
		}
		fmt.Printf("\n")
	}
}

// PrettyFormatMonteCarlo renders the batch aggregates plus the priors behind
// them, so a reader can tell what was actually simulated.
func PrettyFormatMonteCarlo(outcome sensitivity.Outcome, sigmaGrowth, sigmaMargin, sigmaMultiple, hurdle float64) {
	p := message.NewPrinter(language.English)
	fmt.Printf("--- Monte Carlo %s ---\n", outcome.RunID)
	_, _ = p.Printf("paths %d (seed %d) | priors: sigma(growth) %.0fbps, sigma(margin) %.0fbps, sigma(multiple) %.2fx\n",
		outcome.Draws, outcome.Seed, sigmaGrowth*10000, sigmaMargin*10000, sigmaMultiple)
	_, _ = p.Printf("success rate %.1f%% (IRR >= %.1f%%, no breach, positive exit equity) | infeasible draws %d\n",
		outcome.SuccessRate*100, hurdle*100, outcome.Failures)
	_, _ = p.Printf("IRR P10 %.2f%% | P50 %.2f%% | P90 %.2f%% (over %d defined paths)\n",
		outcome.P10*100, outcome.P50*100, outcome.P90*100, outcome.DefinedIRRs)
}

func yearFlags(ys debt.YearState) string {
	var flags []string
	if ys.LiquidityBreach {
		flags = append(flags, "liquidity")
	}
	if ys.Leverage.Breached {
		flags = append(flags, "leverage")
	}
	if ys.Coverage.Breached {
		flags = append(flags, "icr")
	}
	return strings.Join(flags, ",")
}

func formatRatio(ratio float64) string {
	if math.IsInf(ratio, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", ratio)
}
