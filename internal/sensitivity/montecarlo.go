package sensitivity

import (
	"math"
	"math/rand"
	"sync"

	"github.com/dealforge/lbo-forecast/internal/config"
	"github.com/dealforge/lbo-forecast/internal/engine"
	"github.com/dealforge/lbo-forecast/pkg/id"
	"github.com/dealforge/lbo-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// Draw is the outcome of one Monte Carlo path.
type Draw struct {
	Index int

	// Sampled assumptions for this path.
	RevenueGrowth float64
	MarginShift   float64
	ExitMultiple  float64

	IRR        float64
	IRRDefined bool
	MOIC       float64
	ExitEquity float64

	Success bool
	Failed  bool // sampled assumptions were infeasible; excluded from aggregation
}

// Outcome aggregates a Monte Carlo batch.
type Outcome struct {
	RunID string
	Seed  int64

	Draws    int
	Failures int

	SuccessRate float64

	// IRR percentiles over paths with a defined IRR.
	DefinedIRRs int
	P10         float64
	P50         float64
	P90         float64

	Results []Draw
}

// RunMonteCarlo samples N perturbations of growth, margin, and exit multiple
// from independent normal distributions with the deal's volatility priors and
// re-runs the pipeline per draw. Each draw derives its own RNG stream from
// (seed, draw index), so results are identical run-to-run and independent of
// the worker count. A failing draw is recorded and excluded from percentile
// aggregation, never aborting the batch.
func RunMonteCarlo(logger *zap.Logger, deal config.Deal, mc config.MonteCarloConfig) Outcome {
	if logger == nil {
		logger = zap.NewNop()
	}

	outcome := Outcome{
		RunID:   id.New(),
		Seed:    mc.Seed,
		Draws:   mc.Draws,
		Results: make([]Draw, mc.Draws),
	}

	workers := mc.Workers
	if workers <= 1 {
		for i := 0; i < mc.Draws; i++ {
			outcome.Results[i] = runDraw(logger, deal, mc, i)
		}
	} else {
		// Draws are embarrassingly parallel: each writes only its own slot.
		var wg sync.WaitGroup
		indices := make(chan int)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range indices {
					outcome.Results[i] = runDraw(logger, deal, mc, i)
				}
			}()
		}
		for i := 0; i < mc.Draws; i++ {
			indices <- i
		}
		close(indices)
		wg.Wait()
	}

	successes := 0
	var definedIRRs []float64
	for _, draw := range outcome.Results {
		if draw.Failed {
			outcome.Failures++
			continue
		}
		if draw.Success {
			successes++
		}
		if draw.IRRDefined {
			definedIRRs = append(definedIRRs, draw.IRR)
		}
	}

	outcome.SuccessRate = float64(successes) / float64(mc.Draws)
	outcome.DefinedIRRs = len(definedIRRs)
	outcome.P10 = mathutil.Percentile(definedIRRs, 10)
	outcome.P50 = mathutil.Percentile(definedIRRs, 50)
	outcome.P90 = mathutil.Percentile(definedIRRs, 90)

	logger.Info("Monte Carlo batch complete",
		zap.String("runID", outcome.RunID),
		zap.Int64("seed", mc.Seed),
		zap.Int("draws", mc.Draws),
		zap.Int("failures", outcome.Failures),
		zap.Float64("successRate", outcome.SuccessRate),
		zap.Float64("p50IRR", outcome.P50),
	)

	return outcome
}

// runDraw samples one path and runs the pipeline on it. The sampling order
// (growth, margin, multiple) is fixed; changing it would change every seeded
// result.
func runDraw(logger *zap.Logger, deal config.Deal, mc config.MonteCarloConfig, index int) Draw {
	rng := rand.New(rand.NewSource(mc.Seed + int64(index)))

	perturbed := deal.Clone()
	perturbed.RevenueGrowth += rng.NormFloat64() * deal.SigmaGrowth
	marginShift := rng.NormFloat64() * deal.SigmaMargin
	perturbed.EBITDAMarginStart += marginShift
	perturbed.EBITDAMarginEnd += marginShift
	perturbed.ExitMultiple += rng.NormFloat64() * deal.SigmaMultiple

	draw := Draw{
		Index:         index,
		RevenueGrowth: perturbed.RevenueGrowth,
		MarginShift:   marginShift,
		ExitMultiple:  perturbed.ExitMultiple,
	}

	if err := perturbed.Validate(); err != nil {
		logger.Debug("infeasible Monte Carlo draw",
			zap.Int("draw", index),
			zap.Error(err),
		)
		draw.Failed = true
		draw.IRR = math.NaN()
		return draw
	}

	result, err := engine.Run(zap.NewNop(), "montecarlo", perturbed, config.WaterfallConfig{})
	if err != nil {
		logger.Debug("Monte Carlo draw pipeline failed",
			zap.Int("draw", index),
			zap.Error(err),
		)
		draw.Failed = true
		draw.IRR = math.NaN()
		return draw
	}

	draw.IRR = result.IRR
	draw.IRRDefined = result.IRRDefined
	draw.MOIC = result.MOIC
	draw.ExitEquity = result.Exit.EquityValue
	draw.Success = result.Success(mc.HurdleIRR)
	if !draw.IRRDefined {
		draw.IRR = math.NaN()
	}

	return draw
}
