// Package irr computes internal rates of return and related money multiples
// for annual equity cash-flow vectors.
package irr

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoSolution indicates that the cash-flow vector has no real IRR in the
// search bracket, e.g. when every cash flow has the same sign.
var ErrNoSolution = errors.New("irr: no real solution in bracket")

const (
	tolerance = 1e-10
	maxIter   = 100

	// Search bracket for the discount rate. The lower bound stays above -100%
	// because the discount factor is singular at rate = -1.
	rateFloor   = -0.9999
	rateCeiling = 10.0
)

// NPV returns the net present value of annual cash flows at the given
// discount rate. cashflows[0] occurs at time zero and is not discounted.
func NPV(rate float64, cashflows []float64) float64 {
	npv := 0.0
	for t, cf := range cashflows {
		npv += cf / math.Pow(1.0+rate, float64(t))
	}
	return npv
}

// npvAndDeriv returns (NPV, dNPV/drate) in a single pass for Newton steps.
func npvAndDeriv(rate float64, cashflows []float64) (float64, float64) {
	var npv, deriv float64
	for t, cf := range cashflows {
		ft := float64(t)
		npv += cf / math.Pow(1.0+rate, ft)
		deriv += -ft * cf / math.Pow(1.0+rate, ft+1)
	}
	return npv, deriv
}

// IRR solves for the discount rate that zeroes the NPV of the cash-flow
// vector. cashflows[0] is the time-zero flow (a negative investment in the
// usual case). The solver runs Newton-Raphson and falls back to bisection
// when Newton leaves the bracket or stalls. Returns ErrNoSolution when the
// vector has no sign change or no root exists within the bracket.
func IRR(cashflows []float64) (float64, error) {
	if len(cashflows) < 2 {
		return 0, fmt.Errorf("irr: need at least two cash flows, got %d: %w", len(cashflows), ErrNoSolution)
	}
	if !hasSignChange(cashflows) {
		return 0, fmt.Errorf("irr: all cash flows have the same sign: %w", ErrNoSolution)
	}

	// Newton-Raphson from a conventional starting guess.
	rate := 0.1
	for i := 0; i < maxIter; i++ {
		npv, deriv := npvAndDeriv(rate, cashflows)
		if math.Abs(npv) < tolerance {
			return rate, nil
		}
		if math.Abs(deriv) < 1e-15 {
			break
		}
		next := rate - npv/deriv
		if next <= rateFloor || next >= rateCeiling || math.IsNaN(next) {
			break
		}
		if math.Abs(next-rate) < tolerance {
			return next, nil
		}
		rate = next
	}

	return bisect(cashflows)
}

// bisect finds a root of NPV(r) by scanning for a sign change across the
// bracket and then halving the interval.
func bisect(cashflows []float64) (float64, error) {
	const scanSteps = 200

	lo, hi := rateFloor, rateCeiling
	fLo := NPV(lo, cashflows)

	// Locate the first subinterval where NPV changes sign.
	found := false
	step := (hi - lo) / scanSteps
	for i := 1; i <= scanSteps; i++ {
		r := lo + float64(i)*step
		f := NPV(r, cashflows)
		if fLo*f <= 0 {
			hi = r
			lo = r - step
			found = true
			break
		}
		fLo = f
	}
	if !found {
		return 0, fmt.Errorf("irr: NPV has no sign change in [%.4f, %.4f]: %w", rateFloor, rateCeiling, ErrNoSolution)
	}

	fLo = NPV(lo, cashflows)
	for i := 0; i < maxIter; i++ {
		mid := (lo + hi) / 2
		fMid := NPV(mid, cashflows)
		if math.Abs(fMid) < tolerance || (hi-lo)/2 < tolerance {
			return mid, nil
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}
	return (lo + hi) / 2, nil
}

// MOIC returns the multiple on invested capital: total distributions divided
// by total contributions. Contributions are the negative entries of the
// vector, distributions the positive ones. Returns 0 when nothing was
// contributed.
func MOIC(cashflows []float64) float64 {
	var contributed, distributed float64
	for _, cf := range cashflows {
		if cf < 0 {
			contributed += -cf
		} else {
			distributed += cf
		}
	}
	if contributed == 0 {
		return 0
	}
	return distributed / contributed
}

func hasSignChange(cashflows []float64) bool {
	sawNegative, sawPositive := false, false
	for _, cf := range cashflows {
		if cf < 0 {
			sawNegative = true
		}
		if cf > 0 {
			sawPositive = true
		}
	}
	return sawNegative && sawPositive
}
