// Package irr computes the internal rate of return of a dated cash-flow
// stream by bisection with a fixed iteration budget.
package irr

import (
	"math"

	"github.com/capmodel/capstack/pkg/constants"
)

// Flow is a single dated cash flow: Years is the offset from inception in
// years and Amount is signed (negative = contribution, positive =
// distribution).
type Flow struct {
	Years  float64
	Amount float64
}

// Status distinguishes "no IRR exists for this stream" (expected, not an
// error) from "the solver ran out of budget".
type Status int

const (
	// Defined means Rate is the annualized IRR within tolerance.
	Defined Status = iota
	// Undefined means the stream lacks both a negative and a positive
	// value, so no rate can make its NPV zero.
	Undefined
	// NoConvergence means the fixed iteration budget was exhausted before
	// the root was bracketed to tolerance; Rate is the best estimate.
	NoConvergence
)

// Result is the outcome of an IRR computation.
type Result struct {
	Rate   float64
	Status Status
}

// Below reports whether the computed rate is below the given hurdle. An
// Undefined result counts as below so hurdle loops do not stall on streams
// that have no return yet.
func (r Result) Below(hurdle float64) bool {
	if r.Status == Undefined {
		return true
	}
	return r.Rate < hurdle
}

// solver bounds; rates below -100%/yr are not meaningful and the upper bound
// widens as needed before bisection starts.
const (
	lowerBound     = -0.999999
	initialUpper   = 10.0
	maxUpper       = 1e4
	widenIteration = 64
)

// NPV returns the net present value of the stream at the given annualized
// rate, discounting each flow by (1+rate)^years.
func NPV(flows []Flow, rate float64) float64 {
	npv := 0.0
	for _, f := range flows {
		npv += f.Amount / math.Pow(1.0+rate, f.Years)
	}
	return npv
}

// Compute solves for the annualized rate making the stream's NPV zero. The
// stream must contain at least one negative and one positive amount for a
// rate to exist; otherwise the result is Undefined.
func Compute(flows []Flow) Result {
	hasNegative, hasPositive := false, false
	for _, f := range flows {
		if f.Amount < 0 {
			hasNegative = true
		} else if f.Amount > 0 {
			hasPositive = true
		}
	}
	if !hasNegative || !hasPositive {
		return Result{Status: Undefined}
	}

	lo, hi := lowerBound, initialUpper
	npvLo := NPV(flows, lo)
	npvHi := NPV(flows, hi)

	// NPV is decreasing in rate for conventional streams; widen the upper
	// bound until the root is bracketed or the cap is hit.
	for i := 0; npvLo*npvHi > 0 && i < widenIteration; i++ {
		hi *= 2
		if hi > maxUpper {
			hi = maxUpper
			npvHi = NPV(flows, hi)
			break
		}
		npvHi = NPV(flows, hi)
	}
	if npvLo*npvHi > 0 {
		// Root never bracketed; report the bound with the smaller
		// residual as the best estimate.
		best := lo
		if math.Abs(npvHi) < math.Abs(npvLo) {
			best = hi
		}
		return Result{Rate: best, Status: NoConvergence}
	}

	for i := 0; i < constants.BisectionIterations; i++ {
		mid := (lo + hi) / 2
		npvMid := NPV(flows, mid)
		if npvMid == 0 {
			return Result{Rate: mid, Status: Defined}
		}
		if npvLo*npvMid < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}

	rate := (lo + hi) / 2
	if hi-lo > constants.IRRTolerance {
		return Result{Rate: rate, Status: NoConvergence}
	}
	return Result{Rate: rate, Status: Defined}
}
