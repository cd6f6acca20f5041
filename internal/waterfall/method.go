package waterfall

import (
	"fmt"
	"math"
	"strings"

	"github.com/capmodel/capstack/internal/config"
	"github.com/capmodel/capstack/pkg/constants"
	"github.com/capmodel/capstack/pkg/irr"
	"github.com/capmodel/capstack/pkg/mathutil"
	"github.com/capmodel/capstack/pkg/series"
	"go.uber.org/zap"
)

// promoteEpsilon bounds the promote loop: residual profit below it is left
// unallocated rather than churned through further tiers.
const promoteEpsilon = 1e-9

// hurdleTolerance is the acceptable gap between a bisected boundary's
// achieved IRR and its tier hurdle before the result is flagged.
const hurdleTolerance = 1e-4

// Method is the distribution method variant: every method computes a
// partner x period matrix from the same inputs.
type Method interface {
	Name() string
	Distribute(logger *zap.Logger, residual *series.Series, structure *config.CapitalStructure) (*Result, error)
}

// MethodFor resolves a configured method name to its variant.
func MethodFor(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "", "waterfall":
		return Tiered{}, nil
	case "paripassu":
		return PariPassu{}, nil
	default:
		return nil, fmt.Errorf("unknown distribution method %q", name)
	}
}

// PariPassu splits every period's value pro-rata by ownership share with no
// tiers and no promote.
type PariPassu struct{}

// Name implements Method.
func (PariPassu) Name() string { return "pariPassu" }

// Distribute implements Method.
func (PariPassu) Distribute(logger *zap.Logger, residual *series.Series, structure *config.CapitalStructure) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tl := residual.Timeline()
	res := newResult(structure, tl.Len())

	for _, p := range tl.Periods() {
		amount := residual.At(p.Index)
		if amount == 0 {
			continue
		}
		for j, partner := range structure.Partners {
			res.Matrix[j][p.Index] += amount * partner.Share
		}
		logger.Debug(fmt.Sprintf("%s: splitting %.2f pari passu", p.Label, amount),
			zap.String("op", "waterfall.PariPassu.Distribute"),
		)
	}
	return res, nil
}

// Tiered is the hurdle-based promote waterfall: capital calls pro-rata,
// distributions return capital first and then escalate remaining profit
// through promote tiers, bisecting the exact amount at each hurdle.
type Tiered struct{}

// Name implements Method.
func (Tiered) Name() string { return "waterfall" }

// Distribute implements Method.
func (Tiered) Distribute(logger *zap.Logger, residual *series.Series, structure *config.CapitalStructure) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tl := residual.Timeline()
	res := newResult(structure, tl.Len())
	st := newState(len(structure.Partners))
	gpTotal := structure.GPShareTotal()

	for _, p := range tl.Periods() {
		amount := residual.At(p.Index)
		switch {
		case amount < 0:
			distributeCall(res, st, structure, p.Index, amount)
			logger.Debug(fmt.Sprintf("%s: capital call of %.2f split pro-rata", p.Label, -amount),
				zap.String("op", "waterfall.Tiered.Distribute"),
			)
		case amount > 0:
			warnings := distributePositive(logger, res, st, structure, gpTotal, p.Index, p.Years(), p.Label, amount)
			res.Warnings = append(res.Warnings, warnings...)
		}
		st.FinalizePeriod(p.Years(), amount)
	}
	return res, nil
}

// distributeCall splits a capital call pro-rata by ownership share and
// accumulates each partner's cumulative contribution.
func distributeCall(res *Result, st *State, structure *config.CapitalStructure, idx int, amount float64) {
	for j, partner := range structure.Partners {
		alloc := amount * partner.Share
		res.Matrix[j][idx] += alloc
		st.Contributed[j] += -alloc
	}
}

// distributePositive runs the two distribution passes for one period:
// capital return pro-rata to unreturned balances, then the promote loop over
// remaining profit.
func distributePositive(logger *zap.Logger, res *Result, st *State, structure *config.CapitalStructure,
	gpTotal float64, idx int, years float64, label string, amount float64) []string {

	var warnings []string
	remaining := amount
	allocated := 0.0

	// Pass 1: return capital against each partner's unreturned balance.
	if unreturned := st.UnreturnedTotal(); unreturned > promoteEpsilon {
		ret := mathutil.Min(unreturned, remaining)
		for j := range structure.Partners {
			balance := st.Contributed[j] - st.Returned[j]
			give := ret * mathutil.SafeRatio(balance, unreturned)
			res.Matrix[j][idx] += give
			st.Returned[j] += give
		}
		remaining -= ret
		allocated += ret
		logger.Debug(fmt.Sprintf("%s: returned %.2f of capital", label, ret),
			zap.String("op", "waterfall.Tiered.Distribute"),
		)
	}

	// Pass 2: escalate remaining profit through the promote tiers. The
	// combined IRR test depends only on the total allocated in the
	// period; the tier's promote rate decides how that total is split.
	for remaining > promoteEpsilon {
		hurdle, rate := st.CurrentTier(structure)

		full := st.TestIRR(years, allocated+remaining)
		if full.Status == irr.Undefined {
			logger.Debug("running IRR undefined for candidate stream; treating as below hurdle",
				zap.String("op", "waterfall.Tiered.Distribute"),
				zap.String("period", label),
			)
		}
		if full.Below(hurdle) {
			allocateAtRate(res, structure, gpTotal, idx, remaining, rate)
			logger.Debug(fmt.Sprintf("%s: allocated %.2f within tier %d (promote %.0f%%)",
				label, remaining, st.TierIndex, rate*100),
				zap.String("op", "waterfall.Tiered.Distribute"),
			)
			allocated += remaining
			remaining = 0
			break
		}

		x, achieved := bisectTierAmount(st, years, allocated, remaining, hurdle)
		if achieved.Status == irr.NoConvergence ||
			(achieved.Status == irr.Defined && math.Abs(achieved.Rate-hurdle) > hurdleTolerance) {
			warnings = append(warnings,
				fmt.Sprintf("%s: tier %d boundary did not converge within the iteration budget (IRR %.6f vs hurdle %.6f); using best estimate",
					label, st.TierIndex, achieved.Rate, hurdle))
		}
		allocateAtRate(res, structure, gpTotal, idx, x, rate)
		allocated += x
		remaining -= x
		logger.Debug(fmt.Sprintf("%s: tier %d filled with %.2f at hurdle %.4f, advancing",
			label, st.TierIndex, x, hurdle),
			zap.String("op", "waterfall.Tiered.Distribute"),
		)
		// The tier pointer only ever advances, even if later capital
		// calls pull the running IRR back below this hurdle.
		st.TierIndex++
	}
	return warnings
}

// allocateAtRate splits an amount at a promote rate: (1-rate) pro-rata by
// share to all partners, rate pro-rata by GP share among GP-role partners.
func allocateAtRate(res *Result, structure *config.CapitalStructure,
	gpTotal float64, idx int, amount, rate float64) {

	if gpTotal <= 0 {
		rate = 0
	}
	base := amount * (1 - rate)
	promote := amount * rate
	for j, partner := range structure.Partners {
		give := base * partner.Share
		if partner.Role == config.GP {
			give += promote * mathutil.SafeRatio(partner.Share, gpTotal)
		}
		res.Matrix[j][idx] += give
	}
}

// bisectTierAmount finds the sub-amount x of remaining whose allocation
// drives the running IRR to the hurdle, using the fixed iteration budget.
func bisectTierAmount(st *State, years, allocated, remaining, hurdle float64) (float64, irr.Result) {
	lo, hi := 0.0, remaining
	for i := 0; i < constants.BisectionIterations; i++ {
		mid := (lo + hi) / 2
		if st.TestIRR(years, allocated+mid).Below(hurdle) {
			lo = mid
		} else {
			hi = mid
		}
	}
	x := (lo + hi) / 2
	return x, st.TestIRR(years, allocated+x)
}
