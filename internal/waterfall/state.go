package waterfall

import (
	"math"

	"github.com/capmodel/capstack/internal/config"
	"github.com/capmodel/capstack/pkg/irr"
)

// State is the accumulator threaded through a single waterfall run: per
// partner cumulative contributions and returned capital, the monotonic tier
// pointer, and the combined dated stream the IRR test reads. It is created
// at run start, mutated once per period in chronological order, and never
// shared across runs.
type State struct {
	// Contributed is cumulative capital contributed per partner, stored
	// positive.
	Contributed []float64
	// Returned is cumulative capital returned per partner.
	Returned []float64
	// TierIndex points at the current promote tier. It only ever
	// advances, even if a later capital call drops the running IRR back
	// below an already-cleared hurdle.
	TierIndex int
	// CombinedFlows is the all-partner dated stream from inception
	// through the most recently finalized period.
	CombinedFlows []irr.Flow
}

func newState(partners int) *State {
	return &State{
		Contributed: make([]float64, partners),
		Returned:    make([]float64, partners),
	}
}

// UnreturnedTotal is the capital not yet returned across all partners.
func (st *State) UnreturnedTotal() float64 {
	total := 0.0
	for i := range st.Contributed {
		total += st.Contributed[i] - st.Returned[i]
	}
	return total
}

// CurrentTier resolves the tier pointer to a (hurdle, promote rate) pair.
// Past the last finite tier the hurdle is +Inf and the structure's final
// promote rate applies.
func (st *State) CurrentTier(structure *config.CapitalStructure) (hurdle, rate float64) {
	if st.TierIndex < len(structure.PromoteTiers) {
		tier := structure.PromoteTiers[st.TierIndex]
		return tier.IRRHurdle, tier.PromoteRate
	}
	return math.Inf(1), structure.FinalPromoteRate
}

// TestIRR computes the running IRR over the combined stream through the
// current period, assuming periodTotal has been allocated in it.
func (st *State) TestIRR(years, periodTotal float64) irr.Result {
	flows := make([]irr.Flow, len(st.CombinedFlows), len(st.CombinedFlows)+1)
	copy(flows, st.CombinedFlows)
	if periodTotal != 0 {
		flows = append(flows, irr.Flow{Years: years, Amount: periodTotal})
	}
	return irr.Compute(flows)
}

// FinalizePeriod appends the period's net combined flow to the dated stream.
func (st *State) FinalizePeriod(years, amount float64) {
	if amount != 0 {
		st.CombinedFlows = append(st.CombinedFlows, irr.Flow{Years: years, Amount: amount})
	}
}
