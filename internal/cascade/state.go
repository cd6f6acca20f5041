package cascade

import (
	"github.com/capmodel/capstack/internal/config"
	"github.com/capmodel/capstack/pkg/mathutil"
)

// FundingState is the accumulator threaded through a single cascade run. It
// is created at Run start, mutated once per period in chronological order,
// and never shared across runs.
type FundingState struct {
	// OutstandingBalance is the debt balance after the most recent period.
	OutstandingBalance float64
	// CumulativeUses is total uses to date including capitalized interest.
	CumulativeUses float64
	// CumulativeEquityFunded is equity contributed to date.
	CumulativeEquityFunded float64
	// CumulativeDebtFunded is debt applied against uses to date.
	CumulativeDebtFunded float64
	// CumulativeDebtDrawn is total facility capacity consumed to date,
	// including reserve interest draws.
	CumulativeDebtDrawn float64
}

func newFundingState() *FundingState {
	return &FundingState{}
}

// equityTarget returns the equity the structure requires given cumulative
// uses so far. Explicit partner commitments override the LTC-derived target.
func (st *FundingState) equityTarget(structure *config.CapitalStructure) float64 {
	if structure.HasExplicitCommitments() {
		return structure.TotalCommitment()
	}
	return (1.0 - structure.Debt.LTCCeiling) * st.CumulativeUses
}

// committedLoanAmount returns the facility size available to draw against.
// An explicit committed amount freezes it; otherwise it tracks the LTC
// ceiling applied to cumulative uses, which grows as interest capitalizes.
func (st *FundingState) committedLoanAmount(debt config.DebtFacility) float64 {
	if debt.CommittedAmount > 0 {
		return debt.CommittedAmount
	}
	return debt.LTCCeiling * st.CumulativeUses
}

// checkCommitments applies the commitment policy thresholds against the
// computed equity requirement for the run. A shortfall beyond the error
// ratio is fatal; smaller shortfalls and oversized commitments are warnings.
func checkCommitments(structure *config.CapitalStructure, totalUses float64) ([]string, error) {
	if !structure.HasExplicitCommitments() || totalUses <= 0 {
		return nil, nil
	}

	// Required equity is whatever the debt facility cannot cover: an
	// explicit committed amount fixes the facility size, otherwise the LTC
	// ceiling does.
	var required float64
	if structure.Debt.CommittedAmount > 0 {
		required = mathutil.Max(0, totalUses-structure.Debt.CommittedAmount)
	} else {
		required = (1.0 - structure.Debt.LTCCeiling) * totalUses
	}
	if required <= 0 {
		return nil, nil
	}
	committed := structure.TotalCommitment()
	shortfall := mathutil.SafeRatio(required-committed, required)

	if shortfall > shortfallErrorRatio {
		return nil, &CapitalShortfallError{Required: required, Committed: committed}
	}

	var warnings []string
	if shortfall > shortfallWarnRatio {
		warnings = append(warnings, formatShortfallWarning(required, committed, shortfall))
	}
	if committed > excessCommitmentRatio*required {
		warnings = append(warnings, formatExcessWarning(required, committed))
	}
	return warnings, nil
}
