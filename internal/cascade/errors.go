package cascade

import (
	"fmt"

	"github.com/capmodel/capstack/pkg/constants"
)

// Commitment policy thresholds.
const (
	shortfallErrorRatio   = constants.ShortfallErrorRatio
	shortfallWarnRatio    = constants.ShortfallWarnRatio
	excessCommitmentRatio = constants.ExcessCommitmentRatio
)

// CapitalShortfallError reports explicit partner commitments falling short
// of the computed equity requirement by more than the fatal threshold.
type CapitalShortfallError struct {
	Required  float64
	Committed float64
}

func (e *CapitalShortfallError) Error() string {
	return fmt.Sprintf("capital shortfall: partner commitments %.2f cover less than %.0f%% of required equity %.2f",
		e.Committed, (1.0-shortfallErrorRatio)*100, e.Required)
}

func formatShortfallWarning(required, committed, shortfall float64) string {
	return fmt.Sprintf("partner commitments %.2f are %.1f%% short of required equity %.2f",
		committed, shortfall*100, required)
}

func formatExcessWarning(required, committed float64) string {
	return fmt.Sprintf("partner commitments %.2f exceed %.0f%% of required equity %.2f; possible misconfiguration",
		committed, excessCommitmentRatio*100, required)
}
