// Package metrics derives per-partner return measures from a period-indexed
// distribution row.
package metrics

import (
	"github.com/capmodel/capstack/pkg/irr"
	"github.com/capmodel/capstack/pkg/mathutil"
	"github.com/capmodel/capstack/pkg/timeline"
)

// PartnerSummary holds the derived return measures for one partner.
type PartnerSummary struct {
	Name string
	// Contributed is total capital contributed (stored positive).
	Contributed float64
	// Distributed is total cash received.
	Distributed float64
	// NetProfit is Distributed - Contributed.
	NetProfit float64
	// EquityMultiple is Distributed / Contributed, 0 when nothing was
	// contributed.
	EquityMultiple float64
	// IRR is the partner's annualized IRR over their dated row; it may be
	// Undefined for partners with one-sided streams.
	IRR irr.Result
}

// Summarize computes the summary for one partner's signed distribution row
// aligned to the timeline.
func Summarize(name string, tl *timeline.Timeline, row []float64) PartnerSummary {
	s := PartnerSummary{Name: name}
	flows := make([]irr.Flow, 0, len(row))
	for _, p := range tl.Periods() {
		v := row[p.Index]
		if v < 0 {
			s.Contributed += -v
		} else {
			s.Distributed += v
		}
		if v != 0 {
			flows = append(flows, irr.Flow{Years: p.Years(), Amount: v})
		}
	}
	s.NetProfit = s.Distributed - s.Contributed
	s.EquityMultiple = mathutil.SafeRatio(s.Distributed, s.Contributed)
	s.IRR = irr.Compute(flows)
	return s
}
