// Package cascade allocates a period-indexed stream of capital uses to
// equity and debt sources under a loan-to-cost ceiling, capitalizing unpaid
// interest period by period.
package cascade

import (
	"fmt"

	"github.com/capmodel/capstack/internal/config"
	"github.com/capmodel/capstack/pkg/mathutil"
	"github.com/capmodel/capstack/pkg/series"
	"github.com/capmodel/capstack/pkg/timeline"
	"go.uber.org/zap"
)

// Engine runs funding cascades. One Engine may serve many runs; all mutable
// run state lives in a FundingState owned by a single Run call.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a cascade engine with the given logger. If logger is nil,
// it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Result holds the period-indexed output of one cascade run. All series are
// aligned to the input timeline.
type Result struct {
	// EquityContributions is the equity funded per period.
	EquityContributions *series.Series
	// DebtDraws is the debt drawn against uses per period.
	DebtDraws *series.Series
	// TotalUses is the uses per period including capitalized interest.
	TotalUses *series.Series
	// OutstandingBalance is the end-of-period debt balance.
	OutstandingBalance *series.Series
	// InterestExpense is interest capitalized into uses (cash mode).
	InterestExpense *series.Series
	// ReserveInterest is interest drawn from the pre-funded reserve
	// (reserve mode).
	ReserveInterest *series.Series
	// FundingGap is the total shortfall that neither source could fund;
	// 0 when the run is fully funded.
	FundingGap float64
	// Warnings carries commitment policy findings and per-period gap
	// reports; never silently dropped.
	Warnings []string
}

// Run allocates the uses series across equity and debt in strict period
// order. The uses series must be non-negative.
func (e *Engine) Run(uses *series.Series, structure *config.CapitalStructure) (*Result, error) {
	tl := uses.Timeline()
	res := &Result{
		EquityContributions: series.New(tl),
		DebtDraws:           series.New(tl),
		TotalUses:           series.New(tl),
		OutstandingBalance:  series.New(tl),
		InterestExpense:     series.New(tl),
		ReserveInterest:     series.New(tl),
	}

	warnings, err := checkCommitments(structure, uses.Total())
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, warnings...)

	st := newFundingState()
	for _, p := range tl.Periods() {
		if uses.At(p.Index) < 0 {
			return nil, fmt.Errorf("uses must not be negative, period %s has %v", p.Label, uses.At(p.Index))
		}
		e.stepPeriod(st, structure, p, uses.At(p.Index), res)
	}

	if mathutil.IsPositive(res.FundingGap) {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("funding gap: %.2f of uses could not be funded by equity or debt", res.FundingGap))
	}
	return res, nil
}

// stepPeriod advances the cascade by one period. The state is owned by the
// enclosing Run and threaded through explicitly; period i depends on the
// finalized balance and cumulative totals of period i-1.
func (e *Engine) stepPeriod(st *FundingState, structure *config.CapitalStructure,
	p timeline.Period, baseUse float64, res *Result) {

	debt := structure.Debt
	rate := debt.MonthlyRate()
	priorBalance := st.OutstandingBalance
	use := baseUse

	// Accrue interest on the prior balance before allocating this period.
	if p.Index > 0 && priorBalance > 0 && rate > 0 {
		interest := priorBalance * rate
		switch debt.FundingMode() {
		case config.InterestReserve:
			res.ReserveInterest.Set(p.Index, interest)
			e.logger.Debug(fmt.Sprintf("%s: drawing %.2f interest from reserve", p.Label, interest),
				zap.String("op", "cascade.stepPeriod"),
			)
		default:
			// Capitalized interest becomes part of this period's
			// funding requirement, which is what compounds.
			use += interest
			res.InterestExpense.Set(p.Index, interest)
			e.logger.Debug(fmt.Sprintf("%s: capitalizing %.2f interest into uses", p.Label, interest),
				zap.String("op", "cascade.stepPeriod"),
			)
		}
	}

	st.CumulativeUses += use
	res.TotalUses.Set(p.Index, use)

	// The equity target tracks cumulative uses so far, so capitalized
	// interest raises it as the run progresses.
	equityTarget := st.equityTarget(structure)
	equityDraw := mathutil.Min(use, mathutil.Max(0, equityTarget-st.CumulativeEquityFunded))
	remainder := use - equityDraw

	committed := st.committedLoanAmount(debt)
	debtCapacity := mathutil.Max(0, committed-st.CumulativeDebtDrawn)
	debtDraw := mathutil.Min(remainder, debtCapacity)
	gap := remainder - debtDraw

	st.CumulativeEquityFunded += equityDraw
	st.CumulativeDebtFunded += debtDraw
	st.CumulativeDebtDrawn += debtDraw

	balance := priorBalance + debtDraw

	// Reserve draws consume committed capacity and accrue on the balance
	// even though they never touch uses.
	if reserve := res.ReserveInterest.At(p.Index); reserve > 0 {
		reserveCapacity := mathutil.Max(0, st.committedLoanAmount(debt)-st.CumulativeDebtDrawn)
		funded := mathutil.Min(reserve, reserveCapacity)
		if funded < reserve {
			gap += reserve - funded
			res.ReserveInterest.Set(p.Index, funded)
		}
		st.CumulativeDebtDrawn += funded
		balance += funded
	}

	st.OutstandingBalance = balance

	res.EquityContributions.Set(p.Index, equityDraw)
	res.DebtDraws.Set(p.Index, debtDraw)
	res.OutstandingBalance.Set(p.Index, balance)

	if mathutil.IsPositive(gap) {
		res.FundingGap += gap
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%s: unfunded uses of %.2f exceed available equity and debt capacity", p.Label, gap))
		e.logger.Warn("period uses exceed available capacity",
			zap.String("op", "cascade.stepPeriod"),
			zap.String("period", p.Label),
			zap.Float64("gap", gap),
		)
	}

	e.logger.Debug(fmt.Sprintf("%s: uses %.2f -> equity %.2f, debt %.2f, balance %.2f",
		p.Label, use, equityDraw, debtDraw, balance),
		zap.String("op", "cascade.stepPeriod"),
	)
}
