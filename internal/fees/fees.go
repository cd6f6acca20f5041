// Package fees implements the fee priority layer: scheduled fees are summed
// and deducted from the net cash-flow series before the waterfall runs.
package fees

import (
	"fmt"

	"github.com/capmodel/capstack/internal/config"
	"github.com/capmodel/capstack/pkg/series"
	"go.uber.org/zap"
)

// Result holds the residual series feeding the waterfall plus the per-payee
// fee income ledger. Fee income to payees who are also partners stays in
// this ledger; it is never mixed into waterfall distributions.
type Result struct {
	Residual    *series.Series
	PayeeIncome map[string]*series.Series
}

// Apply deducts every fee active in each period from the net cash-flow
// series. Fees are a first-class deduction, not a sub-waterfall: they carry
// no ordering relative to each other.
func Apply(logger *zap.Logger, net *series.Series, lines []config.FeeLine) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tl := net.Timeline()
	res := &Result{
		Residual:    net.Clone(),
		PayeeIncome: make(map[string]*series.Series),
	}

	for _, line := range lines {
		if !series.SameTimeline(net, line.Amounts) {
			return nil, fmt.Errorf("fee %q is not aligned to the cash-flow timeline", line.Name)
		}
		income, ok := res.PayeeIncome[line.Payee]
		if !ok {
			income = series.New(tl)
			res.PayeeIncome[line.Payee] = income
		}
		for _, p := range tl.Periods() {
			amount := line.Amounts.At(p.Index)
			if amount == 0 {
				continue
			}
			res.Residual.Add(p.Index, -amount)
			income.Add(p.Index, amount)
			logger.Debug(fmt.Sprintf("%s: deducting fee %.2f for %s to %s",
				p.Label, amount, line.Name, line.Payee),
				zap.String("op", "fees.Apply"),
			)
		}
	}
	return res, nil
}
