// Package waterfall distributes a signed residual cash-flow series among
// partners under a tiered, IRR-hurdle promote structure, finding exact tier
// boundaries by bisection.
package waterfall

import (
	"fmt"

	"github.com/capmodel/capstack/internal/config"
	"github.com/capmodel/capstack/pkg/series"
	"go.uber.org/zap"
)

// Result is the partner x period distribution matrix for one run. Entries
// are signed: negative = contribution, positive = distribution.
type Result struct {
	// Partners holds partner names in structure order; Matrix rows align
	// to it.
	Partners []string
	// Matrix is [partner][period], aligned to the residual timeline.
	Matrix [][]float64
	// Warnings carries bisection precision findings; never dropped.
	Warnings []string
}

// PeriodTotal sums all partners' entries for one period.
func (r *Result) PeriodTotal(index int) float64 {
	total := 0.0
	for _, row := range r.Matrix {
		total += row[index]
	}
	return total
}

// PartnerRow returns the period-indexed entries for the named partner.
func (r *Result) PartnerRow(name string) ([]float64, error) {
	for i, p := range r.Partners {
		if p == name {
			return r.Matrix[i], nil
		}
	}
	return nil, fmt.Errorf("no partner named %q in result", name)
}

func newResult(structure *config.CapitalStructure, periods int) *Result {
	res := &Result{
		Partners: make([]string, len(structure.Partners)),
		Matrix:   make([][]float64, len(structure.Partners)),
	}
	for i, p := range structure.Partners {
		res.Partners[i] = p.Name
		res.Matrix[i] = make([]float64, periods)
	}
	return res
}

// Engine runs waterfalls with a fixed distribution method. One Engine may
// serve many runs; all mutable run state lives in a State owned by a single
// Distribute call.
type Engine struct {
	logger *zap.Logger
	method Method
}

// NewEngine creates a waterfall engine using the given distribution method.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger, method Method) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, method: method}
}

// Distribute allocates the residual series among the structure's partners in
// strict period order.
func (e *Engine) Distribute(residual *series.Series, structure *config.CapitalStructure) (*Result, error) {
	if len(structure.Partners) == 0 {
		return nil, fmt.Errorf("capital structure has no partners")
	}
	return e.method.Distribute(e.logger, residual, structure)
}
