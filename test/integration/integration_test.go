package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/capmodel/capstack/internal/cascade"
	"github.com/capmodel/capstack/internal/config"
	"github.com/capmodel/capstack/internal/fees"
	"github.com/capmodel/capstack/internal/waterfall"
	"github.com/capmodel/capstack/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dealFixture = `deal:
  name: Harbor Point
  start: "2024-01"
  months: 25
  distribution: waterfall
  partners:
    - name: Sponsor
      role: GP
      share: 0.1
    - name: Investor
      role: LP
      share: 0.9
  promoteTiers:
    - irrHurdle: 0.08
      promoteRate: 0.0
    - irrHurdle: 0.12
      promoteRate: 0.20
  finalPromoteRate: 0.30
  debt:
    ltcCeiling: 0.65
    annualInterestRate: 0.06
    interestFunding: cash
  fees:
    - name: asset management
      payee: Sponsor
      amount: 5000
      interval: 1
  uses:
    - name: acquisition
      amount: 5000000
      start: "2024-01"
    - name: capex
      amount: 100000
      start: "2024-02"
      end: "2024-07"
      interval: 1
  netCashFlows:
    - name: closing equity
      amount: -1960000
      start: "2024-01"
    - name: operations
      amount: 35000
      start: "2024-07"
      end: "2025-12"
      interval: 1
    - name: sale
      amount: 2600000
      start: "2026-01"
`

func loadFixture(t *testing.T) *config.Configuration {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dealFixture), 0644))

	conf, err := config.LoadConfiguration(path)
	require.NoError(t, err)
	require.NoError(t, conf.Validate())
	return conf
}

func TestFullSettlementPipeline(t *testing.T) {
	conf := loadFixture(t)
	deal := &conf.Deal

	tl, err := deal.Timeline()
	require.NoError(t, err)
	structure := deal.CapitalStructure()

	// Funding cascade over the uses schedule.
	uses, err := deal.UsesSeries(tl)
	require.NoError(t, err)
	funding, err := cascade.NewEngine(nil).Run(uses, structure)
	require.NoError(t, err)

	assert.Zero(t, funding.FundingGap)
	committed := structure.Debt.LTCCeiling * funding.TotalUses.Total()
	for i := 0; i < tl.Len(); i++ {
		assert.InDelta(t, funding.TotalUses.At(i),
			funding.EquityContributions.At(i)+funding.DebtDraws.At(i), 1e-6,
			"cascade period %d not conserved", i)
		assert.GreaterOrEqual(t, funding.OutstandingBalance.At(i), 0.0)
		assert.LessOrEqual(t, funding.OutstandingBalance.At(i), committed+1e-6)
	}
	// Capitalized interest shows up once debt is outstanding.
	assert.Greater(t, funding.InterestExpense.Total(), 0.0)

	// Fee priority layer ahead of the waterfall.
	net, err := deal.NetCashFlowSeries(tl)
	require.NoError(t, err)
	lines, err := deal.FeeLines(tl)
	require.NoError(t, err)
	feeResult, err := fees.Apply(nil, net, lines)
	require.NoError(t, err)

	assert.InDelta(t, 125000, feeResult.PayeeIncome["Sponsor"].Total(), 1e-6)
	assert.InDelta(t, net.Total()-125000, feeResult.Residual.Total(), 1e-6)

	// Equity waterfall over the residual.
	method, err := waterfall.MethodFor(deal.Distribution)
	require.NoError(t, err)
	dist, err := waterfall.NewEngine(nil, method).Distribute(feeResult.Residual, structure)
	require.NoError(t, err)

	for i := 0; i < tl.Len(); i++ {
		assert.InDelta(t, feeResult.Residual.At(i), dist.PeriodTotal(i), 0.01,
			"waterfall period %d not conserved", i)
	}

	// The deal is profitable enough to clear hurdles, so the promote
	// lifts the sponsor's multiple above the investor's.
	gp := metrics.Summarize("Sponsor", tl, dist.Matrix[0])
	lp := metrics.Summarize("Investor", tl, dist.Matrix[1])
	assert.Greater(t, gp.EquityMultiple, lp.EquityMultiple)
	assert.Greater(t, lp.NetProfit, 0.0)
}

func TestPipelineIsDeterministic(t *testing.T) {
	conf := loadFixture(t)
	deal := &conf.Deal

	tl, err := deal.Timeline()
	require.NoError(t, err)
	structure := deal.CapitalStructure()

	run := func() ([][]float64, []float64) {
		uses, err := deal.UsesSeries(tl)
		require.NoError(t, err)
		funding, err := cascade.NewEngine(nil).Run(uses, structure)
		require.NoError(t, err)

		net, err := deal.NetCashFlowSeries(tl)
		require.NoError(t, err)
		lines, err := deal.FeeLines(tl)
		require.NoError(t, err)
		feeResult, err := fees.Apply(nil, net, lines)
		require.NoError(t, err)

		dist, err := waterfall.NewEngine(nil, waterfall.Tiered{}).Distribute(feeResult.Residual, structure)
		require.NoError(t, err)
		return dist.Matrix, funding.OutstandingBalance.Values()
	}

	firstMatrix, firstBalance := run()
	secondMatrix, secondBalance := run()
	assert.Equal(t, firstMatrix, secondMatrix)
	assert.Equal(t, firstBalance, secondBalance)
}
