package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validDeal() Deal {
	return Deal{
		Name:   "Test Deal",
		Start:  "2024-01",
		Months: 24,
		Partners: []Partner{
			{Name: "Sponsor", Role: GP, Share: 0.2},
			{Name: "Investor", Role: LP, Share: 0.8},
		},
		PromoteTiers: []PromoteTier{
			{IRRHurdle: 0.08, PromoteRate: 0.0},
			{IRRHurdle: 0.15, PromoteRate: 0.20},
		},
		FinalPromoteRate: 0.30,
		Debt: DebtFacility{
			LTCCeiling:         0.65,
			AnnualInterestRate: 0.06,
			InterestFunding:    InterestCash,
		},
	}
}

func TestValidateAcceptsValidDeal(t *testing.T) {
	deal := validDeal()
	if err := deal.Validate(); err != nil {
		t.Errorf("valid deal rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Deal)
	}{
		{"Missing start", func(d *Deal) { d.Start = "" }},
		{"Zero months", func(d *Deal) { d.Months = 0 }},
		{"No partners", func(d *Deal) { d.Partners = nil }},
		{"Unnamed partner", func(d *Deal) { d.Partners[0].Name = "" }},
		{"Bad role", func(d *Deal) { d.Partners[0].Role = "SPONSOR" }},
		{"Share above one", func(d *Deal) { d.Partners[0].Share = 1.2 }},
		{"Shares do not sum to one", func(d *Deal) { d.Partners[0].Share = 0.3 }},
		{"Equal hurdles", func(d *Deal) { d.PromoteTiers[1].IRRHurdle = 0.08 }},
		{"Decreasing hurdles", func(d *Deal) { d.PromoteTiers[1].IRRHurdle = 0.05 }},
		{"Promote rate above one", func(d *Deal) { d.PromoteTiers[1].PromoteRate = 1.5 }},
		{"Final promote rate negative", func(d *Deal) { d.FinalPromoteRate = -0.1 }},
		{"Promote without a GP", func(d *Deal) {
			d.Partners[0].Role = LP
			d.Partners[1].Role = LP
		}},
		{"No debt terms", func(d *Deal) { d.Debt = DebtFacility{} }},
		{"LTC above one", func(d *Deal) { d.Debt.LTCCeiling = 1.2 }},
		{"Negative committed amount", func(d *Deal) { d.Debt.CommittedAmount = -1 }},
		{"Negative interest rate", func(d *Deal) { d.Debt.AnnualInterestRate = -0.02 }},
		{"Bad interest funding mode", func(d *Deal) { d.Debt.InterestFunding = "escrow" }},
		{"Bad distribution method", func(d *Deal) { d.Distribution = "stacked" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal := validDeal()
			tt.mutate(&deal)
			err := deal.Validate()
			if err == nil {
				t.Fatalf("expected validation error, got nil")
			}
			var confErr *ConfigurationError
			if !errors.As(err, &confErr) {
				t.Errorf("expected *ConfigurationError, got %T", err)
			}
		})
	}
}

func TestMonthlyRate(t *testing.T) {
	tests := []struct {
		name     string
		debt     DebtFacility
		expected float64
	}{
		{"Explicit monthly rate wins", DebtFacility{MonthlyInterestRate: 0.005, AnnualInterestRate: 0.12}, 0.005},
		{"Annual rate divided by twelve", DebtFacility{AnnualInterestRate: 0.06}, 0.005},
		{"No rate", DebtFacility{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.debt.MonthlyRate(); got != tt.expected {
				t.Errorf("MonthlyRate() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestCapitalStructureHelpers(t *testing.T) {
	deal := validDeal()
	deal.Partners[0].Commitment = 65000
	deal.Partners[1].Commitment = 260000
	cs := deal.CapitalStructure()

	if got := cs.GPShareTotal(); got != 0.2 {
		t.Errorf("GPShareTotal() = %v, expected 0.2", got)
	}
	if got := cs.TotalCommitment(); got != 325000 {
		t.Errorf("TotalCommitment() = %v, expected 325000", got)
	}
	if !cs.HasExplicitCommitments() {
		t.Errorf("HasExplicitCommitments() = false with commitments set")
	}

	bareDeal := validDeal()
	bare := bareDeal.CapitalStructure()
	if bare.HasExplicitCommitments() {
		t.Errorf("HasExplicitCommitments() = true without commitments")
	}
}

func TestLoadConfiguration(t *testing.T) {
	content := `deal:
  name: Harbor Point
  start: "2024-01"
  months: 36
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
    - irrHurdle: 0.15
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
      start: "2024-01"
      end: "2026-12"
      interval: 1
  uses:
    - name: acquisition
      amount: 10000000
      start: "2024-01"
  netCashFlows:
    - name: closing
      amount: -3500000
      start: "2024-01"
    - name: operations
      amount: 60000
      start: "2024-07"
      end: "2026-12"
logging:
  level: debug
  format: console
output:
  format: csv
`
	path := filepath.Join(t.TempDir(), "deal.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration returned error: %v", err)
	}
	if err := conf.Validate(); err != nil {
		t.Fatalf("loaded configuration failed validation: %v", err)
	}

	deal := conf.Deal
	if deal.Name != "Harbor Point" {
		t.Errorf("deal name = %q", deal.Name)
	}
	if deal.Months != 36 {
		t.Errorf("deal months = %d", deal.Months)
	}
	if len(deal.Partners) != 2 || deal.Partners[0].Role != GP {
		t.Errorf("partners not decoded: %+v", deal.Partners)
	}
	if len(deal.PromoteTiers) != 2 || deal.PromoteTiers[1].IRRHurdle != 0.15 {
		t.Errorf("promote tiers not decoded: %+v", deal.PromoteTiers)
	}
	if deal.Debt.LTCCeiling != 0.65 || deal.Debt.InterestFunding != InterestCash {
		t.Errorf("debt terms not decoded: %+v", deal.Debt)
	}
	if len(deal.Fees) != 1 || deal.Fees[0].Payee != "Sponsor" {
		t.Errorf("fees not decoded: %+v", deal.Fees)
	}
	if conf.Logging.Level != "debug" {
		t.Errorf("logging level = %q", conf.Logging.Level)
	}
	if conf.Output.Format != "csv" {
		t.Errorf("output format = %q", conf.Output.Format)
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
}
