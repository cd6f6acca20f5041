// Package config defines the data structures related to deal configuration
// and includes functions for loading and validating the config.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/capmodel/capstack/pkg/constants"
	"github.com/spf13/viper"
)

// PeriodLayout is the format expected in config files and is also the output
// period label format.
const PeriodLayout = constants.PeriodLayout

// Role identifies a partner's function in the deal.
type Role string

const (
	// GP is the general partner: manages the deal and receives promote.
	GP Role = "GP"
	// LP is the limited partner: passive capital, never receives promote.
	LP Role = "LP"
)

// InterestFunding selects how accrued interest on the outstanding balance is
// funded during the cascade.
type InterestFunding string

const (
	// InterestCash capitalizes accrued interest into the period's uses, so
	// unpaid interest compounds into next period's funding requirement.
	InterestCash InterestFunding = "cash"
	// InterestReserve draws accrued interest from a pre-funded reserve
	// without touching uses.
	InterestReserve InterestFunding = "reserve"
)

// Configuration holds all configuration for a capstack run.
type Configuration struct {
	Deal    Deal
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Deal holds one deal: its timeline, capital structure, fee schedule, and
// the input series for the cascade and the waterfall.
type Deal struct {
	Name         string
	Start        string // YYYY-MM
	Months       int
	Partners     []Partner
	PromoteTiers []PromoteTier
	// FinalPromoteRate applies above all finite tiers.
	FinalPromoteRate float64
	Debt             DebtFacility
	Fees             []Fee
	// Distribution selects the waterfall method: waterfall or pariPassu.
	Distribution string
	// Uses is the project cost schedule driving the funding cascade.
	Uses []ScheduleEntry
	// NetCashFlows is the net operating/financing cash-flow schedule that,
	// after fees, feeds the equity waterfall.
	NetCashFlows []ScheduleEntry
}

// Partner is one equity participant in the capital structure.
type Partner struct {
	Name  string
	Role  Role
	Share float64
	// Commitment is an optional explicit capital commitment; when any
	// partner declares one, commitments override the LTC-derived equity
	// target.
	Commitment float64
}

// PromoteTier is one (IRR hurdle, promote rate) stage of profit-split
// escalation, ordered by ascending hurdle.
type PromoteTier struct {
	IRRHurdle   float64
	PromoteRate float64
}

// DebtFacility holds the debt terms for the funding cascade.
type DebtFacility struct {
	// LTCCeiling limits debt to this fraction of cumulative project cost.
	LTCCeiling float64
	// CommittedAmount, when positive, fixes the facility size explicitly
	// instead of deriving it from the LTC ceiling.
	CommittedAmount float64
	// MonthlyInterestRate is the periodic rate applied to the outstanding
	// balance. AnnualInterestRate may be given instead and is divided by 12.
	MonthlyInterestRate float64
	AnnualInterestRate  float64
	InterestFunding     InterestFunding
}

// MonthlyRate resolves the facility's periodic rate, preferring the explicit
// monthly figure.
func (d DebtFacility) MonthlyRate() float64 {
	if d.MonthlyInterestRate != 0 {
		return d.MonthlyInterestRate
	}
	return d.AnnualInterestRate / constants.MonthsPerYear
}

// Fee is a scheduled fee with a payee; all fees active in a period are summed
// and deducted before the waterfall.
type Fee struct {
	Name     string
	Payee    string
	Amount   float64
	Start    string // YYYY-MM, defaults to the deal start
	End      string // YYYY-MM, defaults to the deal end
	Interval int    // months between occurrences, defaults to 1
}

// ScheduleEntry is one recurring amount within a series: Amount applied at
// Start and every Interval months through End.
type ScheduleEntry struct {
	Name     string
	Amount   float64
	Start    string // YYYY-MM, defaults to the deal start
	End      string // YYYY-MM, defaults to Start (single occurrence)
	Interval int    // months, defaults to 1
}

// CapitalStructure is the static configuration consumed by the cascade and
// the waterfall: partners, promote tiers, and debt terms.
type CapitalStructure struct {
	Partners         []Partner
	PromoteTiers     []PromoteTier
	FinalPromoteRate float64
	Debt             DebtFacility
}

// CapitalStructure assembles the deal's capital structure value object.
func (d *Deal) CapitalStructure() *CapitalStructure {
	return &CapitalStructure{
		Partners:         d.Partners,
		PromoteTiers:     d.PromoteTiers,
		FinalPromoteRate: d.FinalPromoteRate,
		Debt:             d.Debt,
	}
}

// GPShareTotal returns the combined ownership share of all GP-role partners.
func (cs *CapitalStructure) GPShareTotal() float64 {
	total := 0.0
	for _, p := range cs.Partners {
		if p.Role == GP {
			total += p.Share
		}
	}
	return total
}

// TotalCommitment returns the sum of explicit partner commitments, 0 when
// none are declared.
func (cs *CapitalStructure) TotalCommitment() float64 {
	total := 0.0
	for _, p := range cs.Partners {
		total += p.Commitment
	}
	return total
}

// HasExplicitCommitments reports whether any partner declares a commitment.
func (cs *CapitalStructure) HasExplicitCommitments() bool {
	for _, p := range cs.Partners {
		if p.Commitment > 0 {
			return true
		}
	}
	return false
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// Validate fails fast on structural problems before any period processing.
func (c *Configuration) Validate() error {
	return c.Deal.Validate()
}

// Validate checks the deal's capital structure invariants.
func (d *Deal) Validate() error {
	if d.Start == "" {
		return &ConfigurationError{Field: "deal.start", Reason: "timeline start is required"}
	}
	if d.Months <= 0 {
		return &ConfigurationError{Field: "deal.months", Reason: "timeline must span at least one month"}
	}
	if len(d.Partners) == 0 {
		return &ConfigurationError{Field: "deal.partners", Reason: "at least one partner is required"}
	}

	shareSum := 0.0
	hasGP := false
	for i, p := range d.Partners {
		field := fmt.Sprintf("deal.partners[%d]", i)
		if p.Name == "" {
			return &ConfigurationError{Field: field + ".name", Reason: "partner name is required"}
		}
		if p.Role != GP && p.Role != LP {
			return &ConfigurationError{Field: field + ".role",
				Reason: fmt.Sprintf("role must be GP or LP, got %q", p.Role)}
		}
		if p.Share < 0 || p.Share > 1 {
			return &ConfigurationError{Field: field + ".share",
				Reason: fmt.Sprintf("share must be within [0, 1], got %v", p.Share)}
		}
		if p.Role == GP {
			hasGP = true
		}
		shareSum += p.Share
	}
	if math.Abs(shareSum-1.0) > constants.ShareSumTolerance {
		return &ConfigurationError{Field: "deal.partners",
			Reason: fmt.Sprintf("partner shares must sum to 1.0, got %v", shareSum)}
	}

	prevHurdle := math.Inf(-1)
	for i, tier := range d.PromoteTiers {
		field := fmt.Sprintf("deal.promoteTiers[%d]", i)
		if tier.IRRHurdle <= prevHurdle {
			return &ConfigurationError{Field: field + ".irrHurdle",
				Reason: fmt.Sprintf("hurdles must be strictly increasing, got %v after %v", tier.IRRHurdle, prevHurdle)}
		}
		if tier.PromoteRate < 0 || tier.PromoteRate > 1 {
			return &ConfigurationError{Field: field + ".promoteRate",
				Reason: fmt.Sprintf("promote rate must be within [0, 1], got %v", tier.PromoteRate)}
		}
		prevHurdle = tier.IRRHurdle
	}
	if d.FinalPromoteRate < 0 || d.FinalPromoteRate > 1 {
		return &ConfigurationError{Field: "deal.finalPromoteRate",
			Reason: fmt.Sprintf("promote rate must be within [0, 1], got %v", d.FinalPromoteRate)}
	}
	if (len(d.PromoteTiers) > 0 || d.FinalPromoteRate > 0) && !hasGP {
		return &ConfigurationError{Field: "deal.partners",
			Reason: "promote tiers require at least one GP-role partner"}
	}

	if err := d.Debt.validate(); err != nil {
		return err
	}

	switch strings.ToLower(d.Distribution) {
	case "", "waterfall", "paripassu":
	default:
		return &ConfigurationError{Field: "deal.distribution",
			Reason: fmt.Sprintf("distribution must be waterfall or pariPassu, got %q", d.Distribution)}
	}

	return nil
}

func (d DebtFacility) validate() error {
	if d.LTCCeiling < 0 || d.LTCCeiling > 1 {
		return &ConfigurationError{Field: "deal.debt.ltcCeiling",
			Reason: fmt.Sprintf("LTC ceiling must be within [0, 1], got %v", d.LTCCeiling)}
	}
	if d.LTCCeiling == 0 && d.CommittedAmount == 0 {
		return &ConfigurationError{Field: "deal.debt",
			Reason: "either ltcCeiling or committedAmount is required"}
	}
	if d.CommittedAmount < 0 {
		return &ConfigurationError{Field: "deal.debt.committedAmount",
			Reason: fmt.Sprintf("committed amount must not be negative, got %v", d.CommittedAmount)}
	}
	if d.MonthlyInterestRate < 0 || d.AnnualInterestRate < 0 {
		return &ConfigurationError{Field: "deal.debt",
			Reason: "interest rates must not be negative"}
	}
	switch d.InterestFunding {
	case "", InterestCash, InterestReserve:
	default:
		return &ConfigurationError{Field: "deal.debt.interestFunding",
			Reason: fmt.Sprintf("interest funding must be cash or reserve, got %q", d.InterestFunding)}
	}
	return nil
}

// FundingMode resolves the facility's interest funding mode, defaulting to
// cash capitalization.
func (d DebtFacility) FundingMode() InterestFunding {
	if d.InterestFunding == "" {
		return InterestCash
	}
	return d.InterestFunding
}
