// Package output provides utilities for formatting and displaying
// settlement results.
package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/capmodel/capstack/internal/cascade"
	"github.com/capmodel/capstack/internal/waterfall"
	"github.com/capmodel/capstack/pkg/irr"
	"github.com/capmodel/capstack/pkg/metrics"
	"github.com/capmodel/capstack/pkg/series"
	"github.com/capmodel/capstack/pkg/timeline"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(dealName string, tl *timeline.Timeline, funding *cascade.Result,
	dist *waterfall.Result, summaries []metrics.PartnerSummary, feeIncome map[string]*series.Series) {

	p := message.NewPrinter(language.English)
	fmt.Printf("--- Funding cascade for deal %s ---\n", dealName)
	fmt.Printf("Period  | Uses          | Equity        | Debt draw     | Balance\n")
	fmt.Printf("______  | ____          | ______        | _________     | _______\n")
	for _, period := range tl.Periods() {
		_, _ = p.Printf("%s | $%.2f | $%.2f | $%.2f | $%.2f\n",
			period.Label,
			funding.TotalUses.At(period.Index),
			funding.EquityContributions.At(period.Index),
			funding.DebtDraws.At(period.Index),
			funding.OutstandingBalance.At(period.Index))
	}
	if funding.FundingGap > 0 {
		_, _ = p.Printf("Funding gap: $%.2f\n", funding.FundingGap)
	}

	fmt.Printf("\n--- Partner distributions ---\n")
	fmt.Printf("Period  | %s\n", strings.Join(dist.Partners, " | "))
	for _, period := range tl.Periods() {
		fmt.Printf("%s", period.Label)
		for i := range dist.Partners {
			_, _ = p.Printf(" | $%.2f", dist.Matrix[i][period.Index])
		}
		fmt.Printf("\n")
	}

	fmt.Printf("\n--- Partner metrics ---\n")
	for _, s := range summaries {
		line := p.Sprintf("%s: contributed $%.2f, received $%.2f, multiple %.2fx",
			s.Name, s.Contributed, s.Distributed, s.EquityMultiple)
		if s.IRR.Status == irr.Defined {
			line += p.Sprintf(", IRR %.2f%%", s.IRR.Rate*100)
		}
		fmt.Println(line)
	}

	if len(feeIncome) > 0 {
		fmt.Printf("\n--- Fee income (outside the waterfall) ---\n")
		payees := make([]string, 0, len(feeIncome))
		for payee := range feeIncome {
			payees = append(payees, payee)
		}
		sort.Strings(payees)
		for _, payee := range payees {
			_, _ = p.Printf("%s: $%.2f\n", payee, feeIncome[payee].Total())
		}
	}

	warnings := append(append([]string{}, funding.Warnings...), dist.Warnings...)
	if len(warnings) > 0 {
		fmt.Printf("\n--- Warnings ---\n")
		for _, w := range warnings {
			fmt.Println(w)
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(tl *timeline.Timeline, funding *cascade.Result, dist *waterfall.Result) {
	fmt.Printf(`"period","uses","equity","debt","balance"`)
	for _, name := range dist.Partners {
		fmt.Printf(`,"distribution (%s)"`, name)
	}
	fmt.Printf("\n")
	for _, period := range tl.Periods() {
		fmt.Printf(`"%s","%.2f","%.2f","%.2f","%.2f"`,
			period.Label,
			funding.TotalUses.At(period.Index),
			funding.EquityContributions.At(period.Index),
			funding.DebtDraws.At(period.Index),
			funding.OutstandingBalance.At(period.Index))
		for i := range dist.Partners {
			fmt.Printf(`,"%.2f"`, dist.Matrix[i][period.Index])
		}
		fmt.Printf("\n")
	}
}
