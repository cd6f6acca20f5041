// Package timeline provides the ordered monthly period sequence that every
// series in a settlement run is keyed by.
package timeline

import (
	"fmt"
	"time"

	"github.com/capmodel/capstack/pkg/constants"
)

const (
	// PeriodLayout is the format expected in config files and is also the
	// output period label format.
	PeriodLayout = constants.PeriodLayout
)

// Period is one discrete calendar month of a Timeline, totally ordered by
// Index.
type Period struct {
	Index int
	Label string // YYYY-MM
	Time  time.Time
}

// Years returns the period's offset from the timeline start in years, used
// as the discounting exponent for annualized rates.
func (p Period) Years() float64 {
	return float64(p.Index) / constants.MonthsPerYear
}

// Timeline is a pure function of a start label and a duration in months; the
// same inputs always produce the same period sequence.
type Timeline struct {
	start   time.Time
	periods []Period
}

// New builds a Timeline of months consecutive periods beginning at the given
// YYYY-MM start label.
func New(start string, months int) (*Timeline, error) {
	if months <= 0 {
		return nil, fmt.Errorf("timeline must span at least one period, got %d", months)
	}
	startT, err := time.Parse(PeriodLayout, start)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timeline start %s: %w", start, err)
	}

	periods := make([]Period, months)
	for i := 0; i < months; i++ {
		t := startT.AddDate(0, i, 0)
		periods[i] = Period{Index: i, Label: t.Format(PeriodLayout), Time: t}
	}
	return &Timeline{start: startT, periods: periods}, nil
}

// MustNew is New for inputs known to be valid; it panics on error and is
// intended for tests.
func MustNew(start string, months int) *Timeline {
	tl, err := New(start, months)
	if err != nil {
		panic(err)
	}
	return tl
}

// Len returns the number of periods.
func (tl *Timeline) Len() int {
	return len(tl.periods)
}

// Periods returns the ordered, finite period sequence.
func (tl *Timeline) Periods() []Period {
	return tl.periods
}

// Period returns the period at the given index.
func (tl *Timeline) Period(index int) (Period, error) {
	if index < 0 || index >= len(tl.periods) {
		return Period{}, fmt.Errorf("period index %d out of range [0, %d)", index, len(tl.periods))
	}
	return tl.periods[index], nil
}

// IndexOf resolves a YYYY-MM label to its period index.
func (tl *Timeline) IndexOf(label string) (int, error) {
	t, err := time.Parse(PeriodLayout, label)
	if err != nil {
		return 0, fmt.Errorf("failed to parse period label %s: %w", label, err)
	}
	months := (t.Year()-tl.start.Year())*constants.MonthsPerYear + int(t.Month()-tl.start.Month())
	if months < 0 || months >= len(tl.periods) {
		return 0, fmt.Errorf("period %s outside timeline range %s..%s",
			label, tl.periods[0].Label, tl.periods[len(tl.periods)-1].Label)
	}
	return months, nil
}

// OffsetLabel returns the YYYY-MM label offset by the given number of months
// relative to the given label.
func OffsetLabel(label string, months int) (string, error) {
	t, err := time.Parse(PeriodLayout, label)
	if err != nil {
		return label, err
	}
	return t.AddDate(0, months, 0).Format(PeriodLayout), nil
}

// LabelBeforeLabel returns true if first is strictly before second.
func LabelBeforeLabel(first, second string) (bool, error) {
	firstT, err := time.Parse(PeriodLayout, first)
	if err != nil {
		return false, err
	}
	secondT, err := time.Parse(PeriodLayout, second)
	if err != nil {
		return false, err
	}
	return firstT.Before(secondT), nil
}
