package config

import (
	"fmt"

	"github.com/capmodel/capstack/pkg/series"
	"github.com/capmodel/capstack/pkg/timeline"
)

// Timeline builds the deal's period timeline.
func (d *Deal) Timeline() (*timeline.Timeline, error) {
	return timeline.New(d.Start, d.Months)
}

// EndLabel returns the label of the deal's final period.
func (d *Deal) EndLabel() (string, error) {
	return timeline.OffsetLabel(d.Start, d.Months-1)
}

// ExpandSchedule materializes schedule entries into a dense series over the
// timeline. Each entry applies its amount at Start and every Interval months
// through End; unset fields default to the deal's bounds.
func (d *Deal) ExpandSchedule(tl *timeline.Timeline, entries []ScheduleEntry) (*series.Series, error) {
	out := series.New(tl)
	end, err := d.EndLabel()
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		start := entry.Start
		if start == "" {
			start = d.Start
		}
		entryEnd := entry.End
		if entryEnd == "" {
			entryEnd = start
		}
		interval := entry.Interval
		if interval <= 0 {
			interval = 1
		}

		past, err := timeline.LabelBeforeLabel(end, entryEnd)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %q: %w", entry.Name, err)
		}
		if past {
			entryEnd = end
		}

		label := start
		for {
			done, err := timeline.LabelBeforeLabel(entryEnd, label)
			if err != nil {
				return nil, fmt.Errorf("schedule entry %q: %w", entry.Name, err)
			}
			if done {
				break
			}
			i, err := tl.IndexOf(label)
			if err != nil {
				return nil, fmt.Errorf("schedule entry %q: %w", entry.Name, err)
			}
			out.Add(i, entry.Amount)
			label, err = timeline.OffsetLabel(label, interval)
			if err != nil {
				return nil, fmt.Errorf("schedule entry %q: %w", entry.Name, err)
			}
		}
	}
	return out, nil
}

// UsesSeries expands the project cost schedule. Uses must not be negative.
func (d *Deal) UsesSeries(tl *timeline.Timeline) (*series.Series, error) {
	for _, entry := range d.Uses {
		if entry.Amount < 0 {
			return nil, &ConfigurationError{Field: "deal.uses",
				Reason: fmt.Sprintf("use amounts must not be negative, entry %q has %v", entry.Name, entry.Amount)}
		}
	}
	return d.ExpandSchedule(tl, d.Uses)
}

// NetCashFlowSeries expands the net cash-flow schedule feeding the waterfall.
func (d *Deal) NetCashFlowSeries(tl *timeline.Timeline) (*series.Series, error) {
	return d.ExpandSchedule(tl, d.NetCashFlows)
}

// FeeLine is one fee expanded over the timeline, ready for the fee priority
// layer.
type FeeLine struct {
	Name    string
	Payee   string
	Amounts *series.Series
}

// FeeLines expands the deal's fee schedule.
func (d *Deal) FeeLines(tl *timeline.Timeline) ([]FeeLine, error) {
	lines := make([]FeeLine, 0, len(d.Fees))
	for _, fee := range d.Fees {
		if fee.Amount < 0 {
			return nil, &ConfigurationError{Field: "deal.fees",
				Reason: fmt.Sprintf("fee amounts must not be negative, fee %q has %v", fee.Name, fee.Amount)}
		}
		end := fee.End
		if end == "" {
			var err error
			end, err = d.EndLabel()
			if err != nil {
				return nil, err
			}
		}
		amounts, err := d.ExpandSchedule(tl, []ScheduleEntry{{
			Name:     fee.Name,
			Amount:   fee.Amount,
			Start:    fee.Start,
			End:      end,
			Interval: fee.Interval,
		}})
		if err != nil {
			return nil, err
		}
		lines = append(lines, FeeLine{Name: fee.Name, Payee: fee.Payee, Amounts: amounts})
	}
	return lines, nil
}
