// Package series provides period-indexed cash-flow series aligned to a
// timeline, with one value per period and no gaps.
package series

import (
	"fmt"

	"github.com/capmodel/capstack/pkg/timeline"
)

// Series is an ordered mapping from every period of a Timeline to a numeric
// amount. The zero amount is a valid value; a Series never has gaps.
type Series struct {
	tl     *timeline.Timeline
	values []float64
}

// New creates a Series of zeros over the given timeline.
func New(tl *timeline.Timeline) *Series {
	return &Series{tl: tl, values: make([]float64, tl.Len())}
}

// FromValues creates a Series from a slice whose length must match the
// timeline exactly.
func FromValues(tl *timeline.Timeline, values []float64) (*Series, error) {
	if len(values) != tl.Len() {
		return nil, fmt.Errorf("series has %d values but timeline has %d periods", len(values), tl.Len())
	}
	s := New(tl)
	copy(s.values, values)
	return s, nil
}

// FromLabels creates a Series from a sparse label -> amount map; labels
// outside the timeline are an error, unmentioned periods are zero.
func FromLabels(tl *timeline.Timeline, amounts map[string]float64) (*Series, error) {
	s := New(tl)
	for label, amount := range amounts {
		i, err := tl.IndexOf(label)
		if err != nil {
			return nil, err
		}
		s.values[i] += amount
	}
	return s, nil
}

// Timeline returns the timeline this series is aligned to.
func (s *Series) Timeline() *timeline.Timeline {
	return s.tl
}

// Len returns the number of periods.
func (s *Series) Len() int {
	return len(s.values)
}

// At returns the value at the given period index.
func (s *Series) At(index int) float64 {
	return s.values[index]
}

// Set assigns the value at the given period index.
func (s *Series) Set(index int, value float64) {
	s.values[index] = value
}

// Add increments the value at the given period index.
func (s *Series) Add(index int, delta float64) {
	s.values[index] += delta
}

// Values returns a copy of the underlying values in period order.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Total returns the sum across all periods.
func (s *Series) Total() float64 {
	total := 0.0
	for _, v := range s.values {
		total += v
	}
	return total
}

// Clone returns an independent copy aligned to the same timeline.
func (s *Series) Clone() *Series {
	out := New(s.tl)
	copy(out.values, s.values)
	return out
}

// SameTimeline reports whether two series are aligned to timelines of the
// same length and start; engines require their inputs to agree.
func SameTimeline(a, b *Series) bool {
	if a.tl.Len() != b.tl.Len() {
		return false
	}
	return a.tl.Periods()[0].Label == b.tl.Periods()[0].Label
}
