package irr

import (
	"math"
	"testing"
)

func TestComputeKnownRates(t *testing.T) {
	tests := []struct {
		name     string
		flows    []Flow
		expected float64
	}{
		{
			"Ten percent over one year",
			[]Flow{{Years: 0, Amount: -1000}, {Years: 1, Amount: 1100}},
			0.10,
		},
		{
			"Thirty percent over one year",
			[]Flow{{Years: 0, Amount: -1000000}, {Years: 1, Amount: 1300000}},
			0.30,
		},
		{
			"Doubling over two years",
			[]Flow{{Years: 0, Amount: -1000}, {Years: 2, Amount: 2000}},
			math.Sqrt2 - 1,
		},
		{
			"Loss over one year",
			[]Flow{{Years: 0, Amount: -1000}, {Years: 1, Amount: 900}},
			-0.10,
		},
		{
			"Break even",
			[]Flow{{Years: 0, Amount: -1000}, {Years: 1, Amount: 1000}},
			0.0,
		},
		{
			"Intermediate distribution",
			// -1000 at t=0, +600 at t=1, +600 at t=2 solves
			// 600/(1+r) + 600/(1+r)^2 = 1000 at r = (sqrt(69)-3)/6 inverted.
			[]Flow{{Years: 0, Amount: -1000}, {Years: 1, Amount: 600}, {Years: 2, Amount: 600}},
			6/(math.Sqrt(69)-3) - 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Compute(tt.flows)
			if result.Status != Defined {
				t.Fatalf("Compute status = %v, expected Defined", result.Status)
			}
			if math.Abs(result.Rate-tt.expected) > 1e-5 {
				t.Errorf("Compute rate = %v, expected %v", result.Rate, tt.expected)
			}
		})
	}
}

func TestComputeUndefined(t *testing.T) {
	tests := []struct {
		name  string
		flows []Flow
	}{
		{"Empty stream", nil},
		{"All negative", []Flow{{Years: 0, Amount: -100}, {Years: 1, Amount: -50}}},
		{"All positive", []Flow{{Years: 0, Amount: 100}, {Years: 1, Amount: 50}}},
		{"All zero", []Flow{{Years: 0, Amount: 0}, {Years: 1, Amount: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Compute(tt.flows)
			if result.Status != Undefined {
				t.Errorf("Compute status = %v, expected Undefined", result.Status)
			}
		})
	}
}

func TestResultBelow(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		hurdle   float64
		expected bool
	}{
		{"Defined below", Result{Rate: 0.05, Status: Defined}, 0.08, true},
		{"Defined above", Result{Rate: 0.12, Status: Defined}, 0.08, false},
		{"Defined at hurdle", Result{Rate: 0.08, Status: Defined}, 0.08, false},
		{"Undefined counts as below", Result{Status: Undefined}, 0.08, true},
		{"Below infinite hurdle", Result{Rate: 5.0, Status: Defined}, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Below(tt.hurdle); got != tt.expected {
				t.Errorf("Below(%v) = %v, expected %v", tt.hurdle, got, tt.expected)
			}
		})
	}
}

func TestNPV(t *testing.T) {
	flows := []Flow{{Years: 0, Amount: -1000}, {Years: 1, Amount: 1100}}
	if npv := NPV(flows, 0.10); math.Abs(npv) > 1e-9 {
		t.Errorf("NPV at the IRR = %v, expected 0", npv)
	}
	if npv := NPV(flows, 0.0); math.Abs(npv-100) > 1e-9 {
		t.Errorf("NPV at zero rate = %v, expected 100", npv)
	}
}

func TestComputeMonthlyDatedStream(t *testing.T) {
	// Contribution at period 0, distribution at period 12 of a monthly
	// timeline: years offsets are index/12.
	flows := []Flow{
		{Years: 0, Amount: -1000000},
		{Years: 1.0, Amount: 1080000},
	}
	result := Compute(flows)
	if result.Status != Defined {
		t.Fatalf("Compute status = %v, expected Defined", result.Status)
	}
	if math.Abs(result.Rate-0.08) > 1e-6 {
		t.Errorf("Compute rate = %v, expected 0.08", result.Rate)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	flows := []Flow{
		{Years: 0, Amount: -5000},
		{Years: 0.5, Amount: 1000},
		{Years: 1.5, Amount: 4800},
	}
	first := Compute(flows)
	second := Compute(flows)
	if first != second {
		t.Errorf("identical inputs produced different results: %+v vs %+v", first, second)
	}
}
