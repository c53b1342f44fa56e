package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeAmount(t *testing.T) {
	cases := []struct {
		name       string
		saleValue  string
		percentage string
		want       string
	}{
		{"closer default rate", "2000", "5", "100"},
		{"originator default rate", "1500", "1", "15"},
		{"uneven sale value", "3500", "5", "175"},
		{"rounds half up", "0.10", "5", "0.01"},
		{"rounds up above midpoint", "1333.33", "5", "66.67"},
		{"rounds down below midpoint", "100.10", "2.5", "2.50"},
		{"fractional percentage", "1000", "2.5", "25"},
		{"zero percent", "2000", "0", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			saleValue := decimal.RequireFromString(tc.saleValue)
			percentage := decimal.RequireFromString(tc.percentage)
			got := ComputeAmount(saleValue, percentage)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"got %s, want %s", got, tc.want)
		})
	}
}

func TestComputeAmountScale(t *testing.T) {
	// Amounts are money; the result never carries more than two
	// decimal places regardless of input scale.
	got := ComputeAmount(decimal.RequireFromString("999.99"), decimal.RequireFromString("3.333"))
	assert.LessOrEqual(t, int(got.Exponent())*-1, 2)
}
