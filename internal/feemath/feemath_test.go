package feemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyPayment(t *testing.T) {
	tests := []struct {
		name string
		rad  float64
		mpir float64
		want float64
	}{
		{"reference case rounds half-up", 500000, 8.36, 114.52},
		{"zero deposit", 0, 8.36, 0},
		{"zero rate", 500000, 0, 0},
		{"small deposit", 100000, 7.78, 21.32},
		{"typical deposit", 400000, 7.78, 85.26},
		{"exact cents", 365000, 10, 100.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DailyPayment(tt.rad, tt.mpir)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestDailyPaymentDeterministic(t *testing.T) {
	a, err := DailyPayment(500000, 8.36)
	require.NoError(t, err)
	b, err := DailyPayment(500000, 8.36)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDailyPaymentRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		rad  float64
		mpir float64
	}{
		{"negative deposit", -1, 8.36},
		{"negative rate", 500000, -0.5},
		{"nan deposit", math.NaN(), 8.36},
		{"inf rate", 500000, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DailyPayment(tt.rad, tt.mpir)
			assert.Error(t, err)
		})
	}
}
