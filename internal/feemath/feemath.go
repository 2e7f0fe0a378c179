// Package feemath converts a refundable accommodation deposit (RAD) and a
// maximum permissible interest rate (MPIR) into a daily accommodation
// payment (DAP) using fixed-point decimal arithmetic, so the cent-level
// rounding decision never depends on binary float accumulation.
package feemath

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

var daysPerYear = decimal.NewFromInt(365)

// DailyPayment returns RAD x (MPIR/100) / 365 rounded half-up to cents.
// Both inputs must be finite and non-negative.
func DailyPayment(rad, mpirPercent float64) (float64, error) {
	if math.IsNaN(rad) || math.IsInf(rad, 0) || rad < 0 {
		return 0, eris.Errorf("feemath: invalid deposit amount %v", rad)
	}
	if math.IsNaN(mpirPercent) || math.IsInf(mpirPercent, 0) || mpirPercent < 0 {
		return 0, eris.Errorf("feemath: invalid interest rate %v", mpirPercent)
	}

	perDay := decimal.NewFromFloat(rad).
		Mul(decimal.NewFromFloat(mpirPercent)).
		Div(decimal.NewFromInt(100)).
		Div(daysPerYear)

	// Round rounds half away from zero; inputs are non-negative, so this
	// is half-up to the cent.
	cents := perDay.Round(2)
	out, _ := cents.Float64()
	return out, nil
}
