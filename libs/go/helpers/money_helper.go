package helpers

import (
	"fmt"
	"math"
)

// aprEpsilon is the threshold below which a periodic rate is treated as
// zero and amortization degrades to straight-line division.
const aprEpsilon = 1e-9

// RoundToCents rounds a dollar amount half-up to two decimal places.
// Negative amounts round half away from zero so that a credit of -0.005
// becomes -0.01, mirroring the positive case. The nudge absorbs float
// representation error: an exact half like 1.005 is stored just below
// .005 and must still round up.
func RoundToCents(amount float64) float64 {
	if amount < 0 {
		return -RoundToCents(-amount)
	}
	return math.Floor(amount*100+0.5+1e-9) / 100
}

// MoneyFactorToAPR converts a lease money factor to an annual percentage
// rate. APR ≈ money factor × 2400.
func MoneyFactorToAPR(mf float64) float64 {
	return mf * 2400
}

// APRToMoneyFactor converts an annual percentage rate to a lease money
// factor, the inverse of MoneyFactorToAPR.
func APRToMoneyFactor(apr float64) float64 {
	return apr / 2400
}

// MonthlyRate converts an APR expressed as a percentage (6.0 = 6%) to the
// periodic monthly rate used in amortization.
func MonthlyRate(apr float64) float64 {
	return apr / 12 / 100
}

// MonthlyPayment computes the fixed monthly payment for a loan using the
// standard amortization formula P = A·r·(1+r)^n / ((1+r)^n − 1). When the
// periodic rate is effectively zero the payment degrades to straight-line
// A/n to avoid division by zero. The result is rounded to cents.
func MonthlyPayment(amount, apr float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	r := MonthlyRate(apr)
	if math.Abs(r) < aprEpsilon {
		return RoundToCents(amount / float64(termMonths))
	}
	factor := math.Pow(1+r, float64(termMonths))
	return RoundToCents(amount * r * factor / (factor - 1))
}

// FormatUSD renders a dollar amount as a display string
func FormatUSD(amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-$%.2f", -amount)
	}
	return fmt.Sprintf("$%.2f", amount)
}
