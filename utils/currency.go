package utils

import "math"

// Round2 rounds a monetary amount to two decimal places. Totals and
// subtotals are stored as decimal(10,2); rounding once at computation
// keeps the stored value equal to the reported one.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
