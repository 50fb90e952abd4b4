package utils

import "math"

// RoundCurrency rounds a currency amount half-up to two decimal places.
func RoundCurrency(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Fare derives the trip fare from a whole-kilometer distance and a per-km
// rate. Odometer readings are whole numbers, so the distance is always an
// integer; the rate may carry decimals.
func Fare(distanceKM int64, farePerKM float64) float64 {
	return RoundCurrency(float64(distanceKM) * farePerKM)
}
