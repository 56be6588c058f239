package calculator

import (
	"errors"
	"math"

	"StockPulse/internal/model"
)

// tradingDaysPerYear is the number of daily bars scanned for the 52-week range.
const tradingDaysPerYear = 252

// Range52w scans the most recent 252 bars and returns the high and low.
// Used when the provider quote carries no 52-week range.
func Range52w(points []model.PricePoint) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	n := len(points)
	start := n - tradingDaysPerYear
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if points[i].High > high {
			high = points[i].High
		}
		if points[i].Low < low {
			low = points[i].Low
		}
	}
	return high, low, nil
}

// ChangeFrom returns the absolute and percentage change of price against reference.
// The percentage is zero when reference is zero or undefined.
func ChangeFrom(price, reference float64) (change, percent float64) {
	if reference == 0 || math.IsNaN(reference) {
		return 0, 0
	}
	change = price - reference
	return change, change / reference * 100
}
