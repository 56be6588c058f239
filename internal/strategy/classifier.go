package strategy

import (
	"fmt"

	"StockPulse/internal/model"
)

// RSIThreshold is the momentum level the RSI must exceed.
const RSIThreshold = 50.0

// Classifier applies the upward-trend rule to the last row of an indicator table.
type Classifier struct {
	// Tolerance scales the upper Bollinger band: 1.0 demands a close at or above the
	// band, 0.98 accepts a close within 2% below it.
	Tolerance float64
}

// NewClassifier returns a Classifier with the given band tolerance.
func NewClassifier(tolerance float64) (*Classifier, error) {
	if tolerance <= 0 {
		return nil, fmt.Errorf("trend tolerance must be positive, got %v", tolerance)
	}
	return &Classifier{Tolerance: tolerance}, nil
}

// Classify evaluates the four conditions in order and stops at the first failure.
// row must be complete; see ClassifyLast for the guarded entry point.
func (c *Classifier) Classify(row model.IndicatorRow) model.Trend {
	switch {
	case !(row.MACD > 0):
		return model.TrendNotUpward
	case !(row.RSI > RSIThreshold):
		return model.TrendNotUpward
	case !(row.Close >= row.BBUpper*c.Tolerance):
		return model.TrendNotUpward
	case !(row.Close > row.EMA20):
		return model.TrendNotUpward
	}
	return model.TrendUpward
}

// ClassifyLast classifies the last row of rows. An empty table or an incomplete
// last row is excluded with ErrInsufficientHistory rather than reported as not upward.
func (c *Classifier) ClassifyLast(rows []model.IndicatorRow) (model.Trend, model.IndicatorRow, error) {
	if len(rows) == 0 {
		return "", model.IndicatorRow{}, fmt.Errorf("%w: empty indicator table", model.ErrInsufficientHistory)
	}
	last := rows[len(rows)-1]
	if !last.Complete() {
		return "", last, fmt.Errorf("%w: last row has undefined indicators", model.ErrInsufficientHistory)
	}
	return c.Classify(last), last, nil
}
