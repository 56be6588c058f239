package calculator

import (
	"fmt"

	"StockPulse/internal/model"
)

// MoverFromSeries derives the change between the last two bars of series.
// A series with fewer than two bars yields no record.
func MoverFromSeries(series *model.PriceSeries) (model.MoverRecord, error) {
	lastBar, ok := series.Last()
	if !ok {
		return model.MoverRecord{}, model.ErrDataUnavailable
	}
	n := len(series.Points)
	if n < 2 {
		return model.MoverRecord{}, fmt.Errorf("%w: need 2 bars for a price change, got %d", model.ErrInsufficientHistory, n)
	}
	prev := series.Points[n-2].Close
	last := lastBar.Close
	rec := model.MoverRecord{
		Symbol: series.Symbol,
		Price:  last,
		Change: last - prev,
	}
	if prev != 0 {
		rec.ChangePercent = rec.Change / prev * 100
	}
	return rec, nil
}
