package calculator

import (
	"fmt"
	"math"
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"

	"StockPulse/internal/model"
)

// Params holds the indicator window lengths used to build a table.
type Params struct {
	EMAWindow int
	RSIWindow int
	MACDFast  int
	MACDSlow  int
	BBWindow  int
	BBSigma   float64
}

// DefaultParams returns the conventional windows: EMA20, RSI14, MACD 12/26, BB 20/2.
func DefaultParams() Params {
	return Params{
		EMAWindow: 20,
		RSIWindow: 14,
		MACDFast:  12,
		MACDSlow:  26,
		BBWindow:  20,
		BBSigma:   2,
	}
}

// Validate checks that every window is usable.
func (p Params) Validate() error {
	if p.EMAWindow <= 0 || p.RSIWindow <= 0 || p.BBWindow <= 0 {
		return fmt.Errorf("indicator windows must be positive")
	}
	if p.MACDFast <= 0 || p.MACDSlow <= p.MACDFast {
		return fmt.Errorf("macd windows must satisfy 0 < fast < slow")
	}
	if p.BBSigma <= 0 {
		return fmt.Errorf("bollinger sigma must be positive")
	}
	return nil
}

// WarmUp returns the number of leading bars for which at least one indicator is undefined.
func (p Params) WarmUp() int {
	warm := p.EMAWindow - 1
	if p.RSIWindow > warm {
		// RSI needs RSIWindow price changes, i.e. RSIWindow+1 bars.
		warm = p.RSIWindow
	}
	if p.MACDSlow-1 > warm {
		warm = p.MACDSlow - 1
	}
	if p.BBWindow-1 > warm {
		warm = p.BBWindow - 1
	}
	return warm
}

// BuildTable computes the indicator columns for points and drops the warm-up rows.
// points must be chronological.
func BuildTable(points []model.PricePoint, p Params) ([]model.IndicatorRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, model.ErrDataUnavailable
	}
	warm := p.WarmUp()
	if len(points) <= warm {
		return nil, fmt.Errorf("%w: %d bars, need more than %d", model.ErrInsufficientHistory, len(points), warm)
	}

	closes := techan.NewClosePriceIndicator(toTimeSeries(points))
	ema := techan.NewEMAIndicator(closes, p.EMAWindow)
	rsi := techan.NewRelativeStrengthIndexIndicator(closes, p.RSIWindow)
	macd := techan.NewMACDIndicator(closes, p.MACDFast, p.MACDSlow)
	upper := techan.NewBollingerUpperBandIndicator(closes, p.BBWindow, p.BBSigma)
	middle := techan.NewSimpleMovingAverage(closes, p.BBWindow)
	lower := techan.NewBollingerLowerBandIndicator(closes, p.BBWindow, p.BBSigma)

	rows := make([]model.IndicatorRow, 0, len(points)-warm)
	for i := 0; i < len(points); i++ {
		// Indicators are evaluated from the first bar so recursive ones fill their cache in order.
		row := model.IndicatorRow{
			PricePoint: points[i],
			EMA20:      valueAt(ema, i),
			RSI:        valueAt(rsi, i),
			MACD:       valueAt(macd, i),
			BBUpper:    valueAt(upper, i),
			BBMiddle:   valueAt(middle, i),
			BBLower:    valueAt(lower, i),
		}
		if i < warm || !row.Complete() {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no complete indicator rows", model.ErrInsufficientHistory)
	}
	return rows, nil
}

// valueAt evaluates ind at index i. An undefined value such as the RSI of a
// flat window (0/0) yields NaN, which marks the row incomplete.
func valueAt(ind techan.Indicator, i int) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			v = math.NaN()
		}
	}()
	return ind.Calculate(i).Float()
}

func toTimeSeries(points []model.PricePoint) *techan.TimeSeries {
	series := techan.NewTimeSeries()
	for i, pt := range points {
		candle := techan.NewCandle(techan.NewTimePeriod(pt.Time, barDuration(points, i)))
		candle.OpenPrice = big.NewDecimal(pt.Open)
		candle.MaxPrice = big.NewDecimal(pt.High)
		candle.MinPrice = big.NewDecimal(pt.Low)
		candle.ClosePrice = big.NewDecimal(pt.Close)
		candle.Volume = big.NewDecimal(pt.Volume)
		// Appended directly: provider bars may share a timestamp, which AddCandle rejects.
		series.Candles = append(series.Candles, candle)
	}
	return series
}

func barDuration(points []model.PricePoint, i int) time.Duration {
	if i+1 < len(points) {
		if d := points[i+1].Time.Sub(points[i].Time); d > 0 {
			return d
		}
	}
	return time.Minute
}
