package model

import "math"

// IndicatorRow is a price bar augmented with derived indicator columns.
type IndicatorRow struct {
	PricePoint
	EMA20    float64 `json:"ema20"`
	RSI      float64 `json:"rsi"`
	MACD     float64 `json:"macd"`
	BBUpper  float64 `json:"bb_upper"`
	BBMiddle float64 `json:"bb_middle"`
	BBLower  float64 `json:"bb_lower"`
}

// Complete reports whether every derived field the trend rule reads is defined.
func (r IndicatorRow) Complete() bool {
	for _, v := range []float64{r.Close, r.EMA20, r.RSI, r.MACD, r.BBUpper, r.BBLower} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
