package model

import "time"

// PricePoint represents a single candlestick bar.
type PricePoint struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the raw chronological bars of one symbol for one timeframe.
type PriceSeries struct {
	Symbol    string       `json:"symbol"`
	Timeframe Timeframe    `json:"timeframe"`
	Points    []PricePoint `json:"points"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Last returns the most recent bar and false if the series is empty.
func (s *PriceSeries) Last() (PricePoint, bool) {
	if s == nil || len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// QuoteInfo carries the quote fields shown next to an upward-trend symbol.
// Zero values mean the provider did not supply the field.
type QuoteInfo struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	PreviousClose float64 `json:"previous_close"`
	High52w       float64 `json:"high_52w"`
	Low52w        float64 `json:"low_52w"`
}
