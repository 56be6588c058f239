package model

import "time"

// Trend is the binary outcome of the trend rule.
type Trend string

const (
	TrendUpward    Trend = "UPWARD"
	TrendNotUpward Trend = "NOT_UPWARD"
)

// UpwardStock is a symbol that met the trend rule, with its quote details.
type UpwardStock struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	High52w       float64 `json:"high_52w"`
	Low52w        float64 `json:"low_52w"`
	Volume        float64 `json:"volume"`
}

// Snapshot is the result of one dashboard refresh.
type Snapshot struct {
	ID          string        `json:"id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Timeframe   Timeframe     `json:"timeframe"`
	Tolerance   float64       `json:"tolerance"`
	TopN        int           `json:"top_n"`
	Symbols     []string      `json:"symbols"`
	Upward      []UpwardStock `json:"upward"`
	Gainers     []MoverRecord `json:"gainers"`
	Losers      []MoverRecord `json:"losers"`
	Skipped     []SymbolError `json:"skipped"`
}
