package model

// MoverRecord is a symbol's price change between its last two bars.
type MoverRecord struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// Movers holds the ranked top gainers and top losers.
type Movers struct {
	Gainers []MoverRecord `json:"gainers"`
	Losers  []MoverRecord `json:"losers"`
}
