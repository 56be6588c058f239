package collector

import (
	"context"

	"StockPulse/internal/model"
)

// Fetcher defines the interface for fetching market data.
// Implementations wrap failures in model.ErrProviderError and return
// model.ErrDataUnavailable for an empty series.
type Fetcher interface {
	FetchSeries(ctx context.Context, symbol string, tf model.Timeframe) (*model.PriceSeries, error)
	FetchQuote(ctx context.Context, symbol string) (*model.QuoteInfo, error)
	Name() string
}
