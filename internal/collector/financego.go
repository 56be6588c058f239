package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"StockPulse/internal/model"
)

// FinanceGoFetcher implements Fetcher with the piquette/finance-go Yahoo client.
// The client has no context support, so cancellation is only checked between calls.
type FinanceGoFetcher struct {
	now func() time.Time
}

// NewFinanceGoFetcher creates a fetcher backed by finance-go.
func NewFinanceGoFetcher() *FinanceGoFetcher {
	return &FinanceGoFetcher{now: time.Now}
}

func (f *FinanceGoFetcher) Name() string { return "finance-go" }

func (f *FinanceGoFetcher) FetchSeries(ctx context.Context, symbol string, tf model.Timeframe) (*model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProviderError, err)
	}
	end := f.now()
	start, err := RangeStart(end, tf.Range)
	if err != nil {
		return nil, err
	}

	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.Interval(tf.Interval),
	})

	var bars []model.PricePoint
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, model.PricePoint{
			Time:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:   toFloat64(b.Open),
			High:   toFloat64(b.High),
			Low:    toFloat64(b.Low),
			Close:  toFloat64(b.Close),
			Volume: float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: finance-go chart %s: %v", model.ErrProviderError, symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: finance-go: no bars for %s", model.ErrDataUnavailable, symbol)
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Timeframe: tf,
		Points:    bars,
		FetchedAt: end,
	}, nil
}

func (f *FinanceGoFetcher) FetchQuote(ctx context.Context, symbol string) (*model.QuoteInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProviderError, err)
	}
	q, err := quote.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: finance-go quote %s: %v", model.ErrProviderError, symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("%w: finance-go: no quote for %s", model.ErrDataUnavailable, symbol)
	}
	return &model.QuoteInfo{
		Symbol:        symbol,
		Name:          q.ShortName,
		PreviousClose: q.RegularMarketPreviousClose,
		High52w:       q.FiftyTwoWeekHigh,
		Low52w:        q.FiftyTwoWeekLow,
	}, nil
}

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// RangeStart converts a provider range such as "5d", "3mo" or "1y" into the
// start time of the window ending at end.
func RangeStart(end time.Time, rng string) (time.Time, error) {
	rng = strings.ToLower(strings.TrimSpace(rng))
	unitAt := strings.IndexFunc(rng, func(r rune) bool { return r < '0' || r > '9' })
	if unitAt <= 0 {
		return time.Time{}, fmt.Errorf("invalid range %q", rng)
	}
	n, err := strconv.Atoi(rng[:unitAt])
	if err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("invalid range %q", rng)
	}
	switch rng[unitAt:] {
	case "d":
		return end.AddDate(0, 0, -n), nil
	case "wk":
		return end.AddDate(0, 0, -7*n), nil
	case "mo":
		return end.AddDate(0, -n, 0), nil
	case "y":
		return end.AddDate(-n, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("invalid range unit in %q", rng)
	}
}
