package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
)

var daily = model.Timeframe{Label: "1 Month", Range: "3mo", Interval: "1d"}

func bars(n int, base float64) []model.PricePoint {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.PricePoint, n)
	for i := range out {
		c := base + float64(i) + math.Sin(float64(i))
		out[i] = model.PricePoint{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10}
	}
	return out
}

func TestCollectAll_IsolatesFailures(t *testing.T) {
	fetcher := &MockFetcher{
		Series: map[string][]model.PricePoint{
			"GOOD.NS":  bars(80, 100),
			"EMPTY.NS": {},
			"SHORT.NS": bars(10, 50),
		},
		Errs: map[string]error{
			"BAD.NS": fmt.Errorf("%w: unknown symbol", model.ErrProviderError),
		},
	}
	col := NewCollector(fetcher, calculator.DefaultParams(), 3, 0)

	symbols := []string{"GOOD.NS", "BAD.NS", "EMPTY.NS", "SHORT.NS"}
	results := col.CollectAll(context.Background(), symbols, daily)
	require.Len(t, results, 4)
	for i, s := range symbols {
		assert.Equal(t, s, results[i].Symbol)
	}

	assert.NoError(t, results[0].Err)
	assert.NotEmpty(t, results[0].Rows)
	assert.Equal(t, daily, results[0].Series.Timeframe)

	assert.Equal(t, model.KindProviderError, model.KindOf(results[1].Err))
	assert.Nil(t, results[1].Series)

	assert.Equal(t, model.KindDataUnavailable, model.KindOf(results[2].Err))

	assert.Equal(t, model.KindInsufficientHistory, model.KindOf(results[3].Err))
	assert.NotNil(t, results[3].Series, "series is kept for mover ranking")
	assert.Nil(t, results[3].Rows)

	var se *model.SymbolError
	require.True(t, errors.As(results[1].Err, &se))
	assert.Equal(t, "BAD.NS", se.Symbol)
}

func TestCollectAll_FetchesEachSymbolOnce(t *testing.T) {
	fetcher := &MockFetcher{Price: 100, Bars: 60}
	col := NewCollector(fetcher, calculator.DefaultParams(), 2, 1000)

	symbols := []string{"A", "B", "C", "D", "E"}
	results := col.CollectAll(context.Background(), symbols, daily)
	for i, s := range symbols {
		assert.NoError(t, results[i].Err)
		assert.Equal(t, 1, fetcher.Calls(s))
	}
}

func TestCollect_CancelledContext(t *testing.T) {
	fetcher := &MockFetcher{Price: 100, Bars: 60}
	col := NewCollector(fetcher, calculator.DefaultParams(), 1, 0.001)
	// Drain the single burst token so the next wait blocks.
	require.True(t, col.Limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := col.Collect(ctx, "A", daily)
	assert.Equal(t, model.KindProviderError, model.KindOf(res.Err))
	assert.Equal(t, 0, fetcher.Calls("A"))
}

func TestQuote_WaitsOnLimiter(t *testing.T) {
	fetcher := &MockFetcher{Quotes: map[string]model.QuoteInfo{"A": {Symbol: "A", PreviousClose: 9}}}
	col := NewCollector(fetcher, calculator.DefaultParams(), 1, 0.001)

	q, err := col.Quote(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 9.0, q.PreviousClose)

	// The only token is spent, so the next quote has to wait past the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = col.Quote(ctx, "A")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrProviderError)
}

func TestMockFetcher_DefaultQuote(t *testing.T) {
	fetcher := &MockFetcher{Quotes: map[string]model.QuoteInfo{"A": {Symbol: "A", PreviousClose: 9}}}
	q, err := fetcher.FetchQuote(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 9.0, q.PreviousClose)

	q, err = fetcher.FetchQuote(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, "B", q.Symbol)
}
