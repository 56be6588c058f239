package collector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
	"StockPulse/internal/observability"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Bars   int
	Series map[string][]model.PricePoint
	Quotes map[string]model.QuoteInfo
	Errs   map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, symbol string, tf model.Timeframe) (*model.PriceSeries, error) {
	m.count(symbol)
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	points, ok := m.Series[symbol]
	if !ok {
		points = generateMockBars(m.Price, m.Bars)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: mock: no bars for %s", model.ErrDataUnavailable, symbol)
	}
	return &model.PriceSeries{Symbol: symbol, Timeframe: tf, Points: points, FetchedAt: time.Now()}, nil
}

func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (*model.QuoteInfo, error) {
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if q, ok := m.Quotes[symbol]; ok {
		return &q, nil
	}
	return &model.QuoteInfo{Symbol: symbol}, nil
}

// Calls returns how many times FetchSeries was called for symbol.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func (m *MockFetcher) count(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++
}

func generateMockBars(basePrice float64, count int) []model.PricePoint {
	bars := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.002*math.Sin(float64(i)))
		bars[i] = model.PricePoint{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Result is the outcome of collecting one symbol. Series is set whenever the
// fetch succeeded; Rows only when the indicator table could be built. Err holds
// a *model.SymbolError for whichever step failed first.
type Result struct {
	Symbol string
	Series *model.PriceSeries
	Rows   []model.IndicatorRow
	Err    error
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher     Fetcher
	Params      calculator.Params
	Concurrency int
	Limiter     *rate.Limiter
	Metrics     *observability.Metrics
}

// NewCollector creates a Collector that fans out to at most concurrency fetches
// and issues at most rps provider requests per second (0 disables the limit).
func NewCollector(fetcher Fetcher, params calculator.Params, concurrency int, rps float64) *Collector {
	if concurrency <= 0 {
		concurrency = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), concurrency)
	}
	return &Collector{
		Fetcher:     fetcher,
		Params:      params,
		Concurrency: concurrency,
		Limiter:     limiter,
	}
}

// Collect fetches one symbol's series and builds its indicator table.
func (c *Collector) Collect(ctx context.Context, symbol string, tf model.Timeframe) Result {
	res := Result{Symbol: symbol}
	if err := c.wait(ctx); err != nil {
		res.Err = model.NewSymbolError(symbol, err)
		return res
	}

	started := time.Now()
	series, err := c.Fetcher.FetchSeries(ctx, symbol, tf)
	c.Metrics.ObserveFetch(c.Fetcher.Name(), started, err)
	if err != nil {
		res.Err = model.NewSymbolError(symbol, err)
		return res
	}
	res.Series = series

	rows, err := calculator.BuildTable(series.Points, c.Params)
	if err != nil {
		res.Err = model.NewSymbolError(symbol, err)
		return res
	}
	res.Rows = rows
	return res
}

// Quote fetches the quote details of symbol under the same rate limit as series fetches.
func (c *Collector) Quote(ctx context.Context, symbol string) (*model.QuoteInfo, error) {
	if err := c.wait(ctx); err != nil {
		return nil, model.NewSymbolError(symbol, err)
	}
	q, err := c.Fetcher.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, model.NewSymbolError(symbol, err)
	}
	return q, nil
}

func (c *Collector) wait(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %v", model.ErrProviderError, err)
	}
	return nil
}

// CollectAll collects every symbol concurrently. A failure for one symbol never
// aborts the others; results come back in input order.
func (c *Collector) CollectAll(ctx context.Context, symbols []string, tf model.Timeframe) []Result {
	results := make([]Result, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)

	for i, symbol := range symbols {
		g.Go(func() error {
			results[i] = c.Collect(gctx, symbol, tf)
			if err := results[i].Err; err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Str("timeframe", tf.Label).
					Str("kind", string(model.KindOf(err))).Msg("symbol skipped")
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
