package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"StockPulse/internal/calculator"
	"StockPulse/internal/collector"
	"StockPulse/internal/model"
	"StockPulse/internal/observability"
	"StockPulse/internal/strategy"
)

// ErrEmptySelection is returned when a refresh names no symbols.
var ErrEmptySelection = errors.New("no symbols selected")

// Selection carries every input of a refresh explicitly.
type Selection struct {
	Symbols   []string
	Timeframe model.Timeframe
	Tolerance float64
	TopN      int
}

// ChartData is the indicator table of one ticker for candlestick rendering.
// Rows is empty and Advisory set when the series is too short for indicators.
type ChartData struct {
	Symbol    string               `json:"symbol"`
	Timeframe model.Timeframe      `json:"timeframe"`
	Points    []model.PricePoint   `json:"points"`
	Rows      []model.IndicatorRow `json:"rows"`
	Advisory  string               `json:"advisory,omitempty"`
}

// Service computes dashboard snapshots from collected market data.
type Service struct {
	Collector *collector.Collector
	Metrics   *observability.Metrics
	now       func() time.Time
}

// NewService creates a Service on top of col.
func NewService(col *collector.Collector, metrics *observability.Metrics) *Service {
	return &Service{Collector: col, Metrics: metrics, now: time.Now}
}

// Refresh collects every selected symbol, flags upward trends and ranks movers.
// Per-symbol failures are reported in Snapshot.Skipped and never fail the refresh.
func (s *Service) Refresh(ctx context.Context, sel Selection) (*model.Snapshot, error) {
	started := time.Now()
	symbols := model.NormalizeSymbols(sel.Symbols)
	if len(symbols) == 0 {
		return nil, ErrEmptySelection
	}
	classifier, err := strategy.NewClassifier(sel.Tolerance)
	if err != nil {
		return nil, err
	}
	topN := sel.TopN
	if topN <= 0 {
		topN = strategy.DefaultTopN
	}

	snap := &model.Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: s.now(),
		Timeframe:   sel.Timeframe,
		Tolerance:   classifier.Tolerance,
		TopN:        topN,
		Symbols:     symbols,
		Upward:      []model.UpwardStock{},
		Skipped:     []model.SymbolError{},
	}

	results := s.Collector.CollectAll(ctx, symbols, sel.Timeframe)
	records := make([]model.MoverRecord, 0, len(results))
	for _, res := range results {
		if res.Series != nil {
			if rec, err := calculator.MoverFromSeries(res.Series); err == nil {
				records = append(records, rec)
			}
		}
		if res.Err != nil {
			s.skip(snap, res.Symbol, res.Err)
			continue
		}

		trend, last, err := classifier.ClassifyLast(res.Rows)
		if err != nil {
			s.skip(snap, res.Symbol, err)
			continue
		}
		log.Debug().Str("symbol", res.Symbol).Str("trend", string(trend)).
			Float64("macd", last.MACD).Float64("rsi", last.RSI).Msg("classified")
		if trend == model.TrendUpward {
			snap.Upward = append(snap.Upward, s.describe(ctx, res.Series, last))
		}
	}

	movers := strategy.Rank(records, topN)
	snap.Gainers = movers.Gainers
	snap.Losers = movers.Losers

	s.Metrics.ObserveScan(started, len(snap.Upward))
	log.Info().Str("scan_id", snap.ID).Str("timeframe", sel.Timeframe.Label).
		Int("symbols", len(symbols)).Int("upward", len(snap.Upward)).
		Int("skipped", len(snap.Skipped)).Dur("took", time.Since(started)).Msg("refresh complete")
	return snap, nil
}

// Chart returns the indicator table of one symbol.
func (s *Service) Chart(ctx context.Context, symbol string, tf model.Timeframe) (*ChartData, error) {
	symbols := model.NormalizeSymbols([]string{symbol})
	if len(symbols) == 0 {
		return nil, ErrEmptySelection
	}
	res := s.Collector.Collect(ctx, symbols[0], tf)
	if res.Series == nil {
		return nil, res.Err
	}
	chart := &ChartData{
		Symbol:    res.Symbol,
		Timeframe: tf,
		Points:    res.Series.Points,
		Rows:      res.Rows,
	}
	if res.Err != nil {
		chart.Advisory = fmt.Sprintf("indicators unavailable: %v", res.Err)
		chart.Rows = []model.IndicatorRow{}
	}
	return chart, nil
}

func (s *Service) skip(snap *model.Snapshot, symbol string, err error) {
	se := model.NewSymbolError(symbol, err)
	var existing *model.SymbolError
	if errors.As(err, &existing) {
		se = existing
	}
	snap.Skipped = append(snap.Skipped, *se)
	s.Metrics.ObserveSkipped(string(se.Kind))
}

// describe builds the quote details of an upward symbol. Quote failures are
// logged and leave the affected fields zero.
func (s *Service) describe(ctx context.Context, series *model.PriceSeries, last model.IndicatorRow) model.UpwardStock {
	stock := model.UpwardStock{
		Symbol: series.Symbol,
		Price:  last.Close,
		Volume: last.Volume,
	}
	q, err := s.Collector.Quote(ctx, series.Symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", series.Symbol).Msg("quote unavailable")
		q = &model.QuoteInfo{Symbol: series.Symbol}
	}
	stock.Name = q.Name
	stock.PreviousClose = q.PreviousClose
	stock.Change, stock.ChangePercent = calculator.ChangeFrom(last.Close, q.PreviousClose)
	stock.High52w, stock.Low52w = q.High52w, q.Low52w
	if stock.High52w == 0 || stock.Low52w == 0 {
		if h, l, err := calculator.Range52w(series.Points); err == nil {
			stock.High52w, stock.Low52w = h, l
		}
	}
	return stock
}
