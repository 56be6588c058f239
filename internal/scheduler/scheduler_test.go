package scheduler

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/calculator"
	"StockPulse/internal/collector"
	"StockPulse/internal/dashboard"
	"StockPulse/internal/model"
	"StockPulse/internal/recorder"
	"StockPulse/internal/watchlist"
)

type fakeSender struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, text)
	return nil
}

type fakePublisher struct{ got []*model.Snapshot }

func (f *fakePublisher) Publish(snap *model.Snapshot) { f.got = append(f.got, snap) }

type countingRecorder struct {
	recorder.NoopRecorder
	n int
}

func (c *countingRecorder) RecordScan(_ *model.Snapshot) error { c.n++; return nil }

func bars(n int) []model.PricePoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.PricePoint, n)
	for i := range out {
		c := 100 + float64(i) + math.Sin(float64(i))
		out[i] = model.PricePoint{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return out
}

func newScheduler(t *testing.T) (*Scheduler, *fakeSender, *fakePublisher, *countingRecorder) {
	t.Helper()
	fetcher := &collector.MockFetcher{Series: map[string][]model.PricePoint{
		"INFY.NS": bars(60),
		"TCS.NS":  bars(40),
	}}
	svc := dashboard.NewService(collector.NewCollector(fetcher, calculator.DefaultParams(), 2, 0), nil)
	wl, err := watchlist.NewManager("", []string{"INFY.NS", "TCS.NS"})
	require.NoError(t, err)

	sender := &fakeSender{}
	pub := &fakePublisher{}
	rec := &countingRecorder{}
	s := NewScheduler(context.Background(), svc, wl, sender, rec,
		Defaults{Timeframe: model.Timeframes[3], Tolerance: 1.0, TopN: 5}, pub)
	return s, sender, pub, rec
}

func TestRunScanNow_PublishesAndRecords(t *testing.T) {
	s, _, pub, rec := newScheduler(t)
	assert.Nil(t, s.Latest())

	snap, err := s.RunScanNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"INFY.NS", "TCS.NS"}, snap.Symbols)
	assert.Same(t, snap, s.Latest())
	require.Len(t, pub.got, 1)
	assert.Same(t, snap, pub.got[0])
	assert.Equal(t, 1, rec.n)
}

func TestScanTask_SendsReport(t *testing.T) {
	s, sender, _, _ := newScheduler(t)
	s.scanTask()
	require.Len(t, sender.msgs, 1)
	assert.Contains(t, sender.msgs[0], "Top Gainers")
}

func TestScanTask_EmptyWatchlistReportsFailure(t *testing.T) {
	s, sender, pub, _ := newScheduler(t)
	_, err := s.Watchlist.Remove("INFY.NS", "TCS.NS")
	require.NoError(t, err)

	s.scanTask()
	require.Len(t, sender.msgs, 1)
	assert.Contains(t, sender.msgs[0], "Scan failed")
	assert.Empty(t, pub.got)
}

func TestHandleCommand(t *testing.T) {
	s, _, _, _ := newScheduler(t)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/movers"), "No scan has run yet")
	assert.Contains(t, s.HandleCommand(ctx, "/scan"), "Top Losers")
	assert.Contains(t, s.HandleCommand(ctx, "/movers"), "Top Gainers")

	reply := s.HandleCommand(ctx, "/add wipro.ns itc.ns")
	assert.Contains(t, reply, "WIPRO.NS")
	assert.Equal(t, []string{"INFY.NS", "TCS.NS", "WIPRO.NS", "ITC.NS"}, s.Watchlist.List())

	s.HandleCommand(ctx, "/remove TCS.NS")
	assert.Equal(t, []string{"INFY.NS", "WIPRO.NS", "ITC.NS"}, s.Watchlist.List())

	assert.Contains(t, s.HandleCommand(ctx, "/add"), "Usage")
	assert.True(t, strings.HasPrefix(s.HandleCommand(ctx, "hello"), "Available commands"))
	assert.Contains(t, s.HandleCommand(ctx, "/watchlist"), "(3)")
}

func TestRegisterAll(t *testing.T) {
	s, _, _, _ := newScheduler(t)
	require.NoError(t, s.RegisterAll("0 */15 9-15 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.RegisterAll("not a cron"))
}
