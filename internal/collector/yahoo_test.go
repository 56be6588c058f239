package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/model"
)

const chartJSON = `{"chart":{"result":[{
  "meta":{"symbol":"INFY.NS","shortName":"Infosys","regularMarketPrice":1510.5,
          "chartPreviousClose":1490,"fiftyTwoWeekHigh":1700,"fiftyTwoWeekLow":1300},
  "timestamp":[1700172800,1700000000,1700086400],
  "indicators":{"quote":[{
    "open":[1505,1480,null],"high":[1515,1495,null],"low":[1500,1475,null],
    "close":[1510.5,1490,null],"volume":[1200,900,null]}]}
}],"error":null}}`

func newTestYahoo(t *testing.T, status int, body string) (*YahooFetcher, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	return f, &gotPath
}

func TestYahooFetcher_FetchSeries(t *testing.T) {
	f, path := newTestYahoo(t, http.StatusOK, chartJSON)
	tf := model.Timeframe{Label: "1 Day", Range: "5d", Interval: "1d"}

	series, err := f.FetchSeries(context.Background(), "INFY.NS", tf)
	require.NoError(t, err)
	assert.Contains(t, *path, "/v8/finance/chart/INFY.NS?interval=1d&range=5d")
	require.Len(t, series.Points, 2, "null bar is skipped")
	assert.True(t, series.Points[0].Time.Before(series.Points[1].Time))
	assert.Equal(t, 1490.0, series.Points[0].Close)
	assert.Equal(t, 1510.5, series.Points[1].Close)
	assert.Equal(t, 1200.0, series.Points[1].Volume)
	assert.Equal(t, tf, series.Timeframe)
}

func TestYahooFetcher_SkipsBarsWithoutClose(t *testing.T) {
	body := `{"chart":{"result":[{
  "meta":{"symbol":"TCS.NS"},
  "timestamp":[1700000000,1700086400,1700172800],
  "indicators":{"quote":[{
    "open":[3500,3510,3520],"high":[3520,3530,3540],"low":[3490,3500,3510],
    "close":[3510,null,3530],"volume":[100,200,300]}]}
}],"error":null}}`
	f, _ := newTestYahoo(t, http.StatusOK, body)

	series, err := f.FetchSeries(context.Background(), "TCS.NS", model.Timeframes[1])
	require.NoError(t, err)
	require.Len(t, series.Points, 2)
	assert.Equal(t, 3510.0, series.Points[0].Close)
	assert.Equal(t, 3530.0, series.Points[1].Close)
}

func TestYahooFetcher_SymbolMap(t *testing.T) {
	f, path := newTestYahoo(t, http.StatusOK, chartJSON)
	_, err := f.FetchSeries(context.Background(), "NIFTY", model.Timeframes[1])
	require.NoError(t, err)
	assert.Contains(t, *path, "/chart/%5ENSEI")
}

func TestYahooFetcher_FetchQuote(t *testing.T) {
	f, path := newTestYahoo(t, http.StatusOK, chartJSON)
	q, err := f.FetchQuote(context.Background(), "INFY.NS")
	require.NoError(t, err)
	assert.Contains(t, *path, "range=1d")
	assert.Equal(t, "Infosys", q.Name)
	assert.Equal(t, 1490.0, q.PreviousClose)
	assert.Equal(t, 1700.0, q.High52w)
	assert.Equal(t, 1300.0, q.Low52w)
}

func TestYahooFetcher_APIError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	f, _ := newTestYahoo(t, http.StatusNotFound, body)
	_, err := f.FetchSeries(context.Background(), "NOPE.NS", model.Timeframes[1])
	assert.ErrorIs(t, err, model.ErrProviderError)
	assert.Contains(t, err.Error(), "delisted")
}

func TestYahooFetcher_ServerError(t *testing.T) {
	f, _ := newTestYahoo(t, http.StatusInternalServerError, "oops")
	_, err := f.FetchSeries(context.Background(), "INFY.NS", model.Timeframes[1])
	assert.ErrorIs(t, err, model.ErrProviderError)
}

func TestYahooFetcher_EmptySeries(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"symbol":"X"},"indicators":{"quote":[{}]}}],"error":null}}`
	f, _ := newTestYahoo(t, http.StatusOK, body)
	_, err := f.FetchSeries(context.Background(), "X", model.Timeframes[1])
	assert.ErrorIs(t, err, model.ErrDataUnavailable)
}
