package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/model"
)

func TestMoverFromSeries(t *testing.T) {
	s := &model.PriceSeries{
		Symbol: "INFY.NS",
		Points: []model.PricePoint{{Close: 90}, {Close: 100}, {Close: 110}},
	}
	rec, err := MoverFromSeries(s)
	require.NoError(t, err)
	assert.Equal(t, "INFY.NS", rec.Symbol)
	assert.Equal(t, 110.0, rec.Price)
	assert.InDelta(t, 10.0, rec.Change, 1e-9)
	assert.InDelta(t, 10.0, rec.ChangePercent, 1e-9)
}

func TestMoverFromSeries_SinglePointExcluded(t *testing.T) {
	s := &model.PriceSeries{Symbol: "TCS.NS", Points: []model.PricePoint{{Close: 100}}}
	_, err := MoverFromSeries(s)
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)
}

func TestMoverFromSeries_Empty(t *testing.T) {
	_, err := MoverFromSeries(&model.PriceSeries{Symbol: "X"})
	assert.ErrorIs(t, err, model.ErrDataUnavailable)
}

func TestMoverFromSeries_ZeroPreviousClose(t *testing.T) {
	s := &model.PriceSeries{Symbol: "Z", Points: []model.PricePoint{{Close: 0}, {Close: 5}}}
	rec, err := MoverFromSeries(s)
	require.NoError(t, err)
	assert.Equal(t, 5.0, rec.Change)
	assert.Equal(t, 0.0, rec.ChangePercent)
}
