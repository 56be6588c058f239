package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/model"
)

func TestRange52w_UsesLastYearOnly(t *testing.T) {
	bars := make([]model.PricePoint, 300)
	for i := range bars {
		bars[i] = model.PricePoint{High: 100, Low: 90}
	}
	bars[10] = model.PricePoint{High: 500, Low: 1} // older than 252 bars
	bars[200] = model.PricePoint{High: 150, Low: 80}

	high, low, err := Range52w(bars)
	require.NoError(t, err)
	assert.Equal(t, 150.0, high)
	assert.Equal(t, 80.0, low)
}

func TestRange52w_Empty(t *testing.T) {
	_, _, err := Range52w(nil)
	assert.Error(t, err)
}

func TestChangeFrom(t *testing.T) {
	change, pct := ChangeFrom(110, 100)
	assert.InDelta(t, 10, change, 1e-9)
	assert.InDelta(t, 10, pct, 1e-9)

	change, pct = ChangeFrom(110, 0)
	assert.Zero(t, change)
	assert.Zero(t, pct)

	_, pct = ChangeFrom(110, math.NaN())
	assert.Zero(t, pct)
}
