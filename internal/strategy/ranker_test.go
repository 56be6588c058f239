package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"StockPulse/internal/model"
)

func rec(symbol string, pct float64) model.MoverRecord {
	return model.MoverRecord{Symbol: symbol, ChangePercent: pct}
}

func symbols(records []model.MoverRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Symbol
	}
	return out
}

func TestRank_Example(t *testing.T) {
	records := []model.MoverRecord{rec("A", 5), rec("B", -3), rec("C", 1), rec("D", -8), rec("E", 0)}
	m := Rank(records, 2)
	assert.Equal(t, []string{"A", "C"}, symbols(m.Gainers))
	assert.Equal(t, []string{"D", "B"}, symbols(m.Losers))
}

func TestRank_Ordering(t *testing.T) {
	records := []model.MoverRecord{
		rec("A", 0.5), rec("B", 7), rec("C", -2), rec("D", 3.3), rec("E", -9),
		rec("F", 1), rec("G", 4), rec("H", -0.1), rec("I", 2), rec("J", 6),
	}
	m := Rank(records, 5)
	for i := 1; i < len(m.Gainers); i++ {
		assert.GreaterOrEqual(t, m.Gainers[i-1].ChangePercent, m.Gainers[i].ChangePercent)
	}
	for i := 1; i < len(m.Losers); i++ {
		assert.LessOrEqual(t, m.Losers[i-1].ChangePercent, m.Losers[i].ChangePercent)
	}
	assert.Equal(t, []string{"B", "J", "G", "D", "I"}, symbols(m.Gainers))
	assert.Equal(t, []string{"E", "C", "H", "A", "F"}, symbols(m.Losers))
}

func TestRank_Idempotent(t *testing.T) {
	records := []model.MoverRecord{rec("A", 5), rec("B", -3), rec("C", 1), rec("D", -8), rec("E", 0)}
	all := Rank(records, len(records))
	again := Rank(all.Gainers, len(records))
	assert.Equal(t, all.Gainers, again.Gainers)
	assert.Equal(t, all.Losers, again.Losers)
}

func TestRank_TiesBySymbol(t *testing.T) {
	records := []model.MoverRecord{rec("ZEE", 1), rec("ABC", 1), rec("MID", 1)}
	m := Rank(records, 2)
	assert.Equal(t, []string{"ABC", "MID"}, symbols(m.Gainers))
	assert.Equal(t, []string{"ABC", "MID"}, symbols(m.Losers))
}

func TestRank_FewerThanTwoN(t *testing.T) {
	records := []model.MoverRecord{rec("A", 2), rec("B", -1), rec("C", 0)}
	m := Rank(records, 5)
	assert.Equal(t, []string{"A", "C", "B"}, symbols(m.Gainers))
	assert.Equal(t, []string{"B", "C", "A"}, symbols(m.Losers))
}

func TestRank_DefaultN(t *testing.T) {
	records := make([]model.MoverRecord, 0, 8)
	for i, s := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		records = append(records, rec(s, float64(i)))
	}
	m := Rank(records, 0)
	assert.Len(t, m.Gainers, DefaultTopN)
	assert.Len(t, m.Losers, DefaultTopN)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	records := []model.MoverRecord{rec("A", -1), rec("B", 1)}
	Rank(records, 1)
	assert.Equal(t, "A", records[0].Symbol)
}

func TestRank_Empty(t *testing.T) {
	m := Rank(nil, 3)
	assert.Empty(t, m.Gainers)
	assert.Empty(t, m.Losers)
}
