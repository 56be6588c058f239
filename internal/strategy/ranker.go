package strategy

import (
	"sort"

	"StockPulse/internal/model"
)

// DefaultTopN is the number of gainers and losers kept when none is configured.
const DefaultTopN = 5

// Rank orders records by change percent and returns the top n gainers and losers.
// Gainers are non-increasing, losers non-decreasing in ChangePercent; equal changes
// are ordered by symbol. The two lists overlap when fewer than 2n records are given.
func Rank(records []model.MoverRecord, n int) model.Movers {
	if n <= 0 {
		n = DefaultTopN
	}
	desc := sortedCopy(records, func(a, b model.MoverRecord) bool {
		return a.ChangePercent > b.ChangePercent
	})
	asc := sortedCopy(records, func(a, b model.MoverRecord) bool {
		return a.ChangePercent < b.ChangePercent
	})
	return model.Movers{Gainers: head(desc, n), Losers: head(asc, n)}
}

func sortedCopy(records []model.MoverRecord, less func(a, b model.MoverRecord) bool) []model.MoverRecord {
	out := make([]model.MoverRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ChangePercent != out[j].ChangePercent {
			return less(out[i], out[j])
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

func head(records []model.MoverRecord, n int) []model.MoverRecord {
	if n > len(records) {
		n = len(records)
	}
	return records[:n]
}
