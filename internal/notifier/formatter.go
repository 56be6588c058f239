package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"

	"StockPulse/internal/model"
)

// FormatSnapshot formats a refresh into a Telegram HTML message.
func FormatSnapshot(snap *model.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockPulse</b> | %s | %s\n\n",
		html.EscapeString(snap.Timeframe.Label), snap.GeneratedAt.Format("2006-01-02 15:04")))

	b.WriteString("📈 <b>Stocks in Upward Trend</b>\n")
	if len(snap.Upward) == 0 {
		b.WriteString("No stocks meeting the upward trend criteria.\n")
	}
	for _, u := range snap.Upward {
		name := ""
		if u.Name != "" {
			name = " " + html.EscapeString(u.Name)
		}
		b.WriteString(fmt.Sprintf("• <b>%s</b>%s: %.2f (%+.2f, %+.2f%%)\n",
			html.EscapeString(u.Symbol), name, u.Price, u.Change, u.ChangePercent))
		b.WriteString(fmt.Sprintf("   prev %.2f | 52W %.2f / %.2f | vol %s\n",
			u.PreviousClose, u.High52w, u.Low52w, humanize.Comma(int64(u.Volume))))
	}

	b.WriteString("\n")
	b.WriteString(FormatMovers(snap.Gainers, snap.Losers))

	if len(snap.Skipped) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ Skipped %d symbol(s):\n", len(snap.Skipped)))
		for _, s := range snap.Skipped {
			b.WriteString(fmt.Sprintf("  %s (%s)\n", html.EscapeString(s.Symbol), strings.ToLower(string(s.Kind))))
		}
	}
	return b.String()
}

// FormatMovers formats the top gainers and losers.
func FormatMovers(gainers, losers []model.MoverRecord) string {
	var b strings.Builder
	b.WriteString("🚀 <b>Top Gainers</b>\n")
	writeMovers(&b, gainers)
	b.WriteString("🔻 <b>Top Losers</b>\n")
	writeMovers(&b, losers)
	return b.String()
}

func writeMovers(b *strings.Builder, records []model.MoverRecord) {
	if len(records) == 0 {
		b.WriteString("  -\n")
		return
	}
	for i, r := range records {
		b.WriteString(fmt.Sprintf("  %d. %s %.2f (%+.2f%%)\n", i+1, html.EscapeString(r.Symbol), r.Price, r.ChangePercent))
	}
}

// FormatWatchlist formats the watchlist symbols.
func FormatWatchlist(symbols []string) string {
	if len(symbols) == 0 {
		return "📋 Watchlist is empty"
	}
	return fmt.Sprintf("📋 <b>Watchlist</b> (%d)\n%s", len(symbols), html.EscapeString(strings.Join(symbols, ", ")))
}
