package recorder

import "StockPulse/internal/model"

// ScanSummary is one persisted dashboard refresh.
type ScanSummary struct {
	ID          string  `json:"id"`
	Timestamp   int64   `json:"timestamp"`
	Timeframe   string  `json:"timeframe"`
	Tolerance   float64 `json:"tolerance"`
	Symbols     int     `json:"symbols"`
	UpwardCount int     `json:"upward_count"`
	Skipped     int     `json:"skipped"`
}

// Recorder persists the history of trend scans. Mover rankings are not stored.
type Recorder interface {
	RecordScan(snap *model.Snapshot) error
	RecentScans(limit int) ([]ScanSummary, error)
	HitCount(symbol string) (int, error)
	Close() error
}
