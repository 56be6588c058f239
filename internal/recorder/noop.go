package recorder

import "StockPulse/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(_ *model.Snapshot) error       { return nil }
func (n *NoopRecorder) RecentScans(_ int) ([]ScanSummary, error) { return nil, nil }
func (n *NoopRecorder) HitCount(_ string) (int, error)           { return 0, nil }
func (n *NoopRecorder) Close() error                             { return nil }
