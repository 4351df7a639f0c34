package recorder

import "GaugeKeeper/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordEvent(_ *model.Event) error     { return nil }
func (n *NoopRecorder) RecordSweep(_ *SweepReport) error     { return nil }
func (n *NoopRecorder) RecordSupply(_ *SupplySnapshot) error { return nil }
func (n *NoopRecorder) Close() error                         { return nil }
