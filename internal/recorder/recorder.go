package recorder

import "GaugeKeeper/internal/model"

// SweepReport summarizes one pass of the kick sweeper.
type SweepReport struct {
	Time          uint64
	Scanned       int
	Kicked        int
	Decaying      int
	Failed        int
	WorkingSupply string
}

// SupplySnapshot records the gauge totals at a point in time.
type SupplySnapshot struct {
	Time          uint64
	Accounts      int
	RawSupply     string
	WorkingSupply string
}

// Recorder persists gauge history for analysis.
type Recorder interface {
	RecordEvent(evt *model.Event) error
	RecordSweep(r *SweepReport) error
	RecordSupply(s *SupplySnapshot) error
	Close() error
}
