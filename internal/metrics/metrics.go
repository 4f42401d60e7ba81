// Package metrics defines the ledger's metrics surface.
package metrics

import (
	"time"
)

// Transfer kinds.
const (
	TransferPersonToPerson = "person_to_person"
	TransferInterAccount   = "inter_account"
)

// Transfer outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFrozen    = "frozen"
)

// Collector records ledger activity. Implementations export to a backend (Prometheus, ...).
type Collector interface {
	// Transfers
	RecordTransfer(kind, outcome string)
	RecordFraudWarning()
	RecordFreeze()

	// Gain accrual
	RecordAccrualDays(days int)

	// Persistence
	RecordRecords(kind, status string, count int)
	RecordSave(success bool, duration time.Duration)
}

// NoOpCollector is the default collector when metrics are not needed.
type NoOpCollector struct{}

func (NoOpCollector) RecordTransfer(kind, outcome string)             {}
func (NoOpCollector) RecordFraudWarning()                             {}
func (NoOpCollector) RecordFreeze()                                   {}
func (NoOpCollector) RecordAccrualDays(days int)                      {}
func (NoOpCollector) RecordRecords(kind, status string, count int)    {}
func (NoOpCollector) RecordSave(success bool, duration time.Duration) {}

// OrNoOp returns c, or a NoOpCollector when c is nil.
func OrNoOp(c Collector) Collector {
	if c == nil {
		return NoOpCollector{}
	}
	return c
}
