package recorder

import "CryptoTracker/internal/model"

// Recorder journals trades and valuation snapshots for later analysis.
// It is write-only: ledger state is never rebuilt from it.
type Recorder interface {
	RecordTransaction(tx *model.Transaction) error
	RecordValuation(v *model.Valuation) error
	Close() error
}
