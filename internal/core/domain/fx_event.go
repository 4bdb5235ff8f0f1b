package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate observation sources recorded on the audit trail.
const (
	RateSourcePosting = "posting"
	RateSourceBatch   = "batch_update"
)

// ExchangeRateEvent is one observed rate on the append-only audit trail.
// Events are never updated; old ones are moved to the archive by the TTL job.
type ExchangeRateEvent struct {
	EventID      string          `json:"eventID"` // Primary Key (UUID)
	CurrencyCode string          `json:"currencyCode"`
	Rate         decimal.Decimal `json:"rate"`
	ObservedAt   time.Time       `json:"observedAt"` // UTC
	Source       string          `json:"source"`
}

// ArchivePlan is the precomputed input to a TTL run: everything observed
// before Cutoff qualifies for archival.
type ArchivePlan struct {
	Cutoff           time.Time `json:"cutoff"`
	BatchSize        int       `json:"batchSize"`
	EstimatedBatches int       `json:"estimatedBatches"`
}

// ArchiveResult reports what a TTL run moved. Archived and Deleted are always
// equal after a successful run; both are reported so a caller can spot drift.
type ArchiveResult struct {
	ArchivedCount int64 `json:"archivedCount"`
	DeletedCount  int64 `json:"deletedCount"`
	Batches       int   `json:"batches"`
	DryRun        bool  `json:"dryRun"`
}
