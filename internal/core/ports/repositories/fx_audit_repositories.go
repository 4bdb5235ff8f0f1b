package repositories

import (
	"context"
	"time"
)

// FxAuditRepositoryFacade manages the append-only exchange rate event trail
// and its archive. Appends happen inside ApplyRateUpdates and SaveTransaction;
// this interface covers retention.
type FxAuditRepositoryFacade interface {
	// CountEventsBefore counts hot events with observed_at < cutoff.
	CountEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// ArchiveBatch copies up to limit qualifying events verbatim into the
	// archive and deletes the originals by id, as one transaction. Returns the
	// number of events moved; zero means nothing qualified.
	ArchiveBatch(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}
