package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantabook/ledgercore/internal/apperrors"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
)

type PgxFxAuditRepository struct {
	BaseRepository
}

// newPgxFxAuditRepository creates a new repository for rate audit retention.
func newPgxFxAuditRepository(pool *pgxpool.Pool) portsrepo.FxAuditRepositoryFacade {
	return &PgxFxAuditRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.FxAuditRepositoryFacade = (*PgxFxAuditRepository)(nil)

func (r *PgxFxAuditRepository) CountEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM exchange_rate_events WHERE observed_at < $1;`
	if err := r.Pool.QueryRow(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, apperrors.NewAppError(500, "failed to count rate events before cutoff", err)
	}
	return count, nil
}

// ArchiveBatch moves up to limit qualifying events into the archive. The
// delete-returning CTE feeds the archive insert, so one statement both copies
// and removes the rows; it either fully succeeds or leaves everything in place.
func (r *PgxFxAuditRepository) ArchiveBatch(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	query := `
		WITH moved AS (
			DELETE FROM exchange_rate_events
			WHERE event_id IN (
				SELECT event_id FROM exchange_rate_events
				WHERE observed_at < $1
				ORDER BY observed_at, event_id
				LIMIT $2
			)
			RETURNING event_id, currency_code, rate, observed_at, source
		)
		INSERT INTO exchange_rate_events_archive (event_id, currency_code, rate, observed_at, source)
		SELECT event_id, currency_code, rate, observed_at, source FROM moved;
	`
	tag, err := r.Pool.Exec(ctx, query, cutoff, limit)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to archive rate event batch", err)
	}
	return tag.RowsAffected(), nil
}
