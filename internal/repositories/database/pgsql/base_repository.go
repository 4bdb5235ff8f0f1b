// Package pgsql implements the repository ports on PostgreSQL via pgx.
//
// Logical schema:
//
//	currencies            (currency_code PK, name, symbol, is_base, rate_to_base,
//	                       rate_observations, rate_updated_at, created_at)
//	                      partial unique index on is_base WHERE is_base
//	accounts              (full_name PK, currency_code FK, created_at)
//	transactions          (transaction_id PK, memo, occurred_at, meta JSONB,
//	                       idempotency_key UNIQUE NULLS DISTINCT, created_at)
//	entry_lines           (line_id PK, transaction_id FK, account_full_name,
//	                       side, amount, currency_code, rate_used, occurred_at)
//	account_balances      (account_full_name PK, balance, updated_at)
//	daily_turnovers       (account_full_name, day, debit_total, credit_total,
//	                       PK (account_full_name, day))
//	exchange_rate_events  (event_id PK, currency_code, rate, observed_at, source)
//	exchange_rate_events_archive  same columns as exchange_rate_events
package pgsql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantabook/ledgercore/internal/apperrors"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}
