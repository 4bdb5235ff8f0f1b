package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
)

type PgxBalanceRepository struct {
	BaseRepository
}

// newPgxBalanceRepository creates a new repository for the balance and
// turnover caches.
func newPgxBalanceRepository(pool *pgxpool.Pool) portsrepo.BalanceRepositoryFacade {
	return &PgxBalanceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.BalanceRepositoryFacade = (*PgxBalanceRepository)(nil)

// SumBalancesByPrefix answers a subtree balance in one aggregate over the
// cache. Accounts without a cached row contribute zero.
func (r *PgxBalanceRepository) SumBalancesByPrefix(ctx context.Context, accountFullName string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(balance), 0)
		FROM account_balances
		WHERE account_full_name = $1 OR account_full_name LIKE $1 || ':%';
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountFullName).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum cached balances for "+accountFullName, err)
	}
	return sum, nil
}

// OverwriteBalance replaces the cached row with a replayed value, unlike the
// additive upsert on the posting path.
func (r *PgxBalanceRepository) OverwriteBalance(ctx context.Context, accountFullName string, balance decimal.Decimal, at time.Time) error {
	query := `
		INSERT INTO account_balances (account_full_name, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_full_name) DO UPDATE SET
			balance = EXCLUDED.balance,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.Pool.Exec(ctx, query, accountFullName, balance, at); err != nil {
		return apperrors.NewAppError(500, "failed to overwrite cached balance for "+accountFullName, err)
	}
	return nil
}

func (r *PgxBalanceRepository) ListDailyTurnovers(ctx context.Context, accountFullName string, from, to time.Time) ([]domain.DailyTurnover, error) {
	query := `
		SELECT account_full_name, day, debit_total, credit_total
		FROM daily_turnovers
		WHERE account_full_name = $1 AND day >= $2 AND day <= $3
		ORDER BY day;
	`
	rows, err := r.Pool.Query(ctx, query, accountFullName, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query daily turnovers for "+accountFullName, err)
	}
	defer rows.Close()

	turnovers := []domain.DailyTurnover{}
	for rows.Next() {
		var t domain.DailyTurnover
		if err := rows.Scan(&t.AccountFullName, &t.Day, &t.DebitTotal, &t.CreditTotal); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan daily turnover row", err)
		}
		turnovers = append(turnovers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating daily turnover rows", err)
	}
	return turnovers, nil
}
