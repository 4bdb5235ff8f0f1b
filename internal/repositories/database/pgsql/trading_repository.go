package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
)

type PgxTradingRepository struct {
	BaseRepository
}

// newPgxTradingRepository creates a new repository for windowed turnover
// aggregation.
func newPgxTradingRepository(pool *pgxpool.Pool) portsrepo.TradingRepositoryFacade {
	return &PgxTradingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.TradingRepositoryFacade = (*PgxTradingRepository)(nil)

// SumTurnoversByCurrency aggregates entry line amounts per currency over the
// half-open window, split by side.
func (r *PgxTradingRepository) SumTurnoversByCurrency(ctx context.Context, from, to time.Time) ([]domain.CurrencyTurnover, error) {
	query := `
		SELECT currency_code,
		       COALESCE(SUM(amount) FILTER (WHERE side = 'DEBIT'), 0) AS debits,
		       COALESCE(SUM(amount) FILTER (WHERE side = 'CREDIT'), 0) AS credits
		FROM entry_lines
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY currency_code
		ORDER BY currency_code;
	`
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sum turnovers by currency", err)
	}
	defer rows.Close()

	turnovers := []domain.CurrencyTurnover{}
	for rows.Next() {
		var t domain.CurrencyTurnover
		if err := rows.Scan(&t.CurrencyCode, &t.DebitsSum, &t.CreditsSum); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan currency turnover row", err)
		}
		turnovers = append(turnovers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating currency turnover rows", err)
	}
	return turnovers, nil
}
