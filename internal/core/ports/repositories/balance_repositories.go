package repositories

import (
	"context"
	"time"

	"github.com/quantabook/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceRepositoryFacade reads and repairs the denormalized balance and
// turnover caches. Writes on the posting path go through
// JournalRepositoryFacade.SaveTransaction; this interface only covers reads
// and the forced-recompute overwrite.
type BalanceRepositoryFacade interface {
	// SumBalancesByPrefix aggregates the cached balance of an account plus all
	// of its ':'-descendants in one prefix-range query. Missing rows count as
	// zero.
	SumBalancesByPrefix(ctx context.Context, accountFullName string) (decimal.Decimal, error)

	// OverwriteBalance replaces one account's cached row with a replayed value.
	OverwriteBalance(ctx context.Context, accountFullName string, balance decimal.Decimal, at time.Time) error

	// ListDailyTurnovers returns the per-day aggregates of one account within
	// a window, ordered by day.
	ListDailyTurnovers(ctx context.Context, accountFullName string, from, to time.Time) ([]domain.DailyTurnover, error)
}
