package repositories

import (
	"context"
	"time"

	"github.com/quantabook/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerQuery filters and pages a ledger read. The window is half-open
// [From, To); MetaFilter requires every pair to be present in transaction meta.
type LedgerQuery struct {
	AccountFullName string
	From            time.Time
	To              time.Time
	MetaFilter      map[string]string
	Limit           int
	NextToken       *string
}

// JournalRepositoryFacade persists the immutable journal along with the
// derived caches. The journal write and every cache mutation it justifies are
// one atomic unit: a failure anywhere leaves no partial state observable.
type JournalRepositoryFacade interface {
	// SaveTransaction inserts the transaction and its lines, applies the
	// balance and turnover deltas, and appends the rate events, all in one
	// database transaction. When a concurrent posting with the same
	// idempotency key wins the race, the already-committed transaction is
	// returned instead of an error.
	SaveTransaction(
		ctx context.Context,
		txn domain.Transaction,
		balanceDeltas map[string]decimal.Decimal,
		turnovers []domain.DailyTurnover,
		events []domain.ExchangeRateEvent,
	) (*domain.Transaction, error)

	// FindTransactionByIdempotencyKey returns apperrors.ErrNotFound when no
	// committed transaction carries the key.
	FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns one page ordered by occurred_at DESC,
	// created_at DESC, plus the keyset token for the next page.
	ListTransactions(ctx context.Context, query LedgerQuery) ([]domain.Transaction, *string, error)

	// ListLinesByAccount streams the full line history of one exact account up
	// to and including upTo, for cache replays.
	ListLinesByAccount(ctx context.Context, accountFullName string, upTo time.Time) ([]domain.EntryLine, error)

	// ListLinesByAccountPrefix is ListLinesByAccount including all
	// ':'-descendants of the account.
	ListLinesByAccountPrefix(ctx context.Context, accountFullName string, upTo time.Time) ([]domain.EntryLine, error)
}
