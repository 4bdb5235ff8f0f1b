package services

import (
	"context"

	"github.com/quantabook/ledgercore/internal/core/domain"
	"github.com/quantabook/ledgercore/internal/dto"
)

// PostingSvcFacade is the transaction poster: validation, idempotency, the
// atomic journal write, and ledger reads.
type PostingSvcFacade interface {
	// Post validates and commits a multi-line transaction together with its
	// cache updates. A request whose idempotency key matches an
	// already-committed transaction returns that transaction unchanged.
	Post(ctx context.Context, req dto.PostTransactionRequest) (*domain.Transaction, error)

	// ReversePost commits a new transaction with every line's side flipped,
	// linked to the original through meta. The journal itself is never mutated.
	ReversePost(ctx context.Context, transactionID string) (*domain.Transaction, error)

	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions pages the ledger of an account and its descendants.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}
