package repositories

import (
	"context"

	"github.com/quantabook/ledgercore/internal/core/domain"
)

// AccountRepositoryFacade persists the flat, materialized-path account table.
type AccountRepositoryFacade interface {
	// SaveAccount inserts an account; inserting an existing full name is a no-op.
	SaveAccount(ctx context.Context, account domain.Account) error
	FindAccountByName(ctx context.Context, fullName string) (*domain.Account, error)
	FindAccountsByNames(ctx context.Context, fullNames []string) (map[string]domain.Account, error)
}
