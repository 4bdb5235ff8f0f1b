package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// SaveAccount inserts an account. An existing full name is left untouched, so
// re-registration keeps the original row.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (full_name, currency_code, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (full_name) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query, account.FullName, account.CurrencyCode, account.CreatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save account "+account.FullName, err)
	}
	return nil
}

func (r *PgxAccountRepository) FindAccountByName(ctx context.Context, fullName string) (*domain.Account, error) {
	query := `SELECT full_name, currency_code, created_at FROM accounts WHERE full_name = $1;`
	var account domain.Account
	err := r.Pool.QueryRow(ctx, query, fullName).Scan(&account.FullName, &account.CurrencyCode, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account "+fullName, err)
	}
	return &account, nil
}

func (r *PgxAccountRepository) FindAccountsByNames(ctx context.Context, fullNames []string) (map[string]domain.Account, error) {
	query := `SELECT full_name, currency_code, created_at FROM accounts WHERE full_name = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, fullNames)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by names", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(fullNames))
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.FullName, &account.CurrencyCode, &account.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accounts[account.FullName] = account
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return accounts, nil
}
