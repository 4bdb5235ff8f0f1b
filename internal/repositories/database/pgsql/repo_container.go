package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every repository onto one shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  newPgxAccountRepository(dbPool),
		BalanceRepo:  newPgxBalanceRepository(dbPool),
		CurrencyRepo: newPgxCurrencyRepository(dbPool),
		FxAuditRepo:  newPgxFxAuditRepository(dbPool),
		JournalRepo:  newPgxJournalRepository(dbPool),
		TradingRepo:  newPgxTradingRepository(dbPool),
	}
}
