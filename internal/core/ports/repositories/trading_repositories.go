package repositories

import (
	"context"
	"time"

	"github.com/quantabook/ledgercore/internal/core/domain"
)

// TradingRepositoryFacade aggregates entry lines for the windowed net-position
// report.
type TradingRepositoryFacade interface {
	// SumTurnoversByCurrency returns, per currency, the debit and credit sums
	// of all lines on accounts denominated in that currency with
	// occurred_at in [from, to).
	SumTurnoversByCurrency(ctx context.Context, from, to time.Time) ([]domain.CurrencyTurnover, error)
}
