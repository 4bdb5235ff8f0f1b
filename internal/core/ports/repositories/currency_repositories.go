package repositories

import (
	"context"
	"time"

	"github.com/quantabook/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateUpdate is one currency's new stored rate state, applied by
// ApplyRateUpdates in a single transaction.
type RateUpdate struct {
	Code             string
	Rate             decimal.Decimal
	ObservationCount int64
	UpdatedAt        time.Time
}

// CurrencyRepositoryFacade persists currencies and their rate-to-base state.
type CurrencyRepositoryFacade interface {
	// SaveCurrency inserts a currency; inserting an existing code is a no-op.
	SaveCurrency(ctx context.Context, currency domain.Currency) error
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)
	FindCurrenciesByCodes(ctx context.Context, codes []string) (map[string]domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
	// FindBaseCurrency returns apperrors.ErrNotFound when no base is configured.
	FindBaseCurrency(ctx context.Context) (*domain.Currency, error)
	// ApplyRateUpdates persists rate updates, appends the corresponding audit
	// events and optionally promotes setBase (unsetting the prior base), all
	// in one transaction.
	ApplyRateUpdates(ctx context.Context, updates []RateUpdate, events []domain.ExchangeRateEvent, setBase *string) error
}
