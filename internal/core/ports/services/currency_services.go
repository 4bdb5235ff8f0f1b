package services

import (
	"context"

	"github.com/quantabook/ledgercore/internal/core/domain"
	"github.com/quantabook/ledgercore/internal/dto"
)

// CurrencySvcFacade is the currency registry: currency existence, the single
// base-currency invariant, and the stored rate-to-base per currency.
type CurrencySvcFacade interface {
	// CreateCurrency registers a currency. Registering an existing code again
	// is a no-op and returns the stored row.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest) (*domain.Currency, error)
	GetCurrency(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
	// BaseCurrency fails with DomainError(missing_base_currency) when unset.
	BaseCurrency(ctx context.Context) (*domain.Currency, error)
	// SetBaseCurrency promotes code to base, atomically unsetting the prior base.
	SetBaseCurrency(ctx context.Context, code string) error
	// UpdateExchangeRates folds a batch of observations into the stored rates
	// under the requested policy mode, appending one audit event per
	// observation. Each currency code is updated independently.
	UpdateExchangeRates(ctx context.Context, req dto.UpdateExchangeRatesRequest) ([]domain.Currency, error)
}
