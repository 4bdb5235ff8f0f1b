package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateObservation is one observed market rate for a currency, as a multiplier
// into the base currency.
type RateObservation struct {
	CurrencyCode string          `json:"currencyCode" validate:"required,len=3,uppercase"`
	Rate         decimal.Decimal `json:"rate" validate:"required"`
}

// UpdateExchangeRatesRequest folds a batch of observations into the registry.
// Each currency is updated independently under the selected policy mode.
// SetBase optionally promotes one code to base in the same call.
type UpdateExchangeRatesRequest struct {
	Rates      []RateObservation `json:"rates" validate:"required,min=1,dive"`
	PolicyMode string            `json:"policyMode" validate:"required"`
	SetBase    *string           `json:"setBase" validate:"omitempty,len=3,uppercase"`
	Source     string            `json:"source"`
}

// CreateCurrencyRequest registers a currency. Creation is idempotent.
type CreateCurrencyRequest struct {
	Code   string `json:"code" validate:"required,len=3,uppercase"`
	Name   string `json:"name" validate:"required"`
	Symbol string `json:"symbol"`
}

// CreateAccountRequest registers an account under its ':'-separated full name.
type CreateAccountRequest struct {
	FullName     string `json:"fullName" validate:"required"`
	CurrencyCode string `json:"currencyCode" validate:"required,len=3,uppercase"`
}

// CurrencyResponse mirrors the stored currency row.
type CurrencyResponse struct {
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol"`
	IsBase        bool            `json:"isBase"`
	RateToBase    decimal.Decimal `json:"rateToBase"`
	RateUpdatedAt time.Time       `json:"rateUpdatedAt"`
}
