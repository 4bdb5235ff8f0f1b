package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency in the domain.
//
// RateToBase is a multiplier into the base currency: an amount of 100 in a
// currency with RateToBase 1.2 is worth 120 in base. Exactly one currency has
// IsBase=true at any time; the base currency's rate is implicitly 1.
type Currency struct {
	Code             string          `json:"code"` // Primary Key (e.g., "USD")
	Name             string          `json:"name"`
	Symbol           string          `json:"symbol"`
	IsBase           bool            `json:"isBase"`
	RateToBase       decimal.Decimal `json:"rateToBase"`
	RateObservations int64           `json:"rateObservations"` // count feeding the weighted-average policy
	RateUpdatedAt    time.Time       `json:"rateUpdatedAt"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// HasRate reports whether a usable conversion rate is on record.
func (c Currency) HasRate() bool {
	return c.IsBase || c.RateToBase.IsPositive()
}
