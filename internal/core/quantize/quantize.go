// Package quantize owns the canonical decimal rounding for the ledger:
// monetary amounts at two decimal places, rates at a configurable precision,
// both with banker's rounding so repeated conversions don't drift.
package quantize

import "github.com/shopspring/decimal"

// MoneyPlaces is the fixed precision of every monetary amount in the system.
const MoneyPlaces int32 = 2

// DefaultRatePlaces is the rate precision used unless a policy overrides it.
const DefaultRatePlaces int32 = 8

// Policy is the rounding policy threaded through validation and reporting.
// The zero value is not usable; construct with NewPolicy.
type Policy struct {
	ratePlaces int32
}

// NewPolicy creates a policy with the given rate precision. Non-positive
// precision falls back to DefaultRatePlaces.
func NewPolicy(ratePlaces int32) Policy {
	if ratePlaces <= 0 {
		ratePlaces = DefaultRatePlaces
	}
	return Policy{ratePlaces: ratePlaces}
}

// Default returns the policy used across the engine unless configured otherwise.
func Default() Policy {
	return NewPolicy(DefaultRatePlaces)
}

// Money rounds a monetary amount to MoneyPlaces using banker's rounding.
func (p Policy) Money(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyPlaces)
}

// Rate rounds an exchange rate to the policy's rate precision using banker's rounding.
func (p Policy) Rate(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(p.ratePlaces)
}

// RatePlaces exposes the configured rate precision.
func (p Policy) RatePlaces() int32 {
	return p.ratePlaces
}
