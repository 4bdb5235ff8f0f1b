package quantize_test

import (
	"testing"

	"github.com/quantabook/ledgercore/internal/core/quantize"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoneyRoundsToTwoPlaces(t *testing.T) {
	p := quantize.Default()

	assert.Equal(t, "120.00", p.Money(decimal.RequireFromString("120")).StringFixed(2))
	assert.Equal(t, "0.33", p.Money(decimal.RequireFromString("0.333333")).StringFixed(2))
	assert.Equal(t, "-7.13", p.Money(decimal.RequireFromString("-7.125")).StringFixed(2))
}

func TestMoneyUsesBankersRounding(t *testing.T) {
	p := quantize.Default()

	// Ties go to the even neighbour, not always up.
	assert.Equal(t, "2.12", p.Money(decimal.RequireFromString("2.125")).StringFixed(2))
	assert.Equal(t, "2.14", p.Money(decimal.RequireFromString("2.135")).StringFixed(2))
}

func TestRatePrecisionConfigurable(t *testing.T) {
	p := quantize.NewPolicy(4)

	assert.Equal(t, "1.2346", p.Rate(decimal.RequireFromString("1.23456789")).String())
	assert.EqualValues(t, 4, p.RatePlaces())
}

func TestNewPolicyFallsBackToDefault(t *testing.T) {
	p := quantize.NewPolicy(0)
	assert.EqualValues(t, quantize.DefaultRatePlaces, p.RatePlaces())
}
