package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeWindow is a half-open interval [From, To). Zero From means epoch; zero
// To means "now" as decided by the caller.
type TimeWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CurrencyTurnover holds raw debit/credit sums for one currency inside a window.
type CurrencyTurnover struct {
	CurrencyCode string
	DebitsSum    decimal.Decimal
	CreditsSum   decimal.Decimal
}

// TradingPosition is the net position of one currency within a window.
// Diff = DebitsSum - CreditsSum, reported verbatim at full precision.
// RateFallback is set when no rate was on record and 1 was substituted; it is
// never silently hidden.
type TradingPosition struct {
	CurrencyCode string          `json:"currencyCode"`
	DebitsSum    decimal.Decimal `json:"debitsSum"`
	CreditsSum   decimal.Decimal `json:"creditsSum"`
	Diff         decimal.Decimal `json:"diff"`
	RateUsed     decimal.Decimal `json:"rateUsed"`
	RateFallback bool            `json:"rateFallback"`
}

// TradingPositionDetail extends TradingPosition with base-converted figures.
type TradingPositionDetail struct {
	TradingPosition
	ConvertedDebit   decimal.Decimal `json:"convertedDebit"`
	ConvertedCredit  decimal.Decimal `json:"convertedCredit"`
	ConvertedBalance decimal.Decimal `json:"convertedBalance"`
}

// TradingBalanceReport is the windowed net-position report across currencies.
type TradingBalanceReport struct {
	BaseCurrency string            `json:"baseCurrency"`
	Window       TimeWindow        `json:"window"`
	Positions    []TradingPosition `json:"positions"`
	BaseTotal    decimal.Decimal   `json:"baseTotal"` // rounded to money precision
}

// TradingBalanceDetailReport is the detailed variant, per currency.
type TradingBalanceDetailReport struct {
	BaseCurrency string                  `json:"baseCurrency"`
	Window       TimeWindow              `json:"window"`
	Positions    []TradingPositionDetail `json:"positions"`
	BaseTotal    decimal.Decimal         `json:"baseTotal"`
}
