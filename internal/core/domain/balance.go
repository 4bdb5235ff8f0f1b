package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is the denormalized running balance of one account in the
// account's own currency, unconverted. It is derived state: the immutable line
// history is always the ground truth, and the cached row must be reproducible
// by a full replay.
type AccountBalance struct {
	AccountFullName string          `json:"accountFullName"`
	Balance         decimal.Decimal `json:"balance"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// DailyTurnover aggregates debit and credit magnitudes per account per UTC day.
type DailyTurnover struct {
	AccountFullName string          `json:"accountFullName"`
	Day             time.Time       `json:"day"` // midnight UTC
	DebitTotal      decimal.Decimal `json:"debitTotal"`
	CreditTotal     decimal.Decimal `json:"creditTotal"`
}
