package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide indicates whether a transaction line is a Debit or a Credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Transaction represents a single, balanced financial event composed of at
// least two entry lines. Immutable once committed; corrections are new
// reversing transactions.
type Transaction struct {
	TransactionID  string            `json:"transactionID"` // Primary Key (UUID)
	Memo           string            `json:"memo"`
	OccurredAt     time.Time         `json:"occurredAt"` // UTC
	Meta           map[string]string `json:"meta,omitempty"`
	IdempotencyKey *string           `json:"idempotencyKey,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	Lines          []EntryLine       `json:"lines,omitempty"`
}

// EntryLine is one side of a double entry, affecting exactly one account.
// Amount is strictly positive and quantized to money precision; RateUsed is the
// rate-to-base applied at post time (1 for base-currency lines).
type EntryLine struct {
	LineID          string          `json:"lineID"` // Primary Key (UUID)
	TransactionID   string          `json:"transactionID"`
	AccountFullName string          `json:"accountFullName"`
	Side            EntrySide       `json:"side"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	RateUsed        decimal.Decimal `json:"rateUsed"`
	OccurredAt      time.Time       `json:"occurredAt"` // denormalized from the transaction for replay queries
}

// MetaReversalOf links a reversing transaction back to the one it undoes.
const MetaReversalOf = "reversal_of"
