package dto

import (
	"time"

	"github.com/quantabook/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one side of a posting as submitted by a caller.
// Amounts arrive as decimal strings, never binary floats.
type EntryLineRequest struct {
	AccountFullName string          `json:"accountFullName" validate:"required"`
	Side            string          `json:"side" validate:"required,oneof=DEBIT CREDIT"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	CurrencyCode    string          `json:"currencyCode" validate:"required,len=3,uppercase"`
}

// PostTransactionRequest submits a multi-line transaction for posting.
type PostTransactionRequest struct {
	Lines          []EntryLineRequest `json:"lines" validate:"required,min=2,dive"`
	Memo           string             `json:"memo"`
	Meta           map[string]string  `json:"meta"`
	OccurredAt     *time.Time         `json:"occurredAt"` // defaults to now (UTC)
	IdempotencyKey *string            `json:"idempotencyKey"`
}

// TransactionResponse is the committed transaction returned to the caller.
type TransactionResponse struct {
	TransactionID  string              `json:"transactionID"`
	Memo           string              `json:"memo"`
	OccurredAt     time.Time           `json:"occurredAt"`
	Meta           map[string]string   `json:"meta,omitempty"`
	IdempotencyKey *string             `json:"idempotencyKey,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	Lines          []EntryLineResponse `json:"lines,omitempty"`
}

// EntryLineResponse is one committed line, including the rate applied at post time.
type EntryLineResponse struct {
	LineID          string          `json:"lineID"`
	AccountFullName string          `json:"accountFullName"`
	Side            string          `json:"side"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	RateUsed        decimal.Decimal `json:"rateUsed"`
}

// ToTransactionResponse converts a committed domain.Transaction.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:  txn.TransactionID,
		Memo:           txn.Memo,
		OccurredAt:     txn.OccurredAt.UTC(),
		Meta:           txn.Meta,
		IdempotencyKey: txn.IdempotencyKey,
		CreatedAt:      txn.CreatedAt.UTC(),
	}
	if len(txn.Lines) > 0 {
		resp.Lines = make([]EntryLineResponse, len(txn.Lines))
		for i, line := range txn.Lines {
			resp.Lines[i] = EntryLineResponse{
				LineID:          line.LineID,
				AccountFullName: line.AccountFullName,
				Side:            string(line.Side),
				Amount:          line.Amount,
				CurrencyCode:    line.CurrencyCode,
				RateUsed:        line.RateUsed,
			}
		}
	}
	return resp
}

// ListTransactionsParams pages through the ledger of one account (and its
// children). MetaFilter matches transactions whose meta contains every pair.
type ListTransactionsParams struct {
	AccountFullName string            `json:"accountFullName" validate:"required"`
	From            *time.Time        `json:"from"`
	To              *time.Time        `json:"to"`
	MetaFilter      map[string]string `json:"metaFilter"`
	Limit           int               `json:"limit"`
	NextToken       *string           `json:"nextToken"`
}

// ListTransactionsResponse carries one ledger page plus the continuation token.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
