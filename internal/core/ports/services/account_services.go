package services

import (
	"context"
	"time"

	"github.com/quantabook/ledgercore/internal/core/domain"
	"github.com/quantabook/ledgercore/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountSvcFacade is the account register plus the cached-balance read paths.
type AccountSvcFacade interface {
	// CreateAccount registers an account; registering an existing full name
	// again is a no-op and returns the stored row.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)
	GetAccount(ctx context.Context, fullName string) (*domain.Account, error)

	// GetBalance returns the account's balance, aggregating descendants by
	// name prefix. A nil or future asOf reads the O(1) cache; a historical
	// asOf falls back to replaying the line history.
	GetBalance(ctx context.Context, fullName string, asOf *time.Time) (decimal.Decimal, error)

	// RecalculateBalance force-replays the full line history of one exact
	// account and overwrites its cached row. The line log is the ground truth.
	RecalculateBalance(ctx context.Context, fullName string, asOf *time.Time) (decimal.Decimal, error)

	// ListDailyTurnovers reads the per-day debit/credit aggregates.
	ListDailyTurnovers(ctx context.Context, fullName string, from, to time.Time) ([]domain.DailyTurnover, error)
}
