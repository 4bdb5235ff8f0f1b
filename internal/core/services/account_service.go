package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantabook/ledgercore/internal/core/domain"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledgercore/internal/core/ports/services"
	"github.com/quantabook/ledgercore/internal/core/quantize"
	"github.com/quantabook/ledgercore/internal/dto"
	"github.com/quantabook/ledgercore/internal/platform/logging"
	"github.com/quantabook/ledgercore/internal/utils/accounting"
)

type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	balanceRepo portsrepo.BalanceRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
	quant       quantize.Policy
}

// NewAccountService creates the account and balance service.
func NewAccountService(
	accountRepo portsrepo.AccountRepositoryFacade,
	balanceRepo portsrepo.BalanceRepositoryFacade,
	journalRepo portsrepo.JournalRepositoryFacade,
	quant quantize.Policy,
) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		balanceRepo: balanceRepo,
		journalRepo: journalRepo,
		quant:       quant,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers an account. Re-creating an existing account is a
// no-op that returns the stored row.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := logging.FromCtx(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	account := domain.Account{
		FullName:     req.FullName,
		CurrencyCode: req.CurrencyCode,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account %s: %w", account.FullName, err)
	}

	stored, err := s.accountRepo.FindAccountByName(ctx, account.FullName)
	if err != nil {
		return nil, fmt.Errorf("failed to read back account %s: %w", account.FullName, err)
	}

	logger.Info("Account registered", slog.String("account", stored.FullName), slog.String("currency", stored.CurrencyCode))
	return stored, nil
}

func (s *accountService) GetAccount(ctx context.Context, fullName string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByName(ctx, fullName)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", fullName, err)
	}
	return account, nil
}

// GetBalance returns the balance of an account and all of its descendants.
// With no asOf, or an asOf in the future, the maintained cache answers in one
// aggregate read. A historical asOf replays the journal instead; the cache is
// current-state only and cannot answer as-of questions.
func (s *accountService) GetBalance(ctx context.Context, fullName string, asOf *time.Time) (decimal.Decimal, error) {
	if asOfIsCurrent(asOf) {
		balance, err := s.balanceRepo.SumBalancesByPrefix(ctx, fullName)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to sum cached balances for %s: %w", fullName, err)
		}
		return s.quant.Money(balance), nil
	}

	lines, err := s.journalRepo.ListLinesByAccountPrefix(ctx, fullName, asOf.UTC())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to replay lines for %s: %w", fullName, err)
	}
	return s.replay(lines), nil
}

// RecalculateBalance replays the full journal of one exact account and, when
// the requested point in time is current, overwrites the cached row with the
// replayed value. The account must exist; a replayed empty journal writes an
// explicit zero.
func (s *accountService) RecalculateBalance(ctx context.Context, fullName string, asOf *time.Time) (decimal.Decimal, error) {
	logger := logging.FromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByName(ctx, fullName); err != nil {
		return decimal.Zero, fmt.Errorf("failed to find account %s: %w", fullName, err)
	}

	upTo := time.Now().UTC()
	if asOf != nil && asOf.UTC().Before(upTo) {
		upTo = asOf.UTC()
	}

	lines, err := s.journalRepo.ListLinesByAccount(ctx, fullName, upTo)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to replay lines for %s: %w", fullName, err)
	}
	balance := s.replay(lines)

	if asOfIsCurrent(asOf) {
		if err := s.balanceRepo.OverwriteBalance(ctx, fullName, balance, time.Now().UTC()); err != nil {
			return decimal.Zero, fmt.Errorf("failed to overwrite cached balance for %s: %w", fullName, err)
		}
		logger.Info("Cached balance rebuilt from journal",
			slog.String("account", fullName),
			slog.String("balance", balance.String()),
		)
	}
	return balance, nil
}

func (s *accountService) ListDailyTurnovers(ctx context.Context, fullName string, from, to time.Time) ([]domain.DailyTurnover, error) {
	turnovers, err := s.balanceRepo.ListDailyTurnovers(ctx, fullName, accounting.DayUTC(from), accounting.DayUTC(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list daily turnovers for %s: %w", fullName, err)
	}
	return turnovers, nil
}

func (s *accountService) replay(lines []domain.EntryLine) decimal.Decimal {
	balance := decimal.Zero
	for _, line := range lines {
		balance = accounting.ApplyDelta(balance, line)
	}
	return s.quant.Money(balance)
}

func asOfIsCurrent(asOf *time.Time) bool {
	return asOf == nil || !asOf.UTC().Before(time.Now().UTC())
}
