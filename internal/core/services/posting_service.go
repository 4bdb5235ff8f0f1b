package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledgercore/internal/core/ports/services"
	"github.com/quantabook/ledgercore/internal/core/quantize"
	"github.com/quantabook/ledgercore/internal/dto"
	"github.com/quantabook/ledgercore/internal/platform/logging"
	"github.com/quantabook/ledgercore/internal/utils/accounting"
)

const defaultLedgerPageSize = 50

// postingService orchestrates a posting: idempotency check, resolution,
// double-entry validation, and the atomic journal+cache write.
type postingService struct {
	accountRepo  portsrepo.AccountRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
	journalRepo  portsrepo.JournalRepositoryFacade
	quant        quantize.Policy
}

// NewPostingService creates the transaction poster.
func NewPostingService(
	accountRepo portsrepo.AccountRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	journalRepo portsrepo.JournalRepositoryFacade,
	quant quantize.Policy,
) portssvc.PostingSvcFacade {
	return &postingService{
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
		journalRepo:  journalRepo,
		quant:        quant,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// Post validates and commits a multi-line transaction. Nothing is observable
// until the single commit at the end; any failure leaves no partial state.
func (s *postingService) Post(ctx context.Context, req dto.PostTransactionRequest) (*domain.Transaction, error) {
	logger := logging.FromCtx(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	// Fast path: a retried posting returns the committed original, no
	// duplicate side effects. The storage uniqueness constraint covers the
	// race where two identical posts pass this check concurrently.
	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		existing, err := s.journalRepo.FindTransactionByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err == nil {
			logger.Debug("Idempotent replay, returning committed transaction",
				slog.String("transaction_id", existing.TransactionID))
			return existing, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed idempotency lookup: %w", err)
		}
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	accounts, err := s.resolveAccounts(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	currencies, base, err := s.resolveCurrencies(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transactionID := uuid.NewString()

	lines := make([]domain.EntryLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		account := accounts[lineReq.AccountFullName]
		code := strings.ToUpper(lineReq.CurrencyCode)
		if account.CurrencyCode != code {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("lines[%d].currencyCode", i),
				fmt.Sprintf("account %s is denominated in %s, not %s", account.FullName, account.CurrencyCode, code),
			)
		}

		rate, err := rateForPosting(currencies[code], base.Code)
		if err != nil {
			return nil, err
		}

		lines[i] = domain.EntryLine{
			LineID:          uuid.NewString(),
			TransactionID:   transactionID,
			AccountFullName: account.FullName,
			Side:            domain.EntrySide(lineReq.Side),
			Amount:          s.quant.Money(lineReq.Amount),
			CurrencyCode:    code,
			RateUsed:        rate,
			OccurredAt:      occurredAt,
		}
	}

	if err := accounting.ValidateBalanced(s.quant, lines, base.Code); err != nil {
		return nil, err
	}

	txn := domain.Transaction{
		TransactionID:  transactionID,
		Memo:           req.Memo,
		OccurredAt:     occurredAt,
		Meta:           req.Meta,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		Lines:          lines,
	}

	committed, err := s.commit(ctx, txn, base.Code, now)
	if err != nil {
		return nil, err
	}

	logger.Info("Transaction posted",
		slog.String("transaction_id", committed.TransactionID),
		slog.Int("lines", len(committed.Lines)),
	)
	return committed, nil
}

// ReversePost commits a new transaction undoing a committed one by flipping
// every line's side. The original is never touched.
func (s *postingService) ReversePost(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	logger := logging.FromCtx(ctx)

	original, err := s.journalRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s for reversal: %w", transactionID, err)
	}

	base, err := s.currencyRepo.FindBaseCurrency(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewDomainError(apperrors.CodeMissingBaseCurrency, "no base currency is configured")
		}
		return nil, fmt.Errorf("failed to find base currency: %w", err)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()

	lines := make([]domain.EntryLine, len(original.Lines))
	for i, origLine := range original.Lines {
		side := domain.Credit
		if origLine.Side == domain.Credit {
			side = domain.Debit
		}
		// The original rate is reused so the reversal balances exactly as the
		// original did, whatever the current rate happens to be.
		lines[i] = domain.EntryLine{
			LineID:          uuid.NewString(),
			TransactionID:   reversalID,
			AccountFullName: origLine.AccountFullName,
			Side:            side,
			Amount:          origLine.Amount,
			CurrencyCode:    origLine.CurrencyCode,
			RateUsed:        origLine.RateUsed,
			OccurredAt:      now,
		}
	}

	txn := domain.Transaction{
		TransactionID: reversalID,
		Memo:          fmt.Sprintf("Reversal of: %s", original.Memo),
		OccurredAt:    now,
		Meta:          map[string]string{domain.MetaReversalOf: original.TransactionID},
		CreatedAt:     now,
		Lines:         lines,
	}

	committed, err := s.commit(ctx, txn, base.Code, now)
	if err != nil {
		return nil, err
	}

	logger.Info("Transaction reversed",
		slog.String("original_id", original.TransactionID),
		slog.String("reversal_id", committed.TransactionID),
	)
	return committed, nil
}

func (s *postingService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.journalRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactions pages the ledger of an account (including descendants).
func (s *postingService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	if err := dto.Validate(params); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLedgerPageSize
	}

	query := portsrepo.LedgerQuery{
		AccountFullName: params.AccountFullName,
		MetaFilter:      params.MetaFilter,
		Limit:           limit,
		NextToken:       params.NextToken,
	}
	if params.From != nil {
		query.From = params.From.UTC()
	}
	if params.To != nil {
		query.To = params.To.UTC()
	} else {
		query.To = time.Now().UTC()
	}

	txns, nextToken, err := s.journalRepo.ListTransactions(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	resp := &dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, len(txns)),
		NextToken:    nextToken,
	}
	for i := range txns {
		resp.Transactions[i] = dto.ToTransactionResponse(&txns[i])
	}
	return resp, nil
}

// commit derives the cache deltas and rate events, then hands everything to
// the repository as one atomic unit.
func (s *postingService) commit(ctx context.Context, txn domain.Transaction, baseCode string, now time.Time) (*domain.Transaction, error) {
	balanceDeltas, turnoverMap := accounting.CacheDeltas(txn.Lines)
	turnovers := make([]domain.DailyTurnover, 0, len(turnoverMap))
	for _, agg := range turnoverMap {
		turnovers = append(turnovers, agg)
	}
	// Stable row order keeps concurrent postings from locking turnover rows
	// in opposite orders.
	sort.Slice(turnovers, func(i, j int) bool {
		if turnovers[i].AccountFullName != turnovers[j].AccountFullName {
			return turnovers[i].AccountFullName < turnovers[j].AccountFullName
		}
		return turnovers[i].Day.Before(turnovers[j].Day)
	})

	// Log each non-base rate actually used, once per currency.
	events := make([]domain.ExchangeRateEvent, 0)
	seen := make(map[string]struct{})
	for _, line := range txn.Lines {
		if line.CurrencyCode == baseCode {
			continue
		}
		if _, ok := seen[line.CurrencyCode]; ok {
			continue
		}
		seen[line.CurrencyCode] = struct{}{}
		events = append(events, domain.ExchangeRateEvent{
			EventID:      uuid.NewString(),
			CurrencyCode: line.CurrencyCode,
			Rate:         line.RateUsed,
			ObservedAt:   now,
			Source:       domain.RateSourcePosting,
		})
	}

	committed, err := s.journalRepo.SaveTransaction(ctx, txn, balanceDeltas, turnovers, events)
	if err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	return committed, nil
}

func (s *postingService) resolveAccounts(ctx context.Context, lines []dto.EntryLineRequest) (map[string]domain.Account, error) {
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		names = append(names, line.AccountFullName)
	}
	accounts, err := s.accountRepo.FindAccountsByNames(ctx, uniqueStrings(names))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accounts: %w", err)
	}
	for _, name := range names {
		if _, ok := accounts[name]; !ok {
			return nil, apperrors.NewNotFoundError("account " + name)
		}
	}
	return accounts, nil
}

func (s *postingService) resolveCurrencies(ctx context.Context, lines []dto.EntryLineRequest) (map[string]domain.Currency, *domain.Currency, error) {
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		codes = append(codes, strings.ToUpper(line.CurrencyCode))
	}
	currencies, err := s.currencyRepo.FindCurrenciesByCodes(ctx, uniqueStrings(codes))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve currencies: %w", err)
	}
	for _, code := range codes {
		if _, ok := currencies[code]; !ok {
			return nil, nil, apperrors.NewNotFoundError("currency " + code)
		}
	}

	base, err := s.currencyRepo.FindBaseCurrency(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.NewDomainError(apperrors.CodeMissingBaseCurrency, "no base currency is configured")
		}
		return nil, nil, fmt.Errorf("failed to find base currency: %w", err)
	}
	return currencies, base, nil
}

// rateForPosting picks the rate-to-base recorded for a line's currency. A
// non-base line without a positive rate fails before anything is written.
func rateForPosting(currency domain.Currency, baseCode string) (decimal.Decimal, error) {
	if currency.Code == baseCode {
		return decimal.NewFromInt(1), nil
	}
	if !currency.HasRate() {
		return decimal.Zero, apperrors.NewDomainError(
			apperrors.CodeRateUnavailable,
			fmt.Sprintf("no exchange rate on record for %s", currency.Code),
		)
	}
	return currency.RateToBase, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
