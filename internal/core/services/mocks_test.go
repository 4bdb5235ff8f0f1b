package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/quantabook/ledgercore/internal/core/domain"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
)

// --- Mock CurrencyRepository ---

type MockCurrencyRepository struct {
	mock.Mock
}

var _ portsrepo.CurrencyRepositoryFacade = (*MockCurrencyRepository)(nil)

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindCurrenciesByCodes(ctx context.Context, codes []string) (map[string]domain.Currency, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindBaseCurrency(ctx context.Context) (*domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ApplyRateUpdates(ctx context.Context, updates []portsrepo.RateUpdate, events []domain.ExchangeRateEvent, setBase *string) error {
	args := m.Called(ctx, updates, events, setBase)
	return args.Error(0)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByName(ctx context.Context, fullName string) (*domain.Account, error) {
	args := m.Called(ctx, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByNames(ctx context.Context, fullNames []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, fullNames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, balanceDeltas map[string]decimal.Decimal, turnovers []domain.DailyTurnover, events []domain.ExchangeRateEvent) (*domain.Transaction, error) {
	args := m.Called(ctx, txn, balanceDeltas, turnovers, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockJournalRepository) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockJournalRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockJournalRepository) ListTransactions(ctx context.Context, query portsrepo.LedgerQuery) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var nextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		nextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), nextToken, args.Error(2)
}

func (m *MockJournalRepository) ListLinesByAccount(ctx context.Context, accountFullName string, upTo time.Time) ([]domain.EntryLine, error) {
	args := m.Called(ctx, accountFullName, upTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EntryLine), args.Error(1)
}

func (m *MockJournalRepository) ListLinesByAccountPrefix(ctx context.Context, accountFullName string, upTo time.Time) ([]domain.EntryLine, error) {
	args := m.Called(ctx, accountFullName, upTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EntryLine), args.Error(1)
}

// --- Mock BalanceRepository ---

type MockBalanceRepository struct {
	mock.Mock
}

var _ portsrepo.BalanceRepositoryFacade = (*MockBalanceRepository)(nil)

func (m *MockBalanceRepository) SumBalancesByPrefix(ctx context.Context, accountFullName string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountFullName)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBalanceRepository) OverwriteBalance(ctx context.Context, accountFullName string, balance decimal.Decimal, at time.Time) error {
	args := m.Called(ctx, accountFullName, balance, at)
	return args.Error(0)
}

func (m *MockBalanceRepository) ListDailyTurnovers(ctx context.Context, accountFullName string, from, to time.Time) ([]domain.DailyTurnover, error) {
	args := m.Called(ctx, accountFullName, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyTurnover), args.Error(1)
}

// --- Mock FxAuditRepository ---

type MockFxAuditRepository struct {
	mock.Mock
}

var _ portsrepo.FxAuditRepositoryFacade = (*MockFxAuditRepository)(nil)

func (m *MockFxAuditRepository) CountEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFxAuditRepository) ArchiveBatch(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock TradingRepository ---

type MockTradingRepository struct {
	mock.Mock
}

var _ portsrepo.TradingRepositoryFacade = (*MockTradingRepository)(nil)

func (m *MockTradingRepository) SumTurnoversByCurrency(ctx context.Context, from, to time.Time) ([]domain.CurrencyTurnover, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CurrencyTurnover), args.Error(1)
}
