package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	portssvc "github.com/quantabook/ledgercore/internal/core/ports/services"
	"github.com/quantabook/ledgercore/internal/core/quantize"
	"github.com/quantabook/ledgercore/internal/core/services"
	"github.com/quantabook/ledgercore/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockBalanceRepo *MockBalanceRepository
	mockJournalRepo *MockJournalRepository
	service         portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockBalanceRepo = new(MockBalanceRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.service = services.NewAccountService(
		suite.mockAccountRepo,
		suite.mockBalanceRepo,
		suite.mockJournalRepo,
		quantize.Default(),
	)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ReturnsStoredRow() {
	ctx := context.Background()
	stored := &domain.Account{FullName: "Assets:Bank:Checking", CurrencyCode: "USD", CreatedAt: time.Now().UTC().Add(-time.Hour)}

	suite.mockAccountRepo.On("SaveAccount", mock.Anything, mock.AnythingOfType("domain.Account")).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByName", mock.Anything, "Assets:Bank:Checking").Return(stored, nil).Once()

	account, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		FullName:     "Assets:Bank:Checking",
		CurrencyCode: "USD",
	})

	suite.Require().NoError(err)
	// The stored row wins over the freshly built one, so re-creation keeps
	// the original CreatedAt.
	suite.Equal(stored.CreatedAt, account.CreatedAt)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_RejectsBadCurrency() {
	ctx := context.Background()

	_, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		FullName:     "Assets:Bank",
		CurrencyCode: "usd",
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestGetBalance_CurrentReadsCache() {
	ctx := context.Background()
	suite.mockBalanceRepo.On("SumBalancesByPrefix", mock.Anything, "Assets").
		Return(decimal.RequireFromString("1234.5"), nil).Once()

	balance, err := suite.service.GetBalance(ctx, "Assets", nil)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("1234.50")))
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "ListLinesByAccountPrefix", mock.Anything, mock.Anything, mock.Anything)
	suite.mockBalanceRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetBalance_HistoricalReplaysJournal() {
	ctx := context.Background()
	asOf := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	lines := []domain.EntryLine{
		{AccountFullName: "Assets:Cash", Side: domain.Debit, Amount: decimal.NewFromInt(100)},
		{AccountFullName: "Assets:Cash", Side: domain.Credit, Amount: decimal.NewFromInt(30)},
	}

	suite.mockJournalRepo.On("ListLinesByAccountPrefix", mock.Anything, "Assets", asOf).Return(lines, nil).Once()

	balance, err := suite.service.GetBalance(ctx, "Assets", &asOf)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("70.00")))
	suite.mockBalanceRepo.AssertNotCalled(suite.T(), "SumBalancesByPrefix", mock.Anything, mock.Anything)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetBalance_LineAtExactAsOfCounts() {
	ctx := context.Background()
	asOf := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	lines := []domain.EntryLine{
		{AccountFullName: "Assets:Cash", Side: domain.Debit, Amount: decimal.NewFromInt(100), OccurredAt: asOf.Add(-time.Hour)},
		{AccountFullName: "Assets:Cash", Side: domain.Debit, Amount: decimal.NewFromInt(25), OccurredAt: asOf},
	}

	// The cutoff is inclusive: the repo receives asOf itself, and a line
	// stamped at that exact instant shows up in the replayed balance.
	suite.mockJournalRepo.On("ListLinesByAccountPrefix", mock.Anything, "Assets", asOf).Return(lines, nil).Once()

	balance, err := suite.service.GetBalance(ctx, "Assets", &asOf)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("125.00")))
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRecalculateBalance_OverwritesCache() {
	ctx := context.Background()
	account := &domain.Account{FullName: "Assets:Cash", CurrencyCode: "USD"}
	lines := []domain.EntryLine{
		{AccountFullName: "Assets:Cash", Side: domain.Debit, Amount: decimal.NewFromInt(100)},
		{AccountFullName: "Assets:Cash", Side: domain.Credit, Amount: decimal.RequireFromString("40.25")},
	}

	suite.mockAccountRepo.On("FindAccountByName", mock.Anything, "Assets:Cash").Return(account, nil).Once()
	suite.mockJournalRepo.On("ListLinesByAccount", mock.Anything, "Assets:Cash", mock.AnythingOfType("time.Time")).Return(lines, nil).Once()
	suite.mockBalanceRepo.On("OverwriteBalance", mock.Anything, "Assets:Cash",
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.RequireFromString("59.75")) }),
		mock.AnythingOfType("time.Time"),
	).Return(nil).Once()

	balance, err := suite.service.RecalculateBalance(ctx, "Assets:Cash", nil)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("59.75")))
	suite.mockBalanceRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRecalculateBalance_EmptyJournalWritesZero() {
	ctx := context.Background()
	account := &domain.Account{FullName: "Assets:Empty", CurrencyCode: "USD"}

	suite.mockAccountRepo.On("FindAccountByName", mock.Anything, "Assets:Empty").Return(account, nil).Once()
	suite.mockJournalRepo.On("ListLinesByAccount", mock.Anything, "Assets:Empty", mock.AnythingOfType("time.Time")).Return([]domain.EntryLine{}, nil).Once()
	suite.mockBalanceRepo.On("OverwriteBalance", mock.Anything, "Assets:Empty",
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.IsZero() }),
		mock.AnythingOfType("time.Time"),
	).Return(nil).Once()

	balance, err := suite.service.RecalculateBalance(ctx, "Assets:Empty", nil)

	suite.Require().NoError(err)
	suite.True(balance.IsZero())
	suite.mockBalanceRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRecalculateBalance_HistoricalSkipsOverwrite() {
	ctx := context.Background()
	asOf := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	account := &domain.Account{FullName: "Assets:Cash", CurrencyCode: "USD"}
	lines := []domain.EntryLine{
		{AccountFullName: "Assets:Cash", Side: domain.Debit, Amount: decimal.NewFromInt(10)},
	}

	suite.mockAccountRepo.On("FindAccountByName", mock.Anything, "Assets:Cash").Return(account, nil).Once()
	suite.mockJournalRepo.On("ListLinesByAccount", mock.Anything, "Assets:Cash", asOf).Return(lines, nil).Once()

	balance, err := suite.service.RecalculateBalance(ctx, "Assets:Cash", &asOf)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("10.00")))
	suite.mockBalanceRepo.AssertNotCalled(suite.T(), "OverwriteBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestRecalculateBalance_UnknownAccount() {
	ctx := context.Background()
	suite.mockAccountRepo.On("FindAccountByName", mock.Anything, "Assets:Ghost").
		Return(nil, apperrors.NewNotFoundError("account Assets:Ghost")).Once()

	_, err := suite.service.RecalculateBalance(ctx, "Assets:Ghost", nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "ListLinesByAccount", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
