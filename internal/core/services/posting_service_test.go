package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledgercore/internal/core/ports/services"
	"github.com/quantabook/ledgercore/internal/core/quantize"
	"github.com/quantabook/ledgercore/internal/core/services"
	"github.com/quantabook/ledgercore/internal/dto"
)

type PostingServiceTestSuite struct {
	suite.Suite
	mockAccountRepo  *MockAccountRepository
	mockCurrencyRepo *MockCurrencyRepository
	mockJournalRepo  *MockJournalRepository
	service          portssvc.PostingSvcFacade

	usd         domain.Currency
	eur         domain.Currency
	cashAccount domain.Account
	salesEUR    domain.Account
}

func (suite *PostingServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.service = services.NewPostingService(
		suite.mockAccountRepo,
		suite.mockCurrencyRepo,
		suite.mockJournalRepo,
		quantize.Default(),
	)

	suite.usd = domain.Currency{Code: "USD", Name: "US Dollar", IsBase: true}
	suite.eur = domain.Currency{
		Code:             "EUR",
		Name:             "Euro",
		RateToBase:       decimal.RequireFromString("1.1"),
		RateObservations: 3,
	}
	suite.cashAccount = domain.Account{FullName: "Assets:Cash", CurrencyCode: "USD"}
	suite.salesEUR = domain.Account{FullName: "Income:Sales", CurrencyCode: "EUR"}
}

func (suite *PostingServiceTestSuite) expectResolution(accounts map[string]domain.Account, currencies map[string]domain.Currency) {
	suite.mockAccountRepo.On("FindAccountsByNames", mock.Anything, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockCurrencyRepo.On("FindCurrenciesByCodes", mock.Anything, mock.AnythingOfType("[]string")).Return(currencies, nil).Once()
	suite.mockCurrencyRepo.On("FindBaseCurrency", mock.Anything).Return(&suite.usd, nil).Once()
}

func (suite *PostingServiceTestSuite) TestPost_MultiCurrencyBalanced() {
	ctx := context.Background()
	req := dto.PostTransactionRequest{
		Memo: "EUR sale settled in USD",
		Lines: []dto.EntryLineRequest{
			{AccountFullName: "Assets:Cash", Side: "DEBIT", Amount: decimal.RequireFromString("110"), CurrencyCode: "USD"},
			{AccountFullName: "Income:Sales", Side: "CREDIT", Amount: decimal.RequireFromString("100"), CurrencyCode: "EUR"},
		},
	}

	suite.expectResolution(
		map[string]domain.Account{"Assets:Cash": suite.cashAccount, "Income:Sales": suite.salesEUR},
		map[string]domain.Currency{"USD": suite.usd, "EUR": suite.eur},
	)

	var savedTxn domain.Transaction
	var savedDeltas map[string]decimal.Decimal
	var savedTurnovers []domain.DailyTurnover
	var savedEvents []domain.ExchangeRateEvent
	committed := &domain.Transaction{TransactionID: uuid.NewString()}
	suite.mockJournalRepo.On("SaveTransaction", mock.Anything,
		mock.AnythingOfType("domain.Transaction"),
		mock.AnythingOfType("map[string]decimal.Decimal"),
		mock.AnythingOfType("[]domain.DailyTurnover"),
		mock.AnythingOfType("[]domain.ExchangeRateEvent"),
	).Run(func(args mock.Arguments) {
		savedTxn = args.Get(1).(domain.Transaction)
		savedDeltas = args.Get(2).(map[string]decimal.Decimal)
		savedTurnovers = args.Get(3).([]domain.DailyTurnover)
		savedEvents = args.Get(4).([]domain.ExchangeRateEvent)
	}).Return(committed, nil).Once()

	result, err := suite.service.Post(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.Equal(committed.TransactionID, result.TransactionID)

	suite.Require().Len(savedTxn.Lines, 2)
	suite.True(savedTxn.Lines[0].Amount.Equal(decimal.RequireFromString("110.00")))
	suite.True(savedTxn.Lines[0].RateUsed.Equal(decimal.NewFromInt(1)))
	suite.True(savedTxn.Lines[1].RateUsed.Equal(decimal.RequireFromString("1.1")))

	// Each account moves in its own denomination: debit positive, credit negative.
	suite.True(savedDeltas["Assets:Cash"].Equal(decimal.RequireFromString("110.00")))
	suite.True(savedDeltas["Income:Sales"].Equal(decimal.RequireFromString("-100.00")))

	// Turnover rows arrive in account order so the repository applies them
	// deterministically.
	suite.Require().Len(savedTurnovers, 2)
	suite.Equal("Assets:Cash", savedTurnovers[0].AccountFullName)
	suite.Equal("Income:Sales", savedTurnovers[1].AccountFullName)
	suite.True(savedTurnovers[0].DebitTotal.Equal(decimal.RequireFromString("110.00")))
	suite.True(savedTurnovers[1].CreditTotal.Equal(decimal.RequireFromString("100.00")))

	// One audit event for the single non-base currency.
	suite.Require().Len(savedEvents, 1)
	suite.Equal("EUR", savedEvents[0].CurrencyCode)
	suite.Equal(domain.RateSourcePosting, savedEvents[0].Source)
	suite.True(savedEvents[0].Rate.Equal(decimal.RequireFromString("1.1")))

	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPost_UnbalancedRejectedBeforeWrite() {
	ctx := context.Background()
	req := dto.PostTransactionRequest{
		Lines: []dto.EntryLineRequest{
			{AccountFullName: "Assets:Cash", Side: "DEBIT", Amount: decimal.NewFromInt(100), CurrencyCode: "USD"},
			{AccountFullName: "Income:Sales", Side: "CREDIT", Amount: decimal.NewFromInt(50), CurrencyCode: "EUR"},
		},
	}

	suite.expectResolution(
		map[string]domain.Account{"Assets:Cash": suite.cashAccount, "Income:Sales": suite.salesEUR},
		map[string]domain.Currency{"USD": suite.usd, "EUR": suite.eur},
	)

	result, err := suite.service.Post(ctx, req)

	suite.Require().Error(err)
	suite.Nil(result)
	var domainErr *apperrors.DomainError
	suite.Require().ErrorAs(err, &domainErr)
	suite.Equal(apperrors.CodeUnbalancedLedger, domainErr.Code)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPost_MissingRateFailsBeforeWrite() {
	ctx := context.Background()
	unrated := domain.Currency{Code: "EUR", Name: "Euro"} // no rate on record
	req := dto.PostTransactionRequest{
		Lines: []dto.EntryLineRequest{
			{AccountFullName: "Assets:Cash", Side: "DEBIT", Amount: decimal.NewFromInt(110), CurrencyCode: "USD"},
			{AccountFullName: "Income:Sales", Side: "CREDIT", Amount: decimal.NewFromInt(100), CurrencyCode: "EUR"},
		},
	}

	suite.expectResolution(
		map[string]domain.Account{"Assets:Cash": suite.cashAccount, "Income:Sales": suite.salesEUR},
		map[string]domain.Currency{"USD": suite.usd, "EUR": unrated},
	)

	result, err := suite.service.Post(ctx, req)

	suite.Require().Error(err)
	suite.Nil(result)
	var domainErr *apperrors.DomainError
	suite.Require().ErrorAs(err, &domainErr)
	suite.Equal(apperrors.CodeRateUnavailable, domainErr.Code)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PostingServiceTestSuite) TestPost_IdempotentReplayReturnsCommitted() {
	ctx := context.Background()
	key := "invoice-42"
	existing := &domain.Transaction{TransactionID: uuid.NewString(), IdempotencyKey: &key}
	req := dto.PostTransactionRequest{
		IdempotencyKey: &key,
		Lines: []dto.EntryLineRequest{
			{AccountFullName: "Assets:Cash", Side: "DEBIT", Amount: decimal.NewFromInt(100), CurrencyCode: "USD"},
			{AccountFullName: "Income:Sales", Side: "CREDIT", Amount: decimal.NewFromInt(100), CurrencyCode: "USD"},
		},
	}

	suite.mockJournalRepo.On("FindTransactionByIdempotencyKey", mock.Anything, key).Return(existing, nil).Once()

	result, err := suite.service.Post(ctx, req)

	suite.Require().NoError(err)
	suite.Equal(existing.TransactionID, result.TransactionID)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestPost_CurrencyMismatchRejected() {
	ctx := context.Background()
	req := dto.PostTransactionRequest{
		Lines: []dto.EntryLineRequest{
			{AccountFullName: "Assets:Cash", Side: "DEBIT", Amount: decimal.NewFromInt(100), CurrencyCode: "EUR"},
			{AccountFullName: "Income:Sales", Side: "CREDIT", Amount: decimal.NewFromInt(100), CurrencyCode: "EUR"},
		},
	}

	suite.expectResolution(
		map[string]domain.Account{"Assets:Cash": suite.cashAccount, "Income:Sales": suite.salesEUR},
		map[string]domain.Currency{"EUR": suite.eur},
	)

	result, err := suite.service.Post(ctx, req)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PostingServiceTestSuite) TestPost_SingleLineRejectedByValidation() {
	ctx := context.Background()
	req := dto.PostTransactionRequest{
		Lines: []dto.EntryLineRequest{
			{AccountFullName: "Assets:Cash", Side: "DEBIT", Amount: decimal.NewFromInt(100), CurrencyCode: "USD"},
		},
	}

	result, err := suite.service.Post(ctx, req)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PostingServiceTestSuite) TestReversePost_FlipsSidesAndLinksOriginal() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := &domain.Transaction{
		TransactionID: originalID,
		Memo:          "EUR sale settled in USD",
		OccurredAt:    time.Now().UTC().Add(-time.Hour),
		Lines: []domain.EntryLine{
			{
				LineID: uuid.NewString(), TransactionID: originalID,
				AccountFullName: "Assets:Cash", Side: domain.Debit,
				Amount: decimal.RequireFromString("110.00"), CurrencyCode: "USD",
				RateUsed: decimal.NewFromInt(1),
			},
			{
				LineID: uuid.NewString(), TransactionID: originalID,
				AccountFullName: "Income:Sales", Side: domain.Credit,
				Amount: decimal.RequireFromString("100.00"), CurrencyCode: "EUR",
				RateUsed: decimal.RequireFromString("1.1"),
			},
		},
	}

	suite.mockJournalRepo.On("FindTransactionByID", mock.Anything, originalID).Return(original, nil).Once()
	suite.mockCurrencyRepo.On("FindBaseCurrency", mock.Anything).Return(&suite.usd, nil).Once()

	var savedTxn domain.Transaction
	committed := &domain.Transaction{TransactionID: uuid.NewString()}
	suite.mockJournalRepo.On("SaveTransaction", mock.Anything,
		mock.AnythingOfType("domain.Transaction"),
		mock.AnythingOfType("map[string]decimal.Decimal"),
		mock.AnythingOfType("[]domain.DailyTurnover"),
		mock.AnythingOfType("[]domain.ExchangeRateEvent"),
	).Run(func(args mock.Arguments) {
		savedTxn = args.Get(1).(domain.Transaction)
	}).Return(committed, nil).Once()

	result, err := suite.service.ReversePost(ctx, originalID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.NotEqual(originalID, savedTxn.TransactionID)
	suite.Equal(originalID, savedTxn.Meta[domain.MetaReversalOf])

	suite.Require().Len(savedTxn.Lines, 2)
	suite.Equal(domain.Credit, savedTxn.Lines[0].Side)
	suite.Equal(domain.Debit, savedTxn.Lines[1].Side)
	// The rate applied at original post time is reused verbatim.
	suite.True(savedTxn.Lines[1].RateUsed.Equal(decimal.RequireFromString("1.1")))

	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *PostingServiceTestSuite) TestListTransactions_DefaultsWindowAndLimit() {
	ctx := context.Background()
	txns := []domain.Transaction{{TransactionID: uuid.NewString()}}

	suite.mockJournalRepo.On("ListTransactions", mock.Anything, mock.MatchedBy(func(q portsrepo.LedgerQuery) bool {
		return q.AccountFullName == "Assets" && q.Limit == 50 && !q.To.IsZero()
	})).Return(txns, nil, nil).Once()

	resp, err := suite.service.ListTransactions(ctx, dto.ListTransactionsParams{AccountFullName: "Assets"})

	suite.Require().NoError(err)
	suite.Require().Len(resp.Transactions, 1)
	suite.Nil(resp.NextToken)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func TestPostingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostingServiceTestSuite))
}
