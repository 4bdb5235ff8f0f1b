package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledgercore/internal/core/ports/services"
	"github.com/quantabook/ledgercore/internal/core/quantize"
	"github.com/quantabook/ledgercore/internal/platform/logging"
)

type tradingService struct {
	tradingRepo  portsrepo.TradingRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
	quant        quantize.Policy
}

// NewTradingService creates the windowed net-position reporting service.
func NewTradingService(
	tradingRepo portsrepo.TradingRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	quant quantize.Policy,
) portssvc.TradingSvcFacade {
	return &tradingService{
		tradingRepo:  tradingRepo,
		currencyRepo: currencyRepo,
		quant:        quant,
	}
}

var _ portssvc.TradingSvcFacade = (*tradingService)(nil)

// TradingBalance aggregates debit and credit sums per registered currency
// inside the window and converts each net position into the report currency.
// An empty baseCode reports in the registry base; a non-empty baseCode
// re-expresses every position in that currency via cross rates. A currency
// with no rate on record contributes at rate 1 and is flagged, never dropped.
func (s *tradingService) TradingBalance(ctx context.Context, baseCode string, window domain.TimeWindow) (*domain.TradingBalanceReport, error) {
	positions, base, window, err := s.buildPositions(ctx, baseCode, window)
	if err != nil {
		return nil, err
	}

	baseTotal := decimal.Zero
	for _, pos := range positions {
		baseTotal = baseTotal.Add(pos.Diff.Mul(pos.RateUsed))
	}

	return &domain.TradingBalanceReport{
		BaseCurrency: base,
		Window:       window,
		Positions:    positions,
		BaseTotal:    s.quant.Money(baseTotal),
	}, nil
}

// TradingBalanceDetailed is TradingBalance with per-currency converted debit,
// credit, and balance figures alongside the raw sums.
func (s *tradingService) TradingBalanceDetailed(ctx context.Context, baseCode string, window domain.TimeWindow) (*domain.TradingBalanceDetailReport, error) {
	positions, base, window, err := s.buildPositions(ctx, baseCode, window)
	if err != nil {
		return nil, err
	}

	detailed := make([]domain.TradingPositionDetail, len(positions))
	baseTotal := decimal.Zero
	for i, pos := range positions {
		detailed[i] = domain.TradingPositionDetail{
			TradingPosition:  pos,
			ConvertedDebit:   s.quant.Money(pos.DebitsSum.Mul(pos.RateUsed)),
			ConvertedCredit:  s.quant.Money(pos.CreditsSum.Mul(pos.RateUsed)),
			ConvertedBalance: s.quant.Money(pos.Diff.Mul(pos.RateUsed)),
		}
		baseTotal = baseTotal.Add(pos.Diff.Mul(pos.RateUsed))
	}

	return &domain.TradingBalanceDetailReport{
		BaseCurrency: base,
		Window:       window,
		Positions:    detailed,
		BaseTotal:    s.quant.Money(baseTotal),
	}, nil
}

func (s *tradingService) buildPositions(ctx context.Context, baseCode string, window domain.TimeWindow) ([]domain.TradingPosition, string, domain.TimeWindow, error) {
	logger := logging.FromCtx(ctx)

	if window.To.IsZero() {
		window.To = time.Now().UTC()
	}
	window.From = window.From.UTC()
	window.To = window.To.UTC()
	if !window.From.Before(window.To) {
		return nil, "", window, apperrors.NewValidationError("window", "from must precede to")
	}

	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, "", window, fmt.Errorf("failed to list currencies: %w", err)
	}

	byCode := make(map[string]domain.Currency, len(currencies))
	var registryBase *domain.Currency
	for i := range currencies {
		byCode[currencies[i].Code] = currencies[i]
		if currencies[i].IsBase {
			registryBase = &currencies[i]
		}
	}
	if registryBase == nil {
		return nil, "", window, apperrors.NewDomainError(apperrors.CodeMissingBaseCurrency, "no base currency is configured")
	}

	base := *registryBase
	if baseCode != "" {
		override, ok := byCode[strings.ToUpper(baseCode)]
		if !ok {
			return nil, "", window, apperrors.NewNotFoundError("currency " + baseCode + " is not registered")
		}
		if !override.HasRate() {
			return nil, "", window, apperrors.NewDomainError(apperrors.CodeRateUnavailable,
				"currency "+override.Code+" has no rate on record and cannot serve as report base")
		}
		base = override
	}

	turnovers, err := s.tradingRepo.SumTurnoversByCurrency(ctx, window.From, window.To)
	if err != nil {
		return nil, "", window, fmt.Errorf("failed to sum turnovers: %w", err)
	}

	turnoverByCode := make(map[string]domain.CurrencyTurnover, len(turnovers))
	codes := make([]string, 0, len(currencies))
	for _, turnover := range turnovers {
		turnoverByCode[turnover.CurrencyCode] = turnover
	}
	for _, currency := range currencies {
		codes = append(codes, currency.Code)
	}
	// Lines can only reference registered currencies, but a stray turnover
	// row is still reported rather than dropped.
	for _, turnover := range turnovers {
		if _, ok := byCode[turnover.CurrencyCode]; !ok {
			codes = append(codes, turnover.CurrencyCode)
		}
	}

	positions := make([]domain.TradingPosition, 0, len(codes))
	for _, code := range codes {
		turnover := turnoverByCode[code]
		pos := domain.TradingPosition{
			CurrencyCode: code,
			DebitsSum:    turnover.DebitsSum,
			CreditsSum:   turnover.CreditsSum,
			Diff:         turnover.DebitsSum.Sub(turnover.CreditsSum),
			RateUsed:     decimal.NewFromInt(1),
		}
		if code != base.Code {
			rate, ok := s.rateInto(byCode[code], base)
			if ok {
				pos.RateUsed = rate
			} else {
				pos.RateFallback = true
				logger.Warn("No rate on record, reporting at rate 1",
					slog.String("currency", code))
			}
		}
		positions = append(positions, pos)
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].CurrencyCode < positions[j].CurrencyCode
	})
	return positions, base.Code, window, nil
}

// rateInto returns the multiplier converting amounts of currency into the
// report base. With the registry base as report base this is the recorded
// rate-to-base; with an override it is the cross rate through the registry
// base.
func (s *tradingService) rateInto(currency, base domain.Currency) (decimal.Decimal, bool) {
	if !currency.HasRate() {
		return decimal.Decimal{}, false
	}
	toRegistry := decimal.NewFromInt(1)
	if !currency.IsBase {
		toRegistry = currency.RateToBase
	}
	if base.IsBase {
		return toRegistry, true
	}
	return s.quant.Rate(toRegistry.Div(base.RateToBase)), true
}
