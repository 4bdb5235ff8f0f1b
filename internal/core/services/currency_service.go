package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quantabook/ledgercore/internal/apperrors"
	"github.com/quantabook/ledgercore/internal/core/domain"
	"github.com/quantabook/ledgercore/internal/core/fxpolicy"
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledgercore/internal/core/ports/services"
	"github.com/quantabook/ledgercore/internal/core/quantize"
	"github.com/quantabook/ledgercore/internal/dto"
	"github.com/quantabook/ledgercore/internal/platform/logging"
)

// currencyService implements the currency registry and rate-update policy.
type currencyService struct {
	currencyRepo portsrepo.CurrencyRepositoryFacade
	quant        quantize.Policy
}

// NewCurrencyService creates the currency registry service.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade, quant quantize.Policy) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: currencyRepo, quant: quant}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

// CreateCurrency registers a currency. Creation is idempotent: a code that
// already exists is left untouched and the stored row is returned.
func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest) (*domain.Currency, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	currency := domain.Currency{
		Code:      strings.ToUpper(req.Code),
		Name:      req.Name,
		Symbol:    req.Symbol,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		return nil, fmt.Errorf("failed to save currency %s: %w", currency.Code, err)
	}

	// Read back so an idempotent re-create returns the original row, not the
	// freshly built one.
	stored, err := s.currencyRepo.FindCurrencyByCode(ctx, currency.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to load currency %s after save: %w", currency.Code, err)
	}
	return stored, nil
}

func (s *currencyService) GetCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, fmt.Errorf("failed to get currency %s: %w", code, err)
	}
	return currency, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if currencies == nil {
		currencies = []domain.Currency{}
	}
	return currencies, nil
}

// BaseCurrency returns the single base currency.
func (s *currencyService) BaseCurrency(ctx context.Context) (*domain.Currency, error) {
	base, err := s.currencyRepo.FindBaseCurrency(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewDomainError(apperrors.CodeMissingBaseCurrency, "no base currency is configured")
		}
		return nil, fmt.Errorf("failed to find base currency: %w", err)
	}
	return base, nil
}

// SetBaseCurrency promotes code to base. The prior base is unset in the same
// transaction, preserving the single-base invariant at every point in time.
func (s *currencyService) SetBaseCurrency(ctx context.Context, code string) error {
	logger := logging.FromCtx(ctx)
	code = strings.ToUpper(code)

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to resolve currency %s for base promotion: %w", code, err)
	}
	if currency.IsBase {
		return apperrors.NewDomainError(apperrors.CodeDuplicateBasePromotion,
			fmt.Sprintf("currency %s is already the base currency", code))
	}

	if err := s.currencyRepo.ApplyRateUpdates(ctx, nil, nil, &code); err != nil {
		return fmt.Errorf("failed to promote %s to base: %w", code, err)
	}
	logger.Info("Base currency promoted", slog.String("currency", code))
	return nil
}

// UpdateExchangeRates folds a batch of observations into the stored rates,
// each currency independently, and appends one audit event per observation.
func (s *currencyService) UpdateExchangeRates(ctx context.Context, req dto.UpdateExchangeRatesRequest) ([]domain.Currency, error) {
	logger := logging.FromCtx(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	mode, err := fxpolicy.ParseMode(req.PolicyMode)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(req.Rates))
	for _, obs := range req.Rates {
		codes = append(codes, strings.ToUpper(obs.CurrencyCode))
	}
	currencies, err := s.currencyRepo.FindCurrenciesByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve currencies for rate update: %w", err)
	}

	now := time.Now().UTC()
	source := req.Source
	if source == "" {
		source = domain.RateSourceBatch
	}

	updates := make([]portsrepo.RateUpdate, 0, len(req.Rates))
	events := make([]domain.ExchangeRateEvent, 0, len(req.Rates))
	updated := make([]domain.Currency, 0, len(req.Rates))

	for _, obs := range req.Rates {
		code := strings.ToUpper(obs.CurrencyCode)
		currency, ok := currencies[code]
		if !ok {
			return nil, apperrors.NewNotFoundError("currency " + code)
		}

		state := fxpolicy.State{
			PreviousRate:     currency.RateToBase,
			ObservationCount: currency.RateObservations,
		}
		newRate, newState, err := fxpolicy.Apply(mode, state, obs.Rate)
		if err != nil {
			return nil, err
		}
		newRate = s.quant.Rate(newRate)

		updates = append(updates, portsrepo.RateUpdate{
			Code:             code,
			Rate:             newRate,
			ObservationCount: newState.ObservationCount,
			UpdatedAt:        now,
		})
		events = append(events, domain.ExchangeRateEvent{
			EventID:      uuid.NewString(),
			CurrencyCode: code,
			Rate:         obs.Rate,
			ObservedAt:   now,
			Source:       source,
		})

		currency.RateToBase = newRate
		currency.RateObservations = newState.ObservationCount
		currency.RateUpdatedAt = now
		updated = append(updated, currency)
	}

	var setBase *string
	if req.SetBase != nil {
		code := strings.ToUpper(*req.SetBase)
		if _, ok := currencies[code]; !ok {
			if _, err := s.currencyRepo.FindCurrencyByCode(ctx, code); err != nil {
				return nil, fmt.Errorf("failed to resolve base promotion target %s: %w", code, err)
			}
		}
		setBase = &code
	}

	if err := s.currencyRepo.ApplyRateUpdates(ctx, updates, events, setBase); err != nil {
		return nil, fmt.Errorf("failed to apply rate updates: %w", err)
	}

	logger.Info("Exchange rates updated",
		slog.Int("currencies", len(updates)),
		slog.String("mode", string(mode)),
		slog.Bool("base_promoted", setBase != nil),
	)
	return updated, nil
}
