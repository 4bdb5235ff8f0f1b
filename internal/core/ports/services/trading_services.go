package services

import (
	"context"

	"github.com/quantabook/ledgercore/internal/core/domain"
)

// TradingSvcFacade reports windowed net currency positions. The zero-value
// window defaults to [epoch, now); an empty baseCode reports in the registry
// base currency.
type TradingSvcFacade interface {
	TradingBalance(ctx context.Context, baseCode string, window domain.TimeWindow) (*domain.TradingBalanceReport, error)
	TradingBalanceDetailed(ctx context.Context, baseCode string, window domain.TimeWindow) (*domain.TradingBalanceDetailReport, error)
}
