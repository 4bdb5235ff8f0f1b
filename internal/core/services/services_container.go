package services

import (
	portsrepo "github.com/quantabook/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/quantabook/ledgercore/internal/core/ports/services"
	"github.com/quantabook/ledgercore/internal/core/quantize"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
func NewServiceContainer(repos portsrepo.RepositoryProvider, quant quantize.Policy) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo, quant)
	container.Account = NewAccountService(repos.AccountRepo, repos.BalanceRepo, repos.JournalRepo, quant)
	container.Posting = NewPostingService(repos.AccountRepo, repos.CurrencyRepo, repos.JournalRepo, quant)
	container.Trading = NewTradingService(repos.TradingRepo, repos.CurrencyRepo, quant)
	container.FxAudit = NewFxAuditService(repos.FxAuditRepo)

	return container
}
