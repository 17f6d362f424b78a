package services

import (
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
	portssvc "github.com/fxdesk/fx_backoffice/internal/core/ports/services"
	"github.com/fxdesk/fx_backoffice/internal/platform/config"
	"github.com/fxdesk/fx_backoffice/internal/platform/events"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher events.Publisher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Currency service first since rate and ledger services depend on it
	currencyService := NewCurrencyService(repos.CurrencyRepo)
	container.Currency = currencyService

	rateService := NewExchangeRateService(repos.ExchangeRateRepo, currencyService, cfg.BaseCurrencyCode)
	container.ExchangeRate = rateService

	container.Balance = NewBalanceService(repos.BalanceRepo)
	container.Transaction = NewTransactionService(
		repos,
		currencyService,
		rateService,
		publisher,
		cfg.ExpenseApprovalThreshold,
		cfg.DefaultCommissionPct,
	)
	container.Transfer = NewTransferService(repos, currencyService, publisher, cfg.TransferAutoApproveBranch)
	container.Reconciliation = NewReconciliationService(repos, currencyService, publisher)

	return container
}

// Interface implementation checks at compile time
var (
	_ portssvc.CurrencySvcFacade       = (*CurrencyService)(nil)
	_ portssvc.ExchangeRateSvcFacade   = (*ExchangeRateService)(nil)
	_ portssvc.BalanceSvcFacade        = (*BalanceService)(nil)
	_ portssvc.TransactionSvcFacade    = (*TransactionService)(nil)
	_ portssvc.TransferSvcFacade       = (*TransferService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*ReconciliationService)(nil)
)
