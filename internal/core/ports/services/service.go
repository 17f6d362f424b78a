package services

// ServiceContainer bundles all service facades for injection into the
// transport layer.
type ServiceContainer struct {
	Currency       CurrencySvcFacade
	ExchangeRate   ExchangeRateSvcFacade
	Balance        BalanceSvcFacade
	Transaction    TransactionSvcFacade
	Transfer       TransferSvcFacade
	Reconciliation ReconciliationSvcFacade
}
