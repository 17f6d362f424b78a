package repositories

// RepositoryProvider bundles all repository implementations for injection
// into the service layer.
type RepositoryProvider struct {
	TxManager          TxManager
	BalanceRepo        BalanceRepositoryFacade
	TransactionRepo    TransactionRepositoryFacade
	ExchangeRateRepo   ExchangeRateRepositoryFacade
	CurrencyRepo       CurrencyRepositoryFacade
	TransferRepo       TransferRepositoryFacade
	ReconciliationRepo ReconciliationRepositoryFacade
}
