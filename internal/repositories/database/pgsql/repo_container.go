package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
)

// NewRepositoryProvider wires up all pgx-backed repositories over a shared pool.
// maxRetries bounds the automatic retry of serialization conflicts in WithTx.
func NewRepositoryProvider(pool *pgxpool.Pool, maxRetries int) portsrepo.RepositoryProvider {
	base := BaseRepository{Pool: pool, MaxRetries: maxRetries}
	return portsrepo.RepositoryProvider{
		TxManager:          &base,
		BalanceRepo:        newPgxBalanceRepository(pool),
		TransactionRepo:    newPgxTransactionRepository(pool),
		ExchangeRateRepo:   newPgxExchangeRateRepository(pool),
		CurrencyRepo:       newPgxCurrencyRepository(pool),
		TransferRepo:       newPgxTransferRepository(pool),
		ReconciliationRepo: newPgxReconciliationRepository(pool),
	}
}
