package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
)

// ListTransactionsFilter narrows transaction listings.
type ListTransactionsFilter struct {
	Owner  *domain.Owner
	Kind   *domain.TransactionKind
	Status *domain.TransactionStatus
	Limit  int
	Offset int
}

// TransactionRepositoryFacade is the persistence contract for transactions.
// The In-Tx methods participate in a unit owned by the caller so a
// transaction record is always written atomically with its balance effects.
type TransactionRepositoryFacade interface {
	// NextTransactionNumberInTx returns the next human-readable transaction
	// number (TRX-YYYYMMDD-NNNNN) for the given date. Numbers come from a
	// per-day counter row updated inside the transaction, so two concurrent
	// units can never commit the same number.
	NextTransactionNumberInTx(ctx context.Context, tx pgx.Tx, at time.Time) (string, error)

	// CreateTransactionInTx inserts a transaction with its kind payload.
	CreateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// FindTransactionByID returns a transaction, or apperrors.ErrNotFound.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionForUpdateInTx locks the transaction row so a status
	// transition cannot race a concurrent transition on the same record.
	FindTransactionForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error)

	// UpdateTransactionInTx persists status, cancel reason, completion time
	// and audit fields of an existing transaction.
	UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// ListTransactions returns transactions matching the filter, newest first.
	ListTransactions(ctx context.Context, filter ListTransactionsFilter) ([]domain.Transaction, error)
}
