package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
)

// ChangeRef links a batch of balance changes to the record that caused it.
// At most one of the fields is set.
type ChangeRef struct {
	TransactionID *string
	TransferID    *string
}

// BalanceRepositoryFacade is the persistence contract of the balance store.
type BalanceRepositoryFacade interface {
	// FindBalance returns the balance row for a key, or apperrors.ErrNotFound.
	FindBalance(ctx context.Context, key domain.BalanceKey) (*domain.Balance, error)

	// ListBalancesByOwner returns all balance rows held by an owner.
	ListBalancesByOwner(ctx context.Context, owner domain.Owner) ([]domain.Balance, error)

	// ApplyChangesInTx locks the touched balance rows in deterministic key
	// order, validates every change against the locked state, applies them
	// and appends one history entry per change, all within the supplied
	// transaction. Rows are created lazily for credit changes. It returns
	// the balances as they stand after the batch.
	//
	// Guard violations surface apperrors.ErrInsufficientBalance or
	// apperrors.ErrInsufficientAvailable without partial effect: the caller
	// owns the transaction and must roll it back.
	ApplyChangesInTx(ctx context.Context, tx pgx.Tx, changes []domain.BalanceChange, ref ChangeRef, actor string, now time.Time) (map[string]domain.Balance, error)

	// ListHistory returns append-only history entries for a key, newest first.
	ListHistory(ctx context.Context, key domain.BalanceKey, limit, offset int) ([]domain.BalanceHistoryEntry, error)
}
