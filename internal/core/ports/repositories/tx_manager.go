package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxManager runs a function inside a single database transaction. The unit
// either commits in full or rolls back; nothing is persisted on error.
//
// WithTx retries the whole function a small bounded number of times with
// backoff when the store reports a serialization failure or lock-wait
// timeout, then surfaces apperrors.ErrConcurrencyConflict. The function must
// therefore be safe to re-execute from the top.
type TxManager interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
