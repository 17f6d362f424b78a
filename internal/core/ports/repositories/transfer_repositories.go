package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
)

// ListTransfersFilter narrows transfer listings.
type ListTransfersFilter struct {
	Owner  *domain.Owner // matches either endpoint
	Status *domain.TransferStatus
	Limit  int
	Offset int
}

// TransferRepositoryFacade is the persistence contract for vault transfers.
type TransferRepositoryFacade interface {
	CreateTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.VaultTransfer) error

	FindTransferByID(ctx context.Context, transferID string) (*domain.VaultTransfer, error)

	// FindTransferForUpdateInTx locks the transfer row so two concurrent
	// pipeline transitions on the same transfer serialize.
	FindTransferForUpdateInTx(ctx context.Context, tx pgx.Tx, transferID string) (*domain.VaultTransfer, error)

	UpdateTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.VaultTransfer) error

	ListTransfers(ctx context.Context, filter ListTransfersFilter) ([]domain.VaultTransfer, error)
}

// ReconciliationRepositoryFacade is the persistence contract for
// reconciliation records.
type ReconciliationRepositoryFacade interface {
	CreateReconciliationInTx(ctx context.Context, tx pgx.Tx, record domain.ReconciliationRecord) error
	ListReconciliations(ctx context.Context, owner *domain.Owner, limit, offset int) ([]domain.ReconciliationRecord, error)
}
