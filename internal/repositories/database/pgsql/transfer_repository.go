package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
)

// PgxTransferRepository persists vault transfers and their approval state.
type PgxTransferRepository struct {
	BaseRepository
}

func newPgxTransferRepository(pool *pgxpool.Pool) *PgxTransferRepository {
	return &PgxTransferRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransferRepositoryFacade = (*PgxTransferRepository)(nil)

const transferColumns = `transfer_id, transfer_type, status, from_owner_kind, from_owner_id, to_owner_kind, to_owner_id,
		currency_code, amount, reason, approved_by, approved_at, completed_at, cancel_reason, transaction_id,
		created_at, created_by, last_updated_at, last_updated_by`

func scanTransfer(row pgx.Row) (*domain.VaultTransfer, error) {
	var t domain.VaultTransfer
	err := row.Scan(
		&t.TransferID,
		&t.TransferType,
		&t.Status,
		&t.FromOwner.Kind,
		&t.FromOwner.ID,
		&t.ToOwner.Kind,
		&t.ToOwner.ID,
		&t.CurrencyCode,
		&t.Amount,
		&t.Reason,
		&t.ApprovedBy,
		&t.ApprovedAt,
		&t.CompletedAt,
		&t.CancelReason,
		&t.TransactionID,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan transfer", err)
	}
	return &t, nil
}

// CreateTransferInTx inserts a vault transfer.
func (r *PgxTransferRepository) CreateTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.VaultTransfer) error {
	query := `
		INSERT INTO vault_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := tx.Exec(ctx, query,
		transfer.TransferID,
		transfer.TransferType,
		transfer.Status,
		transfer.FromOwner.Kind,
		transfer.FromOwner.ID,
		transfer.ToOwner.Kind,
		transfer.ToOwner.ID,
		transfer.CurrencyCode,
		transfer.Amount,
		transfer.Reason,
		transfer.ApprovedBy,
		transfer.ApprovedAt,
		transfer.CompletedAt,
		transfer.CancelReason,
		transfer.TransactionID,
		transfer.CreatedAt,
		transfer.CreatedBy,
		transfer.LastUpdatedAt,
		transfer.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert transfer "+transfer.TransferID, err)
	}
	return nil
}

// FindTransferByID returns a transfer, or apperrors.ErrNotFound.
func (r *PgxTransferRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.VaultTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM vault_transfers WHERE transfer_id = $1;`
	return scanTransfer(r.Pool.QueryRow(ctx, query, transferID))
}

// FindTransferForUpdateInTx locks the transfer row for a pipeline transition.
func (r *PgxTransferRepository) FindTransferForUpdateInTx(ctx context.Context, tx pgx.Tx, transferID string) (*domain.VaultTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM vault_transfers WHERE transfer_id = $1 FOR UPDATE;`
	return scanTransfer(tx.QueryRow(ctx, query, transferID))
}

// UpdateTransferInTx persists the mutable fields of a transfer.
func (r *PgxTransferRepository) UpdateTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.VaultTransfer) error {
	query := `
		UPDATE vault_transfers
		SET status = $1, approved_by = $2, approved_at = $3, completed_at = $4, cancel_reason = $5, transaction_id = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE transfer_id = $9;
	`
	tag, err := tx.Exec(ctx, query,
		transfer.Status,
		transfer.ApprovedBy,
		transfer.ApprovedAt,
		transfer.CompletedAt,
		transfer.CancelReason,
		transfer.TransactionID,
		transfer.LastUpdatedAt,
		transfer.LastUpdatedBy,
		transfer.TransferID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transfer "+transfer.TransferID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListTransfers returns transfers matching the filter, newest first.
func (r *PgxTransferRepository) ListTransfers(ctx context.Context, filter portsrepo.ListTransfersFilter) ([]domain.VaultTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM vault_transfers WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.Owner != nil {
		query += fmt.Sprintf(" AND ((from_owner_kind = $%d AND from_owner_id = $%d) OR (to_owner_kind = $%d AND to_owner_id = $%d))", argPos, argPos+1, argPos, argPos+1)
		args = append(args, filter.Owner.Kind, filter.Owner.ID)
		argPos += 2
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filter.Status)
		argPos++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, transfer_id DESC LIMIT $%d OFFSET $%d;", argPos, argPos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transfers", err)
	}
	defer rows.Close()

	transfers := []domain.VaultTransfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transfer rows", err)
	}
	return transfers, nil
}
