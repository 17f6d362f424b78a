package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
)

// PgxReconciliationRepository persists reconciliation records.
type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) *PgxReconciliationRepository {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

const reconciliationColumns = `record_id, owner_kind, owner_id, currency_code, counted_amount, system_amount, discrepancy, adjustment_transaction_id, notes, performed_by, created_at`

// CreateReconciliationInTx inserts a reconciliation record.
func (r *PgxReconciliationRepository) CreateReconciliationInTx(ctx context.Context, tx pgx.Tx, record domain.ReconciliationRecord) error {
	query := `
		INSERT INTO reconciliation_records (` + reconciliationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		record.RecordID,
		record.OwnerKind,
		record.OwnerID,
		record.CurrencyCode,
		record.CountedAmount,
		record.SystemAmount,
		record.Discrepancy,
		record.AdjustmentTransactionID,
		record.Notes,
		record.PerformedBy,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert reconciliation record "+record.RecordID, err)
	}
	return nil
}

// ListReconciliations returns records, newest first, optionally per owner.
func (r *PgxReconciliationRepository) ListReconciliations(ctx context.Context, owner *domain.Owner, limit, offset int) ([]domain.ReconciliationRecord, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM reconciliation_records WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if owner != nil {
		query += fmt.Sprintf(" AND owner_kind = $%d AND owner_id = $%d", argPos, argPos+1)
		args = append(args, owner.Kind, owner.ID)
		argPos += 2
	}
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, record_id DESC LIMIT $%d OFFSET $%d;", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query reconciliation records", err)
	}
	defer rows.Close()

	records := []domain.ReconciliationRecord{}
	for rows.Next() {
		var rec domain.ReconciliationRecord
		err := rows.Scan(
			&rec.RecordID,
			&rec.OwnerKind,
			&rec.OwnerID,
			&rec.CurrencyCode,
			&rec.CountedAmount,
			&rec.SystemAmount,
			&rec.Discrepancy,
			&rec.AdjustmentTransactionID,
			&rec.Notes,
			&rec.PerformedBy,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan reconciliation record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating reconciliation rows", err)
	}
	return records, nil
}
