package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
)

// PgxTransactionRepository persists ledger transactions. The tagged variant
// is stored in one table: shared columns plus nullable kind-specific columns
// selected by the kind discriminator.
type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// NextTransactionNumberInTx allocates the next per-day sequence number from
// the counter table. The counter row update serializes concurrent units, so
// no two committed transactions can share a number.
func (r *PgxTransactionRepository) NextTransactionNumberInTx(ctx context.Context, tx pgx.Tx, at time.Time) (string, error) {
	day := at.UTC().Format("20060102")
	query := `
		INSERT INTO transaction_counters (day, last_seq) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_seq = transaction_counters.last_seq + 1
		RETURNING last_seq;
	`
	var seq int64
	if err := tx.QueryRow(ctx, query, day).Scan(&seq); err != nil {
		return "", apperrors.NewAppError(500, "failed to allocate transaction number for day "+day, err)
	}
	return fmt.Sprintf("TRX-%s-%05d", day, seq), nil
}

const transactionColumns = `transaction_id, transaction_number, kind, status, owner_kind, owner_id, currency_code, amount,
		category, payee, notes, requires_approval, cancel_reason, completed_at,
		from_currency_code, to_currency_code, from_amount, to_amount, rate_used, via_intermediary, commission_pct, commission_amount,
		transfer_from_kind, transfer_from_id, transfer_to_kind, transfer_to_id, transfer_type,
		created_at, created_by, last_updated_at, last_updated_by`

// CreateTransactionInTx inserts a transaction with its kind payload.
func (r *PgxTransactionRepository) CreateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31);
	`

	var (
		fromCcy, toCcy                    *string
		fromAmount, toAmount              *decimal.Decimal
		rateUsed, commPct, commAmount     *decimal.Decimal
		viaIntermediary                   *bool
		trFromKind, trFromID              *string
		trToKind, trToID, trType          *string
	)
	if ex := txn.Exchange; ex != nil {
		fromCcy, toCcy = &ex.FromCurrencyCode, &ex.ToCurrencyCode
		fromAmount, toAmount = &ex.FromAmount, &ex.ToAmount
		rateUsed, commPct, commAmount = &ex.RateUsed, &ex.CommissionPct, &ex.CommissionAmount
		viaIntermediary = &ex.ViaIntermediary
	}
	if tr := txn.Transfer; tr != nil {
		fk, fi := string(tr.FromOwner.Kind), tr.FromOwner.ID
		tk, ti := string(tr.ToOwner.Kind), tr.ToOwner.ID
		tt := string(tr.TransferType)
		trFromKind, trFromID, trToKind, trToID, trType = &fk, &fi, &tk, &ti, &tt
	}

	_, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.TransactionNumber,
		txn.Kind,
		txn.Status,
		txn.Owner.Kind,
		txn.Owner.ID,
		txn.CurrencyCode,
		txn.Amount,
		txn.Category,
		txn.Payee,
		txn.Notes,
		txn.RequiresApproval,
		txn.CancelReason,
		txn.CompletedAt,
		fromCcy,
		toCcy,
		fromAmount,
		toAmount,
		rateUsed,
		viaIntermediary,
		commPct,
		commAmount,
		trFromKind,
		trFromID,
		trToKind,
		trToID,
		trType,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionNumber)
		}
		return apperrors.NewAppError(500, "failed to insert transaction "+txn.TransactionID, err)
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t                             domain.Transaction
		fromCcy, toCcy                *string
		fromAmount, toAmount          *decimal.Decimal
		rateUsed, commPct, commAmount *decimal.Decimal
		viaIntermediary               *bool
		trFromKind, trFromID          *string
		trToKind, trToID, trType      *string
	)
	err := row.Scan(
		&t.TransactionID,
		&t.TransactionNumber,
		&t.Kind,
		&t.Status,
		&t.Owner.Kind,
		&t.Owner.ID,
		&t.CurrencyCode,
		&t.Amount,
		&t.Category,
		&t.Payee,
		&t.Notes,
		&t.RequiresApproval,
		&t.CancelReason,
		&t.CompletedAt,
		&fromCcy,
		&toCcy,
		&fromAmount,
		&toAmount,
		&rateUsed,
		&viaIntermediary,
		&commPct,
		&commAmount,
		&trFromKind,
		&trFromID,
		&trToKind,
		&trToID,
		&trType,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan transaction", err)
	}

	if fromCcy != nil && toCcy != nil && fromAmount != nil && toAmount != nil && rateUsed != nil {
		t.Exchange = &domain.ExchangeDetails{
			FromCurrencyCode: *fromCcy,
			ToCurrencyCode:   *toCcy,
			FromAmount:       *fromAmount,
			ToAmount:         *toAmount,
			RateUsed:         *rateUsed,
		}
		if viaIntermediary != nil {
			t.Exchange.ViaIntermediary = *viaIntermediary
		}
		if commPct != nil {
			t.Exchange.CommissionPct = *commPct
		}
		if commAmount != nil {
			t.Exchange.CommissionAmount = *commAmount
		}
	}
	if trFromKind != nil && trFromID != nil && trToKind != nil && trToID != nil && trType != nil {
		t.Transfer = &domain.TransferDetails{
			FromOwner:    domain.Owner{Kind: domain.OwnerKind(*trFromKind), ID: *trFromID},
			ToOwner:      domain.Owner{Kind: domain.OwnerKind(*trToKind), ID: *trToID},
			TransferType: domain.TransferType(*trType),
		}
	}
	return &t, nil
}

// FindTransactionByID returns a transaction, or apperrors.ErrNotFound.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	return scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
}

// FindTransactionForUpdateInTx locks the transaction row for a status transition.
func (r *PgxTransactionRepository) FindTransactionForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	return scanTransaction(tx.QueryRow(ctx, query, transactionID))
}

// UpdateTransactionInTx persists the mutable fields of a transaction.
func (r *PgxTransactionRepository) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, cancel_reason = $2, completed_at = $3, notes = $4, last_updated_at = $5, last_updated_by = $6
		WHERE transaction_id = $7;
	`
	tag, err := tx.Exec(ctx, query, txn.Status, txn.CancelReason, txn.CompletedAt, txn.Notes, txn.LastUpdatedAt, txn.LastUpdatedBy, txn.TransactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transaction "+txn.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListTransactions returns transactions matching the filter, newest first.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.ListTransactionsFilter) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.Owner != nil {
		query += fmt.Sprintf(" AND owner_kind = $%d AND owner_id = $%d", argPos, argPos+1)
		args = append(args, filter.Owner.Kind, filter.Owner.ID)
		argPos += 2
	}
	if filter.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argPos)
		args = append(args, *filter.Kind)
		argPos++
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
	query += fmt.Sprintf(" ORDER BY created_at DESC, transaction_number DESC LIMIT $%d OFFSET $%d;", argPos, argPos+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}
	return transactions, nil
}
