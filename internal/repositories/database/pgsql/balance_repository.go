package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
)

// PgxBalanceRepository persists balances and their append-only history.
type PgxBalanceRepository struct {
	BaseRepository
}

func newPgxBalanceRepository(pool *pgxpool.Pool) *PgxBalanceRepository {
	return &PgxBalanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BalanceRepositoryFacade = (*PgxBalanceRepository)(nil)

const balanceColumns = `owner_kind, owner_id, currency_code, total, reserved, created_at, created_by, last_updated_at, last_updated_by`

func scanBalance(row pgx.Row) (*domain.Balance, error) {
	var b domain.Balance
	err := row.Scan(
		&b.OwnerKind,
		&b.OwnerID,
		&b.CurrencyCode,
		&b.Total,
		&b.Reserved,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan balance", err)
	}
	return &b, nil
}

// FindBalance returns the balance row for a key, or apperrors.ErrNotFound.
func (r *PgxBalanceRepository) FindBalance(ctx context.Context, key domain.BalanceKey) (*domain.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE owner_kind = $1 AND owner_id = $2 AND currency_code = $3;`
	return scanBalance(r.Pool.QueryRow(ctx, query, key.Owner.Kind, key.Owner.ID, key.CurrencyCode))
}

// ListBalancesByOwner returns all balance rows held by an owner.
func (r *PgxBalanceRepository) ListBalancesByOwner(ctx context.Context, owner domain.Owner) ([]domain.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE owner_kind = $1 AND owner_id = $2 ORDER BY currency_code;`
	rows, err := r.Pool.Query(ctx, query, owner.Kind, owner.ID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query balances for owner "+owner.String(), err)
	}
	defer rows.Close()

	balances := []domain.Balance{}
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating balance rows", err)
	}
	return balances, nil
}

// ApplyChangesInTx locks the touched balance rows in deterministic key order,
// validates each change against the locked state, applies the batch and
// appends one history entry per change. The caller owns the transaction.
func (r *PgxBalanceRepository) ApplyChangesInTx(ctx context.Context, tx pgx.Tx, changes []domain.BalanceChange, ref portsrepo.ChangeRef, actor string, now time.Time) (map[string]domain.Balance, error) {
	if len(changes) == 0 {
		return map[string]domain.Balance{}, nil
	}
	for _, c := range changes {
		if c.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: balance change amount must be positive, got %s", apperrors.ErrValidation, c.Amount)
		}
	}

	locked, err := r.lockBalances(ctx, tx, changeKeys(changes), actor, now)
	if err != nil {
		return nil, err
	}

	// Apply changes in the given order against the locked snapshot,
	// queueing one history row per change.
	batch := &pgx.Batch{}
	historyQuery := `
		INSERT INTO balance_history (entry_id, owner_kind, owner_id, currency_code, change_kind, delta, balance_before, balance_after, transaction_id, transfer_id, notes, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	for _, change := range changes {
		key := change.Key().String()
		bal, ok := locked[key]
		if !ok {
			return nil, apperrors.NewAppError(500, "internal error: balance "+key+" not locked", nil)
		}

		updated, err := applyChange(bal, change)
		if err != nil {
			return nil, err
		}
		updated.LastUpdatedAt = now
		updated.LastUpdatedBy = actor
		locked[key] = updated

		batch.Queue(historyQuery,
			uuid.NewString(),
			change.Owner.Kind,
			change.Owner.ID,
			change.CurrencyCode,
			change.Kind,
			change.TotalDelta(),
			bal.Total,
			updated.Total,
			ref.TransactionID,
			ref.TransferID,
			change.Notes,
			actor,
			now,
		)
	}

	updateQuery := `
		UPDATE balances SET total = $1, reserved = $2, last_updated_at = $3, last_updated_by = $4
		WHERE owner_kind = $5 AND owner_id = $6 AND currency_code = $7;
	`
	for _, bal := range locked {
		batch.Queue(updateQuery, bal.Total, bal.Reserved, bal.LastUpdatedAt, bal.LastUpdatedBy, bal.OwnerKind, bal.OwnerID, bal.CurrencyCode)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to apply balance change batch", err)
	}
	return locked, nil
}

// lockBalances creates any missing rows with zero amounts and takes row
// locks, both in ascending key order so concurrent composite operations
// touching the same pair of rows cannot deadlock.
func (r *PgxBalanceRepository) lockBalances(ctx context.Context, tx pgx.Tx, keys []domain.BalanceKey, actor string, now time.Time) (map[string]domain.Balance, error) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	insertQuery := `
		INSERT INTO balances (owner_kind, owner_id, currency_code, total, reserved, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, 0, 0, $4, $5, $4, $5)
		ON CONFLICT (owner_kind, owner_id, currency_code) DO NOTHING;
	`
	for _, key := range keys {
		if _, err := tx.Exec(ctx, insertQuery, key.Owner.Kind, key.Owner.ID, key.CurrencyCode, now, actor); err != nil {
			return nil, apperrors.NewAppError(500, "failed to ensure balance row "+key.String(), err)
		}
	}

	lockQuery := `SELECT ` + balanceColumns + ` FROM balances WHERE owner_kind = $1 AND owner_id = $2 AND currency_code = $3 FOR UPDATE;`
	locked := make(map[string]domain.Balance, len(keys))
	for _, key := range keys {
		b, err := scanBalance(tx.QueryRow(ctx, lockQuery, key.Owner.Kind, key.Owner.ID, key.CurrencyCode))
		if err != nil {
			return nil, fmt.Errorf("failed to lock balance %s: %w", key, err)
		}
		locked[key.String()] = *b
	}
	return locked, nil
}

// applyChange enforces the balance store guards against the locked row and
// returns the mutated copy. total >= 0 and 0 <= reserved <= total hold after
// every change or the change is rejected.
func applyChange(bal domain.Balance, change domain.BalanceChange) (domain.Balance, error) {
	amount := change.Amount
	switch change.Kind {
	case domain.ChangeCredit:
		bal.Total = bal.Total.Add(amount)
	case domain.ChangeDebit:
		if amount.GreaterThan(bal.Available()) {
			return bal, fmt.Errorf("%w: owner %s currency %s available %s, requested %s",
				apperrors.ErrInsufficientBalance, bal.Owner(), bal.CurrencyCode, bal.Available(), amount)
		}
		bal.Total = bal.Total.Sub(amount)
	case domain.ChangeReserve:
		if amount.GreaterThan(bal.Available()) {
			return bal, fmt.Errorf("%w: owner %s currency %s available %s, requested %s",
				apperrors.ErrInsufficientAvailable, bal.Owner(), bal.CurrencyCode, bal.Available(), amount)
		}
		bal.Reserved = bal.Reserved.Add(amount)
	case domain.ChangeRelease:
		if amount.GreaterThan(bal.Reserved) {
			return bal, fmt.Errorf("%w: owner %s currency %s reserved %s, requested release %s",
				apperrors.ErrValidation, bal.Owner(), bal.CurrencyCode, bal.Reserved, amount)
		}
		bal.Reserved = bal.Reserved.Sub(amount)
	case domain.ChangeDebitReserved:
		if amount.GreaterThan(bal.Reserved) {
			return bal, fmt.Errorf("%w: owner %s currency %s reserved %s, requested %s",
				apperrors.ErrInsufficientBalance, bal.Owner(), bal.CurrencyCode, bal.Reserved, amount)
		}
		bal.Reserved = bal.Reserved.Sub(amount)
		bal.Total = bal.Total.Sub(amount)
	default:
		return bal, fmt.Errorf("%w: unknown balance change kind %q", apperrors.ErrValidation, change.Kind)
	}
	return bal, nil
}

func changeKeys(changes []domain.BalanceChange) []domain.BalanceKey {
	seen := make(map[string]struct{}, len(changes))
	keys := make([]domain.BalanceKey, 0, len(changes))
	for _, c := range changes {
		k := c.Key()
		if _, ok := seen[k.String()]; !ok {
			seen[k.String()] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

// ListHistory returns history entries for a key, newest first.
func (r *PgxBalanceRepository) ListHistory(ctx context.Context, key domain.BalanceKey, limit, offset int) ([]domain.BalanceHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT entry_id, owner_kind, owner_id, currency_code, change_kind, delta, balance_before, balance_after, transaction_id, transfer_id, notes, actor, created_at
		FROM balance_history
		WHERE owner_kind = $1 AND owner_id = $2 AND currency_code = $3
		ORDER BY created_at DESC, entry_id DESC
		LIMIT $4 OFFSET $5;
	`
	rows, err := r.Pool.Query(ctx, query, key.Owner.Kind, key.Owner.ID, key.CurrencyCode, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query balance history for "+key.String(), err)
	}
	defer rows.Close()

	entries := []domain.BalanceHistoryEntry{}
	for rows.Next() {
		var e domain.BalanceHistoryEntry
		err := rows.Scan(
			&e.EntryID,
			&e.OwnerKind,
			&e.OwnerID,
			&e.CurrencyCode,
			&e.ChangeKind,
			&e.Delta,
			&e.BalanceBefore,
			&e.BalanceAfter,
			&e.TransactionID,
			&e.TransferID,
			&e.Notes,
			&e.Actor,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan balance history entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating balance history rows", err)
	}
	return entries, nil
}
