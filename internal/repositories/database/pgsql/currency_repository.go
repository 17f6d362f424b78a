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

// PgxCurrencyRepository persists currency master data.
type PgxCurrencyRepository struct {
	BaseRepository
}

func newPgxCurrencyRepository(pool *pgxpool.Pool) *PgxCurrencyRepository {
	return &PgxCurrencyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

const currencyColumns = `currency_code, name, symbol, precision, is_base, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanCurrency(row pgx.Row) (*domain.Currency, error) {
	var c domain.Currency
	err := row.Scan(
		&c.CurrencyCode,
		&c.Name,
		&c.Symbol,
		&c.Precision,
		&c.IsBase,
		&c.IsActive,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan currency", err)
	}
	return &c, nil
}

// SaveCurrency inserts a new currency.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	query := `
		INSERT INTO currencies (` + currencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		currency.CurrencyCode,
		currency.Name,
		currency.Symbol,
		currency.Precision,
		currency.IsBase,
		currency.IsActive,
		currency.CreatedAt,
		currency.CreatedBy,
		currency.LastUpdatedAt,
		currency.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: currency %s", apperrors.ErrDuplicate, currency.CurrencyCode)
		}
		return apperrors.NewAppError(500, "failed to insert currency "+currency.CurrencyCode, err)
	}
	return nil
}

// FindCurrencyByCode returns a currency, or apperrors.ErrNotFound.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE currency_code = $1;`
	return scanCurrency(r.Pool.QueryRow(ctx, query, code))
}

// FindBaseCurrency returns the currency flagged as base, or apperrors.ErrNotFound.
func (r *PgxCurrencyRepository) FindBaseCurrency(ctx context.Context) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE is_base = TRUE LIMIT 1;`
	return scanCurrency(r.Pool.QueryRow(ctx, query))
}

// ListCurrencies returns currencies ordered by code.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context, includeInactive bool) ([]domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY currency_code;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query currencies", err)
	}
	defer rows.Close()

	currencies := []domain.Currency{}
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, err
		}
		currencies = append(currencies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating currency rows", err)
	}
	return currencies, nil
}

// UpdateCurrency persists the mutable fields of a currency. The code,
// precision and base flag are immutable once the currency is referenced.
func (r *PgxCurrencyRepository) UpdateCurrency(ctx context.Context, currency domain.Currency) error {
	query := `
		UPDATE currencies SET name = $1, symbol = $2, is_active = $3, last_updated_at = $4, last_updated_by = $5
		WHERE currency_code = $6;
	`
	tag, err := r.Pool.Exec(ctx, query,
		currency.Name,
		currency.Symbol,
		currency.IsActive,
		currency.LastUpdatedAt,
		currency.LastUpdatedBy,
		currency.CurrencyCode,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update currency "+currency.CurrencyCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
