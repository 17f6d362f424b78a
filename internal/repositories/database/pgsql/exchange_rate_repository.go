package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
)

// PgxExchangeRateRepository persists versioned exchange rates.
type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(pool *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const exchangeRateColumns = `exchange_rate_id, from_currency_code, to_currency_code, rate, buy_rate, sell_rate, effective_from, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanExchangeRate(row pgx.Row) (*domain.ExchangeRate, error) {
	var r domain.ExchangeRate
	err := row.Scan(
		&r.ExchangeRateID,
		&r.FromCurrencyCode,
		&r.ToCurrencyCode,
		&r.Rate,
		&r.BuyRate,
		&r.SellRate,
		&r.EffectiveFrom,
		&r.IsActive,
		&r.CreatedAt,
		&r.CreatedBy,
		&r.LastUpdatedAt,
		&r.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan exchange rate", err)
	}
	return &r, nil
}

// SaveExchangeRate deactivates the current active row for the pair and
// inserts the new one as active, in one transaction. Superseded rows are
// kept; rate history is never rewritten.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		deactivate := `
			UPDATE exchange_rates SET is_active = FALSE, last_updated_at = $1, last_updated_by = $2
			WHERE from_currency_code = $3 AND to_currency_code = $4 AND is_active = TRUE;
		`
		if _, err := tx.Exec(ctx, deactivate, rate.LastUpdatedAt, rate.LastUpdatedBy, rate.FromCurrencyCode, rate.ToCurrencyCode); err != nil {
			return apperrors.NewAppError(500, "failed to supersede active rate for "+rate.FromCurrencyCode+"/"+rate.ToCurrencyCode, err)
		}

		insert := `
			INSERT INTO exchange_rates (` + exchangeRateColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
		`
		_, err := tx.Exec(ctx, insert,
			rate.ExchangeRateID,
			rate.FromCurrencyCode,
			rate.ToCurrencyCode,
			rate.Rate,
			rate.BuyRate,
			rate.SellRate,
			rate.EffectiveFrom,
			rate.IsActive,
			rate.CreatedAt,
			rate.CreatedBy,
			rate.LastUpdatedAt,
			rate.LastUpdatedBy,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert exchange rate "+rate.ExchangeRateID, err)
		}
		return nil
	})
}

// FindActiveRate returns the active rate for an ordered pair.
func (r *PgxExchangeRateRepository) FindActiveRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND is_active = TRUE
		ORDER BY effective_from DESC
		LIMIT 1;
	`
	return scanExchangeRate(r.Pool.QueryRow(ctx, query, fromCode, toCode))
}

// ListActiveRates returns all currently active rates.
func (r *PgxExchangeRateRepository) ListActiveRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	query := `SELECT ` + exchangeRateColumns + ` FROM exchange_rates WHERE is_active = TRUE ORDER BY from_currency_code, to_currency_code;`
	return r.queryRates(ctx, query)
}

// ListRateHistory returns historical rows for a pair, newest first.
func (r *PgxExchangeRateRepository) ListRateHistory(ctx context.Context, fromCode, toCode string, limit, offset int) ([]domain.ExchangeRate, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2
		ORDER BY effective_from DESC
		LIMIT $3 OFFSET $4;
	`
	return r.queryRates(ctx, query, fromCode, toCode, limit, offset)
}

func (r *PgxExchangeRateRepository) queryRates(ctx context.Context, query string, args ...interface{}) ([]domain.ExchangeRate, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query exchange rates", err)
	}
	defer rows.Close()

	rates := []domain.ExchangeRate{}
	for rows.Next() {
		rate, err := scanExchangeRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, *rate)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating exchange rate rows", err)
	}
	return rates, nil
}
