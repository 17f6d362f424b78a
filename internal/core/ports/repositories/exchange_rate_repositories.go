package repositories

import (
	"context"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
)

// ExchangeRateRepositoryFacade is the persistence contract for versioned
// exchange rates. Rate rows are append-only: exactly one row per ordered
// pair is active at a time and superseded rows keep their history.
type ExchangeRateRepositoryFacade interface {
	// SaveExchangeRate deactivates the current active row for the pair (if
	// any) and inserts the new one as active, atomically.
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error

	// FindActiveRate returns the active rate for an ordered pair, or
	// apperrors.ErrNotFound.
	FindActiveRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error)

	// ListActiveRates returns all currently active rates.
	ListActiveRates(ctx context.Context) ([]domain.ExchangeRate, error)

	// ListRateHistory returns historical rows for a pair, newest first.
	ListRateHistory(ctx context.Context, fromCode, toCode string, limit, offset int) ([]domain.ExchangeRate, error)
}

// CurrencyRepositoryFacade is the persistence contract for currency master data.
type CurrencyRepositoryFacade interface {
	SaveCurrency(ctx context.Context, currency domain.Currency) error
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)
	FindBaseCurrency(ctx context.Context) (*domain.Currency, error)
	ListCurrencies(ctx context.Context, includeInactive bool) ([]domain.Currency, error)
	UpdateCurrency(ctx context.Context, currency domain.Currency) error
}
