package services

import (
	"context"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	"github.com/fxdesk/fx_backoffice/internal/dto"
)

// CurrencySvcFacade defines the currency master-data operations.
type CurrencySvcFacade interface {
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, actor string) (*domain.Currency, error)
	GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context, includeInactive bool) ([]domain.Currency, error)
	ActivateCurrency(ctx context.Context, code string, actor string) (*domain.Currency, error)
	DeactivateCurrency(ctx context.Context, code string, actor string) (*domain.Currency, error)
}

// ExchangeRateSvcFacade defines rate setting and resolution.
type ExchangeRateSvcFacade interface {
	// SetExchangeRate appends a new versioned rate row for the pair.
	SetExchangeRate(ctx context.Context, req dto.SetExchangeRateRequest, actor string) (*domain.ExchangeRate, error)

	// ResolveRate finds a conversion rate: direct, inverted, or composed
	// through the configured base currency (one hop). Fails with
	// apperrors.ErrRateNotFound when no path exists.
	ResolveRate(ctx context.Context, fromCode, toCode string) (*domain.RateResult, error)

	ListActiveRates(ctx context.Context) ([]domain.ExchangeRate, error)
	ListRateHistory(ctx context.Context, fromCode, toCode string, limit, offset int) ([]domain.ExchangeRate, error)
}
