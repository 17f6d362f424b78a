package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
	"github.com/fxdesk/fx_backoffice/internal/dto"
)

const defaultCurrencyPrecision = 2

// CurrencyService provides business logic for currency master data.
type CurrencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade) *CurrencyService {
	return &CurrencyService{currencyRepo: currencyRepo}
}

// CreateCurrency registers a new supported currency.
func (s *CurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, actor string) (*domain.Currency, error) {
	// Basic format validation (required, len=3, uppercase) is handled by DTO binding.
	precision := req.Precision
	if precision == 0 {
		precision = defaultCurrencyPrecision
	}

	if req.IsBase {
		existing, err := s.currencyRepo.FindBaseCurrency(ctx)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check base currency: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: base currency already set to '%s'", apperrors.ErrValidation, existing.CurrencyCode)
		}
	}

	now := time.Now()
	currency := domain.Currency{
		CurrencyCode: req.CurrencyCode,
		Name:         req.Name,
		Symbol:       req.Symbol,
		Precision:    precision,
		IsBase:       req.IsBase,
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(actor, now),
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		s.LogError(ctx, err, "failed to create currency", "currency_code", req.CurrencyCode)
		return nil, fmt.Errorf("failed to create currency in service: %w", err)
	}

	s.LogInfo(ctx, "currency created", "currency_code", currency.CurrencyCode, "is_base", currency.IsBase)
	return &currency, nil
}

// GetCurrencyByCode returns one currency, or apperrors.ErrNotFound.
func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency by code in service: %w", err)
	}
	return currency, nil
}

// ListCurrencies returns supported currencies, optionally including inactive ones.
func (s *CurrencyService) ListCurrencies(ctx context.Context, includeInactive bool) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies in service: %w", err)
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// ActivateCurrency re-enables a deactivated currency.
func (s *CurrencyService) ActivateCurrency(ctx context.Context, code string, actor string) (*domain.Currency, error) {
	return s.setActive(ctx, code, true, actor)
}

// DeactivateCurrency disables a currency for new operations. The base
// currency cannot be deactivated while it anchors rate composition.
func (s *CurrencyService) DeactivateCurrency(ctx context.Context, code string, actor string) (*domain.Currency, error) {
	return s.setActive(ctx, code, false, actor)
}

func (s *CurrencyService) setActive(ctx context.Context, code string, active bool, actor string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load currency '%s': %w", code, err)
	}
	if !active && currency.IsBase {
		return nil, fmt.Errorf("%w: base currency '%s' cannot be deactivated", apperrors.ErrValidation, code)
	}
	if currency.IsActive == active {
		return currency, nil
	}

	currency.IsActive = active
	currency.LastUpdatedAt = time.Now()
	currency.LastUpdatedBy = actor

	if err := s.currencyRepo.UpdateCurrency(ctx, *currency); err != nil {
		s.LogError(ctx, err, "failed to update currency", "currency_code", code)
		return nil, fmt.Errorf("failed to update currency '%s': %w", code, err)
	}
	return currency, nil
}
