package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
	"github.com/fxdesk/fx_backoffice/internal/dto"
)

// ExchangeRateService provides business logic for exchange rates: versioned
// rate setting and rate resolution for arbitrary pairs.
type ExchangeRateService struct {
	BaseService
	rateRepo         portsrepo.ExchangeRateRepositoryFacade
	currencyService  *CurrencyService
	baseCurrencyCode string
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, currencyService *CurrencyService, baseCurrencyCode string) *ExchangeRateService {
	return &ExchangeRateService{
		rateRepo:         rateRepo,
		currencyService:  currencyService,
		baseCurrencyCode: strings.ToUpper(baseCurrencyCode),
	}
}

// SetExchangeRate appends a new active rate row for the pair, superseding
// the previous one.
func (s *ExchangeRateService) SetExchangeRate(ctx context.Context, req dto.SetExchangeRateRequest, actor string) (*domain.ExchangeRate, error) {
	// Input validation (basic format) is handled by DTO binding tags.
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if req.BuyRate != nil && req.BuyRate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: buy rate must be positive", apperrors.ErrValidation)
	}
	if req.SellRate != nil && req.SellRate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: sell rate must be positive", apperrors.ErrValidation)
	}
	if req.FromCurrencyCode == req.ToCurrencyCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	// Check if currencies exist
	if err := s.requireActiveCurrency(ctx, req.FromCurrencyCode, "from"); err != nil {
		return nil, err
	}
	if err := s.requireActiveCurrency(ctx, req.ToCurrencyCode, "to"); err != nil {
		return nil, err
	}

	now := time.Now()
	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: req.FromCurrencyCode,
		ToCurrencyCode:   req.ToCurrencyCode,
		Rate:             req.Rate,
		BuyRate:          req.BuyRate,
		SellRate:         req.SellRate,
		EffectiveFrom:    req.EffectiveFrom,
		IsActive:         true,
		AuditFields:      domain.NewAuditFields(actor, now),
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		s.LogError(ctx, err, "failed to save exchange rate", "from", req.FromCurrencyCode, "to", req.ToCurrencyCode)
		return nil, fmt.Errorf("failed to create exchange rate in service: %w", err)
	}

	s.LogInfo(ctx, "exchange rate set", "from", rate.FromCurrencyCode, "to", rate.ToCurrencyCode, "rate", rate.Rate.String())
	return &rate, nil
}

func (s *ExchangeRateService) requireActiveCurrency(ctx context.Context, code, role string) error {
	currency, err := s.currencyService.GetCurrencyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: '%s' currency code '%s' not found", apperrors.ErrValidation, role, code)
		}
		return fmt.Errorf("failed to validate '%s' currency '%s': %w", role, code, err)
	}
	if !currency.IsActive {
		return fmt.Errorf("%w: '%s' currency '%s' is inactive", apperrors.ErrValidation, role, code)
	}
	return nil
}

// ResolveRate finds a conversion rate for a pair. Resolution order: direct
// quote, inverted opposite quote, then a one-hop composition through the
// base currency. Each leg of the composition may itself be inverted.
func (s *ExchangeRateService) ResolveRate(ctx context.Context, fromCode, toCode string) (*domain.RateResult, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if len(fromCode) != 3 || len(toCode) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	if fromCode == toCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	direct, err := s.lookupPair(ctx, fromCode, toCode)
	if err == nil {
		return &domain.RateResult{
			FromCurrencyCode: fromCode,
			ToCurrencyCode:   toCode,
			Rate:             direct.Rate,
			BuyRate:          direct.BuyRate,
			SellRate:         direct.SellRate,
		}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if fromCode == s.baseCurrencyCode || toCode == s.baseCurrencyCode {
		return nil, fmt.Errorf("%w: no rate for %s/%s", apperrors.ErrRateNotFound, fromCode, toCode)
	}

	firstLeg, err := s.lookupPair(ctx, fromCode, s.baseCurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no rate for %s/%s and no path via %s", apperrors.ErrRateNotFound, fromCode, toCode, s.baseCurrencyCode)
		}
		return nil, err
	}
	secondLeg, err := s.lookupPair(ctx, s.baseCurrencyCode, toCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no rate for %s/%s and no path via %s", apperrors.ErrRateNotFound, fromCode, toCode, s.baseCurrencyCode)
		}
		return nil, err
	}

	result := &domain.RateResult{
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		Rate:             firstLeg.Rate.Mul(secondLeg.Rate).Round(domain.RatePrecision),
		ViaIntermediary:  true,
		PathNotes: fmt.Sprintf("%s/%s %s x %s/%s %s",
			fromCode, s.baseCurrencyCode, firstLeg.Rate.String(),
			s.baseCurrencyCode, toCode, secondLeg.Rate.String()),
	}
	if firstLeg.BuyRate != nil && secondLeg.BuyRate != nil {
		buy := firstLeg.BuyRate.Mul(*secondLeg.BuyRate).Round(domain.RatePrecision)
		result.BuyRate = &buy
	}
	if firstLeg.SellRate != nil && secondLeg.SellRate != nil {
		sell := firstLeg.SellRate.Mul(*secondLeg.SellRate).Round(domain.RatePrecision)
		result.SellRate = &sell
	}
	return result, nil
}

// lookupPair returns the active rate for a pair, trying the stored direction
// first and the inverted opposite direction second.
func (s *ExchangeRateService) lookupPair(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindActiveRate(ctx, fromCode, toCode)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up rate %s/%s: %w", fromCode, toCode, err)
	}

	opposite, err := s.rateRepo.FindActiveRate(ctx, toCode, fromCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, fromCode, toCode)
		}
		return nil, fmt.Errorf("failed to look up rate %s/%s: %w", toCode, fromCode, err)
	}
	inverted := opposite.Inverted()
	return &inverted, nil
}

// ListActiveRates returns all currently active rates.
func (s *ExchangeRateService) ListActiveRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rates, err := s.rateRepo.ListActiveRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rates in service: %w", err)
	}
	if rates == nil {
		return []domain.ExchangeRate{}, nil
	}
	return rates, nil
}

// ListRateHistory returns the versioned rows for a pair, newest first.
func (s *ExchangeRateService) ListRateHistory(ctx context.Context, fromCode, toCode string, limit, offset int) ([]domain.ExchangeRate, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	rates, err := s.rateRepo.ListRateHistory(ctx, fromCode, toCode, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate history in service: %w", err)
	}
	if rates == nil {
		return []domain.ExchangeRate{}, nil
	}
	return rates, nil
}
