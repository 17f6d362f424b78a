package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
)

// SetExchangeRateRequest defines the payload for setting a new rate for a pair.
// A new versioned row is appended; the previous active row is superseded.
type SetExchangeRateRequest struct {
	FromCurrencyCode string           `json:"fromCurrencyCode" binding:"required,len=3,uppercase"`
	ToCurrencyCode   string           `json:"toCurrencyCode" binding:"required,len=3,uppercase"`
	Rate             decimal.Decimal  `json:"rate" binding:"required"`
	BuyRate          *decimal.Decimal `json:"buyRate,omitempty"`
	SellRate         *decimal.Decimal `json:"sellRate,omitempty"`
	EffectiveFrom    time.Time        `json:"effectiveFrom" binding:"required"`
	Notes            string           `json:"notes,omitempty"`
}

// ExchangeRateResponse defines the representation of a stored exchange rate.
type ExchangeRateResponse struct {
	ExchangeRateID   string           `json:"exchangeRateID"`
	FromCurrencyCode string           `json:"fromCurrencyCode"`
	ToCurrencyCode   string           `json:"toCurrencyCode"`
	Rate             decimal.Decimal  `json:"rate"`
	BuyRate          *decimal.Decimal `json:"buyRate,omitempty"`
	SellRate         *decimal.Decimal `json:"sellRate,omitempty"`
	EffectiveFrom    time.Time        `json:"effectiveFrom"`
	IsActive         bool             `json:"isActive"`
}

// ToExchangeRateResponse maps a domain exchange rate to its response form.
func ToExchangeRateResponse(r *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:   r.ExchangeRateID,
		FromCurrencyCode: r.FromCurrencyCode,
		ToCurrencyCode:   r.ToCurrencyCode,
		Rate:             r.Rate,
		BuyRate:          r.BuyRate,
		SellRate:         r.SellRate,
		EffectiveFrom:    r.EffectiveFrom,
		IsActive:         r.IsActive,
	}
}

// ToExchangeRateResponses maps a slice of domain exchange rates.
func ToExchangeRateResponses(rates []domain.ExchangeRate) []ExchangeRateResponse {
	out := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		out[i] = ToExchangeRateResponse(&rates[i])
	}
	return out
}

// RateResultResponse is the outcome of rate resolution for a pair.
type RateResultResponse struct {
	FromCurrencyCode string           `json:"fromCurrencyCode"`
	ToCurrencyCode   string           `json:"toCurrencyCode"`
	Rate             decimal.Decimal  `json:"rate"`
	BuyRate          *decimal.Decimal `json:"buyRate,omitempty"`
	SellRate         *decimal.Decimal `json:"sellRate,omitempty"`
	ViaIntermediary  bool             `json:"viaIntermediary"`
	PathNotes        string           `json:"pathNotes,omitempty"`
}

// ToRateResultResponse maps a domain rate result to its response form.
func ToRateResultResponse(r *domain.RateResult) RateResultResponse {
	return RateResultResponse{
		FromCurrencyCode: r.FromCurrencyCode,
		ToCurrencyCode:   r.ToCurrencyCode,
		Rate:             r.Rate,
		BuyRate:          r.BuyRate,
		SellRate:         r.SellRate,
		ViaIntermediary:  r.ViaIntermediary,
		PathNotes:        r.PathNotes,
	}
}
