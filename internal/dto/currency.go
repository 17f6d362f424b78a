package dto

import (
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
)

// CreateCurrencyRequest defines the payload for creating a new currency.
type CreateCurrencyRequest struct {
	CurrencyCode string `json:"currencyCode" binding:"required,len=3,uppercase"`
	Name         string `json:"name" binding:"required"`
	Symbol       string `json:"symbol" binding:"required"`
	Precision    int32  `json:"precision" binding:"omitempty,gte=0,lte=8"`
	IsBase       bool   `json:"isBase"`
}

// CurrencyResponse defines the representation of a currency returned by the API.
type CurrencyResponse struct {
	CurrencyCode string `json:"currencyCode"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Precision    int32  `json:"precision"`
	IsBase       bool   `json:"isBase"`
	IsActive     bool   `json:"isActive"`
}

// ToCurrencyResponse maps a domain currency to its response representation.
func ToCurrencyResponse(c *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode: c.CurrencyCode,
		Name:         c.Name,
		Symbol:       c.Symbol,
		Precision:    c.Precision,
		IsBase:       c.IsBase,
		IsActive:     c.IsActive,
	}
}

// ToCurrencyResponses maps a slice of domain currencies.
func ToCurrencyResponses(currencies []domain.Currency) []CurrencyResponse {
	out := make([]CurrencyResponse, len(currencies))
	for i := range currencies {
		out[i] = ToCurrencyResponse(&currencies[i])
	}
	return out
}
