package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RatePrecision is the number of fractional digits exchange rates carry.
const RatePrecision = 6

// ExchangeRate stores the conversion rate for an ordered currency pair.
// Rows are append-only: setting a new rate for a pair deactivates the
// previous row and inserts a fresh one, so history is never rewritten.
type ExchangeRate struct {
	ExchangeRateID   string           `json:"exchangeRateID"` // Primary Key (UUID)
	FromCurrencyCode string           `json:"fromCurrencyCode"`
	ToCurrencyCode   string           `json:"toCurrencyCode"`
	Rate             decimal.Decimal  `json:"rate"`
	BuyRate          *decimal.Decimal `json:"buyRate,omitempty"`
	SellRate         *decimal.Decimal `json:"sellRate,omitempty"`
	EffectiveFrom    time.Time        `json:"effectiveFrom"`
	IsActive         bool             `json:"isActive"`
	AuditFields
}

// Inverted returns the rate for the opposite pair direction.
// Buy and sell legs swap roles and invert symmetrically: the price at which
// the desk buys one direction is the price at which it sells the other.
func (r ExchangeRate) Inverted() ExchangeRate {
	one := decimal.NewFromInt(1)
	inv := ExchangeRate{
		ExchangeRateID:   r.ExchangeRateID,
		FromCurrencyCode: r.ToCurrencyCode,
		ToCurrencyCode:   r.FromCurrencyCode,
		Rate:             one.DivRound(r.Rate, RatePrecision),
		EffectiveFrom:    r.EffectiveFrom,
		IsActive:         r.IsActive,
		AuditFields:      r.AuditFields,
	}
	if r.SellRate != nil {
		buy := one.DivRound(*r.SellRate, RatePrecision)
		inv.BuyRate = &buy
	}
	if r.BuyRate != nil {
		sell := one.DivRound(*r.BuyRate, RatePrecision)
		inv.SellRate = &sell
	}
	return inv
}

// RateResult is the outcome of rate resolution for a currency pair.
// When no direct or inverse quote exists the rate is composed through the
// configured base currency; ViaIntermediary marks that case and PathNotes
// records the two component rates for auditability.
type RateResult struct {
	FromCurrencyCode string           `json:"fromCurrencyCode"`
	ToCurrencyCode   string           `json:"toCurrencyCode"`
	Rate             decimal.Decimal  `json:"rate"`
	BuyRate          *decimal.Decimal `json:"buyRate,omitempty"`
	SellRate         *decimal.Decimal `json:"sellRate,omitempty"`
	ViaIntermediary  bool             `json:"viaIntermediary"`
	PathNotes        string           `json:"pathNotes,omitempty"`
}
