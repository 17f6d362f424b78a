package domain

// Currency represents a supported currency.
// Precision is the number of fractional digits monetary amounts carry.
// Exactly one currency is flagged as the base currency; it is the
// intermediary for cross-rate composition when no direct quote exists.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Name         string `json:"name"`         // e.g., "US Dollar"
	Symbol       string `json:"symbol"`       // e.g., "$"
	Precision    int32  `json:"precision"`    // fractional digits, default 2
	IsBase       bool   `json:"isBase"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}
