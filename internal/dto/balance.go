package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
)

// BalanceResponse defines the representation of one owner/currency position.
// Available is derived from total and reserved, never stored.
type BalanceResponse struct {
	Owner        OwnerRef        `json:"owner"`
	CurrencyCode string          `json:"currencyCode"`
	Total        decimal.Decimal `json:"total"`
	Reserved     decimal.Decimal `json:"reserved"`
	Available    decimal.Decimal `json:"available"`
}

// ToBalanceResponse maps a domain balance to its response form.
func ToBalanceResponse(b *domain.Balance) BalanceResponse {
	return BalanceResponse{
		Owner:        OwnerRef{Kind: string(b.OwnerKind), ID: b.OwnerID},
		CurrencyCode: b.CurrencyCode,
		Total:        b.Total,
		Reserved:     b.Reserved,
		Available:    b.Available(),
	}
}

// ToBalanceResponses maps a slice of domain balances.
func ToBalanceResponses(balances []domain.Balance) []BalanceResponse {
	out := make([]BalanceResponse, len(balances))
	for i := range balances {
		out[i] = ToBalanceResponse(&balances[i])
	}
	return out
}

// BalanceHistoryEntryResponse defines one append-only audit row.
type BalanceHistoryEntryResponse struct {
	EntryID       string          `json:"entryID"`
	Owner         OwnerRef        `json:"owner"`
	CurrencyCode  string          `json:"currencyCode"`
	ChangeKind    string          `json:"changeKind"`
	Delta         decimal.Decimal `json:"delta"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	TransactionID *string         `json:"transactionID,omitempty"`
	TransferID    *string         `json:"transferID,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Actor         string          `json:"actor"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToBalanceHistoryEntryResponses maps history entries to their response form.
func ToBalanceHistoryEntryResponses(entries []domain.BalanceHistoryEntry) []BalanceHistoryEntryResponse {
	out := make([]BalanceHistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = BalanceHistoryEntryResponse{
			EntryID:       e.EntryID,
			Owner:         OwnerRef{Kind: string(e.OwnerKind), ID: e.OwnerID},
			CurrencyCode:  e.CurrencyCode,
			ChangeKind:    string(e.ChangeKind),
			Delta:         e.Delta,
			BalanceBefore: e.BalanceBefore,
			BalanceAfter:  e.BalanceAfter,
			TransactionID: e.TransactionID,
			TransferID:    e.TransferID,
			Notes:         e.Notes,
			Actor:         e.Actor,
			CreatedAt:     e.CreatedAt,
		}
	}
	return out
}
