package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
)

// ReconcileRequest defines the payload for reconciling a counted balance
// against the stored one.
type ReconcileRequest struct {
	Owner         OwnerRef        `json:"owner" binding:"required"`
	CurrencyCode  string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	CountedAmount decimal.Decimal `json:"countedAmount" binding:"required"`
	Notes         string          `json:"notes,omitempty"`
}

// ReconciliationResponse defines the representation of a reconciliation record.
type ReconciliationResponse struct {
	RecordID                string          `json:"recordID"`
	Owner                   OwnerRef        `json:"owner"`
	CurrencyCode            string          `json:"currencyCode"`
	CountedAmount           decimal.Decimal `json:"countedAmount"`
	SystemAmount            decimal.Decimal `json:"systemAmount"`
	Discrepancy             decimal.Decimal `json:"discrepancy"`
	AdjustmentTransactionID *string         `json:"adjustmentTransactionID,omitempty"`
	Notes                   string          `json:"notes,omitempty"`
	PerformedBy             string          `json:"performedBy"`
	CreatedAt               time.Time       `json:"createdAt"`
}

// ToReconciliationResponse maps a domain record to its response form.
func ToReconciliationResponse(r *domain.ReconciliationRecord) ReconciliationResponse {
	return ReconciliationResponse{
		RecordID:                r.RecordID,
		Owner:                   OwnerRef{Kind: string(r.OwnerKind), ID: r.OwnerID},
		CurrencyCode:            r.CurrencyCode,
		CountedAmount:           r.CountedAmount,
		SystemAmount:            r.SystemAmount,
		Discrepancy:             r.Discrepancy,
		AdjustmentTransactionID: r.AdjustmentTransactionID,
		Notes:                   r.Notes,
		PerformedBy:             r.PerformedBy,
		CreatedAt:               r.CreatedAt,
	}
}

// ToReconciliationResponses maps a slice of domain records.
func ToReconciliationResponses(records []domain.ReconciliationRecord) []ReconciliationResponse {
	out := make([]ReconciliationResponse, len(records))
	for i := range records {
		out[i] = ToReconciliationResponse(&records[i])
	}
	return out
}
