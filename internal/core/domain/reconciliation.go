package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationRecord captures one comparison of a physically counted
// balance against the stored balance. A non-zero discrepancy is an expected
// outcome, not an error; when present, an adjustment transaction is created
// in the same atomic unit and linked here.
type ReconciliationRecord struct {
	RecordID                string          `json:"recordID"` // Primary Key (UUID)
	OwnerKind               OwnerKind       `json:"ownerKind"`
	OwnerID                 string          `json:"ownerID"`
	CurrencyCode            string          `json:"currencyCode"`
	CountedAmount           decimal.Decimal `json:"countedAmount"`
	SystemAmount            decimal.Decimal `json:"systemAmount"` // stored total at reconciliation time
	Discrepancy             decimal.Decimal `json:"discrepancy"`  // counted - system
	AdjustmentTransactionID *string         `json:"adjustmentTransactionID,omitempty"`
	Notes                   string          `json:"notes,omitempty"`
	PerformedBy             string          `json:"performedBy"`
	CreatedAt               time.Time       `json:"createdAt"`
}
