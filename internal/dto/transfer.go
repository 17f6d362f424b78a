package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
)

// InitiateTransferRequest defines the payload for starting a transfer.
type InitiateTransferRequest struct {
	FromOwner    OwnerRef        `json:"fromOwner" binding:"required"`
	ToOwner      OwnerRef        `json:"toOwner" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Reason       string          `json:"reason,omitempty"`
}

// CancelTransferRequest carries the mandatory cancellation reason.
type CancelTransferRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListTransfersParams narrows transfer listings.
type ListTransfersParams struct {
	Owner  *OwnerRef
	Status string
	Limit  int
	Offset int
}

// TransferResponse defines the representation of a vault transfer.
type TransferResponse struct {
	TransferID    string          `json:"transferID"`
	TransferType  string          `json:"transferType"`
	Status        string          `json:"status"`
	FromOwner     OwnerRef        `json:"fromOwner"`
	ToOwner       OwnerRef        `json:"toOwner"`
	CurrencyCode  string          `json:"currencyCode"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason,omitempty"`
	ApprovedBy    *string         `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time      `json:"approvedAt,omitempty"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	CancelReason  string          `json:"cancelReason,omitempty"`
	TransactionID *string         `json:"transactionID,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// ToTransferResponse maps a domain vault transfer to its response form.
func ToTransferResponse(t *domain.VaultTransfer) TransferResponse {
	return TransferResponse{
		TransferID:    t.TransferID,
		TransferType:  string(t.TransferType),
		Status:        string(t.Status),
		FromOwner:     OwnerRef{Kind: string(t.FromOwner.Kind), ID: t.FromOwner.ID},
		ToOwner:       OwnerRef{Kind: string(t.ToOwner.Kind), ID: t.ToOwner.ID},
		CurrencyCode:  t.CurrencyCode,
		Amount:        t.Amount,
		Reason:        t.Reason,
		ApprovedBy:    t.ApprovedBy,
		ApprovedAt:    t.ApprovedAt,
		CompletedAt:   t.CompletedAt,
		CancelReason:  t.CancelReason,
		TransactionID: t.TransactionID,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
	}
}

// ToTransferResponses maps a slice of domain vault transfers.
func ToTransferResponses(transfers []domain.VaultTransfer) []TransferResponse {
	out := make([]TransferResponse, len(transfers))
	for i := range transfers {
		out[i] = ToTransferResponse(&transfers[i])
	}
	return out
}
