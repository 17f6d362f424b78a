package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
)

// OwnerRef identifies a balance holder in API payloads.
type OwnerRef struct {
	Kind string `json:"kind" binding:"required,oneof=BRANCH VAULT"`
	ID   string `json:"id" binding:"required,uuid"`
}

// ToOwner converts the reference to its domain form.
func (o OwnerRef) ToOwner() domain.Owner {
	return domain.Owner{Kind: domain.OwnerKind(o.Kind), ID: o.ID}
}

// CreateIncomeRequest defines the payload for recording branch income.
type CreateIncomeRequest struct {
	Owner        OwnerRef        `json:"owner" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Category     string          `json:"category" binding:"required"`
	Notes        string          `json:"notes,omitempty"`
}

// CreateExpenseRequest defines the payload for recording a branch expense.
type CreateExpenseRequest struct {
	Owner        OwnerRef        `json:"owner" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Category     string          `json:"category" binding:"required"`
	Payee        string          `json:"payee,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// CreateExchangeRequest defines the payload for a currency exchange.
// CommissionPct is a fraction of the converted amount (0.01 = 1%); when
// omitted the configured default applies.
type CreateExchangeRequest struct {
	Owner            OwnerRef         `json:"owner" binding:"required"`
	FromCurrencyCode string           `json:"fromCurrencyCode" binding:"required,len=3,uppercase"`
	ToCurrencyCode   string           `json:"toCurrencyCode" binding:"required,len=3,uppercase"`
	FromAmount       decimal.Decimal  `json:"fromAmount" binding:"required"`
	CommissionPct    *decimal.Decimal `json:"commissionPct,omitempty"`
	Notes            string           `json:"notes,omitempty"`
}

// CancelTransactionRequest carries the mandatory cancellation reason.
type CancelTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListTransactionsParams narrows transaction listings.
type ListTransactionsParams struct {
	Owner  *OwnerRef
	Kind   string
	Status string
	Limit  int
	Offset int
}

// ExchangeDetailsResponse is the exchange payload of a transaction response.
type ExchangeDetailsResponse struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	FromAmount       decimal.Decimal `json:"fromAmount"`
	ToAmount         decimal.Decimal `json:"toAmount"`
	RateUsed         decimal.Decimal `json:"rateUsed"`
	ViaIntermediary  bool            `json:"viaIntermediary"`
	CommissionPct    decimal.Decimal `json:"commissionPct"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
}

// TransferDetailsResponse is the transfer payload of a transaction response.
type TransferDetailsResponse struct {
	FromOwner    OwnerRef `json:"fromOwner"`
	ToOwner      OwnerRef `json:"toOwner"`
	TransferType string   `json:"transferType"`
}

// TransactionResponse defines the representation of a transaction.
type TransactionResponse struct {
	TransactionID     string                   `json:"transactionID"`
	TransactionNumber string                   `json:"transactionNumber"`
	Kind              string                   `json:"kind"`
	Status            string                   `json:"status"`
	Owner             OwnerRef                 `json:"owner"`
	CurrencyCode      string                   `json:"currencyCode"`
	Amount            decimal.Decimal          `json:"amount"`
	Category          string                   `json:"category,omitempty"`
	Payee             string                   `json:"payee,omitempty"`
	Notes             string                   `json:"notes,omitempty"`
	RequiresApproval  bool                     `json:"requiresApproval"`
	CancelReason      string                   `json:"cancelReason,omitempty"`
	CompletedAt       *time.Time               `json:"completedAt,omitempty"`
	Exchange          *ExchangeDetailsResponse `json:"exchange,omitempty"`
	Transfer          *TransferDetailsResponse `json:"transfer,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
	CreatedBy         string                   `json:"createdBy"`
}

// ToTransactionResponse maps a domain transaction to its response form.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:     t.TransactionID,
		TransactionNumber: t.TransactionNumber,
		Kind:              string(t.Kind),
		Status:            string(t.Status),
		Owner:             OwnerRef{Kind: string(t.Owner.Kind), ID: t.Owner.ID},
		CurrencyCode:      t.CurrencyCode,
		Amount:            t.Amount,
		Category:          t.Category,
		Payee:             t.Payee,
		Notes:             t.Notes,
		RequiresApproval:  t.RequiresApproval,
		CancelReason:      t.CancelReason,
		CompletedAt:       t.CompletedAt,
		CreatedAt:         t.CreatedAt,
		CreatedBy:         t.CreatedBy,
	}
	if t.Exchange != nil {
		resp.Exchange = &ExchangeDetailsResponse{
			FromCurrencyCode: t.Exchange.FromCurrencyCode,
			ToCurrencyCode:   t.Exchange.ToCurrencyCode,
			FromAmount:       t.Exchange.FromAmount,
			ToAmount:         t.Exchange.ToAmount,
			RateUsed:         t.Exchange.RateUsed,
			ViaIntermediary:  t.Exchange.ViaIntermediary,
			CommissionPct:    t.Exchange.CommissionPct,
			CommissionAmount: t.Exchange.CommissionAmount,
		}
	}
	if t.Transfer != nil {
		resp.Transfer = &TransferDetailsResponse{
			FromOwner:    OwnerRef{Kind: string(t.Transfer.FromOwner.Kind), ID: t.Transfer.FromOwner.ID},
			ToOwner:      OwnerRef{Kind: string(t.Transfer.ToOwner.Kind), ID: t.Transfer.ToOwner.ID},
			TransferType: string(t.Transfer.TransferType),
		}
	}
	return resp
}

// ToTransactionResponses maps a slice of domain transactions.
func ToTransactionResponses(transactions []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		out[i] = ToTransactionResponse(&transactions[i])
	}
	return out
}
