package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind discriminates the four transaction variants.
type TransactionKind string

const (
	KindIncome   TransactionKind = "INCOME"
	KindExpense  TransactionKind = "EXPENSE"
	KindExchange TransactionKind = "EXCHANGE"
	KindTransfer TransactionKind = "TRANSFER"
)

// TransactionStatus is the lifecycle state of a transaction.
// Transitions are monotonic: PENDING may move to COMPLETED, CANCELLED or
// FAILED; COMPLETED and CANCELLED are terminal.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusCancelled TransactionStatus = "CANCELLED"
	StatusFailed    TransactionStatus = "FAILED"
)

// CanTransitionTo reports whether moving to the target status is allowed.
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusCompleted || target == StatusCancelled || target == StatusFailed
	default:
		return false
	}
}

// ExchangeDetails is the kind-specific payload of an exchange transaction.
// RateUsed is the snapshot captured at execution time; later rate changes
// never affect a completed exchange.
type ExchangeDetails struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	FromAmount       decimal.Decimal `json:"fromAmount"`
	ToAmount         decimal.Decimal `json:"toAmount"`
	RateUsed         decimal.Decimal `json:"rateUsed"`
	ViaIntermediary  bool            `json:"viaIntermediary"`
	CommissionPct    decimal.Decimal `json:"commissionPct"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
}

// TransferDetails is the kind-specific payload of a transfer transaction.
type TransferDetails struct {
	FromOwner    Owner        `json:"fromOwner"`
	ToOwner      Owner        `json:"toOwner"`
	TransferType TransferType `json:"transferType"`
}

// Transaction is the tagged variant shared by the four transaction kinds.
// Exactly one of the payload pointers is set for EXCHANGE and TRANSFER;
// INCOME and EXPENSE use only the shared fields.
type Transaction struct {
	TransactionID     string            `json:"transactionID"`     // Primary Key (UUID)
	TransactionNumber string            `json:"transactionNumber"` // e.g. TRX-20250109-00001
	Kind              TransactionKind   `json:"kind"`
	Status            TransactionStatus `json:"status"`
	Owner             Owner             `json:"owner"` // owning branch or vault
	CurrencyCode      string            `json:"currencyCode"`
	Amount            decimal.Decimal   `json:"amount"`
	Category          string            `json:"category,omitempty"` // income/expense category
	Payee             string            `json:"payee,omitempty"`    // expense payee
	Notes             string            `json:"notes,omitempty"`
	RequiresApproval  bool              `json:"requiresApproval"`
	CancelReason      string            `json:"cancelReason,omitempty"`
	CompletedAt       *time.Time        `json:"completedAt,omitempty"`
	Exchange          *ExchangeDetails  `json:"exchange,omitempty"`
	Transfer          *TransferDetails  `json:"transfer,omitempty"`
	AuditFields
}

// IsTerminal reports whether the transaction can no longer change state.
func (t Transaction) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusCancelled
}
