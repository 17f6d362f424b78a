package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferType classifies a transfer by the owners it connects.
type TransferType string

const (
	TransferBranchToBranch TransferType = "BRANCH_TO_BRANCH"
	TransferVaultToBranch  TransferType = "VAULT_TO_BRANCH"
	TransferBranchToVault  TransferType = "BRANCH_TO_VAULT"
	TransferVaultToVault   TransferType = "VAULT_TO_VAULT"
)

// TransferTypeFor derives the transfer type from its endpoints.
func TransferTypeFor(from, to Owner) TransferType {
	switch {
	case from.IsVault() && to.IsVault():
		return TransferVaultToVault
	case from.IsVault():
		return TransferVaultToBranch
	case to.IsVault():
		return TransferBranchToVault
	default:
		return TransferBranchToBranch
	}
}

// TransferStatus is the approval pipeline state of a vault transfer.
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferApproved  TransferStatus = "APPROVED"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// CanTransitionTo reports whether moving to the target status is allowed:
// PENDING -> APPROVED | COMPLETED | CANCELLED, APPROVED -> COMPLETED | CANCELLED.
// Completion straight from PENDING is reserved for branch-to-branch
// transfers configured to skip approval.
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferPending:
		return target == TransferApproved || target == TransferCompleted || target == TransferCancelled
	case TransferApproved:
		return target == TransferCompleted || target == TransferCancelled
	default:
		return false
	}
}

// VaultTransfer is a transfer with an explicit approval pipeline. The amount
// stays reserved on the source balance from initiation until completion or
// cancellation, so pending transfers cannot double-spend the same funds
// while leaving the committed total visible to concurrent readers.
type VaultTransfer struct {
	TransferID    string          `json:"transferID"` // Primary Key (UUID)
	TransferType  TransferType    `json:"transferType"`
	Status        TransferStatus  `json:"status"`
	FromOwner     Owner           `json:"fromOwner"`
	ToOwner       Owner           `json:"toOwner"`
	CurrencyCode  string          `json:"currencyCode"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason,omitempty"`
	ApprovedBy    *string         `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time      `json:"approvedAt,omitempty"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	CancelReason  string          `json:"cancelReason,omitempty"`
	TransactionID *string         `json:"transactionID,omitempty"` // ledger transaction written at completion
	AuditFields
}

// TouchesVault reports whether either endpoint is the vault. Vault-touching
// transfers always require explicit approval.
func (t VaultTransfer) TouchesVault() bool {
	return t.FromOwner.IsVault() || t.ToOwner.IsVault()
}
