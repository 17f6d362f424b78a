package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance holds the monetary position of one owner in one currency.
// Total and Reserved are the stored amounts; Available is always derived.
// Rows are created lazily on first credit and mutated only through the
// balance change kinds below, inside a single database transaction.
type Balance struct {
	OwnerKind    OwnerKind       `json:"ownerKind"`
	OwnerID      string          `json:"ownerID"`
	CurrencyCode string          `json:"currencyCode"`
	Total        decimal.Decimal `json:"total"`
	Reserved     decimal.Decimal `json:"reserved"`
	AuditFields
}

// Owner returns the owner reference of this balance row.
func (b Balance) Owner() Owner {
	return Owner{Kind: b.OwnerKind, ID: b.OwnerID}
}

// Available is the amount eligible for new debits or reservations.
func (b Balance) Available() decimal.Decimal {
	return b.Total.Sub(b.Reserved)
}

// Key returns the balance row identifier.
func (b Balance) Key() BalanceKey {
	return BalanceKey{Owner: b.Owner(), CurrencyCode: b.CurrencyCode}
}

// BalanceChangeKind enumerates the balance store mutations.
type BalanceChangeKind string

const (
	// ChangeCredit increases total.
	ChangeCredit BalanceChangeKind = "CREDIT"
	// ChangeDebit decreases total; blocked unless amount <= available.
	ChangeDebit BalanceChangeKind = "DEBIT"
	// ChangeReserve moves amount from available to reserved.
	ChangeReserve BalanceChangeKind = "RESERVE"
	// ChangeRelease moves amount back from reserved to available.
	ChangeRelease BalanceChangeKind = "RELEASE"
	// ChangeDebitReserved releases a prior reservation and debits total in
	// one step; blocked unless amount <= reserved.
	ChangeDebitReserved BalanceChangeKind = "DEBIT_RESERVED"
)

// BalanceChange is one leg of a composite balance mutation. Amount is always
// positive; the kind determines the direction and the guard applied under
// the row lock.
type BalanceChange struct {
	Owner        Owner
	CurrencyCode string
	Kind         BalanceChangeKind
	Amount       decimal.Decimal
	Notes        string
}

// Key returns the balance row this change touches.
func (c BalanceChange) Key() BalanceKey {
	return BalanceKey{Owner: c.Owner, CurrencyCode: c.CurrencyCode}
}

// TotalDelta returns the signed effect of this change on the stored total.
// Reservations and releases do not move the total.
func (c BalanceChange) TotalDelta() decimal.Decimal {
	switch c.Kind {
	case ChangeCredit:
		return c.Amount
	case ChangeDebit, ChangeDebitReserved:
		return c.Amount.Neg()
	default:
		return decimal.Zero
	}
}

// BalanceHistoryEntry is one append-only audit row per balance mutation.
// It is never updated or deleted and is the source of truth for
// reconstructing balance evolution.
type BalanceHistoryEntry struct {
	EntryID       string            `json:"entryID"` // Primary Key (UUID)
	OwnerKind     OwnerKind         `json:"ownerKind"`
	OwnerID       string            `json:"ownerID"`
	CurrencyCode  string            `json:"currencyCode"`
	ChangeKind    BalanceChangeKind `json:"changeKind"`
	Delta         decimal.Decimal   `json:"delta"` // signed effect on total
	BalanceBefore decimal.Decimal   `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal   `json:"balanceAfter"`
	TransactionID *string           `json:"transactionID,omitempty"`
	TransferID    *string           `json:"transferID,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Actor         string            `json:"actor"`
	CreatedAt     time.Time         `json:"createdAt"`
}
