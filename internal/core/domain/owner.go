package domain

import "fmt"

// OwnerKind discriminates the two kinds of balance holders.
type OwnerKind string

const (
	OwnerBranch OwnerKind = "BRANCH"
	OwnerVault  OwnerKind = "VAULT"
)

// Owner identifies a balance holder: a branch or the central vault.
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id"`
}

// Valid reports whether the owner reference is well formed.
func (o Owner) Valid() bool {
	return (o.Kind == OwnerBranch || o.Kind == OwnerVault) && o.ID != ""
}

// IsVault reports whether the owner is the central vault.
func (o Owner) IsVault() bool {
	return o.Kind == OwnerVault
}

// String renders the owner as KIND:id, used in logs and lock ordering.
func (o Owner) String() string {
	return fmt.Sprintf("%s:%s", o.Kind, o.ID)
}

// BalanceKey identifies one balance row.
type BalanceKey struct {
	Owner        Owner
	CurrencyCode string
}

// String renders a deterministic key. Composite operations sort their touched
// keys by this value before locking so two concurrent operations on the same
// pair always lock in the same order.
func (k BalanceKey) String() string {
	return k.Owner.String() + ":" + k.CurrencyCode
}
