package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestTransactionStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    TransactionStatus
		to      TransactionStatus
		allowed bool
	}{
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to failed", StatusPending, StatusFailed, true},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusCompleted, false},
		{"failed is terminal", StatusFailed, StatusCompleted, false},
		{"no self transition", StatusPending, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransferStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    TransferStatus
		to      TransferStatus
		allowed bool
	}{
		{"pending to approved", TransferPending, TransferApproved, true},
		{"pending to completed", TransferPending, TransferCompleted, true},
		{"pending to cancelled", TransferPending, TransferCancelled, true},
		{"approved to completed", TransferApproved, TransferCompleted, true},
		{"approved to cancelled", TransferApproved, TransferCancelled, true},
		{"approved cannot revert", TransferApproved, TransferPending, false},
		{"completed is terminal", TransferCompleted, TransferCancelled, false},
		{"cancelled is terminal", TransferCancelled, TransferApproved, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransferTypeFor(t *testing.T) {
	branchA := Owner{Kind: OwnerBranch, ID: "b1"}
	branchB := Owner{Kind: OwnerBranch, ID: "b2"}
	vaultA := Owner{Kind: OwnerVault, ID: "v1"}
	vaultB := Owner{Kind: OwnerVault, ID: "v2"}

	assert.Equal(t, TransferBranchToBranch, TransferTypeFor(branchA, branchB))
	assert.Equal(t, TransferBranchToVault, TransferTypeFor(branchA, vaultA))
	assert.Equal(t, TransferVaultToBranch, TransferTypeFor(vaultA, branchA))
	assert.Equal(t, TransferVaultToVault, TransferTypeFor(vaultA, vaultB))
}

func TestOwnerValid(t *testing.T) {
	assert.True(t, Owner{Kind: OwnerBranch, ID: "b1"}.Valid())
	assert.True(t, Owner{Kind: OwnerVault, ID: "v1"}.Valid())
	assert.False(t, Owner{Kind: OwnerBranch}.Valid())
	assert.False(t, Owner{Kind: "WAREHOUSE", ID: "w1"}.Valid())
	assert.False(t, Owner{}.Valid())
}

func TestBalanceKeyString(t *testing.T) {
	key := BalanceKey{Owner: Owner{Kind: OwnerBranch, ID: "b1"}, CurrencyCode: "USD"}
	assert.Equal(t, "BRANCH:b1:USD", key.String())
}

func TestBalanceAvailable(t *testing.T) {
	b := Balance{Total: d("1000.00"), Reserved: d("250.00")}
	assert.True(t, b.Available().Equal(d("750.00")))
}

func TestBalanceChangeTotalDelta(t *testing.T) {
	amount := d("100.00")
	tests := []struct {
		kind  BalanceChangeKind
		delta decimal.Decimal
	}{
		{ChangeCredit, d("100.00")},
		{ChangeDebit, d("-100.00")},
		{ChangeDebitReserved, d("-100.00")},
		{ChangeReserve, decimal.Zero},
		{ChangeRelease, decimal.Zero},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c := BalanceChange{Kind: tt.kind, Amount: amount}
			assert.True(t, c.TotalDelta().Equal(tt.delta))
		})
	}
}

func TestExchangeRateInverted(t *testing.T) {
	buy := d("49.50")
	sell := d("50.50")
	r := ExchangeRate{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EGP",
		Rate:             d("50"),
		BuyRate:          &buy,
		SellRate:         &sell,
		IsActive:         true,
	}

	inv := r.Inverted()

	assert.Equal(t, "EGP", inv.FromCurrencyCode)
	assert.Equal(t, "USD", inv.ToCurrencyCode)
	assert.True(t, inv.Rate.Equal(d("0.02")))
	require.NotNil(t, inv.BuyRate)
	require.NotNil(t, inv.SellRate)
	// Buy and sell swap roles across the inversion.
	assert.True(t, inv.BuyRate.Equal(d("0.019802")))
	assert.True(t, inv.SellRate.Equal(d("0.020202")))
	assert.True(t, inv.IsActive)
}

func TestExchangeRateInvertedWithoutSpread(t *testing.T) {
	r := ExchangeRate{FromCurrencyCode: "USD", ToCurrencyCode: "SAR", Rate: d("3.75")}

	inv := r.Inverted()

	assert.True(t, inv.Rate.Equal(d("0.266667")))
	assert.Nil(t, inv.BuyRate)
	assert.Nil(t, inv.SellRate)
}

func TestTransactionIsTerminal(t *testing.T) {
	assert.True(t, Transaction{Status: StatusCompleted}.IsTerminal())
	assert.True(t, Transaction{Status: StatusCancelled}.IsTerminal())
	assert.False(t, Transaction{Status: StatusPending}.IsTerminal())
	assert.False(t, Transaction{Status: StatusFailed}.IsTerminal())
}

func TestVaultTransferTouchesVault(t *testing.T) {
	branch := Owner{Kind: OwnerBranch, ID: "b1"}
	vault := Owner{Kind: OwnerVault, ID: "v1"}

	assert.True(t, VaultTransfer{FromOwner: branch, ToOwner: vault}.TouchesVault())
	assert.True(t, VaultTransfer{FromOwner: vault, ToOwner: branch}.TouchesVault())
	assert.False(t, VaultTransfer{FromOwner: branch, ToOwner: Owner{Kind: OwnerBranch, ID: "b2"}}.TouchesVault())
}
