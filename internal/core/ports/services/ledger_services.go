package services

import (
	"context"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	"github.com/fxdesk/fx_backoffice/internal/dto"
)

// BalanceSvcFacade exposes read access to balances and their audit history.
type BalanceSvcFacade interface {
	GetBalance(ctx context.Context, owner domain.Owner, currencyCode string) (*domain.Balance, error)
	ListBalances(ctx context.Context, owner domain.Owner) ([]domain.Balance, error)
	ListHistory(ctx context.Context, owner domain.Owner, currencyCode string, limit, offset int) ([]domain.BalanceHistoryEntry, error)
}

// TransactionSvcFacade defines the transaction engine operations. Every
// mutating operation commits its transaction record and balance effects in
// one atomic unit.
type TransactionSvcFacade interface {
	CreateIncome(ctx context.Context, req dto.CreateIncomeRequest, actor string) (*domain.Transaction, error)
	CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, actor string) (*domain.Transaction, error)
	CreateExchange(ctx context.Context, req dto.CreateExchangeRequest, actor string) (*domain.Transaction, error)

	// ApproveExpense completes a pending above-threshold expense: the
	// reservation taken at creation is converted into a debit.
	ApproveExpense(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error)

	// CancelTransaction cancels a pending transaction, reversing any
	// reservation it holds. Completed transactions are never cancelled; a
	// correcting reversal must be recorded instead.
	CancelTransaction(ctx context.Context, transactionID, reason, actor string) (*domain.Transaction, error)

	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) ([]domain.Transaction, error)
}

// TransferSvcFacade defines the transfer approval pipeline.
type TransferSvcFacade interface {
	InitiateTransfer(ctx context.Context, req dto.InitiateTransferRequest, actor string) (*domain.VaultTransfer, error)
	ApproveTransfer(ctx context.Context, transferID string, actor string) (*domain.VaultTransfer, error)
	CompleteTransfer(ctx context.Context, transferID string, actor string) (*domain.VaultTransfer, error)
	CancelTransfer(ctx context.Context, transferID, reason, actor string) (*domain.VaultTransfer, error)
	GetTransfer(ctx context.Context, transferID string) (*domain.VaultTransfer, error)
	ListTransfers(ctx context.Context, params dto.ListTransfersParams) ([]domain.VaultTransfer, error)
}

// ReconciliationSvcFacade defines balance reconciliation.
type ReconciliationSvcFacade interface {
	// Reconcile compares a counted amount with the stored total, records
	// the discrepancy and, when non-zero, emits a linked adjustment
	// transaction bringing the stored total to the counted amount.
	Reconcile(ctx context.Context, req dto.ReconcileRequest, actor string) (*domain.ReconciliationRecord, error)

	ListReconciliations(ctx context.Context, owner *domain.Owner, limit, offset int) ([]domain.ReconciliationRecord, error)
}
