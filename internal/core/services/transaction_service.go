package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
	portssvc "github.com/fxdesk/fx_backoffice/internal/core/ports/services"
	"github.com/fxdesk/fx_backoffice/internal/dto"
	"github.com/fxdesk/fx_backoffice/internal/platform/events"
)

// TransactionService implements the transaction engine. Every mutating
// operation writes the transaction record and its balance effects inside one
// database transaction; the balance movement event goes out after commit.
type TransactionService struct {
	BaseService
	txManager       portsrepo.TxManager
	transactionRepo portsrepo.TransactionRepositoryFacade
	balanceRepo     portsrepo.BalanceRepositoryFacade
	currencyService *CurrencyService
	rateService     portssvc.ExchangeRateSvcFacade
	publisher       events.Publisher

	approvalThreshold    decimal.Decimal
	defaultCommissionPct decimal.Decimal
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	repos portsrepo.RepositoryProvider,
	currencyService *CurrencyService,
	rateService portssvc.ExchangeRateSvcFacade,
	publisher events.Publisher,
	approvalThreshold decimal.Decimal,
	defaultCommissionPct decimal.Decimal,
) *TransactionService {
	return &TransactionService{
		txManager:            repos.TxManager,
		transactionRepo:      repos.TransactionRepo,
		balanceRepo:          repos.BalanceRepo,
		currencyService:      currencyService,
		rateService:          rateService,
		publisher:            publisher,
		approvalThreshold:    approvalThreshold,
		defaultCommissionPct: defaultCommissionPct,
	}
}

// CreateIncome records branch income and credits the balance, atomically.
func (s *TransactionService) CreateIncome(ctx context.Context, req dto.CreateIncomeRequest, actor string) (*domain.Transaction, error) {
	owner := req.Owner.ToOwner()
	if err := s.validateMovement(ctx, owner, req.CurrencyCode, req.Amount); err != nil {
		return nil, err
	}

	now := time.Now()
	completedAt := now
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		Kind:          domain.KindIncome,
		Status:        domain.StatusCompleted,
		Owner:         owner,
		CurrencyCode:  req.CurrencyCode,
		Amount:        req.Amount,
		Category:      req.Category,
		Notes:         req.Notes,
		CompletedAt:   &completedAt,
		AuditFields:   domain.NewAuditFields(actor, now),
	}

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		number, err := s.transactionRepo.NextTransactionNumberInTx(ctx, tx, now)
		if err != nil {
			return err
		}
		txn.TransactionNumber = number

		if err := s.transactionRepo.CreateTransactionInTx(ctx, tx, txn); err != nil {
			return err
		}

		changes := []domain.BalanceChange{{
			Owner:        owner,
			CurrencyCode: req.CurrencyCode,
			Kind:         domain.ChangeCredit,
			Amount:       req.Amount,
			Notes:        "income " + txn.TransactionNumber,
		}}
		_, err = s.balanceRepo.ApplyChangesInTx(ctx, tx, changes, portsrepo.ChangeRef{TransactionID: &txn.TransactionID}, actor, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create income transaction: %w", err)
	}

	s.LogInfo(ctx, "income recorded", "transaction_number", txn.TransactionNumber, "owner", owner.String(), "amount", req.Amount.String())
	s.publish(ctx, events.RouteTransactionCompleted, dto.ToTransactionResponse(&txn))
	return &txn, nil
}

// CreateExpense records a branch expense. Up to the approval threshold the
// balance is debited immediately; above it the amount is reserved and the
// transaction waits in PENDING for ApproveExpense.
func (s *TransactionService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, actor string) (*domain.Transaction, error) {
	owner := req.Owner.ToOwner()
	if err := s.validateMovement(ctx, owner, req.CurrencyCode, req.Amount); err != nil {
		return nil, err
	}

	requiresApproval := s.approvalThreshold.IsPositive() && req.Amount.GreaterThan(s.approvalThreshold)

	now := time.Now()
	txn := domain.Transaction{
		TransactionID:    uuid.NewString(),
		Kind:             domain.KindExpense,
		Status:           domain.StatusCompleted,
		Owner:            owner,
		CurrencyCode:     req.CurrencyCode,
		Amount:           req.Amount,
		Category:         req.Category,
		Payee:            req.Payee,
		Notes:            req.Notes,
		RequiresApproval: requiresApproval,
		AuditFields:      domain.NewAuditFields(actor, now),
	}
	change := domain.BalanceChange{
		Owner:        owner,
		CurrencyCode: req.CurrencyCode,
		Kind:         domain.ChangeDebit,
		Amount:       req.Amount,
	}
	if requiresApproval {
		txn.Status = domain.StatusPending
		change.Kind = domain.ChangeReserve
	} else {
		completedAt := now
		txn.CompletedAt = &completedAt
	}

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		number, err := s.transactionRepo.NextTransactionNumberInTx(ctx, tx, now)
		if err != nil {
			return err
		}
		txn.TransactionNumber = number
		change.Notes = "expense " + number

		if err := s.transactionRepo.CreateTransactionInTx(ctx, tx, txn); err != nil {
			return err
		}

		_, err = s.balanceRepo.ApplyChangesInTx(ctx, tx, []domain.BalanceChange{change}, portsrepo.ChangeRef{TransactionID: &txn.TransactionID}, actor, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create expense transaction: %w", err)
	}

	s.LogInfo(ctx, "expense recorded",
		"transaction_number", txn.TransactionNumber,
		"owner", owner.String(),
		"amount", req.Amount.String(),
		"requires_approval", requiresApproval)
	if !requiresApproval {
		s.publish(ctx, events.RouteTransactionCompleted, dto.ToTransactionResponse(&txn))
	}
	return &txn, nil
}

// CreateExchange executes a currency exchange on one branch: the from-amount
// is debited, the converted amount net of commission is credited, and the
// commission itself is credited as exchange income in the target currency.
// The rate is snapshotted on the transaction and never re-read later.
func (s *TransactionService) CreateExchange(ctx context.Context, req dto.CreateExchangeRequest, actor string) (*domain.Transaction, error) {
	owner := req.Owner.ToOwner()
	if err := s.validateMovement(ctx, owner, req.FromCurrencyCode, req.FromAmount); err != nil {
		return nil, err
	}
	if req.FromCurrencyCode == req.ToCurrencyCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}
	toCurrency, err := s.currencyService.GetCurrencyByCode(ctx, req.ToCurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency '%s' not found", apperrors.ErrValidation, req.ToCurrencyCode)
		}
		return nil, err
	}
	if !toCurrency.IsActive {
		return nil, fmt.Errorf("%w: currency '%s' is inactive", apperrors.ErrValidation, req.ToCurrencyCode)
	}

	commissionPct := s.defaultCommissionPct
	if req.CommissionPct != nil {
		commissionPct = *req.CommissionPct
	}
	if commissionPct.IsNegative() || commissionPct.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: commission percentage must be in [0, 1)", apperrors.ErrValidation)
	}

	rate, err := s.rateService.ResolveRate(ctx, req.FromCurrencyCode, req.ToCurrencyCode)
	if err != nil {
		return nil, err
	}

	// Amounts round half away from zero at the to-currency precision.
	toGross := req.FromAmount.Mul(rate.Rate).Round(toCurrency.Precision)
	commission := toGross.Mul(commissionPct).Round(toCurrency.Precision)
	toNet := toGross.Sub(commission)
	if !toNet.IsPositive() {
		return nil, fmt.Errorf("%w: converted amount is not positive", apperrors.ErrValidation)
	}

	now := time.Now()
	completedAt := now
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		Kind:          domain.KindExchange,
		Status:        domain.StatusCompleted,
		Owner:         owner,
		CurrencyCode:  req.FromCurrencyCode,
		Amount:        req.FromAmount,
		Notes:         req.Notes,
		CompletedAt:   &completedAt,
		Exchange: &domain.ExchangeDetails{
			FromCurrencyCode: req.FromCurrencyCode,
			ToCurrencyCode:   req.ToCurrencyCode,
			FromAmount:       req.FromAmount,
			ToAmount:         toNet,
			RateUsed:         rate.Rate,
			ViaIntermediary:  rate.ViaIntermediary,
			CommissionPct:    commissionPct,
			CommissionAmount: commission,
		},
		AuditFields: domain.NewAuditFields(actor, now),
	}

	err = s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		number, err := s.transactionRepo.NextTransactionNumberInTx(ctx, tx, now)
		if err != nil {
			return err
		}
		txn.TransactionNumber = number

		if err := s.transactionRepo.CreateTransactionInTx(ctx, tx, txn); err != nil {
			return err
		}

		changes := []domain.BalanceChange{
			{
				Owner:        owner,
				CurrencyCode: req.FromCurrencyCode,
				Kind:         domain.ChangeDebit,
				Amount:       req.FromAmount,
				Notes:        "exchange " + number + " paid out",
			},
			{
				Owner:        owner,
				CurrencyCode: req.ToCurrencyCode,
				Kind:         domain.ChangeCredit,
				Amount:       toNet,
				Notes:        "exchange " + number + " received",
			},
		}
		if commission.IsPositive() {
			changes = append(changes, domain.BalanceChange{
				Owner:        owner,
				CurrencyCode: req.ToCurrencyCode,
				Kind:         domain.ChangeCredit,
				Amount:       commission,
				Notes:        "exchange " + number + " commission",
			})
		}
		_, err = s.balanceRepo.ApplyChangesInTx(ctx, tx, changes, portsrepo.ChangeRef{TransactionID: &txn.TransactionID}, actor, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange transaction: %w", err)
	}

	s.LogInfo(ctx, "exchange executed",
		"transaction_number", txn.TransactionNumber,
		"owner", owner.String(),
		"from", req.FromCurrencyCode,
		"to", req.ToCurrencyCode,
		"rate", rate.Rate.String(),
		"via_intermediary", rate.ViaIntermediary)
	s.publish(ctx, events.RouteTransactionCompleted, dto.ToTransactionResponse(&txn))
	return &txn, nil
}

// ApproveExpense completes a pending above-threshold expense by converting
// its reservation into a debit.
func (s *TransactionService) ApproveExpense(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error) {
	var approved *domain.Transaction
	now := time.Now()

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		txn, err := s.transactionRepo.FindTransactionForUpdateInTx(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if txn.Kind != domain.KindExpense || !txn.RequiresApproval {
			return fmt.Errorf("%w: transaction %s is not an expense awaiting approval", apperrors.ErrValidation, transactionID)
		}
		if !txn.Status.CanTransitionTo(domain.StatusCompleted) {
			return fmt.Errorf("%w: cannot complete transaction in status %s", apperrors.ErrStateTransition, txn.Status)
		}

		changes := []domain.BalanceChange{{
			Owner:        txn.Owner,
			CurrencyCode: txn.CurrencyCode,
			Kind:         domain.ChangeDebitReserved,
			Amount:       txn.Amount,
			Notes:        "expense " + txn.TransactionNumber + " approved",
		}}
		if _, err := s.balanceRepo.ApplyChangesInTx(ctx, tx, changes, portsrepo.ChangeRef{TransactionID: &txn.TransactionID}, actor, now); err != nil {
			return err
		}

		completedAt := now
		txn.Status = domain.StatusCompleted
		txn.CompletedAt = &completedAt
		txn.LastUpdatedAt = now
		txn.LastUpdatedBy = actor
		if err := s.transactionRepo.UpdateTransactionInTx(ctx, tx, *txn); err != nil {
			return err
		}
		approved = txn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to approve expense: %w", err)
	}

	s.LogInfo(ctx, "expense approved", "transaction_number", approved.TransactionNumber, "approved_by", actor)
	s.publish(ctx, events.RouteTransactionCompleted, dto.ToTransactionResponse(approved))
	return approved, nil
}

// CancelTransaction cancels a pending transaction, releasing any
// reservation it holds. Terminal transactions stay untouched; corrections
// of completed transactions are recorded as new opposing transactions.
func (s *TransactionService) CancelTransaction(ctx context.Context, transactionID, reason, actor string) (*domain.Transaction, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: cancellation reason is required", apperrors.ErrValidation)
	}

	var cancelled *domain.Transaction
	now := time.Now()

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		txn, err := s.transactionRepo.FindTransactionForUpdateInTx(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if !txn.Status.CanTransitionTo(domain.StatusCancelled) {
			return fmt.Errorf("%w: cannot cancel transaction in status %s", apperrors.ErrStateTransition, txn.Status)
		}

		if txn.Kind == domain.KindExpense && txn.RequiresApproval {
			changes := []domain.BalanceChange{{
				Owner:        txn.Owner,
				CurrencyCode: txn.CurrencyCode,
				Kind:         domain.ChangeRelease,
				Amount:       txn.Amount,
				Notes:        "expense " + txn.TransactionNumber + " cancelled",
			}}
			if _, err := s.balanceRepo.ApplyChangesInTx(ctx, tx, changes, portsrepo.ChangeRef{TransactionID: &txn.TransactionID}, actor, now); err != nil {
				return err
			}
		}

		txn.Status = domain.StatusCancelled
		txn.CancelReason = reason
		txn.LastUpdatedAt = now
		txn.LastUpdatedBy = actor
		if err := s.transactionRepo.UpdateTransactionInTx(ctx, tx, *txn); err != nil {
			return err
		}
		cancelled = txn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel transaction: %w", err)
	}

	s.LogInfo(ctx, "transaction cancelled", "transaction_number", cancelled.TransactionNumber, "reason", reason)
	s.publish(ctx, events.RouteTransactionCancelled, dto.ToTransactionResponse(cancelled))
	return cancelled, nil
}

// GetTransaction returns one transaction, or apperrors.ErrNotFound.
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction in service: %w", err)
	}
	return txn, nil
}

// ListTransactions returns transactions matching the filter, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) ([]domain.Transaction, error) {
	filter := portsrepo.ListTransactionsFilter{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if params.Owner != nil {
		owner := params.Owner.ToOwner()
		if !owner.Valid() {
			return nil, fmt.Errorf("%w: invalid owner reference", apperrors.ErrValidation)
		}
		filter.Owner = &owner
	}
	if params.Kind != "" {
		kind := domain.TransactionKind(params.Kind)
		filter.Kind = &kind
	}
	if params.Status != "" {
		status := domain.TransactionStatus(params.Status)
		filter.Status = &status
	}

	transactions, err := s.transactionRepo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions in service: %w", err)
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}

func (s *TransactionService) validateMovement(ctx context.Context, owner domain.Owner, currencyCode string, amount decimal.Decimal) error {
	if !owner.Valid() {
		return fmt.Errorf("%w: invalid owner reference", apperrors.ErrValidation)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	currency, err := s.currencyService.GetCurrencyByCode(ctx, currencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: currency '%s' not found", apperrors.ErrValidation, currencyCode)
		}
		return err
	}
	if !currency.IsActive {
		return fmt.Errorf("%w: currency '%s' is inactive", apperrors.ErrValidation, currencyCode)
	}
	return nil
}

// publish sends the event after a successful commit. Failures are logged
// and never surfaced: the ledger state is already durable.
func (s *TransactionService) publish(ctx context.Context, routingKey string, payload any) {
	if err := s.publisher.Publish(ctx, routingKey, payload); err != nil {
		s.LogWarn(ctx, "failed to publish balance movement event", "routing_key", routingKey, "error", err.Error())
	}
}
