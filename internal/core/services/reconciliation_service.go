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
	"github.com/fxdesk/fx_backoffice/internal/dto"
	"github.com/fxdesk/fx_backoffice/internal/platform/events"
)

// ReconciliationAdjustmentCategory marks adjustment transactions created by
// reconciliation, so they can be told apart from operator-entered ones.
const ReconciliationAdjustmentCategory = "RECONCILIATION_ADJUSTMENT"

// ReconciliationService compares physically counted balances against stored
// ones. A discrepancy is recorded as a fact and corrected through a linked
// adjustment transaction, never by editing the balance in place.
type ReconciliationService struct {
	BaseService
	txManager          portsrepo.TxManager
	reconciliationRepo portsrepo.ReconciliationRepositoryFacade
	transactionRepo    portsrepo.TransactionRepositoryFacade
	balanceRepo        portsrepo.BalanceRepositoryFacade
	currencyService    *CurrencyService
	publisher          events.Publisher
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	repos portsrepo.RepositoryProvider,
	currencyService *CurrencyService,
	publisher events.Publisher,
) *ReconciliationService {
	return &ReconciliationService{
		txManager:          repos.TxManager,
		reconciliationRepo: repos.ReconciliationRepo,
		transactionRepo:    repos.TransactionRepo,
		balanceRepo:        repos.BalanceRepo,
		currencyService:    currencyService,
		publisher:          publisher,
	}
}

// Reconcile records a count of one owner/currency position. When the count
// differs from the stored total, an adjustment transaction is created in the
// same atomic unit and linked on the record.
func (s *ReconciliationService) Reconcile(ctx context.Context, req dto.ReconcileRequest, actor string) (*domain.ReconciliationRecord, error) {
	owner := req.Owner.ToOwner()
	if !owner.Valid() {
		return nil, fmt.Errorf("%w: invalid owner reference", apperrors.ErrValidation)
	}
	if req.CountedAmount.IsNegative() {
		return nil, fmt.Errorf("%w: counted amount cannot be negative", apperrors.ErrValidation)
	}
	if _, err := s.currencyService.GetCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency '%s' not found", apperrors.ErrValidation, req.CurrencyCode)
		}
		return nil, err
	}

	var record *domain.ReconciliationRecord
	now := time.Now()

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		systemAmount := decimal.Zero
		balance, err := s.balanceRepo.FindBalance(ctx, domain.BalanceKey{Owner: owner, CurrencyCode: req.CurrencyCode})
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if balance != nil {
			systemAmount = balance.Total
		}

		discrepancy := req.CountedAmount.Sub(systemAmount)
		rec := domain.ReconciliationRecord{
			RecordID:      uuid.NewString(),
			OwnerKind:     owner.Kind,
			OwnerID:       owner.ID,
			CurrencyCode:  req.CurrencyCode,
			CountedAmount: req.CountedAmount,
			SystemAmount:  systemAmount,
			Discrepancy:   discrepancy,
			Notes:         req.Notes,
			PerformedBy:   actor,
			CreatedAt:     now,
		}

		if !discrepancy.IsZero() {
			txn, err := s.createAdjustmentInTx(ctx, tx, owner, req.CurrencyCode, discrepancy, rec.RecordID, actor, now)
			if err != nil {
				return err
			}
			rec.AdjustmentTransactionID = &txn.TransactionID

			// The guard catches a movement that slipped in between reading
			// the total and locking the row for the adjustment.
			balances, err := s.balanceRepo.ApplyChangesInTx(ctx, tx, adjustmentChanges(owner, req.CurrencyCode, discrepancy, txn.TransactionNumber), portsrepo.ChangeRef{TransactionID: &txn.TransactionID}, actor, now)
			if err != nil {
				return err
			}
			after := balances[domain.BalanceKey{Owner: owner, CurrencyCode: req.CurrencyCode}.String()]
			if !after.Total.Equal(req.CountedAmount) {
				return fmt.Errorf("%w: balance moved during reconciliation", apperrors.ErrConcurrencyConflict)
			}
		}

		if err := s.reconciliationRepo.CreateReconciliationInTx(ctx, tx, rec); err != nil {
			return err
		}
		record = &rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile balance: %w", err)
	}

	s.LogInfo(ctx, "reconciliation recorded",
		"record_id", record.RecordID,
		"owner", owner.String(),
		"currency_code", req.CurrencyCode,
		"discrepancy", record.Discrepancy.String())
	if err := s.publisher.Publish(ctx, events.RouteReconciliationDone, dto.ToReconciliationResponse(record)); err != nil {
		s.LogWarn(ctx, "failed to publish balance movement event", "routing_key", events.RouteReconciliationDone, "error", err.Error())
	}
	return record, nil
}

func (s *ReconciliationService) createAdjustmentInTx(ctx context.Context, tx pgx.Tx, owner domain.Owner, currencyCode string, discrepancy decimal.Decimal, recordID, actor string, now time.Time) (*domain.Transaction, error) {
	number, err := s.transactionRepo.NextTransactionNumberInTx(ctx, tx, now)
	if err != nil {
		return nil, err
	}

	kind := domain.KindIncome
	if discrepancy.IsNegative() {
		kind = domain.KindExpense
	}
	completedAt := now
	txn := domain.Transaction{
		TransactionID:     uuid.NewString(),
		TransactionNumber: number,
		Kind:              kind,
		Status:            domain.StatusCompleted,
		Owner:             owner,
		CurrencyCode:      currencyCode,
		Amount:            discrepancy.Abs(),
		Category:          ReconciliationAdjustmentCategory,
		Notes:             "reconciliation " + recordID,
		CompletedAt:       &completedAt,
		AuditFields:       domain.NewAuditFields(actor, now),
	}
	if err := s.transactionRepo.CreateTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func adjustmentChanges(owner domain.Owner, currencyCode string, discrepancy decimal.Decimal, number string) []domain.BalanceChange {
	kind := domain.ChangeCredit
	if discrepancy.IsNegative() {
		kind = domain.ChangeDebit
	}
	return []domain.BalanceChange{{
		Owner:        owner,
		CurrencyCode: currencyCode,
		Kind:         kind,
		Amount:       discrepancy.Abs(),
		Notes:        "adjustment " + number,
	}}
}

// ListReconciliations returns records, newest first, optionally per owner.
func (s *ReconciliationService) ListReconciliations(ctx context.Context, owner *domain.Owner, limit, offset int) ([]domain.ReconciliationRecord, error) {
	if owner != nil && !owner.Valid() {
		return nil, fmt.Errorf("%w: invalid owner reference", apperrors.ErrValidation)
	}

	records, err := s.reconciliationRepo.ListReconciliations(ctx, owner, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliations in service: %w", err)
	}
	if records == nil {
		return []domain.ReconciliationRecord{}, nil
	}
	return records, nil
}
