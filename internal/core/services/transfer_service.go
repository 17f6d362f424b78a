package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
	"github.com/fxdesk/fx_backoffice/internal/dto"
	"github.com/fxdesk/fx_backoffice/internal/platform/events"
)

// TransferService implements the transfer approval pipeline. The amount is
// reserved on the source balance at initiation and stays reserved until the
// transfer completes or is cancelled, so pending transfers cannot
// double-spend the same funds.
type TransferService struct {
	BaseService
	txManager       portsrepo.TxManager
	transferRepo    portsrepo.TransferRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	balanceRepo     portsrepo.BalanceRepositoryFacade
	currencyService *CurrencyService
	publisher       events.Publisher

	// autoApproveBranch lets branch-to-branch transfers complete straight
	// from PENDING. Vault-touching transfers always need approval.
	autoApproveBranch bool
}

// NewTransferService creates a new TransferService.
func NewTransferService(
	repos portsrepo.RepositoryProvider,
	currencyService *CurrencyService,
	publisher events.Publisher,
	autoApproveBranch bool,
) *TransferService {
	return &TransferService{
		txManager:         repos.TxManager,
		transferRepo:      repos.TransferRepo,
		transactionRepo:   repos.TransactionRepo,
		balanceRepo:       repos.BalanceRepo,
		currencyService:   currencyService,
		publisher:         publisher,
		autoApproveBranch: autoApproveBranch,
	}
}

// InitiateTransfer creates a pending transfer and reserves the amount on
// the source balance, atomically.
func (s *TransferService) InitiateTransfer(ctx context.Context, req dto.InitiateTransferRequest, actor string) (*domain.VaultTransfer, error) {
	fromOwner := req.FromOwner.ToOwner()
	toOwner := req.ToOwner.ToOwner()
	if !fromOwner.Valid() || !toOwner.Valid() {
		return nil, fmt.Errorf("%w: invalid owner reference", apperrors.ErrValidation)
	}
	if fromOwner == toOwner {
		return nil, fmt.Errorf("%w: transfer endpoints must differ", apperrors.ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	currency, err := s.currencyService.GetCurrencyByCode(ctx, req.CurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency '%s' not found", apperrors.ErrValidation, req.CurrencyCode)
		}
		return nil, err
	}
	if !currency.IsActive {
		return nil, fmt.Errorf("%w: currency '%s' is inactive", apperrors.ErrValidation, req.CurrencyCode)
	}

	now := time.Now()
	transfer := domain.VaultTransfer{
		TransferID:   uuid.NewString(),
		TransferType: domain.TransferTypeFor(fromOwner, toOwner),
		Status:       domain.TransferPending,
		FromOwner:    fromOwner,
		ToOwner:      toOwner,
		CurrencyCode: req.CurrencyCode,
		Amount:       req.Amount,
		Reason:       req.Reason,
		AuditFields:  domain.NewAuditFields(actor, now),
	}

	err = s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.transferRepo.CreateTransferInTx(ctx, tx, transfer); err != nil {
			return err
		}

		changes := []domain.BalanceChange{{
			Owner:        fromOwner,
			CurrencyCode: req.CurrencyCode,
			Kind:         domain.ChangeReserve,
			Amount:       req.Amount,
			Notes:        "transfer initiated",
		}}
		_, err := s.balanceRepo.ApplyChangesInTx(ctx, tx, changes, portsrepo.ChangeRef{TransferID: &transfer.TransferID}, actor, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initiate transfer: %w", err)
	}

	s.LogInfo(ctx, "transfer initiated",
		"transfer_id", transfer.TransferID,
		"type", string(transfer.TransferType),
		"from", fromOwner.String(),
		"to", toOwner.String(),
		"amount", req.Amount.String())
	s.publish(ctx, events.RouteTransferInitiated, dto.ToTransferResponse(&transfer))
	return &transfer, nil
}

// ApproveTransfer moves a pending transfer to APPROVED.
func (s *TransferService) ApproveTransfer(ctx context.Context, transferID string, actor string) (*domain.VaultTransfer, error) {
	var approved *domain.VaultTransfer
	now := time.Now()

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		transfer, err := s.transferRepo.FindTransferForUpdateInTx(ctx, tx, transferID)
		if err != nil {
			return err
		}
		if transfer.Status != domain.TransferPending {
			return fmt.Errorf("%w: cannot approve transfer in status %s", apperrors.ErrStateTransition, transfer.Status)
		}
		if transfer.CreatedBy == actor && transfer.TouchesVault() {
			return fmt.Errorf("%w: vault transfers need approval by a second operator", apperrors.ErrForbidden)
		}

		approvedAt := now
		transfer.Status = domain.TransferApproved
		transfer.ApprovedBy = &actor
		transfer.ApprovedAt = &approvedAt
		transfer.LastUpdatedAt = now
		transfer.LastUpdatedBy = actor
		if err := s.transferRepo.UpdateTransferInTx(ctx, tx, *transfer); err != nil {
			return err
		}
		approved = transfer
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to approve transfer: %w", err)
	}

	s.LogInfo(ctx, "transfer approved", "transfer_id", approved.TransferID, "approved_by", actor)
	s.publish(ctx, events.RouteTransferApproved, dto.ToTransferResponse(approved))
	return approved, nil
}

// CompleteTransfer settles an approved transfer: the reservation on the
// source becomes a debit, the destination is credited, and a ledger
// transaction is written and linked, all atomically.
func (s *TransferService) CompleteTransfer(ctx context.Context, transferID string, actor string) (*domain.VaultTransfer, error) {
	var completed *domain.VaultTransfer
	var txn domain.Transaction
	now := time.Now()

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		transfer, err := s.transferRepo.FindTransferForUpdateInTx(ctx, tx, transferID)
		if err != nil {
			return err
		}
		if !transfer.Status.CanTransitionTo(domain.TransferCompleted) {
			return fmt.Errorf("%w: cannot complete transfer in status %s", apperrors.ErrStateTransition, transfer.Status)
		}
		if transfer.Status == domain.TransferPending {
			if transfer.TouchesVault() || !s.autoApproveBranch {
				return fmt.Errorf("%w: transfer %s needs approval before completion", apperrors.ErrStateTransition, transferID)
			}
		}

		number, err := s.transactionRepo.NextTransactionNumberInTx(ctx, tx, now)
		if err != nil {
			return err
		}
		completedAt := now
		txn = domain.Transaction{
			TransactionID:     uuid.NewString(),
			TransactionNumber: number,
			Kind:              domain.KindTransfer,
			Status:            domain.StatusCompleted,
			Owner:             transfer.FromOwner,
			CurrencyCode:      transfer.CurrencyCode,
			Amount:            transfer.Amount,
			Notes:             transfer.Reason,
			CompletedAt:       &completedAt,
			Transfer: &domain.TransferDetails{
				FromOwner:    transfer.FromOwner,
				ToOwner:      transfer.ToOwner,
				TransferType: transfer.TransferType,
			},
			AuditFields: domain.NewAuditFields(actor, now),
		}
		if err := s.transactionRepo.CreateTransactionInTx(ctx, tx, txn); err != nil {
			return err
		}

		changes := []domain.BalanceChange{
			{
				Owner:        transfer.FromOwner,
				CurrencyCode: transfer.CurrencyCode,
				Kind:         domain.ChangeDebitReserved,
				Amount:       transfer.Amount,
				Notes:        "transfer " + number + " sent",
			},
			{
				Owner:        transfer.ToOwner,
				CurrencyCode: transfer.CurrencyCode,
				Kind:         domain.ChangeCredit,
				Amount:       transfer.Amount,
				Notes:        "transfer " + number + " received",
			},
		}
		if _, err := s.balanceRepo.ApplyChangesInTx(ctx, tx, changes, portsrepo.ChangeRef{TransferID: &transfer.TransferID}, actor, now); err != nil {
			return err
		}

		transfer.Status = domain.TransferCompleted
		transfer.CompletedAt = &completedAt
		transfer.TransactionID = &txn.TransactionID
		transfer.LastUpdatedAt = now
		transfer.LastUpdatedBy = actor
		if err := s.transferRepo.UpdateTransferInTx(ctx, tx, *transfer); err != nil {
			return err
		}
		completed = transfer
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete transfer: %w", err)
	}

	s.LogInfo(ctx, "transfer completed",
		"transfer_id", completed.TransferID,
		"transaction_number", txn.TransactionNumber,
		"amount", completed.Amount.String())
	s.publish(ctx, events.RouteTransferCompleted, dto.ToTransferResponse(completed))
	return completed, nil
}

// CancelTransfer cancels a pending or approved transfer and releases the
// reservation on the source balance.
func (s *TransferService) CancelTransfer(ctx context.Context, transferID, reason, actor string) (*domain.VaultTransfer, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: cancellation reason is required", apperrors.ErrValidation)
	}

	var cancelled *domain.VaultTransfer
	now := time.Now()

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		transfer, err := s.transferRepo.FindTransferForUpdateInTx(ctx, tx, transferID)
		if err != nil {
			return err
		}
		if !transfer.Status.CanTransitionTo(domain.TransferCancelled) {
			return fmt.Errorf("%w: cannot cancel transfer in status %s", apperrors.ErrStateTransition, transfer.Status)
		}

		changes := []domain.BalanceChange{{
			Owner:        transfer.FromOwner,
			CurrencyCode: transfer.CurrencyCode,
			Kind:         domain.ChangeRelease,
			Amount:       transfer.Amount,
			Notes:        "transfer cancelled",
		}}
		if _, err := s.balanceRepo.ApplyChangesInTx(ctx, tx, changes, portsrepo.ChangeRef{TransferID: &transfer.TransferID}, actor, now); err != nil {
			return err
		}

		transfer.Status = domain.TransferCancelled
		transfer.CancelReason = reason
		transfer.LastUpdatedAt = now
		transfer.LastUpdatedBy = actor
		if err := s.transferRepo.UpdateTransferInTx(ctx, tx, *transfer); err != nil {
			return err
		}
		cancelled = transfer
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel transfer: %w", err)
	}

	s.LogInfo(ctx, "transfer cancelled", "transfer_id", cancelled.TransferID, "reason", reason)
	s.publish(ctx, events.RouteTransferCancelled, dto.ToTransferResponse(cancelled))
	return cancelled, nil
}

// GetTransfer returns one transfer, or apperrors.ErrNotFound.
func (s *TransferService) GetTransfer(ctx context.Context, transferID string) (*domain.VaultTransfer, error) {
	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer in service: %w", err)
	}
	return transfer, nil
}

// ListTransfers returns transfers matching the filter, newest first.
func (s *TransferService) ListTransfers(ctx context.Context, params dto.ListTransfersParams) ([]domain.VaultTransfer, error) {
	filter := portsrepo.ListTransfersFilter{
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
	if params.Status != "" {
		status := domain.TransferStatus(params.Status)
		filter.Status = &status
	}

	transfers, err := s.transferRepo.ListTransfers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers in service: %w", err)
	}
	if transfers == nil {
		return []domain.VaultTransfer{}, nil
	}
	return transfers, nil
}

func (s *TransferService) publish(ctx context.Context, routingKey string, payload any) {
	if err := s.publisher.Publish(ctx, routingKey, payload); err != nil {
		s.LogWarn(ctx, "failed to publish balance movement event", "routing_key", routingKey, "error", err.Error())
	}
}
