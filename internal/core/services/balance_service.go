package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
)

// BalanceService exposes read access to balances and their history.
// All mutation goes through the transaction, transfer and reconciliation
// services so every movement is tied to a record.
type BalanceService struct {
	BaseService
	balanceRepo portsrepo.BalanceRepositoryFacade
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(balanceRepo portsrepo.BalanceRepositoryFacade) *BalanceService {
	return &BalanceService{balanceRepo: balanceRepo}
}

// GetBalance returns one owner/currency position. Owners that never held
// the currency get a zero position rather than an error.
func (s *BalanceService) GetBalance(ctx context.Context, owner domain.Owner, currencyCode string) (*domain.Balance, error) {
	if !owner.Valid() {
		return nil, fmt.Errorf("%w: invalid owner reference", apperrors.ErrValidation)
	}

	balance, err := s.balanceRepo.FindBalance(ctx, domain.BalanceKey{Owner: owner, CurrencyCode: currencyCode})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.Balance{
				OwnerKind:    owner.Kind,
				OwnerID:      owner.ID,
				CurrencyCode: currencyCode,
			}, nil
		}
		return nil, fmt.Errorf("failed to get balance in service: %w", err)
	}
	return balance, nil
}

// ListBalances returns all positions held by an owner.
func (s *BalanceService) ListBalances(ctx context.Context, owner domain.Owner) ([]domain.Balance, error) {
	if !owner.Valid() {
		return nil, fmt.Errorf("%w: invalid owner reference", apperrors.ErrValidation)
	}

	balances, err := s.balanceRepo.ListBalancesByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances in service: %w", err)
	}
	if balances == nil {
		return []domain.Balance{}, nil
	}
	return balances, nil
}

// ListHistory returns the append-only audit trail for a position, newest first.
func (s *BalanceService) ListHistory(ctx context.Context, owner domain.Owner, currencyCode string, limit, offset int) ([]domain.BalanceHistoryEntry, error) {
	if !owner.Valid() {
		return nil, fmt.Errorf("%w: invalid owner reference", apperrors.ErrValidation)
	}

	entries, err := s.balanceRepo.ListHistory(ctx, domain.BalanceKey{Owner: owner, CurrencyCode: currencyCode}, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list balance history in service: %w", err)
	}
	if entries == nil {
		return []domain.BalanceHistoryEntry{}, nil
	}
	return entries, nil
}
