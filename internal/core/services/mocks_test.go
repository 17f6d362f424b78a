package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portsrepo "github.com/fxdesk/fx_backoffice/internal/core/ports/repositories"
)

// --- Mock TxManager ---

// MockTxManager runs the unit function directly, without a real database
// transaction. A configured error short-circuits the unit.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(nil)
}

// --- Mock BalanceRepository ---

type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) FindBalance(ctx context.Context, key domain.BalanceKey) (*domain.Balance, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Balance), args.Error(1)
}

func (m *MockBalanceRepository) ListBalancesByOwner(ctx context.Context, owner domain.Owner) ([]domain.Balance, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Balance), args.Error(1)
}

func (m *MockBalanceRepository) ApplyChangesInTx(ctx context.Context, tx pgx.Tx, changes []domain.BalanceChange, ref portsrepo.ChangeRef, actor string, now time.Time) (map[string]domain.Balance, error) {
	args := m.Called(ctx, tx, changes, ref, actor, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Balance), args.Error(1)
}

func (m *MockBalanceRepository) ListHistory(ctx context.Context, key domain.BalanceKey, limit, offset int) ([]domain.BalanceHistoryEntry, error) {
	args := m.Called(ctx, key, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceHistoryEntry), args.Error(1)
}

// --- Mock TransactionRepository ---

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) NextTransactionNumberInTx(ctx context.Context, tx pgx.Tx, at time.Time) (string, error) {
	args := m.Called(ctx, tx, at)
	return args.String(0), args.Error(1)
}

func (m *MockTransactionRepository) CreateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionForUpdateInTx(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, tx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.ListTransactionsFilter) ([]domain.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// --- Mock ExchangeRateRepository ---

type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) FindActiveRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListActiveRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListRateHistory(ctx context.Context, fromCode, toCode string, limit, offset int) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

// --- Mock CurrencyRepository ---

type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindBaseCurrency(ctx context.Context) (*domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context, includeInactive bool) ([]domain.Currency, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) UpdateCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

// --- Mock TransferRepository ---

type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) CreateTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.VaultTransfer) error {
	args := m.Called(ctx, tx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.VaultTransfer, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VaultTransfer), args.Error(1)
}

func (m *MockTransferRepository) FindTransferForUpdateInTx(ctx context.Context, tx pgx.Tx, transferID string) (*domain.VaultTransfer, error) {
	args := m.Called(ctx, tx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VaultTransfer), args.Error(1)
}

func (m *MockTransferRepository) UpdateTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.VaultTransfer) error {
	args := m.Called(ctx, tx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) ListTransfers(ctx context.Context, filter portsrepo.ListTransfersFilter) ([]domain.VaultTransfer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VaultTransfer), args.Error(1)
}

// --- Mock ReconciliationRepository ---

type MockReconciliationRepository struct {
	mock.Mock
}

func (m *MockReconciliationRepository) CreateReconciliationInTx(ctx context.Context, tx pgx.Tx, record domain.ReconciliationRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockReconciliationRepository) ListReconciliations(ctx context.Context, owner *domain.Owner, limit, offset int) ([]domain.ReconciliationRecord, error) {
	args := m.Called(ctx, owner, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationRecord), args.Error(1)
}

// --- Mock Publisher ---

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// newRepositoryProvider bundles the mocks the way production wiring does.
func newRepositoryProvider(
	txm *MockTxManager,
	balances *MockBalanceRepository,
	transactions *MockTransactionRepository,
	rates *MockExchangeRateRepository,
	currencies *MockCurrencyRepository,
	transfers *MockTransferRepository,
	reconciliations *MockReconciliationRepository,
) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:          txm,
		BalanceRepo:        balances,
		TransactionRepo:    transactions,
		ExchangeRateRepo:   rates,
		CurrencyRepo:       currencies,
		TransferRepo:       transfers,
		ReconciliationRepo: reconciliations,
	}
}
