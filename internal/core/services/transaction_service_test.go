package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	"github.com/fxdesk/fx_backoffice/internal/core/services"
	"github.com/fxdesk/fx_backoffice/internal/dto"
	"github.com/fxdesk/fx_backoffice/internal/platform/events"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxm             *MockTxManager
	mockBalances        *MockBalanceRepository
	mockTransactions    *MockTransactionRepository
	mockRates           *MockExchangeRateRepository
	mockCurrencies      *MockCurrencyRepository
	mockTransfers       *MockTransferRepository
	mockReconciliations *MockReconciliationRepository
	mockPublisher       *MockPublisher
	service             *services.TransactionService

	branch dto.OwnerRef
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTxm = new(MockTxManager)
	suite.mockBalances = new(MockBalanceRepository)
	suite.mockTransactions = new(MockTransactionRepository)
	suite.mockRates = new(MockExchangeRateRepository)
	suite.mockCurrencies = new(MockCurrencyRepository)
	suite.mockTransfers = new(MockTransferRepository)
	suite.mockReconciliations = new(MockReconciliationRepository)
	suite.mockPublisher = new(MockPublisher)

	repos := newRepositoryProvider(
		suite.mockTxm,
		suite.mockBalances,
		suite.mockTransactions,
		suite.mockRates,
		suite.mockCurrencies,
		suite.mockTransfers,
		suite.mockReconciliations,
	)
	currencyService := services.NewCurrencyService(suite.mockCurrencies)
	rateService := services.NewExchangeRateService(suite.mockRates, currencyService, "USD")

	// Expenses above 500 need approval; exchanges default to 1% commission
	suite.service = services.NewTransactionService(
		repos,
		currencyService,
		rateService,
		suite.mockPublisher,
		dec("500"),
		dec("0.01"),
	)

	suite.branch = dto.OwnerRef{Kind: "BRANCH", ID: uuid.NewString()}
}

func (suite *TransactionServiceTestSuite) TestCreateIncome_Success() {
	ctx := context.Background()
	req := dto.CreateIncomeRequest{
		Owner:        suite.branch,
		CurrencyCode: "USD",
		Amount:       dec("150.00"),
		Category:     "EXCHANGE_PROFIT",
	}

	suite.mockCurrencies.On("FindCurrencyByCode", ctx, "USD").Return(activeCurrency("USD"), nil).Once()
	suite.mockTxm.On("WithTx", ctx).Return(nil).Once()
	suite.mockTransactions.On("NextTransactionNumberInTx", ctx, nil, mock.AnythingOfType("time.Time")).Return("TRX-20260901-00001", nil).Once()
	suite.mockTransactions.On("CreateTransactionInTx", ctx, nil, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Kind == domain.KindIncome &&
			t.Status == domain.StatusCompleted &&
			t.TransactionNumber == "TRX-20260901-00001" &&
			t.Amount.Equal(dec("150.00"))
	})).Return(nil).Once()
	suite.mockBalances.On("ApplyChangesInTx", ctx, nil, mock.MatchedBy(func(changes []domain.BalanceChange) bool {
		return len(changes) == 1 &&
			changes[0].Kind == domain.ChangeCredit &&
			changes[0].Amount.Equal(dec("150.00"))
	}), mock.Anything, "operator-1", mock.AnythingOfType("time.Time")).Return(map[string]domain.Balance{}, nil).Once()
	suite.mockPublisher.On("Publish", ctx, events.RouteTransactionCompleted, mock.Anything).Return(nil).Once()

	txn, err := suite.service.CreateIncome(ctx, req, "operator-1")

	suite.Require().NoError(err)
	suite.Equal("TRX-20260901-00001", txn.TransactionNumber)
	suite.NotNil(txn.CompletedAt)
	suite.mockBalances.AssertExpectations(suite.T())
	suite.mockPublisher.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateIncome_RejectsNonPositiveAmount() {
	req := dto.CreateIncomeRequest{
		Owner:        suite.branch,
		CurrencyCode: "USD",
		Amount:       dec("0"),
		Category:     "OTHER",
	}

	txn, err := suite.service.CreateIncome(context.Background(), req, "operator-1")

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestCreateExpense_BelowThresholdDebitsImmediately() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Owner:        suite.branch,
		CurrencyCode: "USD",
		Amount:       dec("200.00"),
		Category:     "RENT",
	}

	suite.mockCurrencies.On("FindCurrencyByCode", ctx, "USD").Return(activeCurrency("USD"), nil).Once()
	suite.mockTxm.On("WithTx", ctx).Return(nil).Once()
	suite.mockTransactions.On("NextTransactionNumberInTx", ctx, nil, mock.AnythingOfType("time.Time")).Return("TRX-20260901-00002", nil).Once()
	suite.mockTransactions.On("CreateTransactionInTx", ctx, nil, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Kind == domain.KindExpense && t.Status == domain.StatusCompleted && !t.RequiresApproval
	})).Return(nil).Once()
	suite.mockBalances.On("ApplyChangesInTx", ctx, nil, mock.MatchedBy(func(changes []domain.BalanceChange) bool {
		return len(changes) == 1 && changes[0].Kind == domain.ChangeDebit && changes[0].Amount.Equal(dec("200.00"))
	}), mock.Anything, "operator-1", mock.AnythingOfType("time.Time")).Return(map[string]domain.Balance{}, nil).Once()
	suite.mockPublisher.On("Publish", ctx, events.RouteTransactionCompleted, mock.Anything).Return(nil).Once()

	txn, err := suite.service.CreateExpense(ctx, req, "operator-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, txn.Status)
	suite.False(txn.RequiresApproval)
	suite.mockBalances.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateExpense_AtThresholdDebitsImmediately() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Owner:        suite.branch,
		CurrencyCode: "USD",
		Amount:       dec("500.00"),
		Category:     "RENT",
	}

	suite.mockCurrencies.On("FindCurrencyByCode", ctx, "USD").Return(activeCurrency("USD"), nil).Once()
	suite.mockTxm.On("WithTx", ctx).Return(nil).Once()
	suite.mockTransactions.On("NextTransactionNumberInTx", ctx, nil, mock.AnythingOfType("time.Time")).Return("TRX-20260901-00008", nil).Once()
	suite.mockTransactions.On("CreateTransactionInTx", ctx, nil, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Kind == domain.KindExpense && t.Status == domain.StatusCompleted && !t.RequiresApproval
	})).Return(nil).Once()
	suite.mockBalances.On("ApplyChangesInTx", ctx, nil, mock.MatchedBy(func(changes []domain.BalanceChange) bool {
		return len(changes) == 1 && changes[0].Kind == domain.ChangeDebit && changes[0].Amount.Equal(dec("500.00"))
	}), mock.Anything, "operator-1", mock.AnythingOfType("time.Time")).Return(map[string]domain.Balance{}, nil).Once()
	suite.mockPublisher.On("Publish", ctx, events.RouteTransactionCompleted, mock.Anything).Return(nil).Once()

	txn, err := suite.service.CreateExpense(ctx, req, "operator-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, txn.Status)
	suite.False(txn.RequiresApproval)
}

func (suite *TransactionServiceTestSuite) TestCreateExpense_AboveThresholdReservesAndWaits() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Owner:        suite.branch,
		CurrencyCode: "USD",
		Amount:       dec("500.01"),
		Category:     "EQUIPMENT",
		Payee:        "ACME Supplies",
	}

	suite.mockCurrencies.On("FindCurrencyByCode", ctx, "USD").Return(activeCurrency("USD"), nil).Once()
	suite.mockTxm.On("WithTx", ctx).Return(nil).Once()
	suite.mockTransactions.On("NextTransactionNumberInTx", ctx, nil, mock.AnythingOfType("time.Time")).Return("TRX-20260901-00003", nil).Once()
	suite.mockTransactions.On("CreateTransactionInTx", ctx, nil, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Kind == domain.KindExpense && t.Status == domain.StatusPending && t.RequiresApproval && t.CompletedAt == nil
	})).Return(nil).Once()
	suite.mockBalances.On("ApplyChangesInTx", ctx, nil, mock.MatchedBy(func(changes []domain.BalanceChange) bool {
		return len(changes) == 1 && changes[0].Kind == domain.ChangeReserve && changes[0].Amount.Equal(dec("500.01"))
	}), mock.Anything, "operator-1", mock.AnythingOfType("time.Time")).Return(map[string]domain.Balance{}, nil).Once()

	txn, err := suite.service.CreateExpense(ctx, req, "operator-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusPending, txn.Status)
	suite.True(txn.RequiresApproval)
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateExpense_InsufficientBalance() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Owner:        suite.branch,
		CurrencyCode: "USD",
		Amount:       dec("200.00"),
		Category:     "RENT",
	}

	suite.mockCurrencies.On("FindCurrencyByCode", ctx, "USD").Return(activeCurrency("USD"), nil).Once()
	suite.mockTxm.On("WithTx", ctx).Return(nil).Once()
	suite.mockTransactions.On("NextTransactionNumberInTx", ctx, nil, mock.AnythingOfType("time.Time")).Return("TRX-20260901-00004", nil).Once()
	suite.mockTransactions.On("CreateTransactionInTx", ctx, nil, mock.Anything).Return(nil).Once()
	suite.mockBalances.On("ApplyChangesInTx", ctx, nil, mock.Anything, mock.Anything, "operator-1", mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrInsufficientBalance).Once()

	txn, err := suite.service.CreateExpense(ctx, req, "operator-1")

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCreateExchange_AppliesRateAndCommission() {
	ctx := context.Background()
	req := dto.CreateExchangeRequest{
		Owner:            suite.branch,
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EGP",
		FromAmount:       dec("1000"),
	}
	stored := &domain.ExchangeRate{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EGP",
		Rate:             dec("32.50"),
		IsActive:         true,
	}

	suite.mockCurrencies.On("FindCurrencyByCode", ctx, "USD").Return(activeCurrency("USD"), nil).Once()
	suite.mockCurrencies.On("FindCurrencyByCode", ctx, "EGP").Return(activeCurrency("EGP"), nil).Once()
	suite.mockRates.On("FindActiveRate", ctx, "USD", "EGP").Return(stored, nil).Once()
	suite.mockTxm.On("WithTx", ctx).Return(nil).Once()
	suite.mockTransactions.On("NextTransactionNumberInTx", ctx, nil, mock.AnythingOfType("time.Time")).Return("TRX-20260901-00005", nil).Once()
	suite.mockTransactions.On("CreateTransactionInTx", ctx, nil, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Kind == domain.KindExchange &&
			t.Exchange != nil &&
			t.Exchange.ToAmount.Equal(dec("32175.00")) &&
			t.Exchange.CommissionAmount.Equal(dec("325.00")) &&
			t.Exchange.RateUsed.Equal(dec("32.50")) &&
			!t.Exchange.ViaIntermediary
	})).Return(nil).Once()
	suite.mockBalances.On("ApplyChangesInTx", ctx, nil, mock.MatchedBy(func(changes []domain.BalanceChange) bool {
		if len(changes) != 3 {
			return false
		}
		debit, credit, commission := changes[0], changes[1], changes[2]
		return debit.Kind == domain.ChangeDebit && debit.CurrencyCode == "USD" && debit.Amount.Equal(dec("1000")) &&
			credit.Kind == domain.ChangeCredit && credit.CurrencyCode == "EGP" && credit.Amount.Equal(dec("32175.00")) &&
			commission.Kind == domain.ChangeCredit && commission.CurrencyCode == "EGP" && commission.Amount.Equal(dec("325.00"))
	}), mock.Anything, "operator-1", mock.AnythingOfType("time.Time")).Return(map[string]domain.Balance{}, nil).Once()
	suite.mockPublisher.On("Publish", ctx, events.RouteTransactionCompleted, mock.Anything).Return(nil).Once()

	txn, err := suite.service.CreateExchange(ctx, req, "operator-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, txn.Status)
	suite.True(txn.Exchange.CommissionPct.Equal(dec("0.01")))
	suite.mockBalances.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateExchange_ZeroCommissionSkipsIncomeLeg() {
	ctx := context.Background()
	zero := dec("0")
	req := dto.CreateExchangeRequest{
		Owner:            suite.branch,
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EGP",
		FromAmount:       dec("100"),
		CommissionPct:    &zero,
	}
	stored := &domain.ExchangeRate{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EGP",
		Rate:             dec("32.50"),
		IsActive:         true,
	}

	suite.mockCurrencies.On("FindCurrencyByCode", ctx, "USD").Return(activeCurrency("USD"), nil).Once()
	suite.mockCurrencies.On("FindCurrencyByCode", ctx, "EGP").Return(activeCurrency("EGP"), nil).Once()
	suite.mockRates.On("FindActiveRate", ctx, "USD", "EGP").Return(stored, nil).Once()
	suite.mockTxm.On("WithTx", ctx).Return(nil).Once()
	suite.mockTransactions.On("NextTransactionNumberInTx", ctx, nil, mock.AnythingOfType("time.Time")).Return("TRX-20260901-00009", nil).Once()
	suite.mockTransactions.On("CreateTransactionInTx", ctx, nil, mock.Anything).Return(nil).Once()
	suite.mockBalances.On("ApplyChangesInTx", ctx, nil, mock.MatchedBy(func(changes []domain.BalanceChange) bool {
		return len(changes) == 2 &&
			changes[0].Kind == domain.ChangeDebit && changes[0].CurrencyCode == "USD" &&
			changes[1].Kind == domain.ChangeCredit && changes[1].CurrencyCode == "EGP" && changes[1].Amount.Equal(dec("3250.00"))
	}), mock.Anything, "operator-1", mock.AnythingOfType("time.Time")).Return(map[string]domain.Balance{}, nil).Once()
	suite.mockPublisher.On("Publish", ctx, events.RouteTransactionCompleted, mock.Anything).Return(nil).Once()

	txn, err := suite.service.CreateExchange(ctx, req, "operator-1")

	suite.Require().NoError(err)
	suite.True(txn.Exchange.CommissionAmount.IsZero())
	suite.mockBalances.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestApproveExpense_ConvertsReservationToDebit() {
	ctx := context.Background()
	pending := &domain.Transaction{
		TransactionID:     uuid.NewString(),
		TransactionNumber: "TRX-20260901-00006",
		Kind:              domain.KindExpense,
		Status:            domain.StatusPending,
		Owner:             suite.branch.ToOwner(),
		CurrencyCode:      "USD",
		Amount:            dec("800.00"),
		RequiresApproval:  true,
	}

	suite.mockTxm.On("WithTx", ctx).Return(nil).Once()
	suite.mockTransactions.On("FindTransactionForUpdateInTx", ctx, nil, pending.TransactionID).Return(pending, nil).Once()
	suite.mockBalances.On("ApplyChangesInTx", ctx, nil, mock.MatchedBy(func(changes []domain.BalanceChange) bool {
		return len(changes) == 1 && changes[0].Kind == domain.ChangeDebitReserved && changes[0].Amount.Equal(dec("800.00"))
	}), mock.Anything, "approver-1", mock.AnythingOfType("time.Time")).Return(map[string]domain.Balance{}, nil).Once()
	suite.mockTransactions.On("UpdateTransactionInTx", ctx, nil, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Status == domain.StatusCompleted && t.CompletedAt != nil && t.LastUpdatedBy == "approver-1"
	})).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, events.RouteTransactionCompleted, mock.Anything).Return(nil).Once()

	txn, err := suite.service.ApproveExpense(ctx, pending.TransactionID, "approver-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, txn.Status)
	suite.mockBalances.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestApproveExpense_RejectsNonApprovalTransaction() {
	ctx := context.Background()
	completed := &domain.Transaction{
		TransactionID: uuid.NewString(),
		Kind:          domain.KindIncome,
		Status:        domain.StatusCompleted,
	}

	suite.mockTxm.On("WithTx", ctx).Return(nil).Once()
	suite.mockTransactions.On("FindTransactionForUpdateInTx", ctx, nil, completed.TransactionID).Return(completed, nil).Once()

	txn, err := suite.service.ApproveExpense(ctx, completed.TransactionID, "approver-1")

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_ReleasesReservation() {
	ctx := context.Background()
	pending := &domain.Transaction{
		TransactionID:     uuid.NewString(),
		TransactionNumber: "TRX-20260901-00007",
		Kind:              domain.KindExpense,
		Status:            domain.StatusPending,
		Owner:             suite.branch.ToOwner(),
		CurrencyCode:      "USD",
		Amount:            dec("600.00"),
		RequiresApproval:  true,
	}

	suite.mockTxm.On("WithTx", ctx).Return(nil).Once()
	suite.mockTransactions.On("FindTransactionForUpdateInTx", ctx, nil, pending.TransactionID).Return(pending, nil).Once()
	suite.mockBalances.On("ApplyChangesInTx", ctx, nil, mock.MatchedBy(func(changes []domain.BalanceChange) bool {
		return len(changes) == 1 && changes[0].Kind == domain.ChangeRelease && changes[0].Amount.Equal(dec("600.00"))
	}), mock.Anything, "operator-2", mock.AnythingOfType("time.Time")).Return(map[string]domain.Balance{}, nil).Once()
	suite.mockTransactions.On("UpdateTransactionInTx", ctx, nil, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Status == domain.StatusCancelled && t.CancelReason == "duplicate entry"
	})).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, events.RouteTransactionCancelled, mock.Anything).Return(nil).Once()

	txn, err := suite.service.CancelTransaction(ctx, pending.TransactionID, "duplicate entry", "operator-2")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCancelled, txn.Status)
	suite.mockBalances.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_CompletedIsImmutable() {
	ctx := context.Background()
	completed := &domain.Transaction{
		TransactionID: uuid.NewString(),
		Kind:          domain.KindIncome,
		Status:        domain.StatusCompleted,
	}

	suite.mockTxm.On("WithTx", ctx).Return(nil).Once()
	suite.mockTransactions.On("FindTransactionForUpdateInTx", ctx, nil, completed.TransactionID).Return(completed, nil).Once()

	txn, err := suite.service.CancelTransaction(ctx, completed.TransactionID, "typo", "operator-2")

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrStateTransition)
	suite.mockBalances.AssertNotCalled(suite.T(), "ApplyChangesInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestCancelTransaction_RequiresReason() {
	txn, err := suite.service.CancelTransaction(context.Background(), uuid.NewString(), "", "operator-2")

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
