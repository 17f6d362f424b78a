package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	"github.com/fxdesk/fx_backoffice/internal/core/services"
	"github.com/fxdesk/fx_backoffice/internal/dto"
)

type CurrencyServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCurrencyRepository
	service  *services.CurrencyService
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCurrencyRepository)
	suite.service = services.NewCurrencyService(suite.mockRepo)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Success() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{CurrencyCode: "EGP", Name: "Egyptian Pound", Symbol: "E£"}

	suite.mockRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.CurrencyCode == "EGP" &&
			c.Precision == 2 &&
			c.IsActive &&
			!c.IsBase &&
			c.CreatedBy == "admin-1"
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, "admin-1")

	suite.Require().NoError(err)
	suite.Equal("EGP", currency.CurrencyCode)
	suite.Equal(int32(2), currency.Precision)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Duplicate() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{CurrencyCode: "USD", Name: "US Dollar", Symbol: "$"}

	suite.mockRepo.On("SaveCurrency", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, "admin-1")

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_SecondBaseRejected() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{CurrencyCode: "EUR", Name: "Euro", Symbol: "€", IsBase: true}

	suite.mockRepo.On("FindBaseCurrency", ctx).Return(baseCurrency("USD"), nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, "admin-1")

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_FirstBaseAllowed() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{CurrencyCode: "USD", Name: "US Dollar", Symbol: "$", IsBase: true, Precision: 2}

	suite.mockRepo.On("FindBaseCurrency", ctx).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.IsBase
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, "admin-1")

	suite.Require().NoError(err)
	suite.True(currency.IsBase)
}

func (suite *CurrencyServiceTestSuite) TestDeactivateCurrency_Success() {
	ctx := context.Background()

	suite.mockRepo.On("FindCurrencyByCode", ctx, "EGP").Return(activeCurrency("EGP"), nil).Once()
	suite.mockRepo.On("UpdateCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.CurrencyCode == "EGP" && !c.IsActive && c.LastUpdatedBy == "admin-2"
	})).Return(nil).Once()

	currency, err := suite.service.DeactivateCurrency(ctx, "EGP", "admin-2")

	suite.Require().NoError(err)
	suite.False(currency.IsActive)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestDeactivateCurrency_BaseRejected() {
	ctx := context.Background()

	suite.mockRepo.On("FindCurrencyByCode", ctx, "USD").Return(baseCurrency("USD"), nil).Once()

	currency, err := suite.service.DeactivateCurrency(ctx, "USD", "admin-2")

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestActivateCurrency_AlreadyActiveIsNoop() {
	ctx := context.Background()

	suite.mockRepo.On("FindCurrencyByCode", ctx, "EGP").Return(activeCurrency("EGP"), nil).Once()

	currency, err := suite.service.ActivateCurrency(ctx, "EGP", "admin-2")

	suite.Require().NoError(err)
	suite.True(currency.IsActive)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestListCurrencies_NilBecomesEmptySlice() {
	ctx := context.Background()

	suite.mockRepo.On("ListCurrencies", ctx, false).Return(nil, nil).Once()

	currencies, err := suite.service.ListCurrencies(ctx, false)

	suite.Require().NoError(err)
	suite.NotNil(currencies)
	suite.Empty(currencies)
}

func baseCurrency(code string) *domain.Currency {
	c := activeCurrency(code)
	c.IsBase = true
	return c
}

func TestCurrencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}
