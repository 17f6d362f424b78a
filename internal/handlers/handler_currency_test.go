package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fxdesk/fx_backoffice/internal/apperrors"
	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portssvc "github.com/fxdesk/fx_backoffice/internal/core/ports/services"
	"github.com/fxdesk/fx_backoffice/internal/dto"
	"github.com/fxdesk/fx_backoffice/internal/handlers"
	"github.com/fxdesk/fx_backoffice/internal/middleware"
	"github.com/fxdesk/fx_backoffice/internal/platform/config"
)

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, actor string) (*domain.Currency, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) ListCurrencies(ctx context.Context, includeInactive bool) ([]domain.Currency, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) ActivateCurrency(ctx context.Context, code string, actor string) (*domain.Currency, error) {
	args := m.Called(ctx, code, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) DeactivateCurrency(ctx context.Context, code string, actor string) (*domain.Currency, error) {
	args := m.Called(ctx, code, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.CurrencySvcFacade = (*MockCurrencyService)(nil)

type CurrencyHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockCurrencyService
}

func (suite *CurrencyHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockService = new(MockCurrencyService)

	suite.router = gin.New()
	suite.router.Use(middleware.StructuredLoggingMiddleware(slog.Default()))
	handlers.RegisterRoutes(suite.router, &config.Config{}, &portssvc.ServiceContainer{
		Currency: suite.mockService,
	})
}

func (suite *CurrencyHandlerTestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, "operator-1")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *CurrencyHandlerTestSuite) TestCreateCurrency_Success() {
	req := dto.CreateCurrencyRequest{CurrencyCode: "EGP", Name: "Egyptian Pound", Symbol: "E£"}
	created := &domain.Currency{CurrencyCode: "EGP", Name: "Egyptian Pound", Symbol: "E£", Precision: 2, IsActive: true}

	suite.mockService.On("CreateCurrency", mock.Anything, req, "operator-1").Return(created, nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/currencies", req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.CurrencyResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("EGP", resp.CurrencyCode)
	suite.True(resp.IsActive)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *CurrencyHandlerTestSuite) TestCreateCurrency_MissingActorHeader() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/currencies", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "CreateCurrency", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CurrencyHandlerTestSuite) TestCreateCurrency_InvalidBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/currencies", bytes.NewBufferString(`{"currencyCode": 42}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, "operator-1")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *CurrencyHandlerTestSuite) TestGetCurrency_NotFound() {
	suite.mockService.On("GetCurrencyByCode", mock.Anything, "ZZZ").
		Return(nil, fmt.Errorf("lookup: %w", apperrors.ErrNotFound)).Once()

	w := suite.request(http.MethodGet, "/api/v1/currencies/ZZZ", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *CurrencyHandlerTestSuite) TestGetCurrency_BadCodeLength() {
	w := suite.request(http.MethodGet, "/api/v1/currencies/US", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "GetCurrencyByCode", mock.Anything, mock.Anything)
}

func (suite *CurrencyHandlerTestSuite) TestListCurrencies_IncludeInactive() {
	suite.mockService.On("ListCurrencies", mock.Anything, true).Return([]domain.Currency{
		{CurrencyCode: "USD", IsActive: true},
		{CurrencyCode: "EGP", IsActive: false},
	}, nil).Once()

	w := suite.request(http.MethodGet, "/api/v1/currencies?include_inactive=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.CurrencyResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp, 2)
}

func (suite *CurrencyHandlerTestSuite) TestDeactivateCurrency_BaseRejected() {
	suite.mockService.On("DeactivateCurrency", mock.Anything, "USD", "operator-1").
		Return(nil, fmt.Errorf("%w: base currency 'USD' cannot be deactivated", apperrors.ErrValidation)).Once()

	w := suite.request(http.MethodPost, "/api/v1/currencies/USD/deactivate", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *CurrencyHandlerTestSuite) TestActivateCurrency_Success() {
	activated := &domain.Currency{CurrencyCode: "EGP", IsActive: true}
	suite.mockService.On("ActivateCurrency", mock.Anything, "EGP", "operator-1").Return(activated, nil).Once()

	w := suite.request(http.MethodPost, "/api/v1/currencies/EGP/activate", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func TestCurrencyHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyHandlerTestSuite))
}
