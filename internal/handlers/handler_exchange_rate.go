package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fxdesk/fx_backoffice/internal/core/ports/services"
	"github.com/fxdesk/fx_backoffice/internal/dto"
	"github.com/fxdesk/fx_backoffice/internal/middleware"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	rateService portssvc.ExchangeRateSvcFacade
}

func newExchangeRateHandler(rs portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{rateService: rs}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, rateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(rateService)

	rates := rg.Group("/exchange-rates")
	{
		rates.POST("", h.setExchangeRate)
		rates.GET("", h.listActiveRates)
		rates.GET("/resolve", h.resolveRate)
		rates.GET("/history", h.listRateHistory)
	}
}

func (h *exchangeRateHandler) setExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SetExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetExchangeRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	logger.Info("Received request to set exchange rate",
		slog.String("from", req.FromCurrencyCode),
		slog.String("to", req.ToCurrencyCode))

	created, err := h.rateService.SetExchangeRate(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to set exchange rate")
		return
	}

	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(created))
}

func (h *exchangeRateHandler) listActiveRates(c *gin.Context) {
	rates, err := h.rateService.ListActiveRates(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list active rates")
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponses(rates))
}

func (h *exchangeRateHandler) resolveRate(c *gin.Context) {
	fromCode := c.Query("from")
	toCode := c.Query("to")
	if fromCode == "" || toCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' and 'to' query parameters are required"})
		return
	}

	result, err := h.rateService.ResolveRate(c.Request.Context(), fromCode, toCode)
	if err != nil {
		respondError(c, err, "Failed to resolve rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToRateResultResponse(result))
}

func (h *exchangeRateHandler) listRateHistory(c *gin.Context) {
	fromCode := c.Query("from")
	toCode := c.Query("to")
	if fromCode == "" || toCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' and 'to' query parameters are required"})
		return
	}
	limit, offset := paginationParams(c)

	rates, err := h.rateService.ListRateHistory(c.Request.Context(), fromCode, toCode, limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list rate history")
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponses(rates))
}

// paginationParams reads limit/offset query parameters, tolerating absence.
func paginationParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
