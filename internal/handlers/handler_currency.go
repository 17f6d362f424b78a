package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fxdesk/fx_backoffice/internal/core/ports/services"
	"github.com/fxdesk/fx_backoffice/internal/dto"
	"github.com/fxdesk/fx_backoffice/internal/middleware"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
}

func newCurrencyHandler(cs portssvc.CurrencySvcFacade) *currencyHandler {
	return &currencyHandler{currencyService: cs}
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade) {
	h := newCurrencyHandler(currencyService)

	currencies := rg.Group("/currencies")
	{
		currencies.POST("", h.createCurrency)
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:code", h.getCurrencyByCode)
		currencies.POST("/:code/activate", h.activateCurrency)
		currencies.POST("/:code/deactivate", h.deactivateCurrency)
	}
}

func (h *currencyHandler) createCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCurrency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	logger.Info("Received request to create currency", slog.String("currency_code", req.CurrencyCode))

	created, err := h.currencyService.CreateCurrency(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create currency")
		return
	}

	c.JSON(http.StatusCreated, dto.ToCurrencyResponse(created))
}

func (h *currencyHandler) getCurrencyByCode(c *gin.Context) {
	currencyCode := c.Param("code")
	if len(currencyCode) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency code must be 3 letters"})
		return
	}

	currency, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), currencyCode)
	if err != nil {
		respondError(c, err, "Failed to retrieve currency")
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}

func (h *currencyHandler) listCurrencies(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	currencies, err := h.currencyService.ListCurrencies(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, err, "Failed to list currencies")
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrencyResponses(currencies))
}

func (h *currencyHandler) activateCurrency(c *gin.Context) {
	h.setActive(c, true)
}

func (h *currencyHandler) deactivateCurrency(c *gin.Context) {
	h.setActive(c, false)
}

func (h *currencyHandler) setActive(c *gin.Context, active bool) {
	currencyCode := c.Param("code")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if active {
		updated, err := h.currencyService.ActivateCurrency(c.Request.Context(), currencyCode, actor)
		if err != nil {
			respondError(c, err, "Failed to activate currency")
			return
		}
		c.JSON(http.StatusOK, dto.ToCurrencyResponse(updated))
		return
	}

	updated, err := h.currencyService.DeactivateCurrency(c.Request.Context(), currencyCode, actor)
	if err != nil {
		respondError(c, err, "Failed to deactivate currency")
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(updated))
}
