package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portssvc "github.com/fxdesk/fx_backoffice/internal/core/ports/services"
	"github.com/fxdesk/fx_backoffice/internal/dto"
	"github.com/fxdesk/fx_backoffice/internal/middleware"
)

// reconciliationHandler handles HTTP requests related to reconciliation.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{reconciliationService: rs}
}

// registerReconciliationRoutes registers routes related to reconciliation.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)

	reconciliations := rg.Group("/reconciliations")
	{
		reconciliations.POST("", h.reconcile)
		reconciliations.GET("", h.listReconciliations)
	}
}

func (h *reconciliationHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Reconcile", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	logger.Info("Received reconciliation request",
		slog.String("owner", req.Owner.Kind+":"+req.Owner.ID),
		slog.String("currency_code", req.CurrencyCode))

	record, err := h.reconciliationService.Reconcile(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to reconcile balance")
		return
	}

	c.JSON(http.StatusCreated, dto.ToReconciliationResponse(record))
}

func (h *reconciliationHandler) listReconciliations(c *gin.Context) {
	limit, offset := paginationParams(c)

	var owner *domain.Owner
	if kind := c.Query("owner_kind"); kind != "" {
		o := domain.Owner{Kind: domain.OwnerKind(strings.ToUpper(kind)), ID: c.Query("owner_id")}
		owner = &o
	}

	records, err := h.reconciliationService.ListReconciliations(c.Request.Context(), owner, limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list reconciliations")
		return
	}

	c.JSON(http.StatusOK, dto.ToReconciliationResponses(records))
}
