package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fxdesk/fx_backoffice/internal/core/ports/services"
	"github.com/fxdesk/fx_backoffice/internal/dto"
	"github.com/fxdesk/fx_backoffice/internal/middleware"
)

// transferHandler handles HTTP requests related to vault transfers.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

func newTransferHandler(ts portssvc.TransferSvcFacade) *transferHandler {
	return &transferHandler{transferService: ts}
}

// registerTransferRoutes registers routes related to transfers.
func registerTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := newTransferHandler(transferService)

	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.initiateTransfer)
		transfers.POST("/:id/approve", h.approveTransfer)
		transfers.POST("/:id/complete", h.completeTransfer)
		transfers.POST("/:id/cancel", h.cancelTransfer)
		transfers.GET("/:id", h.getTransfer)
		transfers.GET("", h.listTransfers)
	}
}

func (h *transferHandler) initiateTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.InitiateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for InitiateTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.InitiateTransfer(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to initiate transfer")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransferResponse(transfer))
}

func (h *transferHandler) approveTransfer(c *gin.Context) {
	transferID := c.Param("id")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.ApproveTransfer(c.Request.Context(), transferID, actor)
	if err != nil {
		respondError(c, err, "Failed to approve transfer")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

func (h *transferHandler) completeTransfer(c *gin.Context) {
	transferID := c.Param("id")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.CompleteTransfer(c.Request.Context(), transferID, actor)
	if err != nil {
		respondError(c, err, "Failed to complete transfer")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

func (h *transferHandler) cancelTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("id")

	var req dto.CancelTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CancelTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.CancelTransfer(c.Request.Context(), transferID, req.Reason, actor)
	if err != nil {
		respondError(c, err, "Failed to cancel transfer")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

func (h *transferHandler) getTransfer(c *gin.Context) {
	transferID := c.Param("id")

	transfer, err := h.transferService.GetTransfer(c.Request.Context(), transferID)
	if err != nil {
		respondError(c, err, "Failed to retrieve transfer")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

func (h *transferHandler) listTransfers(c *gin.Context) {
	limit, offset := paginationParams(c)
	params := dto.ListTransfersParams{
		Status: strings.ToUpper(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	}
	if kind := c.Query("owner_kind"); kind != "" {
		params.Owner = &dto.OwnerRef{Kind: strings.ToUpper(kind), ID: c.Query("owner_id")}
	}

	transfers, err := h.transferService.ListTransfers(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list transfers")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponses(transfers))
}
