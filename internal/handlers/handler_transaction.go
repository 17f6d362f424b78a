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

// transactionHandler handles HTTP requests related to transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers routes related to transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("/income", h.createIncome)
		transactions.POST("/expense", h.createExpense)
		transactions.POST("/exchange", h.createExchange)
		transactions.POST("/:id/approve", h.approveExpense)
		transactions.POST("/:id/cancel", h.cancelTransaction)
		transactions.GET("/:id", h.getTransaction)
		transactions.GET("", h.listTransactions)
	}
}

func (h *transactionHandler) createIncome(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateIncome", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.CreateIncome(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create income transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.CreateExpense(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create expense transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) createExchange(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExchange", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.CreateExchange(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create exchange transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) approveExpense(c *gin.Context) {
	transactionID := c.Param("id")
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.ApproveExpense(c.Request.Context(), transactionID, actor)
	if err != nil {
		respondError(c, err, "Failed to approve expense")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) cancelTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	var req dto.CancelTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CancelTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := mustActor(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.CancelTransaction(c.Request.Context(), transactionID, req.Reason, actor)
	if err != nil {
		respondError(c, err, "Failed to cancel transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	transactionID := c.Param("id")

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, err, "Failed to retrieve transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) listTransactions(c *gin.Context) {
	limit, offset := paginationParams(c)
	params := dto.ListTransactionsParams{
		Kind:   strings.ToUpper(c.Query("kind")),
		Status: strings.ToUpper(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	}
	if kind := c.Query("owner_kind"); kind != "" {
		params.Owner = &dto.OwnerRef{Kind: strings.ToUpper(kind), ID: c.Query("owner_id")}
	}

	transactions, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponses(transactions))
}
