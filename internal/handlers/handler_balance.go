package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fxdesk/fx_backoffice/internal/core/domain"
	portssvc "github.com/fxdesk/fx_backoffice/internal/core/ports/services"
	"github.com/fxdesk/fx_backoffice/internal/dto"
)

// balanceHandler handles HTTP requests related to balances and their history.
type balanceHandler struct {
	balanceService portssvc.BalanceSvcFacade
}

func newBalanceHandler(bs portssvc.BalanceSvcFacade) *balanceHandler {
	return &balanceHandler{balanceService: bs}
}

// registerBalanceRoutes registers routes related to balances.
func registerBalanceRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvcFacade) {
	h := newBalanceHandler(balanceService)

	balances := rg.Group("/balances")
	{
		balances.GET("/:kind/:id", h.listBalances)
		balances.GET("/:kind/:id/:currency", h.getBalance)
		balances.GET("/:kind/:id/:currency/history", h.listHistory)
	}
}

// ownerFromPath builds the owner reference from path parameters.
func ownerFromPath(c *gin.Context) (domain.Owner, bool) {
	owner := domain.Owner{
		Kind: domain.OwnerKind(strings.ToUpper(c.Param("kind"))),
		ID:   c.Param("id"),
	}
	if !owner.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner kind must be BRANCH or VAULT with a non-empty id"})
		return domain.Owner{}, false
	}
	return owner, true
}

func (h *balanceHandler) listBalances(c *gin.Context) {
	owner, ok := ownerFromPath(c)
	if !ok {
		return
	}

	balances, err := h.balanceService.ListBalances(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err, "Failed to list balances")
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceResponses(balances))
}

func (h *balanceHandler) getBalance(c *gin.Context) {
	owner, ok := ownerFromPath(c)
	if !ok {
		return
	}
	currencyCode := strings.ToUpper(c.Param("currency"))

	balance, err := h.balanceService.GetBalance(c.Request.Context(), owner, currencyCode)
	if err != nil {
		respondError(c, err, "Failed to retrieve balance")
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceResponse(balance))
}

func (h *balanceHandler) listHistory(c *gin.Context) {
	owner, ok := ownerFromPath(c)
	if !ok {
		return
	}
	currencyCode := strings.ToUpper(c.Param("currency"))
	limit, offset := paginationParams(c)

	entries, err := h.balanceService.ListHistory(c.Request.Context(), owner, currencyCode, limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list balance history")
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceHistoryEntryResponses(entries))
}
