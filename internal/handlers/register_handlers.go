package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/fxdesk/fx_backoffice/internal/core/ports/services"
	"github.com/fxdesk/fx_backoffice/internal/middleware"
	"github.com/fxdesk/fx_backoffice/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	// Every v1 call must name the acting operator; mutations are attributed to it
	v1 := r.Group("/api/v1", middleware.ActorMiddleware())

	registerCurrencyRoutes(v1, services.Currency)
	registerExchangeRateRoutes(v1, services.ExchangeRate)
	registerBalanceRoutes(v1, services.Balance)
	registerTransactionRoutes(v1, services.Transaction)
	registerTransferRoutes(v1, services.Transfer)
	registerReconciliationRoutes(v1, services.Reconciliation)
}
