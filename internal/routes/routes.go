package routes

import (
	"net/http"

	"grapher_backend/internal/handlers"
	"grapher_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the HTTP API under /api/v1.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	requireAuth gin.HandlerFunc,
) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, requireAuth)
		appHandlers.UserHandler.RegisterRoutes(api, requireAuth)
		appHandlers.VerificationHandler.RegisterRoutes(api, requireAuth)
		appHandlers.WizardHandler.RegisterRoutes(api, requireAuth)
		appHandlers.ProfileHandler.RegisterRoutes(api)
		appHandlers.NewsletterHandler.RegisterRoutes(api)
	}
	logger.Info("http routes registered", "routes", len(ginRouter.Routes()))
}
