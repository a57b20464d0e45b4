package routes

import (
	"strategystore/internal/handlers"
	"strategystore/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupStrategyRoutes sets up all routes related to strategy records. Reads
// are open; mutations require a caller identity.
func SetupStrategyRoutes(r *gin.Engine, h *handlers.StrategyHandler, identity middleware.IdentityConfig) {
	strategies := r.Group("/strategies")
	{
		strategies.GET("", h.List)
		strategies.GET("/stats", h.Stats)
		strategies.GET("/stream", h.Stream)
		strategies.GET("/by-id", h.GetByID)
		strategies.GET("/:id", h.Get)
	}

	owned := strategies.Group("", middleware.IdentityMiddleware(identity))
	{
		owned.POST("/minimal", h.CreateMinimal)
		owned.POST("", h.CreateFull)
		owned.PUT("", h.Update)
		owned.DELETE("/by-id", h.DeleteByID)
		owned.DELETE("/:id", h.Delete)
	}
}
