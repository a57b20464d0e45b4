package routes

import (
	"net/http"
	"strings"
	"time"

	"strategystore/internal/handlers"
	"strategystore/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps is everything the router needs.
type Deps struct {
	Store          handlers.StrategyStore
	Stream         handlers.Streamer
	Identity       middleware.IdentityConfig
	RateLimit      middleware.RateLimiterConfig
	AllowedOrigins string
}

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Any("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))
	r.Use(middleware.RateLimiterMiddleware(deps.RateLimit))

	SetupStrategyRoutes(r, handlers.NewStrategyHandler(deps.Store, deps.Stream), deps.Identity)
	return r
}

// corsConfig allows the comma-separated origins in allowed, or none.
func corsConfig(allowed string) cors.Config {
	var origins []string
	for _, o := range strings.Split(allowed, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type", "Content-Length", "Authorization", "Origin", middleware.CallerHeader},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
	}
	return cfg
}
