package api

import (
	"context"

	"github.com/nithyasree/veritas/internal/config"
	"github.com/nithyasree/veritas/internal/repository"
	"github.com/nithyasree/veritas/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the router. ctx bounds the lifetime of background
// goroutines owned by middleware, such as the rate limiter sweeper.
func SetupRoutes(
	ctx context.Context,
	cfg *config.Config,
	analysisSvc *service.AnalysisService,
	reportsRepo *repository.ReportsRepository,
) *gin.Engine {
	router := gin.Default()

	handler := NewHandler(cfg, analysisSvc, reportsRepo)

	rateLimiter := NewRateLimiter(ctx, cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/analyze", handler.Analyze)
		api.GET("/reports/:reportId", handler.GetReport)
		api.GET("/reports/:reportId/status", handler.GetReportStatus)
		api.GET("/reports/:reportId/pairs/:pairId", handler.GetPairDetails)
		// wildcard: result ids are reportId/pairId and contain a slash
		api.GET("/results/*resultId", handler.GetResultDetails)
	}

	return router
}
