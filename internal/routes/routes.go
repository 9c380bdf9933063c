package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sentiment-gateway/backend/internal/controllers"
	"github.com/sentiment-gateway/backend/internal/metrics"
	"github.com/sentiment-gateway/backend/internal/middleware"
)

type RouterConfig struct {
	CORSOrigin string
}

// NewRouter builds the gin engine with middleware and all routes
func NewRouter(cfg RouterConfig, analysisController *controllers.AnalysisController, m *metrics.Metrics) *gin.Engine {
	// Create router without default middleware
	r := gin.New()

	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(middleware.CustomLoggerMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigin))
	r.Use(middleware.RecoveryMiddleware())
	if m != nil {
		r.Use(middleware.MetricsMiddleware(m))
	}

	SetupRoutes(r, analysisController, m)
	return r
}

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, analysisController *controllers.AnalysisController, m *metrics.Metrics) {
	r.GET("/health", analysisController.Health)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := r.Group("/api")
	{
		api.POST("/analyze", analysisController.Analyze)
		api.POST("/batch-analyze", analysisController.BatchAnalyze)
		api.GET("/history", analysisController.GetHistory)
		api.GET("/stats", analysisController.GetStats)

		aiStatus := api.Group("/ai-status")
		{
			aiStatus.GET("", analysisController.GetAIStatus)
			aiStatus.GET("/calls", analysisController.GetAICalls)
		}
	}

	r.NoRoute(controllers.NotFound)
}
