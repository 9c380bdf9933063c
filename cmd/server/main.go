package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sentiment-gateway/backend/internal/config"
	"github.com/sentiment-gateway/backend/internal/controllers"
	"github.com/sentiment-gateway/backend/internal/logger"
	"github.com/sentiment-gateway/backend/internal/metrics"
	"github.com/sentiment-gateway/backend/internal/routes"
	"github.com/sentiment-gateway/backend/internal/services"
)

func main() {
	// Load environment variables before the logger reads LOG_LEVEL
	envErr := godotenv.Load()

	logger.Initialize()
	if envErr != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Set Gin mode
	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	analysisClient := services.NewAnalysisClient(services.AnalysisClientConfig{
		BaseURL:        cfg.AIService.URL,
		AnalyzeTimeout: cfg.AnalyzeTimeout(),
		BatchTimeout:   cfg.BatchTimeout(),
		ProbeTimeout:   cfg.ProbeTimeout(),
		Observer:       m,
	})
	history := services.NewHistoryStore(cfg.History.Capacity)
	analysisController := controllers.NewAnalysisController(analysisClient, history, m)

	r := routes.NewRouter(routes.RouterConfig{CORSOrigin: cfg.Server.CORSOrigin}, analysisController, m)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting sentiment gateway", map[string]interface{}{
		"port":             cfg.Server.Port,
		"gin_mode":         gin.Mode(),
		"ai_service_url":   analysisClient.BaseURL(),
		"history_capacity": history.Capacity(),
	})

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan
	logger.Info("Shutting down server gracefully...", map[string]interface{}{
		"signal": sig.String(),
	})

	// In-flight batch calls may take up to the batch timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.BatchTimeout()+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.Info("Server exited gracefully", nil)
	}
}
