package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"weather-dashboard/internal/config"
	"weather-dashboard/internal/handlers"
	"weather-dashboard/internal/repository"
	"weather-dashboard/internal/services"
	"weather-dashboard/pkg/database"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logLevel := logging.InfoLevel
	if cfg.Logging.Level == "debug" {
		logLevel = logging.DebugLevel
	}

	logger := logging.NewStructuredLogger("weather-dashboard", "1.0.0", logLevel)

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting weather dashboard API server", logging.Fields{
		"version":     "1.0.0",
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_name":     cfg.Store.Database,
		"collection":  cfg.Store.Collection,
		"source_mode": cfg.Dataset.SourceMode,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("weather_dashboard")

	// Initialize document store
	dbConfig := &database.Config{
		URI:            cfg.Store.URI,
		Database:       cfg.Store.Database,
		Collection:     cfg.Store.Collection,
		ConnectTimeout: cfg.Store.ConnectTimeout,
		QueryTimeout:   cfg.Store.QueryTimeout,
	}

	db, err := database.NewMongoDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to document store", logging.Fields{}, err)
	}
	defer db.Close(context.Background())

	// Initialize repository
	weatherRepo := repository.NewWeatherRepository(db, logger, metricsCollector)

	// Initialize services
	ingestionService := services.NewIngestionService(weatherRepo, logger, metricsCollector)
	datasetService := services.NewDatasetService(weatherRepo, ingestionService, cfg, logger, metricsCollector)
	statsService := services.NewStatisticsService(logger, metricsCollector)

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(datasetService, statsService, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()

	// Register routes
	dashboardHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
