package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"weather-dashboard/internal/config"
	"weather-dashboard/internal/repository"
	"weather-dashboard/internal/services"
	"weather-dashboard/pkg/database"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

func main() {
	// Parse command-line flags
	seedFile := flag.String("seed-file", "", "CSV file to seed the collection from (defaults to SEED_FILE)")
	batchSize := flag.Int("batch-size", 1000, "Number of records to insert in each batch")
	replace := flag.Bool("replace", false, "Drop the collection before seeding (recovers a partially seeded store)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	path := *seedFile
	if path == "" {
		path = cfg.Dataset.SeedFile
	}

	// Initialize logger
	logLevel := logging.InfoLevel
	if cfg.Logging.Level == "debug" {
		logLevel = logging.DebugLevel
	}

	logger := logging.NewStructuredLogger("weather-seeder", "1.0.0", logLevel)

	ctx := context.Background()
	logger.Info(ctx, "[SEEDER_START] Starting weather collection seeding", logging.Fields{
		"version":    "1.0.0",
		"seed_file":  path,
		"batch_size": *batchSize,
		"replace":    *replace,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("weather_seeder")

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
		logger.Fatal(ctx, "[SEEDER_ERROR] Failed to connect to document store", logging.Fields{}, err)
	}
	defer db.Close(context.Background())

	// Initialize repository and ingestion service
	weatherRepo := repository.NewWeatherRepository(db, logger, metricsCollector)
	ingestionService := services.NewIngestionService(weatherRepo, logger, metricsCollector)

	// Seed data
	result, err := ingestionService.SeedFromCSV(ctx, path, *batchSize, *replace)
	if err != nil {
		logger.Fatal(ctx, "[SEED_ERROR] Seeding failed", logging.Fields{
			"seed_file": path,
		}, err)
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("SEEDING COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	if result.AlreadySeeded {
		fmt.Println("Collection already seeded; nothing inserted (use -replace to reseed)")
	} else {
		fmt.Printf("Total Rows:      %d\n", result.TotalRows)
		fmt.Printf("Seeded Records:  %d\n", result.SeededRecords)
		fmt.Printf("Skipped Rows:    %d\n", result.SkippedRows)
		fmt.Printf("Duration:        %v\n", result.Duration)
		if result.Duration.Seconds() > 0 {
			fmt.Printf("Records/Second:  %.2f\n", float64(result.SeededRecords)/result.Duration.Seconds())
		}
	}

	logger.Info(ctx, "[SEEDER_COMPLETE] Seeding completed successfully", logging.Fields{
		"total_rows":       result.TotalRows,
		"seeded_records":   result.SeededRecords,
		"skipped_rows":     result.SkippedRows,
		"already_seeded":   result.AlreadySeeded,
		"duration_seconds": result.Duration.Seconds(),
	})
}
