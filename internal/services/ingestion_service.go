package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/repository"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// IngestionService seeds the document store from a flat CSV file
type IngestionService struct {
	repo    repository.WeatherRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// SeedResult contains seeding statistics
type SeedResult struct {
	TotalRows     int
	SeededRecords int
	SkippedRows   int
	AlreadySeeded bool
	Duration      time.Duration
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.WeatherRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// SeedFromCSV bulk-loads the store from a CSV file when the target
// collection is empty. With replace set, the collection is dropped first;
// the emptiness check alone does not guard against a partially seeded
// store left behind by an earlier crash.
func (s *IngestionService) SeedFromCSV(ctx context.Context, path string, batchSize int, replace bool) (*SeedResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[SEED_START] Starting seed from CSV", logging.Fields{
		"seed_file":  path,
		"batch_size": batchSize,
		"replace":    replace,
	})

	result := &SeedResult{}

	if replace {
		if err := s.repo.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear collection before seeding: %w", err)
		}
	} else {
		count, err := s.repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			result.AlreadySeeded = true
			result.Duration = time.Since(startTime)

			s.logger.Info(ctx, "[SEED_SKIP] Collection not empty, skipping seed", logging.Fields{
				"existing_records": count,
			})
			return result, nil
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &models.DataUnavailableError{
			Kind: models.ErrMissingFile,
			Err:  fmt.Errorf("failed to open seed file: %w", err),
		}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are handled per-field below

	header, err := reader.Read()
	if err != nil {
		return nil, &models.DataUnavailableError{
			Kind: models.ErrMalformedSchema,
			Err:  fmt.Errorf("failed to read seed file header: %w", err),
		}
	}

	if err := validateHeader(header); err != nil {
		return nil, err
	}

	batch := make([]models.RawDocument, 0, batchSize)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A short or over-long row; skip it like any unparseable record.
			result.TotalRows++
			result.SkippedRows++
			continue
		}

		result.TotalRows++

		doc := make(models.RawDocument, len(header))
		for i, field := range header {
			if i < len(row) {
				doc[field] = row[i]
			}
		}
		batch = append(batch, doc)

		if len(batch) >= batchSize {
			inserted, err := s.repo.InsertBatch(ctx, batch)
			if err != nil {
				return nil, fmt.Errorf("failed to insert seed batch: %w", err)
			}
			result.SeededRecords += inserted
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		inserted, err := s.repo.InsertBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to insert final seed batch: %w", err)
		}
		result.SeededRecords += inserted
	}

	result.Duration = time.Since(startTime)
	s.metrics.SeedDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[SEED_COMPLETE] Seed completed", logging.Fields{
		"total_rows":       result.TotalRows,
		"seeded_records":   result.SeededRecords,
		"skipped_rows":     result.SkippedRows,
		"duration_seconds": result.Duration.Seconds(),
	})

	return result, nil
}

// validateHeader requires at least a recognizable date column; without one
// every row would be dropped during cleaning.
func validateHeader(header []string) error {
	for _, field := range header {
		if col, ok := models.CanonicalColumn(field); ok && col == models.ColumnDate {
			return nil
		}
	}
	return &models.DataUnavailableError{
		Kind: models.ErrMalformedSchema,
		Err:  fmt.Errorf("seed file header has no date column: %v", header),
	}
}
