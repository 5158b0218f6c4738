package repository

import (
	"context"
	"fmt"

	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/database"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// WeatherRepository provides data access for the weather collection
type WeatherRepository interface {
	// FetchAll queries every record and normalizes it to the canonical
	// schema. The store's internal identifier is stripped.
	FetchAll(ctx context.Context) (*models.WeatherTable, error)

	// Count returns the number of records in the collection. Seeding's
	// emptiness check is built on this; it guards only total emptiness.
	Count(ctx context.Context) (int64, error)

	// InsertBatch bulk-inserts raw documents, returning the inserted count.
	InsertBatch(ctx context.Context, docs []models.RawDocument) (int, error)

	// Clear drops the collection (seeder replace mode).
	Clear(ctx context.Context) error

	// HealthCheck verifies the store connection.
	HealthCheck(ctx context.Context) error
}

// weatherRepository implements WeatherRepository
type weatherRepository struct {
	db      *database.MongoDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewWeatherRepository creates a new weather repository
func NewWeatherRepository(db *database.MongoDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) WeatherRepository {
	return &weatherRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// FetchAll queries all documents and normalizes them into a WeatherTable
func (r *weatherRepository) FetchAll(ctx context.Context) (*models.WeatherTable, error) {
	docs, err := r.db.FindAll(ctx)
	if err != nil {
		return nil, &models.DataUnavailableError{
			Kind: models.ErrConnectionFailure,
			Err:  fmt.Errorf("failed to query weather collection: %w", err),
		}
	}

	raw := make([]models.RawDocument, len(docs))
	for i, doc := range docs {
		raw[i] = models.RawDocument(doc)
	}

	table := models.NewTableFromDocuments(raw)

	r.logger.Debug(ctx, "[REPO_FETCH_ALL] Collection fetched", logging.Fields{
		"record_count": table.Len(),
		"columns":      len(table.Columns),
	})

	return table, nil
}

// Count returns the collection's document count
func (r *weatherRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.db.Count(ctx)
	if err != nil {
		return 0, &models.DataUnavailableError{
			Kind: models.ErrConnectionFailure,
			Err:  fmt.Errorf("failed to count weather collection: %w", err),
		}
	}
	return count, nil
}

// InsertBatch bulk-inserts raw documents
func (r *weatherRepository) InsertBatch(ctx context.Context, docs []models.RawDocument) (int, error) {
	payload := make([]interface{}, len(docs))
	for i, doc := range docs {
		payload[i] = doc
	}

	inserted, err := r.db.InsertMany(ctx, payload)
	if err != nil {
		return 0, &models.DataUnavailableError{
			Kind: models.ErrConnectionFailure,
			Err:  fmt.Errorf("failed to insert weather batch: %w", err),
		}
	}

	r.metrics.SeedRecordsTotal.Add(float64(inserted))

	return inserted, nil
}

// Clear drops the collection
func (r *weatherRepository) Clear(ctx context.Context) error {
	return r.db.Drop(ctx)
}

// HealthCheck performs a repository health check
func (r *weatherRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
