package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"weather-dashboard/internal/config"
	"weather-dashboard/internal/models"
	"weather-dashboard/internal/repository"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// DatasetService is the source adapter: it produces the cleaned WeatherTable
// from the configured source, memoized per configuration fingerprint. The
// two ingestion strategies (read-through and seed-then-read) share the one
// loading contract and are selected by configuration.
type DatasetService struct {
	repo    repository.WeatherRepository
	seeder  *IngestionService
	cfg     *config.Config
	logger  *logging.StructuredLogger
	metrics *metrics.Collector

	mu        sync.Mutex
	cachedKey string
	cached    *models.WeatherTable
}

// NewDatasetService creates a new dataset service
func NewDatasetService(
	repo repository.WeatherRepository,
	seeder *IngestionService,
	cfg *config.Config,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DatasetService {
	return &DatasetService{
		repo:    repo,
		seeder:  seeder,
		cfg:     cfg,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Load returns the cleaned weather table. An unchanged configuration
// fingerprint reuses the previously loaded table; a config change is the
// only implicit invalidation. Every failure is converted into an empty
// table plus a single DataUnavailableError at this boundary.
func (s *DatasetService) Load(ctx context.Context) (*models.WeatherTable, error) {
	key := fingerprintKey(s.cfg.Fingerprint())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.cachedKey == key {
		s.metrics.DatasetCacheHits.Inc()
		return s.cached, nil
	}
	s.metrics.DatasetCacheMisses.Inc()

	startTime := time.Now()

	table, err := s.load(ctx)
	if err != nil {
		var unavailable *models.DataUnavailableError
		if !errors.As(err, &unavailable) {
			unavailable = &models.DataUnavailableError{Kind: models.ErrConnectionFailure, Err: err}
		}
		kind := unavailable.Kind

		s.metrics.RecordDatasetError(string(kind))
		s.logger.Error(ctx, "[DATASET_LOAD_ERROR] Dataset load failed", logging.Fields{
			"source_mode": s.cfg.Dataset.SourceMode,
			"kind":        string(kind),
		}, err)

		return models.NewWeatherTable(), unavailable
	}

	table.Clean()

	duration := time.Since(startTime)
	s.metrics.DatasetLoadDuration.Observe(duration.Seconds())
	s.metrics.DatasetRecordsLoaded.Set(float64(table.Len()))
	if table.DroppedRows > 0 {
		s.metrics.DatasetRowsDropped.Add(float64(table.DroppedRows))
		s.logger.Warn(ctx, "[DATASET_ROWS_DROPPED] Rows with unparseable dates dropped", logging.Fields{
			"dropped_rows": table.DroppedRows,
		})
	}

	s.logger.Info(ctx, "[DATASET_LOADED] Dataset loaded and cleaned", logging.Fields{
		"source_mode":  s.cfg.Dataset.SourceMode,
		"record_count": table.Len(),
		"dropped_rows": table.DroppedRows,
		"cache_key":    key[:8],
		"duration_ms":  duration.Milliseconds(),
	})

	s.cached = table
	s.cachedKey = key

	return table, nil
}

// Invalidate drops the memoized table so the next Load queries the store.
func (s *DatasetService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	s.cachedKey = ""
}

// HealthCheck verifies the underlying store connection.
func (s *DatasetService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

// load runs the configured strategy: seed-then-read seeds the collection
// from the CSV when it is empty, then both modes read the full collection.
func (s *DatasetService) load(ctx context.Context) (*models.WeatherTable, error) {
	if s.cfg.Dataset.SourceMode == config.ModeSeed {
		_, err := s.seeder.SeedFromCSV(ctx, s.cfg.Dataset.SeedFile, s.cfg.Dataset.SeedBatchSize, false)
		if err != nil {
			return nil, err
		}
	}

	return s.repo.FetchAll(ctx)
}

// fingerprintKey hashes the raw fingerprint so connection credentials never
// appear in logs or responses.
func fingerprintKey(fingerprint string) string {
	sum := sha256.Sum256([]byte(fingerprint))
	return hex.EncodeToString(sum[:])
}
