package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// Config holds document store connection configuration
type Config struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

// MongoDB wraps a mongo collection with monitoring and metrics
type MongoDB struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
	config     *Config
}

// NewMongoDB creates a new document store connection
func NewMongoDB(cfg *Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to open store connection: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	logger.Info(context.Background(), "[STORE_INIT] Document store connection established", logging.Fields{
		"database":        cfg.Database,
		"collection":      cfg.Collection,
		"connect_timeout": cfg.ConnectTimeout.String(),
		"query_timeout":   cfg.QueryTimeout.String(),
	})

	return &MongoDB{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     logger,
		metrics:    metricsCollector,
		config:     cfg,
	}, nil
}

// Close disconnects from the document store
func (m *MongoDB) Close(ctx context.Context) error {
	m.logger.Info(ctx, "[STORE_CLOSE] Closing document store connection", logging.Fields{
		"database": m.config.Database,
	})
	return m.client.Disconnect(ctx)
}

// FindAll retrieves every document in the collection
func (m *MongoDB) FindAll(ctx context.Context) ([]bson.M, error) {
	ctx, cancel := m.withQueryTimeout(ctx)
	defer cancel()

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		m.metrics.StoreOpDuration.WithLabelValues("find_all").Observe(duration.Seconds())

		m.logger.Debug(ctx, "[STORE_FIND] Find executed", logging.Fields{
			"operation":   "find_all",
			"duration_ms": duration.Milliseconds(),
		})
	}()

	cursor, err := m.collection.Find(ctx, bson.D{})
	if err != nil {
		m.metrics.RecordStoreError("find_all")
		m.logger.Error(ctx, "[STORE_FIND_ERROR] Find failed", logging.Fields{
			"operation": "find_all",
		}, err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		m.metrics.RecordStoreError("decode")
		m.logger.Error(ctx, "[STORE_DECODE_ERROR] Cursor decode failed", logging.Fields{
			"operation": "find_all",
		}, err)
		return nil, err
	}

	return docs, nil
}

// Count returns the number of documents in the collection
func (m *MongoDB) Count(ctx context.Context) (int64, error) {
	ctx, cancel := m.withQueryTimeout(ctx)
	defer cancel()

	timer := time.Now()
	defer func() {
		m.metrics.StoreOpDuration.WithLabelValues("count").Observe(time.Since(timer).Seconds())
	}()

	count, err := m.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		m.metrics.RecordStoreError("count")
		m.logger.Error(ctx, "[STORE_COUNT_ERROR] Count failed", logging.Fields{
			"operation": "count",
		}, err)
		return 0, err
	}

	return count, nil
}

// InsertMany bulk-inserts documents into the collection
func (m *MongoDB) InsertMany(ctx context.Context, docs []interface{}) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	ctx, cancel := m.withQueryTimeout(ctx)
	defer cancel()

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		m.metrics.StoreOpDuration.WithLabelValues("insert_many").Observe(duration.Seconds())
		m.metrics.SeedBatchSize.Observe(float64(len(docs)))

		m.logger.Debug(ctx, "[STORE_INSERT] Bulk insert completed", logging.Fields{
			"count":       len(docs),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	result, err := m.collection.InsertMany(ctx, docs)
	if err != nil {
		m.metrics.RecordStoreError("insert_many")
		m.logger.Error(ctx, "[STORE_INSERT_ERROR] Bulk insert failed", logging.Fields{
			"count": len(docs),
		}, err)
		return 0, err
	}

	return len(result.InsertedIDs), nil
}

// Drop removes the collection. Used by the seeder's replace mode only.
func (m *MongoDB) Drop(ctx context.Context) error {
	ctx, cancel := m.withQueryTimeout(ctx)
	defer cancel()

	m.logger.Warn(ctx, "[STORE_DROP] Dropping collection", logging.Fields{
		"database":   m.config.Database,
		"collection": m.config.Collection,
	})

	if err := m.collection.Drop(ctx); err != nil {
		m.metrics.RecordStoreError("drop")
		return fmt.Errorf("failed to drop collection: %w", err)
	}

	return nil
}

// HealthCheck performs a document store health check
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := m.client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}

	return nil
}

// withQueryTimeout bounds store round trips so a hung connection cannot
// hang a render indefinitely.
func (m *MongoDB) withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.config.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.config.QueryTimeout)
}
