package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Dataset Metrics
	DatasetLoadDuration  prometheus.Histogram
	DatasetRecordsLoaded prometheus.Gauge
	DatasetRowsDropped   prometheus.Counter
	DatasetCacheHits     prometheus.Counter
	DatasetCacheMisses   prometheus.Counter
	DatasetErrorsTotal   *prometheus.CounterVec

	// Seeding Metrics
	SeedRecordsTotal prometheus.Counter
	SeedDuration     prometheus.Histogram
	SeedBatchSize    prometheus.Histogram

	// Store Metrics
	StoreOpDuration  *prometheus.HistogramVec
	StoreErrorsTotal *prometheus.CounterVec

	// Aggregation Metrics
	AggregationDuration *prometheus.HistogramVec
	AggregationsSkipped *prometheus.CounterVec
}

// NewCollector creates a new metrics collector
func NewCollector(namespace string) *Collector {
	return &Collector{
		APIRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		DatasetLoadDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dataset_load_duration_seconds",
				Help:      "Duration of full dataset loads (query, normalize, clean) in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),

		DatasetRecordsLoaded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_records_loaded",
				Help:      "Number of records in the most recently loaded table",
			},
		),

		DatasetRowsDropped: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_rows_dropped_total",
				Help:      "Total number of rows dropped for unparseable dates during cleaning",
			},
		),

		DatasetCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_cache_hits_total",
				Help:      "Loads served from the memoized table",
			},
		),

		DatasetCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_cache_misses_total",
				Help:      "Loads that required querying the store",
			},
		),

		DatasetErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_errors_total",
				Help:      "Total number of dataset load errors by kind",
			},
			[]string{"kind"},
		),

		SeedRecordsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "seed_records_inserted_total",
				Help:      "Total number of records bulk-inserted during seeding",
			},
		),

		SeedDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "seed_duration_seconds",
				Help:      "Duration of seed operations in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
		),

		SeedBatchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "seed_batch_size",
				Help:      "Number of records per batch during seeding",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000},
			},
		),

		StoreOpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_op_duration_seconds",
				Help:      "Document store operation duration in seconds by operation",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"operation"},
		),

		StoreErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Total number of document store errors by operation",
			},
			[]string{"operation"},
		),

		AggregationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregation_duration_seconds",
				Help:      "Duration of chart aggregations in seconds by aggregation",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"aggregation"},
		),

		AggregationsSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aggregations_skipped_total",
				Help:      "Aggregations skipped because a required column was absent",
			},
			[]string{"aggregation"},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments API error counter
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordDatasetError increments dataset error counter
func (c *Collector) RecordDatasetError(kind string) {
	c.DatasetErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordStoreError increments document store error counter
func (c *Collector) RecordStoreError(operation string) {
	c.StoreErrorsTotal.WithLabelValues(operation).Inc()
}

// RecordSkippedAggregation increments the skip counter for an aggregation
func (c *Collector) RecordSkippedAggregation(aggregation string) {
	c.AggregationsSkipped.WithLabelValues(aggregation).Inc()
}
