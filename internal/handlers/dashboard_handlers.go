package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/services"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// DashboardHandler handles the chart data API endpoints
type DashboardHandler struct {
	dataset *services.DatasetService
	stats   *services.StatisticsService
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	dataset *services.DatasetService,
	stats *services.StatisticsService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DashboardHandler {
	return &DashboardHandler{
		dataset: dataset,
		stats:   stats,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// NoticeResponse is the single user-visible notice returned when the data
// source is unavailable or empty. Always HTTP 200: a broken store must not
// break the page.
type NoticeResponse struct {
	NoData bool   `json:"no_data"`
	Notice string `json:"notice"`
}

// DashboardCharts holds every chart payload, in page render order. Charts
// whose required columns are absent are omitted, not failed.
type DashboardCharts struct {
	ConditionDistribution []models.CategoryCount    `json:"condition_distribution,omitempty"`
	Correlation           *models.CorrelationMatrix `json:"correlation,omitempty"`
	FrequencyRanking      []models.CategoryCount    `json:"frequency_ranking,omitempty"`
	MonthlyExtremes       []models.MonthlyExtreme   `json:"monthly_extremes,omitempty"`
	TemperatureHistogram  []models.HistogramBucket  `json:"temperature_histogram,omitempty"`
	MonthlyVariability    []models.MonthlyBoxplot   `json:"monthly_variability,omitempty"`
	HumidityScatter       *models.ScatterSeries     `json:"humidity_scatter,omitempty"`
	PressureScatter       *models.ScatterSeries     `json:"pressure_scatter,omitempty"`
	WindPivot             *models.WindPivot         `json:"wind_pivot,omitempty"`
	WordFrequency         map[string]int            `json:"word_frequency,omitempty"`
}

// DashboardResponse is the combined payload behind GET /api/dashboard
type DashboardResponse struct {
	GeneratedAt time.Time        `json:"generated_at"`
	RecordCount int              `json:"record_count"`
	DroppedRows int              `json:"dropped_rows,omitempty"`
	Charts      *DashboardCharts `json:"charts"`
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r, "/api/dashboard")
	if !ok {
		return
	}

	charts := &DashboardCharts{
		ConditionDistribution: h.stats.ConditionDistribution(table),
		Correlation:           h.stats.CorrelationMatrix(table),
		FrequencyRanking:      h.stats.FrequencyRanking(table),
		MonthlyExtremes:       h.stats.MonthlyExtremes(table),
		TemperatureHistogram:  h.stats.TemperatureHistogram(table),
		MonthlyVariability:    h.stats.MonthlyVariability(table),
		HumidityScatter:       h.stats.ScatterWithTrend(table, models.ColumnHumidity, models.ColumnTemperature),
		PressureScatter:       h.stats.ScatterWithTrend(table, models.ColumnPressure, models.ColumnTemperature),
		WindPivot:             h.stats.WindByMonthPivot(table),
		WordFrequency:         h.stats.WordFrequency(table),
	}

	response := DashboardResponse{
		GeneratedAt: time.Now().UTC(),
		RecordCount: table.Len(),
		DroppedRows: table.DroppedRows,
		Charts:      charts,
	}

	h.metrics.RecordAPIRequest("/api/dashboard", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetConditionDistribution handles GET /api/charts/conditions
func (h *DashboardHandler) GetConditionDistribution(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r, "/api/charts/conditions")
	if !ok {
		return
	}

	if result := h.stats.ConditionDistribution(table); result != nil {
		h.sendChart(w, r, result)
		return
	}
	h.sendSkipped(w, r)
}

// GetCorrelation handles GET /api/charts/correlation
func (h *DashboardHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r, "/api/charts/correlation")
	if !ok {
		return
	}

	if result := h.stats.CorrelationMatrix(table); result != nil {
		h.sendChart(w, r, result)
		return
	}
	h.sendSkipped(w, r)
}

// GetFrequencyRanking handles GET /api/charts/frequency
func (h *DashboardHandler) GetFrequencyRanking(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r, "/api/charts/frequency")
	if !ok {
		return
	}

	if result := h.stats.FrequencyRanking(table); result != nil {
		h.sendChart(w, r, result)
		return
	}
	h.sendSkipped(w, r)
}

// GetMonthlyExtremes handles GET /api/charts/monthly-extremes
func (h *DashboardHandler) GetMonthlyExtremes(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r, "/api/charts/monthly-extremes")
	if !ok {
		return
	}

	if result := h.stats.MonthlyExtremes(table); result != nil {
		h.sendChart(w, r, result)
		return
	}
	h.sendSkipped(w, r)
}

// GetTemperatureHistogram handles GET /api/charts/temperature-histogram
func (h *DashboardHandler) GetTemperatureHistogram(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r, "/api/charts/temperature-histogram")
	if !ok {
		return
	}

	if result := h.stats.TemperatureHistogram(table); result != nil {
		h.sendChart(w, r, result)
		return
	}
	h.sendSkipped(w, r)
}

// GetMonthlyVariability handles GET /api/charts/monthly-variability
func (h *DashboardHandler) GetMonthlyVariability(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r, "/api/charts/monthly-variability")
	if !ok {
		return
	}

	if result := h.stats.MonthlyVariability(table); result != nil {
		h.sendChart(w, r, result)
		return
	}
	h.sendSkipped(w, r)
}

// scatterPairs maps the path parameter onto (x, y) column pairs.
var scatterPairs = map[string][2]models.Column{
	"humidity-temperature": {models.ColumnHumidity, models.ColumnTemperature},
	"pressure-temperature": {models.ColumnPressure, models.ColumnTemperature},
}

// GetScatter handles GET /api/charts/scatter/{pair}
func (h *DashboardHandler) GetScatter(w http.ResponseWriter, r *http.Request) {
	pair := mux.Vars(r)["pair"]
	cols, ok := scatterPairs[pair]
	if !ok {
		h.sendError(w, r, "unknown scatter pair, expected humidity-temperature or pressure-temperature", http.StatusNotFound)
		return
	}

	table, loaded := h.loadTable(w, r, "/api/charts/scatter")
	if !loaded {
		return
	}

	if result := h.stats.ScatterWithTrend(table, cols[0], cols[1]); result != nil {
		h.sendChart(w, r, result)
		return
	}
	h.sendSkipped(w, r)
}

// GetWindPivot handles GET /api/charts/wind-pivot
func (h *DashboardHandler) GetWindPivot(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r, "/api/charts/wind-pivot")
	if !ok {
		return
	}

	if result := h.stats.WindByMonthPivot(table); result != nil {
		h.sendChart(w, r, result)
		return
	}
	h.sendSkipped(w, r)
}

// GetWordFrequency handles GET /api/charts/word-frequency
func (h *DashboardHandler) GetWordFrequency(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r, "/api/charts/word-frequency")
	if !ok {
		return
	}

	if result := h.stats.WordFrequency(table); result != nil {
		h.sendChart(w, r, result)
		return
	}
	h.sendSkipped(w, r)
}

// RefreshDataset handles POST /api/dataset/refresh
func (h *DashboardHandler) RefreshDataset(w http.ResponseWriter, r *http.Request) {
	h.dataset.Invalidate()

	h.logger.Info(r.Context(), "[DATASET_REFRESH] Memoized table invalidated", logging.Fields{})
	h.metrics.RecordAPIRequest("/api/dataset/refresh", "POST", "202")
	h.sendJSON(w, map[string]string{"status": "refresh scheduled on next load"}, http.StatusAccepted)
}

// HealthCheck handles GET /health
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.dataset.HealthCheck(ctx); err != nil {
		status["status"] = "degraded"
		status["store"] = err.Error()
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// loadTable loads the memoized table and handles the two short-circuit
// outcomes: data source failure and an empty dataset. Both are reported as
// a single notice, never an error status.
func (h *DashboardHandler) loadTable(w http.ResponseWriter, r *http.Request, endpoint string) (*models.WeatherTable, bool) {
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	table, err := h.dataset.Load(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "[API_LOAD_ERROR] Dataset unavailable", logging.Fields{
			"endpoint": endpoint,
		}, err)
		h.metrics.RecordAPIError("data_unavailable", endpoint)
		h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
		h.sendJSON(w, NoticeResponse{NoData: true, Notice: "data loading error: " + err.Error()}, http.StatusOK)
		return nil, false
	}

	if table.Empty() {
		h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
		h.sendJSON(w, NoticeResponse{NoData: true, Notice: "no data available"}, http.StatusOK)
		return nil, false
	}

	return table, true
}

// sendChart sends a chart payload
func (h *DashboardHandler) sendChart(w http.ResponseWriter, r *http.Request, data interface{}) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, "200")
	h.sendJSON(w, data, http.StatusOK)
}

// sendSkipped reports a chart whose required columns are absent from the
// source. Skipping is per-chart: other endpoints stay unaffected.
func (h *DashboardHandler) sendSkipped(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, "204")
	w.WriteHeader(http.StatusNoContent)
}

// sendJSON sends a JSON response
func (h *DashboardHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// The status line is already committed; the failure can only be
		// logged and counted, not resent.
		h.metrics.RecordAPIError("encode_failure", "response")
		h.logger.Error(context.Background(), "[API_ENCODE_ERROR] Failed to encode response body", logging.Fields{
			"status_code": statusCode,
		}, err)
	}
}

// sendError sends an error response
func (h *DashboardHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all dashboard API routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/dashboard", h.GetDashboard).Methods("GET")
	router.HandleFunc("/api/charts/conditions", h.GetConditionDistribution).Methods("GET")
	router.HandleFunc("/api/charts/correlation", h.GetCorrelation).Methods("GET")
	router.HandleFunc("/api/charts/frequency", h.GetFrequencyRanking).Methods("GET")
	router.HandleFunc("/api/charts/monthly-extremes", h.GetMonthlyExtremes).Methods("GET")
	router.HandleFunc("/api/charts/temperature-histogram", h.GetTemperatureHistogram).Methods("GET")
	router.HandleFunc("/api/charts/monthly-variability", h.GetMonthlyVariability).Methods("GET")
	router.HandleFunc("/api/charts/scatter/{pair}", h.GetScatter).Methods("GET")
	router.HandleFunc("/api/charts/wind-pivot", h.GetWindPivot).Methods("GET")
	router.HandleFunc("/api/charts/word-frequency", h.GetWordFrequency).Methods("GET")
	router.HandleFunc("/api/dataset/refresh", h.RefreshDataset).Methods("POST")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/docs", SwaggerUI).Methods("GET")
}
