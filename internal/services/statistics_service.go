package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"weather-dashboard/internal/models"
	"weather-dashboard/pkg/logging"
	"weather-dashboard/pkg/metrics"
)

// StatisticsService computes the chart aggregations. Every aggregation is a
// pure function over the cleaned table: none mutate shared state, all can
// run independently and in any order. An aggregation whose required columns
// are absent returns nil (skipped), never an error; one missing column must
// not block unrelated charts.
type StatisticsService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *StatisticsService {
	return &StatisticsService{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ConditionDistribution returns the top-5 weather conditions by count, in
// descending count order. Ties keep the category's first-appearance order.
func (s *StatisticsService) ConditionDistribution(t *models.WeatherTable) []models.CategoryCount {
	defer s.timeAggregation("condition_distribution")()

	if !t.HasColumn(models.ColumnCondition) {
		s.metrics.RecordSkippedAggregation("condition_distribution")
		return nil
	}
	return rankCategories(conditionLabels(t), 5)
}

// FrequencyRanking returns the top-10 weather conditions by count. Fewer
// than 10 distinct categories returns all available, no padding.
func (s *StatisticsService) FrequencyRanking(t *models.WeatherTable) []models.CategoryCount {
	defer s.timeAggregation("frequency_ranking")()

	if !t.HasColumn(models.ColumnCondition) {
		s.metrics.RecordSkippedAggregation("frequency_ranking")
		return nil
	}
	return rankCategories(conditionLabels(t), 10)
}

// correlationFeatures are the numeric columns of the heatmap, in render order.
var correlationFeatures = []models.Column{
	models.ColumnTemperature,
	models.ColumnHumidity,
	models.ColumnPressure,
}

// CorrelationMatrix computes the pairwise Pearson correlation between
// temperature, humidity and pressure. The step requires all three columns
// present; otherwise it is skipped entirely, not partially computed.
func (s *StatisticsService) CorrelationMatrix(t *models.WeatherTable) *models.CorrelationMatrix {
	defer s.timeAggregation("correlation_matrix")()

	if !t.HasColumn(correlationFeatures...) {
		s.metrics.RecordSkippedAggregation("correlation_matrix")
		return nil
	}
	if t.Empty() {
		return nil
	}

	n := len(correlationFeatures)
	result := &models.CorrelationMatrix{
		Features: make([]string, n),
		Matrix:   make([][]float64, n),
	}
	for i, col := range correlationFeatures {
		result.Features[i] = string(col)
		result.Matrix[i] = make([]float64, n)
		result.Matrix[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			xs, ys := pairedValues(t, correlationFeatures[i], correlationFeatures[j])

			var r float64
			if len(xs) >= 2 {
				r = stat.Correlation(xs, ys, nil)
			}
			if math.IsNaN(r) {
				// Degenerate input (zero variance); undefined maps to 0.
				r = 0
			}
			result.Matrix[i][j] = r
			result.Matrix[j][i] = r
		}
	}

	return result
}

// MonthlyExtremes returns the (min, max) temperature per month, months in
// ascending order. Months with zero records are omitted, not zero-filled.
func (s *StatisticsService) MonthlyExtremes(t *models.WeatherTable) []models.MonthlyExtreme {
	defer s.timeAggregation("monthly_extremes")()

	if !t.HasColumn(models.ColumnDate, models.ColumnTemperature) {
		s.metrics.RecordSkippedAggregation("monthly_extremes")
		return nil
	}

	byMonth := groupTemperaturesByMonth(t)

	extremes := make([]models.MonthlyExtreme, 0, len(byMonth))
	for month, temps := range byMonth {
		low, high := temps[0], temps[0]
		for _, v := range temps[1:] {
			if v < low {
				low = v
			}
			if v > high {
				high = v
			}
		}
		extremes = append(extremes, models.MonthlyExtreme{
			Month:     month,
			MonthName: time.Month(month).String(),
			Min:       low,
			Max:       high,
		})
	}

	sort.Slice(extremes, func(i, j int) bool { return extremes[i].Month < extremes[j].Month })
	return extremes
}

// histogramBuckets is the fixed bucket count of the temperature histogram.
const histogramBuckets = 20

// TemperatureHistogram buckets temperatures into 20 fixed-width counts over
// the observed value range. Empty input yields a zero-length result. A zero
// value range collapses to a single bucket holding every sample.
func (s *StatisticsService) TemperatureHistogram(t *models.WeatherTable) []models.HistogramBucket {
	defer s.timeAggregation("temperature_histogram")()

	if !t.HasColumn(models.ColumnTemperature) {
		s.metrics.RecordSkippedAggregation("temperature_histogram")
		return nil
	}

	values := columnValues(t, models.ColumnTemperature)
	if len(values) == 0 {
		return []models.HistogramBucket{}
	}

	low, high := values[0], values[0]
	for _, v := range values[1:] {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}

	if low == high {
		return []models.HistogramBucket{{Low: low, High: high, Count: len(values)}}
	}

	width := (high - low) / histogramBuckets
	buckets := make([]models.HistogramBucket, histogramBuckets)
	for i := range buckets {
		buckets[i].Low = low + float64(i)*width
		buckets[i].High = low + float64(i+1)*width
	}
	buckets[histogramBuckets-1].High = high

	for _, v := range values {
		idx := int((v - low) / width)
		if idx >= histogramBuckets {
			idx = histogramBuckets - 1
		}
		buckets[idx].Count++
	}

	return buckets
}

// MonthlyVariability returns per-month boxplot statistics: quartiles,
// whiskers at the 1.5×IQR fences, and the outliers beyond them.
func (s *StatisticsService) MonthlyVariability(t *models.WeatherTable) []models.MonthlyBoxplot {
	defer s.timeAggregation("monthly_variability")()

	if !t.HasColumn(models.ColumnDate, models.ColumnTemperature) {
		s.metrics.RecordSkippedAggregation("monthly_variability")
		return nil
	}

	byMonth := groupTemperaturesByMonth(t)

	boxes := make([]models.MonthlyBoxplot, 0, len(byMonth))
	for month, temps := range byMonth {
		sort.Float64s(temps)

		q1 := stat.Quantile(0.25, stat.LinInterp, temps, nil)
		median := stat.Quantile(0.5, stat.LinInterp, temps, nil)
		q3 := stat.Quantile(0.75, stat.LinInterp, temps, nil)

		iqr := q3 - q1
		lowerFence := q1 - 1.5*iqr
		upperFence := q3 + 1.5*iqr

		box := models.MonthlyBoxplot{
			Month:     month,
			MonthName: time.Month(month).String(),
			Q1:        q1,
			Median:    median,
			Q3:        q3,
		}

		// Whiskers extend to the most extreme points inside the fences.
		// Seed them from the opposite ends so the loop can only tighten.
		box.LowerWhisker = temps[len(temps)-1]
		box.UpperWhisker = temps[0]
		for _, v := range temps {
			if v < lowerFence || v > upperFence {
				box.Outliers = append(box.Outliers, v)
				continue
			}
			if v < box.LowerWhisker {
				box.LowerWhisker = v
			}
			if v > box.UpperWhisker {
				box.UpperWhisker = v
			}
		}

		boxes = append(boxes, box)
	}

	sort.Slice(boxes, func(i, j int) bool { return boxes[i].Month < boxes[j].Month })
	return boxes
}

// ScatterWithTrend returns the (x, y) point pairs for two numeric columns
// plus an ordinary-least-squares trend line. With fewer than two points the
// trend is undefined: the series is returned with no trend line, never an
// error.
func (s *StatisticsService) ScatterWithTrend(t *models.WeatherTable, xCol, yCol models.Column) *models.ScatterSeries {
	defer s.timeAggregation("scatter_trend")()

	if !t.HasColumn(xCol, yCol) {
		s.metrics.RecordSkippedAggregation("scatter_trend")
		return nil
	}

	xs, ys := pairedValues(t, xCol, yCol)

	series := &models.ScatterSeries{
		XLabel: string(xCol),
		YLabel: string(yCol),
		Points: make([]models.Point, len(xs)),
	}
	for i := range xs {
		series.Points[i] = models.Point{X: xs[i], Y: ys[i]}
	}

	if len(xs) >= 2 {
		intercept, slope := stat.LinearRegression(xs, ys, nil, false)
		if !math.IsNaN(slope) && !math.IsInf(slope, 0) {
			series.Trend = &models.TrendLine{Slope: slope, Intercept: intercept}
		}
	}

	return series
}

// WindByMonthPivot builds the month × top-10-wind-type count matrix behind
// the stacked bar chart. Only the ten most frequent wind descriptors across
// the whole dataset participate; descriptors outside the top 10 are excluded
// entirely from every cell, not bucketed into an "other" column. Cells are
// zero-filled for absent month/descriptor combinations.
func (s *StatisticsService) WindByMonthPivot(t *models.WeatherTable) *models.WindPivot {
	defer s.timeAggregation("wind_pivot")()

	if !t.HasColumn(models.ColumnDate, models.ColumnWind) {
		s.metrics.RecordSkippedAggregation("wind_pivot")
		return nil
	}

	var winds []string
	for _, rec := range t.Records {
		if rec.Wind != "" {
			winds = append(winds, rec.Wind)
		}
	}

	top := rankCategories(winds, 10)
	if len(top) == 0 {
		return &models.WindPivot{WindTypes: []string{}, Rows: []models.WindPivotRow{}}
	}

	windIndex := make(map[string]int, len(top))
	windTypes := make([]string, len(top))
	for i, c := range top {
		windIndex[c.Label] = i
		windTypes[i] = c.Label
	}

	counts := make(map[int][]int)
	for _, rec := range t.Records {
		idx, ok := windIndex[rec.Wind]
		if !ok {
			continue
		}
		row, exists := counts[rec.Month]
		if !exists {
			row = make([]int, len(windTypes))
			counts[rec.Month] = row
		}
		row[idx]++
	}

	months := make([]int, 0, len(counts))
	for month := range counts {
		months = append(months, month)
	}
	sort.Ints(months)

	pivot := &models.WindPivot{
		WindTypes: windTypes,
		Rows:      make([]models.WindPivotRow, len(months)),
	}
	for i, month := range months {
		pivot.Rows[i] = models.WindPivotRow{
			Month:     month,
			MonthName: time.Month(month).String(),
			Counts:    counts[month],
		}
	}

	return pivot
}

// WordFrequency counts tokens over the whitespace-joined condition text.
// Every row contributes its label once, duplicates included; the word cloud
// weights follow raw row frequency.
func (s *StatisticsService) WordFrequency(t *models.WeatherTable) map[string]int {
	defer s.timeAggregation("word_frequency")()

	if !t.HasColumn(models.ColumnCondition) {
		s.metrics.RecordSkippedAggregation("word_frequency")
		return nil
	}

	freq := make(map[string]int)
	for _, rec := range t.Records {
		for _, token := range strings.Fields(rec.Condition) {
			freq[token]++
		}
	}
	return freq
}

// timeAggregation returns a deferred observer for one aggregation's duration.
func (s *StatisticsService) timeAggregation(name string) func() {
	timer := s.metrics.NewTimer(s.metrics.AggregationDuration.WithLabelValues(name))
	return func() { timer.ObserveDuration() }
}

// rankCategories counts labels and returns the top n in descending count
// order. The sort is stable over first-appearance order, so ties are
// deterministic for a fixed source order.
func rankCategories(labels []string, n int) []models.CategoryCount {
	counts := make(map[string]int)
	var order []string
	for _, label := range labels {
		if label == "" {
			continue
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	ranked := make([]models.CategoryCount, len(order))
	for i, label := range order {
		ranked[i] = models.CategoryCount{Label: label, Count: counts[label]}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func conditionLabels(t *models.WeatherTable) []string {
	labels := make([]string, 0, t.Len())
	for _, rec := range t.Records {
		labels = append(labels, rec.Condition)
	}
	return labels
}

// columnValue extracts one record's value for a numeric column.
func columnValue(rec *models.WeatherRecord, col models.Column) *float64 {
	switch col {
	case models.ColumnTemperature:
		return rec.Temperature
	case models.ColumnHumidity:
		return rec.Humidity
	case models.ColumnPressure:
		return rec.Pressure
	}
	return nil
}

// columnValues collects the non-missing values of a numeric column.
func columnValues(t *models.WeatherTable, col models.Column) []float64 {
	values := make([]float64, 0, t.Len())
	for i := range t.Records {
		if v := columnValue(&t.Records[i], col); v != nil {
			values = append(values, *v)
		}
	}
	return values
}

// pairedValues collects rows where both numeric columns are present.
func pairedValues(t *models.WeatherTable, xCol, yCol models.Column) ([]float64, []float64) {
	var xs, ys []float64
	for i := range t.Records {
		x := columnValue(&t.Records[i], xCol)
		y := columnValue(&t.Records[i], yCol)
		if x != nil && y != nil {
			xs = append(xs, *x)
			ys = append(ys, *y)
		}
	}
	return xs, ys
}

// groupTemperaturesByMonth buckets non-missing temperatures by month number.
func groupTemperaturesByMonth(t *models.WeatherTable) map[int][]float64 {
	byMonth := make(map[int][]float64)
	for _, rec := range t.Records {
		if rec.Temperature == nil || rec.Month == 0 {
			continue
		}
		byMonth[rec.Month] = append(byMonth[rec.Month], *rec.Temperature)
	}
	return byMonth
}
