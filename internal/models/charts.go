package models

// Chart-ready aggregation outputs. Each type maps one-to-one onto a renderer
// input shape: category→value pairs, matrices, or point lists.

// CategoryCount is one category→count pair of a ranked distribution.
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CorrelationMatrix holds pairwise Pearson correlations between features.
// Matrix[i][j] correlates Features[i] with Features[j].
type CorrelationMatrix struct {
	Features []string    `json:"features"`
	Matrix   [][]float64 `json:"matrix"`
}

// MonthlyExtreme is the (min, max) temperature pair for one month.
type MonthlyExtreme struct {
	Month     int     `json:"month"`
	MonthName string  `json:"month_name"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// HistogramBucket is one fixed-width count bucket of a histogram.
type HistogramBucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// MonthlyBoxplot holds per-month order statistics: quartiles, whiskers at
// the standard 1.5×IQR fences, and the points beyond them.
type MonthlyBoxplot struct {
	Month        int       `json:"month"`
	MonthName    string    `json:"month_name"`
	LowerWhisker float64   `json:"lower_whisker"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers,omitempty"`
}

// Point is a single scatter point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TrendLine is an ordinary-least-squares linear fit over a scatter series.
type TrendLine struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// ScatterSeries is a point list with an optional trend line. Trend is nil
// when fewer than two points were available for the fit.
type ScatterSeries struct {
	XLabel string     `json:"x_label"`
	YLabel string     `json:"y_label"`
	Points []Point    `json:"points"`
	Trend  *TrendLine `json:"trend,omitempty"`
}

// WindPivotRow is one month's counts, positionally aligned with the parent
// pivot's WindTypes. Cells are zero-filled for absent combinations.
type WindPivotRow struct {
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
	Counts    []int  `json:"counts"`
}

// WindPivot is the month × top-10-wind-type count matrix feeding the
// stacked bar chart. Descriptors outside the overall top 10 are excluded
// entirely, not bucketed into an "other" column.
type WindPivot struct {
	WindTypes []string       `json:"wind_types"`
	Rows      []WindPivotRow `json:"rows"`
}
