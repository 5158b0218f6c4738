package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Weather Dashboard API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	chartGet := func(summary, description string) map[string]interface{} {
		return map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     summary,
				"description": description,
				"responses": map[string]interface{}{
					"200": map[string]interface{}{
						"description": "Chart payload, or a no-data notice when the source is unavailable or empty",
					},
					"204": map[string]interface{}{
						"description": "Chart skipped: a required column is absent from the source",
					},
				},
			},
		}
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Weather Dashboard API",
			"description": "Chart-ready aggregations over a historical weather dataset backed by a document store with CSV seeding",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Weather Dashboard Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/dashboard": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get all chart payloads",
					"description": "Every chart's data in page render order; charts with absent columns are omitted",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Dashboard payload or a no-data notice",
						},
					},
				},
			},
			"/api/charts/conditions":            chartGet("Condition distribution", "Top-5 weather conditions by count (pie chart)"),
			"/api/charts/correlation":           chartGet("Correlation matrix", "3×3 Pearson correlation over temperature, humidity and pressure (heatmap)"),
			"/api/charts/frequency":             chartGet("Frequency ranking", "Top-10 weather conditions by count (horizontal bar chart)"),
			"/api/charts/monthly-extremes":      chartGet("Monthly extremes", "Per-month min and max temperature (line chart)"),
			"/api/charts/temperature-histogram": chartGet("Temperature histogram", "20 fixed-width buckets over the observed temperature range"),
			"/api/charts/monthly-variability":   chartGet("Monthly variability", "Per-month quartiles, whiskers and outliers (box plot)"),
			"/api/charts/scatter/{pair}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Scatter with trend line",
					"description": "Point pairs plus an ordinary-least-squares fit; pair is humidity-temperature or pressure-temperature",
					"parameters": []map[string]interface{}{
						{
							"name":     "pair",
							"in":       "path",
							"required": true,
							"schema": map[string]interface{}{
								"type": "string",
								"enum": []string{"humidity-temperature", "pressure-temperature"},
							},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Scatter series"},
						"204": map[string]interface{}{"description": "Skipped: required column absent"},
						"404": map[string]interface{}{"description": "Unknown pair"},
					},
				},
			},
			"/api/charts/wind-pivot":     chartGet("Wind-by-month pivot", "Month × top-10-wind-type count matrix (stacked bar chart)"),
			"/api/charts/word-frequency": chartGet("Word frequency", "Token counts over whitespace-joined condition text (word cloud)"),
			"/api/dataset/refresh": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Invalidate the memoized dataset",
					"description": "Drops the cached table so the next request reloads from the store",
					"responses": map[string]interface{}{
						"202": map[string]interface{}{"description": "Refresh scheduled"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Service and store status"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
