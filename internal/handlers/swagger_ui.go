package handlers

import (
	"html/template"
	"net/http"
)

// swaggerPage is the interactive documentation shell. The header names the
// chart endpoints explicitly since the page is the first stop for frontend
// integrators wiring renderers to payloads.
const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.10.0/swagger-ui.css">
    <style>
        html { box-sizing: border-box; overflow-y: scroll; }
        *, *:before, *:after { box-sizing: inherit; }
        body { margin: 0; padding: 0; }
        .page-header { background: #1b4965; color: #fff; padding: 14px 24px; font-family: sans-serif; }
        .page-header h1 { margin: 0; font-size: 20px; }
        .page-header p { margin: 4px 0 0; font-size: 13px; opacity: 0.85; }
    </style>
</head>
<body>
    <div class="page-header">
        <h1>{{.Title}}</h1>
        <p>Chart-ready aggregations under /api/charts, the combined payload at /api/dashboard.</p>
    </div>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.10.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: "{{.SpecURL}}",
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis],
                layout: "BaseLayout"
            });
        };
    </script>
</body>
</html>`

var swaggerTemplate = template.Must(template.New("swagger").Parse(swaggerPage))

// SwaggerUI serves the Swagger UI page for the chart data API
func SwaggerUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	swaggerTemplate.Execute(w, map[string]string{
		"Title":   "Weather Dashboard API",
		"SpecURL": "/api/docs/openapi.json",
	})
}
