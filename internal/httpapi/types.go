package httpapi

import "djdash/internal/dashboard"

// TabsResponse is the response for GET /api/tabs.
type TabsResponse struct {
	Tabs    []dashboard.Tab `json:"tabs"`
	Default string          `json:"default"`
}

// OptionsResponse is the response for GET /api/options.
type OptionsResponse struct {
	Options []dashboard.Option `json:"options"`
	Default string             `json:"default"`
}

// HealthResponse is the response for GET /api/healthz.
type HealthResponse struct {
	Status       string   `json:"status"`
	Constituents int      `json:"constituents"`
	Series       int      `json:"series"`
	Skipped      []string `json:"skipped,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}
