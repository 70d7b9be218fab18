// Package httpapi serves the dashboard page and its JSON API.
package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"djdash/internal/dashboard"
	"djdash/internal/domain"
)

//go:embed static/index.html
var static embed.FS

// DashboardServer serves the dashboard HTTP API.
type DashboardServer struct {
	dash *dashboard.Dashboard
	log  *slog.Logger
}

// NewDashboardServer creates a new dashboard HTTP server.
func NewDashboardServer(dash *dashboard.Dashboard, log *slog.Logger) *DashboardServer {
	return &DashboardServer{
		dash: dash,
		log:  log.With("component", "httpapi"),
	}
}

// RegisterRoutes registers all routes on the given mux.
func (s *DashboardServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/tabs", s.handleTabs)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/tab/{tab}", s.handleTab)
	mux.HandleFunc("GET /api/healthz", s.handleHealth)
}

// Handler returns an http.Handler with CORS middleware.
func (s *DashboardServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v before writing the header so that an encoding failure
// is reported as a 500 instead of an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"response encoding failed"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps a render error to an HTTP status.
func statusFor(err error) int {
	var lookupErr *domain.LookupError
	var loadErr *domain.DataLoadError
	switch {
	case errors.Is(err, dashboard.ErrUnknownTab):
		return http.StatusBadRequest
	case errors.As(err, &lookupErr):
		return http.StatusNotFound
	case errors.As(err, &loadErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *DashboardServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *DashboardServer) handleTabs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TabsResponse{
		Tabs:    dashboard.Tabs(),
		Default: dashboard.TabOverview,
	})
}

func (s *DashboardServer) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, OptionsResponse{
		Options: s.dash.Options(),
		Default: s.dash.DefaultTicker(),
	})
}

func (s *DashboardServer) handleTab(w http.ResponseWriter, r *http.Request) {
	req := dashboard.Request{
		Tab:    r.PathValue("tab"),
		Ticker: r.URL.Query().Get("ticker"),
	}
	p, err := s.dash.Render(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		s.log.Warn("render failed", "tab", req.Tab, "ticker", req.Ticker, "status", status, "error", err)
		if errors.Is(err, dashboard.ErrUnknownTab) {
			writeError(w, status, err.Error())
			return
		}
		// The payload still carries the tab, options and message.
		writeJSON(w, status, p)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *DashboardServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds := s.dash.Dataset()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		Constituents: ds.Constituents.Len(),
		Series:       len(ds.Series),
		Skipped:      ds.Warnings(),
	})
}
