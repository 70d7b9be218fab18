package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"djdash/internal/dashboard"
	"djdash/internal/domain"
	"djdash/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := domain.NewConstituents([]domain.Constituent{
		{Ticker: "AAPL", Name: "Apple", Exchange: domain.ExchangeNASDAQ, YearAdded: 2015},
		{Ticker: "JPM", Name: "JPMorgan", Exchange: domain.ExchangeNYSE, YearAdded: 1991},
	})
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	csv := "date,close,changePercent\n2020-01-02,10,\n2020-01-03,11,10\n2020-01-06,12.1,10\n2020-01-07,11,-9.09\n"
	if err := os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	prices := store.NewCSVStore(dir)
	ds, err := dashboard.LoadDataset(context.Background(), c, prices, 2, log)
	if err != nil {
		t.Fatal(err)
	}
	dash := dashboard.NewDashboard(ds, prices, dashboard.Options{
		ShortWindow:   2,
		LongWindow:    3,
		DefaultTicker: "aapl",
		Logger:        log,
	})

	srv := httptest.NewServer(NewDashboardServer(dash, log).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decoding %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Dow Jones Stocks Dashboard") {
		t.Error("index page missing title")
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestTabsAndOptions(t *testing.T) {
	srv := newTestServer(t)

	var tabs TabsResponse
	if code := get(t, srv, "/api/tabs", &tabs); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(tabs.Tabs) != 4 || tabs.Default != dashboard.TabOverview {
		t.Errorf("tabs = %+v", tabs)
	}

	var opts OptionsResponse
	get(t, srv, "/api/options", &opts)
	if len(opts.Options) != 2 || opts.Options[1].Label != "JPM JPMorgan" || opts.Default != "AAPL" {
		t.Errorf("options = %+v", opts)
	}
}

func TestTabStatusMapping(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path string
		want int
	}{
		{"/api/tab/history", http.StatusOK},
		{"/api/tab/dow_jones", http.StatusOK},
		{"/api/tab/dow_jones?ticker=aapl", http.StatusOK},
		{"/api/tab/perform", http.StatusOK},
		{"/api/tab/correlations", http.StatusOK},
		{"/api/tab/dow_jones?ticker=ZZZ", http.StatusNotFound},
		{"/api/tab/dow_jones?ticker=JPM", http.StatusUnprocessableEntity},
		{"/api/tab/nope", http.StatusBadRequest},
	}
	for _, tt := range tests {
		var body map[string]any
		if got := get(t, srv, tt.path, &body); got != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, got, tt.want)
		}
		if tt.want != http.StatusOK {
			if msg, _ := body["error"].(string); msg == "" {
				t.Errorf("GET %s: missing error message", tt.path)
			}
		}
	}
}

func TestStockPayload(t *testing.T) {
	srv := newTestServer(t)

	var p dashboard.Payload
	get(t, srv, "/api/tab/dow_jones", &p)
	if p.Ticker != "AAPL" || len(p.Figures) != 1 || len(p.Options) != 2 {
		t.Fatalf("payload = %+v", p)
	}
	if p.Figures[0].Layout.Title.Text != "Apple" {
		t.Errorf("title = %q", p.Figures[0].Layout.Title.Text)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	var h HealthResponse
	if code := get(t, srv, "/api/healthz", &h); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if h.Status != "ok" || h.Constituents != 2 || h.Series != 1 {
		t.Errorf("health = %+v", h)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/tabs", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestOptionsDefaultIsNormalized(t *testing.T) {
	srv := newTestServer(t)

	var opts OptionsResponse
	get(t, srv, "/api/options", &opts)
	if opts.Default != "AAPL" {
		t.Errorf("Default = %q, want AAPL matching an option value", opts.Default)
	}
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"close": math.NaN()})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Errorf("body = %q, want an error object", rec.Body.String())
	}
}
