package djdash

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"djdash/internal/dashboard"
	"djdash/internal/domain"
	"djdash/internal/httpapi"
	"djdash/internal/store"
)

func newServer(t *testing.T) *httptest.Server {
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
	if err := os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte("date,close\n2020-01-02,10\n2020-01-03,11\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	prices := store.NewCSVStore(dir)
	ds, err := dashboard.LoadDataset(context.Background(), c, prices, 1, log)
	if err != nil {
		t.Fatal(err)
	}
	dash := dashboard.NewDashboard(ds, prices, dashboard.Options{ShortWindow: 1, LongWindow: 2, DefaultTicker: "AAPL", Logger: log})
	srv := httptest.NewServer(httpapi.NewDashboardServer(dash, log).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient(t *testing.T) {
	c := NewClient("http://localhost:8050/")
	if c.baseURL != "http://localhost:8050" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
	if c.httpClient == nil {
		t.Fatal("expected non-nil httpClient")
	}
}

func TestClient(t *testing.T) {
	srv := newServer(t)
	c := NewClient(srv.URL)
	ctx := context.Background()

	tabs, def, err := c.Tabs(ctx)
	if err != nil {
		t.Fatalf("Tabs: %v", err)
	}
	if len(tabs) != 4 || def != "history" {
		t.Errorf("Tabs() = %v, %q", tabs, def)
	}

	opts, def, err := c.Options(ctx)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(opts) != 2 || def != "AAPL" {
		t.Errorf("Options() = %v, %q", opts, def)
	}

	p, err := c.Tab(ctx, "dow_jones", "AAPL")
	if err != nil {
		t.Fatalf("Tab: %v", err)
	}
	if p.Ticker != "AAPL" || len(p.Figures) != 1 {
		t.Errorf("payload = %+v", p)
	}

	h, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Status != "ok" || h.Series != 1 {
		t.Errorf("health = %+v", h)
	}
}

func TestClientErrors(t *testing.T) {
	srv := newServer(t)
	c := NewClient(srv.URL)
	ctx := context.Background()

	tests := []struct {
		tab, ticker string
		want        int
	}{
		{"nope", "", http.StatusBadRequest},
		{"dow_jones", "ZZZ", http.StatusNotFound},
		{"dow_jones", "JPM", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		_, err := c.Tab(ctx, tt.tab, tt.ticker)
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("Tab(%s, %s) error = %v, want *APIError", tt.tab, tt.ticker, err)
		}
		if apiErr.StatusCode != tt.want || apiErr.Message == "" {
			t.Errorf("Tab(%s, %s) = %d %q, want %d", tt.tab, tt.ticker, apiErr.StatusCode, apiErr.Message, tt.want)
		}
	}
}
