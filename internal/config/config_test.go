package config

import (
	"os"
	"path/filepath"
	"testing"
)

var envVars = []string{
	"DJDASH_METADATA", "DJDASH_PRICES_DIR", "DJDASH_PRICE_FORMAT", "DJDASH_HOST",
	"DJDASH_PORT", "LOG_LEVEL", "LOG_FORMAT", "ALPACA_API_KEY", "ALPACA_API_SECRET",
	"ALPACA_DATA_URL", "APCA_API_KEY_ID", "APCA_API_SECRET_KEY",
}

// clearEnv unsets every override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "djdash.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
data:
  metadata_path: "/srv/dj/dj_stock_names.xlsx"
  prices_dir: "/srv/dj/stocks"
  price_format: "parquet"
server:
  host: "0.0.0.0"
  port: 9000
logging:
  level: "debug"
  format: "json"
analytics:
  short_window: 20
  long_window: 120
  alignment: "intersect"
dashboard:
  default_ticker: "MSFT"
  load_workers: 4
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  start_date: "2019-01-01"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Data --
	if cfg.Data.MetadataPath != "/srv/dj/dj_stock_names.xlsx" {
		t.Errorf("Data.MetadataPath = %q", cfg.Data.MetadataPath)
	}
	if cfg.Data.PricesDir != "/srv/dj/stocks" {
		t.Errorf("Data.PricesDir = %q", cfg.Data.PricesDir)
	}
	if cfg.Data.PriceFormat != "parquet" {
		t.Errorf("Data.PriceFormat = %q, want %q", cfg.Data.PriceFormat, "parquet")
	}

	// -- Server --
	if got := cfg.Server.Addr(); got != "0.0.0.0:9000" {
		t.Errorf("Server.Addr() = %q, want %q", got, "0.0.0.0:9000")
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}

	// -- Analytics --
	if cfg.Analytics.ShortWindow != 20 || cfg.Analytics.LongWindow != 120 {
		t.Errorf("Analytics windows = %d/%d, want 20/120", cfg.Analytics.ShortWindow, cfg.Analytics.LongWindow)
	}
	if cfg.Analytics.Alignment != "intersect" {
		t.Errorf("Analytics.Alignment = %q", cfg.Analytics.Alignment)
	}

	// -- Dashboard --
	if cfg.Dashboard.DefaultTicker != "MSFT" || cfg.Dashboard.LoadWorkers != 4 {
		t.Errorf("Dashboard = %+v", cfg.Dashboard)
	}

	// -- Alpaca --
	if cfg.Alpaca.APIKey != "test-key" || cfg.Alpaca.StartDate != "2019-01-01" {
		t.Errorf("Alpaca = %+v", cfg.Alpaca)
	}
	// Unset in the file, so the default survives.
	if cfg.Alpaca.RateLimitPerMin != 180 {
		t.Errorf("Alpaca.RateLimitPerMin = %d, want default 180", cfg.Alpaca.RateLimitPerMin)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if cfg.Analytics.ShortWindow != 23 || cfg.Analytics.LongWindow != 138 {
		t.Errorf("default windows = %d/%d, want 23/138", cfg.Analytics.ShortWindow, cfg.Analytics.LongWindow)
	}
	if cfg.Dashboard.DefaultTicker != "AAPL" {
		t.Errorf("default ticker = %q, want AAPL", cfg.Dashboard.DefaultTicker)
	}
	if cfg.Data.PricesDir != "stocks" || cfg.Data.PriceFormat != "csv" {
		t.Errorf("default data = %+v", cfg.Data)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
data:
  prices_dir: "/original/stocks"
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
`)

	t.Setenv("DJDASH_PRICES_DIR", "/env/stocks")
	t.Setenv("DJDASH_PORT", "8123")
	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("APCA_API_SECRET_KEY", "canonical-secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Data.PricesDir != "/env/stocks" {
		t.Errorf("Data.PricesDir = %q, want %q (env override)", cfg.Data.PricesDir, "/env/stocks")
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("Server.Port = %d, want 8123 (env override)", cfg.Server.Port)
	}
	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Alpaca.APIKey, "env-key")
	}
	if cfg.Alpaca.APISecret != "canonical-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (APCA env wins)", cfg.Alpaca.APISecret, "canonical-secret")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	for name, content := range map[string]string{
		"window":    "analytics:\n  short_window: 0\n",
		"alignment": "analytics:\n  alignment: sideways\n",
		"format":    "data:\n  price_format: xml\n",
		"yaml":      "data: [unclosed\n",
	} {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("%s: Load() succeeded, want error", name)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
