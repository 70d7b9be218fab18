package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"djdash/internal/analytics"
	"djdash/internal/store"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for djdash.
type Config struct {
	Data      Data      `yaml:"data"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
	Analytics Analytics `yaml:"analytics"`
	Dashboard Dashboard `yaml:"dashboard"`
	Alpaca    Alpaca    `yaml:"alpaca"`
}

// Data locates the input files.
type Data struct {
	MetadataPath string `yaml:"metadata_path"`
	PricesDir    string `yaml:"prices_dir"`
	PriceFormat  string `yaml:"price_format"` // csv or parquet
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port for the HTTP listener.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // optional; output is also written to stdout
}

// Analytics holds the moving-average windows and the date alignment policy
// for correlations.
type Analytics struct {
	ShortWindow int    `yaml:"short_window"`
	LongWindow  int    `yaml:"long_window"`
	Alignment   string `yaml:"alignment"`
}

// Dashboard controls the presentation layer.
type Dashboard struct {
	DefaultTicker string `yaml:"default_ticker"`
	LoadWorkers   int    `yaml:"load_workers"`
}

// Alpaca holds credentials and parameters for downloading daily bars.
type Alpaca struct {
	APIKey          string `yaml:"api_key"`
	APISecret       string `yaml:"api_secret"`
	DataURL         string `yaml:"data_url"`
	StartDate       string `yaml:"start_date"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no file overrides a field.
func Default() *Config {
	return &Config{
		Data: Data{
			MetadataPath: "dj_stock_names.xlsx",
			PricesDir:    "stocks",
			PriceFormat:  store.FormatCSV,
		},
		Server: Server{
			Host: "127.0.0.1",
			Port: 8050,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Analytics: Analytics{
			ShortWindow: analytics.MonthWindow,
			LongWindow:  analytics.SixMonthsWindow,
			Alignment:   string(analytics.AlignPairwise),
		},
		Dashboard: Dashboard{
			DefaultTicker: "AAPL",
			LoadWorkers:   8,
		},
		Alpaca: Alpaca{
			StartDate:       "2015-01-01",
			RateLimitPerMin: 180,
		},
	}
}

// Load reads the YAML configuration file at the given path over the
// defaults, then applies environment variable overrides and validates the
// result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the dashboard cannot run with.
func (c *Config) Validate() error {
	if c.Analytics.ShortWindow <= 0 || c.Analytics.LongWindow <= 0 {
		return fmt.Errorf("analytics windows must be positive, got %d and %d",
			c.Analytics.ShortWindow, c.Analytics.LongWindow)
	}
	if _, err := analytics.ParseAlignment(c.Analytics.Alignment); err != nil {
		return err
	}
	if _, err := store.NewPriceStore(c.Data.PriceFormat, c.Data.PricesDir); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DJDASH_METADATA"); v != "" {
		cfg.Data.MetadataPath = v
	}
	if v := os.Getenv("DJDASH_PRICES_DIR"); v != "" {
		cfg.Data.PricesDir = v
	}
	if v := os.Getenv("DJDASH_PRICE_FORMAT"); v != "" {
		cfg.Data.PriceFormat = v
	}

	if v := os.Getenv("DJDASH_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("DJDASH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	// Standard Alpaca env vars (highest priority, canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
