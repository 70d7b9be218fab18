package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T) (cfgPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	meta := write("names.csv", "ticker,name,stock_market,year_added\nAAPL,Apple,NASDAQ,2015\nJPM,JPMorgan,NYSE,1991\n")
	write("stocks/AAPL.csv", "date,close\n2020-01-02,10\n2020-01-03,11\n2020-01-06,12\n")
	write("stocks/JPM.csv", "date,close\n2020-01-02,20\n2020-01-03,21\n2020-01-06,20\n")
	cfgPath = write("djdash.yaml", fmt.Sprintf(`data:
  metadata_path: %s
  prices_dir: %s
logging:
  level: error
analytics:
  short_window: 2
  long_window: 3
`, meta, filepath.Join(dir, "stocks")))
	return cfgPath, dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReportCommands(t *testing.T) {
	cfg, _ := writeFixture(t)

	out, err := run(t, "--config", cfg, "report", "overview")
	if err != nil {
		t.Fatalf("report overview: %v", err)
	}
	if !strings.Contains(out, "JPMorgan") {
		t.Errorf("overview output missing JPMorgan:\n%s", out)
	}

	out, err = run(t, "--config", cfg, "report", "stock", "aapl")
	if err != nil {
		t.Fatalf("report stock: %v", err)
	}
	if !strings.Contains(out, "2020-01-06") || !strings.Contains(out, "MA2") {
		t.Errorf("stock output:\n%s", out)
	}

	if _, err := run(t, "--config", cfg, "report", "stock", "ZZZ"); err == nil {
		t.Error("report stock ZZZ succeeded, want lookup error")
	}

	out, err = run(t, "--config", cfg, "report", "correlations")
	if err != nil {
		t.Fatalf("report correlations: %v", err)
	}
	if !strings.Contains(out, "Apple") {
		t.Errorf("correlations output:\n%s", out)
	}
}

func TestConfigFromEnv(t *testing.T) {
	cfg, _ := writeFixture(t)
	t.Setenv("DJDASH_CONFIG", cfg)

	if _, err := run(t, "report", "overview"); err != nil {
		t.Fatalf("report overview with DJDASH_CONFIG: %v", err)
	}
}

func TestConvertAndPDF(t *testing.T) {
	cfg, dir := writeFixture(t)
	parquetDir := filepath.Join(dir, "parquet")
	db := filepath.Join(dir, "names.db")

	out, err := run(t, "--config", cfg, "convert", "--prices-out", parquetDir, "--metadata-out", db)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(out, "2 series written") || !strings.Contains(out, "2 constituents written") {
		t.Errorf("convert output:\n%s", out)
	}
	for _, p := range []string{filepath.Join(parquetDir, "AAPL.parquet"), db} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}

	if _, err := run(t, "--config", cfg, "convert"); err == nil {
		t.Error("convert without outputs succeeded, want error")
	}

	pdf := filepath.Join(dir, "report.pdf")
	if _, err := run(t, "--config", cfg, "pdf", pdf); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	data, err := os.ReadFile(pdf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/healthz" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","constituents":30,"series":29,"skipped":["DOW: no constituent record"]}`)
	}))
	defer srv.Close()

	out, err := run(t, "status", "--server", srv.URL)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"status: ok", "series: 29", "skipped DOW"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
