// Package store loads the read-only inputs of the dashboard: the constituent
// metadata table and the per-ticker price series files.
package store

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"djdash/internal/domain"
)

// PriceStore reads per-ticker price series.
type PriceStore interface {
	// LoadSeries returns the date-ascending series for ticker. A missing or
	// malformed file is reported as a *domain.DataLoadError.
	LoadSeries(ctx context.Context, ticker string) (domain.PriceSeries, error)

	// ListTickers returns the tickers that have a price file, sorted.
	ListTickers(ctx context.Context) ([]string, error)
}

// SeriesWriter persists price series. Only the offline tools write; the
// dashboard reads.
type SeriesWriter interface {
	WriteSeries(ctx context.Context, series domain.PriceSeries) error
}

// Price file formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// NewPriceStore returns the PriceStore for the given file format rooted at dir.
func NewPriceStore(format, dir string) (PriceStore, error) {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return NewCSVStore(dir), nil
	case FormatParquet:
		return NewParquetStore(dir), nil
	default:
		return nil, fmt.Errorf("unknown price format %q", format)
	}
}

// listTickers returns the upper-cased stems of files in dir ending in ext.
func listTickers(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.DataLoadError{Path: dir, Err: err}
	}

	var tickers []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if stem != "" {
			tickers = append(tickers, strings.ToUpper(stem))
		}
	}
	sort.Strings(tickers)
	return tickers, nil
}

// seriesPath returns <dir>/<TICKER><ext>.
func seriesPath(dir, ticker, ext string) string {
	return filepath.Join(dir, strings.ToUpper(ticker)+ext)
}

// finishSeries sorts observations by date, rejects duplicate dates and, when
// the source had no percent-change column, derives it from closes.
func finishSeries(path, ticker string, obs []domain.PriceObservation, derivePct bool) (domain.PriceSeries, error) {
	if len(obs) == 0 {
		return domain.PriceSeries{}, &domain.DataLoadError{Path: path, Err: fmt.Errorf("no observations")}
	}
	for _, o := range obs {
		if math.IsNaN(o.Close) || math.IsInf(o.Close, 0) || math.IsInf(o.PercentChange, 0) {
			return domain.PriceSeries{}, &domain.DataLoadError{
				Path: path,
				Err:  fmt.Errorf("non-finite value on %s", o.Date.Format(domain.DateLayout)),
			}
		}
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	for i := 1; i < len(obs); i++ {
		if obs[i].Date.Equal(obs[i-1].Date) {
			return domain.PriceSeries{}, &domain.DataLoadError{
				Path: path,
				Err:  fmt.Errorf("duplicate date %s", obs[i].Date.Format(domain.DateLayout)),
			}
		}
	}
	if derivePct {
		DerivePercentChange(obs)
	}
	return domain.PriceSeries{Ticker: strings.ToUpper(ticker), Observations: obs}, nil
}
