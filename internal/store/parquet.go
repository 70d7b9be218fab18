package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"djdash/internal/domain"
)

// Compile-time interface check.
var _ PriceStore = (*ParquetStore)(nil)

// ParquetStore reads and writes price series as <DataDir>/<TICKER>.parquet.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// PriceRecord is the Parquet schema for one daily observation. A missing
// percent change is stored as NaN.
type PriceRecord struct {
	Date          int64   `parquet:"date,timestamp(millisecond)"` // Unix ms, UTC midnight
	Close         float64 `parquet:"close"`
	ChangePercent float64 `parquet:"change_percent"`
}

// LoadSeries reads the Parquet file for ticker.
func (s *ParquetStore) LoadSeries(_ context.Context, ticker string) (domain.PriceSeries, error) {
	path := s.seriesPath(ticker)
	records, err := parquet.ReadFile[PriceRecord](path)
	if err != nil {
		return domain.PriceSeries{}, &domain.DataLoadError{Path: path, Err: err}
	}

	obs := make([]domain.PriceObservation, len(records))
	for i, r := range records {
		obs[i] = domain.PriceObservation{
			Date:          time.UnixMilli(r.Date).UTC(),
			Close:         r.Close,
			PercentChange: r.ChangePercent,
		}
	}
	return finishSeries(path, ticker, obs, false)
}

// ListTickers lists the tickers with a .parquet file in DataDir.
func (s *ParquetStore) ListTickers(_ context.Context) ([]string, error) {
	return listTickers(s.DataDir, ".parquet")
}

// WriteSeries writes a series to <DataDir>/<TICKER>.parquet, replacing any
// existing file.
func (s *ParquetStore) WriteSeries(_ context.Context, series domain.PriceSeries) error {
	records := make([]PriceRecord, len(series.Observations))
	for i, o := range series.Observations {
		records[i] = PriceRecord{
			Date:          o.Date.UTC().UnixMilli(),
			Close:         o.Close,
			ChangePercent: o.PercentChange,
		}
	}

	path := s.seriesPath(series.Ticker)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (s *ParquetStore) seriesPath(ticker string) string {
	return seriesPath(s.DataDir, ticker, ".parquet")
}
