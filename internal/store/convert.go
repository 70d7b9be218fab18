package store

import (
	"context"
	"fmt"
	"log/slog"
)

// CopySeries loads every series in src and writes it to dst. Tickers that
// fail to load or write are logged and returned in failed; only a failure to
// list src aborts the copy.
func CopySeries(ctx context.Context, src PriceStore, dst SeriesWriter, log *slog.Logger) (copied int, failed map[string]error, err error) {
	tickers, err := src.ListTickers(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("listing source tickers: %w", err)
	}

	failed = make(map[string]error)
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return copied, failed, err
		}
		s, err := src.LoadSeries(ctx, ticker)
		if err != nil {
			failed[ticker] = err
			log.Warn("skipping series", "ticker", ticker, "error", err)
			continue
		}
		if err := dst.WriteSeries(ctx, s); err != nil {
			failed[ticker] = err
			log.Warn("writing series", "ticker", ticker, "error", err)
			continue
		}
		copied++
	}
	log.Info("series copied", "copied", copied, "failed", len(failed))
	return copied, failed, nil
}

// ConvertConstituents loads the metadata table at src (any supported format)
// and writes it to a SQLite database at dst.
func ConvertConstituents(ctx context.Context, src, dst string) (int, error) {
	c, err := LoadConstituents(ctx, src)
	if err != nil {
		return 0, err
	}
	db, err := NewSQLiteStore(dst)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := db.WriteConstituents(ctx, c); err != nil {
		return 0, err
	}
	return c.Len(), nil
}
