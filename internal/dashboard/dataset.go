// Package dashboard turns the loaded constituent and price tables into chart
// specifications for the four dashboard tabs. Rendering is an explicit
// request/response call; nothing here mutates after construction.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"djdash/internal/domain"
	"djdash/internal/store"
)

// Dataset is the read-only snapshot loaded at startup.
type Dataset struct {
	Constituents *domain.Constituents

	// Series holds every price series that loaded and maps to a
	// constituent, sorted by ticker.
	Series []domain.PriceSeries

	// Skipped maps tickers whose price file could not be used to the
	// reason: a *domain.LookupError or *domain.DataLoadError.
	Skipped map[string]error
}

// LoadDataset reads every price file listed by prices, using up to workers
// concurrent reads. A file that fails to load, or whose ticker has no
// constituent, is recorded in Skipped instead of failing the whole load.
// Only a failure to list the price directory is returned as an error.
func LoadDataset(ctx context.Context, c *domain.Constituents, prices store.PriceStore, workers int, log *slog.Logger) (*Dataset, error) {
	tickers, err := prices.ListTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing price files: %w", err)
	}
	if workers <= 0 {
		workers = 1
	}

	type result struct {
		series domain.PriceSeries
		err    error
	}
	results := make([]result, len(tickers))
	sem := make(chan struct{}, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i, ticker := range tickers {
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			if !c.Has(ticker) {
				results[i] = result{err: &domain.LookupError{Ticker: ticker}}
				return nil
			}
			s, err := prices.LoadSeries(gctx, ticker)
			results[i] = result{series: s, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds := &Dataset{
		Constituents: c,
		Skipped:      make(map[string]error),
	}
	for i, r := range results {
		if r.err != nil {
			ds.Skipped[tickers[i]] = r.err
			log.Warn("skipping price file", "ticker", tickers[i], "error", r.err)
			continue
		}
		ds.Series = append(ds.Series, r.series)
	}
	sort.Slice(ds.Series, func(i, j int) bool { return ds.Series[i].Ticker < ds.Series[j].Ticker })

	log.Info("dataset loaded",
		"constituents", c.Len(),
		"series", len(ds.Series),
		"skipped", len(ds.Skipped),
	)
	return ds, nil
}

// Names returns the company name for each loaded series, in series order.
func (ds *Dataset) Names() []string {
	names := make([]string, len(ds.Series))
	for i, s := range ds.Series {
		r, err := ds.Constituents.Get(s.Ticker)
		if err != nil {
			names[i] = s.Ticker
			continue
		}
		names[i] = r.Name
	}
	return names
}

// Warnings describes the skipped tickers, sorted, for display next to the
// global views.
func (ds *Dataset) Warnings() []string {
	if len(ds.Skipped) == 0 {
		return nil
	}
	tickers := make([]string, 0, len(ds.Skipped))
	for t := range ds.Skipped {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	out := make([]string, len(tickers))
	for i, t := range tickers {
		err := ds.Skipped[t]
		var lookupErr *domain.LookupError
		if errors.As(err, &lookupErr) {
			out[i] = fmt.Sprintf("%s: no constituent record", t)
		} else {
			out[i] = fmt.Sprintf("%s: %v", t, err)
		}
	}
	return out
}
