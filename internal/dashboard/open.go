package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"djdash/internal/analytics"
	"djdash/internal/config"
	"djdash/internal/store"
)

// Open loads the metadata table and price files named by cfg and builds a
// Dashboard over them. It fails only when the metadata table cannot be read
// or the price directory cannot be listed.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Dashboard, error) {
	align, err := analytics.ParseAlignment(cfg.Analytics.Alignment)
	if err != nil {
		return nil, err
	}
	constituents, err := store.LoadConstituents(ctx, cfg.Data.MetadataPath)
	if err != nil {
		return nil, fmt.Errorf("loading constituents: %w", err)
	}
	prices, err := store.NewPriceStore(cfg.Data.PriceFormat, cfg.Data.PricesDir)
	if err != nil {
		return nil, err
	}
	ds, err := LoadDataset(ctx, constituents, prices, cfg.Dashboard.LoadWorkers, log)
	if err != nil {
		return nil, err
	}
	return NewDashboard(ds, prices, Options{
		ShortWindow:   cfg.Analytics.ShortWindow,
		LongWindow:    cfg.Analytics.LongWindow,
		Alignment:     align,
		DefaultTicker: cfg.Dashboard.DefaultTicker,
		Logger:        log,
	}), nil
}
