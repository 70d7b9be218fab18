// Package gather downloads daily closes for the dashboard's price files.
package gather

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"djdash/internal/config"
	"djdash/internal/domain"
	"djdash/internal/store"
	"djdash/internal/util"
)

// DateRange bounds a download, inclusive of both days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// BarClient is the subset of the Alpaca market-data client used here.
type BarClient interface {
	GetMultiBars(symbols []string, req marketdata.GetBarsRequest) (map[string][]marketdata.Bar, error)
}

// DailyCloseGatherer downloads daily bars for a fixed ticker list from the
// Alpaca market-data API and writes one price series per ticker.
type DailyCloseGatherer struct {
	client    BarClient
	out       store.SeriesWriter
	tickers   []string
	rng       DateRange
	batchSize int
	limiter   *util.RateLimiter
	retries   int
	backoff   time.Duration
	log       *slog.Logger
}

// NewAlpacaClient builds a market-data client from the alpaca config section.
func NewAlpacaClient(cfg config.Alpaca) *marketdata.Client {
	opts := marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if cfg.DataURL != "" {
		opts.BaseURL = cfg.DataURL
	}
	return marketdata.NewClient(opts)
}

// NewDailyCloseGatherer creates a gatherer for tickers over rng. Requests
// are paced to rateLimitPerMin and each batch is retried with backoff.
func NewDailyCloseGatherer(client BarClient, out store.SeriesWriter, tickers []string, rng DateRange, rateLimitPerMin int) *DailyCloseGatherer {
	return &DailyCloseGatherer{
		client:    client,
		out:       out,
		tickers:   tickers,
		rng:       rng,
		batchSize: 100,
		limiter:   util.NewRateLimiter(rateLimitPerMin),
		retries:   3,
		backoff:   2 * time.Second,
		log:       slog.Default().With("gatherer", "dj-daily"),
	}
}

// Run fetches every ticker in batches and writes the resulting series.
// Tickers with no bars are logged and skipped; a batch that still fails
// after retries aborts the run.
func (g *DailyCloseGatherer) Run(ctx context.Context) error {
	if g.rng.End.Before(g.rng.Start) {
		return fmt.Errorf("end %s is before start %s",
			g.rng.End.Format(domain.DateLayout), g.rng.Start.Format(domain.DateLayout))
	}
	g.log.Info("starting download",
		"tickers", len(g.tickers),
		"start", g.rng.Start.Format(domain.DateLayout),
		"end", g.rng.End.Format(domain.DateLayout),
	)

	var written, empty int
	for i := 0; i < len(g.tickers); i += g.batchSize {
		batch := g.tickers[i:min(i+g.batchSize, len(g.tickers))]

		var bars map[string][]marketdata.Bar
		err := util.Retry(ctx, g.retries, g.backoff, func() error {
			if err := g.limiter.Wait(ctx); err != nil {
				return util.Permanent(err)
			}
			var err error
			bars, err = g.client.GetMultiBars(batch, marketdata.GetBarsRequest{
				TimeFrame: marketdata.OneDay,
				Start:     g.rng.Start,
				End:       g.rng.End,
				Feed:      "sip",
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("GetMultiBars: %w", err)
		}

		byTicker := make(map[string][]marketdata.Bar, len(bars))
		for sym, b := range bars {
			byTicker[strings.ToUpper(sym)] = b
		}
		for _, ticker := range batch {
			s := BarsToSeries(ticker, byTicker[strings.ToUpper(ticker)])
			if s.Len() == 0 {
				g.log.Warn("no bars returned", "ticker", ticker)
				empty++
				continue
			}
			if err := g.out.WriteSeries(ctx, s); err != nil {
				return fmt.Errorf("writing %s: %w", ticker, err)
			}
			written++
		}
	}

	g.log.Info("download complete", "written", written, "empty", empty)
	return nil
}

// BarsToSeries converts daily bars into a date-ascending close series with
// the percent change derived from consecutive closes. Bars on the same
// calendar day collapse to the last one.
func BarsToSeries(ticker string, bars []marketdata.Bar) domain.PriceSeries {
	byDay := make(map[time.Time]float64, len(bars))
	for _, b := range bars {
		y, m, d := b.Timestamp.UTC().Date()
		byDay[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)] = b.Close
	}

	obs := make([]domain.PriceObservation, 0, len(byDay))
	for day, c := range byDay {
		obs = append(obs, domain.PriceObservation{Date: day, Close: c, PercentChange: math.NaN()})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	store.DerivePercentChange(obs)

	return domain.PriceSeries{Ticker: strings.ToUpper(ticker), Observations: obs}
}
