package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"djdash/internal/config"
	"djdash/internal/domain"
	"djdash/internal/gather"
	"djdash/internal/store"
	"djdash/internal/util"
)

func main() {
	outDir := flag.String("out", "", "directory for <TICKER>.csv files (default: data.prices_dir)")
	endFlag := flag.String("end", "", "last date to fetch, YYYY-MM-DD (default: yesterday)")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("DJDASH_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
		log.Fatal("alpaca credentials missing: set APCA_API_KEY_ID and APCA_API_SECRET_KEY")
	}

	w, closeLog, err := util.LogOutput(cfg.Logging.File)
	if err != nil {
		log.Fatalf("setting up logging: %v", err)
	}
	defer closeLog()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, w)
	slog.SetDefault(logger)

	start, err := time.Parse(domain.DateLayout, cfg.Alpaca.StartDate)
	if err != nil {
		log.Fatalf("parsing start date %q: %v", cfg.Alpaca.StartDate, err)
	}
	y, m, d := time.Now().UTC().AddDate(0, 0, -1).Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if *endFlag != "" {
		if end, err = time.Parse(domain.DateLayout, *endFlag); err != nil {
			log.Fatalf("parsing -end: %v", err)
		}
	}
	if *outDir == "" {
		*outDir = cfg.Data.PricesDir
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	constituents, err := store.LoadConstituents(ctx, cfg.Data.MetadataPath)
	if err != nil {
		log.Fatalf("loading constituents: %v", err)
	}

	g := gather.NewDailyCloseGatherer(
		gather.NewAlpacaClient(cfg.Alpaca),
		store.NewCSVStore(*outDir),
		constituents.Tickers(),
		gather.DateRange{Start: start, End: end},
		cfg.Alpaca.RateLimitPerMin,
	)

	slog.Info("starting dj-fetch", "out", *outDir, "tickers", constituents.Len())
	if err := g.Run(ctx); err != nil {
		log.Fatalf("fetch error: %v", err)
	}
}
