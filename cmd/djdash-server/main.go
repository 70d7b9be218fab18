package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"djdash/internal/config"
	"djdash/internal/dashboard"
	"djdash/internal/httpapi"
	"djdash/internal/util"
)

func main() {
	// Load config.
	cfg, err := config.Load(os.Getenv("DJDASH_CONFIG"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	w, closeLog, err := util.LogOutput(cfg.Logging.File)
	if err != nil {
		log.Fatalf("setting up logging: %v", err)
	}
	defer closeLog()

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, w)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load the dataset and build the dashboard.
	start := time.Now()
	dash, err := dashboard.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("loading dashboard data", "error", err)
		os.Exit(1)
	}
	logger.Info("data loaded", "elapsed", time.Since(start).Round(time.Millisecond))

	srv := httpapi.NewDashboardServer(dash, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("dashboard listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down dashboard")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
