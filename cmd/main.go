package main

//
//  @title           twpulse API
//  @version         1.0
//  @description     Daily TWSE market snapshot: prices, foreign net flow, broker rankings and classified news.
//  @termsOfService  https://github.com/guttosm/twpulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/twpulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        snapshot
//  @tag.description Daily market snapshot produced by the acquisition pipeline
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/twpulse/config"
	_ "github.com/guttosm/twpulse/docs" // swagger docs
	"github.com/guttosm/twpulse/internal/app"
	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/ingestion"
	"github.com/guttosm/twpulse/internal/logger"
)

// runSnapshot is an indirection for tests.
var runSnapshot = app.RunSnapshot

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown terminates the HTTP server and runs cleanup when SIGINT
// or SIGTERM is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// snapshotMode runs the pipeline once and returns the process exit code.
// Only a trading-day resolution failure (or a failed write) is fatal; the
// diagnostic goes to stderr.
func snapshotMode(ctx context.Context, cfg config.Config, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, err := runSnapshot(ctx, cfg)
	if err != nil {
		if errors.Is(err, ingestion.ErrDataUnavailable) {
			_, _ = fmt.Fprintf(stderr, "ERROR: %v\n", err)
		} else {
			_, _ = fmt.Fprintf(stderr, "ERROR: snapshot failed: %v\n", err)
		}
		return 1
	}
	logSummary(snap)
	return 0
}

func logSummary(snap *models.Snapshot) {
	degraded := 0
	if snap.BrokerRankings.Error != "" {
		degraded++
	}
	if snap.RankedBuySell.Error != "" {
		degraded++
	}
	logger.L().Info().
		Str("run_id", snap.RunID).
		Str("latest_trading_day", snap.LatestTradingDay).
		Str("prev_trading_day", snap.PrevTradingDay).
		Int("stocks", len(snap.Stocks)).
		Int("degraded_pages", degraded).
		Msg("snapshot completed")
}

// main is the entry point of the twpulse application.
//
// Modes (selected via --mode flag):
//   - snapshot: resolve trading days, collect every source and write the
//     snapshot JSON (OUTPUT_PATH, or --out). Exits 1 when no trading day
//     can be resolved.
//   - api: serve the stored snapshot read-only over HTTP.
func main() {
	ctx := context.Background()

	// Load configuration from defaults, config.yaml, .env and environment
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	mode := flag.String("mode", "snapshot", "Mode: snapshot or api")
	out := flag.String("out", config.AppConfig.Output.Path, "Snapshot output path")
	lookback := flag.Int("lookback", config.AppConfig.Pipeline.LookbackDays, "Calendar days to search for trading days")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	config.AppConfig.Output.Path = *out
	config.AppConfig.Pipeline.LookbackDays = *lookback

	switch *mode {
	case "snapshot":
		logger.L().Info().Msg("running snapshot")
		os.Exit(snapshotMode(ctx, config.AppConfig, os.Stderr))

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
