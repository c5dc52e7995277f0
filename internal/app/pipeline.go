package app

import (
	"context"
	"fmt"

	"github.com/guttosm/twpulse/config"
	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/fubon"
	"github.com/guttosm/twpulse/internal/ingestion"
	"github.com/guttosm/twpulse/internal/logger"
	"github.com/guttosm/twpulse/internal/news"
	"github.com/guttosm/twpulse/internal/source"
	"github.com/guttosm/twpulse/internal/storage"
	"github.com/guttosm/twpulse/internal/twse"
)

// rendererCtor is an indirection for the browser-backed renderer; tests
// replace it with canned markup.
var rendererCtor = func(cfg config.BrowserConfig, acceptLanguage string) fubon.Renderer {
	return fubon.NewChromeRenderer(fubon.BrowserOptions{
		Headless:  cfg.Headless,
		NoSandbox: cfg.NoSandbox,
		UserAgent: cfg.UserAgent,
		Language:  acceptLanguage,
	})
}

// repoCtor is an indirection for the snapshot sink.
var repoCtor = storage.NewSnapshotRepository

// BuildPipeline wires every acquisition component from cfg.
func BuildPipeline(cfg config.Config) *ingestion.Pipeline {
	client := source.NewClient(
		source.WithTimeout(cfg.HTTP.Timeout),
		source.WithRateLimit(cfg.HTTP.RateLimit),
		source.WithHeaders(cfg.HTTP.UserAgent, cfg.HTTP.AcceptLanguage),
	)

	market := twse.NewFetcher(client, twse.Endpoints{
		ForeignJSON: cfg.Sources.ForeignJSONURL,
		ForeignCSV:  cfg.Sources.ForeignCSVURL,
		StockDay:    cfg.Sources.StockDayURL,
	}, twse.WithUnit(twse.ParseUnit(cfg.Pipeline.ForeignUnit)))

	categories := make([]news.Category, len(cfg.NewsCategories))
	for i, nc := range cfg.NewsCategories {
		categories[i] = news.Category{Name: nc.Name, Keywords: nc.Keywords}
	}
	headlines := news.NewClient(client, cfg.Sources.NewsFeedURL, cfg.Pipeline.NewsItemCap,
		news.NewClassifier(categories, cfg.Pipeline.NewsPerCategory))

	broker := fubon.NewBrokerScraper(
		rendererCtor(cfg.Browser, cfg.HTTP.AcceptLanguage),
		cfg.Sources.BrokerPageURL,
		fubon.WaitStrategy{
			NetworkIdle:     true,
			Selector:        "table",
			NavTimeout:      cfg.Browser.NavTimeout,
			SelectorTimeout: cfg.Browser.SelectorTimeout,
			Settle:          cfg.Browser.SettleDelay,
		},
	)
	ranked := fubon.NewRankedParser(client, cfg.Sources.RankedPageURL)

	instruments := make([]ingestion.Instrument, len(cfg.Stocks))
	for i, s := range cfg.Stocks {
		instruments[i] = ingestion.Instrument{Ticker: s.Ticker, Name: s.Name}
	}

	return ingestion.NewPipeline(market, headlines, broker, ranked, ingestion.Options{
		Instruments:  instruments,
		Brokers:      cfg.Brokers,
		TradingDays:  cfg.Pipeline.TradingDays,
		LookbackDays: cfg.Pipeline.LookbackDays,
		RankedLimit:  cfg.Pipeline.RankedLimit,
		Parallelism:  cfg.Pipeline.Parallelism,
	})
}

// RunSnapshot runs the pipeline once and writes the snapshot to
// cfg.Output.Path. A trading-day resolution failure is returned unchanged
// (errors.Is ingestion.ErrDataUnavailable) and nothing is written.
func RunSnapshot(ctx context.Context, cfg config.Config) (*models.Snapshot, error) {
	snap, err := BuildPipeline(cfg).Run(ctx)
	if err != nil {
		return nil, err
	}
	repo := repoCtor(cfg.Output.Path)
	if err := repo.Save(snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	logger.L().Info().Str("run_id", snap.RunID).Str("path", repo.Path()).Msg("snapshot written")
	return snap, nil
}
