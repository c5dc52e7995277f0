// Package ingestion resolves trading days and assembles the daily snapshot
// from the market, news and broker sources.
package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/logger"
	"github.com/guttosm/twpulse/internal/twse"
)

// MarketSource is the exchange side of the pipeline.
type MarketSource interface {
	FetchDataset(ctx context.Context, date models.TradingDate) (twse.MarketTable, error)
	FetchQuote(ctx context.Context, ticker string, date models.TradingDate) (models.InstrumentQuote, error)
	Unit() twse.Unit
}

// NewsSource classifies the headlines of one query. It returns a complete
// category set even when it also returns an error.
type NewsSource interface {
	FetchAndClassify(ctx context.Context, query string) (models.ClassifiedNews, error)
}

// BrokerSource produces the broker branch ranking; it degrades internally.
type BrokerSource interface {
	FetchBrokerRankings(ctx context.Context, names []string) models.BrokerRankings
}

// RankedSource produces the most-bought / most-sold lists; it degrades internally.
type RankedSource interface {
	FetchRankedBuySell(ctx context.Context, limit int) models.RankedBuySell
}

// Instrument is one tracked equity.
type Instrument struct {
	Ticker string
	Name   string
}

// Options are the run tunables.
type Options struct {
	Instruments  []Instrument
	Brokers      []string
	TradingDays  int // at least 2; D0 and D1 are the first two
	LookbackDays int
	RankedLimit  int
	Parallelism  int
}

// Pipeline assembles one Snapshot per Run.
type Pipeline struct {
	market MarketSource
	news   NewsSource
	broker BrokerSource
	ranked RankedSource
	opts   Options

	resolver *Resolver
	now      func() time.Time
	newRunID func() string
	log      zerolog.Logger
}

// NewPipeline wires the sources together.
func NewPipeline(market MarketSource, news NewsSource, broker BrokerSource, ranked RankedSource, opts Options) *Pipeline {
	if opts.TradingDays < 2 {
		opts.TradingDays = 2
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	p := &Pipeline{
		market:   market,
		news:     news,
		broker:   broker,
		ranked:   ranked,
		opts:     opts,
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
		log:      logger.Component("pipeline"),
	}
	p.resolver = NewResolver(market.FetchDataset, MarketLocation)
	p.resolver.now = func() time.Time { return p.now() }
	return p
}

// Run resolves the trading days and collects everything else.
//
// Only trading-day resolution can fail the run (ErrDataUnavailable); every
// other source degrades to absent values or placeholders. Per-instrument
// fetches and both broker pages run concurrently, bounded by Parallelism.
func (p *Pipeline) Run(ctx context.Context) (*models.Snapshot, error) {
	runID := p.newRunID()
	log := p.log.With().Str("run_id", runID).Logger()
	start := time.Now()

	days, err := p.resolver.Resolve(ctx, p.opts.TradingDays, p.opts.LookbackDays)
	if err != nil {
		log.Error().Err(err).Int("lookback", p.opts.LookbackDays).Msg("trading day resolution failed")
		return nil, fmt.Errorf("resolve trading days: %w", err)
	}
	latest, prev := days[0], days[1]
	log.Info().Str("latest", latest.Date.String()).Str("prev", prev.Date.String()).Msg("trading days resolved")

	tickers := make([]string, len(p.opts.Instruments))
	for i, in := range p.opts.Instruments {
		tickers[i] = in.Ticker
	}
	unit := p.market.Unit()
	flowLatest := p.foreignNet(log, latest, tickers, unit)
	flowPrev := p.foreignNet(log, prev, tickers, unit)

	stocks := make([]models.InstrumentRecord, len(p.opts.Instruments))
	var brokers models.BrokerRankings
	var ranked models.RankedBuySell

	// Workers never return an error; a failed source is already degraded.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Parallelism)

	g.Go(func() error {
		brokers = p.broker.FetchBrokerRankings(gctx, p.opts.Brokers)
		return nil
	})
	g.Go(func() error {
		ranked = p.ranked.FetchRankedBuySell(gctx, p.opts.RankedLimit)
		return nil
	})
	for i, in := range p.opts.Instruments {
		g.Go(func() error {
			stocks[i] = p.instrument(gctx, log, in, latest.Date, models.ForeignFlow{
				Ticker:   in.Ticker,
				Unit:     string(unit),
				Latest:   flowLatest[in.Ticker],
				Previous: flowPrev[in.Ticker],
			})
			return nil
		})
	}
	_ = g.Wait()

	snap := &models.Snapshot{
		RunID:            runID,
		GeneratedAt:      p.now().In(MarketLocation).Truncate(time.Second).Format(time.RFC3339),
		LatestTradingDay: latest.Date.ISO(),
		PrevTradingDay:   prev.Date.ISO(),
		Stocks:           stocks,
		BrokerRankings:   brokers,
		RankedBuySell:    ranked,
	}
	log.Info().Int("stocks", len(stocks)).Dur("elapsed", time.Since(start)).Msg("snapshot assembled")
	return snap, nil
}

// foreignNet extracts flows from the table that proved the day valid, so
// no second fetch is needed. A missing column leaves every ticker absent.
func (p *Pipeline) foreignNet(log zerolog.Logger, day ResolvedDay, tickers []string, unit twse.Unit) map[string]models.Optional[int64] {
	flows, err := twse.ForeignNet(day.Table, tickers, unit)
	if err != nil {
		log.Warn().Err(err).Str("date", day.Date.String()).Msg("foreign flow unavailable")
		return map[string]models.Optional[int64]{}
	}
	return flows
}

func (p *Pipeline) instrument(ctx context.Context, log zerolog.Logger, in Instrument, date models.TradingDate, flow models.ForeignFlow) models.InstrumentRecord {
	quote, err := p.market.FetchQuote(ctx, in.Ticker, date)
	if err != nil {
		log.Warn().Err(err).Str("ticker", in.Ticker).Msg("quote unavailable")
		quote = models.InstrumentQuote{Ticker: in.Ticker}
	}

	news, err := p.news.FetchAndClassify(ctx, in.Ticker+" "+in.Name)
	if err != nil {
		log.Warn().Err(err).Str("ticker", in.Ticker).Msg("news unavailable")
	}

	return models.InstrumentRecord{
		Ticker:     in.Ticker,
		Name:       in.Name,
		Price:      quote,
		ForeignNet: flow,
		News:       news,
	}
}
