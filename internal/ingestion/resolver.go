package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/logger"
	"github.com/guttosm/twpulse/internal/twse"
)

// MarketLocation is the exchange's local time (UTC+8, no DST).
var MarketLocation = time.FixedZone("Asia/Taipei", 8*60*60)

// ErrDataUnavailable means no reference date could be established; nothing
// downstream can run without one.
var ErrDataUnavailable = errors.New("data unavailable")

// DataUnavailableError reports an exhausted lookback window.
type DataUnavailableError struct {
	Lookback int
	Wanted   int
	Found    int
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable: found %d of %d trading days within a %d-day lookback window", e.Found, e.Wanted, e.Lookback)
}

// Is lets errors.Is(err, ErrDataUnavailable) match.
func (e *DataUnavailableError) Is(target error) bool { return target == ErrDataUnavailable }

// Probe fetches the reference dataset for one candidate date.
type Probe func(ctx context.Context, date models.TradingDate) (twse.MarketTable, error)

// ResolvedDay is a valid trading date with the dataset that proved it.
type ResolvedDay struct {
	Date  models.TradingDate
	Table twse.MarketTable
}

// Resolver finds the most recent dates for which the reference dataset
// actually has rows. It needs no market calendar: weekends, holidays and
// not-yet-published days simply fail the validity check.
type Resolver struct {
	probe Probe
	now   func() time.Time
	loc   *time.Location
	log   zerolog.Logger
}

// NewResolver creates a Resolver walking back from the current date in loc.
func NewResolver(probe Probe, loc *time.Location) *Resolver {
	if loc == nil {
		loc = MarketLocation
	}
	return &Resolver{
		probe: probe,
		now:   time.Now,
		loc:   loc,
		log:   logger.Component("resolver"),
	}
}

// CandidateDates returns lookback calendar dates ending at from, most recent first.
func CandidateDates(from time.Time, lookback int) []models.TradingDate {
	out := make([]models.TradingDate, 0, lookback)
	d := truncateToDate(from)
	for i := 0; i < lookback; i++ {
		out = append(out, models.NewTradingDate(d))
		d = d.AddDate(0, 0, -1)
	}
	return out
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Resolve collects up to n valid dates, most recent first, probing one
// calendar day at a time starting today and stepping back at most
// maxLookback days. A probe error only invalidates that date. Fewer than n
// valid dates yields a *DataUnavailableError.
func (r *Resolver) Resolve(ctx context.Context, n, maxLookback int) ([]ResolvedDay, error) {
	found := make([]ResolvedDay, 0, n)
	for _, date := range CandidateDates(r.now().In(r.loc), maxLookback) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t, err := r.probe(ctx, date)
		if err != nil {
			r.log.Debug().Err(err).Str("date", date.String()).Msg("probe failed")
			continue
		}
		if !t.HasData() {
			r.log.Debug().Str("date", date.String()).Str("stat", t.Stat).Msg("no data for date")
			continue
		}

		found = append(found, ResolvedDay{Date: date, Table: t})
		r.log.Info().Str("date", date.String()).Int("rows", len(t.Data)).Msg("trading day resolved")
		if len(found) == n {
			return found, nil
		}
	}
	return nil, &DataUnavailableError{Lookback: maxLookback, Wanted: n, Found: len(found)}
}

// ResolveLastNValidDates is Resolve without the proving datasets.
func (r *Resolver) ResolveLastNValidDates(ctx context.Context, n, maxLookback int) ([]models.TradingDate, error) {
	days, err := r.Resolve(ctx, n, maxLookback)
	if err != nil {
		return nil, err
	}
	out := make([]models.TradingDate, len(days))
	for i, d := range days {
		out[i] = d.Date
	}
	return out, nil
}
