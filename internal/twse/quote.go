package twse

import (
	"context"
	"fmt"
	"math"

	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/numeric"
	"github.com/guttosm/twpulse/internal/source"
)

// FetchQuote returns the latest close of ticker and its change against the
// previous trading day, from the monthly daily-history endpoint for date.
//
// Fewer than two history rows is not an error (new listing, or the endpoint
// lagging at the start of a month): every value is absent.
func (f *Fetcher) FetchQuote(ctx context.Context, ticker string, date models.TradingDate) (models.InstrumentQuote, error) {
	url := source.Expand(f.endpoints.StockDay, map[string]string{"date": date.String(), "stock": ticker})
	body, err := f.src.Get(ctx, url)
	if err != nil {
		return models.InstrumentQuote{Ticker: ticker}, fmt.Errorf("quote %s: %w", ticker, err)
	}
	t, err := decodeTable(body)
	if err != nil {
		return models.InstrumentQuote{Ticker: ticker}, fmt.Errorf("quote %s: %w", ticker, err)
	}
	return QuoteFromHistory(ticker, t)
}

// QuoteFromHistory derives the quote from a daily OHLC table: the last row
// is the latest session, the one before it the previous session.
func QuoteFromHistory(ticker string, t MarketTable) (models.InstrumentQuote, error) {
	q := models.InstrumentQuote{
		Ticker:    ticker,
		Close:     models.None[float64](),
		Change:    models.None[float64](),
		ChangePct: models.None[string](),
	}
	if !t.StatusOK() || len(t.Data) < 2 {
		return q, nil
	}

	idx, err := t.Column(ColumnClosePrice)
	if err != nil {
		return q, err
	}

	last, prev := t.Data[len(t.Data)-1], t.Data[len(t.Data)-2]
	if len(last) <= idx || len(prev) <= idx {
		return q, nil
	}
	closeV, ok1 := numeric.ParseFloat(last[idx]).Get()
	prevV, ok2 := numeric.ParseFloat(prev[idx]).Get()
	if !ok1 || !ok2 {
		return q, nil
	}

	change := closeV - prevV
	q.Close = models.Some(closeV)
	q.Change = models.Some(math.Round(change*100) / 100)
	if prevV != 0 {
		q.ChangePct = models.Some(fmt.Sprintf("%+.2f%%", change/prevV*100))
	}
	return q, nil
}
