package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/twse"
)

type fakeMarket struct {
	tables map[models.TradingDate]twse.MarketTable
	quotes map[string]models.InstrumentQuote

	mu        sync.Mutex
	quoteDate []models.TradingDate
}

func (f *fakeMarket) FetchDataset(_ context.Context, d models.TradingDate) (twse.MarketTable, error) {
	t, ok := f.tables[d]
	if !ok {
		return twse.MarketTable{}, errors.New("no such date")
	}
	return t, nil
}

func (f *fakeMarket) FetchQuote(_ context.Context, ticker string, d models.TradingDate) (models.InstrumentQuote, error) {
	f.mu.Lock()
	f.quoteDate = append(f.quoteDate, d)
	f.mu.Unlock()
	q, ok := f.quotes[ticker]
	if !ok {
		return models.InstrumentQuote{}, errors.New("quote endpoint timeout")
	}
	return q, nil
}

func (f *fakeMarket) Unit() twse.Unit { return twse.UnitLots }

type fakeNews struct{ fail map[string]bool }

func (f fakeNews) FetchAndClassify(_ context.Context, query string) (models.ClassifiedNews, error) {
	cats := []string{"營收", "產能"}
	if f.fail[query] {
		return models.NewClassifiedNews(cats, nil), errors.New("feed down")
	}
	return models.NewClassifiedNews(cats, map[string][]models.NewsRef{
		"營收": {{Title: query + " 營收", Link: "l", Date: "d"}},
	}), nil
}

type fakeBroker struct{ calls atomic.Int32 }

func (f *fakeBroker) FetchBrokerRankings(_ context.Context, names []string) models.BrokerRankings {
	f.calls.Add(1)
	rows := make([]models.BrokerRow, len(names))
	for i, n := range names {
		rows[i] = models.BrokerRow{Name: n, Buy: "1", Sell: "2", Diff: "-1"}
	}
	return models.BrokerRankings{Date: models.Some("20240105"), Unit: models.Some("張"), Brokers: rows}
}

type fakeRanked struct{ gotLimit int }

func (f *fakeRanked) FetchRankedBuySell(_ context.Context, limit int) models.RankedBuySell {
	f.gotLimit = limit
	return models.RankedBuySell{Date: models.None[string](), Buy: []models.RankedEntry{}, Sell: []models.RankedEntry{}, Error: "boom"}
}

func foreignTable(rows ...[]string) twse.MarketTable {
	return twse.MarketTable{Stat: "OK", Fields: []string{twse.ColumnCode, "證券名稱", twse.ColumnNetShares}, Data: rows}
}

func newTestPipeline(m *fakeMarket, n NewsSource, b *fakeBroker, r *fakeRanked, lookback int) *Pipeline {
	p := NewPipeline(m, n, b, r, Options{
		Instruments:  []Instrument{{"2330", "台積電"}, {"2317", "鴻海"}, {"3231", "緯創"}},
		Brokers:      []string{"美林", "摩根大通"},
		TradingDays:  2,
		LookbackDays: lookback,
		RankedLimit:  50,
		Parallelism:  2,
	})
	p.now = func() time.Time { return fixedNow }
	p.newRunID = func() string { return "run-1" }
	return p
}

func TestPipeline_Run_AssemblesSnapshot(t *testing.T) {
	m := &fakeMarket{
		tables: map[models.TradingDate]twse.MarketTable{
			day(1): foreignTable(
				[]string{"2330", "台積電", "1,500,000"},
				[]string{"2317", "鴻海", "-2,600"},
				[]string{"short"},
			),
			day(2): foreignTable(
				[]string{"2330", "台積電", "-500"},
				[]string{"2317", "鴻海", "--"},
			),
		},
		quotes: map[string]models.InstrumentQuote{
			"2330": {Ticker: "2330", Close: models.Some(606.0), Change: models.Some(6.0), ChangePct: models.Some("+1.00%")},
			"2317": {Ticker: "2317", Close: models.Some(104.5), Change: models.Some(-1.0), ChangePct: models.Some("-0.95%")},
		},
	}
	b := &fakeBroker{}
	r := &fakeRanked{}

	snap, err := newTestPipeline(m, fakeNews{fail: map[string]bool{"3231 緯創": true}}, b, r, 15).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, "2024-01-05T18:00:00+08:00", snap.GeneratedAt)
	assert.Equal(t, "2024-01-04", snap.LatestTradingDay)
	assert.Equal(t, "2024-01-03", snap.PrevTradingDay)
	require.Len(t, snap.Stocks, 3)

	tsmc := snap.Stock("2330")
	require.NotNil(t, tsmc)
	assert.Equal(t, "台積電", tsmc.Name)
	assert.Equal(t, "lots", tsmc.ForeignNet.Unit)
	assert.Equal(t, models.Some[int64](1500), tsmc.ForeignNet.Latest)
	assert.Equal(t, models.Some[int64](-1), tsmc.ForeignNet.Previous)
	assert.Equal(t, models.Some("+1.00%"), tsmc.Price.ChangePct)
	assert.Len(t, tsmc.News.Items("營收"), 1)

	hh := snap.Stock("2317")
	assert.Equal(t, models.Some[int64](-3), hh.ForeignNet.Latest)
	assert.False(t, hh.ForeignNet.Previous.Present())

	wistron := snap.Stock("3231")
	assert.False(t, wistron.ForeignNet.Latest.Present(), "ticker missing from the dataset")
	assert.False(t, wistron.Price.Close.Present(), "quote failure degrades to absent")
	assert.False(t, wistron.Price.Change.Present())
	assert.Equal(t, []string{"營收", "產能"}, wistron.News.Categories(), "news failure keeps every category")

	for _, d := range m.quoteDate {
		assert.Equal(t, day(1), d, "quotes are fetched for the latest trading day")
	}

	assert.Equal(t, int32(1), b.calls.Load())
	assert.Len(t, snap.BrokerRankings.Brokers, 2)
	assert.Equal(t, 50, r.gotLimit)
	assert.Equal(t, "boom", snap.RankedBuySell.Error)
}

func TestPipeline_Run_SnapshotJSON(t *testing.T) {
	m := &fakeMarket{
		tables: map[models.TradingDate]twse.MarketTable{
			day(0): foreignTable([]string{"2330", "台積電", "1500000"}),
			day(1): foreignTable([]string{"2317", "鴻海", "1000"}),
		},
	}

	snap, err := newTestPipeline(m, fakeNews{}, &fakeBroker{}, &fakeRanked{}, 15).Run(context.Background())
	require.NoError(t, err)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"run_id", "generated_at", "latest_trading_day", "prev_trading_day", "stocks", "fubon_zgb", "fubon_zgk_d"} {
		assert.Contains(t, doc, key)
	}

	first := doc["stocks"].([]any)[0].(map[string]any)
	flow := first["foreign_net"].(map[string]any)
	assert.Equal(t, 1500.0, flow["D0"])
	assert.Nil(t, flow["D1"])
	price := first["price"].(map[string]any)
	assert.Nil(t, price["close"])
	assert.Nil(t, price["change_pct"])
}

func TestPipeline_Run_DataUnavailable(t *testing.T) {
	m := &fakeMarket{tables: map[models.TradingDate]twse.MarketTable{
		day(1): foreignTable([]string{"2330", "台積電", "1"}),
	}}
	b := &fakeBroker{}

	snap, err := newTestPipeline(m, fakeNews{}, b, &fakeRanked{}, 5).Run(context.Background())

	assert.Nil(t, snap)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Equal(t, int32(0), b.calls.Load(), "nothing runs without reference dates")
}

func TestPipeline_Run_MissingColumnLeavesFlowsAbsent(t *testing.T) {
	bad := twse.MarketTable{Stat: "OK", Fields: []string{"代號", "淨額"}, Data: [][]string{{"2330", "1"}}}
	m := &fakeMarket{tables: map[models.TradingDate]twse.MarketTable{day(0): bad, day(1): bad}}

	snap, err := newTestPipeline(m, fakeNews{}, &fakeBroker{}, &fakeRanked{}, 15).Run(context.Background())
	require.NoError(t, err)
	for _, s := range snap.Stocks {
		assert.False(t, s.ForeignNet.Latest.Present())
		assert.False(t, s.ForeignNet.Previous.Present())
		assert.Equal(t, s.Ticker, s.ForeignNet.Ticker)
	}
}
