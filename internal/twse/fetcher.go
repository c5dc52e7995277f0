// Package twse retrieves exchange datasets. The foreign-investor dataset is
// available both as JSON and as a Big5 CSV download; FetchDataset tries JSON
// first and falls back to the CSV, producing the same MarketTable either way.
package twse

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/logger"
	"github.com/guttosm/twpulse/internal/source"
)

// Column names of the foreign-investor dataset.
const (
	ColumnCode       = "證券代號"
	ColumnNetShares  = "買賣超股數"
	ColumnClosePrice = "收盤價"
)

// Endpoints are URL templates; {date} is YYYYMMDD and {stock} a ticker.
type Endpoints struct {
	ForeignJSON string
	ForeignCSV  string
	StockDay    string
}

// Fetcher is the dual-transport market data client.
type Fetcher struct {
	src         source.Fetcher
	endpoints   Endpoints
	unit        Unit
	csvEncoding encoding.Encoding
	markers     []string
	log         zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUnit sets the unit foreign net volumes are reported in.
func WithUnit(u Unit) Option {
	return func(f *Fetcher) { f.unit = u }
}

// WithCSVEncoding overrides the encoding of the CSV fallback (Big5 by default).
func WithCSVEncoding(enc encoding.Encoding) Option {
	return func(f *Fetcher) { f.csvEncoding = enc }
}

// NewFetcher creates a Fetcher over src.
func NewFetcher(src source.Fetcher, endpoints Endpoints, opts ...Option) *Fetcher {
	f := &Fetcher{
		src:         src,
		endpoints:   endpoints,
		unit:        UnitLots,
		csvEncoding: traditionalchinese.Big5,
		markers:     []string{ColumnCode, ColumnNetShares},
		log:         logger.Component("twse"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Unit returns the unit applied to foreign net volumes.
func (f *Fetcher) Unit() Unit { return f.unit }

// FetchDataset retrieves the foreign-investor dataset for date.
//
// Any failure of the JSON transport (network, malformed body, non-success
// status) triggers the CSV fallback. The fallback fails with
// ErrSchemaNotFound when its header row cannot be located.
func (f *Fetcher) FetchDataset(ctx context.Context, date models.TradingDate) (MarketTable, error) {
	t, jsonErr := f.fetchJSON(ctx, date)
	if jsonErr == nil {
		return t, nil
	}
	f.log.Debug().Err(jsonErr).Str("date", date.String()).Msg("json transport failed, trying csv")

	t, csvErr := f.fetchCSV(ctx, date)
	if csvErr != nil {
		return MarketTable{}, fmt.Errorf("dataset %s: json: %v; csv: %w", date, jsonErr, csvErr)
	}
	return t, nil
}

func (f *Fetcher) fetchJSON(ctx context.Context, date models.TradingDate) (MarketTable, error) {
	url := source.Expand(f.endpoints.ForeignJSON, map[string]string{"date": date.String()})
	body, err := f.src.Get(ctx, url)
	if err != nil {
		return MarketTable{}, err
	}
	t, err := decodeTable(body)
	if err != nil {
		return MarketTable{}, err
	}
	if !t.StatusOK() {
		return MarketTable{}, fmt.Errorf("status %q", t.Stat)
	}
	if t.Date == "" {
		t.Date = date
	}
	return t, nil
}

func (f *Fetcher) fetchCSV(ctx context.Context, date models.TradingDate) (MarketTable, error) {
	url := source.Expand(f.endpoints.ForeignCSV, map[string]string{"date": date.String()})
	body, err := f.src.GetDecoded(ctx, url, f.csvEncoding)
	if err != nil {
		return MarketTable{}, err
	}
	return parseTabular(string(body), date, f.markers)
}

// FetchForeignNet returns the foreign net volume of each requested ticker on
// date, in the Fetcher's unit. Tickers not listed by the source are absent.
func (f *Fetcher) FetchForeignNet(ctx context.Context, date models.TradingDate, tickers []string) (map[string]models.Optional[int64], error) {
	t, err := f.FetchDataset(ctx, date)
	if err != nil {
		return nil, err
	}
	if !t.HasData() {
		return nil, fmt.Errorf("foreign flow %s: %w", date, ErrNoRows)
	}
	return ForeignNet(t, tickers, f.unit)
}
