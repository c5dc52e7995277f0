package models

import "time"

// TradingDate is an 8-digit (YYYYMMDD) calendar date in the market's local timezone.
type TradingDate string

const tradingDateLayout = "20060102"

// NewTradingDate formats t as a TradingDate using t's own location.
func NewTradingDate(t time.Time) TradingDate {
	return TradingDate(t.Format(tradingDateLayout))
}

// ISO returns the date as YYYY-MM-DD. Malformed values are returned unchanged.
func (d TradingDate) ISO() string {
	s := string(d)
	if len(s) != 8 {
		return s
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
}

// String implements fmt.Stringer.
func (d TradingDate) String() string { return string(d) }

// Snapshot is the single artefact produced by one pipeline run.
//
// JSON keys follow the data file consumed by the static report, so the
// broker pages keep their source identifiers (fubon_zgb, fubon_zgk_d).
type Snapshot struct {
	RunID            string             `json:"run_id"`
	GeneratedAt      string             `json:"generated_at" example:"2024-01-05T18:30:00+08:00"`
	LatestTradingDay string             `json:"latest_trading_day" example:"2024-01-05"`
	PrevTradingDay   string             `json:"prev_trading_day" example:"2024-01-04"`
	Stocks           []InstrumentRecord `json:"stocks"`
	BrokerRankings   BrokerRankings     `json:"fubon_zgb"`
	RankedBuySell    RankedBuySell      `json:"fubon_zgk_d"`
}

// Stock returns the record for ticker, or nil.
func (s *Snapshot) Stock(ticker string) *InstrumentRecord {
	for i := range s.Stocks {
		if s.Stocks[i].Ticker == ticker {
			return &s.Stocks[i]
		}
	}
	return nil
}

// InstrumentRecord groups everything collected for one tracked equity.
type InstrumentRecord struct {
	Ticker     string          `json:"ticker" example:"2330"`
	Name       string          `json:"name" example:"台積電"`
	Price      InstrumentQuote `json:"price"`
	ForeignNet ForeignFlow     `json:"foreign_net"`
	News       ClassifiedNews  `json:"news"`
}

// InstrumentQuote holds the latest close and its change against the previous close.
// Close and Change are either both present or both absent.
type InstrumentQuote struct {
	Ticker    string            `json:"-"`
	Close     Optional[float64] `json:"close" swaggertype:"number"`
	Change    Optional[float64] `json:"change" swaggertype:"number"`
	ChangePct Optional[string]  `json:"change_pct" swaggertype:"string" example:"+1.23%"`
}

// ForeignFlow is the foreign-investor net volume for the two resolved trading days.
// Unit is "lots" or "shares" and applies to both values.
type ForeignFlow struct {
	Ticker   string          `json:"-"`
	Unit     string          `json:"unit" example:"lots"`
	Latest   Optional[int64] `json:"D0" swaggertype:"integer"`
	Previous Optional[int64] `json:"D1" swaggertype:"integer"`
}

// BrokerRow is one trading-desk line as shown on the page (raw text).
type BrokerRow struct {
	Name string `json:"name"`
	Buy  string `json:"buy"`
	Sell string `json:"sell"`
	Diff string `json:"diff"`
}

// BrokerRankings is the result of the rendered broker-branch page.
type BrokerRankings struct {
	Date    Optional[string] `json:"date" swaggertype:"string"`
	Unit    Optional[string] `json:"unit" swaggertype:"string"`
	Brokers []BrokerRow      `json:"brokers"`
	Error   string           `json:"error,omitempty"`
}

// RankedEntry is one line of a most-bought or most-sold list.
type RankedEntry struct {
	Rank   string `json:"rank"`
	Stock  string `json:"stock"`
	Net    string `json:"net"`
	Close  string `json:"close"`
	Change string `json:"change"`
}

// RankedBuySell holds the two independently ranked lists of the static page.
type RankedBuySell struct {
	Date  Optional[string] `json:"date" swaggertype:"string"`
	Buy   []RankedEntry    `json:"buy"`
	Sell  []RankedEntry    `json:"sell"`
	Error string           `json:"error,omitempty"`
}

// NewsItem is one headline as read from the feed.
type NewsItem struct {
	Title       string
	Link        string
	PublishedAt string
	Description string
}

// NewsRef is the reduced form of a NewsItem kept in the snapshot.
type NewsRef struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Date  string `json:"date"`
}
