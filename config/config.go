package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from defaults, an
// optional YAML file, a .env file and environment variables.
//
// Every tunable of the acquisition pipeline lives here and is passed into the
// pipeline explicitly; no component reads package-level settings.
//
// Example ENV:
//
//	SERVER_PORT=8080
//	OUTPUT_PATH=docs/data.json
//	LOOKBACK_DAYS=15
//	FOREIGN_UNIT=lots
//	BROWSER_SETTLE_DELAY=1500ms
type Config struct {
	Server   ServerConfig
	Output   OutputConfig
	HTTP     HTTPConfig
	Browser  BrowserConfig
	Pipeline PipelineConfig
	Sources  SourcesConfig

	Stocks         []Stock
	Brokers        []string
	NewsCategories []NewsCategory
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
}

// OutputConfig controls where the snapshot is written.
type OutputConfig struct {
	Path string
}

// HTTPConfig tunes the shared fetcher.
type HTTPConfig struct {
	Timeout        time.Duration
	RateLimit      float64 // requests per second across all sources
	UserAgent      string
	AcceptLanguage string
}

// BrowserConfig tunes the headless renderer used for script-populated pages.
type BrowserConfig struct {
	Headless        bool
	NoSandbox       bool
	UserAgent       string
	NavTimeout      time.Duration
	SelectorTimeout time.Duration
	SettleDelay     time.Duration
}

// PipelineConfig holds the acquisition tunables.
type PipelineConfig struct {
	TradingDays     int    // valid trading days to resolve
	LookbackDays    int    // calendar days to walk back
	ForeignUnit     string // "lots" or "shares"
	NewsItemCap     int
	NewsPerCategory int
	RankedLimit     int
	Parallelism     int
}

// SourcesConfig holds endpoint templates. Placeholders: {date}, {stock}, {q}.
type SourcesConfig struct {
	ForeignJSONURL string
	ForeignCSVURL  string
	StockDayURL    string
	BrokerPageURL  string
	RankedPageURL  string
	NewsFeedURL    string
}

// Stock is one tracked equity.
type Stock struct {
	Ticker string `mapstructure:"ticker"`
	Name   string `mapstructure:"name"`
}

// NewsCategory is one headline category; earlier categories win on overlap.
type NewsCategory struct {
	Name     string   `mapstructure:"name"`
	Keywords []string `mapstructure:"keywords"`
}

// AppConfig is the globally accessible configuration instance, populated once
// via LoadConfig() and handed to the pipeline and the API by main.
var AppConfig Config

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0 Safari/537.36"

// DefaultStocks are the equities tracked when no config file overrides them.
var DefaultStocks = []Stock{
	{Ticker: "2330", Name: "台積電"},
	{Ticker: "2317", Name: "鴻海"},
	{Ticker: "3231", Name: "緯創"},
	{Ticker: "2382", Name: "廣達"},
}

// DefaultBrokers are the foreign trading desks looked up on the broker page.
var DefaultBrokers = []string{
	"摩根大通",
	"台灣摩根士丹利",
	"新加坡商瑞銀",
	"美林",
	"花旗環球",
	"美商高盛",
}

// DefaultNewsCategories lists headline categories in precedence order.
var DefaultNewsCategories = []NewsCategory{
	{Name: "法說", Keywords: []string{"法說", "法說會", "法說摘要", "財報電話會議", "線上法說"}},
	{Name: "營收", Keywords: []string{"營收", "月營收", "合併營收", "營收公布", "營收年增", "營收月增"}},
	{Name: "重大訊息", Keywords: []string{"重大訊息", "重訊", "公告", "暫停交易", "處置", "違約", "減資", "增資"}},
	{Name: "產能", Keywords: []string{"產能", "擴產", "投產", "產線", "產量", "CoWoS", "先進封裝", "capex", "資本支出"}},
	{Name: "美國出口管制", Keywords: []string{"出口管制", "美國", "禁令", "制裁", "管制", "BIS", "晶片禁令", "Entity List", "實體清單"}},
}

// LoadConfig initializes the global AppConfig.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. YAML file named by CONFIG_FILE (default "config.yaml"), if present.
//  3. Values from .env file (if present).
//  4. Environment variables.
//
// Lists (stocks, brokers, news_categories) can only come from the YAML file.
//
// Fatal exit:
//   - If required values are missing or invalid, validateConfig() terminates
//     the app with a descriptive log message.
//   - A YAML list that cannot be decoded is fatal too; it never falls back to the defaults.
func LoadConfig() {
	v := viper.New()
	setDefaults(v)

	// Optional YAML file carrying the list settings.
	file := os.Getenv("CONFIG_FILE")
	if file == "" {
		file = "config.yaml"
	}
	if _, err := os.Stat(file); err == nil {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			log.Fatalf("❌ failed to read config file %s: %v\n", file, err)
		}
	}

	// Optionally merge .env if present (common in local dev)
	if _, err := os.Stat(".env"); err == nil {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		_ = v.MergeInConfig()
	}

	v.AutomaticEnv()

	AppConfig = fromViper(v)
	validateConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("OUTPUT_PATH", "docs/data.json")

	v.SetDefault("HTTP_TIMEOUT", 25*time.Second)
	v.SetDefault("HTTP_RATE_LIMIT", 2.0)
	v.SetDefault("HTTP_USER_AGENT", defaultUserAgent)
	v.SetDefault("HTTP_ACCEPT_LANGUAGE", "zh-TW,zh;q=0.9,en;q=0.8")

	v.SetDefault("BROWSER_HEADLESS", true)
	v.SetDefault("BROWSER_NO_SANDBOX", false)
	v.SetDefault("BROWSER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36")
	v.SetDefault("BROWSER_NAV_TIMEOUT", 60*time.Second)
	v.SetDefault("BROWSER_SELECTOR_TIMEOUT", 30*time.Second)
	v.SetDefault("BROWSER_SETTLE_DELAY", 1500*time.Millisecond)

	v.SetDefault("TRADING_DAYS", 2)
	v.SetDefault("LOOKBACK_DAYS", 15)
	v.SetDefault("FOREIGN_UNIT", "lots")
	v.SetDefault("NEWS_ITEM_CAP", 30)
	v.SetDefault("NEWS_PER_CATEGORY", 8)
	v.SetDefault("RANKED_LIMIT", 50)
	v.SetDefault("PARALLELISM", 4)

	v.SetDefault("TWSE_FOREIGN_JSON_URL", "https://www.twse.com.tw/fund/TWT38U?response=json&date={date}")
	v.SetDefault("TWSE_FOREIGN_CSV_URL", "https://www.twse.com.tw/fund/TWT38U?response=csv&date={date}")
	v.SetDefault("TWSE_STOCK_DAY_URL", "https://www.twse.com.tw/exchangeReport/STOCK_DAY?response=json&date={date}&stockNo={stock}")
	v.SetDefault("FUBON_ZGB_URL", "https://fubon-ebrokerdj.fbs.com.tw/Z/ZG/ZGB/ZGB.djhtm")
	v.SetDefault("FUBON_ZGK_D_URL", "https://fubon-ebrokerdj.fbs.com.tw/Z/ZG/ZGK_D.djhtm")
	v.SetDefault("NEWS_FEED_URL", "https://news.google.com/rss/search?q={q}&hl=zh-TW&gl=TW&ceid=TW:zh-Hant")
}

func fromViper(v *viper.Viper) Config {
	cfg := Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			RequestTimeout: v.GetDuration("SERVER_REQUEST_TIMEOUT"),
		},
		Output: OutputConfig{Path: v.GetString("OUTPUT_PATH")},
		HTTP: HTTPConfig{
			Timeout:        v.GetDuration("HTTP_TIMEOUT"),
			RateLimit:      v.GetFloat64("HTTP_RATE_LIMIT"),
			UserAgent:      v.GetString("HTTP_USER_AGENT"),
			AcceptLanguage: v.GetString("HTTP_ACCEPT_LANGUAGE"),
		},
		Browser: BrowserConfig{
			Headless:        v.GetBool("BROWSER_HEADLESS"),
			NoSandbox:       v.GetBool("BROWSER_NO_SANDBOX"),
			UserAgent:       v.GetString("BROWSER_USER_AGENT"),
			NavTimeout:      v.GetDuration("BROWSER_NAV_TIMEOUT"),
			SelectorTimeout: v.GetDuration("BROWSER_SELECTOR_TIMEOUT"),
			SettleDelay:     v.GetDuration("BROWSER_SETTLE_DELAY"),
		},
		Pipeline: PipelineConfig{
			TradingDays:     v.GetInt("TRADING_DAYS"),
			LookbackDays:    v.GetInt("LOOKBACK_DAYS"),
			ForeignUnit:     strings.ToLower(v.GetString("FOREIGN_UNIT")),
			NewsItemCap:     v.GetInt("NEWS_ITEM_CAP"),
			NewsPerCategory: v.GetInt("NEWS_PER_CATEGORY"),
			RankedLimit:     v.GetInt("RANKED_LIMIT"),
			Parallelism:     v.GetInt("PARALLELISM"),
		},
		Sources: SourcesConfig{
			ForeignJSONURL: v.GetString("TWSE_FOREIGN_JSON_URL"),
			ForeignCSVURL:  v.GetString("TWSE_FOREIGN_CSV_URL"),
			StockDayURL:    v.GetString("TWSE_STOCK_DAY_URL"),
			BrokerPageURL:  v.GetString("FUBON_ZGB_URL"),
			RankedPageURL:  v.GetString("FUBON_ZGK_D_URL"),
			NewsFeedURL:    v.GetString("NEWS_FEED_URL"),
		},
		Stocks:         append([]Stock(nil), DefaultStocks...),
		Brokers:        append([]string(nil), DefaultBrokers...),
		NewsCategories: append([]NewsCategory(nil), DefaultNewsCategories...),
	}

	if v.IsSet("stocks") {
		var stocks []Stock
		if err := v.UnmarshalKey("stocks", &stocks); err != nil {
			log.Fatalf("❌ invalid stocks list: %v\n", err)
		}
		cfg.Stocks = stocks
	}
	if v.IsSet("brokers") {
		cfg.Brokers = v.GetStringSlice("brokers")
	}
	if v.IsSet("news_categories") {
		var cats []NewsCategory
		if err := v.UnmarshalKey("news_categories", &cats); err != nil {
			log.Fatalf("❌ invalid news_categories list: %v\n", err)
		}
		cfg.NewsCategories = cats
	}
	return cfg
}

// Problems lists the missing or invalid settings; empty means valid.
func (c Config) Problems() []string {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if c.Output.Path == "" {
		missing = append(missing, "OUTPUT_PATH")
	}
	if c.HTTP.Timeout <= 0 {
		missing = append(missing, "HTTP_TIMEOUT")
	}
	if c.Pipeline.TradingDays < 2 {
		missing = append(missing, "TRADING_DAYS")
	}
	if c.Pipeline.LookbackDays < c.Pipeline.TradingDays {
		missing = append(missing, "LOOKBACK_DAYS")
	}
	if c.Pipeline.ForeignUnit != "lots" && c.Pipeline.ForeignUnit != "shares" {
		missing = append(missing, "FOREIGN_UNIT")
	}
	if c.Sources.ForeignJSONURL == "" || c.Sources.ForeignCSVURL == "" || c.Sources.StockDayURL == "" {
		missing = append(missing, "TWSE_*_URL")
	}
	if c.Sources.BrokerPageURL == "" || c.Sources.RankedPageURL == "" || c.Sources.NewsFeedURL == "" {
		missing = append(missing, "FUBON_*_URL/NEWS_FEED_URL")
	}
	if len(c.Stocks) == 0 {
		missing = append(missing, "stocks")
	}
	for _, s := range c.Stocks {
		if s.Ticker == "" {
			missing = append(missing, "stocks[].ticker")
			break
		}
	}
	if len(c.NewsCategories) == 0 {
		missing = append(missing, "news_categories")
	}
	return missing
}

// validateConfig terminates the application if AppConfig is incomplete.
func validateConfig() {
	if missing := AppConfig.Problems(); len(missing) > 0 {
		log.Fatalf("❌ Missing or invalid configuration: %v\n", missing)
	}
}
