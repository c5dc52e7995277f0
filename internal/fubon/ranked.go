package fubon

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/logger"
	"github.com/guttosm/twpulse/internal/source"
)

// ErrTableNotFound is returned when a page carries no table at all.
var ErrTableNotFound = errors.New("table not found")

const (
	rankMarker     = "名次"
	rankedMinCells = 10
)

var rankedDate = regexp.MustCompile(`資料日期[:：]\s*(\d{8})`)

// RankedParser reads the static most-bought / most-sold page.
type RankedParser struct {
	src source.Fetcher
	url string
	enc encoding.Encoding
	log zerolog.Logger
}

// NewRankedParser creates a parser for the page at url, served in Big5.
func NewRankedParser(src source.Fetcher, url string) *RankedParser {
	return &RankedParser{
		src: src,
		url: url,
		enc: traditionalchinese.Big5,
		log: logger.Component("fubon_zgk_d"),
	}
}

// FetchRankedBuySell fetches and parses the page. It never fails: any
// error yields a null date, empty lists and the error text.
func (p *RankedParser) FetchRankedBuySell(ctx context.Context, limit int) models.RankedBuySell {
	body, err := p.src.GetDecoded(ctx, p.url, p.enc)
	if err != nil {
		p.log.Warn().Err(err).Str("url", p.url).Msg("ranked page fetch failed")
		return degradedRanked(err)
	}
	out, err := ParseRankedBuySell(string(body), limit)
	if err != nil {
		p.log.Warn().Err(err).Msg("ranked page parse failed")
		return degradedRanked(err)
	}
	p.log.Info().Int("buy", len(out.Buy)).Int("sell", len(out.Sell)).Str("date", out.Date.OrElse("")).Msg("ranked page parsed")
	return out
}

func degradedRanked(err error) models.RankedBuySell {
	return models.RankedBuySell{
		Date:  models.None[string](),
		Buy:   []models.RankedEntry{},
		Sell:  []models.RankedEntry{},
		Error: err.Error(),
	}
}

// ParseRankedBuySell extracts both ranked lists from the first table of the
// page. The two lists share each physical row: columns 0-4 are a buy entry
// when column 0 is a rank, columns 5-9 a sell entry when column 5 is. The
// date comes from the raw markup, not from a DOM position.
func ParseRankedBuySell(page string, limit int) (models.RankedBuySell, error) {
	out := models.RankedBuySell{
		Date: models.None[string](),
		Buy:  []models.RankedEntry{},
		Sell: []models.RankedEntry{},
	}
	if d, ok := firstGroup(rankedDate, page); ok {
		out.Date = models.Some(d)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return out, fmt.Errorf("parse html: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return out, ErrTableNotFound
	}

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cols []string
		tr.Find("td, th").Each(func(_ int, c *goquery.Selection) {
			cols = append(cols, nodeText(c))
		})
		if len(cols) == 0 || strings.Contains(strings.Join(cols, " "), rankMarker) {
			return
		}
		if len(cols) < rankedMinCells {
			return
		}
		if isDigits(cols[0]) {
			out.Buy = append(out.Buy, rankedEntry(cols[0:5]))
		}
		if isDigits(cols[5]) {
			out.Sell = append(out.Sell, rankedEntry(cols[5:10]))
		}
	})

	out.Buy = truncate(out.Buy, limit)
	out.Sell = truncate(out.Sell, limit)
	return out, nil
}

func rankedEntry(c []string) models.RankedEntry {
	return models.RankedEntry{Rank: c[0], Stock: c[1], Net: c[2], Close: c[3], Change: c[4]}
}

func truncate[T any](s []T, limit int) []T {
	if limit >= 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
