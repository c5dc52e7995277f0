// Package fubon scrapes the two broker statistics pages: the
// script-rendered branch ranking (ZGB) and the static Big5 most-bought /
// most-sold table (ZGK_D).
package fubon

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/logger"
)

// Placeholder is the cell value reported for a broker with no matching row.
const Placeholder = "-"

const brokerMinCells = 4

var (
	brokerDate = regexp.MustCompile(`資料日期\s*[:：]\s*(\d{8})`)
	brokerUnit = regexp.MustCompile(`單位\s*[:：]\s*(\p{Han}+)`)
)

// BrokerScraper reads the rendered broker branch ranking page.
type BrokerScraper struct {
	renderer Renderer
	url      string
	wait     WaitStrategy
	log      zerolog.Logger
}

// NewBrokerScraper creates a scraper for the page at url.
func NewBrokerScraper(r Renderer, url string, wait WaitStrategy) *BrokerScraper {
	return &BrokerScraper{
		renderer: r,
		url:      url,
		wait:     wait,
		log:      logger.Component("fubon_zgb"),
	}
}

// FetchBrokerRankings renders the page and extracts one row per requested
// broker, in the requested order. It never fails: when the page cannot be
// rendered every broker gets a placeholder row and Error is set.
func (s *BrokerScraper) FetchBrokerRankings(ctx context.Context, names []string) models.BrokerRankings {
	markup, err := s.renderer.Render(ctx, s.url, s.wait)
	if err != nil {
		s.log.Warn().Err(err).Str("url", s.url).Msg("broker page render failed")
		return degradedBrokers(names, err)
	}
	out, err := ParseBrokerPage(markup, names)
	if err != nil {
		s.log.Warn().Err(err).Msg("broker page parse failed")
		return degradedBrokers(names, err)
	}

	matched := 0
	for _, b := range out.Brokers {
		if b.Buy != Placeholder || b.Sell != Placeholder || b.Diff != Placeholder {
			matched++
		}
	}
	s.log.Info().Int("requested", len(names)).Int("matched", matched).Str("date", out.Date.OrElse("")).Msg("broker page parsed")
	return out
}

func degradedBrokers(names []string, err error) models.BrokerRankings {
	rows := make([]models.BrokerRow, len(names))
	for i, n := range names {
		rows[i] = placeholderRow(n)
	}
	return models.BrokerRankings{
		Date:    models.None[string](),
		Unit:    models.None[string](),
		Brokers: rows,
		Error:   err.Error(),
	}
}

func placeholderRow(name string) models.BrokerRow {
	return models.BrokerRow{Name: name, Buy: Placeholder, Sell: Placeholder, Diff: Placeholder}
}

// ParseBrokerPage extracts broker rows from a rendered page.
//
// The page nests tables, so a wrapper row can contain a broker name in its
// first cell while carrying a whole sub-table. A row is accepted only with
// at least four cells and a numeric-looking value in one of cells 1-3. The
// first accepted row in document order wins; cells 0-3 are kept verbatim.
func ParseBrokerPage(markup string, names []string) (models.BrokerRankings, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return models.BrokerRankings{}, fmt.Errorf("parse html: %w", err)
	}

	var rows [][]string
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < brokerMinCells {
			return
		}
		cells := make([]string, brokerMinCells)
		for i := 0; i < brokerMinCells; i++ {
			cells[i] = strings.TrimSpace(nodeText(tds.Eq(i)))
		}
		if looksNumeric(cells[1]) || looksNumeric(cells[2]) || looksNumeric(cells[3]) {
			rows = append(rows, cells)
		}
	})

	out := models.BrokerRankings{
		Date:    models.None[string](),
		Unit:    models.None[string](),
		Brokers: make([]models.BrokerRow, 0, len(names)),
	}
	for _, name := range names {
		row := placeholderRow(name)
		for _, c := range rows {
			if strings.Contains(c[0], name) {
				row = models.BrokerRow{Name: c[0], Buy: c[1], Sell: c[2], Diff: c[3]}
				break
			}
		}
		out.Brokers = append(out.Brokers, row)
	}

	text := nodeText(doc.Find("body"))
	if d, ok := firstGroup(brokerDate, text); ok {
		out.Date = models.Some(d)
	}
	if u, ok := firstGroup(brokerUnit, text); ok {
		out.Unit = models.Some(u)
	}
	return out, nil
}
