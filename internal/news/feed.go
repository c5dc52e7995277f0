// Package news fetches headline feeds and sorts headlines into fixed,
// ordered categories by keyword.
package news

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/logger"
	"github.com/guttosm/twpulse/internal/source"
)

// DefaultItemCap is how many feed items are considered per query.
const DefaultItemCap = 30

// Client fetches a query's feed and classifies it.
type Client struct {
	src         source.Fetcher
	urlTemplate string // {q} is replaced by the escaped query
	itemCap     int
	classifier  *Classifier
	log         zerolog.Logger
}

// NewClient creates a Client. itemCap <= 0 means DefaultItemCap.
func NewClient(src source.Fetcher, urlTemplate string, itemCap int, classifier *Classifier) *Client {
	if itemCap <= 0 {
		itemCap = DefaultItemCap
	}
	return &Client{
		src:         src,
		urlTemplate: urlTemplate,
		itemCap:     itemCap,
		classifier:  classifier,
		log:         logger.Component("news"),
	}
}

// FeedURL returns the feed address for query, escaped with '+' for spaces.
func (c *Client) FeedURL(query string) string {
	return source.Expand(c.urlTemplate, map[string]string{"q": url.QueryEscape(query)})
}

// FetchItems returns up to the item cap of the feed's items, in feed order.
func (c *Client) FetchItems(ctx context.Context, query string) ([]models.NewsItem, error) {
	body, err := c.src.Get(ctx, c.FeedURL(query))
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	n := len(feed.Items)
	if n > c.itemCap {
		n = c.itemCap
	}
	items := make([]models.NewsItem, 0, n)
	for _, it := range feed.Items[:n] {
		items = append(items, models.NewsItem{
			Title:       strings.TrimSpace(it.Title),
			Link:        strings.TrimSpace(it.Link),
			PublishedAt: strings.TrimSpace(it.Published),
			Description: strings.TrimSpace(it.Description),
		})
	}
	return items, nil
}

// FetchAndClassify fetches query's headlines and classifies them. On a
// fetch failure it returns every category empty together with the error,
// so callers always have a complete result.
func (c *Client) FetchAndClassify(ctx context.Context, query string) (models.ClassifiedNews, error) {
	items, err := c.FetchItems(ctx, query)
	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("news feed failed")
		return c.classifier.Classify(nil), err
	}
	out := c.classifier.Classify(items)
	c.log.Debug().Str("query", query).Int("items", len(items)).Msg("news classified")
	return out, nil
}
