package news

import (
	"strings"

	"github.com/guttosm/twpulse/internal/domain/models"
)

// Category is a named keyword set. Order among categories is precedence.
type Category struct {
	Name     string
	Keywords []string
}

// Classifier assigns headlines to at most one category each.
type Classifier struct {
	categories  []Category
	perCategory int
}

// NewClassifier creates a Classifier over categories, keeping at most
// perCategory headlines in each.
func NewClassifier(categories []Category, perCategory int) *Classifier {
	return &Classifier{categories: categories, perCategory: perCategory}
}

// Names returns the category names in precedence order.
func (c *Classifier) Names() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Classify matches each item's title and description against the
// categories in order; the first category with a keyword substring wins.
// Unmatched items are dropped. Every category is present in the result.
func (c *Classifier) Classify(items []models.NewsItem) models.ClassifiedNews {
	buckets := make(map[string][]models.NewsRef, len(c.categories))
	for _, it := range items {
		text := it.Title + " " + it.Description
		for _, cat := range c.categories {
			if !containsAny(text, cat.Keywords) {
				continue
			}
			if len(buckets[cat.Name]) < c.perCategory {
				buckets[cat.Name] = append(buckets[cat.Name], models.NewsRef{
					Title: it.Title,
					Link:  it.Link,
					Date:  it.PublishedAt,
				})
			}
			break
		}
	}
	return models.NewClassifiedNews(c.Names(), buckets)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
