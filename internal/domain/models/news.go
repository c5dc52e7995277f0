package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ClassifiedNews maps category name to headlines, keeping the configured
// category order. Every configured category is present, possibly empty.
type ClassifiedNews struct {
	order []string
	items map[string][]NewsRef
}

// NewClassifiedNews builds a ClassifiedNews over categories in the given order.
// Categories missing from items get an empty list; keys of items that are not
// in categories are ignored.
func NewClassifiedNews(categories []string, items map[string][]NewsRef) ClassifiedNews {
	out := ClassifiedNews{
		order: append([]string(nil), categories...),
		items: make(map[string][]NewsRef, len(categories)),
	}
	for _, c := range categories {
		refs := items[c]
		if refs == nil {
			refs = []NewsRef{}
		}
		out.items[c] = append([]NewsRef{}, refs...)
	}
	return out
}

// Categories returns the category names in order.
func (n ClassifiedNews) Categories() []string {
	return append([]string(nil), n.order...)
}

// Items returns the headlines of one category.
func (n ClassifiedNews) Items(category string) []NewsRef {
	return n.items[category]
}

// Has reports whether category is a key of the mapping.
func (n ClassifiedNews) Has(category string) bool {
	_, ok := n.items[category]
	return ok
}

// MarshalJSON writes an object whose keys follow the category order.
func (n ClassifiedNews) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range n.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(n.items[c])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object back, preserving key order.
func (n *ClassifiedNews) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*n = NewClassifiedNews(nil, nil)
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("classified news: expected object, got %v", tok)
	}

	var order []string
	items := map[string][]NewsRef{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("classified news: expected key, got %v", kt)
		}
		var refs []NewsRef
		if err := dec.Decode(&refs); err != nil {
			return fmt.Errorf("classified news %q: %w", key, err)
		}
		order = append(order, key)
		items[key] = refs
	}
	*n = NewClassifiedNews(order, items)
	return nil
}
