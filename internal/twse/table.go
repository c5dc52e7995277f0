package twse

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/guttosm/twpulse/internal/domain/models"
)

// MarketTable is a dataset in column-indexed form: named fields plus
// positional rows of raw text. Both transports produce this shape.
type MarketTable struct {
	Stat   string
	Date   models.TradingDate
	Fields []string
	Data   [][]string
}

// StatusOK reports whether Stat signals success. An empty Stat counts as success.
func (t MarketTable) StatusOK() bool {
	s := strings.ToUpper(strings.TrimSpace(t.Stat))
	return s == "" || s == "OK" || s == "SUCCESS"
}

// HasData reports whether the table is a usable answer for its date.
func (t MarketTable) HasData() bool {
	return t.StatusOK() && len(t.Data) > 0
}

// Column returns the index of the field named name. Lookup is always by
// name because the two transports may order columns differently.
func (t MarketTable) Column(name string) (int, error) {
	for i, f := range t.Fields {
		if strings.TrimSpace(f) == name {
			return i, nil
		}
	}
	return -1, &ColumnMissingError{Name: name}
}

// wireTable is the JSON transport shape. Cells are usually strings but
// numbers appear on some endpoints.
type wireTable struct {
	Stat   string   `json:"stat"`
	Date   string   `json:"date"`
	Fields []string `json:"fields"`
	Data   [][]any  `json:"data"`
}

func decodeTable(body []byte) (MarketTable, error) {
	var w wireTable
	if err := json.Unmarshal(body, &w); err != nil {
		return MarketTable{}, fmt.Errorf("decode json: %w", err)
	}
	t := MarketTable{
		Stat:   w.Stat,
		Date:   models.TradingDate(w.Date),
		Fields: w.Fields,
		Data:   make([][]string, 0, len(w.Data)),
	}
	for _, row := range w.Data {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = cellString(c)
		}
		t.Data = append(t.Data, cells)
	}
	return t, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
