package twse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/guttosm/twpulse/internal/domain/models"
)

const headerScanLines = 40

// parseTabular turns the delimited fallback body into a MarketTable.
//
// The body starts with a free-text preamble (title, date line) of unknown
// length. The header row is the first of the leading non-blank lines that
// contains every marker; everything from it onward is parsed as CSV. If no
// such line exists the parse fails: column positions are never guessed.
//
// Rows the CSV reader rejects are skipped; the trailing notes section of the
// file produces short rows that callers skip by length.
func parseTabular(body string, date models.TradingDate, markers []string) (MarketTable, error) {
	lines := make([]string, 0, 64)
	for _, l := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	scan := len(lines)
	if scan > headerScanLines {
		scan = headerScanLines
	}
	headerIdx := -1
	for i := 0; i < scan; i++ {
		if containsAll(lines[i], markers) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return MarketTable{}, &SchemaNotFoundError{Markers: markers, Scanned: scan}
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx:], "\n")))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return MarketTable{}, fmt.Errorf("read header: %w", err)
	}

	t := MarketTable{Stat: "OK", Date: date, Fields: cleanCells(header)}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return MarketTable{}, fmt.Errorf("read row: %w", err)
		}
		t.Data = append(t.Data, cleanCells(rec))
	}
	return t, nil
}

func containsAll(line string, markers []string) bool {
	for _, m := range markers {
		if !strings.Contains(line, m) {
			return false
		}
	}
	return true
}

// cleanCells strips the spreadsheet guard TWSE puts on codes (="2330") and
// surrounding whitespace.
func cleanCells(rec []string) []string {
	out := make([]string, len(rec))
	for i, c := range rec {
		c = strings.TrimSpace(c)
		c = strings.TrimPrefix(c, "=")
		c = strings.Trim(c, `"`)
		out[i] = strings.TrimSpace(c)
	}
	return out
}
