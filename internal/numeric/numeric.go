// Package numeric parses locale-formatted numbers published by the exchange
// and broker pages ("12,345", "--", "N/A", "1,500,000股") into optional values.
package numeric

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/guttosm/twpulse/internal/domain/models"
)

// LotSize is the number of shares in one board lot.
const LotSize = 1000

var (
	placeholders = map[string]struct{}{
		"":    {},
		"-":   {},
		"--":  {},
		"---": {},
		"N/A": {},
		"n/a": {},
		"NA":  {},
	}
	signedInt = regexp.MustCompile(`[-+]?\d+`)
	// a decimal optionally followed by a unit suffix such as 元 or %
	suffixedDecimal = regexp.MustCompile(`^([-+]?(?:\d+(?:\.\d*)?|\.\d+))\D*$`)
)

// clean drops thousands separators and all whitespace (including full-width spaces).
func clean(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "，", "")
	return strings.Join(strings.Fields(s), "")
}

func isPlaceholder(s string) bool {
	_, ok := placeholders[s]
	return ok
}

// ParseInt returns the first signed integer found in text, or absent for
// placeholders and text with no digits.
func ParseInt(text string) models.Optional[int64] {
	s := clean(text)
	if isPlaceholder(s) {
		return models.None[int64]()
	}
	m := signedInt.FindString(s)
	if m == "" {
		return models.None[int64]()
	}
	v, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return models.None[int64]()
	}
	return models.Some(v)
}

// ParseFloat parses a leading decimal number and drops a trailing unit
// ("606.00元" -> 606). Placeholders, text not starting with a number and
// digits after the unit are absent.
func ParseFloat(text string) models.Optional[float64] {
	s := clean(text)
	if isPlaceholder(s) {
		return models.None[float64]()
	}
	m := suffixedDecimal.FindStringSubmatch(s)
	if m == nil {
		return models.None[float64]()
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsInf(v, 0) {
		return models.None[float64]()
	}
	return models.Some(v)
}

// SharesToLots converts a share count to board lots, rounding half away
// from zero (500 -> 1, 1500 -> 2, -500 -> -1).
func SharesToLots(shares models.Optional[int64]) models.Optional[int64] {
	v, ok := shares.Get()
	if !ok {
		return models.None[int64]()
	}
	return models.Some(int64(math.Round(float64(v) / LotSize)))
}
