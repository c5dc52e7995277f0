package fubon

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// nodeText joins the trimmed, non-empty text nodes under the selection with
// single spaces, so markup like <td> 1,234 <br/> 張</td> reads "1,234 張".
func nodeText(s *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

var (
	groupedNumber = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*$`)
	plainNumber   = regexp.MustCompile(`^-?\d+$`)
)

// looksNumeric accepts optionally negative integers, with or without
// thousands grouping.
func looksNumeric(s string) bool {
	s = strings.TrimSpace(s)
	return groupedNumber.MatchString(s) || plainNumber.MatchString(s)
}

// firstGroup returns the first capture of re in s, or absent.
func firstGroup(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}
