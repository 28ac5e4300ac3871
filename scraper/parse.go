package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"price-scout/models"
)

// priceRegexp captures the first numeric value in a raw price string.
var priceRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

// querySynonyms collapses common category synonyms onto a canonical search
// term so "notebook" and "laptop" hit the same cache key and fallback set.
var querySynonyms = map[string]string{
	"notebook":  "laptop",
	"notebooks": "laptop",
	"laptops":   "laptop",
	"mice":      "mouse",
	"earphones": "headphones",
	"earbuds":   "headphones",
	"headphone": "headphones",
}

// canonicalQuery lowercases the query and applies the synonym map word by
// word.
func canonicalQuery(query string) string {
	words := strings.Fields(strings.ToLower(query))
	for i, w := range words {
		if canon, ok := querySynonyms[w]; ok {
			words[i] = canon
		}
	}
	return strings.Join(words, " ")
}

// queryCategory picks the fallback catalogue for a query.
func queryCategory(query string) string {
	q := canonicalQuery(query)
	switch {
	case strings.Contains(q, "mouse"):
		return "mouse"
	case strings.Contains(q, "laptop"):
		return "laptop"
	case strings.Contains(q, "headphones"):
		return "headphones"
	default:
		return "generic"
	}
}

// parsePrice extracts the first numeric value from a raw price string.
// Examples:
//
//	"$1,299.99"  → 1299.99
//	"₹3,500"     → 3500
//	"free"       → 0
func parsePrice(raw string) float64 {
	cleaned := strings.ReplaceAll(raw, ",", "")
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return price
}

// normalizeText strips leading/trailing whitespace and collapses internal
// whitespace.
func normalizeText(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), unicode.IsSpace)
	return strings.Join(fields, " ")
}

// scoreListings assigns every listing its relevance score: 1.0 with a
// positive price, 0.1 without one. Never zero, so ordering stays total.
func scoreListings(listings []*models.Listing) {
	for _, l := range listings {
		if l.Price > 0 {
			l.Score = 1.0
		} else {
			l.Score = 0.1
		}
	}
}
