package scraper

import (
	"testing"

	"price-scout/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"$120", 120},
		{"₹3,500", 3500},
		{"$1,299.99", 1299.99},
		{"24.99 to 39.99", 24.99},
		{"", 0},
		{"free", 0},
		{"USD 99", 99},
	}

	for _, tt := range tests {
		got := parsePrice(tt.raw)
		if got != tt.want {
			t.Errorf("parsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestCanonicalQuery(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"Gaming Notebook", "gaming laptop"},
		{"notebooks under 50k", "laptop under 50k"},
		{"wireless mouse", "wireless mouse"},
		{"Wireless Earbuds", "wireless headphones"},
		{"LAPTOPS", "laptop"},
	}

	for _, tt := range tests {
		got := canonicalQuery(tt.query)
		if got != tt.want {
			t.Errorf("canonicalQuery(%q) = %q; want %q", tt.query, got, tt.want)
		}
	}
}

func TestQueryCategory(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"wireless mouse", "mouse"},
		{"gaming notebook", "laptop"},
		{"bluetooth earphones", "headphones"},
		{"standing desk", "generic"},
	}

	for _, tt := range tests {
		got := queryCategory(tt.query)
		if got != tt.want {
			t.Errorf("queryCategory(%q) = %q; want %q", tt.query, got, tt.want)
		}
	}
}

func TestScoreListings(t *testing.T) {
	listings := []*models.Listing{
		{Title: "Priced", Price: 49.99},
		{Title: "Unpriced", Price: 0},
	}

	scoreListings(listings)

	if listings[0].Score != 1.0 {
		t.Errorf("priced listing score: got %.2f, want 1.0", listings[0].Score)
	}
	if listings[1].Score != 0.1 {
		t.Errorf("unpriced listing score: got %.2f, want 0.1", listings[1].Score)
	}
}

func TestNormalizeText(t *testing.T) {
	got := normalizeText("  Logitech   M185 \n Wireless  Mouse ")
	want := "Logitech M185 Wireless Mouse"
	if got != want {
		t.Errorf("normalizeText: got %q, want %q", got, want)
	}
}
