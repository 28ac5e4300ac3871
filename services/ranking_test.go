package services

import (
	"testing"

	"price-scout/models"
)

func priced(price float64) *models.Listing {
	return &models.Listing{Title: "item", Price: price, Score: 1.0}
}

func TestApplyPeerTrendsPercentiles(t *testing.T) {
	listings := []*models.Listing{priced(10), priced(20), priced(30), priced(40)}

	ApplyPeerTrends(listings)

	want := []string{TrendGoodDeal, TrendFairPrice, TrendHighPrice, TrendHighPrice}
	for i, l := range listings {
		if l.Trend != want[i] {
			t.Errorf("price %.0f: got trend %q, want %q", l.Price, l.Trend, want[i])
		}
	}
}

func TestApplyPeerTrendsSingleListing(t *testing.T) {
	listings := []*models.Listing{priced(99)}

	ApplyPeerTrends(listings)

	// One listing is its own whole reference set: rank 1.0.
	if listings[0].Trend != TrendHighPrice {
		t.Errorf("got %q, want %q", listings[0].Trend, TrendHighPrice)
	}
}

func TestApplyPeerTrendsSkipsUnpriced(t *testing.T) {
	unpriced := priced(0)
	unpriced.Trend = "carried over"
	listings := []*models.Listing{priced(10), unpriced}

	ApplyPeerTrends(listings)

	if unpriced.Trend != "carried over" {
		t.Errorf("unpriced listing trend was rewritten to %q", unpriced.Trend)
	}
}

func TestApplyPeerTrendsAllUnpriced(t *testing.T) {
	listings := []*models.Listing{priced(0), priced(-1)}
	ApplyPeerTrends(listings)
	for _, l := range listings {
		if l.Trend != "" {
			t.Errorf("expected no trend, got %q", l.Trend)
		}
	}
}

func TestSortByPricePlacesUnpricedLast(t *testing.T) {
	listings := []*models.Listing{priced(30), priced(0), priced(10), priced(20)}

	SortByPrice(listings)

	wantOrder := []float64{10, 20, 30, 0}
	for i, l := range listings {
		if l.Price != wantOrder[i] {
			t.Fatalf("position %d: got %.0f, want %.0f", i, l.Price, wantOrder[i])
		}
	}
}

func TestSortByPriceStableOnTies(t *testing.T) {
	first := &models.Listing{Title: "first", Price: 15}
	second := &models.Listing{Title: "second", Price: 15}
	listings := []*models.Listing{first, second, priced(5)}

	SortByPrice(listings)

	if listings[1] != first || listings[2] != second {
		t.Errorf("tied prices should keep merge order, got [%s %s]", listings[1].Title, listings[2].Title)
	}
}
