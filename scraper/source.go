package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"price-scout/models"
)

// maxListingsPerSource caps how many listings one adapter contributes to a
// single aggregation pass.
const maxListingsPerSource = 10

// Source is the capability shared by all marketplace adapters: turn a
// search term into a normalized listing list. Implementations recover from
// fetch and parse failures internally (falling back to demo listings), so a
// returned error means the adapter could not run at all.
type Source interface {
	Search(ctx context.Context, query string) ([]*models.Listing, error)
	Name() string
}

// DocFetcher retrieves a URL as a parsed document. A nil document is a
// normal outcome (blocked, timed out, exhausted retries) that callers
// handle by falling back; it is never an error.
type DocFetcher interface {
	Fetch(ctx context.Context, url string) *goquery.Document
}
