package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"price-scout/models"
	"price-scout/utils"
)

const amazonBaseURL = "https://www.amazon.in"

// AmazonScraper extracts search-result listings from Amazon result pages.
type AmazonScraper struct {
	fetcher DocFetcher
	logger  *utils.Logger
}

func NewAmazonScraper(fetcher DocFetcher, logger *utils.Logger) *AmazonScraper {
	return &AmazonScraper{fetcher: fetcher, logger: logger}
}

func (s *AmazonScraper) Name() string { return "Amazon" }

func (s *AmazonScraper) Search(ctx context.Context, query string) ([]*models.Listing, error) {
	q := canonicalQuery(query)
	searchURL := amazonBaseURL + "/s?k=" + strings.ReplaceAll(q, " ", "+")

	var listings []*models.Listing
	if doc := s.fetcher.Fetch(ctx, searchURL); doc != nil {
		listings = s.extract(doc)
	}

	if len(listings) == 0 {
		s.logger.Warn("[amazon] Degraded mode — no live listings for %q, using fallback set", q)
		listings = s.fallbackListings(queryCategory(q))
	}

	scoreListings(listings)
	return listings, nil
}

// extract pulls listing cards out of an Amazon search results page.
// Entries missing a title or a parseable price are skipped silently.
func (s *AmazonScraper) extract(doc *goquery.Document) []*models.Listing {
	var listings []*models.Listing

	doc.Find("div[data-component-type='s-search-result']").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		titleEl := card.Find("h2 a.a-link-normal").First()
		title := normalizeText(titleEl.Text())
		whole := strings.TrimSpace(card.Find(".a-price-whole").First().Text())
		frac := strings.TrimSpace(card.Find(".a-price-fraction").First().Text())

		if title == "" || whole == "" {
			return true
		}

		raw := whole
		if frac != "" {
			raw = strings.TrimSuffix(whole, ".") + "." + frac
		}
		price := parsePrice(raw)
		if price <= 0 {
			return true
		}

		listingURL := amazonBaseURL
		if href, ok := titleEl.Attr("href"); ok && href != "" {
			listingURL = amazonBaseURL + href
		}

		listings = append(listings, &models.Listing{
			Title:    title,
			Price:    price,
			Currency: "INR",
			Source:   s.Name(),
			URL:      listingURL,
		})
		return len(listings) < maxListingsPerSource
	})

	return listings
}

func (s *AmazonScraper) fallbackListings(category string) []*models.Listing {
	switch category {
	case "laptop":
		return []*models.Listing{
			{Title: "Lenovo IdeaPad Slim 3 (Ryzen 5)", Price: 38990, Currency: "INR", Source: s.Name(), URL: "amazon://demo/ideapad-slim3"},
			{Title: "HP 15s (12th Gen i5)", Price: 47990, Currency: "INR", Source: s.Name(), URL: "amazon://demo/hp-15s"},
		}
	case "headphones":
		return []*models.Listing{
			{Title: "boAt Rockerz 450 Bluetooth Headphones", Price: 1499, Currency: "INR", Source: s.Name(), URL: "amazon://demo/boat-rockerz-450"},
			{Title: "Sony WH-CH520 Wireless Headphones", Price: 4490, Currency: "INR", Source: s.Name(), URL: "amazon://demo/sony-wh-ch520"},
		}
	case "mouse":
		return []*models.Listing{
			{Title: "Logitech M185 Wireless Mouse", Price: 799, Currency: "INR", Source: s.Name(), URL: "amazon://demo/logitech-m185"},
			{Title: "HP X1000 Wired Mouse", Price: 399, Currency: "INR", Source: s.Name(), URL: "amazon://demo/hp-x1000"},
		}
	default:
		return []*models.Listing{
			{Title: "AmazonBasics Bestseller Pick", Price: 999, Currency: "INR", Source: s.Name(), URL: "amazon://demo/bestseller-pick"},
			{Title: "AmazonBasics Budget Pick", Price: 499, Currency: "INR", Source: s.Name(), URL: "amazon://demo/budget-pick"},
		}
	}
}
