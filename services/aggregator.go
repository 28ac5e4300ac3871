package services

import (
	"context"
	"sync"

	"price-scout/models"
	"price-scout/scraper"
	"price-scout/storage"
	"price-scout/utils"
)

const (
	// relevanceThreshold filters merged listings before ranking output.
	relevanceThreshold = 0.2
	// storedTop is how many listings a cache entry keeps.
	storedTop = 10
	// returnedTop is how many listings one search returns.
	returnedTop = 5
)

// PriceTracker is the slice of the tracker the aggregator needs: register
// today's price point for a surfaced listing.
type PriceTracker interface {
	Track(url, title string, price float64, currency, source string)
}

// Aggregator orchestrates one search pass: cache probe, concurrent fan-out
// to every marketplace adapter, merge, cold-start price ranking, relevance
// filter, tracker registration, and cache write-through.
type Aggregator struct {
	sources []scraper.Source
	cache   storage.QueryCache
	tracker PriceTracker
	logger  *utils.Logger
}

// New creates an Aggregator over the given adapters. The cache and tracker
// are injected so alternate backends and test doubles drop straight in.
func New(sources []scraper.Source, cache storage.QueryCache, tracker PriceTracker, logger *utils.Logger) *Aggregator {
	return &Aggregator{
		sources: sources,
		cache:   cache,
		tracker: tracker,
		logger:  logger,
	}
}

// SearchOnline returns the top-5 ranked listings for query. A cache hit is
// authoritative and bypasses all scraping. On a miss the full pipeline runs
// and the top-10 result is written through the cache — but only when at
// least one listing survived the relevance filter.
func (a *Aggregator) SearchOnline(ctx context.Context, query string) []*models.Listing {
	if cached, ok := a.cache.Get(query); ok {
		a.logger.Info("[aggregator] Cache hit for %q", query)
		return topN(cached, returnedTop)
	}

	a.logger.Info("[aggregator] Cache miss for %q — fanning out to %d sources", query, len(a.sources))
	merged := a.fanOut(ctx, query)

	ApplyPeerTrends(merged)

	var surviving []*models.Listing
	for _, l := range merged {
		if l.Score <= relevanceThreshold {
			continue
		}
		surviving = append(surviving, l)
		if l.URL != "" && l.URL != "#" {
			a.tracker.Track(l.URL, l.Title, l.Price, l.Currency, l.Source)
		}
	}

	if len(surviving) == 0 {
		a.logger.Warn("[aggregator] No listings survived for %q — nothing cached", query)
		return nil
	}

	SortByPrice(surviving)

	if err := a.cache.Put(query, topN(surviving, storedTop)); err != nil {
		a.logger.Error("[aggregator] Cache write failed for %q: %v", query, err)
	}

	return topN(surviving, returnedTop)
}

// fanOut queries every adapter concurrently and joins on all of them before
// merging. A failing adapter contributes zero listings; it never aborts the
// batch. Results are flattened in adapter registration order so the merge
// is deterministic given the settled set, with duplicate URLs dropped.
func (a *Aggregator) fanOut(ctx context.Context, query string) []*models.Listing {
	perSource := make([][]*models.Listing, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src scraper.Source) {
			defer wg.Done()

			listings, err := src.Search(ctx, query)
			if err != nil {
				a.logger.Error("[aggregator] %s failed for %q: %v", src.Name(), query, err)
				return
			}
			perSource[i] = listings
		}(i, src)
	}
	wg.Wait()

	seen := utils.NewURLSet()
	var merged []*models.Listing
	for _, listings := range perSource {
		for _, l := range listings {
			if l.URL != "" && !seen.Add(l.URL) {
				continue
			}
			merged = append(merged, l)
		}
	}
	return merged
}
