package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"price-scout/models"
	"price-scout/scraper"
	"price-scout/storage"
	"price-scout/utils"
)

// fakeSource is a Source test double with a call counter.
type fakeSource struct {
	name     string
	listings []*models.Listing
	err      error
	calls    int32
}

func (f *fakeSource) Search(_ context.Context, _ string) ([]*models.Listing, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.listings, nil
}

func (f *fakeSource) Name() string { return f.name }

// fakeCache is an in-memory QueryCache with a put counter.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]*models.Listing
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]*models.Listing)}
}

func (c *fakeCache) Get(query string) ([]*models.Listing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	results, ok := c.entries[storage.NormalizeQuery(query)]
	return results, ok
}

func (c *fakeCache) Put(query string, results []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[storage.NormalizeQuery(query)] = results
	c.puts++
	return nil
}

// fakeTracker records which URLs were registered.
type fakeTracker struct {
	tracked []string
}

func (f *fakeTracker) Track(url, _ string, _ float64, _, _ string) {
	f.tracked = append(f.tracked, url)
}

func listing(title string, price float64, url string) *models.Listing {
	return &models.Listing{Title: title, Price: price, Currency: "USD", Source: "Test", URL: url, Score: 1.0}
}

func sourcesOf(fakes ...*fakeSource) []scraper.Source {
	out := make([]scraper.Source, len(fakes))
	for i, f := range fakes {
		out[i] = f
	}
	return out
}

func TestFanOutIsolatesFailingAdapter(t *testing.T) {
	good1 := &fakeSource{name: "Amazon", listings: []*models.Listing{listing("A", 10, "u://a")}}
	bad := &fakeSource{name: "Flipkart", err: errors.New("boom")}
	good2 := &fakeSource{name: "eBay", listings: []*models.Listing{listing("B", 20, "u://b")}}

	cache := newFakeCache()
	tr := &fakeTracker{}
	agg := New(sourcesOf(good1, bad, good2), cache, tr, utils.NewLogger(false))

	results := agg.SearchOnline(context.Background(), "wireless mouse")

	if len(results) != 2 {
		t.Fatalf("expected 2 listings from the surviving adapters, got %d", len(results))
	}
	for _, l := range results {
		if l.Source == "Flipkart" {
			t.Errorf("failed adapter contributed listing %q", l.Title)
		}
	}
	if atomic.LoadInt32(&bad.calls) != 1 {
		t.Errorf("failing adapter should still have been invoked once, got %d", bad.calls)
	}
}

func TestCacheHitBypassesAllAdapters(t *testing.T) {
	src := &fakeSource{name: "Amazon", listings: []*models.Listing{listing("A", 10, "u://a")}}
	cache := newFakeCache()
	tr := &fakeTracker{}
	agg := New(sourcesOf(src), cache, tr, utils.NewLogger(false))

	first := agg.SearchOnline(context.Background(), "wireless mouse")
	if len(first) == 0 {
		t.Fatal("first run should return results")
	}
	if got := atomic.LoadInt32(&src.calls); got != 1 {
		t.Fatalf("first run: expected 1 adapter call, got %d", got)
	}

	second := agg.SearchOnline(context.Background(), "Wireless  Mouse")
	if got := atomic.LoadInt32(&src.calls); got != 1 {
		t.Errorf("second run must be a cache hit, adapter calls went to %d", got)
	}
	if len(second) != len(first) {
		t.Errorf("cache hit returned %d listings, first run returned %d", len(second), len(first))
	}
	if len(tr.tracked) != 1 {
		t.Errorf("tracker should only be updated on the live run, got %d registrations", len(tr.tracked))
	}
}

func TestEmptyMergeIsNotCached(t *testing.T) {
	empty := &fakeSource{name: "Amazon"}
	failing := &fakeSource{name: "eBay", err: errors.New("down")}
	cache := newFakeCache()
	agg := New(sourcesOf(empty, failing), cache, &fakeTracker{}, utils.NewLogger(false))

	results := agg.SearchOnline(context.Background(), "nothing here")

	if len(results) != 0 {
		t.Errorf("expected empty result set, got %d", len(results))
	}
	if cache.puts != 0 {
		t.Errorf("empty results must not be written through, got %d puts", cache.puts)
	}
}

func TestLowScoreListingsFiltered(t *testing.T) {
	unpriced := &models.Listing{Title: "Unpriced", Price: 0, URL: "u://zero", Score: 0.1}
	src := &fakeSource{name: "Amazon", listings: []*models.Listing{listing("Priced", 10, "u://p"), unpriced}}
	agg := New(sourcesOf(src), newFakeCache(), &fakeTracker{}, utils.NewLogger(false))

	results := agg.SearchOnline(context.Background(), "wireless mouse")

	if len(results) != 1 || results[0].Title != "Priced" {
		t.Errorf("score 0.1 listing should be filtered, got %v", titles(results))
	}
}

func TestTrackerSideEffectSkipsPlaceholderURLs(t *testing.T) {
	src := &fakeSource{name: "Amazon", listings: []*models.Listing{
		listing("A", 10, "u://a"),
		listing("B", 20, "#"),
		listing("C", 30, ""),
	}}
	tr := &fakeTracker{}
	agg := New(sourcesOf(src), newFakeCache(), tr, utils.NewLogger(false))

	agg.SearchOnline(context.Background(), "wireless mouse")

	if len(tr.tracked) != 1 || tr.tracked[0] != "u://a" {
		t.Errorf("expected only u://a to be tracked, got %v", tr.tracked)
	}
}

func TestStoredTopTenReturnedTopFive(t *testing.T) {
	var listings []*models.Listing
	for i := 0; i < 12; i++ {
		listings = append(listings, listing("Item", float64(100+i), "u://"+string(rune('a'+i))))
	}
	src := &fakeSource{name: "Amazon", listings: listings}
	cache := newFakeCache()
	agg := New(sourcesOf(src), cache, &fakeTracker{}, utils.NewLogger(false))

	results := agg.SearchOnline(context.Background(), "wireless mouse")

	if len(results) != 5 {
		t.Errorf("returned set: got %d, want 5", len(results))
	}
	cached, ok := cache.Get("wireless mouse")
	if !ok {
		t.Fatal("expected a cache entry after a non-empty run")
	}
	if len(cached) != 10 {
		t.Errorf("cached set: got %d, want 10", len(cached))
	}
	for i := 1; i < len(cached); i++ {
		if cached[i].Price < cached[i-1].Price {
			t.Fatalf("cached set not ascending by price at %d", i)
		}
	}
}

func TestMergeDropsDuplicateURLs(t *testing.T) {
	a := &fakeSource{name: "Amazon", listings: []*models.Listing{listing("A", 10, "u://same")}}
	b := &fakeSource{name: "eBay", listings: []*models.Listing{listing("A again", 12, "u://same")}}
	agg := New(sourcesOf(a, b), newFakeCache(), &fakeTracker{}, utils.NewLogger(false))

	results := agg.SearchOnline(context.Background(), "wireless mouse")

	if len(results) != 1 {
		t.Errorf("duplicate URL should be dropped in the merge, got %d listings", len(results))
	}
}

func titles(listings []*models.Listing) []string {
	var out []string
	for _, l := range listings {
		out = append(out, l.Title)
	}
	return out
}
