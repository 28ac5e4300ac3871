package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"price-scout/models"
	"price-scout/scraper"
	"price-scout/storage"
	"price-scout/utils"
)

// Tracker owns the per-URL daily price history and turns it into buy/wait
// advice. All history mutations go through Track; nothing else writes to
// the store.
type Tracker struct {
	store    storage.HistoryStore
	provider AdviceProvider // optional, consulted before the local heuristic
	logger   *utils.Logger

	// Re-scan worker pool settings, overridable before Rescan is used.
	RescanWorkers int
	RescanRateMs  int

	mu  sync.Mutex
	now func() time.Time
}

// New creates a Tracker. provider may be nil, in which case Forecast uses
// only the local heuristic.
func New(store storage.HistoryStore, provider AdviceProvider, logger *utils.Logger) *Tracker {
	return &Tracker{
		store:         store,
		provider:      provider,
		logger:        logger,
		RescanWorkers: 3,
		RescanRateMs:  2000,
		now:           time.Now,
	}
}

// Track registers today's price point for url. A non-positive price is a
// no-op. The item is created on first track; a second track on the same
// calendar day does not append even if the price changed intraday.
func (t *Tracker) Track(url, title string, price float64, currency, source string) {
	if price <= 0 || url == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	items, err := t.store.Load()
	if err != nil {
		t.logger.Error("[tracker] History load failed: %v", err)
		return
	}

	item, ok := items[url]
	if !ok {
		item = &models.TrackedItem{
			Title:    title,
			URL:      url,
			Currency: currency,
			Source:   source,
		}
		items[url] = item
	}

	today := t.now().Format("2006-01-02")
	if n := len(item.History); n > 0 && item.History[n-1].Date == today {
		return
	}
	item.History = append(item.History, models.PricePoint{Date: today, Price: price})

	if err := t.store.Save(items); err != nil {
		t.logger.Error("[tracker] History write failed for %s: %v", url, err)
	}
}

// Forecast derives trend advice for a tracked URL. An external provider
// with a non-empty answer wins outright; otherwise the short-term
// day-over-day signal takes precedence and only a flat comparison falls
// through to the 30-point mean.
func (t *Tracker) Forecast(ctx context.Context, url string) string {
	if t.provider != nil {
		advice, err := t.provider.Advice(ctx, url)
		if err != nil {
			t.logger.Debug("[tracker] External advice failed for %s: %v", url, err)
		} else if advice != "" {
			return advice
		}
	}

	t.mu.Lock()
	items, err := t.store.Load()
	t.mu.Unlock()
	if err != nil {
		return "🆕 New Item: collecting data..."
	}

	item, ok := items[url]
	if !ok || len(item.History) < 2 {
		return "🆕 New Item: collecting data..."
	}

	history := item.History
	latest := history[len(history)-1].Price
	prev := history[len(history)-2].Price

	if latest < prev {
		dropPct := (prev - latest) / prev * 100
		if dropPct > 20 {
			return fmt.Sprintf("🔥 FIRE DEAL: Dropped %.1f%%!", dropPct)
		}
		return fmt.Sprintf("📉 Price Drop: Down %.1f%% (Buy Now)", dropPct)
	}

	if latest > prev {
		return "📈 Price Rising: Wait (Was cheaper recently)"
	}

	// Flat day-over-day: compare against the mean of up to the last 30 points.
	window := history
	if len(window) > 30 {
		window = window[len(window)-30:]
	}
	var sum float64
	for _, p := range window {
		sum += p.Price
	}
	mean := sum / float64(len(window))

	if latest < mean*0.95 {
		return "✅ Good Deal: 5% below monthly average."
	}
	return "➡️ Price Stable: Monitor for drops."
}

// Rescan refreshes every tracked item by re-running its adapter's search
// for the stored title and feeding the first result back into Track under
// the item's original URL. Items with no matching adapter are skipped;
// per-item failures count as zero updates and never abort the batch.
// Returns the number of items updated.
func (t *Tracker) Rescan(ctx context.Context, sources map[string]scraper.Source) int {
	t.mu.Lock()
	items, err := t.store.Load()
	t.mu.Unlock()
	if err != nil {
		t.logger.Error("[tracker] History load failed, skipping re-scan: %v", err)
		return 0
	}

	t.logger.Info("[tracker] Re-scanning %d tracked items", len(items))

	pool := utils.NewWorkerPool(t.RescanWorkers, t.RescanRateMs)
	var updated int64

	for url, item := range items {
		src := matchSource(url, item.Source, sources)
		if src == nil {
			t.logger.Debug("[tracker] No adapter matches %s — skipping", url)
			continue
		}

		url, item, src := url, item, src
		pool.Submit(func() {
			results, err := src.Search(ctx, item.Title)
			if err != nil {
				t.logger.Error("[tracker] Re-scan failed for %q: %v", item.Title, err)
				return
			}
			if len(results) == 0 {
				return
			}

			// Heuristic match: take the adapter's first result for the
			// stored title.
			best := results[0]
			t.Track(url, best.Title, best.Price, best.Currency, item.Source)
			atomic.AddInt64(&updated, 1)
		})
	}

	pool.Wait()
	return int(atomic.LoadInt64(&updated))
}

// matchSource picks an adapter from a hint in the URL, falling back to the
// item's stored source name. Returns nil when neither matches.
func matchSource(url, storedSource string, sources map[string]scraper.Source) scraper.Source {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "amazon"):
		if s, ok := sources["Amazon"]; ok {
			return s
		}
	case strings.Contains(lower, "flipkart"):
		if s, ok := sources["Flipkart"]; ok {
			return s
		}
	case strings.Contains(lower, "ebay"):
		if s, ok := sources["eBay"]; ok {
			return s
		}
	}
	if s, ok := sources[storedSource]; ok {
		return s
	}
	return nil
}
