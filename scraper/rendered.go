package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"price-scout/config"
	"price-scout/utils"
)

// RenderedFetcher retrieves pages through a headless browser for
// marketplaces that serve an empty shell to plain HTTP clients and only
// populate listings from JavaScript. It satisfies the same DocFetcher
// contract as the HTTP Fetcher: nil means no document.
type RenderedFetcher struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// NewRenderedFetcher creates a RenderedFetcher. A browser is launched per
// Fetch call; adapters using it are expected to be low-volume.
func NewRenderedFetcher(cfg *config.Config, logger *utils.Logger) *RenderedFetcher {
	return &RenderedFetcher{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

func (r *RenderedFetcher) Fetch(ctx context.Context, rawURL string) *goquery.Document {
	var html string

	err := r.retry.Do(ctx, "rendered-fetch", func() error {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(headerSets[0]["User-Agent"]),
		)
		if r.cfg.ChromeBin != "" {
			opts = append(opts, chromedp.ExecPath(r.cfg.ChromeBin))
		}

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
		defer cancelAlloc()

		// Suppress chromedp log noise
		tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		defer cancelTab()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 60*time.Second)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(rawURL),
			chromedp.Sleep(time.Duration(r.cfg.RenderedWaitMs)*time.Millisecond),
			chromedp.OuterHTML("html", &html),
		)
	})
	if err != nil {
		r.logger.Error("[rendered] Fetch failed for %s: %v", rawURL, err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		r.logger.Error("[rendered] Parse failed for %s: %v", rawURL, err)
		return nil
	}
	return doc
}
