package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"price-scout/config"
	"price-scout/utils"
)

// headerSets are rotating realistic client-identity header sets. One set is
// picked at random per Fetch call. Accept-Encoding is left to net/http so
// response bodies arrive decompressed.
var headerSets = []map[string]string{
	{
		"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119 Safari/537.36",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Connection":                "keep-alive",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-Dest":            "document",
		"Upgrade-Insecure-Requests": "1",
	},
	{
		"User-Agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17 Safari/605.1.15",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Connection":                "keep-alive",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-Dest":            "document",
		"Upgrade-Insecure-Requests": "1",
	},
	{
		"User-Agent":                "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Connection":                "keep-alive",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-Dest":            "document",
		"Upgrade-Insecure-Requests": "1",
	},
}

// Fetcher is the retry-hardened HTTP retrieval layer shared by all HTTP
// adapters. It knows nothing about any source's data shape: it either
// returns a parsed document or nil.
type Fetcher struct {
	client *http.Client
	cfg    *config.Config
	logger *utils.Logger

	mu        sync.Mutex
	hostSlots map[string]chan struct{}
}

// NewFetcher builds a Fetcher honouring the configured proxy and
// per-attempt timeout.
func NewFetcher(cfg *config.Config, logger *utils.Logger) (*Fetcher, error) {
	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid PROXY_URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.FetchTimeoutMs) * time.Millisecond,
		},
		cfg:       cfg,
		logger:    logger,
		hostSlots: make(map[string]chan struct{}),
	}, nil
}

// Fetch retrieves url with up to MaxRetries attempts. Each attempt sleeps a
// random jitter interval first, then issues the request with a randomly
// chosen header set. A 200 short-circuits the remaining attempts; rate-limit
// and overload statuses earn extra backoff proportional to the attempt
// index; transport errors pause briefly and continue. Exhaustion returns
// nil — never an error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *goquery.Document {
	release := f.acquireHostSlot(rawURL)
	defer release()

	headers := headerSets[rand.Intn(len(headerSets))]

	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		if !sleepCtx(ctx, f.jitter()) {
			return nil
		}

		doc, status, err := f.attempt(ctx, rawURL, headers)
		if err != nil {
			f.logger.Error("[fetch] Attempt %d/%d for %s: %v", attempt, f.cfg.MaxRetries, rawURL, err)
			if !sleepCtx(ctx, time.Second) {
				return nil
			}
			continue
		}

		if status == http.StatusOK {
			return doc
		}

		f.logger.Warn("[fetch] Status %d for %s (attempt %d/%d)", status, rawURL, attempt, f.cfg.MaxRetries)
		if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable {
			if !sleepCtx(ctx, time.Duration(attempt)*2*time.Second) {
				return nil
			}
		}
	}

	f.logger.Warn("[fetch] Giving up on %s after %d attempts", rawURL, f.cfg.MaxRetries)
	return nil
}

func (f *Fetcher) attempt(ctx context.Context, rawURL string, headers map[string]string) (*goquery.Document, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("parse document: %w", err)
	}
	return doc, resp.StatusCode, nil
}

// acquireHostSlot caps concurrent connections per destination host.
func (f *Fetcher) acquireHostSlot(rawURL string) func() {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	f.mu.Lock()
	slots, ok := f.hostSlots[host]
	if !ok {
		n := f.cfg.HostConcurrency
		if n <= 0 {
			n = 1
		}
		slots = make(chan struct{}, n)
		f.hostSlots[host] = slots
	}
	f.mu.Unlock()

	slots <- struct{}{}
	return func() { <-slots }
}

func (f *Fetcher) jitter() time.Duration {
	min, max := f.cfg.FetchMinJitterMs, f.cfg.FetchMaxJitterMs
	if max <= min {
		return time.Duration(min) * time.Millisecond
	}
	return time.Duration(min+rand.Intn(max-min)) * time.Millisecond
}

// sleepCtx waits for d unless the context ends first. Returns false on
// cancellation so callers can bail out of the attempt loop.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
