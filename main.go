package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"price-scout/agent"
	"price-scout/config"
	"price-scout/scraper"
	"price-scout/services"
	"price-scout/storage"
	"price-scout/tracker"
	"price-scout/utils"
)

func main() {
	queryFlag := flag.String("query", "", "run a single search and print the ranked results")
	rescanFlag := flag.Bool("rescan", false, "re-scan all tracked items once and exit")
	exportFlag := flag.String("export", "", "export tracked price history to a CSV file and exit")
	flag.Parse()

	cfg := config.Load()
	logger := utils.NewLogger(cfg.Debug)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("=== Price Scout starting ===")

	fetcher, err := scraper.NewFetcher(cfg, logger)
	if err != nil {
		logger.Error("Fetch layer init failed: %v", err)
		os.Exit(1)
	}
	rendered := scraper.NewRenderedFetcher(cfg, logger)

	sources := []scraper.Source{
		scraper.NewAmazonScraper(fetcher, logger),
		scraper.NewFlipkartScraper(rendered, logger),
		scraper.NewEbayScraper(fetcher, logger),
	}
	sourcesByName := make(map[string]scraper.Source, len(sources))
	for _, src := range sources {
		sourcesByName[src.Name()] = src
	}

	cache, interactions, closeStores := buildStores(ctx, cfg, logger)
	defer closeStores()

	var advice tracker.AdviceProvider
	if cfg.AdviceURL != "" {
		advice = tracker.NewHTTPAdviceProvider(cfg.AdviceURL)
	}

	priceTracker := tracker.New(storage.NewJSONHistory(cfg.DataDir, logger), advice, logger)
	priceTracker.RescanWorkers = cfg.MaxConcurrency
	priceTracker.RescanRateMs = cfg.RateLimitMs

	switch {
	case *exportFlag != "":
		exportHistory(cfg, logger, *exportFlag)
		return
	case *rescanFlag:
		logger.Info("Starting one-off price re-scan...")
		updated := priceTracker.Rescan(ctx, sourcesByName)
		logger.Info("Re-scan complete — %d items updated", updated)
		return
	}

	aggregator := services.New(sources, cache, priceTracker, logger)

	if *queryFlag != "" {
		runQuery(ctx, aggregator, priceTracker, *queryFlag)
		return
	}

	// Chat mode: daily re-scan in the background, REPL in the foreground.
	scheduler := tracker.NewScheduler(priceTracker, sourcesByName, cfg.RescanSpec, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("Scheduler start failed: %v", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	llm := agent.NewLLMClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	profile := storage.NewJSONProfile(cfg.DataDir, logger)
	shopAgent := agent.New(profile, interactions, aggregator, priceTracker, llm, logger, cfg.UserID)

	runChat(ctx, shopAgent, logger)
	logger.Info("Price Scout stopped")
}

// buildStores picks the cache and interaction-log backends from config:
// Postgres when USE_POSTGRES is set, Redis for the cache when REDIS_URL is
// set, JSON files otherwise.
func buildStores(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.QueryCache, storage.InteractionLog, func()) {
	var cache storage.QueryCache = storage.NewJSONCache(cfg.DataDir, logger)
	var interactions storage.InteractionLog = storage.NewJSONLog(cfg.DataDir, logger)
	closers := []func(){}

	if cfg.UsePostgres {
		pg, err := storage.NewPostgresStore(cfg.DSN(), logger)
		if err != nil {
			logger.Error("Postgres unavailable, staying on JSON stores: %v", err)
		} else {
			cache = pg
			interactions = pg
			closers = append(closers, func() { _ = pg.Close() })
		}
	}

	if cfg.RedisURL != "" {
		rc, err := storage.NewRedisCache(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Error("Redis unavailable, keeping current cache backend: %v", err)
		} else {
			cache = rc
			closers = append(closers, func() { _ = rc.Close() })
		}
	}

	return cache, interactions, func() {
		for _, c := range closers {
			c()
		}
	}
}

func runQuery(ctx context.Context, aggregator *services.Aggregator, priceTracker *tracker.Tracker, query string) {
	results := aggregator.SearchOnline(ctx, query)
	if len(results) == 0 {
		fmt.Println("No results found.")
		return
	}

	fmt.Printf("\nTop %d results for %q:\n\n", len(results), query)
	for i, l := range results {
		trend := l.Trend
		if trend == "" {
			trend = priceTracker.Forecast(ctx, l.URL)
		}
		fmt.Printf("%d. [%s] %s\n   %.2f %s — %s\n   %s\n\n",
			i+1, l.Source, l.Title, l.Price, l.Currency, trend, l.URL)
	}
}

func runChat(ctx context.Context, shopAgent *agent.Agent, logger *utils.Logger) {
	fmt.Println("Price Scout ready. Ask about anything you want to buy (Ctrl+C to quit).")

	scanner := bufio.NewScanner(os.Stdin)
	input := make(chan string)
	go func() {
		defer close(input)
		for scanner.Scan() {
			input <- scanner.Text()
		}
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok := <-input:
			if !ok {
				return
			}
			if line == "" {
				continue
			}
			fmt.Println(shopAgent.Chat(ctx, line))
		}
	}
}

func exportHistory(cfg *config.Config, logger *utils.Logger, path string) {
	items, err := storage.NewJSONHistory(cfg.DataDir, logger).Load()
	if err != nil {
		logger.Error("History load failed: %v", err)
		os.Exit(1)
	}

	exporter, err := storage.NewCSVExporter(path)
	if err != nil {
		logger.Error("CSV export failed: %v", err)
		os.Exit(1)
	}
	defer exporter.Close()

	if err := exporter.WriteHistory(items); err != nil {
		logger.Error("CSV export failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Exported %d tracked items to %s", len(items), path)
}
