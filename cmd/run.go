package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/matheuskafuri/stockwire/internal/cache"
	"github.com/matheuskafuri/stockwire/internal/config"
	"github.com/matheuskafuri/stockwire/internal/news"
	"github.com/matheuskafuri/stockwire/internal/quote"
	"github.com/matheuskafuri/stockwire/internal/ticker"
	"github.com/matheuskafuri/stockwire/internal/tui"
	"github.com/matheuskafuri/stockwire/internal/update"
	"github.com/spf13/cobra"
)

func runNews(cmd *cobra.Command, args []string) error {
	setupLogging()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := cache.Open(config.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer db.Close()

	catalog := ticker.NewCatalog(config.CatalogCachePath())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Kick off the release check while feeds load.
	updateCh := make(chan *update.Result, 1)
	go func() { updateCh <- update.Check(ctx, version) }()

	symbols, err := requestedSymbols(ctx, catalog)
	if err != nil {
		return err
	}

	var since time.Time
	if flagSince != "" {
		since, err = sinceStart(flagSince, time.Now())
		if err != nil {
			return err
		}
	}

	var articles []cache.Article
	// A symbol-filtered run always fetches live; the stored articles were
	// scored against a different candidate set.
	if len(symbols) > 0 || flagRefresh || db.NeedsRefresh(cfg.RefreshDuration()) {
		fmt.Fprintln(os.Stderr, "Fetching news...")
		fetcher := quote.NewFetcher(quote.NewYahooProvider(), quote.OpenCache(config.PriceCachePath()))
		agg := news.New(cfg.EnabledSources(), catalog, fetcher)
		articles = agg.FetchAllNews(ctx, news.Options{
			Symbols:     symbols,
			SourceLimit: flagSourceLimit,
		})

		if err := db.UpsertArticles(articles); err != nil {
			slog.Warn("Caching articles failed", "error", err)
		}
		if len(symbols) == 0 {
			db.SetLastRefresh()
		}
		db.Prune(cfg.RetentionDuration())

		if !since.IsZero() {
			articles = filterSince(articles, since)
		}
	} else {
		// Restrict cached reads to sources still enabled in config; the db
		// may hold articles from sources the user has since switched off.
		articles, err = db.GetArticles(cache.QueryOpts{
			Since:   since,
			Sources: sourceNames(cfg.EnabledSources()),
			Limit:   500,
		})
		if err != nil {
			return fmt.Errorf("reading cached articles: %w", err)
		}
	}

	if flagTimeInterval != "" {
		since, err := intervalStart(flagTimeInterval, time.Now())
		if err != nil {
			return err
		}
		articles = filterSince(articles, since)
	}

	if flagLimit > 0 && len(articles) > flagLimit {
		articles = articles[:flagLimit]
	}

	if len(articles) == 0 {
		fmt.Println("No articles found matching the given criteria.")
		return nil
	}

	if err := tui.Run(articles); err != nil {
		return err
	}

	select {
	case res := <-updateCh:
		if res != nil {
			fmt.Printf("A new version is available: %s (current: %s)\n", res.LatestVersion, version)
		}
	default:
	}
	return nil
}

func setupLogging() {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// requestedSymbols resolves --stocks or --company into a canonical symbol
// list. Nil means general news.
func requestedSymbols(ctx context.Context, catalog *ticker.Catalog) ([]string, error) {
	if flagStocks != "" {
		symbols := parseSymbols(flagStocks)
		if len(symbols) == 0 {
			slog.Warn("No valid stock symbols given, fetching general news")
			return nil, nil
		}
		return symbols, nil
	}

	if flagCompany != "" {
		matched, err := ticker.MatchCompany(catalog.MajorStocks(ctx), flagCompany)
		if err != nil {
			return nil, fmt.Errorf("looking up company: %w", err)
		}
		if len(matched) == 0 {
			slog.Warn("No tickers matched company name, fetching general news", "company", flagCompany)
			return nil, nil
		}
		slog.Info("Company resolved to tickers", "company", flagCompany, "tickers", matched)
		return matched, nil
	}

	return nil, nil
}

func parseSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		sym := strings.ToUpper(strings.TrimSpace(part))
		if sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

// sinceStart converts a --since age like "24h" or "7d" into a window start.
func sinceStart(s string, now time.Time) (time.Time, error) {
	d, err := parseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since value: %w", err)
	}
	return now.Add(-d), nil
}

func sourceNames(sources []config.Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.Name)
	}
	return out
}

// intervalStart maps a --time-interval choice to its window start.
func intervalStart(interval string, now time.Time) (time.Time, error) {
	switch interval {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	case "last-hour":
		return now.Add(-time.Hour), nil
	case "last-4-hours":
		return now.Add(-4 * time.Hour), nil
	case "last-12-hours":
		return now.Add(-12 * time.Hour), nil
	case "last-24-hours":
		return now.Add(-24 * time.Hour), nil
	case "last-15-minutes":
		return now.Add(-15 * time.Minute), nil
	case "last-30-minutes":
		return now.Add(-30 * time.Minute), nil
	default:
		return time.Time{}, fmt.Errorf("unknown time interval %q", interval)
	}
}

func filterSince(articles []cache.Article, since time.Time) []cache.Article {
	out := make([]cache.Article, 0, len(articles))
	for _, a := range articles {
		if !a.Published.IsZero() && !a.Published.Before(since) {
			out = append(out, a)
		}
	}
	return out
}
