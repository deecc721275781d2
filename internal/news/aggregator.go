// Package news orchestrates the pipeline: feed fetch, relevance scoring,
// price enrichment, strict filtering, final ordering.
package news

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/matheuskafuri/stockwire/internal/cache"
	"github.com/matheuskafuri/stockwire/internal/config"
	"github.com/matheuskafuri/stockwire/internal/feed"
	"github.com/matheuskafuri/stockwire/internal/score"
	"github.com/matheuskafuri/stockwire/internal/ticker"
)

// Cataloger supplies the ticker -> company name master list.
type Cataloger interface {
	MajorStocks(ctx context.Context) map[string]string
}

// PriceFetcher resolves prices for a set of symbols.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, symbols []string) map[string]float64
}

// Options control one aggregation run.
type Options struct {
	// Symbols restricts the run to the requested tickers and enables the
	// strict post-filter. Nil means general news against the full catalog.
	Symbols []string
	// SourceLimit truncates the source list when positive.
	SourceLimit int
}

type Aggregator struct {
	sources []config.Source
	catalog Cataloger
	prices  PriceFetcher

	// fetch is swapped in tests.
	fetch func(ctx context.Context, sources []config.Source) feed.FetchResult
}

func New(sources []config.Source, catalog Cataloger, prices PriceFetcher) *Aggregator {
	return &Aggregator{
		sources: sources,
		catalog: catalog,
		prices:  prices,
		fetch:   feed.FetchAll,
	}
}

// FetchAllNews runs the full pipeline and returns scored, price-enriched
// articles in reverse-chronological order (articles without a publish date
// sort last). It always returns a list; an empty result is a normal outcome,
// not an error.
func (a *Aggregator) FetchAllNews(ctx context.Context, opts Options) []cache.Article {
	// Canonicalize once so the candidate set and the strict filter agree on
	// symbol spelling whatever the caller passed.
	opts.Symbols = canonicalSymbols(opts.Symbols)

	sources := a.sources
	if opts.SourceLimit > 0 && opts.SourceLimit < len(sources) {
		slog.Debug("Limiting sources", "limit", opts.SourceLimit, "total", len(sources))
		sources = sources[:opts.SourceLimit]
	}

	result := a.fetch(ctx, sources)
	slog.Info("Feeds fetched", "sources", len(sources), "articles", len(result.Articles), "errors", len(result.Errors))
	if len(result.Articles) == 0 {
		return []cache.Article{}
	}

	catalog := a.catalog.MajorStocks(ctx)

	var candidates []ticker.Candidate
	if len(opts.Symbols) > 0 {
		candidates = ticker.Candidates(opts.Symbols, catalog)
	} else {
		candidates = ticker.CandidatesFromCatalog(catalog)
	}

	// Scoring is CPU-bound and runs sequentially; candidates are shared
	// read-only.
	articles := result.Articles
	results := make([]score.Result, len(articles))
	symbolSet := make(map[string]bool)
	for i := range articles {
		res := score.Score(articles[i], candidates)
		results[i] = res
		if len(res.Tickers) > 0 {
			articles[i].Tickers = res.Tickers
			articles[i].PrimaryTicker = res.Primary
			for _, sym := range res.Tickers {
				symbolSet[sym] = true
			}
		}
	}

	prices := a.prices.FetchPrices(ctx, sortedKeys(symbolSet))
	for i := range articles {
		if len(articles[i].Tickers) == 0 {
			continue
		}
		m := make(map[string]float64, len(articles[i].Tickers))
		for _, sym := range articles[i].Tickers {
			if p, ok := prices[sym]; ok {
				m[sym] = p
			}
		}
		if len(m) > 0 {
			articles[i].Prices = m
		}
	}

	if len(opts.Symbols) > 0 {
		articles = strictFilter(articles, results, opts.Symbols)
		slog.Info("Strict filter applied", "requested", opts.Symbols, "kept", len(articles))
	}

	sortByPublished(articles)
	return articles
}

// strictFilter keeps an article only when a requested symbol is its primary
// ticker, or a requested symbol scored at or above the strict threshold.
// This is a second bar on top of the scorer's own inclusion threshold:
// "is this article about what was asked for", not "does it mention it".
func strictFilter(articles []cache.Article, results []score.Result, requested []string) []cache.Article {
	want := make(map[string]bool, len(requested))
	for _, s := range requested {
		want[s] = true
	}

	kept := make([]cache.Article, 0, len(articles))
	for i, art := range articles {
		if art.PrimaryTicker != "" && want[art.PrimaryTicker] {
			kept = append(kept, art)
			continue
		}
		for sym, sc := range results[i].Scores {
			if want[sym] && sc >= score.StrictScore {
				kept = append(kept, art)
				break
			}
		}
	}
	return kept
}

// sortByPublished orders newest first; zero publish times are the earliest,
// so undated articles land at the end.
func sortByPublished(articles []cache.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Published.After(articles[j].Published)
	})
}

// canonicalSymbols uppercases, trims, and deduplicates the requested symbols.
func canonicalSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	var out []string
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
