package quote

import (
	"context"
	"log/slog"
	"sync"
)

// maxWorkers caps concurrent in-flight quote lookups.
const maxWorkers = 10

// Fetcher resolves live-ish prices for ticker symbols, consulting and
// updating the cache.
type Fetcher struct {
	provider Provider
	cache    *Cache
}

func NewFetcher(provider Provider, cache *Cache) *Fetcher {
	return &Fetcher{provider: provider, cache: cache}
}

// FetchPrices resolves a price for every symbol it can. Cached fresh entries
// short-circuit the provider. Lookups fan out with bounded concurrency; a
// symbol that fails entirely is logged and omitted, never an error. The
// updated cache is persisted once after all lookups complete.
func (f *Fetcher) FetchPrices(ctx context.Context, symbols []string) map[string]float64 {
	prices := make(map[string]float64, len(symbols))
	if len(symbols) == 0 {
		return prices
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, maxWorkers)
	)

	for _, symbol := range symbols {
		if price, ok := f.cache.Get(symbol); ok {
			prices[symbol] = price
			continue
		}

		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			snap, err := f.provider.Lookup(ctx, sym)
			if err != nil {
				slog.Warn("Price lookup failed", "symbol", sym, "provider", f.provider.Name(), "error", err)
				return
			}
			price, ok := snap.Price()
			if !ok {
				slog.Warn("No price in quote", "symbol", sym, "provider", f.provider.Name())
				return
			}

			f.cache.Put(sym, price)
			mu.Lock()
			prices[sym] = price
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()

	if err := f.cache.Save(); err != nil {
		slog.Warn("Persisting price cache failed", "error", err)
	}
	return prices
}
