package quote

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

// fakeProvider serves canned snapshots and records which symbols were looked
// up.
type fakeProvider struct {
	mu      sync.Mutex
	prices  map[string]float64
	fail    map[string]bool
	lookups []string
}

func (p *fakeProvider) Lookup(_ context.Context, symbol string) (Snapshot, error) {
	p.mu.Lock()
	p.lookups = append(p.lookups, symbol)
	p.mu.Unlock()

	if p.fail[symbol] {
		return Snapshot{}, errors.New("upstream unavailable")
	}
	price, ok := p.prices[symbol]
	if !ok {
		return Snapshot{}, nil // snapshot with no resolvable price
	}
	return Snapshot{Current: &price}, nil
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) lookupCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.lookups)
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return OpenCache(filepath.Join(t.TempDir(), "prices.json"))
}

func TestFetchPricesResolvesAll(t *testing.T) {
	provider := &fakeProvider{prices: map[string]float64{"AAPL": 231.5, "TSLA": 412.0}}
	f := NewFetcher(provider, newTestCache(t))

	prices := f.FetchPrices(context.Background(), []string{"AAPL", "TSLA"})

	if prices["AAPL"] != 231.5 || prices["TSLA"] != 412.0 {
		t.Errorf("unexpected prices: %v", prices)
	}
}

func TestFetchPricesCacheShortCircuits(t *testing.T) {
	provider := &fakeProvider{prices: map[string]float64{"AAPL": 231.5}}
	cache := newTestCache(t)
	cache.Put("AAPL", 230.0)
	f := NewFetcher(provider, cache)

	prices := f.FetchPrices(context.Background(), []string{"AAPL"})

	if provider.lookupCount() != 0 {
		t.Errorf("fresh cache entry should skip the provider, got %d lookups", provider.lookupCount())
	}
	if prices["AAPL"] != 230.0 {
		t.Errorf("expected cached price 230.0, got %v", prices["AAPL"])
	}
}

func TestFetchPricesFailuresOmitted(t *testing.T) {
	provider := &fakeProvider{
		prices: map[string]float64{"AAPL": 231.5},
		fail:   map[string]bool{"TSLA": true},
	}
	f := NewFetcher(provider, newTestCache(t))

	prices := f.FetchPrices(context.Background(), []string{"AAPL", "TSLA", "ZZZZ"})

	if prices["AAPL"] != 231.5 {
		t.Errorf("healthy symbol should resolve, got %v", prices)
	}
	if _, ok := prices["TSLA"]; ok {
		t.Error("failed lookup must be omitted, not zero-valued")
	}
	if _, ok := prices["ZZZZ"]; ok {
		t.Error("priceless snapshot must be omitted")
	}
}

func TestFetchPricesPopulatesCache(t *testing.T) {
	provider := &fakeProvider{prices: map[string]float64{"AAPL": 231.5}}
	cache := newTestCache(t)
	f := NewFetcher(provider, cache)

	f.FetchPrices(context.Background(), []string{"AAPL"})

	// A fresh fetch lands in the cache and persists to disk.
	if price, ok := cache.Get("AAPL"); !ok || price != 231.5 {
		t.Errorf("cache.Get(AAPL) = %v, %v; want 231.5, true", price, ok)
	}
	reopened := OpenCache(cache.path)
	if price, ok := reopened.Get("AAPL"); !ok || price != 231.5 {
		t.Errorf("persisted cache missing AAPL, got %v, %v", price, ok)
	}
}

func TestFetchPricesEmptyInput(t *testing.T) {
	provider := &fakeProvider{}
	f := NewFetcher(provider, newTestCache(t))

	prices := f.FetchPrices(context.Background(), nil)
	if len(prices) != 0 {
		t.Errorf("expected empty map, got %v", prices)
	}
	if provider.lookupCount() != 0 {
		t.Error("no symbols should mean no lookups")
	}
}

func TestFetchPricesManySymbols(t *testing.T) {
	provider := &fakeProvider{prices: map[string]float64{}}
	symbols := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		sym := string(rune('A'+i%26)) + string(rune('A'+i/26)) + "X"
		provider.prices[sym] = float64(i)
		symbols = append(symbols, sym)
	}
	f := NewFetcher(provider, newTestCache(t))

	prices := f.FetchPrices(context.Background(), symbols)
	if len(prices) != 40 {
		t.Errorf("expected 40 resolved prices, got %d", len(prices))
	}
}
