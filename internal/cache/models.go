package cache

import "time"

// Article is the unit of work flowing through the pipeline. The feed layer
// creates it with Tickers, PrimaryTicker and Prices unset; the scorer assigns
// Tickers and PrimaryTicker exactly once, the price fetcher assigns Prices
// exactly once, and it is immutable afterwards.
type Article struct {
	ID            string
	Source        string
	Title         string
	Link          string
	Summary       string
	Published     time.Time // zero when the feed carried no parseable date
	FetchedAt     time.Time
	Tickers       []string
	PrimaryTicker string
	Prices        map[string]float64
}

type QueryOpts struct {
	Since   time.Time
	Sources []string
	Limit   int
}
