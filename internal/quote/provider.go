package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Snapshot holds the raw quote fields a provider could resolve for one
// symbol. Fields are nil when the upstream did not supply them.
type Snapshot struct {
	Current          *float64
	RegularMarket    *float64
	PreviousClose    *float64
	LastHistoryClose *float64
}

// Price walks the fallback chain in order and returns the first value
// present: current price, regular-market price, previous close, then the last
// close of a short historical window.
func (s Snapshot) Price() (float64, bool) {
	for _, p := range []*float64{s.Current, s.RegularMarket, s.PreviousClose, s.LastHistoryClose} {
		if p != nil {
			return *p, true
		}
	}
	return 0, false
}

// Provider resolves a quote snapshot for one symbol. Implementations are
// replaceable; the fetcher only needs the snapshot shape.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (Snapshot, error)
	Name() string
}

// YahooProvider reads the public Yahoo Finance chart endpoint.
type YahooProvider struct {
	baseURL string
	client  *http.Client
}

func NewYahooProvider() *YahooProvider {
	return &YahooProvider{
		baseURL: "https://query1.finance.yahoo.com",
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				PreviousClose      *float64 `json:"previousClose"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *YahooProvider) Lookup(ctx context.Context, symbol string) (Snapshot, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=2d&interval=1d", p.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("User-Agent", "stockwire/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("quote request for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("quote request for %s: status %d", symbol, resp.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Snapshot{}, fmt.Errorf("decoding quote for %s: %w", symbol, err)
	}
	if body.Chart.Error != nil {
		return Snapshot{}, fmt.Errorf("quote for %s: %s", symbol, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return Snapshot{}, fmt.Errorf("quote for %s: empty result", symbol)
	}

	result := body.Chart.Result[0]
	snap := Snapshot{
		RegularMarket: result.Meta.RegularMarketPrice,
		PreviousClose: result.Meta.PreviousClose,
	}
	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil {
				snap.LastHistoryClose = closes[i]
				break
			}
		}
	}
	return snap, nil
}
