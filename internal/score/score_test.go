package score

import (
	"reflect"
	"testing"

	"github.com/matheuskafuri/stockwire/internal/cache"
	"github.com/matheuskafuri/stockwire/internal/ticker"
)

func candidates(t *testing.T, symbols ...string) []ticker.Candidate {
	t.Helper()
	catalog := map[string]string{
		"AAPL": "Apple Inc.",
		"TSLA": "Tesla, Inc.",
		"MSFT": "Microsoft Corporation",
		"NOW":  "ServiceNow, Inc.",
		"SHOP": "Shopify Inc.",
	}
	return ticker.Candidates(symbols, catalog)
}

func TestScoreEmptyArticle(t *testing.T) {
	res := Score(cache.Article{}, candidates(t, "AAPL", "TSLA"))
	if len(res.Tickers) != 0 {
		t.Errorf("empty article should yield no tickers, got %v", res.Tickers)
	}
	if res.Primary != "" {
		t.Errorf("empty article should yield no primary ticker, got %q", res.Primary)
	}
}

func TestCashtagSeedsHighScore(t *testing.T) {
	a := cache.Article{Title: "Traders pile into $MSFT ahead of earnings"}
	res := Score(a, candidates(t, "MSFT", "AAPL"))

	if res.Scores["MSFT"] < 8 {
		t.Errorf("cashtag match should score >= 8, got %d", res.Scores["MSFT"])
	}
	if !contains(res.Tickers, "MSFT") {
		t.Errorf("MSFT should be in ticker set, got %v", res.Tickers)
	}
	if contains(res.Tickers, "AAPL") {
		t.Errorf("AAPL should not match, got %v", res.Tickers)
	}
}

func TestParenthesizedSymbolSeedsHighScore(t *testing.T) {
	a := cache.Article{Title: "Microsoft (MSFT) beats estimates"}
	res := Score(a, candidates(t, "MSFT"))

	if res.Scores["MSFT"] < 8 {
		t.Errorf("(SYM) match should score >= 8, got %d", res.Scores["MSFT"])
	}
	if !contains(res.Tickers, "MSFT") {
		t.Errorf("MSFT should be in ticker set, got %v", res.Tickers)
	}
}

func TestCommonWordWithoutFinancialContextExcluded(t *testing.T) {
	a := cache.Article{
		Title:   "Do it NOW or regret it later",
		Summary: "A productivity column about acting quickly on your goals.",
	}
	res := Score(a, candidates(t, "NOW"))

	if len(res.Tickers) != 0 {
		t.Errorf("common-word match without financial context must be excluded, got %v", res.Tickers)
	}
	if res.Primary != "" {
		t.Errorf("no primary expected, got %q", res.Primary)
	}
}

func TestCommonWordWithFinancialContextIncluded(t *testing.T) {
	a := cache.Article{
		Title:   "NOW stock surges on cloud growth",
		Summary: "Investors cheered quarterly earnings.",
	}
	res := Score(a, candidates(t, "NOW"))

	if res.Scores["NOW"] != 10 {
		t.Errorf("exact common-word title match should score 10, got %d", res.Scores["NOW"])
	}
	if !contains(res.Tickers, "NOW") {
		t.Errorf("NOW should be included, got %v", res.Tickers)
	}
}

func TestCommonWordLowercaseTitleRejected(t *testing.T) {
	// "now" as prose must not count even in a financial article.
	a := cache.Article{Title: "Markets are now pricing in a rate cut, say investors"}
	res := Score(a, candidates(t, "NOW"))

	if contains(res.Tickers, "NOW") {
		t.Errorf("lowercase prose should not match a common-word ticker, got %v", res.Tickers)
	}
}

func TestAliasInTitleScoresHighest(t *testing.T) {
	a := cache.Article{Title: "Apple unveils new iPhone lineup"}
	res := Score(a, candidates(t, "AAPL", "TSLA"))

	if res.Scores["AAPL"] != 12 {
		t.Errorf("alias title match should score 12, got %d", res.Scores["AAPL"])
	}
	if res.Primary != "AAPL" {
		t.Errorf("expected AAPL primary, got %q", res.Primary)
	}
}

func TestPrimaryAlwaysMemberOfTickers(t *testing.T) {
	arts := []cache.Article{
		{Title: "Apple (AAPL) and Tesla ($TSLA) both rally"},
		{Title: "Microsoft beats on revenue"},
		{Title: "$TSLA falls"},
		{Title: "nothing relevant here"},
	}
	cands := candidates(t, "AAPL", "TSLA", "MSFT", "NOW")

	for _, a := range arts {
		res := Score(a, cands)
		if res.Primary == "" {
			continue
		}
		if !contains(res.Tickers, res.Primary) {
			t.Errorf("primary %q not in ticker set %v for %q", res.Primary, res.Tickers, a.Title)
		}
	}
}

func TestScoreIdempotent(t *testing.T) {
	a := cache.Article{
		Title:   "Apple (AAPL) and Tesla ($TSLA) both rally",
		Summary: "Shares of both companies gained in a strong market.",
	}
	cands := candidates(t, "AAPL", "TSLA", "NOW")

	first := Score(a, cands)
	second := Score(a, cands)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("scoring is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestRallyScenario(t *testing.T) {
	a := cache.Article{Title: "Apple (AAPL) and Tesla ($TSLA) both rally"}
	res := Score(a, candidates(t, "AAPL", "TSLA", "NOW"))

	want := []string{"AAPL", "TSLA"}
	if !reflect.DeepEqual(res.Tickers, want) {
		t.Errorf("expected tickers %v, got %v", want, res.Tickers)
	}
	if res.Primary != "AAPL" {
		t.Errorf("expected primary AAPL, got %q", res.Primary)
	}
	if res.Scores["AAPL"] <= 8 {
		t.Errorf("AAPL should stack paren seed and alias, got %d", res.Scores["AAPL"])
	}
}

func TestCashtagInSummarySeedsHighScore(t *testing.T) {
	a := cache.Article{
		Title:   "Tech roundup for the week",
		Summary: "Notable moves included $AAPL drifting higher on light volume.",
	}
	res := Score(a, candidates(t, "AAPL"))

	if res.Scores["AAPL"] != 8 {
		t.Errorf("cashtag anywhere in the text should seed 8, got %d", res.Scores["AAPL"])
	}
}

func TestSummaryAliasScoresLower(t *testing.T) {
	a := cache.Article{
		Title:   "Tech roundup for the week",
		Summary: "Apple shares drifted higher on light volume.",
	}
	res := Score(a, candidates(t, "AAPL"))

	if res.Scores["AAPL"] != 4 {
		t.Errorf("summary alias weight should be 4, got %d", res.Scores["AAPL"])
	}
	if !contains(res.Tickers, "AAPL") {
		t.Errorf("AAPL should still clear the inclusion threshold, got %v", res.Tickers)
	}
}

func TestSummaryMentionCountBonusCapped(t *testing.T) {
	a := cache.Article{
		Title:   "Weekly winners and losers",
		Summary: "TSLA led gains. TSLA volume spiked. TSLA shorts covered. TSLA TSLA TSLA.",
	}
	res := Score(a, candidates(t, "TSLA"))

	// Base 2 plus bonus capped at 3.
	if res.Scores["TSLA"] != 5 {
		t.Errorf("mention-count score should cap at 5, got %d", res.Scores["TSLA"])
	}
}

func TestSummaryPrefixedMention(t *testing.T) {
	a := cache.Article{
		Title:   "Analyst upgrades of the day",
		Summary: "Barclays raised its target on shares of MSFT to $500.",
	}
	res := Score(a, candidates(t, "MSFT"))

	if res.Scores["MSFT"] != 3 {
		t.Errorf("prefixed summary mention should score 3, got %d", res.Scores["MSFT"])
	}
}

func TestSingleLetterSymbolsSkipped(t *testing.T) {
	a := cache.Article{Title: "A big week for markets as stocks rise"}
	res := Score(a, ticker.Candidates([]string{"A"}, map[string]string{"A": "Agilent Technologies"}))

	if len(res.Tickers) != 0 {
		t.Errorf("single-letter symbols must not match, got %v", res.Tickers)
	}
}

func TestUnknownSymbolStillParticipates(t *testing.T) {
	// Symbol not present in the catalog uses symbol-only patterns.
	a := cache.Article{Title: "PLTR wins new defense contract"}
	res := Score(a, ticker.Candidates([]string{"PLTR"}, map[string]string{}))

	if !contains(res.Tickers, "PLTR") {
		t.Errorf("catalog-less symbol should match on its own pattern, got %v", res.Tickers)
	}
}

func TestTickersSorted(t *testing.T) {
	a := cache.Article{Title: "Tesla ($TSLA) and Apple ($AAPL) and Microsoft ($MSFT)"}
	res := Score(a, candidates(t, "TSLA", "MSFT", "AAPL"))

	want := []string{"AAPL", "MSFT", "TSLA"}
	if !reflect.DeepEqual(res.Tickers, want) {
		t.Errorf("tickers must be sorted lexicographically, got %v", res.Tickers)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
