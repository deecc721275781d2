// Package score turns article text into per-ticker relevance scores.
//
// The algorithm is a deterministic, explainable heuristic: a cheap
// cashtag/parenthesis pass seeds high-confidence symbols, then each candidate
// is matched against title and summary patterns at hand-tuned weights.
// Common-English-word tickers (NOW, SHOP, ALL...) face stricter evidence
// requirements and a financial-context gate to keep false positives down.
// The weights are behavior-compatibility constants, not values to tune.
package score

import (
	"regexp"
	"sort"
	"strings"

	"github.com/matheuskafuri/stockwire/internal/cache"
	"github.com/matheuskafuri/stockwire/internal/ticker"
)

const (
	// Title-level weights.
	cashtagWeight         = 8  // "$SYM" or "(SYM)" anywhere in the text
	commonWordTitleWeight = 10 // common-word symbol, exact case-sensitive in title
	aliasTitleWeight      = 12 // company name / nickname in title
	titleWeight           = 8  // plain symbol presence in title

	// Summary-level weights, used only when the title produced nothing.
	summaryCashtagWeight   = 5
	summaryAliasWeight     = 4
	summaryPrefixWeight    = 3
	summaryMentionBase     = 2
	summaryMentionMaxBonus = 3

	// MinScore is the inclusion threshold for an article's ticker set.
	MinScore = 3

	// StrictScore is the higher bar used by the requested-symbols post-filter:
	// "is this article really about what the user asked for".
	StrictScore = 8
)

// commonWordTickers are symbols that double as ordinary English words and so
// need stricter match evidence.
var commonWordTickers = map[string]bool{
	"ALL": true, "ANY": true, "ARE": true, "BIG": true, "CAN": true,
	"CAR": true, "DOW": true, "FAST": true, "FOR": true, "FUN": true,
	"GOOD": true, "HAS": true, "IT": true, "KEY": true, "LOVE": true,
	"LOW": true, "MAN": true, "NET": true, "NEW": true, "NICE": true,
	"NOW": true, "ON": true, "ONE": true, "OPEN": true, "OUT": true,
	"PLAY": true, "REAL": true, "RUN": true, "SEE": true, "SHOP": true,
	"SO": true, "TELL": true, "WELL": true, "YOU": true,
}

// financialKeywords gate common-word matches: at least one must appear
// somewhere in the article text. Truncated stems cover inflections
// ("financial", "earnings").
var financialKeywords = []string{
	"stock", "share", "price", "market", "investor", "trading",
	"nasdaq", "nyse", "exchange", "financ", "earn", "revenue",
}

// Cashtag and parenthesized-symbol shapes: 1-5 uppercase letters.
var (
	cashtagRe = regexp.MustCompile(`\$([A-Z]{1,5})\b`)
	parenRe   = regexp.MustCompile(`\(([A-Z]{1,5})\)`)
)

// Result holds the outcome of scoring one article.
type Result struct {
	Scores  map[string]int
	Tickers []string // sorted, deduplicated, subset of the candidate symbols
	Primary string   // empty when no symbol scored; always a member of Tickers otherwise
}

// Score computes per-ticker scores for one article. Pure and deterministic:
// the same article and candidate set always yield the same result. Empty
// title or summary never fail; they behave as empty strings.
func Score(a cache.Article, candidates []ticker.Candidate) Result {
	title := a.Title
	titleLower := strings.ToLower(title)
	summaryLower := strings.ToLower(a.Summary)
	fullText := strings.TrimSpace(titleLower + " " + summaryLower)
	upperText := strings.ToUpper(title + " " + a.Summary)

	inSet := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		inSet[c.Symbol] = true
	}

	scores := make(map[string]int)

	// Cheap high-confidence pass: $SYM and (SYM) shapes.
	seeded := make(map[string]bool)
	for _, re := range []*regexp.Regexp{cashtagRe, parenRe} {
		for _, m := range re.FindAllStringSubmatch(upperText, -1) {
			sym := m[1]
			if !inSet[sym] {
				continue
			}
			seeded[sym] = true
			if scores[sym] < cashtagWeight {
				scores[sym] = cashtagWeight
			}
		}
	}

	for _, c := range candidates {
		sym := c.Symbol
		if len(sym) < 2 {
			// Single-letter symbols are too noisy to match.
			continue
		}
		symLower := strings.ToLower(sym)
		common := commonWordTickers[sym]

		if !seeded[sym] {
			if common {
				// Require the literal uppercase symbol as a whole word in the
				// raw title.
				if c.MatchesExact(title) {
					scores[sym] = commonWordTitleWeight
				}
			} else if strings.Contains(titleLower, "$"+symLower) ||
				strings.Contains(titleLower, "("+symLower+")") ||
				c.MatchesWord(titleLower) {
				scores[sym] = titleWeight
			}
		}

		// Company-name aliases in the title stack on top of any seed score.
		if c.MatchesAlias(titleLower) {
			scores[sym] += aliasTitleWeight
		}

		// Summary fallback at reduced weights, only when the title gave
		// nothing.
		if scores[sym] == 0 && summaryLower != "" {
			switch {
			case strings.Contains(summaryLower, "$"+symLower),
				strings.Contains(summaryLower, "("+symLower+")"):
				scores[sym] = summaryCashtagWeight
			case !common && c.MatchesAlias(summaryLower):
				scores[sym] = summaryAliasWeight
			case c.MatchesPrefixed(summaryLower):
				scores[sym] = summaryPrefixWeight
			case !common:
				if n := c.CountMentions(summaryLower); n > 0 {
					bonus := n - 1
					if bonus > summaryMentionMaxBonus {
						bonus = summaryMentionMaxBonus
					}
					scores[sym] = summaryMentionBase + bonus
				}
			}
		}

		// Anti-false-positive gate: a common-word match without any financial
		// context wasn't about the ticker. Explicit cashtag seeds are exempt.
		if common && !seeded[sym] && scores[sym] > 0 && !hasFinancialContext(fullText) {
			delete(scores, sym)
		}
	}

	// Primary: the single highest score; ties keep the first candidate in
	// iteration order.
	var primary string
	best := 0
	for _, c := range candidates {
		if s := scores[c.Symbol]; s > best {
			best = s
			primary = c.Symbol
		}
	}

	var tickers []string
	for _, c := range candidates {
		s := scores[c.Symbol]
		if s >= MinScore || (c.Symbol == primary && s > 0) {
			tickers = append(tickers, c.Symbol)
		}
	}
	sort.Strings(tickers)

	return Result{Scores: scores, Tickers: tickers, Primary: primary}
}

func hasFinancialContext(text string) bool {
	for _, kw := range financialKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
