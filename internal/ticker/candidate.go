package ticker

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Candidate is one symbol under consideration for a run, with its compiled
// match patterns. Built once per run, immutable, shared read-only across
// scoring.
type Candidate struct {
	Symbol  string // canonical uppercase
	Company string

	word     *regexp.Regexp // case-insensitive whole-word symbol
	exact    *regexp.Regexp // case-sensitive whole-word symbol
	prefixed *regexp.Regexp // "ticker: SYM", "stock: SYM", "shares of SYM"
	aliases  []*regexp.Regexp
}

// aliasPatterns holds hand-authored high-confidence company-name patterns for
// well-known large caps. These are matched against lowercased text.
var aliasPatterns = map[string][]string{
	"AAPL":  {`\bapple\b`},
	"MSFT":  {`\bmicrosoft\b`},
	"GOOG":  {`\bgoogle\b`, `\balphabet\b`},
	"GOOGL": {`\bgoogle\b`, `\balphabet\b`},
	"AMZN":  {`\bamazon\b`},
	"META":  {`\bmeta\b`, `\bfacebook\b`},
	"TSLA":  {`\btesla\b`, `\bmusk\b`},
	"NVDA":  {`\bnvidia\b`},
	"NFLX":  {`\bnetflix\b`},
	"INTC":  {`\bintel\b`},
	"AMD":   {`\badvanced micro devices\b`},
	"DIS":   {`\bdisney\b`},
	"BA":    {`\bboeing\b`},
	"WMT":   {`\bwalmart\b`},
	"JPM":   {`\bjpmorgan\b`, `\bjp morgan\b`},
	"XOM":   {`\bexxon\b`},
	"KO":    {`\bcoca-cola\b`, `\bcoca cola\b`},
}

func newCandidate(symbol, company string) Candidate {
	quoted := regexp.QuoteMeta(symbol)
	c := Candidate{
		Symbol:   symbol,
		Company:  company,
		word:     regexp.MustCompile(`(?i)\b` + quoted + `\b`),
		exact:    regexp.MustCompile(`\b` + quoted + `\b`),
		prefixed: regexp.MustCompile(`(?i)(?:tickers?|stocks?|symbols?)[\s:]+` + quoted + `\b|shares? of ` + quoted + `\b`),
	}
	for _, p := range aliasPatterns[symbol] {
		c.aliases = append(c.aliases, regexp.MustCompile(p))
	}
	return c
}

// HasAliases reports whether hand-authored company-name patterns exist for
// this symbol.
func (c Candidate) HasAliases() bool { return len(c.aliases) > 0 }

// MatchesWord reports a case-insensitive whole-word occurrence of the symbol.
func (c Candidate) MatchesWord(text string) bool { return c.word.MatchString(text) }

// MatchesExact reports a case-sensitive whole-word occurrence of the literal
// symbol. Used for common-English-word tickers, where "NOW" must appear as
// the uppercase symbol, not as prose.
func (c Candidate) MatchesExact(text string) bool { return c.exact.MatchString(text) }

// MatchesPrefixed reports an explicit "ticker:"/"stock:"/"symbol:"/"shares of"
// mention of the symbol.
func (c Candidate) MatchesPrefixed(text string) bool { return c.prefixed.MatchString(text) }

// MatchesAlias reports whether any company-name pattern matches the
// (lowercased) text.
func (c Candidate) MatchesAlias(text string) bool {
	for _, re := range c.aliases {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// CountMentions counts whole-word occurrences of the symbol in the text.
func (c Candidate) CountMentions(text string) int {
	return len(c.word.FindAllStringIndex(text, -1))
}

// Candidates builds the candidate set for a run: one entry per symbol, sorted
// by symbol for deterministic iteration. Symbols absent from the catalog still
// participate with symbol-only patterns.
func Candidates(symbols []string, catalog map[string]string) []Candidate {
	seen := make(map[string]bool, len(symbols))
	out := make([]Candidate, 0, len(symbols))
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, newCandidate(sym, catalog[sym]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// CandidatesFromCatalog builds the default broad candidate set from the full
// catalog.
func CandidatesFromCatalog(catalog map[string]string) []Candidate {
	symbols := make([]string, 0, len(catalog))
	for sym := range catalog {
		symbols = append(symbols, sym)
	}
	return Candidates(symbols, catalog)
}

// MatchCompany returns the catalog symbols whose company name contains the
// given name, case-insensitively. Used by the --company flag.
func MatchCompany(catalog map[string]string, name string) ([]string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("empty company name")
	}
	var out []string
	for sym, company := range catalog {
		if strings.Contains(strings.ToLower(company), name) {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out, nil
}
