// Package normalize maps institution vocabulary and raw cell text onto canonical values.
package normalize

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/insightdelivered/statement-parser/internal/logger"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/symbol"
)

// Rule maps a category keyword onto a canonical transaction type.
type Rule struct {
	// Keyword is matched case-insensitively anywhere in the raw category.
	Keyword string
	// DescriptionKeyword, when set, must also appear in the description.
	DescriptionKeyword string
	Type               models.TransactionType
}

// Vocabulary is an ordered rule list for one institution. The first matching rule wins.
type Vocabulary struct {
	rules    []Rule
	keywords []string
	byIndex  [][]int // keyword index -> rule indices, ascending
	matcher  *ahocorasick.Matcher
	logger   *slog.Logger
}

// NewVocabulary compiles the rules into a single keyword automaton.
func NewVocabulary(rules []Rule, log *slog.Logger) *Vocabulary {
	if log == nil {
		log = logger.Discard()
	}
	v := &Vocabulary{rules: rules, logger: log}

	seen := make(map[string]int)
	for i, r := range rules {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" {
			continue
		}
		idx, ok := seen[kw]
		if !ok {
			idx = len(v.keywords)
			seen[kw] = idx
			v.keywords = append(v.keywords, kw)
			v.byIndex = append(v.byIndex, nil)
		}
		v.byIndex[idx] = append(v.byIndex[idx], i)
	}
	if len(v.keywords) > 0 {
		patterns := make([][]byte, len(v.keywords))
		for i, kw := range v.keywords {
			patterns[i] = []byte(kw)
		}
		v.matcher = ahocorasick.NewMatcher(patterns)
	}
	return v
}

// Rules returns the ordered rules of the vocabulary.
func (v *Vocabulary) Rules() []Rule {
	return v.rules
}

// TransactionType classifies a raw category. Unknown categories map to OTHER.
func (v *Vocabulary) TransactionType(rawCategory, description string) models.TransactionType {
	category := strings.ToLower(strings.TrimSpace(rawCategory))
	if category == "" || v.matcher == nil {
		return models.TypeOther
	}

	var candidates []int
	for _, k := range v.matcher.Match([]byte(category)) {
		candidates = append(candidates, v.byIndex[k]...)
	}
	sort.Ints(candidates)

	desc := strings.ToLower(description)
	for _, i := range candidates {
		r := v.rules[i]
		if r.DescriptionKeyword == "" || strings.Contains(desc, strings.ToLower(r.DescriptionKeyword)) {
			return r.Type
		}
	}

	if closest, distance, ok := v.closest(category); ok {
		v.logger.Debug("category near miss",
			slog.String("category", rawCategory),
			slog.String("closest", closest),
			slog.Int("distance", distance),
		)
	} else {
		v.logger.Debug("category not in vocabulary", slog.String("category", rawCategory))
	}
	return models.TypeOther
}

// closest ranks the keywords by edit distance to an unmatched category. Ties keep rule order.
func (v *Vocabulary) closest(category string) (string, int, bool) {
	best, bestDist := "", -1
	for _, kw := range v.keywords {
		d := fuzzy.LevenshteinDistance(category, kw)
		if bestDist < 0 || d < bestDist {
			best, bestDist = kw, d
		}
	}
	if bestDist < 0 || bestDist > len(best)/2+1 {
		return "", 0, false
	}
	return best, bestDist, true
}

// ClassifySecurity returns the security class of a trade. Anything other than a
// BUY or SELL has none. A trade is an OPTION when its description carries a contract
// or reads like an option narrative, a STOCK when a ticker-like token exists, and
// none otherwise.
func ClassifySecurity(t models.TransactionType, description string) models.SecurityType {
	if !t.IsTrade() {
		return models.SecurityNone
	}
	if _, ok := symbol.FindOption(description); ok {
		return models.SecurityOption
	}
	if symbol.IsOptionNarrative(description) {
		return models.SecurityOption
	}
	if _, ok := symbol.Ticker(description); ok {
		return models.SecurityStock
	}
	return models.SecurityNone
}
