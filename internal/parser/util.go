package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/layout"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/normalize"
	"github.com/insightdelivered/statement-parser/internal/symbol"
)

// statementYearPattern finds the first 19xx or 20xx year printed on a statement.
var statementYearPattern = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)

// findStatementYear returns the first plausible year on the statement, or 0.
func findStatementYear(lines []layout.Line) int {
	for _, l := range lines {
		if m := statementYearPattern.FindStringSubmatch(l.Text()); m != nil {
			year, err := strconv.Atoi(m[1])
			if err == nil {
				return year
			}
		}
	}
	return 0
}

// accountRule locates an account number; the last four digits of the first
// submatch are kept.
type accountRule struct {
	pattern *regexp.Regexp
}

var nonDigits = regexp.MustCompile(`\D`)

func (r accountRule) find(lines []layout.Line) *models.AccountInfo {
	info := &models.AccountInfo{}
	if r.pattern == nil {
		return info
	}
	for _, l := range lines {
		m := r.pattern.FindStringSubmatch(l.Text())
		if m == nil {
			continue
		}
		digits := nonDigits.ReplaceAllString(m[len(m)-1], "")
		if len(digits) < 4 {
			continue
		}
		info.AccountNumberLast4 = digits[len(digits)-4:]
		return info
	}
	return info
}

// formatBase carries what every institution format shares.
type formatBase struct {
	institution models.Institution
	name        string
	vocabulary  *normalize.Vocabulary
	account     accountRule
	// debits marks raw categories whose unsigned amounts are outflows. Only set for
	// statements that print every amount without a sign.
	debits *regexp.Regexp
}

func (f *formatBase) Institution() models.Institution {
	return f.institution
}

func (f *formatBase) Name() string {
	return f.name
}

func (f *formatBase) MapCategory(rawCategory, description string) models.TransactionType {
	return f.vocabulary.TransactionType(rawCategory, description)
}

// SignAmount makes amounts under a debit category negative and every other
// categorized amount positive. Formats without debits keep the amount as is.
func (f *formatBase) SignAmount(rawCategory string, amount decimal.Decimal) decimal.Decimal {
	if f.debits == nil || strings.TrimSpace(rawCategory) == "" {
		return amount
	}
	if f.debits.MatchString(rawCategory) {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

// ExtractSymbol classifies the symbol cell together with the description first,
// then the description alone, so a CUSIP in the symbol column does not hide a ticker.
func (f *formatBase) ExtractSymbol(rec models.RawRecord, t models.TransactionType) Security {
	texts := []string{rec.Description}
	if s := strings.TrimSpace(rec.Symbol); s != "" {
		texts = []string{s + "\n" + rec.Description, rec.Description}
	}
	for _, text := range texts {
		if sec := securityFrom(t, text); sec.Type != models.SecurityNone {
			return sec
		}
	}
	return Security{}
}

func securityFrom(t models.TransactionType, text string) Security {
	switch normalize.ClassifySecurity(t, text) {
	case models.SecurityOption:
		sec := Security{Type: models.SecurityOption}
		if c, ok := symbol.FindOption(text); ok {
			sec.Symbol = c.Underlying
			sec.APISymbol = c.APISymbol()
		}
		return sec
	case models.SecurityStock:
		ticker, _ := symbol.Ticker(text)
		return Security{Type: models.SecurityStock, Symbol: ticker, APISymbol: ticker}
	}
	return Security{}
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
