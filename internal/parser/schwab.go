package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/layout"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/normalize"
	"github.com/insightdelivered/statement-parser/internal/table"
)

// schwabFormat handles Schwab brokerage statements.
//
// The "Transaction Details" section is a ten column table:
//
//	Date | Category | Action | Symbol/CUSIP | Description | Quantity | Price | Charges | Amount | Realized Gain/(Loss)
//
// Rows open on an MM/DD date or on a category word when the date is shared with the
// row above. Commission and fee sub-lines stay inside the trade row they follow.
type schwabFormat struct {
	formatBase
	spec table.Spec
}

var schwabRules = []normalize.Rule{
	{Keyword: "reinvest dividend", Type: models.TypeDividend},
	{Keyword: "purchase", Type: models.TypeBuy},
	{Keyword: "buy", Type: models.TypeBuy},
	{Keyword: "reinvest", Type: models.TypeBuy},
	{Keyword: "sale", Type: models.TypeSell},
	{Keyword: "sell", Type: models.TypeSell},
	{Keyword: "dividend", Type: models.TypeDividend},
	{Keyword: "interest", Type: models.TypeInterest},
	{Keyword: "fee", Type: models.TypeFee},
	{Keyword: "deposit", Type: models.TypeTransfer},
	{Keyword: "withdrawal", Type: models.TypeTransfer},
	{Keyword: "transfer", Type: models.TypeTransfer},
	{Keyword: "journal", Type: models.TypeTransfer},
}

var (
	schwabDateStart     = regexp.MustCompile(`^\d{2}/\d{2}(?:/\d{2,4})?\s+`)
	schwabCategoryStart = regexp.MustCompile(`^(?i:Purchase|Sale|Buy|Sell|Reinvest|Interest|Dividend|Fee|Deposit|Withdrawal|Transfer|Journal)\b`)
	schwabDateCell      = regexp.MustCompile(`^(\d{2}/\d{2}(?:/\d{2,4})?)`)
)

func newSchwabFormat(opts Options) *schwabFormat {
	return &schwabFormat{
		formatBase: formatBase{
			institution: models.InstitutionSchwab,
			name:        "Charles Schwab",
			vocabulary:  normalize.NewVocabulary(schwabRules, opts.logger()),
			account:     accountRule{pattern: regexp.MustCompile(`\b(\d{4})-(\d{4})\b`)},
		},
		spec: table.Spec{
			Markers: table.Markers{
				SectionStart:  regexp.MustCompile(`^Transaction\s*Details\b`),
				StartRequired: true,
				SectionEnd: []*regexp.Regexp{
					regexp.MustCompile(`(?i)^Closing\s*Balance\b`),
					regexp.MustCompile(`(?i)^End\s*of\s*Transaction\s*Details\b`),
				},
				Totals: []*regexp.Regexp{
					regexp.MustCompile(`(?i)^Total\s*Transactions\b`),
				},
				PageNumber: regexp.MustCompile(`(?i)^(?:Page\s*)?\d+\s*of\s*\d+$`),
				Skip: []*regexp.Regexp{
					regexp.MustCompile(`^\d{2}/\d{2}/\d{4}\s*-\s*\d{2}/\d{2}/\d{4}$`),
				},
			},
			Columns: []string{
				"Date", "Category", "Action", "Symbol/CUSIP", "Description",
				"Quantity", "Price", "Charges", "Amount", "Realized",
			},
			CutHints:          []float64{16, 45, 98, 178, 252, 442, 512, 570, 630, 712, 780},
			PaddingMultiplier: opts.RowPaddingMultiplier,
			DefaultPadding:    opts.DefaultRowPadding,
		},
	}
}

func newSchwab(opts Options) *tableParser {
	return newTableParser(newSchwabFormat(opts), opts)
}

func (f *schwabFormat) Spec() table.Spec {
	return f.spec
}

func (f *schwabFormat) DetectBoundaries(pages []layout.Page) (*table.Boundaries, error) {
	return table.DetectBoundaries(pages, f.spec)
}

func (f *schwabFormat) IsRowStart(line layout.Line) bool {
	text := strings.TrimSpace(line.Text())
	if strings.HasPrefix(strings.ToLower(text), "commission") {
		return false
	}
	return schwabDateStart.MatchString(text) || schwabCategoryStart.MatchString(text)
}

func (f *schwabFormat) Columns() table.ColumnMap {
	return table.ColumnMap{
		Date:        0,
		Category:    1,
		Symbol:      3,
		Description: 4,
		Quantity:    5,
		Price:       6,
		Amount:      8,
	}
}

func (f *schwabFormat) StitchOptions() table.StitchOptions {
	return table.StitchOptions{DatePattern: schwabDateCell}
}

func (f *schwabFormat) AccountInfo(lines []layout.Line) *models.AccountInfo {
	return f.account.find(lines)
}
