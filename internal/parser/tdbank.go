package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/layout"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/normalize"
	"github.com/insightdelivered/statement-parser/internal/table"
)

// tdBankFormat handles TD Bank checking statements.
//
// "DAILY ACCOUNT ACTIVITY" is a three column table split into sub-sections:
//
//	POSTING DATE | DESCRIPTION | AMOUNT
//
// Each sub-section heading (Deposits, Electronic Payments, Service Charges, ...) is a
// caption that names the category of the rows below it. Amounts are printed unsigned,
// so the caption also decides the sign.
type tdBankFormat struct {
	formatBase
	spec table.Spec
}

var tdBankRules = []normalize.Rule{
	{Keyword: "service charge", Type: models.TypeFee},
	{Keyword: "fee", Type: models.TypeFee},
	{Keyword: "interest", Type: models.TypeInterest},
	{Keyword: "deposit", Type: models.TypeTransfer},
	{Keyword: "credit", Type: models.TypeTransfer},
	{Keyword: "electronic payment", Type: models.TypeTransfer},
	{Keyword: "withdrawal", Type: models.TypeTransfer},
}

var (
	tdBankRowStart = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
	tdBankDateCell = regexp.MustCompile(`^(\d{2}/\d{2})`)
	tdBankCaption  = regexp.MustCompile(`(?i)^(?:Deposits|Electronic\s+Deposits|Other\s+Credits|Checks\s+Paid|` +
		`Electronic\s+Payments|Other\s+Withdrawals|Service\s+Charges|Interest\s+(?:Paid|Earned))(?:\s*\(continued\))?$`)
)

func newTDBankFormat(opts Options) *tdBankFormat {
	return &tdBankFormat{
		formatBase: formatBase{
			institution: models.InstitutionTDBank,
			name:        "TD Bank",
			vocabulary:  normalize.NewVocabulary(tdBankRules, opts.logger()),
			account:     accountRule{pattern: regexp.MustCompile(`Account\s*#\s*:?\s*(\d[\d-]{3,})`)},
			debits:      regexp.MustCompile(`(?i)payments|withdrawals|checks|service\s+charges`),
		},
		spec: table.Spec{
			Markers: table.Markers{
				SectionStart:  regexp.MustCompile(`(?i)^DAILY\s+ACCOUNT\s+ACTIVITY\b`),
				StartRequired: true,
				SectionEnd: []*regexp.Regexp{
					regexp.MustCompile(`(?i)^DAILY\s+BALANCE\s+SUMMARY\b`),
				},
				PageNumber: regexp.MustCompile(`(?i)^Page:?\s*\d+\s*of\s*\d+$`),
				Skip: []*regexp.Regexp{
					regexp.MustCompile(`(?i)^Subtotal:?`),
				},
				Captions: []*regexp.Regexp{tdBankCaption},
			},
			Columns:           []string{"Posting Date", "Description", "Amount"},
			PaddingMultiplier: opts.RowPaddingMultiplier,
			DefaultPadding:    opts.DefaultRowPadding,
		},
	}
}

func newTDBank(opts Options) *tableParser {
	return newTableParser(newTDBankFormat(opts), opts)
}

func (f *tdBankFormat) Spec() table.Spec {
	return f.spec
}

func (f *tdBankFormat) DetectBoundaries(pages []layout.Page) (*table.Boundaries, error) {
	return table.DetectBoundaries(pages, f.spec)
}

func (f *tdBankFormat) IsRowStart(line layout.Line) bool {
	return tdBankRowStart.MatchString(strings.TrimSpace(line.Text()))
}

func (f *tdBankFormat) Columns() table.ColumnMap {
	return table.ColumnMap{
		Date:        0,
		Category:    table.NoColumn,
		Symbol:      table.NoColumn,
		Description: 1,
		Quantity:    table.NoColumn,
		Price:       table.NoColumn,
		Amount:      2,
	}
}

func (f *tdBankFormat) StitchOptions() table.StitchOptions {
	return table.StitchOptions{DatePattern: tdBankDateCell}
}

func (f *tdBankFormat) AccountInfo(lines []layout.Line) *models.AccountInfo {
	return f.account.find(lines)
}
