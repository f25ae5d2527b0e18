package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/normalize"
)

// Fidelity statements print "Transaction Details" rows as:
//
//	"05/02 Purchase AAPL APPLE INC 10.000 150.00 (1,500.00)"
//	"Sale MSFT MICROSOFT CORP (5.000) 400.00 2,000.00"   date shared with the row above
//	"05/20 Interest INTEREST EARNED 3.21"
//
// The section ends at the transaction totals. Later pages carry the table on
// without a new section heading, under a repeated account header and above a
// "Page N of M" footer.

const fidelityMoney = `\(?-?\$?[\d,]+\.\d{2}\)?`

var (
	fidelityTradeLine = regexp.MustCompile(
		`^(?:(?P<date>\d{2}/\d{2})\s+)?(?P<category>Purchase|Sale|Buy|Sell|Reinvestment)\s+` +
			`(?P<symbol>[A-Z0-9.]+)\s+(?P<description>.+?)\s+` +
			`(?P<quantity>\(?-?[\d,]+\.\d{3}\)?)\s+(?P<price>\$?[\d,]+\.\d+)\s+` +
			`(?P<amount>` + fidelityMoney + `)$`)

	fidelityCashLine = regexp.MustCompile(
		`^(?:(?P<date>\d{2}/\d{2})\s+)?(?P<category>Interest|Dividend|Fee|Transfer|Contribution|Withdrawal)\s+` +
			`(?P<description>.*?)\s*(?P<amount>` + fidelityMoney + `)$`)
)

var fidelityRules = []normalize.Rule{
	{Keyword: "reinvest dividend", Type: models.TypeDividend},
	{Keyword: "purchase", Type: models.TypeBuy},
	{Keyword: "buy", Type: models.TypeBuy},
	{Keyword: "reinvest", Type: models.TypeBuy},
	{Keyword: "sale", Type: models.TypeSell},
	{Keyword: "sell", Type: models.TypeSell},
	{Keyword: "dividend", Type: models.TypeDividend},
	{Keyword: "interest", Type: models.TypeInterest},
	{Keyword: "fee", Type: models.TypeFee},
	{Keyword: "transfer", Type: models.TypeTransfer},
	{Keyword: "contribution", Type: models.TypeTransfer},
	{Keyword: "withdrawal", Type: models.TypeTransfer},
}

func newFidelityFormat(opts Options) *lineFormat {
	return &lineFormat{
		formatBase: formatBase{
			institution: models.InstitutionFidelity,
			name:        "Fidelity",
			vocabulary:  normalize.NewVocabulary(fidelityRules, opts.logger()),
			account:     accountRule{pattern: regexp.MustCompile(`(?i)Account\s*(?:Number|#)\s*:?\s*([A-Z]?\d[\d-]{3,})`)},
		},
		sectionStart: []*regexp.Regexp{regexp.MustCompile(`^Transaction\s*Details\b`)},
		end:          []*regexp.Regexp{regexp.MustCompile(`^Total\s*Transactions\b`)},
		skip: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^Date\s+Transaction\b`),
			regexp.MustCompile(`(?i)^Page\s+\d+\s+of\s+\d+$`),
			regexp.MustCompile(`(?i)\bAccount\s*(?:Number|#)`),
		},
		shapes: []*regexp.Regexp{fidelityTradeLine, fidelityCashLine},
	}
}

func newFidelity(opts Options) *lineParser {
	return newLineParser(newFidelityFormat(opts), opts)
}
