package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/normalize"
)

// TD Ameritrade statements list "Account Activity" as plain lines:
//
//	Trade Date | Settle Date | Acct Type | Transaction | Description | Qty | Price | Amount | Balance
//	Example: "05/01/24 05/03/24 Cash Buy APPLE INC AAPL 10 150.00 (1,500.00) 8,500.00"
//
// A line without a leading date continues the description above it.

const tdMoney = `\(?-?\$?[\d,]+\.\d{2}\)?`

var (
	tdTradeLine = regexp.MustCompile(
		`^(?P<date>\d{2}/\d{2}/\d{2,4})\s+\d{2}/\d{2}/\d{2,4}\s+(?:Cash|Margin|Short)\s+` +
			`(?P<category>Buy|Sell|Bought|Sold)\s+(?P<description>.+?)\s+` +
			`(?P<quantity>-?[\d,]*\.?\d+)\s+(?P<price>\$?[\d,]*\.\d+)\s+` +
			`(?P<amount>` + tdMoney + `)\s+` + tdMoney + `$`)

	tdCashLine = regexp.MustCompile(
		`^(?P<date>\d{2}/\d{2}/\d{2,4})\s+\d{2}/\d{2}/\d{2,4}\s+(?:Cash|Margin|Short)\s+` +
			`(?P<category>[A-Za-z/]+)\s+(?P<description>.+?)\s+` +
			`(?P<amount>` + tdMoney + `)\s+` + tdMoney + `$`)
)

var tdRules = []normalize.Rule{
	{Keyword: "buy", Type: models.TypeBuy},
	{Keyword: "bought", Type: models.TypeBuy},
	{Keyword: "sell", Type: models.TypeSell},
	{Keyword: "sold", Type: models.TypeSell},
	{Keyword: "div/int", DescriptionKeyword: "interest", Type: models.TypeInterest},
	{Keyword: "div/int", Type: models.TypeDividend},
	{Keyword: "dividend", Type: models.TypeDividend},
	{Keyword: "interest", Type: models.TypeInterest},
	{Keyword: "fee", Type: models.TypeFee},
	{Keyword: "funds", Type: models.TypeTransfer},
	{Keyword: "journal", Type: models.TypeTransfer},
	{Keyword: "delivered", Type: models.TypeTransfer},
	{Keyword: "received", Type: models.TypeTransfer},
}

func newTDAmeritradeFormat(opts Options) *lineFormat {
	return &lineFormat{
		formatBase: formatBase{
			institution: models.InstitutionTDAmeritrade,
			name:        "TD Ameritrade",
			vocabulary:  normalize.NewVocabulary(tdRules, opts.logger()),
			account:     accountRule{pattern: regexp.MustCompile(`Statement for Account #\s*([\d-]+)`)},
		},
		sectionStart: []*regexp.Regexp{regexp.MustCompile(`^Account Activity\b`)},
		pause: []*regexp.Regexp{
			regexp.MustCompile(`^Statement for Account #`),
			regexp.MustCompile(`(?i)^page\s+\d+`),
		},
		end:  []*regexp.Regexp{regexp.MustCompile(`(?i)^Closing Balance\b`)},
		skip: []*regexp.Regexp{regexp.MustCompile(`(?i)^Trade\s+Date\b`)},
		shapes: []*regexp.Regexp{tdTradeLine, tdCashLine},
	}
}

func newTDAmeritrade(opts Options) *lineParser {
	return newLineParser(newTDAmeritradeFormat(opts), opts)
}
