package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/normalize"
)

// American Express card statements group activity under section headings:
//
//	Payments Details | Credits Details | New Charges Details | Fees | Interest Charged
//
// The print layout names the same sections "Payments t Amount", "Credits Amount" and
// "Detail - denotes Pay Over Time ...". Every row reads
//
//	"05/02/24* AMAZON.COM SEATTLE WA $42.17"
//
// with an optional "*" after the date and an optional "⧫" after the amount. The
// heading is the category. Payments and credits reduce the balance and come out
// positive; charges, fees and interest come out negative.

var (
	amexLine = regexp.MustCompile(
		`^(?P<date>\d{2}/\d{2}/\d{2})\*?\s+(?P<description>.+?)\s+(?P<amount>-?\$[\d,]+\.\d{2})\s*⧫?$`)

	amexCaptions = []*regexp.Regexp{
		regexp.MustCompile(`^Payments\s+(?:Details|t\s+Amount)\b`),
		regexp.MustCompile(`^Credits\s+(?:Details|Amount)\b`),
		regexp.MustCompile(`^New\s+Charges\s+Details\b`),
		regexp.MustCompile(`^Detail\s+-\s+denotes\s+Pay\s+Over\s+Time\b`),
		regexp.MustCompile(`^Fees(?:\s+-\s+denotes\b.*)?$`),
		regexp.MustCompile(`^Interest\s+Charged$`),
	}
)

var amexRules = []normalize.Rule{
	{Keyword: "payments", Type: models.TypeTransfer},
	{Keyword: "fees", Type: models.TypeFee},
	{Keyword: "interest", Type: models.TypeInterest},
}

func newAmexFormat(opts Options) *lineFormat {
	return &lineFormat{
		formatBase: formatBase{
			institution: models.InstitutionAmex,
			name:        "American Express",
			vocabulary:  normalize.NewVocabulary(amexRules, opts.logger()),
			account:     accountRule{pattern: regexp.MustCompile(`(?i)Account\s+Ending\s+(\d-?\d{4,5})`)},
			debits:      regexp.MustCompile(`^(?:New\s+Charges|Detail\b|Fees|Interest)`),
		},
		captions: amexCaptions,
		end: []*regexp.Regexp{
			regexp.MustCompile(`^Interest\s+Charge\s+Calculation\b`),
			regexp.MustCompile(`^Year-to-Date\s+Fees\s+and\s+Interest\b`),
		},
		skip: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^Page\s+\d+\s+of\s+\d+$`),
			regexp.MustCompile(`(?i)\bCard\s+Ending\b`),
			regexp.MustCompile(`(?i)^Total\b`),
			regexp.MustCompile(`(?i)^Continued\b`),
			regexp.MustCompile(`(?i)^Amount$`),
		},
		shapes: []*regexp.Regexp{amexLine},
	}
}

func newAmex(opts Options) *lineParser {
	return newLineParser(newAmexFormat(opts), opts)
}
