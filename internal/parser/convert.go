package parser

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/normalize"
)

// Skip reasons counted in ParseStats.
const (
	skipNoAmount      = "no_amount"
	skipNoDate        = "no_date"
	skipDateParseFail = "date_parse_fail"
	skipParseError    = "parse_error"
	skipOrphan        = "orphan_continuation"
)

// recordMapper is the part of a format the converter needs.
type recordMapper interface {
	MapCategory(rawCategory, description string) models.TransactionType
	ExtractSymbol(rec models.RawRecord, t models.TransactionType) Security
	SignAmount(rawCategory string, amount decimal.Decimal) decimal.Decimal
}

// converter turns raw records into normalized ones and books every issue.
type converter struct {
	mapper recordMapper
	year   int
	result *models.ParseResult
	logger *slog.Logger
}

func newResult(institution models.Institution, doc *models.Document, account *models.AccountInfo) *models.ParseResult {
	return &models.ParseResult{
		Institution:  institution,
		Document:     doc.Name,
		AccountInfo:  account,
		Transactions: []models.NormalizedRecord{},
	}
}

func (c *converter) add(rec models.RawRecord) {
	c.result.Stats.TotalRows++

	if strings.TrimSpace(rec.Amount) == "" {
		c.skip(rec, skipNoAmount, "", "row has no amount")
		return
	}
	if rec.Date == "" {
		c.skip(rec, skipNoDate, "transactionDate", "row has no date and no earlier date to inherit")
		return
	}
	date, err := normalize.ParseMonthDay(rec.Date, c.year)
	if err != nil {
		c.skip(rec, skipDateParseFail, "transactionDate", err.Error())
		return
	}
	amount, err := normalize.ParseAmount(rec.Amount)
	if err != nil {
		c.skip(rec, skipParseError, "totalAmount", err.Error())
		return
	}

	t := c.mapper.MapCategory(rec.RawCategory, rec.Description)
	out := models.NormalizedRecord{
		TransactionDate: date,
		TransactionType: t,
		Description:     rec.Description,
		Quantity:        c.optional(rec, "quantity", rec.Quantity, true),
		PricePerUnit:    c.optional(rec, "pricePerUnit", rec.PricePerUnit, false),
		TotalAmount:     c.mapper.SignAmount(rec.RawCategory, signed(t, amount)),
	}

	sec := c.mapper.ExtractSymbol(rec, t)
	out.SecurityType, out.Symbol, out.APISymbol = sec.Type, sec.Symbol, sec.APISymbol
	if sec.Type == models.SecurityOption && sec.APISymbol == "" {
		c.attribute(rec, "apiSymbol", "option trade without a recognizable contract")
	}

	c.result.Transactions = append(c.result.Transactions, out)
	c.result.Stats.ParsedRows++
}

// orphan books a continuation row that had no record to attach to.
func (c *converter) orphan(page int, text string) {
	c.result.Stats.TotalRows++
	c.skip(models.RawRecord{Page: page}, skipOrphan, "", "continuation row before the first record")
	c.result.Issues[len(c.result.Issues)-1].RawData = text
}

func (c *converter) optional(rec models.RawRecord, field, text string, unsigned bool) decimal.NullDecimal {
	d, err := normalize.ParseOptionalDecimal(text)
	if err != nil {
		c.attribute(rec, field, err.Error())
		return decimal.NullDecimal{}
	}
	if unsigned && d.Valid {
		d.Decimal = d.Decimal.Abs()
	}
	return d
}

func (c *converter) skip(rec models.RawRecord, reason, field, message string) {
	c.result.Stats.Skip(reason)
	c.result.Issues = append(c.result.Issues, models.Issue{
		Severity: models.SeverityRow,
		Page:     rec.Page,
		Row:      rec.Row,
		Field:    field,
		Message:  message,
		RawData:  rawData(rec),
	})
	c.logger.Debug("row skipped",
		slog.Int("page", rec.Page+1),
		slog.Int("row", rec.Row),
		slog.String("reason", reason),
		slog.String("message", message),
	)
}

func (c *converter) attribute(rec models.RawRecord, field, message string) {
	c.result.Issues = append(c.result.Issues, models.Issue{
		Severity: models.SeverityAttribute,
		Page:     rec.Page,
		Row:      rec.Row,
		Field:    field,
		Message:  message,
		RawData:  rawData(rec),
	})
}

// summarize logs the per-document outcome with skip reasons in a stable order.
func (c *converter) summarize() {
	stats := c.result.Stats
	reasons := make([]string, 0, len(stats.SkipReasons))
	for r := range stats.SkipReasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	attrs := []any{
		slog.String("institution", string(c.result.Institution)),
		slog.String("document", c.result.Document),
		slog.Int("parsed", stats.ParsedRows),
		slog.Int("skipped", stats.SkippedRows),
		slog.Int("continuations", stats.Continuations),
		slog.Int("issues", len(c.result.Issues)),
	}
	for _, r := range reasons {
		attrs = append(attrs, slog.Int("skip_"+r, stats.SkipReasons[r]))
	}
	c.logger.Info("statement parsed", attrs...)
}

// signed applies the debit-negative convention to trades. Other types keep the
// sign printed on the statement.
func signed(t models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	switch t {
	case models.TypeBuy:
		return amount.Abs().Neg()
	case models.TypeSell:
		return amount.Abs()
	}
	return amount
}

func rawData(rec models.RawRecord) string {
	parts := []string{rec.Date, rec.RawCategory, rec.Symbol, rec.Description, rec.Quantity, rec.PricePerUnit, rec.Amount}
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, strings.ReplaceAll(p, "\n", " "))
		}
	}
	return strings.Join(kept, " | ")
}
