package parser

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/layout"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/table"
)

// lineFormat describes a statement read one text line at a time. Each shape is a
// regexp with named groups: date, category, symbol, description, quantity, price, amount.
type lineFormat struct {
	formatBase
	sectionStart []*regexp.Regexp
	// captions open the section like sectionStart and label the records below them
	// when a shape has no category group.
	captions []*regexp.Regexp
	// pause stops collecting until the next section start, e.g. at a page footer.
	pause []*regexp.Regexp
	// end closes the section for the rest of the document.
	end    []*regexp.Regexp
	skip   []*regexp.Regexp
	shapes []*regexp.Regexp
}

func (f *lineFormat) IsRowStart(line layout.Line) bool {
	_, _, ok := f.match(strings.TrimSpace(line.Text()))
	return ok
}

func (f *lineFormat) match(text string) (*regexp.Regexp, []string, bool) {
	for _, shape := range f.shapes {
		if m := shape.FindStringSubmatch(text); m != nil {
			return shape, m, true
		}
	}
	return nil, nil, false
}

func group(shape *regexp.Regexp, m []string, name string) string {
	i := shape.SubexpIndex(name)
	if i < 0 || i >= len(m) {
		return ""
	}
	return strings.TrimSpace(m[i])
}

// lineParser is the lighter facade for sparse layouts without a reliable grid.
type lineParser struct {
	format *lineFormat
	opts   Options
	logger *slog.Logger
}

func newLineParser(format *lineFormat, opts Options) *lineParser {
	return &lineParser{
		format: format,
		opts:   opts,
		logger: opts.logger().With(slog.String("institution", string(format.institution))),
	}
}

func (p *lineParser) Institution() models.Institution {
	return p.format.Institution()
}

func (p *lineParser) Name() string {
	return p.format.Name()
}

func (p *lineParser) Parse(ctx context.Context, doc *models.Document) (*models.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !hasText(doc) {
		return nil, documentError(doc, p.Institution(), models.ErrNoText)
	}

	lines := layout.AllLines(layout.Build(doc, p.opts.LineTolerance))
	records, continuations, err := p.collect(lines)
	if err != nil {
		return nil, documentError(doc, p.Institution(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := newResult(p.Institution(), doc, p.format.account.find(lines))
	result.Stats.Continuations = continuations
	conv := &converter{
		mapper: p.format,
		year:   statementYear(p.opts, lines),
		result: result,
		logger: p.logger,
	}
	for _, rec := range records {
		conv.add(rec)
	}
	conv.summarize()
	return result, nil
}

// collect walks the section state machine over every line and emits one record per
// matching line. Lines that match no shape continue the description of the record
// emitted since the section was last opened, on the same page.
func (p *lineParser) collect(lines []layout.Line) ([]models.RawRecord, int, error) {
	var (
		records       []models.RawRecord
		dates         table.DateTracker
		continuations int
		found         bool
		inSection     bool
		open          bool // a record emitted in the current section run can take continuations
		caption       string
	)

	for i, l := range lines {
		if open && records[len(records)-1].Page != l.Page {
			open = false
		}
		text := strings.TrimSpace(l.Text())
		if matchAny(p.format.sectionStart, text) {
			found, inSection, open = true, true, false
			continue
		}
		if matchAny(p.format.captions, text) {
			found, inSection, open = true, true, false
			caption = text
			continue
		}
		if !inSection {
			continue
		}
		if matchAny(p.format.end, text) {
			break
		}
		if matchAny(p.format.pause, text) {
			inSection, open = false, false
			continue
		}
		if matchAny(p.format.skip, text) {
			continue
		}

		shape, m, ok := p.format.match(text)
		if !ok {
			if open {
				last := &records[len(records)-1]
				last.Description = strings.TrimSpace(last.Description + "\n" + text)
				continuations++
			}
			continue
		}

		date, inherited := dates.Resolve(group(shape, m, "date"))
		category := group(shape, m, "category")
		if category == "" {
			category = caption
		}
		records = append(records, models.RawRecord{
			Page:          l.Page,
			Row:           i,
			Date:          date,
			DateInherited: inherited,
			RawCategory:   category,
			Symbol:        group(shape, m, "symbol"),
			Description:   group(shape, m, "description"),
			Quantity:      group(shape, m, "quantity"),
			PricePerUnit:  group(shape, m, "price"),
			Amount:        group(shape, m, "amount"),
		})
		open = true
	}

	if !found {
		return nil, 0, models.ErrNoSectionStart
	}
	return records, continuations, nil
}
