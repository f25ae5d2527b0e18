package parser

import (
	"context"
	"log/slog"

	"github.com/insightdelivered/statement-parser/internal/layout"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/table"
)

// tableFormat is a StatementFormat that also knows how its grid maps onto records.
type tableFormat interface {
	StatementFormat
	Name() string
	Spec() table.Spec
	Columns() table.ColumnMap
	StitchOptions() table.StitchOptions
	AccountInfo(lines []layout.Line) *models.AccountInfo
}

// tableParser runs the full reconstruction pipeline for one format.
type tableParser struct {
	format tableFormat
	opts   Options
	logger *slog.Logger
}

func newTableParser(format tableFormat, opts Options) *tableParser {
	return &tableParser{
		format: format,
		opts:   opts,
		logger: opts.logger().With(slog.String("institution", string(format.Institution()))),
	}
}

func (p *tableParser) Institution() models.Institution {
	return p.format.Institution()
}

func (p *tableParser) Name() string {
	return p.format.Name()
}

func (p *tableParser) Parse(ctx context.Context, doc *models.Document) (*models.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !hasText(doc) {
		return nil, documentError(doc, p.Institution(), models.ErrNoText)
	}

	pages := layout.Build(doc, p.opts.LineTolerance)
	lines := layout.AllLines(pages)

	bounds, err := p.format.DetectBoundaries(pages)
	if err != nil {
		return nil, documentError(doc, p.Institution(), err)
	}
	for _, d := range bounds.Degradations {
		p.logger.Warn("boundary degradation", slog.String("document", doc.Name), slog.String("detail", d))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grids := table.Reconstruct(pages, bounds, p.format.Spec(), p.format.IsRowStart)
	records, stitched := table.Stitch(grids, p.format.Columns(), p.format.StitchOptions())

	result := newResult(p.Institution(), doc, p.format.AccountInfo(lines))
	result.Stats.Continuations = stitched.Continuations
	conv := &converter{
		mapper: p.format,
		year:   statementYear(p.opts, lines),
		result: result,
		logger: p.logger,
	}
	for i, text := range stitched.OrphanText {
		conv.orphan(stitched.OrphanPages[i], text)
	}
	for _, rec := range records {
		conv.add(rec)
	}
	conv.summarize()
	return result, nil
}

func statementYear(opts Options, lines []layout.Line) int {
	if opts.Year > 0 {
		return opts.Year
	}
	return findStatementYear(lines)
}
