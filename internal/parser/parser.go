// Package parser turns positioned statement text into normalized transaction records.
//
// Each supported institution has a facade built from shared stages. Table statements
// go through boundary detection, table reconstruction and record stitching; sparse
// statements use a line-by-line variant. Both converge on the same record conversion.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-parser/internal/layout"
	"github.com/insightdelivered/statement-parser/internal/logger"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/table"
)

// Parser defines the interface for statement facades.
type Parser interface {
	// Parse converts one document. Fatal problems return a *models.DocumentError and no result.
	Parse(ctx context.Context, doc *models.Document) (*models.ParseResult, error)
	// Institution returns the institution the facade handles.
	Institution() models.Institution
	// Name returns the human-readable institution name.
	Name() string
}

// StatementFormat is the per-institution strategy plugged into the shared table pipeline.
type StatementFormat interface {
	Institution() models.Institution
	DetectBoundaries(pages []layout.Page) (*table.Boundaries, error)
	IsRowStart(line layout.Line) bool
	MapCategory(rawCategory, description string) models.TransactionType
	ExtractSymbol(rec models.RawRecord, t models.TransactionType) Security
	// SignAmount restores the sign of amounts a statement prints unsigned.
	SignAmount(rawCategory string, amount decimal.Decimal) decimal.Decimal
}

// Security is what symbol extraction found for one record.
type Security struct {
	Type      models.SecurityType
	Symbol    string
	APISymbol string
}

// Observer is notified once per parsed document, possibly from several goroutines.
type Observer interface {
	ObserveParse(institution models.Institution, result *models.ParseResult, err error, elapsed time.Duration)
}

// Options tunes every facade. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	// LineTolerance is the vertical distance within which fragments share a line.
	LineTolerance float64
	// RowPaddingMultiplier and DefaultRowPadding bound the last row of a page without an end marker.
	RowPaddingMultiplier float64
	DefaultRowPadding    float64
	// Year completes MM/DD dates. Zero means use the first year printed on the statement.
	Year int
	// Observer receives per-document outcomes from ParseAll.
	Observer Observer
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.Discard()
}

// ErrUnsupportedInstitution is returned by New for unknown institutions.
var ErrUnsupportedInstitution = errors.New("unsupported institution")

// New returns the facade for the given institution.
func New(institution models.Institution, opts Options) (Parser, error) {
	switch institution {
	case models.InstitutionSchwab:
		return newSchwab(opts), nil
	case models.InstitutionTDAmeritrade:
		return newTDAmeritrade(opts), nil
	case models.InstitutionFidelity:
		return newFidelity(opts), nil
	case models.InstitutionTDBank:
		return newTDBank(opts), nil
	case models.InstitutionAmex:
		return newAmex(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInstitution, institution)
	}
}

// Institutions lists the supported institution identifiers.
func Institutions() []models.Institution {
	return []models.Institution{
		models.InstitutionSchwab,
		models.InstitutionTDAmeritrade,
		models.InstitutionFidelity,
		models.InstitutionTDBank,
		models.InstitutionAmex,
	}
}

func documentError(doc *models.Document, institution models.Institution, err error) error {
	name := ""
	if doc != nil {
		name = doc.Name
	}
	return &models.DocumentError{Document: name, Institution: institution, Err: err}
}

func hasText(doc *models.Document) bool {
	if doc == nil {
		return false
	}
	for _, p := range doc.Pages {
		if len(p.Fragments) > 0 {
			return true
		}
	}
	return false
}
