package table

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// NoColumn marks a field the table layout does not carry.
const NoColumn = -1

// ColumnMap locates each record field in the grid.
type ColumnMap struct {
	Date        int
	Category    int
	Symbol      int
	Description int
	Quantity    int
	Price       int
	Amount      int
}

// ContinuationFunc reports whether a row continues the previous record.
type ContinuationFunc func(row Row, cols ColumnMap) bool

// StitchOptions tunes how rows fold into records.
type StitchOptions struct {
	// DatePattern extracts the date from the date cell. The first submatch wins when present.
	DatePattern *regexp.Regexp
	// IsContinuation overrides DefaultContinuation.
	IsContinuation ContinuationFunc
}

// StitchStats counts what the stitcher did with the rows it saw.
type StitchStats struct {
	Rows          int
	Records       int
	Continuations int
	// Orphans are continuation rows with no record before them on their page. They are dropped.
	Orphans int
	// OrphanText keeps the dropped text in document order for issue reporting.
	OrphanText []string
	// OrphanPages holds the page of each OrphanText entry.
	OrphanPages []int
}

// DateTracker carries the most recent explicit date across rows of one document.
type DateTracker struct {
	last string
}

// Resolve returns the date for a row. An empty date inherits the last explicit one.
func (d *DateTracker) Resolve(date string) (string, bool) {
	if date != "" {
		d.last = date
		return date, false
	}
	return d.last, d.last != ""
}

// Reset forgets the carried date.
func (d *DateTracker) Reset() {
	d.last = ""
}

// DefaultContinuation treats a row with neither a date nor a category as a continuation.
func DefaultContinuation(opts StitchOptions) ContinuationFunc {
	return func(row Row, cols ColumnMap) bool {
		if dateOf(row.Text(cols.Date), opts.DatePattern) != "" {
			return false
		}
		return strings.TrimSpace(row.Text(cols.Category)) == ""
	}
}

// Stitch folds grids into raw records in document order. Every row that is not a
// continuation yields exactly one record; continuation text is appended to the
// previous record's description. Rows never merge across grids: a continuation
// before the first record of its grid is an orphan.
func Stitch(grids []Grid, cols ColumnMap, opts StitchOptions) ([]models.RawRecord, StitchStats) {
	isContinuation := opts.IsContinuation
	if isContinuation == nil {
		isContinuation = DefaultContinuation(opts)
	}

	var (
		dates DateTracker
		out   []models.RawRecord
		stats StitchStats
	)
	for _, g := range grids {
		first := len(out)
		for _, row := range g.Rows {
			stats.Rows++
			if isContinuation(row, cols) {
				text := continuationText(row)
				if len(out) == first {
					stats.Orphans++
					stats.OrphanText = append(stats.OrphanText, text)
					stats.OrphanPages = append(stats.OrphanPages, row.Page)
					continue
				}
				appendDescription(&out[len(out)-1], text)
				stats.Continuations++
				continue
			}

			date, inherited := dates.Resolve(dateOf(row.Text(cols.Date), opts.DatePattern))
			category := flatten(row.Text(cols.Category))
			if category == "" {
				category = row.Caption
			}
			out = append(out, models.RawRecord{
				Page:          row.Page,
				Row:           row.Index,
				Date:          date,
				DateInherited: inherited,
				RawCategory:   category,
				Symbol:        strings.TrimSpace(row.Text(cols.Symbol)),
				Description:   strings.TrimSpace(row.Text(cols.Description)),
				Quantity:      firstNonEmptyLine(row.Text(cols.Quantity)),
				PricePerUnit:  firstNonEmptyLine(row.Text(cols.Price)),
				Amount:        firstNonEmptyLine(row.Text(cols.Amount)),
			})
		}
	}
	stats.Records = len(out)
	return out, stats
}

func dateOf(text string, pattern *regexp.Regexp) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if pattern == nil {
		return firstNonEmptyLine(text)
	}
	m := pattern.FindStringSubmatch(text)
	switch {
	case m == nil:
		return ""
	case len(m) > 1 && m[1] != "":
		return m[1]
	default:
		return m[0]
	}
}

func continuationText(row Row) string {
	var parts []string
	for _, c := range row.Cells {
		if t := strings.TrimSpace(c.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

func appendDescription(rec *models.RawRecord, text string) {
	if text == "" {
		return
	}
	if rec.Description == "" {
		rec.Description = text
		return
	}
	rec.Description += "\n" + text
}

func flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func firstNonEmptyLine(text string) string {
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}
