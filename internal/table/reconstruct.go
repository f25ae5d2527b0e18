package table

import (
	"strings"

	"github.com/insightdelivered/statement-parser/internal/layout"
	"github.com/insightdelivered/statement-parser/internal/models"
)

// RowStartFunc reports whether a line opens a new table row.
type RowStartFunc func(layout.Line) bool

// Row is one row span of a grid with one cell per column.
type Row struct {
	Index int
	Page  int
	Top   float64
	Cells []models.RawCell

	// Caption is the text of the last caption line above the row, if any.
	Caption string
}

// Text returns the text of a column, or "" when the column does not exist.
func (r Row) Text(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return r.Cells[col].Text
}

// FirstLine returns the first line of a column's text.
func (r Row) FirstLine(col int) string {
	text := r.Text(col)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

// Empty reports whether every cell of the row is blank.
func (r Row) Empty() bool {
	for _, c := range r.Cells {
		if c.Text != "" {
			return false
		}
	}
	return true
}

// Grid is the reconstructed table for one page.
type Grid struct {
	Page    int
	Columns int
	Rows    []Row
	// Padded is set when the last row was bounded by the padding heuristic.
	Padded bool
}

// Reconstruct turns the section lines of every page into a grid of cells.
// Rows begin at lines accepted by isRowStart and extend to the next row start,
// or to the section end. Lines above the first row start on a page are dropped.
func Reconstruct(pages []layout.Page, b *Boundaries, spec Spec, isRowStart RowStartFunc) []Grid {
	var (
		grids   []Grid
		caption string
	)
	for _, page := range pages {
		sec, ok := b.Section(page.Index)
		if !ok {
			continue
		}
		lines, captions := sectionLines(page, sec, spec, &caption)

		var starts []int
		for i, l := range lines {
			if isRowStart(l) {
				starts = append(starts, i)
			}
		}
		if len(starts) == 0 {
			continue
		}

		grid := Grid{Page: page.Index, Columns: b.Cuts.Columns()}
		end := sec.Bottom
		if !sec.EndMarker {
			end = lines[starts[len(starts)-1]].Top + rowPadding(lines, starts, spec)
			grid.Padded = true
		}

		for k, s := range starts {
			stop := len(lines)
			if k+1 < len(starts) {
				stop = starts[k+1]
			}
			var rowLines []layout.Line
			for j := s; j < stop; j++ {
				if k+1 == len(starts) && lines[j].Top >= end {
					break
				}
				rowLines = append(rowLines, lines[j])
			}
			row := buildRow(k, page.Index, rowLines, b.Cuts)
			row.Caption = captions[s]
			grid.Rows = append(grid.Rows, row)
		}
		grids = append(grids, grid)
	}
	return grids
}

// rowPadding estimates how far below its start the last row of an open-ended page may reach.
func rowPadding(lines []layout.Line, starts []int, spec Spec) float64 {
	if len(starts) < 2 {
		return spec.defaultPadding()
	}
	first, last := lines[starts[0]].Top, lines[starts[len(starts)-1]].Top
	avg := (last - first) / float64(len(starts))
	if avg <= 0 {
		return spec.defaultPadding()
	}
	return avg * spec.paddingMultiplier()
}

// sectionLines returns the row material of a page section and, per line, the caption
// in effect. caption carries the last caption seen over to the next page.
func sectionLines(page layout.Page, sec Section, spec Spec, caption *string) ([]layout.Line, []string) {
	var (
		out      []layout.Line
		captions []string
	)
	for _, l := range page.Lines {
		if !sec.Contains(l) {
			continue
		}
		text := strings.TrimSpace(l.Text())
		if matchAny(spec.Markers.Skip, text) {
			continue
		}
		if spec.Markers.SectionStart != nil && spec.Markers.SectionStart.MatchString(text) {
			continue
		}
		if IsHeader(l, spec) {
			continue
		}
		if matchAny(spec.Markers.Captions, text) {
			*caption = text
			continue
		}
		out = append(out, l)
		captions = append(captions, *caption)
	}
	return out, captions
}

// buildRow assigns each word to the column whose cut range holds its midpoint.
// Words of one line join with spaces and lines of one cell join with newlines.
func buildRow(index, page int, lines []layout.Line, cuts models.ColumnBoundarySet) Row {
	cols := cuts.Columns()
	parts := make([][]string, cols)
	for _, l := range lines {
		words := make([][]string, cols)
		for _, w := range l.Words {
			if c := columnOf(w.Mid(), cuts); c >= 0 {
				words[c] = append(words[c], w.Text)
			}
		}
		for c, ws := range words {
			if len(ws) > 0 {
				parts[c] = append(parts[c], strings.Join(ws, " "))
			}
		}
	}

	row := Row{Index: index, Page: page, Cells: make([]models.RawCell, cols)}
	if len(lines) > 0 {
		row.Top = lines[0].Top
	}
	for c := range row.Cells {
		row.Cells[c] = models.RawCell{
			RowIndex: index,
			ColIndex: c,
			Text:     strings.Join(parts[c], "\n"),
		}
	}
	return row
}

func columnOf(x float64, cuts models.ColumnBoundarySet) int {
	for j := 0; j+1 < len(cuts); j++ {
		if x >= cuts[j] && x < cuts[j+1] {
			return j
		}
	}
	return -1
}
