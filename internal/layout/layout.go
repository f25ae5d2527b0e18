// Package layout turns positioned text fragments into words and lines.
package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// DefaultTolerance is the vertical distance within which fragments share a line.
const DefaultTolerance = 3.0

// Word is a fragment placed on a line.
type Word struct {
	Text string
	X0   float64
	X1   float64
	Top  float64
}

// Mid returns the horizontal midpoint of the word.
func (w Word) Mid() float64 {
	return (w.X0 + w.X1) / 2
}

// Line is a row of words sharing a vertical position.
type Line struct {
	Page   int
	Top    float64
	Bottom float64
	X0     float64
	X1     float64
	Words  []Word
}

// Text joins the words of the line with single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Page is the ordered lines of one document page.
type Page struct {
	Index  int
	Height float64
	Lines  []Line
}

// Build groups every page of a document into lines.
func Build(doc *models.Document, tolerance float64) []Page {
	pages := make([]Page, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		pages = append(pages, Page{
			Index:  p.Index,
			Height: p.Height,
			Lines:  GroupLines(p.Fragments, tolerance),
		})
	}
	return pages
}

// GroupLines clusters fragments by their top coordinate. A fragment joins the
// current line while its top stays within tolerance of the line's first fragment.
func GroupLines(fragments []models.Fragment, tolerance float64) []Line {
	if len(fragments) == 0 {
		return nil
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	sorted := make([]models.Fragment, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		sorted = append(sorted, f)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines []Line
	var current []models.Fragment
	anchor := math.Inf(-1)
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, newLine(current))
			current = nil
		}
	}
	for _, f := range sorted {
		if f.Top-anchor > tolerance {
			flush()
			anchor = f.Top
		}
		current = append(current, f)
	}
	flush()
	return lines
}

func newLine(fragments []models.Fragment) Line {
	sort.SliceStable(fragments, func(i, j int) bool {
		return fragments[i].X0 < fragments[j].X0
	})
	line := Line{
		Page:   fragments[0].Page,
		Top:    math.Inf(1),
		Bottom: math.Inf(-1),
		X0:     math.Inf(1),
		X1:     math.Inf(-1),
	}
	for _, f := range fragments {
		line.Words = append(line.Words, Word{
			Text: strings.TrimSpace(f.Text),
			X0:   f.X0,
			X1:   f.X1,
			Top:  f.Top,
		})
		line.Top = math.Min(line.Top, f.Top)
		line.Bottom = math.Max(line.Bottom, f.Top)
		line.X0 = math.Min(line.X0, f.X0)
		line.X1 = math.Max(line.X1, f.X1)
	}
	return line
}

// Texts returns the text of every line on the page.
func (p Page) Texts() []string {
	out := make([]string, len(p.Lines))
	for i, l := range p.Lines {
		out[i] = l.Text()
	}
	return out
}

// AllLines flattens pages into a single sequence of lines in document order.
func AllLines(pages []Page) []Line {
	var out []Line
	for _, p := range pages {
		out = append(out, p.Lines...)
	}
	return out
}
