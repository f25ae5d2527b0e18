// Package table rebuilds statement transaction tables from positioned text.
//
// The pipeline has three stages: DetectBoundaries finds where the transaction
// section lives and where the column cuts go, Reconstruct groups section lines
// into per-page cell grids, and Stitch folds the grids into raw records.
package table

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/layout"
	"github.com/insightdelivered/statement-parser/internal/models"
)

const (
	defaultMargin            = 2.0
	defaultPaddingMultiplier = 3.0
	defaultRowPadding        = 50.0
	cutClearance             = 0.5
)

// Markers holds the patterns that bound a transaction section.
type Markers struct {
	// SectionStart opens the section. A nil pattern opens it at the header row.
	SectionStart *regexp.Regexp
	// StartRequired makes a missing SectionStart fatal.
	StartRequired bool
	// SectionEnd closes the section for the rest of the document (explicit footer text).
	SectionEnd []*regexp.Regexp
	// Totals closes the section when no explicit footer is printed.
	Totals []*regexp.Regexp
	// PageNumber ends the section on the current page only.
	PageNumber *regexp.Regexp
	// Skip drops header repeats and captions before rows are grouped.
	Skip []*regexp.Regexp
	// Captions are sub-section headings inside the table. A caption line is dropped and
	// its text labels every following row, across pages, until the next caption.
	Captions []*regexp.Regexp
}

// Spec is the per-institution table layout configuration.
type Spec struct {
	Markers Markers
	// Columns are the header anchors, left to right. Multi-word anchors match consecutive words
	// and each anchor word matches a header word it prefixes.
	Columns []string
	// CutHints are preferred cut positions, one more than the number of columns.
	CutHints []float64
	// Margin is the distance of derived outer cuts from the header words.
	Margin float64
	// PaddingMultiplier scales the average row height to bound the last row of a page.
	PaddingMultiplier float64
	// DefaultPadding bounds the last row when a page holds a single row.
	DefaultPadding float64
}

func (s Spec) margin() float64 {
	if s.Margin > 0 {
		return s.Margin
	}
	return defaultMargin
}

func (s Spec) paddingMultiplier() float64 {
	if s.PaddingMultiplier > 0 {
		return s.PaddingMultiplier
	}
	return defaultPaddingMultiplier
}

func (s Spec) defaultPadding() float64 {
	if s.DefaultPadding > 0 {
		return s.DefaultPadding
	}
	return defaultRowPadding
}

// Section is the vertical range of the transaction table on one page.
// A line belongs to it when Top < line.Top < Bottom.
type Section struct {
	Page      int
	Top       float64
	Bottom    float64
	EndMarker bool
}

// Contains reports whether the line falls inside the section.
func (s Section) Contains(l layout.Line) bool {
	return l.Top > s.Top && l.Top < s.Bottom
}

// Boundaries is the output of boundary detection for one document.
type Boundaries struct {
	Cuts       models.ColumnBoundarySet
	Header     layout.Line
	HeaderPage int
	Sections   []Section
	// Degradations lists tolerated problems, such as a page without an end marker.
	Degradations []string
}

// Section returns the section range for a page.
func (b *Boundaries) Section(page int) (Section, bool) {
	for _, s := range b.Sections {
		if s.Page == page {
			return s, true
		}
	}
	return Section{}, false
}

type sectionState int

const (
	seekingSectionStart sectionState = iota
	inSection
	sectionClosed
)

type span struct {
	x0, x1 float64
}

func (s span) contains(x float64) bool {
	return s.x0 < x && x < s.x1
}

// DetectBoundaries locates the transaction section on every page and derives the
// column cuts from the first header row. A missing header is fatal, as is a missing
// start marker when Markers.StartRequired is set.
func DetectBoundaries(pages []layout.Page, spec Spec) (*Boundaries, error) {
	if len(spec.Columns) == 0 {
		return nil, fmt.Errorf("table spec has no header columns: %w", models.ErrNoHeader)
	}

	b := &Boundaries{HeaderPage: -1}
	var header []span
	state := seekingSectionStart
	if spec.Markers.SectionStart == nil {
		state = inSection
	}

	for _, page := range pages {
		if state == sectionClosed {
			break
		}
		sec := Section{Page: page.Index, Top: math.Inf(-1), Bottom: math.Inf(1)}
		opened := state == inSection

	lines:
		for _, line := range page.Lines {
			text := strings.TrimSpace(line.Text())

			if state == seekingSectionStart {
				switch {
				case spec.Markers.SectionStart != nil && spec.Markers.SectionStart.MatchString(text):
					state, opened = inSection, true
					sec.Top = line.Bottom
				case !spec.Markers.StartRequired && header == nil:
					if spans, ok := matchHeader(line.Words, spec.Columns); ok {
						state, opened = inSection, true
						sec.Top = math.Nextafter(line.Top, math.Inf(-1))
						header, b.Header, b.HeaderPage = spans, line, page.Index
					}
				}
				continue
			}

			if spec.Markers.SectionStart != nil && spec.Markers.SectionStart.MatchString(text) {
				sec.Top = line.Bottom
				continue
			}
			if header == nil {
				if spans, ok := matchHeader(line.Words, spec.Columns); ok {
					header, b.Header, b.HeaderPage = spans, line, page.Index
					continue
				}
			}
			switch {
			case matchAny(spec.Markers.SectionEnd, text), matchAny(spec.Markers.Totals, text):
				sec.Bottom, sec.EndMarker = line.Top, true
				state = sectionClosed
				break lines
			case spec.Markers.PageNumber != nil && spec.Markers.PageNumber.MatchString(text):
				sec.Bottom, sec.EndMarker = line.Top, true
				break lines
			}
		}

		if opened {
			if !sec.EndMarker {
				b.Degradations = append(b.Degradations,
					fmt.Sprintf("page %d: no end marker, last row bounded by padding", page.Index+1))
			}
			b.Sections = append(b.Sections, sec)
		}
	}

	if state == seekingSectionStart && spec.Markers.StartRequired {
		return nil, models.ErrNoSectionStart
	}
	if header == nil {
		return nil, models.ErrNoHeader
	}

	var observed []span
	if sec, ok := b.Section(b.HeaderPage); ok {
		for _, page := range pages {
			if page.Index != b.HeaderPage {
				continue
			}
			for _, line := range page.Lines {
				if !sec.Contains(line) && line.Top != b.Header.Top {
					continue
				}
				for _, w := range line.Words {
					observed = append(observed, span{w.X0, w.X1})
				}
			}
		}
	}

	cuts, notes := computeCuts(header, observed, spec)
	b.Cuts = cuts
	b.Degradations = append(b.Degradations, notes...)
	return b, nil
}

// IsHeader reports whether a line carries every column anchor in spec.Columns, in order.
func IsHeader(line layout.Line, spec Spec) bool {
	_, ok := matchHeader(line.Words, spec.Columns)
	return ok
}

// matchHeader finds each column anchor in order and returns its horizontal span.
func matchHeader(words []layout.Word, columns []string) ([]span, bool) {
	spans := make([]span, 0, len(columns))
	i := 0
	for _, col := range columns {
		tokens := strings.Fields(col)
		if len(tokens) == 0 {
			return nil, false
		}
		found := false
		for ; i+len(tokens) <= len(words); i++ {
			if tokensMatch(words[i:i+len(tokens)], tokens) {
				spans = append(spans, span{words[i].X0, words[i+len(tokens)-1].X1})
				i += len(tokens)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return spans, true
}

// tokensMatch compares case-insensitively and accepts a header word that extends
// its anchor, so "Amount" matches "Amount($)".
func tokensMatch(words []layout.Word, tokens []string) bool {
	for k, tok := range tokens {
		if !strings.HasPrefix(strings.ToLower(words[k].Text), strings.ToLower(tok)) {
			return false
		}
	}
	return true
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// computeCuts places one cut before every column and one after the last. Each cut
// stays inside the gap between neighbouring header words and is moved off any
// observed word it would split.
func computeCuts(header []span, observed []span, spec Spec) (models.ColumnBoundarySet, []string) {
	n := len(header)
	candidates := make([]float64, n+1)
	if len(spec.CutHints) == n+1 {
		copy(candidates, spec.CutHints)
	} else {
		candidates[0] = header[0].x0 - spec.margin()
		for i := 1; i < n; i++ {
			candidates[i] = (header[i-1].x1 + header[i].x0) / 2
		}
		candidates[n] = header[n-1].x1 + spec.margin()
	}

	var notes []string
	cuts := make(models.ColumnBoundarySet, n+1)
	for i, c := range candidates {
		lo, hi := math.Inf(-1), math.Inf(1)
		if i > 0 {
			lo = header[i-1].x1
		}
		if i < n {
			hi = header[i].x0
		}
		if i > 0 && cuts[i-1] > lo {
			lo = cuts[i-1]
		}

		if c <= lo || c >= hi {
			c = clampInto(c, lo, hi, spec.margin())
		}
		if splitsWord(c, observed) {
			if alt, ok := nearestFree(c, lo, hi, observed); ok {
				c = alt
			} else {
				notes = append(notes, fmt.Sprintf("cut %d at %.1f splits a word and has no free gap", i, c))
			}
		}
		cuts[i] = c
	}
	return cuts, notes
}

func clampInto(c, lo, hi, margin float64) float64 {
	switch {
	case math.IsInf(lo, -1):
		return hi - margin
	case math.IsInf(hi, 1):
		return lo + margin
	default:
		return (lo + hi) / 2
	}
}

func splitsWord(x float64, spans []span) bool {
	for _, s := range spans {
		if s.contains(x) {
			return true
		}
	}
	return false
}

// nearestFree returns the point closest to c that lies in the open window (lo, hi)
// and inside no observed span.
func nearestFree(c, lo, hi float64, spans []span) (float64, bool) {
	var blocked []span
	for _, s := range spans {
		if s.x1 > lo && s.x0 < hi {
			blocked = append(blocked, s)
		}
	}
	sort.Slice(blocked, func(i, j int) bool { return blocked[i].x0 < blocked[j].x0 })

	var gaps []span
	start := lo
	for _, s := range blocked {
		if s.x0 > start {
			gaps = append(gaps, span{start, s.x0})
		}
		if s.x1 > start {
			start = s.x1
		}
	}
	if start < hi {
		gaps = append(gaps, span{start, hi})
	}

	best, bestDist, found := 0.0, math.Inf(1), false
	for _, g := range gaps {
		p := pointInGap(c, g)
		if d := math.Abs(p - c); d < bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}

func pointInGap(c float64, g span) float64 {
	switch {
	case math.IsInf(g.x0, -1):
		return math.Min(c, g.x1-cutClearance)
	case math.IsInf(g.x1, 1):
		return math.Max(c, g.x0+cutClearance)
	}
	d := math.Min(cutClearance, (g.x1-g.x0)/2)
	return math.Max(g.x0+d, math.Min(c, g.x1-d))
}
