// Package extractor reads PDF statements into positioned text fragments.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// defaultPageHeight is US Letter, used when a page carries no MediaBox.
const defaultPageHeight = 792.0

var (
	ErrNoPages    = errors.New("PDF has no pages")
	ErrUnreadable = errors.New("extracted text is not readable; the PDF may be image-based or use custom font encodings")
)

// Glyph is one positioned piece of text as the PDF content stream draws it.
// Y is the baseline measured upward from the bottom of the page.
type Glyph struct {
	S        string
	X        float64
	Y        float64
	W        float64
	FontSize float64
}

// ExtractFile opens a PDF from disk and returns its positioned words.
func ExtractFile(filePath string) (*models.Document, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Extract(f, info.Size(), filepath.Base(filePath))
}

// Extract reads a PDF and returns one PageText per page, indexed from zero.
// The PDF library panics on some malformed inputs; those become errors.
func Extract(r io.ReaderAt, size int64, name string) (doc *models.Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("PDF library crashed: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, ErrNoPages
	}

	doc = &models.Document{Name: name}
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		width, height := pageSize(page)

		content := page.Content()
		glyphs := make([]Glyph, 0, len(content.Text))
		for _, t := range content.Text {
			glyphs = append(glyphs, Glyph{S: t.S, X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize})
		}

		doc.Pages = append(doc.Pages, models.PageText{
			Index:     i - 1,
			Width:     width,
			Height:    height,
			Fragments: GroupWords(glyphs, i-1, height),
		})
	}

	if fragmentCount(doc) == 0 {
		return nil, models.ErrNoText
	}
	if textQuality(doc) <= 0.6 {
		return nil, ErrUnreadable
	}
	return doc, nil
}

func pageSize(page pdf.Page) (float64, float64) {
	box := page.V.Key("MediaBox")
	if box.Len() < 4 {
		return 0, defaultPageHeight
	}
	width := box.Index(2).Float64() - box.Index(0).Float64()
	height := box.Index(3).Float64() - box.Index(1).Float64()
	if height <= 0 {
		height = defaultPageHeight
	}
	return width, height
}

// GroupWords joins glyphs into words. Glyphs share a word while they sit on the
// same baseline and the horizontal gap between them is under a fifth of the
// font size. Whitespace glyphs always end the current word.
func GroupWords(glyphs []Glyph, page int, height float64) []models.Fragment {
	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(a, b int) bool {
		if math.Abs(sorted[a].Y-sorted[b].Y) > baselineTolerance(sorted[a], sorted[b]) {
			return sorted[a].Y > sorted[b].Y
		}
		return sorted[a].X < sorted[b].X
	})

	var (
		out  []models.Fragment
		cur  strings.Builder
		word models.Fragment
		last Glyph
	)
	flush := func() {
		if cur.Len() > 0 {
			word.Text = cur.String()
			out = append(out, word)
			cur.Reset()
		}
	}

	for _, g := range sorted {
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			flush()
			continue
		}
		if cur.Len() > 0 {
			sameLine := math.Abs(g.Y-last.Y) <= baselineTolerance(g, last)
			gap := g.X - (last.X + last.W)
			if !sameLine || gap > wordGap(last) {
				flush()
			}
		}
		if cur.Len() == 0 {
			word = models.Fragment{
				Page: page,
				Top:  height - g.Y - g.FontSize,
				X0:   g.X,
			}
		}
		cur.WriteString(g.S)
		word.X1 = g.X + g.W
		last = g
	}
	flush()
	return out
}

func baselineTolerance(a, b Glyph) float64 {
	size := math.Max(a.FontSize, b.FontSize)
	if size <= 0 {
		return 1
	}
	return size / 4
}

func wordGap(g Glyph) float64 {
	if g.FontSize <= 0 {
		return 1
	}
	return g.FontSize / 5
}

func fragmentCount(doc *models.Document) int {
	n := 0
	for _, p := range doc.Pages {
		n += len(p.Fragments)
	}
	return n
}

// textQuality returns the share of characters that are printable ASCII or a
// common currency sign. Identity-encoded fonts tend to decode into symbols
// well outside that range.
func textQuality(doc *models.Document) float64 {
	total, readable := 0, 0
	for _, p := range doc.Pages {
		for _, f := range p.Fragments {
			for _, r := range f.Text {
				total++
				if (r >= 0x20 && r < 0x7f) || r == '£' || r == '€' {
					readable++
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}
