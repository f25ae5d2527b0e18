package parser

import (
	"strings"

	"github.com/insightdelivered/statement-parser/internal/layout"
	"github.com/insightdelivered/statement-parser/internal/models"
)

type frag struct {
	text   string
	x0, x1 float64
}

type textRow struct {
	top   float64
	frags []frag
}

func at(top float64, frags ...frag) textRow {
	return textRow{top: top, frags: frags}
}

func positionedPage(index int, rows ...textRow) models.PageText {
	p := models.PageText{Index: index, Width: 792, Height: 612}
	for _, r := range rows {
		for _, f := range r.frags {
			p.Fragments = append(p.Fragments, models.Fragment{
				Text: f.text, Page: index, Top: r.top, X0: f.x0, X1: f.x1,
			})
		}
	}
	return p
}

// textPage lays out plain text lines one word after another, 14pt apart.
func textPage(index int, lines ...string) models.PageText {
	p := models.PageText{Index: index, Width: 612, Height: 792}
	for i, line := range lines {
		top := 20 + 14*float64(i)
		x := 20.0
		for _, word := range strings.Fields(line) {
			width := 5 * float64(len(word))
			p.Fragments = append(p.Fragments, models.Fragment{
				Text: word, Page: index, Top: top, X0: x, X1: x + width,
			})
			x += width + 4
		}
	}
	return p
}

func textLines(lines ...string) []layout.Line {
	return layout.GroupLines(textPage(0, lines...).Fragments, 0)
}
