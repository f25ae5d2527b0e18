package models

// Fragment is one piece of positioned text produced by the layout extractor.
// Top grows downward from the top edge of the page.
type Fragment struct {
	Text string  `json:"text"`
	Page int     `json:"page"`
	Top  float64 `json:"top"`
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
}

// PageText is the extractor's output for a single page.
type PageText struct {
	Index     int        `json:"index"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Fragments []Fragment `json:"fragments"`
}

// Document is a paginated statement ready for parsing.
type Document struct {
	Name  string     `json:"name"`
	Pages []PageText `json:"pages"`
}

// ColumnBoundarySet is the ordered list of horizontal cut positions for one document.
type ColumnBoundarySet []float64

// Columns returns the number of columns the cuts define.
func (c ColumnBoundarySet) Columns() int {
	if len(c) < 2 {
		return 0
	}
	return len(c) - 1
}

// RawCell is the text found at the intersection of a row span and a column span.
type RawCell struct {
	RowIndex int    `json:"rowIndex"`
	ColIndex int    `json:"colIndex"`
	Text     string `json:"text"`
}

// RawRecord is one logical transaction before normalization. Empty strings mean absent.
type RawRecord struct {
	Page          int    `json:"page"`
	Row           int    `json:"row"`
	Date          string `json:"date"`
	DateInherited bool   `json:"dateInherited"`
	RawCategory   string `json:"rawCategory"`
	Symbol        string `json:"symbol,omitempty"`
	Description   string `json:"description"`
	Quantity      string `json:"quantity,omitempty"`
	PricePerUnit  string `json:"pricePerUnit,omitempty"`
	Amount        string `json:"amount"`
}
