package models

// ParseStats counts what happened to the rows of a document.
type ParseStats struct {
	TotalRows     int            `json:"totalRows"`
	ParsedRows    int            `json:"parsedRows"`
	SkippedRows   int            `json:"skippedRows"`
	Continuations int            `json:"continuations"`
	SkipReasons   map[string]int `json:"skipReasons,omitempty"`
}

// Skip records a skipped row under the given reason.
func (s *ParseStats) Skip(reason string) {
	if s.SkipReasons == nil {
		s.SkipReasons = make(map[string]int)
	}
	s.SkipReasons[reason]++
	s.SkippedRows++
}

// ParseResult is the aggregate output for one document.
type ParseResult struct {
	Institution  Institution        `json:"institution"`
	Document     string             `json:"document,omitempty"`
	AccountInfo  *AccountInfo       `json:"accountInfo,omitempty"`
	Transactions []NormalizedRecord `json:"transactions"`
	Issues       []Issue            `json:"issues,omitempty"`
	Stats        ParseStats         `json:"stats"`
}

// NeedsReview reports whether any row was skipped or any record lost an attribute.
func (r *ParseResult) NeedsReview() bool {
	return len(r.Issues) > 0
}
