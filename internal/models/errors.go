package models

import (
	"errors"
	"fmt"
)

// Fatal conditions: the whole document is rejected and no partial result is returned.
var (
	ErrNoHeader       = errors.New("transaction table header not found")
	ErrNoSectionStart = errors.New("transaction section start marker not found")
	ErrNoText         = errors.New("document has no positioned text")
)

// DocumentError reports a fatal failure for one document.
type DocumentError struct {
	Document    string
	Institution Institution
	Err         error
}

func (e *DocumentError) Error() string {
	if e.Document == "" {
		return fmt.Sprintf("%s: %v", e.Institution, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Institution, e.Document, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Severity grades a non-fatal issue.
type Severity string

const (
	// SeverityRow means the row was skipped and needs caller review.
	SeverityRow Severity = "row"
	// SeverityAttribute means the record was kept with a field left absent.
	SeverityAttribute Severity = "attribute"
)

// Issue is a non-fatal problem found while parsing, reported next to the output.
type Issue struct {
	Severity Severity `json:"severity"`
	Page     int      `json:"page"`
	Row      int      `json:"row"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	RawData  string   `json:"rawData,omitempty"`
}

func (i Issue) Error() string {
	if i.Field == "" {
		return fmt.Sprintf("page %d, row %d: %s", i.Page+1, i.Row, i.Message)
	}
	return fmt.Sprintf("page %d, row %d, field %s: %s", i.Page+1, i.Row, i.Field, i.Message)
}
