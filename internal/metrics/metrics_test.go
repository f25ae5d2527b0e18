package metrics

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/parser"
)

var _ parser.Observer = (*Recorder)(nil)

func TestRecorder_ObserveParse(t *testing.T) {
	r := NewRecorder()

	ok := &models.ParseResult{
		Transactions: make([]models.NormalizedRecord, 3),
		Stats:        models.ParseStats{Continuations: 2},
	}
	review := &models.ParseResult{
		Transactions: make([]models.NormalizedRecord, 1),
		Issues: []models.Issue{
			{Severity: models.SeverityRow, Message: "row has no amount"},
			{Severity: models.SeverityAttribute, Field: "quantity", Message: "unparseable"},
		},
		Stats: models.ParseStats{SkipReasons: map[string]int{"no_amount": 1}},
	}
	rejected := &models.DocumentError{Institution: models.InstitutionSchwab, Err: models.ErrNoHeader}

	r.ObserveParse(models.InstitutionSchwab, ok, nil, 10*time.Millisecond)
	r.ObserveParse(models.InstitutionSchwab, review, nil, 20*time.Millisecond)
	r.ObserveParse(models.InstitutionSchwab, nil, rejected, time.Millisecond)
	r.ObserveParse(models.InstitutionFidelity, nil, errors.New("boom"), time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	out := buf.String()

	for _, want := range []string{
		`statement_parser_documents_total{institution="schwab",outcome="ok"} 1`,
		`statement_parser_documents_total{institution="schwab",outcome="needs_review"} 1`,
		`statement_parser_documents_total{institution="schwab",outcome="rejected"} 1`,
		`statement_parser_documents_total{institution="fidelity",outcome="error"} 1`,
		`statement_parser_records_total{institution="schwab"} 4`,
		`statement_parser_continuations_total{institution="schwab"} 2`,
		`statement_parser_skipped_rows_total{institution="schwab",reason="no_amount"} 1`,
		`statement_parser_issues_total{institution="schwab",severity="attribute"} 1`,
		`statement_parser_issues_total{institution="schwab",severity="row"} 1`,
		`statement_parser_parse_duration_seconds_count{institution="schwab"} 3`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestRecorder_WriteFile(t *testing.T) {
	r := NewRecorder()
	r.ObserveParse(models.InstitutionTDAmeritrade, &models.ParseResult{}, nil, time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	assert.Contains(t, buf.String(), `statement_parser_documents_total{institution="tdameritrade",outcome="ok"} 1`)
	assert.Contains(t, buf.String(), "# TYPE statement_parser_parse_duration_seconds histogram")

	path := filepath.Join(t.TempDir(), "parse.prom")
	require.NoError(t, r.WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(data))
}
