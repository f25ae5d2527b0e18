package writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// JSONWriter writes the full parse results, issues and stats included.
type JSONWriter struct {
	Indent bool
}

func (w *JSONWriter) Write(out io.Writer, results []*models.ParseResult) error {
	enc := json.NewEncoder(out)
	if w.Indent {
		enc.SetIndent("", "  ")
	}
	if results == nil {
		results = []*models.ParseResult{}
	}
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
