package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// CSVWriter writes transactions to CSV format.
type CSVWriter struct {
	// IncludeHeader prefixes the table with "# key,value" metadata rows.
	IncludeHeader bool
	UserID        string
}

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, results []*models.ParseResult) error {
	if w.IncludeHeader {
		meta := csv.NewWriter(out)
		for _, res := range results {
			if res == nil {
				continue
			}
			meta.Write([]string{"# Document", res.Document})
			meta.Write([]string{"# Institution", string(res.Institution)})
			if res.AccountInfo != nil && res.AccountInfo.AccountNumberLast4 != "" {
				meta.Write([]string{"# Account", res.AccountInfo.AccountNumberLast4})
			}
			if res.NeedsReview() {
				meta.Write([]string{"# Issues", fmt.Sprint(len(res.Issues))})
			}
		}
		meta.Flush()
		if err := meta.Error(); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	rows := Rows(results, w.UserID)
	if rows == nil {
		rows = []Row{}
	}
	if err := gocsv.Marshal(rows, out); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
