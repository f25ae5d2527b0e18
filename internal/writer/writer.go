// Package writer renders parse results as CSV, JSON or XLSX.
package writer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Writer renders a batch of parse results.
type Writer interface {
	Write(out io.Writer, results []*models.ParseResult) error
}

// Row is one flattened transaction, shared by the tabular writers.
type Row struct {
	Document     string `csv:"document"`
	Institution  string `csv:"institution"`
	Account      string `csv:"account"`
	Date         string `csv:"transaction_date"`
	Type         string `csv:"transaction_type"`
	SecurityType string `csv:"security_type"`
	Symbol       string `csv:"symbol"`
	APISymbol    string `csv:"api_symbol"`
	Description  string `csv:"description"`
	Quantity     string `csv:"quantity"`
	PricePerUnit string `csv:"price_per_unit"`
	TotalAmount  string `csv:"total_amount"`
	ContentKey   string `csv:"content_key"`
}

var rowHeader = []string{
	"Document", "Institution", "Account", "Date", "Type", "Security Type",
	"Symbol", "API Symbol", "Description", "Quantity", "Price", "Amount", "Content Key",
}

func (r Row) values() []string {
	return []string{
		r.Document, r.Institution, r.Account, r.Date, r.Type, r.SecurityType,
		r.Symbol, r.APISymbol, r.Description, r.Quantity, r.PricePerUnit, r.TotalAmount, r.ContentKey,
	}
}

// Rows flattens every transaction of every result. userID scopes the
// content key; an empty userID leaves the key blank.
func Rows(results []*models.ParseResult, userID string) []Row {
	var rows []Row
	for _, res := range results {
		if res == nil {
			continue
		}
		account := ""
		if res.AccountInfo != nil {
			account = res.AccountInfo.AccountNumberLast4
		}
		for _, txn := range res.Transactions {
			row := Row{
				Document:     res.Document,
				Institution:  string(res.Institution),
				Account:      account,
				Date:         txn.TransactionDate.Format("2006-01-02"),
				Type:         string(txn.TransactionType),
				SecurityType: string(txn.SecurityType),
				Symbol:       txn.Symbol,
				APISymbol:    txn.APISymbol,
				Description:  txn.Description,
				Quantity:     nullString(txn.Quantity.Valid, txn.Quantity.Decimal.String()),
				PricePerUnit: nullString(txn.PricePerUnit.Valid, txn.PricePerUnit.Decimal.String()),
				TotalAmount:  txn.TotalAmount.StringFixed(2),
			}
			if userID != "" {
				row.ContentKey = txn.ContentKey(userID, res.Institution).String()
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func nullString(valid bool, s string) string {
	if !valid {
		return ""
	}
	return s
}

// New returns the writer for a format name: csv, json or xlsx.
func New(format, userID string) (Writer, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return &CSVWriter{UserID: userID}, nil
	case "json":
		return &JSONWriter{Indent: true}, nil
	case "xlsx", "excel":
		return &XLSXWriter{UserID: userID}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteToFile renders results into a file at the given path.
func WriteToFile(w Writer, path string, results []*models.ParseResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := w.Write(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
