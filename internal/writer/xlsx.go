package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-parser/internal/models"
)

const (
	transactionsSheet = "Transactions"
	issuesSheet       = "Issues"
)

var issueHeader = []string{"Document", "Severity", "Page", "Row", "Field", "Message", "Raw Data"}

// XLSXWriter writes a workbook with a transactions sheet and, when any
// document needs review, an issues sheet.
type XLSXWriter struct {
	UserID string
}

func (w *XLSXWriter) Write(out io.Writer, results []*models.ParseResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rows := Rows(results, w.UserID)
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, r.values())
	}
	if err := writeSheet(f, transactionsSheet, rowHeader, table, bold); err != nil {
		return err
	}

	var issues [][]string
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, is := range res.Issues {
			issues = append(issues, []string{
				res.Document, string(is.Severity), fmt.Sprint(is.Page + 1), fmt.Sprint(is.Row),
				is.Field, is.Message, is.RawData,
			})
		}
	}
	if len(issues) > 0 {
		if _, err := f.NewSheet(issuesSheet); err != nil {
			return fmt.Errorf("failed to add issues sheet: %w", err)
		}
		if err := writeSheet(f, issuesSheet, issueHeader, issues, bold); err != nil {
			return err
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string, style int) error {
	for i, name := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write %s header: %w", sheet, err)
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	f.SetCellStyle(sheet, first, last, style)

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", sheet, rowIdx+1, err)
			}
		}
	}

	// Approximate auto-fit.
	for i, name := range header {
		width := float64(len(name) + 4)
		for _, row := range rows {
			if n := float64(len(row[i]) + 2); n > width {
				width = n
			}
		}
		if width < 12 {
			width = 12
		}
		if width > 60 {
			width = 60
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, width)
	}
	return nil
}
