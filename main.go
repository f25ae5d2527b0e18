package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/config"
	"github.com/insightdelivered/statement-parser/internal/extractor"
	"github.com/insightdelivered/statement-parser/internal/logger"
	"github.com/insightdelivered/statement-parser/internal/metrics"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/parser"
	"github.com/insightdelivered/statement-parser/internal/writer"
)

const version = "1.0.0"

func main() {
	// CLI flags
	institutionFlag := flag.String("institution", "", "Institution: schwab, tdameritrade, fidelity, tdbank, amex (required)")
	outputFlag := flag.String("output", "", "Write every statement into this one file (defaults to one file per input)")
	formatFlag := flag.String("format", "csv", "Output format: csv, json, xlsx")
	headerFlag := flag.Bool("header", true, "Include statement metadata rows in CSV")
	workersFlag := flag.Int("workers", -1, "Concurrent documents (defaults to PARSER_WORKERS, then one per CPU)")
	yearFlag := flag.Int("year", 0, "Year for MM/DD dates (defaults to the year printed on the statement)")
	userFlag := flag.String("user", "", "User ID for content keys in CSV/XLSX output")
	metricsFlag := flag.String("metrics", "", "Write parse metrics to this file (defaults to PARSER_METRICS_FILE)")
	envFlag := flag.String("env", ".env", "Path to a .env file")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Brokerage Statement Parser
by Insight Delivered (QEA AutoLens)

Converts brokerage statement PDFs from Charles Schwab, TD Ameritrade
and Fidelity, plus TD Bank checking and American Express card statements,
into normalized transaction records.

Usage:
  statement-parser --institution=<name> [flags] <input.pdf> [input2.pdf ...]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # One CSV next to each statement
  statement-parser --institution=schwab jan.pdf feb.pdf

  # All statements into one workbook, four at a time
  statement-parser --institution=fidelity --format=xlsx --output=2024.xlsx --workers=4 *.pdf

  # JSON with issues and stats, plus a metrics dump
  statement-parser --institution=tdameritrade --format=json --metrics=parse.prom march.pdf

Supported Institutions:
  schwab        - Charles Schwab (tabular Transaction Details)
  tdameritrade  - TD Ameritrade (Account Activity)
  fidelity      - Fidelity (Transaction Details)
  tdbank        - TD Bank checking (Daily Account Activity)
  amex          - American Express card (Payments, Credits, New Charges, Fees, Interest)

Environment:
  PARSER_LOG_LEVEL, PARSER_LOG_FORMAT, PARSER_WORKERS, PARSER_LINE_TOLERANCE,
  PARSER_ROW_PADDING_MULTIPLIER, PARSER_DEFAULT_ROW_PADDING, PARSER_METRICS_FILE
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-parser v%s\n", version)
		os.Exit(0)
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := config.Load(*envFlag)
	if err != nil {
		fatalf("Invalid configuration: %v\n", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	institution, err := parseInstitution(*institutionFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	w, err := writer.New(*formatFlag, *userFlag)
	if err != nil {
		fatalf("%v\n", err)
	}
	if cw, ok := w.(*writer.CSVWriter); ok {
		cw.IncludeHeader = *headerFlag
	}

	workers := cfg.Parser.Workers
	if *workersFlag >= 0 {
		workers = *workersFlag
	}
	metricsPath := cfg.Metrics.File
	if *metricsFlag != "" {
		metricsPath = *metricsFlag
	}

	recorder := metrics.NewRecorder()
	opts := parser.Options{
		Logger:               log,
		LineTolerance:        cfg.Parser.LineTolerance,
		RowPaddingMultiplier: cfg.Parser.RowPaddingMultiplier,
		DefaultRowPadding:    cfg.Parser.DefaultRowPadding,
		Year:                 *yearFlag,
		Observer:             recorder,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	failed := run(ctx, log, flag.Args(), institution, w, *formatFlag, *outputFlag, workers, opts)

	if metricsPath != "" {
		if err := recorder.WriteFile(metricsPath); err != nil {
			log.Error("failed to write metrics", slog.String("path", metricsPath), slog.Any("error", err))
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// run extracts and parses every input, writes the outputs and returns the
// number of inputs that failed.
func run(ctx context.Context, log *slog.Logger, inputs []string, institution models.Institution,
	w writer.Writer, format, outputPath string, workers int, opts parser.Options) int {
	failed := 0
	var jobs []parser.Job
	var paths []string

	for _, inputPath := range inputs {
		doc, err := extract(inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			failed++
			continue
		}
		fmt.Printf("Processing: %s (%d page(s))\n", inputPath, len(doc.Pages))
		jobs = append(jobs, parser.Job{Institution: institution, Document: doc})
		paths = append(paths, inputPath)
	}

	outcomes := parser.ParseAll(ctx, jobs, workers, opts)

	var combined []*models.ParseResult
	for i, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", paths[i], o.Err)
			failed++
			continue
		}
		printSummary(paths[i], o.Result)

		if outputPath != "" {
			combined = append(combined, o.Result)
			continue
		}
		outPath := strings.TrimSuffix(paths[i], filepath.Ext(paths[i])) + "." + extension(format)
		if err := writer.WriteToFile(w, outPath, []*models.ParseResult{o.Result}); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outPath, err)
			failed++
			continue
		}
		fmt.Printf("  Output: %s\n", outPath)
	}

	if outputPath != "" && len(combined) > 0 {
		if err := writer.WriteToFile(w, outputPath, combined); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
			return failed + 1
		}
		fmt.Printf("Output: %s\n", outputPath)
	}

	log.Debug("run complete", slog.Int("inputs", len(inputs)), slog.Int("failed", failed))
	return failed
}

func extract(inputPath string) (*models.Document, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file not found: %s", inputPath)
	}
	ext := strings.ToLower(filepath.Ext(inputPath))
	if ext != ".pdf" {
		return nil, fmt.Errorf("expected .pdf file, got %q", ext)
	}
	doc, err := extractor.ExtractFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("PDF extraction failed: %w", err)
	}
	return doc, nil
}

func printSummary(inputPath string, res *models.ParseResult) {
	fmt.Printf("  %s: %d transaction(s)\n", inputPath, len(res.Transactions))
	if res.AccountInfo != nil && res.AccountInfo.AccountNumberLast4 != "" {
		fmt.Printf("  Account: ****%s\n", res.AccountInfo.AccountNumberLast4)
	}
	if res.Stats.SkippedRows > 0 {
		fmt.Printf("  Skipped rows: %d\n", res.Stats.SkippedRows)
	}
	if res.NeedsReview() {
		fmt.Printf("  Needs review: %d issue(s)\n", len(res.Issues))
	}
	if len(res.Transactions) == 0 {
		fmt.Println("  Warning: No transactions found. Check that --institution matches the statement.")
	}
}

func parseInstitution(s string) (models.Institution, error) {
	switch strings.ToLower(s) {
	case "schwab", "charles-schwab":
		return models.InstitutionSchwab, nil
	case "tdameritrade", "td", "tda":
		return models.InstitutionTDAmeritrade, nil
	case "fidelity":
		return models.InstitutionFidelity, nil
	case "tdbank", "td-bank":
		return models.InstitutionTDBank, nil
	case "amex", "american-express":
		return models.InstitutionAmex, nil
	case "":
		return "", fmt.Errorf("--institution is required. Supported: %s", supported())
	default:
		return "", fmt.Errorf("unknown institution %q. Supported: %s", s, supported())
	}
}

func supported() string {
	names := make([]string, 0, len(parser.Institutions()))
	for _, inst := range parser.Institutions() {
		names = append(names, string(inst))
	}
	return strings.Join(names, ", ")
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return "json"
	case "xlsx", "excel":
		return "xlsx"
	default:
		return "csv"
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
