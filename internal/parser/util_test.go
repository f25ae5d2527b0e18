package parser

import (
	"regexp"
	"testing"

	"github.com/insightdelivered/statement-parser/internal/models"
)

func TestFindStatementYear(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected int
	}{
		{"compact period", []string{"Schwab One", "May1-31,2024"}, 2024},
		{"first year wins", []string{"Period 12/01/2023 - 01/31/2024"}, 2023},
		{"account digits ignored", []string{"Account 1234-5678", "June 2019"}, 2019},
		{"no year", []string{"Transaction Details"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findStatementYear(textLines(tt.lines...))
			if got != tt.expected {
				t.Errorf("got %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestAccountRule(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		lines    []string
		expected string
	}{
		{"schwab pair", `\b(\d{4})-(\d{4})\b`, []string{"Account Number 4938-9145"}, "9145"},
		{"td suffix", `Statement for Account #\s*([\d-]+)`, []string{"Statement for Account # 865-012345"}, "2345"},
		{"too short", `Account\s+(\d+)`, []string{"Account 12"}, ""},
		{"not found", `\b(\d{4})-(\d{4})\b`, []string{"no account here"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := accountRule{pattern: regexp.MustCompile(tt.pattern)}
			got := rule.find(textLines(tt.lines...))
			if got == nil {
				t.Fatal("expected account info, got nil")
			}
			if got.AccountNumberLast4 != tt.expected {
				t.Errorf("got %q, want %q", got.AccountNumberLast4, tt.expected)
			}
		})
	}
}

func TestSecurityFrom(t *testing.T) {
	tests := []struct {
		name string
		typ  models.TransactionType
		text string
		want Security
	}{
		{"stock", models.TypeBuy, "APPLE INC AAPL", Security{models.SecurityStock, "AAPL", "AAPL"}},
		{"option", models.TypeSell, "QQQ 06/21/2024 440.00 C", Security{models.SecurityOption, "QQQ", "QQQ240621C00440000"}},
		{"option without contract", models.TypeBuy, "CALL SPDR EXP 05/17/24", Security{Type: models.SecurityOption}},
		{"dividend", models.TypeDividend, "APPLE INC AAPL", Security{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := securityFrom(tt.typ, tt.text); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
