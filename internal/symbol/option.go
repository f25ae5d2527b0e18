package symbol

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// SPY 05/17/2024 500.00 P
	numericContract = regexp.MustCompile(
		`\b([A-Z]{1,6}(?:\.[A-Z]{1,2})?)\s+(\d{1,2}/\d{1,2}/\d{4})\s+\$?(\d+(?:\.\d+)?)\s+((?i:call|put|c|p))\b`)
	// SPY MAY 17 2024 500 PUT
	monthContract = regexp.MustCompile(
		`\b([A-Z]{1,6}(?:\.[A-Z]{1,2})?)\s+((?i:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[A-Za-z]*)\.?\s+(\d{1,2}),?\s+(\d{4})\s+\$?(\d+(?:\.\d+)?)\s+((?i:call|put|c|p))\b`)

	narrativeStart  = regexp.MustCompile(`^(CALL|PUT)\b`)
	narrativeExpiry = regexp.MustCompile(`\bEXP\s*(\d{2}/\d{2}/\d{2}(?:\d{2})?)\b`)
	narrativeStrike = regexp.MustCompile(`\$(\d+(?:\.\d+)?)`)
)

// FindOption scans every line of text for an option contract.
func FindOption(text string) (Contract, bool) {
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if c, ok := matchNumeric(line); ok {
			return c, true
		}
		if c, ok := matchMonth(line); ok {
			return c, true
		}
	}
	return matchNarrative(lines)
}

// IsOptionNarrative reports whether text reads like an option trade even when no
// complete contract can be recovered from it.
func IsOptionNarrative(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if narrativeStart.MatchString(strings.TrimSpace(line)) && narrativeExpiry.MatchString(text) {
			return true
		}
	}
	return false
}

func matchNumeric(line string) (Contract, bool) {
	m := numericContract.FindStringSubmatch(line)
	if m == nil || isRightWord(m[1]) {
		return Contract{}, false
	}
	expiry, err := time.Parse("1/2/2006", m[2])
	if err != nil {
		return Contract{}, false
	}
	return build(m[1], expiry, m[4], m[3])
}

func matchMonth(line string) (Contract, bool) {
	m := monthContract.FindStringSubmatch(line)
	if m == nil || isRightWord(m[1]) {
		return Contract{}, false
	}
	month := strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:3])
	expiry, err := time.Parse("Jan 2 2006", month+" "+m[3]+" "+m[4])
	if err != nil {
		return Contract{}, false
	}
	return build(m[1], expiry, m[6], m[5])
}

// matchNarrative handles "CALL ... EXP 05/17/24 ... $500" lines. The ticker comes
// from the first line when it leads with one, otherwise from the word after CALL or PUT.
func matchNarrative(lines []string) (Contract, bool) {
	for i, line := range lines {
		line = strings.TrimSpace(line)
		start := narrativeStart.FindStringSubmatch(line)
		if start == nil {
			continue
		}
		joined := strings.Join(lines[i:], " ")
		exp := narrativeExpiry.FindStringSubmatch(joined)
		strike := narrativeStrike.FindStringSubmatch(joined)
		if exp == nil || strike == nil {
			return Contract{}, false
		}

		ticker, ok := LeadingTicker(strings.Join(lines, "\n"))
		if !ok {
			fields := strings.Fields(line)
			if len(fields) < 2 || !IsTicker(fields[1]) {
				return Contract{}, false
			}
			ticker = fields[1]
		}

		layout := "01/02/06"
		if len(exp[1]) == 10 {
			layout = "01/02/2006"
		}
		expiry, err := time.Parse(layout, exp[1])
		if err != nil {
			return Contract{}, false
		}
		return build(ticker, expiry, start[1], strike[1])
	}
	return Contract{}, false
}

func build(ticker string, expiry time.Time, right, strike string) (Contract, bool) {
	r, ok := ParseRight(right)
	if !ok {
		return Contract{}, false
	}
	s, err := decimal.NewFromString(strike)
	if err != nil || !s.IsPositive() || s.GreaterThanOrEqual(maxStrike) {
		return Contract{}, false
	}
	return Contract{Underlying: ticker, Expiry: expiry, Right: r, Strike: s}, true
}
