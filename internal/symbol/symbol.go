// Package symbol derives tickers and option contract codes from statement descriptions.
//
// Every extractor returns an ok flag instead of an error: vendor narratives are
// free text and a miss is an expected outcome.
package symbol

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Right is the option right, call or put.
type Right string

const (
	Call Right = "C"
	Put  Right = "P"
)

// ParseRight accepts C, P, CALL or PUT in any case.
func ParseRight(s string) (Right, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C", "CALL":
		return Call, true
	case "P", "PUT":
		return Put, true
	}
	return "", false
}

// Contract identifies a listed option.
type Contract struct {
	Underlying string
	Expiry     time.Time
	Right      Right
	Strike     decimal.Decimal
}

// APISymbol returns the compact contract code, see FormatAPISymbol.
func (c Contract) APISymbol() string {
	return FormatAPISymbol(c.Underlying, c.Expiry, c.Right, c.Strike)
}

// OCC returns the padded 21 character contract code, see FormatOCC.
func (c Contract) OCC() string {
	return FormatOCC(c.Underlying, c.Expiry, c.Right, c.Strike)
}

var (
	strikeScale = decimal.NewFromInt(1000)
	// maxStrike is the first strike whose scaled form no longer fits 8 digits.
	maxStrike = decimal.NewFromInt(100000)
)

func strikeDigits(strike decimal.Decimal) string {
	return fmt.Sprintf("%08d", strike.Mul(strikeScale).Round(0).IntPart())
}

// FormatAPISymbol builds ticker + YYMMDD + right + strike×1000 zero padded to 8 digits,
// e.g. SPY240517P00500000.
func FormatAPISymbol(ticker string, expiry time.Time, right Right, strike decimal.Decimal) string {
	return strings.ToUpper(strings.TrimSpace(ticker)) + expiry.Format("060102") + string(right) + strikeDigits(strike)
}

// FormatOCC builds the OCC form with the ticker padded to 6 characters.
func FormatOCC(ticker string, expiry time.Time, right Right, strike decimal.Decimal) string {
	return fmt.Sprintf("%-6s%s%s%s", strings.ToUpper(strings.TrimSpace(ticker)), expiry.Format("060102"), right, strikeDigits(strike))
}

// ErrInvalidContract is returned when a contract code cannot be decoded.
var ErrInvalidContract = errors.New("invalid option contract code")

var contractCode = regexp.MustCompile(`^([A-Z][A-Z.]{0,5})\s*(\d{6})([CP])(\d{8})$`)

// ParseAPISymbol decodes either the compact or the OCC padded contract code.
func ParseAPISymbol(code string) (Contract, error) {
	m := contractCode.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return Contract{}, fmt.Errorf("%w: %q", ErrInvalidContract, code)
	}
	expiry, err := time.Parse("060102", m[2])
	if err != nil {
		return Contract{}, fmt.Errorf("%w: expiry %q: %v", ErrInvalidContract, m[2], err)
	}
	strike, err := decimal.NewFromString(m[4])
	if err != nil {
		return Contract{}, fmt.Errorf("%w: strike %q: %v", ErrInvalidContract, m[4], err)
	}
	return Contract{
		Underlying: m[1],
		Expiry:     expiry,
		Right:      Right(m[3]),
		Strike:     strike.Shift(-3),
	}, nil
}

var tickerToken = regexp.MustCompile(`^[A-Z]{1,6}(\.[A-Z]{1,2})?$`)

// IsTicker reports whether a token has the shape of an exchange ticker.
func IsTicker(token string) bool {
	return tickerToken.MatchString(token)
}

// Ticker returns the final all-uppercase token on the first line of a description.
// Issuer words such as INC or CORP are not filtered out.
func Ticker(description string) (string, bool) {
	tokens := strings.Fields(firstLine(description))
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := strings.Trim(tokens[i], ",;:()*")
		if IsTicker(tok) {
			return tok, true
		}
	}
	return "", false
}

// LeadingTicker returns the first token of the first line when it looks like a ticker.
func LeadingTicker(text string) (string, bool) {
	tokens := strings.Fields(firstLine(text))
	if len(tokens) == 0 {
		return "", false
	}
	tok := strings.Trim(tokens[0], ",;:()*")
	if !IsTicker(tok) || isRightWord(tok) {
		return "", false
	}
	return tok, true
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

func isRightWord(tok string) bool {
	return tok == "CALL" || tok == "PUT"
}
