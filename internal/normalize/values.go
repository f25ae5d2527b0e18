package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyValue    = errors.New("empty value")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrNoYear        = errors.New("date has no year and no statement year is known")
)

var amountCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// ParseAmount parses a money or quantity cell. Parentheses, a leading minus or a
// trailing minus make the value negative.
func ParseAmount(text string) (decimal.Decimal, error) {
	s := amountCleaner.Replace(strings.TrimSpace(text))
	if s == "" {
		return decimal.Zero, ErrEmptyValue
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	switch {
	case strings.HasSuffix(s, "-"):
		negative = true
		s = strings.TrimSuffix(s, "-")
	case strings.HasPrefix(s, "-"):
		negative = true
		s = strings.TrimPrefix(s, "-")
	case strings.HasPrefix(s, "+"):
		s = strings.TrimPrefix(s, "+")
	}
	if s == "" || strings.ContainsAny(s, "+-()") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// ParseOptionalDecimal parses a cell that may be blank. Blank yields an invalid NullDecimal.
func ParseOptionalDecimal(text string) (decimal.NullDecimal, error) {
	d, err := ParseAmount(text)
	if errors.Is(err, ErrEmptyValue) {
		return decimal.NullDecimal{}, nil
	}
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

var fullDateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2006-01-02",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
}

// ParseDate parses a date that carries its own year.
func ParseDate(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	for _, layout := range fullDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
}

// ParseMonthDay parses an MM/DD date using the statement year. Dates that carry
// their own year are accepted as well.
func ParseMonthDay(text string, year int) (time.Time, error) {
	s := strings.TrimSpace(text)
	if t, err := ParseDate(s); err == nil {
		return t, nil
	}
	md, err := time.Parse("1/2", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}
	if year <= 0 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrNoYear, text)
	}
	t := time.Date(year, md.Month(), md.Day(), 0, 0, 0, 0, time.UTC)
	if t.Day() != md.Day() {
		return time.Time{}, fmt.Errorf("%w: %q does not exist in %d", ErrInvalidDate, text, year)
	}
	return t, nil
}
