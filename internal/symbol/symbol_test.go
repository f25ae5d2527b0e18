package symbol

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFormatAPISymbol(t *testing.T) {
	got := FormatAPISymbol("SPY", date(2024, 5, 17), Put, decimal.RequireFromString("500.00"))
	assert.Equal(t, "SPY240517P00500000", got)

	got = FormatAPISymbol("aapl", date(2025, 1, 3), Call, decimal.RequireFromString("187.5"))
	assert.Equal(t, "AAPL250103C00187500", got)
}

func TestFormatOCC(t *testing.T) {
	got := FormatOCC("SPY", date(2024, 5, 17), Put, decimal.RequireFromString("500"))
	assert.Equal(t, "SPY   240517P00500000", got)
	assert.Len(t, got, 21)
}

func TestParseAPISymbol_RoundTrip(t *testing.T) {
	strike := decimal.RequireFromString("500.00")
	for _, code := range []string{
		FormatAPISymbol("SPY", date(2024, 5, 17), Put, strike),
		FormatOCC("SPY", date(2024, 5, 17), Put, strike),
	} {
		t.Run(code, func(t *testing.T) {
			c, err := ParseAPISymbol(code)
			require.NoError(t, err)
			assert.Equal(t, "SPY", c.Underlying)
			assert.Equal(t, date(2024, 5, 17), c.Expiry)
			assert.Equal(t, Put, c.Right)
			assert.True(t, c.Strike.Equal(strike), "strike %s", c.Strike)
			assert.Equal(t, "500.00", c.Strike.StringFixed(2))
			assert.Equal(t, "SPY240517P00500000", c.APISymbol())
		})
	}
}

func TestParseAPISymbol_FractionalStrike(t *testing.T) {
	c, err := ParseAPISymbol("F250620C00012500")
	require.NoError(t, err)
	assert.Equal(t, "12.5", c.Strike.String())
}

func TestParseAPISymbol_Invalid(t *testing.T) {
	for _, code := range []string{"", "SPY", "SPY240517X00500000", "SPY2405P00500000", "spy240517P00500000"} {
		_, err := ParseAPISymbol(code)
		assert.ErrorIs(t, err, ErrInvalidContract, code)
	}
}

func TestTicker(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
		ok          bool
	}{
		{"trailing ticker", "APPLE INC AAPL", "AAPL", true},
		{"mixed case issuer", "Microsoft Corp MSFT\nUNSOLICITED", "MSFT", true},
		{"class share", "BERKSHIRE HATHAWAY BRK.B", "BRK.B", true},
		{"only first line counts", "Wire transfer\nAAPL", "", false},
		{"issuer word misfires", "APPLE INC", "INC", true},
		{"no uppercase token", "interest earned 12.00", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Ticker(tt.description)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLeadingTicker(t *testing.T) {
	got, ok := LeadingTicker("SPY 05/17/2024 500.00 P\nPUT SPDR S&P500")
	assert.True(t, ok)
	assert.Equal(t, "SPY", got)

	_, ok = LeadingTicker("CALL SPDR S&P500 ETF")
	assert.False(t, ok)
}

func TestFindOption(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"numeric form", "SPY 05/17/2024 500.00 P", "SPY240517P00500000"},
		{"numeric form on later line", "PUT OPTION\nQQQ 06/21/2024 440.00 C", "QQQ240621C00440000"},
		{"month form", "AAPL JAN 17 2025 190 CALL", "AAPL250117C00190000"},
		{"month form mixed case", "TSLA Mar 21, 2025 250.5 Put", "TSLA250321P00250500"},
		{"narrative with symbol column", "SPY\nPUT SPDR S&P500 ETF EXP 05/17/24 $500", "SPY240517P00500000"},
		{"narrative ticker after right", "CALL NVDA $950 EXP 04/19/24", "NVDA240419C00950000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := FindOption(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, c.APISymbol())
		})
	}
}

func TestFindOption_Misses(t *testing.T) {
	for _, text := range []string{
		"APPLE INC AAPL",
		"PUT SPDR S&P500 ETF",
		"CALL SPDR EXP 05/17/24",
		"SPY 05/17/2024 0 P",
		"",
	} {
		_, ok := FindOption(text)
		assert.False(t, ok, text)
	}
}

func TestIsOptionNarrative(t *testing.T) {
	assert.True(t, IsOptionNarrative("CALL SPDR EXP 05/17/24"))
	assert.True(t, IsOptionNarrative("SPY\nPUT SPDR S&P500 EXP 05/17/24"))
	assert.False(t, IsOptionNarrative("PUT SPDR S&P500"))
	assert.False(t, IsOptionNarrative("DIVIDEND CALLABLE EXP"))
	assert.False(t, IsOptionNarrative("CALL AMERICAN EXPRESS CO"))
	assert.False(t, IsOptionNarrative("PUT EXPEDIA GROUP INC\nEXPE"))
	assert.False(t, IsOptionNarrative("CALL SPDR EXP SOON"))
}

func TestParseRight(t *testing.T) {
	r, ok := ParseRight("call")
	assert.True(t, ok)
	assert.Equal(t, Call, r)
	r, ok = ParseRight("P")
	assert.True(t, ok)
	assert.Equal(t, Put, r)
	_, ok = ParseRight("X")
	assert.False(t, ok)
}

func TestFindOption_StrikeTooWide(t *testing.T) {
	_, ok := FindOption("BRK.A 05/17/2024 100000.00 C")
	assert.False(t, ok)
	_, ok = FindOption("CALL BRK EXP 05/17/24 $150000")
	assert.False(t, ok)

	c, ok := FindOption("BRK.A 05/17/2024 99999.99 C")
	require.True(t, ok)
	assert.Equal(t, "BRK.A240517C99999990", c.APISymbol())
}
