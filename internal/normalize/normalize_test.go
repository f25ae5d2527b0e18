package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-parser/internal/models"
)

func testVocabulary() *Vocabulary {
	return NewVocabulary([]Rule{
		{Keyword: "dividend", DescriptionKeyword: "reinvest", Type: models.TypeBuy},
		{Keyword: "purchase", Type: models.TypeBuy},
		{Keyword: "buy", Type: models.TypeBuy},
		{Keyword: "sale", Type: models.TypeSell},
		{Keyword: "sell", Type: models.TypeSell},
		{Keyword: "dividend", Type: models.TypeDividend},
		{Keyword: "interest", Type: models.TypeInterest},
		{Keyword: "fee", Type: models.TypeFee},
		{Keyword: "transfer", Type: models.TypeTransfer},
	}, nil)
}

func TestVocabulary_TransactionType(t *testing.T) {
	v := testVocabulary()
	tests := []struct {
		category    string
		description string
		want        models.TransactionType
	}{
		{"Purchase", "APPLE INC AAPL", models.TypeBuy},
		{"SALE", "MSFT", models.TypeSell},
		{"Qualified Dividend", "KO", models.TypeDividend},
		{"Dividend", "REINVEST SHARES", models.TypeBuy},
		{"Credit Interest", "", models.TypeInterest},
		{"Service Fee", "", models.TypeFee},
		{"Journal", "", models.TypeOther},
		{"Purchse", "", models.TypeOther},
		{"", "AAPL", models.TypeOther},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, v.TransactionType(tt.category, tt.description))
		})
	}
}

func TestVocabulary_FirstRuleWins(t *testing.T) {
	v := NewVocabulary([]Rule{
		{Keyword: "sale", Type: models.TypeSell},
		{Keyword: "wholesale", Type: models.TypeOther},
	}, nil)
	assert.Equal(t, models.TypeSell, v.TransactionType("Wholesale", ""))
}

func TestVocabulary_Closest(t *testing.T) {
	v := testVocabulary()
	kw, dist, ok := v.closest("purchse")
	require.True(t, ok)
	assert.Equal(t, "purchase", kw)
	assert.Equal(t, 1, dist)

	_, _, ok = v.closest("journal entry adjustment")
	assert.False(t, ok)
}

func TestVocabulary_Empty(t *testing.T) {
	v := NewVocabulary(nil, nil)
	assert.Equal(t, models.TypeOther, v.TransactionType("Purchase", ""))
}

func TestClassifySecurity(t *testing.T) {
	optionText := "SPY 05/17/2024 500.00 P"
	for _, typ := range []models.TransactionType{
		models.TypeDividend, models.TypeInterest, models.TypeFee, models.TypeTransfer, models.TypeOther,
	} {
		for _, desc := range []string{optionText, "APPLE INC AAPL", "", "CALL SPDR EXP 05/17/24 $500"} {
			assert.Equal(t, models.SecurityNone, ClassifySecurity(typ, desc), "%s %q", typ, desc)
		}
	}

	assert.Equal(t, models.SecurityOption, ClassifySecurity(models.TypeBuy, optionText))
	assert.Equal(t, models.SecurityOption, ClassifySecurity(models.TypeSell, "PUT SPDR S&P500 EXP 05/17/24"))
	assert.Equal(t, models.SecurityStock, ClassifySecurity(models.TypeBuy, "APPLE INC AAPL"))
	assert.Equal(t, models.SecurityNone, ClassifySecurity(models.TypeSell, "cash in lieu 12.00"))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1,234.56", "1234.56"},
		{"$1,234.56", "1234.56"},
		{"(1,500.00)", "-1500"},
		{"$(5.00)", "-5"},
		{"-$5.00", "-5"},
		{"12.00-", "-12"},
		{"+3.10", "3.1"},
		{" 0.00 ", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParseAmount_Errors(t *testing.T) {
	_, err := ParseAmount("  ")
	assert.ErrorIs(t, err, ErrEmptyValue)

	for _, in := range []string{"abc", "--5", "(5", "1.2.3", "-"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestParseOptionalDecimal(t *testing.T) {
	d, err := ParseOptionalDecimal("")
	require.NoError(t, err)
	assert.False(t, d.Valid)

	d, err = ParseOptionalDecimal("10.000")
	require.NoError(t, err)
	assert.True(t, d.Valid)
	assert.Equal(t, "10", d.Decimal.String())

	_, err = ParseOptionalDecimal("n/a")
	assert.Error(t, err)
}

func TestParseMonthDay(t *testing.T) {
	got, err := ParseMonthDay("03/01", 2024)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseMonthDay("12/31/23", 2024)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseMonthDay("02/29", 2023)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseMonthDay("03/01", 0)
	assert.ErrorIs(t, err, ErrNoYear)

	_, err = ParseMonthDay("13/45", 2024)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"05/17/2024", "5/17/2024", "05/17/24", "2024-05-17", "May 17, 2024"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), got, in)
	}
	_, err := ParseDate("05/17")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
