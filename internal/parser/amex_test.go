package parser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-parser/internal/models"
)

func amexDocument() *models.Document {
	return &models.Document{
		Name: "amex-2024-05.pdf",
		Pages: []models.PageText{
			textPage(0,
				"American Express Platinum Card",
				"Prepared for JOHN Q CARDMEMBER Account Ending 1-23456",
				"Payments -$500.00",
				"New Charges +$180.67",
				"Payments Details",
				"05/03/24* AUTOPAY PAYMENT - THANK YOU -$500.00",
				"Credits Details",
				"05/07/24 AMAZON.COM RETURN -$25.00",
				"New Charges Details",
				"JOHN Q CARDMEMBER Card Ending 1-23456",
				"05/02/24 AMAZON.COM SEATTLE WA $42.17⧫",
				"AMZN MKTP US",
				"Page 2 of 5",
			),
			textPage(1,
				"JOHN Q CARDMEMBER",
				"05/12/24 WHOLE FOODS MARKET AUSTIN TX $98.50",
				"Total New Charges $140.67",
				"Fees",
				"05/15/24 LATE FEE $40.00",
				"Total Fees for this Period $40.00",
				"Interest Charged",
				"05/31/24 Interest Charge on Purchases $12.34",
				"Interest Charge Calculation",
				"06/01/24 AFTER END $1.00",
			),
		},
	}
}

func TestAmex_EndToEnd(t *testing.T) {
	p, err := New(models.InstitutionAmex, Options{})
	require.NoError(t, err)
	assert.Equal(t, "American Express", p.Name())

	result, err := p.Parse(context.Background(), amexDocument())
	require.NoError(t, err)
	assert.Equal(t, "3456", result.AccountInfo.AccountNumberLast4)
	assert.Equal(t, 1, result.Stats.Continuations)
	assert.Empty(t, result.Issues)

	tests := []struct {
		date   time.Time
		typ    models.TransactionType
		desc   string
		amount string
	}{
		{day(time.May, 3), models.TypeTransfer, "AUTOPAY PAYMENT - THANK YOU", "500"},
		{day(time.May, 7), models.TypeOther, "AMAZON.COM RETURN", "25"},
		{day(time.May, 2), models.TypeOther, "AMAZON.COM SEATTLE WA\nAMZN MKTP US", "-42.17"},
		{day(time.May, 12), models.TypeOther, "WHOLE FOODS MARKET AUSTIN TX", "-98.50"},
		{day(time.May, 15), models.TypeFee, "LATE FEE", "-40"},
		{day(time.May, 31), models.TypeInterest, "Interest Charge on Purchases", "-12.34"},
	}
	txns := result.Transactions
	require.Len(t, txns, len(tests))
	for i, tt := range tests {
		tx := txns[i]
		assert.Equal(t, tt.date, tx.TransactionDate, "row %d", i)
		assert.Equal(t, tt.typ, tx.TransactionType, "row %d", i)
		assert.Equal(t, tt.desc, tx.Description, "row %d", i)
		assert.True(t, tx.TotalAmount.Equal(dec(tt.amount)), "row %d: %s", i, tx.TotalAmount)
		assert.Equal(t, models.SecurityNone, tx.SecurityType, "row %d", i)
	}
}

func TestAmex_PrintLayoutHeadings(t *testing.T) {
	doc := &models.Document{Name: "amex-print.pdf", Pages: []models.PageText{
		textPage(0,
			"Payments t Amount",
			"05/03/24* ONLINE PAYMENT -$200.00",
			"Detail - denotes Pay Over Time and/or Cash Advance activity",
			"05/04/24 COFFEE SHOP $4.50",
			"Fees - denotes Pay Over Time and/or Cash Advance activity",
			"05/05/24 FOREIGN TRANSACTION FEE $1.20",
			"Year-to-Date Fees and Interest",
		),
	}}
	p, err := New(models.InstitutionAmex, Options{})
	require.NoError(t, err)
	result, err := p.Parse(context.Background(), doc)
	require.NoError(t, err)

	txns := result.Transactions
	require.Len(t, txns, 3)
	assert.Equal(t, models.TypeTransfer, txns[0].TransactionType)
	assert.True(t, txns[0].TotalAmount.Equal(dec("200")))
	assert.Equal(t, models.TypeOther, txns[1].TransactionType)
	assert.True(t, txns[1].TotalAmount.Equal(dec("-4.50")))
	assert.Equal(t, models.TypeFee, txns[2].TransactionType)
	assert.True(t, txns[2].TotalAmount.Equal(dec("-1.20")))
}

func TestAmex_RequiresSectionHeading(t *testing.T) {
	doc := &models.Document{Name: "amex.pdf", Pages: []models.PageText{
		textPage(0, "05/02/24 AMAZON.COM SEATTLE WA $42.17"),
	}}
	p, err := New(models.InstitutionAmex, Options{})
	require.NoError(t, err)

	_, err = p.Parse(context.Background(), doc)
	assert.ErrorIs(t, err, models.ErrNoSectionStart)
}
