package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the canonical category every institution vocabulary maps onto.
type TransactionType string

const (
	TypeBuy      TransactionType = "BUY"
	TypeSell     TransactionType = "SELL"
	TypeDividend TransactionType = "DIVIDEND"
	TypeInterest TransactionType = "INTEREST"
	TypeFee      TransactionType = "FEE"
	TypeTransfer TransactionType = "TRANSFER"
	TypeOther    TransactionType = "OTHER"
)

// IsTrade reports whether the type can carry a security.
func (t TransactionType) IsTrade() bool {
	return t == TypeBuy || t == TypeSell
}

// SecurityType classifies the instrument of a trade. The zero value means absent.
type SecurityType string

const (
	SecurityNone   SecurityType = ""
	SecurityStock  SecurityType = "STOCK"
	SecurityOption SecurityType = "OPTION"
)

// Institution identifies which statement facade to run.
type Institution string

const (
	InstitutionSchwab       Institution = "schwab"
	InstitutionTDAmeritrade Institution = "tdameritrade"
	InstitutionFidelity     Institution = "fidelity"
	InstitutionTDBank       Institution = "tdbank"
	InstitutionAmex         Institution = "amex"
)

// NormalizedRecord is the final output unit of a parse.
type NormalizedRecord struct {
	TransactionDate        time.Time           `json:"transactionDate"`
	TransactionType        TransactionType     `json:"transactionType"`
	SecurityType           SecurityType        `json:"securityType,omitempty"`
	Symbol                 string              `json:"symbol,omitempty"`
	APISymbol              string              `json:"apiSymbol,omitempty"`
	Description            string              `json:"description"`
	Quantity               decimal.NullDecimal `json:"quantity"`
	PricePerUnit           decimal.NullDecimal `json:"pricePerUnit"`
	TotalAmount            decimal.Decimal     `json:"totalAmount"`
	IsDuplicateWithinBatch bool                `json:"isDuplicateWithinBatch"`
}

// recordNamespace scopes ContentKey hashes.
var recordNamespace = uuid.MustParse("5b0c2f7e-3c1e-4d7a-9a61-0f2b8f3d6c11")

// ContentKey returns a deterministic hash over user, institution, date, type, amount and
// description. Ingestion uses it to suppress records already stored; the parser never does.
func (r NormalizedRecord) ContentKey(userID string, institution Institution) uuid.UUID {
	parts := []string{
		userID,
		string(institution),
		r.TransactionDate.Format("2006-01-02"),
		string(r.TransactionType),
		r.TotalAmount.StringFixed(2),
		r.Description,
	}
	return uuid.NewSHA1(recordNamespace, []byte(strings.Join(parts, "|")))
}

// AccountInfo holds account metadata parsed once per document.
type AccountInfo struct {
	AccountNumberLast4 string `json:"accountNumberLast4,omitempty"`
}
