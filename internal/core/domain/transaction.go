package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction is a provider reported movement on an account, keyed by the provider's id.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Provider transaction id (unique)
	AccountID     string          `json:"accountID"`
	Amount        decimal.Decimal `json:"amount"` // Signed as reported by the provider
	Date          string          `json:"date"`   // Provider format, not validated
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	MerchantName  string          `json:"merchantName"`
	MerchantType  string          `json:"merchantType"`
	AuditFields
}

// Normalized fills blank category and merchant fields with placeholders.
func (t Transaction) Normalized() Transaction {
	t.Category = valueOr(strings.TrimSpace(t.Category), UnknownValue)
	t.MerchantName = valueOr(t.MerchantName, UnknownValue)
	t.MerchantType = valueOr(t.MerchantType, UnknownValue)
	return t
}

// TransactionWithAccount is a transaction row flattened with a few account fields.
type TransactionWithAccount struct {
	Transaction
	AccountName     string `json:"accountName"`
	InstitutionName string `json:"institutionName"`
	Subtype         string `json:"subtype"`
}

// TransactionBatch is what a provider returned for one transaction window.
type TransactionBatch struct {
	Transactions []Transaction
	// Raw is the undecoded provider payload, kept for archiving.
	Raw []byte
}

// LastCategory flattens a category hierarchy to its most specific element.
func LastCategory(hierarchy []string) string {
	if len(hierarchy) == 0 {
		return UnknownValue
	}
	return valueOr(hierarchy[len(hierarchy)-1], UnknownValue)
}

// TransactionUpsertResult reports what a transaction upsert did.
type TransactionUpsertResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// Upserted is the number of rows written.
func (r TransactionUpsertResult) Upserted() int {
	return r.Inserted + r.Updated
}

// TransactionPage is one page of the transaction listing.
type TransactionPage struct {
	Transactions []TransactionWithAccount `json:"transactions"`
	Page         int                      `json:"page"`
	PageSize     int                      `json:"pageSize"`
	Total        int                      `json:"total"`
}
