package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the transactions table row.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	AccountID     string          `db:"account_id"`
	Amount        decimal.Decimal `db:"amount"`
	Date          string          `db:"date"`
	Description   string          `db:"description"`
	Category      string          `db:"category"`
	MerchantName  string          `db:"merchant_name"`
	MerchantType  string          `db:"merchant_type"`
	AuditFields
}

// PlaidItem is the plaid_items table row.
type PlaidItem struct {
	ItemID               string     `db:"item_id"`
	UserID               string     `db:"user_id"`
	AccessToken          string     `db:"access_token"` // Sealed
	InstitutionName      string     `db:"institution_name"`
	Product              string     `db:"product"` // Comma separated
	Status               string     `db:"status"`
	LastSuccessfulUpdate *time.Time `db:"last_successful_update"`
	AuditFields
}
