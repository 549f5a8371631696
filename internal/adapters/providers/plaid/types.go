package plaid

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plaid API request/response types. Only the fields this service reads are mapped.

// AccountsGetResponse is the response from /accounts/get.
type AccountsGetResponse struct {
	Accounts  []Account `json:"accounts"`
	Item      Item      `json:"item"`
	RequestID string    `json:"request_id"`
}

// Account represents an account from Plaid.
type Account struct {
	AccountID    string   `json:"account_id"`
	Balances     Balances `json:"balances"`
	Mask         string   `json:"mask"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Type         string   `json:"type"`    // depository, credit, loan, investment, other
	Subtype      string   `json:"subtype"` // checking, savings, credit card, etc.
}

// Balances represents account balances. Any of them can be null.
type Balances struct {
	Available       decimal.NullDecimal `json:"available"`
	Current         decimal.NullDecimal `json:"current"`
	Limit           decimal.NullDecimal `json:"limit"`
	IsoCurrencyCode string              `json:"iso_currency_code"`
}

// Item represents a Plaid Item (a connection to a financial institution).
type Item struct {
	ItemID            string     `json:"item_id"`
	InstitutionID     string     `json:"institution_id"`
	InstitutionName   string     `json:"institution_name"`
	Products          []string   `json:"products"`
	BilledProducts    []string   `json:"billed_products"`
	AvailableProducts []string   `json:"available_products"`
	Error             *ItemError `json:"error"`
}

// ItemError is set on an item that needs attention.
type ItemError struct {
	ErrorType string `json:"error_type"`
	ErrorCode string `json:"error_code"`
}

// ItemGetResponse is the response from /item/get.
type ItemGetResponse struct {
	Item      Item   `json:"item"`
	RequestID string `json:"request_id"`
}

// TransactionsGetOptions contains optional parameters for /transactions/get.
type TransactionsGetOptions struct {
	AccountIDs []string `json:"account_ids,omitempty"`
	Count      int      `json:"count,omitempty"`
	Offset     int      `json:"offset,omitempty"`
}

// TransactionsGetResponse is the response from /transactions/get.
type TransactionsGetResponse struct {
	Accounts          []Account     `json:"accounts"`
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
	Item              Item          `json:"item"`
	RequestID         string        `json:"request_id"`
}

// Transaction represents a transaction from Plaid.
type Transaction struct {
	TransactionID  string          `json:"transaction_id"`
	AccountID      string          `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	Date           string          `json:"date"` // YYYY-MM-DD
	AuthorizedDate string          `json:"authorized_date"`
	Name           string          `json:"name"`
	MerchantName   string          `json:"merchant_name"`
	Category       []string        `json:"category"`
	Counterparties []Counterparty  `json:"counterparties"`
}

// Counterparty is a party involved in a transaction.
type Counterparty struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// LinkTokenCreateResponse is the response from /link/token/create.
type LinkTokenCreateResponse struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
	RequestID  string `json:"request_id"`
}

// LinkTokenUser identifies the user for Link.
type LinkTokenUser struct {
	ClientUserID string `json:"client_user_id"`
}

// ItemPublicTokenExchangeResponse is the response from /item/public_token/exchange.
type ItemPublicTokenExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

// HoldingsGetResponse is the response from /investments/holdings/get.
type HoldingsGetResponse struct {
	Accounts   []Account  `json:"accounts"`
	Holdings   []Holding  `json:"holdings"`
	Securities []Security `json:"securities"`
	RequestID  string     `json:"request_id"`
}

// Holding is a position in one security held in one account.
type Holding struct {
	AccountID        string          `json:"account_id"`
	SecurityID       string          `json:"security_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	InstitutionValue decimal.Decimal `json:"institution_value"`
}

// Security describes a held security.
type Security struct {
	SecurityID   string `json:"security_id"`
	Name         string `json:"name"`
	TickerSymbol string `json:"ticker_symbol"`
}

// ErrorResponse is the error response format from Plaid.
type ErrorResponse struct {
	ErrorType      string `json:"error_type"`
	ErrorCode      string `json:"error_code"`
	ErrorMessage   string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
	RequestID      string `json:"request_id"`
}

// Plaid products.
const (
	ProductTransactions = "transactions"
	ProductInvestments  = "investments"
)

// FormatDate formats a time as a Plaid date string (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
