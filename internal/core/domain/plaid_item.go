package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PlaidItem is a provider-side grouping of accounts behind one access credential.
type PlaidItem struct {
	ItemID               string     `json:"itemID"`
	UserID               string     `json:"userID"`
	AccessToken          string     `json:"-"`
	InstitutionName      string     `json:"institutionName"`
	Products             []string   `json:"products"`
	Status               string     `json:"status"`
	LastSuccessfulUpdate *time.Time `json:"lastSuccessfulUpdate"`
	AuditFields
}

// ProductString renders the product list the way it is stored.
func (i PlaidItem) ProductString() string {
	return strings.Join(i.Products, ",")
}

// ParseProducts splits a stored product list.
func ParseProducts(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ItemInfo is the item metadata a provider reports after linking.
type ItemInfo struct {
	ItemID          string
	InstitutionName string
	Products        []string
	Status          string
}

// LinkedItem is the result of exchanging a public token.
type LinkedItem struct {
	ItemID      string
	AccessToken string
}

// ItemSync is the provider payload of an item-level transaction refresh.
type ItemSync struct {
	Accounts     []AccountRecord
	Transactions []Transaction
	Raw          []byte
}

// Holding is a single investment position reported for an item.
type Holding struct {
	AccountID        string          `json:"accountID"`
	SecurityID       string          `json:"securityID"`
	SecurityName     string          `json:"securityName"`
	Ticker           string          `json:"ticker"`
	Quantity         decimal.Decimal `json:"quantity"`
	InstitutionValue decimal.Decimal `json:"institutionValue"`
}

// LinkResult reports a completed account link.
type LinkResult struct {
	ItemID          string        `json:"itemID,omitempty"`
	InstitutionName string        `json:"institutionName,omitempty"`
	Accounts        UpsertSummary `json:"accounts"`
}

// ExportSnapshot is the stored state written by the legacy export.
type ExportSnapshot struct {
	Items        []PlaidItem
	Accounts     []Account
	Transactions []Transaction
}
