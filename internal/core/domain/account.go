package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// LinkProvider identifies the external API an account was linked through.
type LinkProvider string

const (
	ProviderPlaid  LinkProvider = "plaid"
	ProviderTeller LinkProvider = "teller"
)

// IsValid reports whether p is a supported provider.
func (p LinkProvider) IsValid() bool {
	return p == ProviderPlaid || p == ProviderTeller
}

// Account represents a linked bank account within the core domain.
type Account struct {
	AccountID       string          `json:"accountID"` // Provider account id (unique)
	UserID          string          `json:"userID"`
	ItemID          string          `json:"itemID"` // Plaid item backing the account, empty for Teller
	Name            string          `json:"name"`
	Type            string          `json:"type"`    // Provider supplied, free text
	Subtype         string          `json:"subtype"` // Capitalized for display
	Status          string          `json:"status"`
	InstitutionName string          `json:"institutionName"`
	Balance         decimal.Decimal `json:"balance"` // Signed; liabilities are stored negative
	LastRefreshed   *time.Time      `json:"lastRefreshed"`
	LinkProvider    LinkProvider    `json:"linkProvider"`
	AccessToken     string          `json:"-"`
	Details         *AccountDetails `json:"details,omitempty"` // Loaded only for single account reads
	AuditFields
}

// IsLiability reports whether the account balance is stored negated.
func (a Account) IsLiability() bool {
	return IsLiabilityType(a.Type)
}

// WithPlaceholders returns a copy with blank display fields replaced by placeholders.
func (a Account) WithPlaceholders() Account {
	a.Name = valueOr(a.Name, UnnamedAccountName)
	a.Type = valueOr(a.Type, UnknownValue)
	a.Subtype = valueOr(a.Subtype, UnknownValue)
	a.Status = valueOr(a.Status, UnknownValue)
	a.InstitutionName = valueOr(a.InstitutionName, UnknownValue)
	return a
}

// AccountDetails holds provider specific metadata, 1:1 with Account.
type AccountDetails struct {
	AccountID    string            `json:"accountID"`
	EnrollmentID string            `json:"enrollmentID"`
	RefreshLinks map[string]string `json:"refreshLinks"`
}

// AccountHistory is a point-in-time balance snapshot; at most one per account per day.
type AccountHistory struct {
	AccountID    string          `json:"accountID"`
	SnapshotDate time.Time       `json:"snapshotDate"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// AccountRecord is the provider-neutral shape of an account as reported by a provider,
// before normalization.
type AccountRecord struct {
	ID              string
	Name            string
	Type            string
	Subtype         string
	Status          string
	InstitutionName string
	CurrentBalance  *decimal.Decimal
	AccessToken     string
	ItemID          string
	EnrollmentID    string
	RefreshLinks    map[string]string
}

// UpsertSummary reports what an account upsert did.
type UpsertSummary struct {
	Processed    int `json:"processed"`
	Inserted     int `json:"inserted"`
	Updated      int `json:"updated"`
	Skipped      int `json:"skipped"`
	HistoryAdded int `json:"historyAdded"`
}

var liabilityTypes = map[string]struct{}{
	"credit":      {},
	"credit card": {},
	"credit_card": {},
	"liability":   {},
}

// IsLiabilityType reports whether an account type denotes a liability.
// Matching is case-insensitive and ignores surrounding whitespace.
func IsLiabilityType(accountType string) bool {
	_, ok := liabilityTypes[strings.ToLower(strings.TrimSpace(accountType))]
	return ok
}

// SignedBalance applies the liability sign rule to a provider reported balance.
func SignedBalance(accountType string, raw decimal.Decimal) decimal.Decimal {
	if IsLiabilityType(accountType) {
		return raw.Neg()
	}
	return raw
}

// CapitalizeSubtype upper-cases the first letter and lower-cases the rest.
func CapitalizeSubtype(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// ToAccount normalizes the record into an Account owned by userID.
func (r AccountRecord) ToAccount(userID string, provider LinkProvider, now time.Time) Account {
	accType := valueOr(r.Type, UnknownValue)
	balance := decimal.Zero
	if r.CurrentBalance != nil {
		balance = *r.CurrentBalance
	}

	return Account{
		AccountID:       r.ID,
		UserID:          userID,
		ItemID:          r.ItemID,
		Name:            valueOr(r.Name, UnnamedAccountName),
		Type:            accType,
		Subtype:         CapitalizeSubtype(valueOr(r.Subtype, UnknownValue)),
		Status:          valueOr(r.Status, UnknownValue),
		InstitutionName: valueOr(r.InstitutionName, UnknownValue),
		Balance:         SignedBalance(accType, balance),
		LastRefreshed:   &now,
		LinkProvider:    provider,
		AccessToken:     r.AccessToken,
		AuditFields:     AuditFields{CreatedAt: now, UpdatedAt: now},
	}
}

// Details extracts the AccountDetails carried by the record.
func (r AccountRecord) Details() AccountDetails {
	links := r.RefreshLinks
	if links == nil {
		links = map[string]string{}
	}
	return AccountDetails{
		AccountID:    r.ID,
		EnrollmentID: r.EnrollmentID,
		RefreshLinks: links,
	}
}

// AccountGroup is a user defined collection of accounts shown together on the dashboard.
type AccountGroup struct {
	GroupID    string    `json:"groupID"`
	UserID     string    `json:"userID"`
	Name       string    `json:"name"`
	AccountIDs []string  `json:"accountIDs"`
	CreatedAt  time.Time `json:"createdAt"`
}
