package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyCashFlow aggregates one calendar month.
type MonthlyCashFlow struct {
	Month    string          `json:"month"` // e.g. "January 2024"
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// CashFlowReport is the income versus expenses view, months in chronological order.
type CashFlowReport struct {
	Months            []MonthlyCashFlow `json:"months"`
	TotalIncome       decimal.Decimal   `json:"totalIncome"`
	TotalExpenses     decimal.Decimal   `json:"totalExpenses"`
	TotalTransactions int               `json:"totalTransactions"`
}

// InstitutionAccount is an account row inside an institution summary.
type InstitutionAccount struct {
	AccountID string          `json:"accountID"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Subtype   string          `json:"subtype"`
	Balance   decimal.Decimal `json:"balance"`
}

// InstitutionSummary groups linked items and their accounts by institution.
type InstitutionSummary struct {
	InstitutionName      string               `json:"institutionName"`
	ItemID               string               `json:"itemID"`
	Products             []string             `json:"products"`
	Status               string               `json:"status"`
	LastSuccessfulUpdate string               `json:"lastSuccessfulUpdate"`
	Accounts             []InstitutionAccount `json:"accounts"`
}

// FormatLastUpdate renders an optional refresh time for display.
func FormatLastUpdate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NeverRefreshed
	}
	return t.Format(time.RFC3339)
}
