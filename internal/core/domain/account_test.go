package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func TestIsLiabilityType(t *testing.T) {
	tests := []struct {
		accountType string
		want        bool
	}{
		{"credit", true},
		{"Credit Card", true},
		{"  credit_card ", true},
		{"LIABILITY", true},
		{"depository", false},
		{"loan", false},
		{"", false},
		{"creditcard", false},
	}

	for _, tt := range tests {
		t.Run(tt.accountType, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsLiabilityType(tt.accountType))
		})
	}
}

func TestSignedBalance(t *testing.T) {
	fifty := decimal.NewFromInt(50)
	assert.True(t, domain.SignedBalance("credit card", fifty).Equal(decimal.NewFromInt(-50)))
	assert.True(t, domain.SignedBalance("depository", fifty).Equal(fifty))
	// a liability reported negative ends up positive
	assert.True(t, domain.SignedBalance("credit", fifty.Neg()).Equal(fifty))
}

func TestCapitalizeSubtype(t *testing.T) {
	assert.Equal(t, "Checking", domain.CapitalizeSubtype("checking"))
	assert.Equal(t, "Credit card", domain.CapitalizeSubtype("CREDIT CARD"))
	assert.Equal(t, "", domain.CapitalizeSubtype(""))
	assert.Equal(t, "Épargne", domain.CapitalizeSubtype("épargne"))
}

func TestAccountRecord_ToAccount_CreditCardScenario(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	rec := domain.AccountRecord{
		ID:             "A1",
		Type:           "credit card",
		CurrentBalance: decimalPtr(decimal.NewFromInt(50)),
	}

	acc := rec.ToAccount("user-1", domain.ProviderTeller, now)

	assert.Equal(t, "A1", acc.AccountID)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(-50)))
	assert.Equal(t, domain.UnnamedAccountName, acc.Name)
	assert.Equal(t, domain.UnknownValue, acc.Subtype)
	assert.Equal(t, domain.UnknownValue, acc.Status)
	assert.Equal(t, domain.UnknownValue, acc.InstitutionName)
	assert.Equal(t, domain.ProviderTeller, acc.LinkProvider)
	if assert.NotNil(t, acc.LastRefreshed) {
		assert.Equal(t, now, *acc.LastRefreshed)
	}
}

func TestAccountRecord_ToAccount_Defaults(t *testing.T) {
	acc := domain.AccountRecord{ID: "A2"}.ToAccount("u", domain.ProviderPlaid, time.Now())

	assert.True(t, acc.Balance.IsZero())
	assert.Equal(t, domain.UnknownValue, acc.Type)
}

func TestAccountRecord_Details(t *testing.T) {
	d := domain.AccountRecord{ID: "A3", EnrollmentID: "enr_1"}.Details()

	assert.Equal(t, "A3", d.AccountID)
	assert.Equal(t, "enr_1", d.EnrollmentID)
	assert.NotNil(t, d.RefreshLinks)
}

func TestAccount_WithPlaceholders(t *testing.T) {
	acc := domain.Account{AccountID: "A4", Type: "depository"}.WithPlaceholders()

	assert.Equal(t, domain.UnnamedAccountName, acc.Name)
	assert.Equal(t, "depository", acc.Type)
	assert.Equal(t, domain.UnknownValue, acc.InstitutionName)
}

func TestLinkProvider_IsValid(t *testing.T) {
	assert.True(t, domain.ProviderPlaid.IsValid())
	assert.True(t, domain.ProviderTeller.IsValid())
	assert.False(t, domain.LinkProvider("mx").IsValid())
}
