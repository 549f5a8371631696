package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestLastCategory(t *testing.T) {
	tests := []struct {
		name      string
		hierarchy []string
		want      string
	}{
		{name: "nil", hierarchy: nil, want: "Unknown"},
		{name: "single", hierarchy: []string{"Travel"}, want: "Travel"},
		{name: "nested", hierarchy: []string{"Food and Drink", "Restaurants", "Coffee Shop"}, want: "Coffee Shop"},
		{name: "blank last", hierarchy: []string{"Shops", ""}, want: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.LastCategory(tt.hierarchy))
		})
	}
}

func TestTransaction_Normalized(t *testing.T) {
	txn := domain.Transaction{TransactionID: "T1", Category: "  "}.Normalized()

	assert.Equal(t, "Unknown", txn.Category)
	assert.Equal(t, "Unknown", txn.MerchantName)
	assert.Equal(t, "Unknown", txn.MerchantType)

	kept := domain.Transaction{Category: "Groceries", MerchantName: "Aldi", MerchantType: "business"}.Normalized()
	assert.Equal(t, "Groceries", kept.Category)
	assert.Equal(t, "Aldi", kept.MerchantName)
	assert.Equal(t, "business", kept.MerchantType)
}

func TestParseProducts(t *testing.T) {
	assert.Equal(t, []string{"transactions", "investments"}, domain.ParseProducts("transactions, investments"))
	assert.Empty(t, domain.ParseProducts(""))

	item := domain.PlaidItem{Products: []string{"transactions", "auth"}}
	assert.Equal(t, "transactions,auth", item.ProductString())
}

func TestCooldownError(t *testing.T) {
	err := &domain.CooldownError{SinceLast: 5 * time.Hour, Remaining: 19 * time.Hour}

	assert.True(t, errors.Is(err, apperrors.ErrCooldown))
	assert.Equal(t, "Last refresh was 5 hours ago. Please wait 19 hours before refreshing again.", err.Error())
}

func TestFormatLastUpdate(t *testing.T) {
	assert.Equal(t, domain.NeverRefreshed, domain.FormatLastUpdate(nil))

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2024-01-02T03:04:05Z", domain.FormatLastUpdate(&ts))
}

func TestArchiveNames(t *testing.T) {
	at := time.Date(2024, 7, 9, 13, 4, 5, 0, time.UTC)
	assert.Equal(t, "TRANSACTION_REFRESH_FILE.20240709130405", domain.ItemRefreshArchiveName(at))
	assert.Equal(t, "TRANSACTIONS_RAW.acc_1.20240709130405", domain.AccountRefreshArchiveName("acc_1", at))
}
