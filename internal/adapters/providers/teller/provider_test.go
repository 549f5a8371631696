package teller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/adapters/httpretry"
	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBalancePayload(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		accountType string
		want        string
		wantErr     bool
	}{
		{name: "flat depository uses available", payload: `{"available":"120.50","ledger":"130.00"}`, accountType: "depository", want: "120.5"},
		{name: "flat credit negates ledger", payload: `{"available":"900","ledger":"50"}`, accountType: "credit", want: "-50"},
		{name: "flat liability negates ledger", payload: `{"available":"1","ledger":"75.25"}`, accountType: "Liability", want: "-75.25"},
		{name: "flat missing available", payload: `{"available":null,"ledger":"1"}`, accountType: "depository", wantErr: true},
		{name: "nested current", payload: `{"balance":{"current":42}}`, want: "42"},
		{name: "nested missing current", payload: `{"balance":{}}`, wantErr: true},
		{name: "list first entry", payload: `{"balances":[{"current":"10"},{"current":"99"}]}`, want: "10"},
		{name: "empty list", payload: `{"balances":[]}`, wantErr: true},
		{name: "unknown shape", payload: `{"foo":1}`, wantErr: true},
		{name: "not an object", payload: `[1,2]`, wantErr: true},
		{name: "unparsable value", payload: `{"available":"abc"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ParseBalancePayload([]byte(tt.payload))
			var got decimal.Decimal
			if err == nil {
				got, err = payload.Balance(tt.accountType)
			}
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseTransactions_Shapes(t *testing.T) {
	listPayload := `[
		{"id":"t1","amount":"-12.34","date":"2024-01-05","description":"Coffee",
		 "details":{"category":["food","coffee"],"counterparty":[{"name":"Blue Bottle","type":"organization"}]}},
		{"id":"t2","details":{"category":"groceries","counterparty":{"name":"Safeway","type":"organization"}}},
		{"id":"t3","details":{}},
		{"id":"t4","amount":{"bad":true}}
	]`
	txns, malformed, err := parseTransactions([]byte(listPayload), "acc_1")
	require.NoError(t, err)
	assert.Equal(t, 1, malformed)
	require.Len(t, txns, 3)

	assert.Equal(t, "coffee", txns[0].Category)
	assert.Equal(t, "Blue Bottle", txns[0].MerchantName)
	assert.Equal(t, "organization", txns[0].MerchantType)
	assert.True(t, decimal.RequireFromString("-12.34").Equal(txns[0].Amount))
	assert.Equal(t, "acc_1", txns[0].AccountID)

	assert.Equal(t, "groceries", txns[1].Category)
	assert.Equal(t, "Safeway", txns[1].MerchantName)
	assert.True(t, decimal.Zero.Equal(txns[1].Amount))
	assert.Equal(t, "", txns[1].Date)

	assert.Equal(t, domain.UnknownValue, txns[2].Category)
	assert.Equal(t, domain.UnknownValue, txns[2].MerchantName)
	assert.Equal(t, domain.UnknownValue, txns[2].MerchantType)

	wrapped, _, err := parseTransactions([]byte(`{"transactions":[{"id":"w1"}]}`), "acc_1")
	require.NoError(t, err)
	require.Len(t, wrapped, 1)
	assert.Equal(t, "w1", wrapped[0].TransactionID)

	_, _, err = parseTransactions([]byte(`"nope"`), "acc_1")
	assert.Error(t, err)
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := httpretry.New(httpretry.WithSleep(func(context.Context, time.Duration) error { return nil }))
	return NewProvider(client, srv.URL)
}

func TestFetchBalance_UsesTokenAsUsername(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "token_1", user)
		assert.Equal(t, "", pass)
		assert.Equal(t, "/accounts/acc_cc/balances", r.URL.Path)
		_, _ = w.Write([]byte(`{"available":"950.00","ledger":"50.00"}`))
	})

	reading, err := p.FetchBalance(context.Background(), domain.Account{AccountID: "acc_cc", Type: "credit", AccessToken: "token_1"})
	require.NoError(t, err)
	assert.False(t, reading.Stale)
	assert.True(t, decimal.NewFromInt(-50).Equal(reading.Value))
}

func TestFetchBalance_StaleOnErrorStatusAndShape(t *testing.T) {
	status := http.StatusInternalServerError
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"weird":true}`))
	})

	reading, err := p.FetchBalance(context.Background(), domain.Account{AccountID: "acc_1"})
	require.NoError(t, err)
	assert.True(t, reading.Stale)
	assert.Contains(t, reading.Reason, "500")

	status = http.StatusOK
	reading, err = p.FetchBalance(context.Background(), domain.Account{AccountID: "acc_1"})
	require.NoError(t, err)
	assert.True(t, reading.Stale)
}

func TestFetchTransactions_ErrorStatus(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := p.FetchTransactions(context.Background(), domain.Account{AccountID: "acc_1"})
	assert.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
}

func TestListAccounts(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"acc_1","name":"Checking","type":"depository","subtype":"checking","status":"open",
			"enrollment_id":"enr_1","institution":{"name":"Chase"},
			"links":{"balances":"https://api.teller.io/accounts/acc_1/balances","details":null}}]`))
	})

	records, err := p.ListAccounts(context.Background(), "token_1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "Chase", rec.InstitutionName)
	assert.Equal(t, "enr_1", rec.EnrollmentID)
	assert.Equal(t, "token_1", rec.AccessToken)
	assert.Equal(t, map[string]string{"balances": "https://api.teller.io/accounts/acc_1/balances"}, rec.RefreshLinks)
	assert.Nil(t, rec.CurrentBalance)
}
