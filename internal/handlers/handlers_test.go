package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/handlers"
	"github.com/SscSPs/finance_dashboard_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testUserID = "user-1"

type HandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	jwtSecret string
	accounts  *MockAccountService
	txns      *MockTransactionService
	refresh   *MockRefreshService
	link      *MockLinkService
	reporting *MockReportingService
}

func (suite *HandlerTestSuite) generateTestToken(userID string) string {
	claims := &jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.accounts = new(MockAccountService)
	suite.txns = new(MockTransactionService)
	suite.refresh = new(MockRefreshService)
	suite.link = new(MockLinkService)
	suite.reporting = new(MockReportingService)

	cfg := &config.Config{
		IsProduction:  true,
		JWTSecret:     suite.jwtSecret,
		DefaultUserID: "default",
		ServiceAPIKey: "scheduler-key",
	}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Account:     suite.accounts,
		Transaction: suite.txns,
		Refresh:     suite.refresh,
		Link:        suite.link,
		Reporting:   suite.reporting,
	})
}

func (suite *HandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		suite.Require().NoError(err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(testUserID))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (suite *HandlerTestSuite) TestHealth() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlerTestSuite) TestRequiresToken() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.accounts.AssertNotCalled(suite.T(), "ListAccounts", mock.Anything)
}

func (suite *HandlerTestSuite) TestServiceKeyActsAsDefaultUser() {
	suite.refresh.On("RefreshAll", mock.Anything, "default").Return([]domain.RefreshResult{}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh/all", nil)
	req.Header.Set("x-api-key", "scheduler-key")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.refresh.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestUpsertAccounts_Success() {
	balance := decimal.RequireFromString("50")
	suite.accounts.On("UpsertAccounts", mock.Anything, testUserID, domain.ProviderTeller,
		mock.MatchedBy(func(records []domain.AccountRecord) bool {
			return len(records) == 1 && records[0].ID == "A1" && records[0].CurrentBalance.Equal(balance)
		})).
		Return(&domain.UpsertSummary{Processed: 1, Inserted: 1, HistoryAdded: 1}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/upsert", map[string]any{
		"provider": "teller",
		"accounts": []map[string]any{{"id": "A1", "name": "Card", "type": "credit card", "current_balance": "50"}},
	})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	body := suite.decode(w)
	suite.EqualValues(1, body["inserted"])
	suite.accounts.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestUpsertAccounts_RejectsUnknownProvider() {
	w := suite.do(http.MethodPost, "/api/v1/accounts/upsert", map[string]any{
		"provider": "mx",
		"accounts": []map[string]any{{"id": "A1"}},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.accounts.AssertNotCalled(suite.T(), "UpsertAccounts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestGetAccount_NotFound() {
	suite.accounts.On("GetAccount", mock.Anything, "missing").
		Return(nil, fmt.Errorf("%w: account missing", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/missing", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestGetAccount_HidesAccessToken() {
	suite.accounts.On("GetAccount", mock.Anything, "A1").Return(&domain.Account{
		AccountID:    "A1",
		Name:         "Checking",
		Balance:      decimal.RequireFromString("12.5"),
		LinkProvider: domain.ProviderPlaid,
		AccessToken:  "access-secret",
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/A1", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "access-secret")
	body := suite.decode(w)
	suite.Equal("12.5", body["balance"])
	suite.Equal(domain.NeverRefreshed, body["lastRefreshed"])
}

func (suite *HandlerTestSuite) TestGetAccount_Details() {
	suite.accounts.On("GetAccount", mock.Anything, "t_1").Return(&domain.Account{
		AccountID:    "t_1",
		LinkProvider: domain.ProviderTeller,
		Details:      &domain.AccountDetails{AccountID: "t_1", EnrollmentID: "enr_9"},
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/t_1", nil)

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.Equal("enr_9", body["enrollmentId"])
	suite.NotContains(body, "refreshLinks")
}

func (suite *HandlerTestSuite) TestRefreshAccount_RateLimited() {
	suite.refresh.On("RefreshAccount", mock.Anything, "A1").
		Return(nil, fmt.Errorf("teller balances: %w", apperrors.ErrRateLimited)).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/A1/refresh", nil)

	suite.Equal(http.StatusTooManyRequests, w.Code)
}

func (suite *HandlerTestSuite) TestRefreshAccount_ReportsStaleBalance() {
	suite.refresh.On("RefreshAccount", mock.Anything, "A1").Return(&domain.RefreshResult{
		AccountID:    "A1",
		Provider:     domain.ProviderTeller,
		BalanceStale: true,
		StaleReason:  "balance not available",
		Balance:      decimal.RequireFromString("100"),
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/A1/refresh", nil)

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.Equal(true, body["balance_stale"])
	suite.Equal("balance not available", body["stale_reason"])
	suite.NotContains(body, "refreshed_at")
}

func (suite *HandlerTestSuite) TestRefreshItem_Cooldown() {
	suite.refresh.On("RefreshItem", mock.Anything, "item-1").
		Return(nil, &domain.CooldownError{SinceLast: 5 * time.Hour, Remaining: 19 * time.Hour}).Once()

	w := suite.do(http.MethodPost, "/api/v1/refresh/item", map[string]string{"item_id": "item-1"})

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.Equal("waiting", body["status"])
	suite.Equal("Last refresh was 5 hours ago. Please wait 19 hours before refreshing again.", body["message"])
}

func (suite *HandlerTestSuite) TestRefreshItem_Success() {
	suite.refresh.On("RefreshItem", mock.Anything, "item-1").Return(&domain.ItemRefreshResult{
		ItemID:              "item-1",
		TransactionsFetched: 7,
		AccountsUpdated:     2,
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/refresh/item", map[string]string{"item_id": "item-1"})

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.Equal("success", body["status"])
	suite.EqualValues(7, body["transactions_fetched"])
}

func (suite *HandlerTestSuite) TestRefreshItem_RequiresItemID() {
	w := suite.do(http.MethodPost, "/api/v1/refresh/item", map[string]string{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.refresh.AssertNotCalled(suite.T(), "RefreshItem", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestRefreshAll_CountsFailures() {
	suite.refresh.On("RefreshAll", mock.Anything, testUserID).Return([]domain.RefreshResult{
		{AccountID: "A1", Updated: true},
		{AccountID: "A2", Error: "provider unavailable"},
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/refresh/all", nil)

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.EqualValues(1, body["failed"])
	suite.Len(body["accounts"], 2)
}

func (suite *HandlerTestSuite) TestListTransactions_PassesPaging() {
	suite.txns.On("ListTransactions", mock.Anything, 2, 10).Return(&domain.TransactionPage{
		Transactions: []domain.TransactionWithAccount{{
			Transaction: domain.Transaction{TransactionID: "T1", AccountID: "A1", Amount: decimal.NewFromInt(-4)},
			AccountName: "Checking",
		}},
		Page: 2, PageSize: 10, Total: 11,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/transactions?page=2&page_size=10", nil)

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.EqualValues(11, body["total"])
	suite.Len(body["transactions"], 1)
	suite.txns.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestListTransactions_BadQuery() {
	w := suite.do(http.MethodGet, "/api/v1/transactions?page=abc", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestUpsertTransactions_UsesPathAccount() {
	suite.txns.On("UpsertTransactions", mock.Anything, "A1", mock.MatchedBy(func(txns []domain.Transaction) bool {
		return len(txns) == 2 && txns[0].AccountID == "A1" && txns[0].TransactionID == "T1" &&
			txns[0].Amount.Equal(decimal.RequireFromString("-4.25")) && txns[1].TransactionID == ""
	})).Return(&domain.TransactionUpsertResult{Inserted: 1, Skipped: 1}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/A1/transactions", map[string]any{
		"transactions": []map[string]any{
			{"transaction_id": "T1", "amount": "-4.25", "date": "2026-01-03", "description": "Coffee"},
			{"description": "no id"},
		},
	})

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.EqualValues(1, body["inserted"])
	suite.EqualValues(1, body["skipped"])
	suite.txns.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestUpsertTransactions_UnknownAccount() {
	suite.txns.On("UpsertTransactions", mock.Anything, "nope", mock.Anything).
		Return(nil, fmt.Errorf("%w: account nope", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/nope/transactions", map[string]any{
		"transactions": []map[string]any{{"transaction_id": "T1"}},
	})

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestUpsertTransactions_RequiresBody() {
	w := suite.do(http.MethodPost, "/api/v1/accounts/A1/transactions", map[string]any{})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCreateLinkToken_SplitsProducts() {
	suite.link.On("CreateLinkToken", mock.Anything, testUserID, []string{"transactions", "investments"}).
		Return("link-sandbox-1", nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/link/token?products=transactions,investments", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("link-sandbox-1", suite.decode(w)["link_token"])
}

func (suite *HandlerTestSuite) TestSavePublicToken_ProviderUnavailable() {
	suite.link.On("SavePublicToken", mock.Anything, testUserID, "public-1").
		Return(nil, fmt.Errorf("exchange: %w", apperrors.ErrProviderUnavailable)).Once()

	w := suite.do(http.MethodPost, "/api/v1/link/public_token", map[string]string{"public_token": "public-1"})

	suite.Equal(http.StatusBadGateway, w.Code)
}

func (suite *HandlerTestSuite) TestEnrollTeller() {
	suite.link.On("EnrollTeller", mock.Anything, testUserID, "tok", "enr_1").
		Return(&domain.LinkResult{InstitutionName: "Chase", Accounts: domain.UpsertSummary{Inserted: 2}}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/link/teller", map[string]string{"access_token": "tok", "enrollment_id": "enr_1"})

	suite.Equal(http.StatusOK, w.Code)
	suite.EqualValues(2, suite.decode(w)["accounts_inserted"])
}

func (suite *HandlerTestSuite) TestCashFlow_Shape() {
	suite.reporting.On("CashFlow", mock.Anything).Return(&domain.CashFlowReport{
		Months: []domain.MonthlyCashFlow{
			{Month: "January 2024", Income: decimal.NewFromInt(100), Expenses: decimal.NewFromInt(40)},
		},
		TotalIncome:       decimal.NewFromInt(100),
		TotalExpenses:     decimal.NewFromInt(40),
		TotalTransactions: 3,
	}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/cash-flow", nil)

	suite.Equal(http.StatusOK, w.Code)
	body := suite.decode(w)
	suite.Equal("success", body["status"])
	metadata, ok := body["metadata"].(map[string]any)
	suite.Require().True(ok)
	suite.EqualValues(3, metadata["total_transactions"])
	suite.Equal("100", metadata["total_income"])
	data, ok := body["data"].([]any)
	suite.Require().True(ok)
	suite.Equal("January 2024", data[0].(map[string]any)["month"])
}

func (suite *HandlerTestSuite) TestSaveGroup() {
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	suite.reporting.On("SaveGroup", mock.Anything, testUserID, "Cards", []string{"A1", "A2"}).
		Return(&domain.AccountGroup{GroupID: "g1", Name: "Cards", AccountIDs: []string{"A1", "A2"}, CreatedAt: created}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups", map[string]any{"groupName": "Cards", "accountIds": []string{"A1", "A2"}})

	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal("g1", suite.decode(w)["groupID"])
}

func (suite *HandlerTestSuite) TestSaveGroup_Duplicate() {
	suite.reporting.On("SaveGroup", mock.Anything, testUserID, "Cards", []string{"A1"}).
		Return(nil, fmt.Errorf("%w: group exists", apperrors.ErrDuplicate)).Once()

	w := suite.do(http.MethodPost, "/api/v1/groups", map[string]any{"groupName": "Cards", "accountIds": []string{"A1"}})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestSaveGroup_RequiresAccounts() {
	w := suite.do(http.MethodPost, "/api/v1/groups", map[string]any{"groupName": "Cards", "accountIds": []string{}})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.reporting.AssertNotCalled(suite.T(), "SaveGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestHoldings_InternalError() {
	suite.reporting.On("Holdings", mock.Anything, "item-1").Return(nil, fmt.Errorf("boom")).Once()

	w := suite.do(http.MethodGet, "/api/v1/items/item-1/holdings", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal("Failed to get holdings", suite.decode(w)["error"])
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
