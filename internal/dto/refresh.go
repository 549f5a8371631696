package dto

import (
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Refresh responses keep the snake_case field names existing dashboard scripts read.

// RefreshItemRequest names the item to refresh.
type RefreshItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

// RefreshAccountResponse reports a single account refresh.
type RefreshAccountResponse struct {
	AccountID            string          `json:"account_id"`
	Provider             string          `json:"provider"`
	Updated              bool            `json:"updated"`
	BalanceUpdated       bool            `json:"balance_updated"`
	BalanceStale         bool            `json:"balance_stale"`
	StaleReason          string          `json:"stale_reason,omitempty"`
	PreviousBalance      decimal.Decimal `json:"previous_balance"`
	Balance              decimal.Decimal `json:"balance"`
	TransactionsUpserted int             `json:"transactions_upserted"`
	TransactionsSkipped  int             `json:"transactions_skipped"`
	TransactionsError    string          `json:"transactions_error,omitempty"`
	HistoryAdded         bool            `json:"history_added"`
	RefreshedAt          *time.Time      `json:"refreshed_at,omitempty"`
	Error                string          `json:"error,omitempty"`
}

// ToRefreshAccountResponse converts a domain result
func ToRefreshAccountResponse(r domain.RefreshResult) RefreshAccountResponse {
	resp := RefreshAccountResponse{
		AccountID:            r.AccountID,
		Provider:             string(r.Provider),
		Updated:              r.Updated,
		BalanceUpdated:       r.BalanceUpdated,
		BalanceStale:         r.BalanceStale,
		StaleReason:          r.StaleReason,
		PreviousBalance:      r.PreviousBalance,
		Balance:              r.Balance,
		TransactionsUpserted: r.TransactionsUpserted,
		TransactionsSkipped:  r.TransactionsSkipped,
		TransactionsError:    r.TransactionsError,
		HistoryAdded:         r.HistoryAdded,
		Error:                r.Error,
	}
	if !r.RefreshedAt.IsZero() {
		at := r.RefreshedAt
		resp.RefreshedAt = &at
	}
	return resp
}

// RefreshAllResponse reports every account of a refresh-all run.
type RefreshAllResponse struct {
	Status   string                   `json:"status"`
	Accounts []RefreshAccountResponse `json:"accounts"`
	Failed   int                      `json:"failed"`
}

// ToRefreshAllResponse converts domain results
func ToRefreshAllResponse(results []domain.RefreshResult) RefreshAllResponse {
	resp := RefreshAllResponse{Status: "success", Accounts: make([]RefreshAccountResponse, 0, len(results))}
	for _, r := range results {
		if r.Error != "" {
			resp.Failed++
		}
		resp.Accounts = append(resp.Accounts, ToRefreshAccountResponse(r))
	}
	return resp
}

// RefreshItemResponse reports an item refresh.
type RefreshItemResponse struct {
	Status              string `json:"status"`
	ItemID              string `json:"item_id"`
	TransactionsFetched int    `json:"transactions_fetched"`
	AccountsUpdated     int    `json:"accounts_updated"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
}

// ToRefreshItemResponse converts a domain item result
func ToRefreshItemResponse(r *domain.ItemRefreshResult) RefreshItemResponse {
	return RefreshItemResponse{
		Status:              "success",
		ItemID:              r.ItemID,
		TransactionsFetched: r.TransactionsFetched,
		AccountsUpdated:     r.AccountsUpdated,
		StartDate:           r.StartDate,
		EndDate:             r.EndDate,
	}
}

// WaitingResponse is returned when an item refresh is still cooling down.
type WaitingResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
