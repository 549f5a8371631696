package dto

import (
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionRecordRequest is one provider transaction. Records without an id are skipped.
type TransactionRecordRequest struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	MerchantName  string          `json:"merchant_name"`
	MerchantType  string          `json:"merchant_type"`
}

// UpsertTransactionsRequest carries transactions to reconcile for one account.
type UpsertTransactionsRequest struct {
	Transactions []TransactionRecordRequest `json:"transactions" binding:"required"`
}

// ToDomain converts the request for the account it was posted to.
func (r UpsertTransactionsRequest) ToDomain(accountID string) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(r.Transactions))
	for _, t := range r.Transactions {
		out = append(out, domain.Transaction{
			TransactionID: t.TransactionID,
			AccountID:     accountID,
			Amount:        t.Amount,
			Date:          t.Date,
			Description:   t.Description,
			Category:      t.Category,
			MerchantName:  t.MerchantName,
			MerchantType:  t.MerchantType,
		})
	}
	return out
}

// ListTransactionsParams defines the query parameters of the transaction listing.
type ListTransactionsParams struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// TransactionResponse is a transaction joined with its account.
type TransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	AccountID       string          `json:"accountID"`
	Amount          decimal.Decimal `json:"amount"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	MerchantName    string          `json:"merchantName"`
	MerchantType    string          `json:"merchantType"`
	AccountName     string          `json:"accountName"`
	InstitutionName string          `json:"institutionName"`
	Subtype         string          `json:"subtype"`
}

// ListTransactionsResponse is one page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"pageSize"`
	Total        int                   `json:"total"`
}

// ToListTransactionsResponse converts a domain page
func ToListTransactionsResponse(page *domain.TransactionPage) ListTransactionsResponse {
	rows := make([]TransactionResponse, 0, len(page.Transactions))
	for _, t := range page.Transactions {
		rows = append(rows, TransactionResponse{
			TransactionID:   t.TransactionID,
			AccountID:       t.AccountID,
			Amount:          t.Amount,
			Date:            t.Date,
			Description:     t.Description,
			Category:        t.Category,
			MerchantName:    t.MerchantName,
			MerchantType:    t.MerchantType,
			AccountName:     t.AccountName,
			InstitutionName: t.InstitutionName,
			Subtype:         t.Subtype,
		})
	}
	return ListTransactionsResponse{
		Transactions: rows,
		Page:         page.Page,
		PageSize:     page.PageSize,
		Total:        page.Total,
	}
}
