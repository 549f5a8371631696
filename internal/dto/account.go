package dto

import (
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountRecordRequest is one provider account in an upsert batch.
// Records without an id are skipped, not rejected.
type AccountRecordRequest struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	Subtype         string            `json:"subtype"`
	Status          string            `json:"status"`
	InstitutionName string            `json:"institution_name"`
	CurrentBalance  *decimal.Decimal  `json:"current_balance"`
	AccessToken     string            `json:"access_token"`
	ItemID          string            `json:"item_id"`
	EnrollmentID    string            `json:"enrollment_id"`
	RefreshLinks    map[string]string `json:"refresh_links"`
}

// UpsertAccountsRequest defines a batch of provider accounts to reconcile.
type UpsertAccountsRequest struct {
	Provider string                 `json:"provider" binding:"required,linkprovider"`
	Accounts []AccountRecordRequest `json:"accounts" binding:"required"`
}

// ToRecords converts the request into domain records.
func (r UpsertAccountsRequest) ToRecords() []domain.AccountRecord {
	out := make([]domain.AccountRecord, 0, len(r.Accounts))
	for _, a := range r.Accounts {
		out = append(out, domain.AccountRecord{
			ID:              a.ID,
			Name:            a.Name,
			Type:            a.Type,
			Subtype:         a.Subtype,
			Status:          a.Status,
			InstitutionName: a.InstitutionName,
			CurrentBalance:  a.CurrentBalance,
			AccessToken:     a.AccessToken,
			ItemID:          a.ItemID,
			EnrollmentID:    a.EnrollmentID,
			RefreshLinks:    a.RefreshLinks,
		})
	}
	return out
}

// AccountResponse defines the data returned for an account.
// The access credential is never returned.
type AccountResponse struct {
	AccountID       string            `json:"accountID"`
	ItemID          string            `json:"itemID,omitempty"`
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	Subtype         string            `json:"subtype"`
	Status          string            `json:"status"`
	InstitutionName string            `json:"institutionName"`
	Balance         decimal.Decimal   `json:"balance"`
	LastRefreshed   string            `json:"lastRefreshed"`
	LinkProvider    string            `json:"linkProvider"`
	EnrollmentID    string            `json:"enrollmentId,omitempty"`
	RefreshLinks    map[string]string `json:"refreshLinks,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	resp := AccountResponse{
		AccountID:       acc.AccountID,
		ItemID:          acc.ItemID,
		Name:            acc.Name,
		Type:            acc.Type,
		Subtype:         acc.Subtype,
		Status:          acc.Status,
		InstitutionName: acc.InstitutionName,
		Balance:         acc.Balance,
		LastRefreshed:   domain.FormatLastUpdate(acc.LastRefreshed),
		LinkProvider:    string(acc.LinkProvider),
		CreatedAt:       acc.CreatedAt,
		UpdatedAt:       acc.UpdatedAt,
	}
	if acc.Details != nil {
		resp.EnrollmentID = acc.Details.EnrollmentID
		resp.RefreshLinks = acc.Details.RefreshLinks
	}
	return resp
}

// ToListAccountResponse converts a slice of domain accounts
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, ToAccountResponse(&accounts[i]))
	}
	return out
}

// AccountHistoryResponse is one daily balance snapshot.
type AccountHistoryResponse struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// ToAccountHistoryResponse converts snapshots, oldest first
func ToAccountHistoryResponse(history []domain.AccountHistory) []AccountHistoryResponse {
	out := make([]AccountHistoryResponse, 0, len(history))
	for _, h := range history {
		out = append(out, AccountHistoryResponse{
			Date:    h.SnapshotDate.Format(domain.DateLayout),
			Balance: h.Balance,
		})
	}
	return out
}
