package services

import (
	"context"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// ListAccounts returns every stored account with placeholders for missing fields.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// GetAccount retrieves a specific account by its provider id.
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountHistory returns the daily balance snapshots of an account.
	GetAccountHistory(ctx context.Context, accountID string) ([]domain.AccountHistory, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// UpsertAccounts reconciles a batch of provider account records into the store.
	UpsertAccounts(ctx context.Context, userID string, provider domain.LinkProvider, records []domain.AccountRecord) (*domain.UpsertSummary, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
