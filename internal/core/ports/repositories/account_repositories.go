package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its provider account id.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves every stored account.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// ListAccountsByUser retrieves the accounts owned by a user.
	ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error)

	// FindAccountDetails retrieves the provider metadata of an account.
	FindAccountDetails(ctx context.Context, accountID string) (*domain.AccountDetails, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount overwrites the mutable fields of an existing account.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// UpsertAccountDetails updates or creates the details row of an account.
	UpsertAccountDetails(ctx context.Context, details domain.AccountDetails) error

	// UpdateRefreshState sets the balance and last refreshed time of an account.
	UpdateRefreshState(ctx context.Context, accountID string, balance decimal.Decimal, refreshedAt time.Time) error
}

// AccountHistoryRepository defines operations on the balance snapshots of accounts
type AccountHistoryRepository interface {
	// InsertHistoryIfAbsent adds a snapshot unless one exists for the same account and day.
	// It reports whether a row was inserted.
	InsertHistoryIfAbsent(ctx context.Context, history domain.AccountHistory) (bool, error)

	// ListAccountHistory retrieves the snapshots of an account, oldest first.
	ListAccountHistory(ctx context.Context, accountID string) ([]domain.AccountHistory, error)
}

// AccountTransactionSupport defines operations that require an open unit of work
type AccountTransactionSupport interface {
	// FindAccountByIDForUpdate selects an account and locks it until the unit of work ends.
	FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountHistoryRepository
	AccountTransactionSupport
}

// AccountGroupRepository stores user defined account groups
type AccountGroupRepository interface {
	SaveGroup(ctx context.Context, group domain.AccountGroup) error
	ListGroupsByUser(ctx context.Context, userID string) ([]domain.AccountGroup, error)
}
