package providers

import (
	"context"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
)

// AccountProvider is the per-account refresh strategy of a financial-data provider.
type AccountProvider interface {
	// Name is the link-provider tag of the accounts this strategy serves.
	Name() domain.LinkProvider

	// FetchBalance asks the provider for the account's current balance. An error
	// response or a payload that cannot be interpreted yields a stale reading and a
	// nil error; transport failures are returned as errors.
	FetchBalance(ctx context.Context, account domain.Account) (domain.BalanceReading, error)

	// FetchTransactions returns the provider's transaction window for the account.
	FetchTransactions(ctx context.Context, account domain.Account) (domain.TransactionBatch, error)
}

// AccountLister lists the accounts reachable with an access credential.
type AccountLister interface {
	ListAccounts(ctx context.Context, accessToken string) ([]domain.AccountRecord, error)
}

// Linker drives the Plaid Link token exchange.
type Linker interface {
	AccountLister

	// CreateLinkToken returns a token the UI uses to open Link.
	CreateLinkToken(ctx context.Context, userID string, products []string) (string, error)

	// ExchangePublicToken trades the public token returned by Link for an access token.
	ExchangePublicToken(ctx context.Context, publicToken string) (*domain.LinkedItem, error)

	// GetItem returns the item metadata for an access token.
	GetItem(ctx context.Context, accessToken string) (*domain.ItemInfo, error)
}

// ItemSyncer fetches every account balance and transaction of an item for a date window.
type ItemSyncer interface {
	SyncItem(ctx context.Context, accessToken string, start, end time.Time) (*domain.ItemSync, error)
}

// HoldingsFetcher returns investment holdings for an item.
type HoldingsFetcher interface {
	GetHoldings(ctx context.Context, accessToken string) ([]domain.Holding, error)
}
