package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
)

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its provider id.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsWithAccounts returns one page of transactions joined with their
	// accounts, newest date first, together with the total number of transactions.
	ListTransactionsWithAccounts(ctx context.Context, limit, offset int) ([]domain.TransactionWithAccount, int, error)

	// ListAllTransactions returns every stored transaction.
	ListAllTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for transaction data
type TransactionWriter interface {
	// UpsertTransaction inserts the transaction or overwrites the stored row with the same id.
	// It reports whether a new row was inserted.
	UpsertTransaction(ctx context.Context, txn domain.Transaction) (bool, error)
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// PlaidItemRepository defines persistence for linked Plaid items
type PlaidItemRepository interface {
	// FindItemByID retrieves an item by its provider id.
	FindItemByID(ctx context.Context, itemID string) (*domain.PlaidItem, error)

	// ListItems retrieves every linked item.
	ListItems(ctx context.Context) ([]domain.PlaidItem, error)

	// SaveItem inserts a new item or, when it exists, refreshes its credential,
	// institution and status. Owner and product list are kept from the first link.
	SaveItem(ctx context.Context, item domain.PlaidItem) (*domain.PlaidItem, error)

	// MarkItemRefreshed records a successful item-level refresh.
	MarkItemRefreshed(ctx context.Context, itemID string, at time.Time) error
}
