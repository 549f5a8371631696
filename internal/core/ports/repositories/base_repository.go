package repositories

import (
	"context"
)

// TxRepositories are the repositories bound to a single unit of work.
// Everything written through them commits or rolls back together.
type TxRepositories struct {
	Accounts     AccountRepositoryFacade
	Transactions TransactionRepositoryFacade
	Items        PlaidItemRepository
}

// TransactionManager runs a function inside a unit of work.
type TransactionManager interface {
	// RunInTx commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
