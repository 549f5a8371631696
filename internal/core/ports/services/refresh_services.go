package services

import (
	"context"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
)

// RefreshSvcFacade defines the refresh operations against providers
type RefreshSvcFacade interface {
	// RefreshAccount pulls balance and transactions for one account.
	RefreshAccount(ctx context.Context, accountID string) (*domain.RefreshResult, error)

	// RefreshItem pulls every transaction of a Plaid item since its last successful
	// refresh. It fails with a *domain.CooldownError when called too early.
	RefreshItem(ctx context.Context, itemID string) (*domain.ItemRefreshResult, error)

	// RefreshAll refreshes every account of a user; individual failures are reported
	// per account.
	RefreshAll(ctx context.Context, userID string) ([]domain.RefreshResult, error)
}
