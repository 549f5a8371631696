package services

import (
	"context"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
)

// TransactionSvcFacade defines transaction reconciliation and listing
type TransactionSvcFacade interface {
	// UpsertTransactions reconciles provider transactions for an account.
	UpsertTransactions(ctx context.Context, accountID string, txns []domain.Transaction) (*domain.TransactionUpsertResult, error)

	// ListTransactions returns one page of transactions, newest first.
	ListTransactions(ctx context.Context, page, pageSize int) (*domain.TransactionPage, error)
}
