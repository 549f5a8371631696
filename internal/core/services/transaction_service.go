package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/utils/pagination"
)

type transactionService struct {
	BaseService
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionReader
	txManager       portsrepo.TransactionManager
}

// TransactionServiceOption is a functional option for configuring the transaction service
type TransactionServiceOption func(*transactionService)

// WithTransactionClock overrides the time source.
func WithTransactionClock(clock func() time.Time) TransactionServiceOption {
	return func(s *transactionService) {
		s.clock = clock
	}
}

// NewTransactionService creates a new transaction service
func NewTransactionService(accountRepo portsrepo.AccountReader, transactionRepo portsrepo.TransactionReader, txManager portsrepo.TransactionManager, options ...TransactionServiceOption) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) UpsertTransactions(ctx context.Context, accountID string, txns []domain.Transaction) (*domain.TransactionUpsertResult, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	for i := range txns {
		txns[i].AccountID = accountID
	}

	now := s.Now()
	var result domain.TransactionUpsertResult
	err := s.txManager.RunInTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		var err error
		result, err = upsertTransactions(ctx, repos.Transactions, txns, now)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to upsert transactions", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to upsert transactions for account %s: %w", accountID, err)
	}
	if result.Skipped > 0 {
		s.LogWarn(ctx, "Skipped transactions without id",
			slog.String("account_id", accountID),
			slog.Int("skipped", result.Skipped))
	}
	return &result, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, page, pageSize int) (*domain.TransactionPage, error) {
	page, pageSize = pagination.Normalize(page, pageSize)

	rows, total, err := s.transactionRepo.ListTransactionsWithAccounts(ctx, pageSize, pagination.Offset(page, pageSize))
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.Int("page", page), slog.Int("page_size", pageSize))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &domain.TransactionPage{
		Transactions: rows,
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
	}, nil
}

// upsertTransactions writes each transaction that has an id; the last occurrence of a
// repeated id wins.
func upsertTransactions(ctx context.Context, repo portsrepo.TransactionWriter, txns []domain.Transaction, now time.Time) (domain.TransactionUpsertResult, error) {
	var result domain.TransactionUpsertResult
	for _, t := range txns {
		if t.TransactionID == "" {
			result.Skipped++
			continue
		}
		t = t.Normalized()
		t.CreatedAt, t.UpdatedAt = now, now

		inserted, err := repo.UpsertTransaction(ctx, t)
		if err != nil {
			return result, err
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
	return result, nil
}
