package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
)

// DefaultUpsertBatchSize is the number of accounts written per store transaction.
const DefaultUpsertBatchSize = 100

type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	txManager   portsrepo.TransactionManager
	batchSize   int
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithUpsertBatchSize sets how many accounts are committed together.
func WithUpsertBatchSize(n int) AccountServiceOption {
	return func(s *accountService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithAccountClock overrides the time source.
func WithAccountClock(clock func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.clock = clock
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, txManager portsrepo.TransactionManager, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
		txManager:   txManager,
		batchSize:   DefaultUpsertBatchSize,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	for i := range accounts {
		accounts[i] = accounts[i].WithPlaceholders()
	}
	return accounts, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	details, err := s.accountRepo.FindAccountDetails(ctx, accountID)
	switch {
	case err == nil:
		acc.Details = details
	case !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to get account details", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to get details of account %s: %w", accountID, err)
	}
	withPlaceholders := acc.WithPlaceholders()
	return &withPlaceholders, nil
}

func (s *accountService) GetAccountHistory(ctx context.Context, accountID string) ([]domain.AccountHistory, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	history, err := s.accountRepo.ListAccountHistory(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account history", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to list history of account %s: %w", accountID, err)
	}
	return history, nil
}

// UpsertAccounts commits the records in batches. A failing batch rolls back on its
// own; batches committed before it stay committed.
func (s *accountService) UpsertAccounts(ctx context.Context, userID string, provider domain.LinkProvider, records []domain.AccountRecord) (*domain.UpsertSummary, error) {
	if !provider.IsValid() {
		return nil, fmt.Errorf("%w: unsupported link provider %q", apperrors.ErrValidation, provider)
	}

	summary := &domain.UpsertSummary{}
	valid := s.dedupeRecords(ctx, records, summary)
	now := s.Now()

	for start := 0; start < len(valid); start += s.batchSize {
		end := min(start+s.batchSize, len(valid))
		batch := valid[start:end]

		var part domain.UpsertSummary
		err := s.txManager.RunInTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
			part = domain.UpsertSummary{}
			for _, rec := range batch {
				if err := upsertAccountRecord(ctx, repos.Accounts, userID, provider, rec, now, &part); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			s.LogError(ctx, err, "Account batch rolled back",
				slog.Int("batch_start", start),
				slog.Int("batch_size", len(batch)))
			return summary, fmt.Errorf("failed to upsert accounts %d-%d: %w", start, end-1, err)
		}
		summary.Inserted += part.Inserted
		summary.Updated += part.Updated
		summary.HistoryAdded += part.HistoryAdded
		summary.Processed += len(batch)
	}

	s.LogInfo(ctx, "Accounts upserted",
		slog.String("provider", string(provider)),
		slog.Int("processed", summary.Processed),
		slog.Int("inserted", summary.Inserted),
		slog.Int("updated", summary.Updated),
		slog.Int("skipped", summary.Skipped))
	return summary, nil
}

// dedupeRecords drops records without an id and repeated ids, first occurrence wins.
func (s *accountService) dedupeRecords(ctx context.Context, records []domain.AccountRecord, summary *domain.UpsertSummary) []domain.AccountRecord {
	seen := make(map[string]struct{}, len(records))
	valid := make([]domain.AccountRecord, 0, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			s.LogWarn(ctx, "Skipping account record without id", slog.Int("index", i))
			summary.Skipped++
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			s.LogWarn(ctx, "Skipping duplicate account record", slog.String("account_id", rec.ID))
			summary.Skipped++
			continue
		}
		seen[rec.ID] = struct{}{}
		valid = append(valid, rec)
	}
	return valid
}

func upsertAccountRecord(ctx context.Context, repo portsrepo.AccountRepositoryFacade, userID string, provider domain.LinkProvider, rec domain.AccountRecord, now time.Time, part *domain.UpsertSummary) error {
	acc := rec.ToAccount(userID, provider, now)

	existing, err := repo.FindAccountByID(ctx, acc.AccountID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		if err := repo.SaveAccount(ctx, acc); err != nil {
			return err
		}
		part.Inserted++
	case err != nil:
		return err
	default:
		acc.UserID = existing.UserID
		acc.CreatedAt = existing.CreatedAt
		if err := repo.UpdateAccount(ctx, acc); err != nil {
			return err
		}
		part.Updated++
	}

	if err := repo.UpsertAccountDetails(ctx, rec.Details()); err != nil {
		return err
	}

	added, err := repo.InsertHistoryIfAbsent(ctx, domain.AccountHistory{
		AccountID:    acc.AccountID,
		SnapshotDate: domain.Today(now),
		Balance:      acc.Balance,
		CreatedAt:    now,
	})
	if err != nil {
		return err
	}
	if added {
		part.HistoryAdded++
	}
	return nil
}
