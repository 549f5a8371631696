package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsproviders "github.com/SscSPs/finance_dashboard_app/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/core/ports/sinks"
)

const (
	DefaultRefreshTimeout  = 2 * time.Minute
	DefaultRefreshCooldown = 24 * time.Hour
	// itemBackfillDays bounds the first item refresh window.
	itemBackfillDays = 60
)

type refreshService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	itemRepo    portsrepo.PlaidItemRepository
	txManager   portsrepo.TransactionManager

	providers  map[domain.LinkProvider]portsproviders.AccountProvider
	itemSyncer portsproviders.ItemSyncer
	archiver   sinks.Archiver
	publisher  sinks.EventPublisher
	topic      string

	timeout  time.Duration
	cooldown time.Duration
}

// RefreshServiceOption is a functional option for configuring the refresh service
type RefreshServiceOption func(*refreshService)

// WithAccountProviders registers the per-account refresh strategies by their Name.
func WithAccountProviders(providers ...portsproviders.AccountProvider) RefreshServiceOption {
	return func(s *refreshService) {
		for _, p := range providers {
			if p != nil {
				s.providers[p.Name()] = p
			}
		}
	}
}

// WithItemSyncer enables item-level refreshes.
func WithItemSyncer(syncer portsproviders.ItemSyncer) RefreshServiceOption {
	return func(s *refreshService) {
		s.itemSyncer = syncer
	}
}

// WithArchiver stores raw provider payloads.
func WithArchiver(archiver sinks.Archiver) RefreshServiceOption {
	return func(s *refreshService) {
		s.archiver = archiver
	}
}

// WithEventPublisher emits an event per refreshed account to topic.
func WithEventPublisher(publisher sinks.EventPublisher, topic string) RefreshServiceOption {
	return func(s *refreshService) {
		s.publisher = publisher
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithRefreshTimeout bounds a single account refresh. Zero disables the bound.
func WithRefreshTimeout(d time.Duration) RefreshServiceOption {
	return func(s *refreshService) {
		s.timeout = d
	}
}

// WithRefreshCooldown sets the minimum time between item refreshes.
func WithRefreshCooldown(d time.Duration) RefreshServiceOption {
	return func(s *refreshService) {
		s.cooldown = d
	}
}

// WithRefreshClock overrides the time source.
func WithRefreshClock(clock func() time.Time) RefreshServiceOption {
	return func(s *refreshService) {
		s.clock = clock
	}
}

// NewRefreshService creates a new refresh service with the provided options
func NewRefreshService(accountRepo portsrepo.AccountReader, itemRepo portsrepo.PlaidItemRepository, txManager portsrepo.TransactionManager, options ...RefreshServiceOption) portssvc.RefreshSvcFacade {
	svc := &refreshService{
		accountRepo: accountRepo,
		itemRepo:    itemRepo,
		txManager:   txManager,
		providers:   map[domain.LinkProvider]portsproviders.AccountProvider{},
		topic:       sinks.TopicAccountRefreshed,
		timeout:     DefaultRefreshTimeout,
		cooldown:    DefaultRefreshCooldown,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.RefreshSvcFacade = (*refreshService)(nil)

// RefreshAccount fetches balance and transactions without holding a store
// transaction, then applies both under a row lock on the account.
func (s *refreshService) RefreshAccount(ctx context.Context, accountID string) (*domain.RefreshResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	logger := s.GetLogger(ctx).With(slog.String("account_id", accountID))

	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	provider, ok := s.providers[acc.LinkProvider]
	if !ok {
		return nil, fmt.Errorf("%w: no refresh strategy for link provider %q", apperrors.ErrValidation, acc.LinkProvider)
	}

	reading, err := provider.FetchBalance(ctx, *acc)
	if err != nil {
		logger.Warn("Balance fetch failed", slog.String("error", err.Error()))
		reading = domain.StaleBalance(err.Error())
	} else if reading.Stale {
		logger.Warn("Balance reading is stale", slog.String("reason", reading.Reason))
	}

	batch, txErr := provider.FetchTransactions(ctx, *acc)
	if txErr != nil {
		logger.Warn("Transaction fetch failed", slog.String("error", txErr.Error()))
	}
	for i := range batch.Transactions {
		batch.Transactions[i].AccountID = accountID
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("refresh of account %s aborted: %w", accountID, err)
	}

	now := s.Now()
	s.archive(ctx, domain.AccountRefreshArchiveName(accountID, now), batch.Raw)

	result := &domain.RefreshResult{
		AccountID:    accountID,
		Provider:     acc.LinkProvider,
		BalanceStale: reading.Stale,
		StaleReason:  reading.Reason,
		RefreshedAt:  now,
	}
	if txErr != nil {
		result.TransactionsError = txErr.Error()
	}

	err = s.txManager.RunInTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		locked, err := repos.Accounts.FindAccountByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		result.PreviousBalance = locked.Balance
		result.Balance = locked.Balance
		result.BalanceUpdated = false
		if !reading.Stale && !reading.Value.Equal(locked.Balance) {
			result.Balance = reading.Value
			result.BalanceUpdated = true
		}

		upserted, err := upsertTransactions(ctx, repos.Transactions, batch.Transactions, now)
		if err != nil {
			return err
		}
		result.TransactionsUpserted = upserted.Upserted()
		result.TransactionsSkipped = upserted.Skipped

		if err := repos.Accounts.UpdateRefreshState(ctx, accountID, result.Balance, now); err != nil {
			return err
		}
		result.HistoryAdded, err = repos.Accounts.InsertHistoryIfAbsent(ctx, domain.AccountHistory{
			AccountID:    accountID,
			SnapshotDate: domain.Today(now),
			Balance:      result.Balance,
			CreatedAt:    now,
		})
		return err
	})
	if err != nil {
		logger.Error("Refresh rolled back", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to apply refresh of account %s: %w", accountID, err)
	}
	result.Updated = result.BalanceUpdated || result.TransactionsUpserted > 0 || result.HistoryAdded
	if result.TransactionsSkipped > 0 {
		logger.Warn("Skipped transactions without id", slog.Int("skipped", result.TransactionsSkipped))
	}

	logger.Info("Account refreshed",
		slog.Bool("updated", result.Updated),
		slog.Bool("balance_updated", result.BalanceUpdated),
		slog.Bool("balance_stale", result.BalanceStale),
		slog.Int("transactions_upserted", result.TransactionsUpserted))
	s.publish(ctx, *result)
	return result, nil
}

// RefreshAll refreshes the user's accounts one after another.
func (s *refreshService) RefreshAll(ctx context.Context, userID string) ([]domain.RefreshResult, error) {
	accounts, err := s.accountRepo.ListAccountsByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for refresh", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list accounts of user %s: %w", userID, err)
	}

	results := make([]domain.RefreshResult, 0, len(accounts))
	failed := 0
	for _, acc := range accounts {
		res, err := s.RefreshAccount(ctx, acc.AccountID)
		if err != nil {
			s.LogError(ctx, err, "Account refresh failed", slog.String("account_id", acc.AccountID))
			failed++
			results = append(results, domain.RefreshResult{
				AccountID: acc.AccountID,
				Provider:  acc.LinkProvider,
				Error:     err.Error(),
			})
			continue
		}
		results = append(results, *res)
	}

	s.LogInfo(ctx, "Refreshed all accounts",
		slog.String("user_id", userID),
		slog.Int("accounts", len(accounts)),
		slog.Int("failed", failed))
	return results, nil
}

// RefreshItem pulls the item's transactions since its last successful refresh.
func (s *refreshService) RefreshItem(ctx context.Context, itemID string) (*domain.ItemRefreshResult, error) {
	if s.itemSyncer == nil {
		return nil, fmt.Errorf("%w: item refresh is not configured", apperrors.ErrProviderUnavailable)
	}

	item, err := s.itemRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	start := domain.Today(now).AddDate(0, 0, -itemBackfillDays)
	if last := item.LastSuccessfulUpdate; last != nil && !last.IsZero() {
		if since := now.Sub(*last); since < s.cooldown {
			return nil, &domain.CooldownError{SinceLast: since, Remaining: s.cooldown - since}
		}
		start = domain.Today(*last)
	}
	end := domain.Today(now)

	sync, err := s.itemSyncer.SyncItem(ctx, item.AccessToken, start, end)
	if err != nil {
		s.LogError(ctx, err, "Item sync failed", slog.String("item_id", itemID))
		return nil, fmt.Errorf("failed to sync item %s: %w", itemID, err)
	}
	s.archive(ctx, domain.ItemRefreshArchiveName(now), sync.Raw)

	result := &domain.ItemRefreshResult{
		ItemID:              itemID,
		TransactionsFetched: len(sync.Transactions),
		StartDate:           start.Format(domain.DateLayout),
		EndDate:             end.Format(domain.DateLayout),
		RefreshedAt:         now,
	}

	var refreshed []domain.RefreshResult
	err = s.txManager.RunInTx(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		refreshed = refreshed[:0]
		known := map[string]*domain.Account{}
		lookup := func(id string) (*domain.Account, error) {
			if acc, seen := known[id]; seen {
				return acc, nil
			}
			acc, err := repos.Accounts.FindAccountByIDForUpdate(ctx, id)
			if errors.Is(err, apperrors.ErrNotFound) {
				known[id] = nil
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			known[id] = acc
			return acc, nil
		}

		for _, rec := range sync.Accounts {
			acc, err := lookup(rec.ID)
			if err != nil {
				return err
			}
			if acc == nil {
				s.LogDebug(ctx, "Ignoring unknown account in item sync", slog.String("account_id", rec.ID))
				continue
			}
			res := domain.RefreshResult{
				AccountID:       acc.AccountID,
				Provider:        acc.LinkProvider,
				PreviousBalance: acc.Balance,
				Balance:         acc.Balance,
				RefreshedAt:     now,
			}
			if rec.CurrentBalance != nil {
				res.Balance = domain.SignedBalance(acc.Type, *rec.CurrentBalance)
				res.BalanceUpdated = !res.Balance.Equal(acc.Balance)
			} else {
				res.BalanceStale = true
				res.StaleReason = "balance missing from item sync"
			}
			if err := repos.Accounts.UpdateRefreshState(ctx, acc.AccountID, res.Balance, now); err != nil {
				return err
			}
			res.HistoryAdded, err = repos.Accounts.InsertHistoryIfAbsent(ctx, domain.AccountHistory{
				AccountID:    acc.AccountID,
				SnapshotDate: domain.Today(now),
				Balance:      res.Balance,
				CreatedAt:    now,
			})
			if err != nil {
				return err
			}
			refreshed = append(refreshed, res)
		}

		owned := make([]domain.Transaction, 0, len(sync.Transactions))
		for _, t := range sync.Transactions {
			acc, err := lookup(t.AccountID)
			if err != nil {
				return err
			}
			if acc != nil {
				owned = append(owned, t)
			}
		}
		upserted, err := upsertTransactions(ctx, repos.Transactions, owned, now)
		if err != nil {
			return err
		}
		perAccount := map[string]int{}
		for _, t := range owned {
			if t.TransactionID != "" {
				perAccount[t.AccountID]++
			}
		}
		for i := range refreshed {
			refreshed[i].TransactionsUpserted = perAccount[refreshed[i].AccountID]
		}
		if upserted.Skipped > 0 {
			s.LogWarn(ctx, "Skipped transactions without id",
				slog.String("item_id", itemID),
				slog.Int("skipped", upserted.Skipped))
		}
		s.LogDebug(ctx, "Item transactions upserted",
			slog.String("item_id", itemID),
			slog.Int("upserted", upserted.Upserted()),
			slog.Int("ignored", len(sync.Transactions)-len(owned)))

		return repos.Items.MarkItemRefreshed(ctx, itemID, now)
	})
	if err != nil {
		s.LogError(ctx, err, "Item refresh rolled back", slog.String("item_id", itemID))
		return nil, fmt.Errorf("failed to apply refresh of item %s: %w", itemID, err)
	}

	result.AccountsUpdated = len(refreshed)
	for _, res := range refreshed {
		res.Updated = res.BalanceUpdated || res.TransactionsUpserted > 0 || res.HistoryAdded
		s.publish(ctx, res)
	}
	s.LogInfo(ctx, "Item refreshed",
		slog.String("item_id", itemID),
		slog.Int("transactions_fetched", result.TransactionsFetched),
		slog.Int("accounts_updated", result.AccountsUpdated))
	return result, nil
}

func (s *refreshService) archive(ctx context.Context, name string, raw []byte) {
	if s.archiver == nil || len(raw) == 0 {
		return
	}
	loc, err := s.archiver.Archive(ctx, name, raw)
	if err != nil {
		s.LogWarn(ctx, "Failed to archive provider payload", slog.String("name", name), slog.String("error", err.Error()))
		return
	}
	s.LogDebug(ctx, "Archived provider payload", slog.String("location", loc))
}

func (s *refreshService) publish(ctx context.Context, res domain.RefreshResult) {
	if s.publisher == nil {
		return
	}
	event := sinks.AccountRefreshedEvent{
		AccountID:            res.AccountID,
		Provider:             string(res.Provider),
		Updated:              res.Updated,
		BalanceStale:         res.BalanceStale,
		TransactionsUpserted: res.TransactionsUpserted,
		RefreshedAt:          res.RefreshedAt.Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, s.topic, event); err != nil {
		s.LogWarn(ctx, "Failed to publish refresh event",
			slog.String("account_id", res.AccountID),
			slog.String("error", err.Error()))
	}
}
