package services_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard_app/internal/core/ports/sinks"
	"github.com/SscSPs/finance_dashboard_app/internal/core/services"
	"github.com/SscSPs/finance_dashboard_app/internal/middleware"
	"github.com/SscSPs/finance_dashboard_app/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RefreshServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	store     *memory.Store
	repos     portsrepo.RepositoryProvider
	teller    *MockAccountProvider
	plaid     *MockPlaid
	archiver  *recordingArchiver
	publisher *recordingPublisher
	service   portssvc.RefreshSvcFacade
}

func (suite *RefreshServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	suite.store = memory.NewStore()
	suite.repos = memory.NewRepositoryProvider(suite.store)
	suite.teller = newMockProvider(domain.ProviderTeller)
	suite.plaid = new(MockPlaid)
	suite.archiver = &recordingArchiver{}
	suite.publisher = &recordingPublisher{}
	suite.service = suite.newService(suite.now)

	suite.seedAccount(domain.Account{AccountID: "acc_1", UserID: "u1", Type: "depository", Balance: decimal.NewFromInt(100), LinkProvider: domain.ProviderTeller})
}

func (suite *RefreshServiceTestSuite) newService(now time.Time) portssvc.RefreshSvcFacade {
	return services.NewRefreshService(suite.repos.AccountRepo, suite.repos.ItemRepo, suite.repos.TxManager,
		services.WithAccountProviders(suite.teller),
		services.WithItemSyncer(suite.plaid),
		services.WithArchiver(suite.archiver),
		services.WithEventPublisher(suite.publisher, ""),
		services.WithRefreshClock(fixedClock(now)),
	)
}

func (suite *RefreshServiceTestSuite) seedAccount(acc domain.Account) {
	suite.Require().NoError(suite.repos.AccountRepo.SaveAccount(suite.ctx, acc))
}

func (suite *RefreshServiceTestSuite) account(id string) *domain.Account {
	acc, err := suite.repos.AccountRepo.FindAccountByID(suite.ctx, id)
	suite.Require().NoError(err)
	return acc
}

func (suite *RefreshServiceTestSuite) TestRefreshAccount_AppliesFreshBalanceAndTransactions() {
	suite.teller.On("FetchBalance", mock.Anything, "acc_1").Return(domain.FreshBalance(decimal.NewFromInt(120)), nil).Once()
	suite.teller.On("FetchTransactions", mock.Anything, "acc_1").Return(domain.TransactionBatch{
		Transactions: []domain.Transaction{
			{TransactionID: "T1", Amount: decimal.NewFromInt(-5), Date: "2024-06-14"},
			{TransactionID: "", Amount: decimal.NewFromInt(1)},
		},
		Raw: []byte(`[{"id":"T1"}]`),
	}, nil).Once()

	res, err := suite.service.RefreshAccount(suite.ctx, "acc_1")
	suite.Require().NoError(err)

	suite.True(res.Updated)
	suite.True(res.BalanceUpdated)
	suite.False(res.BalanceStale)
	suite.True(res.PreviousBalance.Equal(decimal.NewFromInt(100)))
	suite.True(res.Balance.Equal(decimal.NewFromInt(120)))
	suite.Equal(1, res.TransactionsUpserted)
	suite.Equal(1, res.TransactionsSkipped)
	suite.True(res.HistoryAdded)

	acc := suite.account("acc_1")
	suite.True(acc.Balance.Equal(decimal.NewFromInt(120)))
	suite.Require().NotNil(acc.LastRefreshed)
	suite.Equal(suite.now, *acc.LastRefreshed)
	suite.Equal(1, suite.store.TransactionCount())

	suite.Require().Len(suite.archiver.saved, 1)
	suite.Equal("TRANSACTIONS_RAW.acc_1.20240615120000", suite.archiver.saved[0].name)

	suite.Require().Len(suite.publisher.events, 1)
	suite.Equal(sinks.TopicAccountRefreshed, suite.publisher.events[0].topic)
	event := suite.publisher.events[0].event.(sinks.AccountRefreshedEvent)
	suite.Equal("acc_1", event.AccountID)
	suite.True(event.Updated)

	suite.teller.AssertExpectations(suite.T())
}

func (suite *RefreshServiceTestSuite) TestRefreshAccount_LogsSkippedTransactions() {
	var logs bytes.Buffer
	ctx := middleware.WithLogger(suite.ctx, slog.New(slog.NewTextHandler(&logs, nil)))
	suite.teller.On("FetchBalance", mock.Anything, "acc_1").Return(domain.FreshBalance(decimal.NewFromInt(100)), nil).Once()
	suite.teller.On("FetchTransactions", mock.Anything, "acc_1").Return(domain.TransactionBatch{
		Transactions: []domain.Transaction{{Amount: decimal.NewFromInt(1)}, {Amount: decimal.NewFromInt(2)}},
	}, nil).Once()

	res, err := suite.service.RefreshAccount(ctx, "acc_1")
	suite.Require().NoError(err)

	suite.Equal(2, res.TransactionsSkipped)
	suite.Contains(logs.String(), "Skipped transactions without id")
	suite.Contains(logs.String(), "skipped=2")
}

func (suite *RefreshServiceTestSuite) TestRefreshAccount_StaleBalanceKeepsStoredValue() {
	suite.teller.On("FetchBalance", mock.Anything, "acc_1").Return(domain.StaleBalance("teller responded 500"), nil).Once()
	suite.teller.On("FetchTransactions", mock.Anything, "acc_1").Return(domain.TransactionBatch{
		Transactions: []domain.Transaction{{TransactionID: "T1", Amount: decimal.NewFromInt(3)}},
	}, nil).Once()

	res, err := suite.service.RefreshAccount(suite.ctx, "acc_1")
	suite.Require().NoError(err)

	suite.True(res.BalanceStale)
	suite.Equal("teller responded 500", res.StaleReason)
	suite.False(res.BalanceUpdated)
	suite.True(res.Updated)
	suite.True(suite.account("acc_1").Balance.Equal(decimal.NewFromInt(100)))
	suite.Equal(1, suite.store.TransactionCount())
}

func (suite *RefreshServiceTestSuite) TestRefreshAccount_FailuresAreIndependent() {
	suite.teller.On("FetchBalance", mock.Anything, "acc_1").Return(domain.BalanceReading{}, apperrors.ErrRateLimited).Once()
	suite.teller.On("FetchTransactions", mock.Anything, "acc_1").Return(domain.TransactionBatch{}, apperrors.ErrProviderUnavailable).Once()

	res, err := suite.service.RefreshAccount(suite.ctx, "acc_1")
	suite.Require().NoError(err)

	suite.True(res.BalanceStale)
	suite.Contains(res.StaleReason, "rate limit")
	suite.Equal(apperrors.ErrProviderUnavailable.Error(), res.TransactionsError)
	suite.True(res.HistoryAdded)
	suite.True(res.Updated)
	suite.Empty(suite.archiver.saved)
}

func (suite *RefreshServiceTestSuite) TestRefreshAccount_SecondRunSameDayChangesNothing() {
	suite.teller.On("FetchBalance", mock.Anything, "acc_1").Return(domain.FreshBalance(decimal.NewFromInt(100)), nil).Twice()
	suite.teller.On("FetchTransactions", mock.Anything, "acc_1").Return(domain.TransactionBatch{}, nil).Twice()

	first, err := suite.service.RefreshAccount(suite.ctx, "acc_1")
	suite.Require().NoError(err)
	second, err := suite.service.RefreshAccount(suite.ctx, "acc_1")
	suite.Require().NoError(err)

	suite.True(first.Updated)
	suite.False(first.BalanceUpdated)
	suite.False(second.Updated)
	suite.Equal(1, suite.store.HistoryCount("acc_1"))
}

func (suite *RefreshServiceTestSuite) TestRefreshAccount_UnknownProvider() {
	suite.seedAccount(domain.Account{AccountID: "acc_x", LinkProvider: domain.LinkProvider("mx")})

	_, err := suite.service.RefreshAccount(suite.ctx, "acc_x")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *RefreshServiceTestSuite) TestRefreshAccount_NotFound() {
	_, err := suite.service.RefreshAccount(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *RefreshServiceTestSuite) TestRefreshAccount_CancelledContext() {
	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()
	suite.teller.On("FetchBalance", mock.Anything, "acc_1").Return(domain.BalanceReading{}, context.Canceled).Once()
	suite.teller.On("FetchTransactions", mock.Anything, "acc_1").Return(domain.TransactionBatch{}, context.Canceled).Once()

	_, err := suite.service.RefreshAccount(ctx, "acc_1")
	suite.ErrorIs(err, context.Canceled)
	suite.Equal(0, suite.store.Commits())
}

func (suite *RefreshServiceTestSuite) TestRefreshAll_ContinuesAfterFailure() {
	suite.seedAccount(domain.Account{AccountID: "acc_0", UserID: "u1", Name: "A", LinkProvider: domain.LinkProvider("mx")})
	suite.seedAccount(domain.Account{AccountID: "acc_other", UserID: "u2", LinkProvider: domain.ProviderTeller})
	suite.teller.On("FetchBalance", mock.Anything, "acc_1").Return(domain.FreshBalance(decimal.NewFromInt(101)), nil).Once()
	suite.teller.On("FetchTransactions", mock.Anything, "acc_1").Return(domain.TransactionBatch{}, nil).Once()

	results, err := suite.service.RefreshAll(suite.ctx, "u1")
	suite.Require().NoError(err)
	suite.Require().Len(results, 2)

	byID := map[string]domain.RefreshResult{}
	for _, r := range results {
		byID[r.AccountID] = r
	}
	suite.NotEmpty(byID["acc_0"].Error)
	suite.Empty(byID["acc_1"].Error)
	suite.True(byID["acc_1"].BalanceUpdated)
	suite.teller.AssertNotCalled(suite.T(), "FetchBalance", mock.Anything, "acc_other")
}

func (suite *RefreshServiceTestSuite) seedItem(last *time.Time) {
	_, err := suite.repos.ItemRepo.SaveItem(suite.ctx, domain.PlaidItem{ItemID: "item_1", UserID: "u1", AccessToken: "access-1", Products: []string{"transactions"}})
	suite.Require().NoError(err)
	if last != nil {
		suite.Require().NoError(suite.repos.ItemRepo.MarkItemRefreshed(suite.ctx, "item_1", *last))
	}
}

func (suite *RefreshServiceTestSuite) TestRefreshItem_Cooldown() {
	last := suite.now.Add(-5 * time.Hour)
	suite.seedItem(&last)

	_, err := suite.service.RefreshItem(suite.ctx, "item_1")

	var cooldown *domain.CooldownError
	suite.Require().ErrorAs(err, &cooldown)
	suite.ErrorIs(err, apperrors.ErrCooldown)
	suite.Equal(5*time.Hour, cooldown.SinceLast)
	suite.Equal(19*time.Hour, cooldown.Remaining)
	suite.plaid.AssertNotCalled(suite.T(), "SyncItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RefreshServiceTestSuite) TestRefreshItem_FirstRunBackfills60Days() {
	suite.seedItem(nil)
	suite.seedAccount(domain.Account{AccountID: "card", UserID: "u1", ItemID: "item_1", Type: "credit", Balance: decimal.NewFromInt(-10), LinkProvider: domain.ProviderPlaid})

	start := time.Date(2024, 4, 16, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	suite.plaid.On("SyncItem", mock.Anything, "access-1", start, end).Return(&domain.ItemSync{
		Accounts: []domain.AccountRecord{
			{ID: "card", CurrentBalance: dec("30")},
			{ID: "unknown", CurrentBalance: dec("1")},
		},
		Transactions: []domain.Transaction{
			{TransactionID: "P1", AccountID: "card", Amount: decimal.NewFromInt(30), Date: "2024-06-01"},
			{TransactionID: "P2", AccountID: "unknown", Amount: decimal.NewFromInt(1), Date: "2024-06-01"},
		},
		Raw: []byte(`[{"transactions":[]}]`),
	}, nil).Once()

	res, err := suite.service.RefreshItem(suite.ctx, "item_1")
	suite.Require().NoError(err)

	suite.Equal(2, res.TransactionsFetched)
	suite.Equal(1, res.AccountsUpdated)
	suite.Equal("2024-04-16", res.StartDate)
	suite.Equal("2024-06-15", res.EndDate)

	suite.True(suite.account("card").Balance.Equal(decimal.NewFromInt(-30)))
	suite.Equal(1, suite.store.TransactionCount())
	suite.Equal(1, suite.store.HistoryCount("card"))

	item, err := suite.repos.ItemRepo.FindItemByID(suite.ctx, "item_1")
	suite.Require().NoError(err)
	suite.Require().NotNil(item.LastSuccessfulUpdate)
	suite.Equal(suite.now, *item.LastSuccessfulUpdate)

	suite.Require().Len(suite.archiver.saved, 1)
	suite.Equal("TRANSACTION_REFRESH_FILE.20240615120000", suite.archiver.saved[0].name)
	suite.plaid.AssertExpectations(suite.T())
}

func (suite *RefreshServiceTestSuite) TestRefreshItem_WindowStartsAtLastSuccess() {
	last := time.Date(2024, 6, 10, 18, 30, 0, 0, time.UTC)
	suite.seedItem(&last)

	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	suite.plaid.On("SyncItem", mock.Anything, "access-1", start, end).Return(&domain.ItemSync{}, nil).Once()

	res, err := suite.service.RefreshItem(suite.ctx, "item_1")
	suite.Require().NoError(err)
	suite.Equal("2024-06-10", res.StartDate)
	suite.Empty(suite.archiver.saved)
}

func (suite *RefreshServiceTestSuite) TestRefreshItem_SyncFailureLeavesItemUntouched() {
	suite.seedItem(nil)
	suite.plaid.On("SyncItem", mock.Anything, "access-1", mock.Anything, mock.Anything).Return(nil, apperrors.ErrProviderUnavailable).Once()

	_, err := suite.service.RefreshItem(suite.ctx, "item_1")
	suite.ErrorIs(err, apperrors.ErrProviderUnavailable)

	item, err := suite.repos.ItemRepo.FindItemByID(suite.ctx, "item_1")
	suite.Require().NoError(err)
	suite.Nil(item.LastSuccessfulUpdate)
}

func (suite *RefreshServiceTestSuite) TestRefreshItem_NotFound() {
	_, err := suite.service.RefreshItem(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *RefreshServiceTestSuite) TestPublishFailureIsNotFatal() {
	suite.publisher.err = errors.New("broker down")
	suite.teller.On("FetchBalance", mock.Anything, "acc_1").Return(domain.FreshBalance(decimal.NewFromInt(100)), nil).Once()
	suite.teller.On("FetchTransactions", mock.Anything, "acc_1").Return(domain.TransactionBatch{}, nil).Once()

	_, err := suite.service.RefreshAccount(suite.ctx, "acc_1")
	suite.NoError(err)
}

func TestRefreshServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RefreshServiceTestSuite))
}
