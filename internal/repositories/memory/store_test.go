package memory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := NewRepositoryProvider(store)

	boom := errors.New("boom")
	err := store.RunInTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		require.NoError(t, tx.Accounts.SaveAccount(ctx, domain.Account{AccountID: "acc_1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.AccountRepo.FindAccountByID(ctx, "acc_1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, store.Commits())
}

func TestInsertHistoryIfAbsent_OnePerDay(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewRepositoryProvider(store).AccountRepo

	morning := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	added, err := repo.InsertHistoryIfAbsent(ctx, domain.AccountHistory{AccountID: "acc_1", SnapshotDate: morning, Balance: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.InsertHistoryIfAbsent(ctx, domain.AccountHistory{AccountID: "acc_1", SnapshotDate: evening, Balance: decimal.NewFromInt(20)})
	require.NoError(t, err)
	assert.False(t, added)

	history, err := repo.ListAccountHistory(ctx, "acc_1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(history[0].Balance))
}

func TestListTransactionsWithAccounts_OrderAndJoin(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := NewRepositoryProvider(store)

	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, domain.Account{AccountID: "acc_1", Name: "Checking", InstitutionName: "Bank", Subtype: "Checking"}))
	for _, txn := range []domain.Transaction{
		{TransactionID: "b", AccountID: "acc_1", Date: "2024-01-02"},
		{TransactionID: "a", AccountID: "acc_1", Date: "2024-01-02"},
		{TransactionID: "c", AccountID: "acc_1", Date: "2024-01-03"},
	} {
		_, err := repos.TransactionRepo.UpsertTransaction(ctx, txn)
		require.NoError(t, err)
	}

	rows, total, err := repos.TransactionRepo.ListTransactionsWithAccounts(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].TransactionID)
	assert.Equal(t, "a", rows[1].TransactionID)
	assert.Equal(t, "Checking", rows[0].AccountName)

	rows, _, err = repos.TransactionRepo.ListTransactionsWithAccounts(ctx, 2, 4)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListTransactionsWithAccounts_OffsetBounds(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositoryProvider(NewStore())
	_, err := repos.TransactionRepo.UpsertTransaction(ctx, domain.Transaction{TransactionID: "a", AccountID: "acc_1"})
	require.NoError(t, err)

	for _, offset := range []int{-66, math.MaxInt} {
		rows, total, err := repos.TransactionRepo.ListTransactionsWithAccounts(ctx, 50, offset)
		require.NoError(t, err)
		assert.Empty(t, rows, "offset=%d", offset)
		assert.Equal(t, 1, total)
	}

	rows, _, err := repos.TransactionRepo.ListTransactionsWithAccounts(ctx, math.MaxInt, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSaveItem_KeepsOwnerAndProducts(t *testing.T) {
	ctx := context.Background()
	repo := NewRepositoryProvider(NewStore()).ItemRepo

	_, err := repo.SaveItem(ctx, domain.PlaidItem{ItemID: "item_1", UserID: "u1", AccessToken: "old", Products: []string{"transactions"}})
	require.NoError(t, err)

	saved, err := repo.SaveItem(ctx, domain.PlaidItem{ItemID: "item_1", UserID: "u2", AccessToken: "new", InstitutionName: "Chase"})
	require.NoError(t, err)
	assert.Equal(t, "u1", saved.UserID)
	assert.Equal(t, "new", saved.AccessToken)
	assert.Equal(t, "Chase", saved.InstitutionName)
	assert.Equal(t, []string{"transactions"}, saved.Products)
}
