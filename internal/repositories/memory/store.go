// Package memory is an in-process implementation of the repository ports, used by
// the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type state struct {
	accounts     map[string]domain.Account
	details      map[string]domain.AccountDetails
	history      map[string]map[string]domain.AccountHistory // account id -> snapshot date
	transactions map[string]domain.Transaction
	items        map[string]domain.PlaidItem
	groups       []domain.AccountGroup
}

func newState() *state {
	return &state{
		accounts:     map[string]domain.Account{},
		details:      map[string]domain.AccountDetails{},
		history:      map[string]map[string]domain.AccountHistory{},
		transactions: map[string]domain.Transaction{},
		items:        map[string]domain.PlaidItem{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.details {
		links := make(map[string]string, len(v.RefreshLinks))
		for lk, lv := range v.RefreshLinks {
			links[lk] = lv
		}
		v.RefreshLinks = links
		c.details[k] = v
	}
	for k, days := range s.history {
		cd := make(map[string]domain.AccountHistory, len(days))
		for d, h := range days {
			cd[d] = h
		}
		c.history[k] = cd
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	c.groups = append([]domain.AccountGroup(nil), s.groups...)
	return c
}

// Store keeps all data in memory. Units of work are serialized and rolled back by
// restoring a snapshot taken when they began.
type Store struct {
	mu      sync.Mutex
	txMu    sync.Mutex
	st      *state
	commits int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Ensure Store implements portsrepo.TransactionManager
var _ portsrepo.TransactionManager = (*Store)(nil)

// NewRepositoryProvider exposes the store through the repository ports.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     &accountRepo{s: s},
		TransactionRepo: &transactionRepo{s: s},
		ItemRepo:        &itemRepo{s: s},
		GroupRepo:       &groupRepo{s: s},
		TxManager:       s,
	}
}

// RunInTx runs fn against the store and restores the prior state when fn fails.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	repos := portsrepo.TxRepositories{
		Accounts:     &accountRepo{s: s},
		Transactions: &transactionRepo{s: s},
		Items:        &itemRepo{s: s},
	}
	if err := fn(ctx, repos); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.commits++
	s.mu.Unlock()
	return nil
}

// Commits reports how many units of work have committed.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// HistoryCount reports the number of snapshots stored for an account.
func (s *Store) HistoryCount(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.history[accountID])
}

// TransactionCount reports the number of stored transactions.
func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.transactions)
}

type accountRepo struct{ s *Store }

var _ portsrepo.AccountRepositoryFacade = (*accountRepo)(nil)

func (r *accountRepo) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	acc, ok := r.s.st.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &acc, nil
}

func (r *accountRepo) FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.FindAccountByID(ctx, accountID)
}

func (r *accountRepo) filter(keep func(domain.Account) bool) []domain.Account {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Account{}
	for _, a := range r.s.st.accounts {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InstitutionName != out[j].InstitutionName {
			return out[i].InstitutionName < out[j].InstitutionName
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

func (r *accountRepo) ListAccounts(_ context.Context) ([]domain.Account, error) {
	return r.filter(func(domain.Account) bool { return true }), nil
}

func (r *accountRepo) ListAccountsByUser(_ context.Context, userID string) ([]domain.Account, error) {
	return r.filter(func(a domain.Account) bool { return a.UserID == userID }), nil
}

func (r *accountRepo) FindAccountDetails(_ context.Context, accountID string) (*domain.AccountDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.st.details[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: details for account %s", apperrors.ErrNotFound, accountID)
	}
	return &d, nil
}

func (r *accountRepo) SaveAccount(_ context.Context, account domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.accounts[account.AccountID]; ok {
		return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}
	r.s.st.accounts[account.AccountID] = account
	return nil
}

func (r *accountRepo) UpdateAccount(_ context.Context, account domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.st.accounts[account.AccountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}
	account.UserID = existing.UserID
	account.CreatedAt = existing.CreatedAt
	r.s.st.accounts[account.AccountID] = account
	return nil
}

func (r *accountRepo) UpsertAccountDetails(_ context.Context, details domain.AccountDetails) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if details.RefreshLinks == nil {
		details.RefreshLinks = map[string]string{}
	}
	r.s.st.details[details.AccountID] = details
	return nil
}

func (r *accountRepo) UpdateRefreshState(_ context.Context, accountID string, balance decimal.Decimal, refreshedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	acc, ok := r.s.st.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	acc.Balance = balance
	acc.LastRefreshed = &refreshedAt
	acc.UpdatedAt = refreshedAt
	r.s.st.accounts[accountID] = acc
	return nil
}

func (r *accountRepo) InsertHistoryIfAbsent(_ context.Context, history domain.AccountHistory) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := history.SnapshotDate.Format(domain.DateLayout)
	days, ok := r.s.st.history[history.AccountID]
	if !ok {
		days = map[string]domain.AccountHistory{}
		r.s.st.history[history.AccountID] = days
	}
	if _, exists := days[day]; exists {
		return false, nil
	}
	history.SnapshotDate = domain.Today(history.SnapshotDate)
	days[day] = history
	return true, nil
}

func (r *accountRepo) ListAccountHistory(_ context.Context, accountID string) ([]domain.AccountHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.AccountHistory{}
	for _, h := range r.s.st.history[accountID] {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SnapshotDate.Before(out[j].SnapshotDate) })
	return out, nil
}

type transactionRepo struct{ s *Store }

var _ portsrepo.TransactionRepositoryFacade = (*transactionRepo)(nil)

func (r *transactionRepo) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.st.transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return &t, nil
}

func (r *transactionRepo) UpsertTransaction(_ context.Context, txn domain.Transaction) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.st.transactions[txn.TransactionID]
	if ok {
		txn.CreatedAt = existing.CreatedAt
	}
	r.s.st.transactions[txn.TransactionID] = txn
	return !ok, nil
}

func (r *transactionRepo) sorted() []domain.Transaction {
	out := make([]domain.Transaction, 0, len(r.s.st.transactions))
	for _, t := range r.s.st.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].TransactionID < out[j].TransactionID
	})
	return out
}

func (r *transactionRepo) ListTransactionsWithAccounts(_ context.Context, limit, offset int) ([]domain.TransactionWithAccount, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted()
	total := len(all)
	if offset < 0 || offset >= total {
		return []domain.TransactionWithAccount{}, total, nil
	}
	end := total
	if limit >= 0 && limit < total-offset {
		end = offset + limit
	}
	out := make([]domain.TransactionWithAccount, 0, end-offset)
	for _, t := range all[offset:end] {
		row := domain.TransactionWithAccount{Transaction: t}
		if acc, ok := r.s.st.accounts[t.AccountID]; ok {
			row.AccountName = acc.Name
			row.InstitutionName = acc.InstitutionName
			row.Subtype = acc.Subtype
		}
		out = append(out, row)
	}
	return out, total, nil
}

func (r *transactionRepo) ListAllTransactions(_ context.Context) ([]domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted()
	// Oldest first, matching the SQL store.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

type itemRepo struct{ s *Store }

var _ portsrepo.PlaidItemRepository = (*itemRepo)(nil)

func (r *itemRepo) FindItemByID(_ context.Context, itemID string) (*domain.PlaidItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.st.items[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", apperrors.ErrNotFound, itemID)
	}
	return &item, nil
}

func (r *itemRepo) ListItems(_ context.Context) ([]domain.PlaidItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.PlaidItem, 0, len(r.s.st.items))
	for _, it := range r.s.st.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InstitutionName != out[j].InstitutionName {
			return out[i].InstitutionName < out[j].InstitutionName
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}

func (r *itemRepo) SaveItem(_ context.Context, item domain.PlaidItem) (*domain.PlaidItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.st.items[item.ItemID]; ok {
		existing.AccessToken = item.AccessToken
		existing.InstitutionName = item.InstitutionName
		existing.Status = item.Status
		existing.UpdatedAt = item.UpdatedAt
		item = existing
	}
	r.s.st.items[item.ItemID] = item
	return &item, nil
}

func (r *itemRepo) MarkItemRefreshed(_ context.Context, itemID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.st.items[itemID]
	if !ok {
		return fmt.Errorf("%w: item %s", apperrors.ErrNotFound, itemID)
	}
	item.LastSuccessfulUpdate = &at
	item.UpdatedAt = at
	r.s.st.items[itemID] = item
	return nil
}

type groupRepo struct{ s *Store }

var _ portsrepo.AccountGroupRepository = (*groupRepo)(nil)

func (r *groupRepo) SaveGroup(_ context.Context, group domain.AccountGroup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.st.groups {
		if g.UserID == group.UserID && g.Name == group.Name {
			return fmt.Errorf("%w: group %q already exists", apperrors.ErrDuplicate, group.Name)
		}
	}
	r.s.st.groups = append(r.s.st.groups, group)
	return nil
}

func (r *groupRepo) ListGroupsByUser(_ context.Context, userID string) ([]domain.AccountGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.AccountGroup{}
	for _, g := range r.s.st.groups {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
