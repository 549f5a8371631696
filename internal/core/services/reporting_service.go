package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsproviders "github.com/SscSPs/finance_dashboard_app/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type reportingService struct {
	BaseService
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionReader
	itemRepo        portsrepo.PlaidItemRepository
	groupRepo       portsrepo.AccountGroupRepository
	holdings        portsproviders.HoldingsFetcher
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithHoldingsFetcher enables the holdings view.
func WithHoldingsFetcher(f portsproviders.HoldingsFetcher) ReportingServiceOption {
	return func(s *reportingService) {
		s.holdings = f
	}
}

// WithReportingClock overrides the time source.
func WithReportingClock(clock func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.clock = clock
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repos portsrepo.RepositoryProvider, options ...ReportingServiceOption) portssvc.ReportingSvcFacade {
	svc := &reportingService{
		accountRepo:     repos.AccountRepo,
		transactionRepo: repos.TransactionRepo,
		itemRepo:        repos.ItemRepo,
		groupRepo:       repos.GroupRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// CashFlow buckets transactions by calendar month. Positive amounts are income,
// negative amounts count as expenses by magnitude.
func (s *reportingService) CashFlow(ctx context.Context) (*domain.CashFlowReport, error) {
	txns, err := s.transactionRepo.ListAllTransactions(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions for cash flow")
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	type bucket struct{ income, expenses decimal.Decimal }
	buckets := map[time.Time]*bucket{}
	skipped := 0
	for _, t := range txns {
		date, err := time.Parse(domain.DateLayout, t.Date)
		if err != nil {
			skipped++
			continue
		}
		key := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		switch {
		case t.Amount.IsPositive():
			b.income = b.income.Add(t.Amount)
		case t.Amount.IsNegative():
			b.expenses = b.expenses.Add(t.Amount.Abs())
		}
	}
	if skipped > 0 {
		s.LogWarn(ctx, "Skipped transactions with invalid dates", slog.Int("count", skipped))
	}

	months := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		months = append(months, k)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	report := &domain.CashFlowReport{
		Months:            make([]domain.MonthlyCashFlow, 0, len(months)),
		TotalIncome:       decimal.Zero,
		TotalExpenses:     decimal.Zero,
		TotalTransactions: len(txns),
	}
	for _, m := range months {
		b := buckets[m]
		report.Months = append(report.Months, domain.MonthlyCashFlow{
			Month:    m.Format("January 2006"),
			Income:   b.income,
			Expenses: b.expenses,
		})
		report.TotalIncome = report.TotalIncome.Add(b.income)
		report.TotalExpenses = report.TotalExpenses.Add(b.expenses)
	}
	return report, nil
}

// Institutions lists Plaid items with their accounts, followed by accounts linked
// without an item grouped by institution name.
func (s *reportingService) Institutions(ctx context.Context) ([]domain.InstitutionSummary, error) {
	items, err := s.itemRepo.ListItems(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list items")
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	byItem := map[string][]domain.InstitutionAccount{}
	unlinked := map[string][]domain.InstitutionAccount{}
	for _, a := range accounts {
		a = a.WithPlaceholders()
		row := domain.InstitutionAccount{
			AccountID: a.AccountID,
			Name:      a.Name,
			Type:      a.Type,
			Subtype:   a.Subtype,
			Balance:   a.Balance,
		}
		if a.ItemID != "" {
			byItem[a.ItemID] = append(byItem[a.ItemID], row)
		} else {
			unlinked[a.InstitutionName] = append(unlinked[a.InstitutionName], row)
		}
	}

	out := make([]domain.InstitutionSummary, 0, len(items)+len(unlinked))
	for _, it := range items {
		rows := byItem[it.ItemID]
		if rows == nil {
			rows = []domain.InstitutionAccount{}
		}
		products := it.Products
		if products == nil {
			products = []string{}
		}
		name := it.InstitutionName
		if name == "" {
			name = domain.UnknownValue
		}
		out = append(out, domain.InstitutionSummary{
			InstitutionName:      name,
			ItemID:               it.ItemID,
			Products:             products,
			Status:               it.Status,
			LastSuccessfulUpdate: domain.FormatLastUpdate(it.LastSuccessfulUpdate),
			Accounts:             rows,
		})
	}

	names := make([]string, 0, len(unlinked))
	for n := range unlinked {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		out = append(out, domain.InstitutionSummary{
			InstitutionName:      n,
			Products:             []string{},
			LastSuccessfulUpdate: domain.NeverRefreshed,
			Accounts:             unlinked[n],
		})
	}
	return out, nil
}

func (s *reportingService) Holdings(ctx context.Context, itemID string) ([]domain.Holding, error) {
	if s.holdings == nil {
		return nil, fmt.Errorf("%w: holdings are not configured", apperrors.ErrProviderUnavailable)
	}
	item, err := s.itemRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	holdings, err := s.holdings.GetHoldings(ctx, item.AccessToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch holdings", slog.String("item_id", itemID))
		return nil, fmt.Errorf("failed to fetch holdings of item %s: %w", itemID, err)
	}
	return holdings, nil
}

func (s *reportingService) SaveGroup(ctx context.Context, userID string, name string, accountIDs []string) (*domain.AccountGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", apperrors.ErrValidation)
	}
	if len(accountIDs) == 0 {
		return nil, fmt.Errorf("%w: a group needs at least one account", apperrors.ErrValidation)
	}

	seen := make(map[string]struct{}, len(accountIDs))
	ids := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, err := s.accountRepo.FindAccountByID(ctx, id); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown account %s", apperrors.ErrValidation, id)
			}
			return nil, err
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	group := domain.AccountGroup{
		GroupID:    uuid.NewString(),
		UserID:     userID,
		Name:       name,
		AccountIDs: ids,
		CreatedAt:  s.Now(),
	}
	if err := s.groupRepo.SaveGroup(ctx, group); err != nil {
		s.LogError(ctx, err, "Failed to save group", slog.String("name", name))
		return nil, err
	}
	return &group, nil
}

func (s *reportingService) ListGroups(ctx context.Context, userID string) ([]domain.AccountGroup, error) {
	groups, err := s.groupRepo.ListGroupsByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list groups", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}
