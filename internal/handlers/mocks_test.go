package handlers_test

import (
	"context"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portssvc "github.com/SscSPs/finance_dashboard_app/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountHistory(ctx context.Context, accountID string) ([]domain.AccountHistory, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountHistory), args.Error(1)
}

func (m *MockAccountService) UpsertAccounts(ctx context.Context, userID string, provider domain.LinkProvider, records []domain.AccountRecord) (*domain.UpsertSummary, error) {
	args := m.Called(ctx, userID, provider, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UpsertSummary), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) UpsertTransactions(ctx context.Context, accountID string, txns []domain.Transaction) (*domain.TransactionUpsertResult, error) {
	args := m.Called(ctx, accountID, txns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionUpsertResult), args.Error(1)
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, page, pageSize int) (*domain.TransactionPage, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionPage), args.Error(1)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock RefreshService ---
type MockRefreshService struct {
	mock.Mock
}

func (m *MockRefreshService) RefreshAccount(ctx context.Context, accountID string) (*domain.RefreshResult, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshResult), args.Error(1)
}

func (m *MockRefreshService) RefreshItem(ctx context.Context, itemID string) (*domain.ItemRefreshResult, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemRefreshResult), args.Error(1)
}

func (m *MockRefreshService) RefreshAll(ctx context.Context, userID string) ([]domain.RefreshResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RefreshResult), args.Error(1)
}

var _ portssvc.RefreshSvcFacade = (*MockRefreshService)(nil)

// --- Mock LinkService ---
type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) CreateLinkToken(ctx context.Context, userID string, products []string) (string, error) {
	args := m.Called(ctx, userID, products)
	return args.String(0), args.Error(1)
}

func (m *MockLinkService) SavePublicToken(ctx context.Context, userID string, publicToken string) (*domain.LinkResult, error) {
	args := m.Called(ctx, userID, publicToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkResult), args.Error(1)
}

func (m *MockLinkService) EnrollTeller(ctx context.Context, userID string, accessToken string, enrollmentID string) (*domain.LinkResult, error) {
	args := m.Called(ctx, userID, accessToken, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkResult), args.Error(1)
}

var _ portssvc.LinkSvcFacade = (*MockLinkService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) CashFlow(ctx context.Context) (*domain.CashFlowReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashFlowReport), args.Error(1)
}

func (m *MockReportingService) Institutions(ctx context.Context) ([]domain.InstitutionSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstitutionSummary), args.Error(1)
}

func (m *MockReportingService) Holdings(ctx context.Context, itemID string) ([]domain.Holding, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Holding), args.Error(1)
}

func (m *MockReportingService) SaveGroup(ctx context.Context, userID string, name string, accountIDs []string) (*domain.AccountGroup, error) {
	args := m.Called(ctx, userID, name, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountGroup), args.Error(1)
}

func (m *MockReportingService) ListGroups(ctx context.Context, userID string) ([]domain.AccountGroup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountGroup), args.Error(1)
}

var _ portssvc.ReportingSvcFacade = (*MockReportingService)(nil)
