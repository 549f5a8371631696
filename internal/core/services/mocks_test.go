package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockAccountProvider is a mock type for the AccountProvider interface
type MockAccountProvider struct {
	mock.Mock
	name domain.LinkProvider
}

func newMockProvider(name domain.LinkProvider) *MockAccountProvider {
	return &MockAccountProvider{name: name}
}

func (m *MockAccountProvider) Name() domain.LinkProvider {
	return m.name
}

func (m *MockAccountProvider) FetchBalance(ctx context.Context, account domain.Account) (domain.BalanceReading, error) {
	args := m.Called(ctx, account.AccountID)
	return args.Get(0).(domain.BalanceReading), args.Error(1)
}

func (m *MockAccountProvider) FetchTransactions(ctx context.Context, account domain.Account) (domain.TransactionBatch, error) {
	args := m.Called(ctx, account.AccountID)
	return args.Get(0).(domain.TransactionBatch), args.Error(1)
}

// MockPlaid is a mock type for the Plaid facing ports
type MockPlaid struct {
	mock.Mock
}

func (m *MockPlaid) ListAccounts(ctx context.Context, accessToken string) ([]domain.AccountRecord, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountRecord), args.Error(1)
}

func (m *MockPlaid) CreateLinkToken(ctx context.Context, userID string, products []string) (string, error) {
	args := m.Called(ctx, userID, products)
	return args.String(0), args.Error(1)
}

func (m *MockPlaid) ExchangePublicToken(ctx context.Context, publicToken string) (*domain.LinkedItem, error) {
	args := m.Called(ctx, publicToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkedItem), args.Error(1)
}

func (m *MockPlaid) GetItem(ctx context.Context, accessToken string) (*domain.ItemInfo, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemInfo), args.Error(1)
}

func (m *MockPlaid) SyncItem(ctx context.Context, accessToken string, start, end time.Time) (*domain.ItemSync, error) {
	args := m.Called(ctx, accessToken, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemSync), args.Error(1)
}

func (m *MockPlaid) GetHoldings(ctx context.Context, accessToken string) ([]domain.Holding, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Holding), args.Error(1)
}

type archivedPayload struct {
	name string
	data []byte
}

type recordingArchiver struct {
	mu    sync.Mutex
	saved []archivedPayload
}

func (a *recordingArchiver) Archive(_ context.Context, name string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = append(a.saved, archivedPayload{name: name, data: data})
	return "mem://" + name, nil
}

type publishedEvent struct {
	topic string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, event: event})
	return p.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
