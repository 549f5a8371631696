package plaid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/SscSPs/finance_dashboard_app/internal/core/ports/providers"
)

const (
	// accountTransactionDays is how far back a single account refresh looks.
	accountTransactionDays = 30
	transactionsTimeout    = 10 * time.Second
)

// Provider adapts the Plaid client to the provider ports.
type Provider struct {
	client *Client
	now    func() time.Time
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithClock replaces the clock used for transaction windows.
func WithClock(now func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.now = now
	}
}

// NewProvider creates a Plaid provider.
func NewProvider(client *Client, opts ...ProviderOption) *Provider {
	p := &Provider{client: client, now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var (
	_ providers.AccountProvider = (*Provider)(nil)
	_ providers.Linker          = (*Provider)(nil)
	_ providers.ItemSyncer      = (*Provider)(nil)
	_ providers.HoldingsFetcher = (*Provider)(nil)
)

func (p *Provider) Name() domain.LinkProvider {
	return domain.ProviderPlaid
}

// FetchBalance reads the cached current balance of the account. Liability balances
// are negated so they match the stored sign.
func (p *Provider) FetchBalance(ctx context.Context, account domain.Account) (domain.BalanceReading, error) {
	resp, err := p.client.GetAccounts(ctx, account.AccessToken)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return domain.StaleBalance(apiErr.Error()), nil
		}
		return domain.BalanceReading{}, err
	}

	for _, a := range resp.Accounts {
		if a.AccountID != account.AccountID {
			continue
		}
		if !a.Balances.Current.Valid {
			return domain.StaleBalance("current balance missing from provider response"), nil
		}
		return domain.FreshBalance(domain.SignedBalance(account.Type, a.Balances.Current.Decimal)), nil
	}
	return domain.StaleBalance(fmt.Sprintf("account %s not found in provider response", account.AccountID)), nil
}

// FetchTransactions returns the last 30 calendar days of transactions of the account.
func (p *Provider) FetchTransactions(ctx context.Context, account domain.Account) (domain.TransactionBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, transactionsTimeout)
	defer cancel()

	end := domain.Today(p.now())
	start := end.AddDate(0, 0, -accountTransactionDays)
	resp, raw, err := p.client.GetTransactions(ctx, account.AccessToken, start, end, &TransactionsGetOptions{
		AccountIDs: []string{account.AccountID},
	})
	if err != nil {
		return domain.TransactionBatch{}, err
	}

	txns := make([]domain.Transaction, 0, len(resp.Transactions))
	for _, t := range resp.Transactions {
		txns = append(txns, toDomainTransaction(t, account.AccountID))
	}
	return domain.TransactionBatch{Transactions: txns, Raw: raw}, nil
}

// ListAccounts returns the accounts of an item as provider-neutral records.
func (p *Provider) ListAccounts(ctx context.Context, accessToken string) ([]domain.AccountRecord, error) {
	resp, err := p.client.GetAccounts(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	records := make([]domain.AccountRecord, 0, len(resp.Accounts))
	for _, a := range resp.Accounts {
		records = append(records, toAccountRecord(a, resp.Item, accessToken))
	}
	return records, nil
}

func (p *Provider) CreateLinkToken(ctx context.Context, userID string, products []string) (string, error) {
	resp, err := p.client.CreateLinkToken(ctx, userID, products)
	if err != nil {
		return "", err
	}
	return resp.LinkToken, nil
}

func (p *Provider) ExchangePublicToken(ctx context.Context, publicToken string) (*domain.LinkedItem, error) {
	resp, err := p.client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, err
	}
	return &domain.LinkedItem{ItemID: resp.ItemID, AccessToken: resp.AccessToken}, nil
}

func (p *Provider) GetItem(ctx context.Context, accessToken string) (*domain.ItemInfo, error) {
	resp, err := p.client.GetItem(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &domain.ItemInfo{
		ItemID:          resp.Item.ItemID,
		InstitutionName: resp.Item.InstitutionName,
		Products:        resp.Item.Products,
		Status:          itemStatus(resp.Item),
	}, nil
}

// SyncItem fetches balances and every transaction of the item for [start, end].
func (p *Provider) SyncItem(ctx context.Context, accessToken string, start, end time.Time) (*domain.ItemSync, error) {
	resp, raw, err := p.client.GetTransactions(ctx, accessToken, start, end, nil)
	if err != nil {
		return nil, err
	}

	sync := &domain.ItemSync{
		Accounts:     make([]domain.AccountRecord, 0, len(resp.Accounts)),
		Transactions: make([]domain.Transaction, 0, len(resp.Transactions)),
		Raw:          raw,
	}
	for _, a := range resp.Accounts {
		sync.Accounts = append(sync.Accounts, toAccountRecord(a, resp.Item, accessToken))
	}
	for _, t := range resp.Transactions {
		sync.Transactions = append(sync.Transactions, toDomainTransaction(t, t.AccountID))
	}
	return sync, nil
}

// GetHoldings returns the holdings of an item joined with their securities.
func (p *Provider) GetHoldings(ctx context.Context, accessToken string) ([]domain.Holding, error) {
	resp, err := p.client.GetHoldings(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	securities := make(map[string]Security, len(resp.Securities))
	for _, s := range resp.Securities {
		securities[s.SecurityID] = s
	}

	holdings := make([]domain.Holding, 0, len(resp.Holdings))
	for _, h := range resp.Holdings {
		sec := securities[h.SecurityID]
		holdings = append(holdings, domain.Holding{
			AccountID:        h.AccountID,
			SecurityID:       h.SecurityID,
			SecurityName:     valueOr(sec.Name, domain.UnknownValue),
			Ticker:           sec.TickerSymbol,
			Quantity:         h.Quantity,
			InstitutionValue: h.InstitutionValue,
		})
	}
	return holdings, nil
}

func toAccountRecord(a Account, item Item, accessToken string) domain.AccountRecord {
	rec := domain.AccountRecord{
		ID:              a.AccountID,
		Name:            a.Name,
		Type:            a.Type,
		Subtype:         a.Subtype,
		Status:          itemStatus(item),
		InstitutionName: item.InstitutionName,
		AccessToken:     accessToken,
		ItemID:          item.ItemID,
	}
	if a.Balances.Current.Valid {
		current := a.Balances.Current.Decimal
		rec.CurrentBalance = &current
	}
	return rec
}

func toDomainTransaction(t Transaction, accountID string) domain.Transaction {
	if accountID == "" {
		accountID = t.AccountID
	}
	merchantType := ""
	if len(t.Counterparties) > 0 {
		merchantType = t.Counterparties[0].Type
	}
	return domain.Transaction{
		TransactionID: t.TransactionID,
		AccountID:     accountID,
		Amount:        t.Amount,
		Date:          valueOr(t.Date, t.AuthorizedDate),
		Description:   valueOr(t.Name, t.MerchantName),
		Category:      domain.LastCategory(t.Category),
		MerchantName:  t.MerchantName,
		MerchantType:  merchantType,
	}.Normalized()
}

// itemStatus renders the item health the way it is stored.
func itemStatus(item Item) string {
	if item.Error != nil && item.Error.ErrorCode != "" {
		return item.Error.ErrorCode
	}
	if item.ItemID == "" {
		return domain.UnknownValue
	}
	return "good"
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
