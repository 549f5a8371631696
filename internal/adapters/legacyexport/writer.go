// Package legacyexport writes the JSON files older dashboard tooling reads:
// LinkItems.json, LinkAccounts.json and Transactions.json.
package legacyexport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/SscSPs/finance_dashboard_app/internal/core/ports/sinks"
	"github.com/SscSPs/finance_dashboard_app/internal/utils"
	"github.com/shopspring/decimal"
)

const (
	ItemsFile        = "LinkItems.json"
	AccountsFile     = "LinkAccounts.json"
	TransactionsFile = "Transactions.json"
)

type itemEntry struct {
	InstitutionName string   `json:"institution_name"`
	ItemID          string   `json:"item_id"`
	AccessToken     string   `json:"access_token"`
	Products        []string `json:"products"`
	Status          string   `json:"status"`
}

type balances struct {
	Current decimal.Decimal `json:"current"`
}

type accountEntry struct {
	ItemID          string   `json:"item_id,omitempty"`
	AccountName     string   `json:"account_name"`
	Type            string   `json:"type"`
	Subtype         string   `json:"subtype"`
	Status          string   `json:"status"`
	InstitutionName string   `json:"institution_name"`
	LinkProvider    string   `json:"link_provider"`
	Balances        balances `json:"balances"`
	LastRefreshed   string   `json:"last_refreshed"`
}

type transactionEntry struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	MerchantName  string          `json:"merchant_name"`
	MerchantType  string          `json:"merchant_type"`
}

// Writer renders snapshots into a directory.
type Writer struct {
	includeSecrets bool
}

var _ sinks.ExportWriter = (*Writer)(nil)

// NewWriter returns a writer. Access tokens are masked unless includeSecrets is set.
func NewWriter(includeSecrets bool) *Writer {
	return &Writer{includeSecrets: includeSecrets}
}

// Write creates dir if needed and returns the paths of the written files.
func (w *Writer) Write(dir string, snap domain.ExportSnapshot) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create export dir %q: %w", dir, err)
	}

	files := []struct {
		name string
		body any
	}{
		{ItemsFile, w.items(snap.Items)},
		{AccountsFile, accounts(snap.Accounts)},
		{TransactionsFile, transactions(snap.Transactions)},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeJSON(path, f.body); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (w *Writer) items(items []domain.PlaidItem) map[string]itemEntry {
	out := make(map[string]itemEntry, len(items))
	for _, it := range items {
		token := it.AccessToken
		if !w.includeSecrets {
			token = utils.MaskSecret(token)
		}
		products := it.Products
		if products == nil {
			products = []string{}
		}
		out[it.ItemID] = itemEntry{
			InstitutionName: it.InstitutionName,
			ItemID:          it.ItemID,
			AccessToken:     token,
			Products:        products,
			Status:          it.Status,
		}
	}
	return out
}

func accounts(accs []domain.Account) map[string]accountEntry {
	out := make(map[string]accountEntry, len(accs))
	for _, a := range accs {
		a = a.WithPlaceholders()
		out[a.AccountID] = accountEntry{
			ItemID:          a.ItemID,
			AccountName:     a.Name,
			Type:            a.Type,
			Subtype:         a.Subtype,
			Status:          a.Status,
			InstitutionName: a.InstitutionName,
			LinkProvider:    string(a.LinkProvider),
			Balances:        balances{Current: a.Balance},
			LastRefreshed:   domain.FormatLastUpdate(a.LastRefreshed),
		}
	}
	return out
}

// transactions keeps the position of the first occurrence of each id and the
// values of the last.
func transactions(txns []domain.Transaction) []transactionEntry {
	index := make(map[string]int, len(txns))
	out := make([]transactionEntry, 0, len(txns))
	for _, t := range txns {
		t = t.Normalized()
		e := transactionEntry{
			TransactionID: t.TransactionID,
			AccountID:     t.AccountID,
			Amount:        t.Amount,
			Date:          t.Date,
			Name:          t.Description,
			Category:      t.Category,
			MerchantName:  t.MerchantName,
			MerchantType:  t.MerchantType,
		}
		if i, ok := index[t.TransactionID]; ok {
			out[i] = e
			continue
		}
		index[t.TransactionID] = len(out)
		out = append(out, e)
	}
	return out
}

func writeJSON(path string, body any) error {
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
