package teller

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

type transaction struct {
	ID          string              `json:"id"`
	AccountID   string              `json:"account_id"`
	Amount      decimal.NullDecimal `json:"amount"`
	Date        string              `json:"date"`
	Description string              `json:"description"`
	Details     struct {
		Category     category     `json:"category"`
		Counterparty counterparty `json:"counterparty"`
	} `json:"details"`
}

// category accepts a string or a hierarchy list, keeping the most specific element.
type category string

func (c *category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = category(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*c = category(domain.LastCategory(list))
		return nil
	}
	*c = ""
	return nil
}

// counterparty accepts an object or a list of objects, keeping the first.
type counterparty struct {
	Name string
	Type string
}

func (c *counterparty) UnmarshalJSON(data []byte) error {
	type party struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '{':
		var p party
		if err := json.Unmarshal(data, &p); err == nil {
			c.Name, c.Type = p.Name, p.Type
		}
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
			var p party
			if err := json.Unmarshal(list[0], &p); err == nil {
				c.Name, c.Type = p.Name, p.Type
			}
		}
	}
	return nil
}

// parseTransactions accepts either a bare list or {"transactions": [...]}. Entries
// that cannot be decoded are counted in malformed and left out.
func parseTransactions(raw []byte, accountID string) (txns []domain.Transaction, malformed int, err error) {
	var list []json.RawMessage
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Transactions []json.RawMessage `json:"transactions"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, 0, fmt.Errorf("invalid transactions object: %w", err)
		}
		list = wrapped.Transactions
	} else if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, 0, fmt.Errorf("invalid transactions list: %w", err)
	}

	txns = make([]domain.Transaction, 0, len(list))
	for _, entry := range list {
		var t transaction
		if err := json.Unmarshal(entry, &t); err != nil {
			malformed++
			continue
		}
		amount := decimal.Zero
		if t.Amount.Valid {
			amount = t.Amount.Decimal
		}
		txns = append(txns, domain.Transaction{
			TransactionID: t.ID,
			AccountID:     accountID,
			Amount:        amount,
			Date:          t.Date,
			Description:   t.Description,
			Category:      string(t.Details.Category),
			MerchantName:  t.Details.Counterparty.Name,
			MerchantType:  t.Details.Counterparty.Type,
		}.Normalized())
	}
	return txns, malformed, nil
}
