package teller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalancePayload is one of the response shapes the balances endpoint is known to return.
type BalancePayload interface {
	// Balance extracts the signed balance for an account of the given type.
	Balance(accountType string) (decimal.Decimal, error)
}

// flatBalance is {"available": "...", "ledger": "..."}.
type flatBalance struct {
	Available decimal.NullDecimal `json:"available"`
	Ledger    decimal.NullDecimal `json:"ledger"`
}

// Liability accounts report what is owed in ledger; it is stored negated.
func (b flatBalance) Balance(accountType string) (decimal.Decimal, error) {
	if domain.IsLiabilityType(accountType) {
		if !b.Ledger.Valid {
			return decimal.Zero, errors.New("ledger balance missing for liability account")
		}
		return b.Ledger.Decimal.Neg(), nil
	}
	if !b.Available.Valid {
		return decimal.Zero, errors.New("available balance missing")
	}
	return b.Available.Decimal, nil
}

// nestedBalance is {"balance": {"current": ...}}.
type nestedBalance struct {
	Current decimal.NullDecimal `json:"current"`
}

func (b nestedBalance) Balance(string) (decimal.Decimal, error) {
	if !b.Current.Valid {
		return decimal.Zero, errors.New("nested current balance missing")
	}
	return b.Current.Decimal, nil
}

// listBalance is {"balances": [{"current": ...}, ...]}; only the first entry counts.
type listBalance struct {
	Current decimal.NullDecimal
}

func (b listBalance) Balance(string) (decimal.Decimal, error) {
	if !b.Current.Valid {
		return decimal.Zero, errors.New("current balance missing from first balances entry")
	}
	return b.Current.Decimal, nil
}

// ParseBalancePayload picks the variant by the keys present in the object.
func ParseBalancePayload(raw []byte) (BalancePayload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("balance payload is not an object: %w", err)
	}

	if _, ok := fields["available"]; ok {
		var b flatBalance
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("invalid flat balance: %w", err)
		}
		return b, nil
	}
	if nested, ok := fields["balance"]; ok {
		var b nestedBalance
		if err := json.Unmarshal(nested, &b); err != nil {
			return nil, fmt.Errorf("invalid nested balance: %w", err)
		}
		return b, nil
	}
	if list, ok := fields["balances"]; ok {
		var entries []nestedBalance
		if err := json.Unmarshal(list, &entries); err != nil {
			return nil, fmt.Errorf("invalid balances list: %w", err)
		}
		if len(entries) == 0 {
			return nil, errors.New("balances list is empty")
		}
		return listBalance{Current: entries[0].Current}, nil
	}
	return nil, errors.New("unrecognized balance payload")
}
