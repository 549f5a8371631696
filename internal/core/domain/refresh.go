package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// BalanceReading is the outcome of asking a provider for an account balance.
// A stale reading carries no usable value; the stored balance must be kept.
type BalanceReading struct {
	Value  decimal.Decimal
	Stale  bool
	Reason string
}

// FreshBalance builds a usable reading.
func FreshBalance(v decimal.Decimal) BalanceReading {
	return BalanceReading{Value: v}
}

// StaleBalance builds a reading that must not overwrite the stored balance.
func StaleBalance(reason string) BalanceReading {
	return BalanceReading{Stale: true, Reason: reason}
}

// RefreshResult reports what a single account refresh changed.
type RefreshResult struct {
	AccountID            string          `json:"accountID"`
	Provider             LinkProvider    `json:"provider"`
	Updated              bool            `json:"updated"`
	BalanceUpdated       bool            `json:"balanceUpdated"`
	BalanceStale         bool            `json:"balanceStale"`
	StaleReason          string          `json:"staleReason,omitempty"`
	PreviousBalance      decimal.Decimal `json:"previousBalance"`
	Balance              decimal.Decimal `json:"balance"`
	TransactionsUpserted int             `json:"transactionsUpserted"`
	TransactionsSkipped  int             `json:"transactionsSkipped"`
	TransactionsError    string          `json:"transactionsError,omitempty"`
	HistoryAdded         bool            `json:"historyAdded"`
	RefreshedAt          time.Time       `json:"refreshedAt"`
	Error                string          `json:"error,omitempty"` // set by RefreshAll when the account could not be refreshed
}

// ItemRefreshResult reports an item-level refresh.
type ItemRefreshResult struct {
	ItemID              string    `json:"itemID"`
	TransactionsFetched int       `json:"transactionsFetched"`
	AccountsUpdated     int       `json:"accountsUpdated"`
	StartDate           string    `json:"startDate"`
	EndDate             string    `json:"endDate"`
	RefreshedAt         time.Time `json:"refreshedAt"`
}

// CooldownError is returned when an item was refreshed too recently.
type CooldownError struct {
	SinceLast time.Duration
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Last refresh was %d hours ago. Please wait %d hours before refreshing again.",
		int(e.SinceLast.Hours()), int(e.Remaining.Hours()))
}

func (e *CooldownError) Unwrap() error {
	return apperrors.ErrCooldown
}

const archiveStampLayout = "20060102150405"

// ItemRefreshArchiveName names the raw payload of an item refresh.
func ItemRefreshArchiveName(at time.Time) string {
	return "TRANSACTION_REFRESH_FILE." + at.UTC().Format(archiveStampLayout)
}

// AccountRefreshArchiveName names the raw transaction payload of one account refresh.
func AccountRefreshArchiveName(accountID string, at time.Time) string {
	return "TRANSACTIONS_RAW." + accountID + "." + at.UTC().Format(archiveStampLayout)
}
