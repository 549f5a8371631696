package sinks

import (
	"context"

	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
)

// Archiver stores raw provider payloads for later inspection.
type Archiver interface {
	// Archive writes data under name and returns the location it was written to.
	Archive(ctx context.Context, name string, data []byte) (string, error)
}

// ExportWriter renders a snapshot of the store into files under dir.
type ExportWriter interface {
	Write(dir string, snap domain.ExportSnapshot) ([]string, error)
}

// EventPublisher emits domain events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// AccountRefreshedEvent is published after a refresh touched an account.
type AccountRefreshedEvent struct {
	AccountID            string `json:"account_id"`
	Provider             string `json:"provider"`
	Updated              bool   `json:"updated"`
	BalanceStale         bool   `json:"balance_stale"`
	TransactionsUpserted int    `json:"transactions_upserted"`
	RefreshedAt          string `json:"refreshed_at"`
}

// TopicAccountRefreshed is the default topic for AccountRefreshedEvent.
const TopicAccountRefreshed = "account.refreshed"

// EventKey partitions refresh events by account.
func (e AccountRefreshedEvent) EventKey() string {
	return e.AccountID
}
