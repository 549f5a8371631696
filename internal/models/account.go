package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Account is the accounts table row.
type Account struct {
	AccountID       string          `db:"account_id"`
	UserID          string          `db:"user_id"`
	ItemID          sql.NullString  `db:"item_id"` // Nullable, Teller accounts have no item
	Name            string          `db:"name"`
	Type            string          `db:"type"`
	Subtype         string          `db:"subtype"`
	Status          string          `db:"status"`
	InstitutionName string          `db:"institution_name"`
	Balance         decimal.Decimal `db:"balance"`
	LastRefreshed   *time.Time      `db:"last_refreshed"`
	LinkProvider    string          `db:"link_provider"`
	AccessToken     string          `db:"access_token"` // Sealed
	AuditFields
}

// AccountDetails is the account_details table row.
type AccountDetails struct {
	AccountID    string `db:"account_id"`
	EnrollmentID string `db:"enrollment_id"`
	RefreshLinks []byte `db:"refresh_links"` // JSONB
}

// AccountHistory is the account_history table row.
type AccountHistory struct {
	AccountID    string          `db:"account_id"`
	SnapshotDate time.Time       `db:"snapshot_date"`
	Balance      decimal.Decimal `db:"balance"`
	CreatedAt    time.Time       `db:"created_at"`
}

// AccountGroup is the account_groups table row.
type AccountGroup struct {
	GroupID    string    `db:"group_id"`
	UserID     string    `db:"user_id"`
	Name       string    `db:"name"`
	AccountIDs []string  `db:"account_ids"`
	CreatedAt  time.Time `db:"created_at"`
}
