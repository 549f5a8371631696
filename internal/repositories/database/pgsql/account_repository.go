package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	"github.com/SscSPs/finance_dashboard_app/internal/models"
	"github.com/SscSPs/finance_dashboard_app/internal/utils"
	"github.com/SscSPs/finance_dashboard_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, user_id, item_id, name, type, subtype, status, institution_name,
	balance, last_refreshed, link_provider, access_token, created_at, updated_at`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(db DBTX, sealer *utils.Sealer) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{db: db, sealer: sealer}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func (r *PgxAccountRepository) scanAccount(row rowScanner) (*domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.UserID,
		&m.ItemID,
		&m.Name,
		&m.Type,
		&m.Subtype,
		&m.Status,
		&m.InstitutionName,
		&m.Balance,
		&m.LastRefreshed,
		&m.LinkProvider,
		&m.AccessToken,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	token, err := r.openToken(m.AccessToken)
	if err != nil {
		return nil, err
	}
	m.AccessToken = token
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

func (r *PgxAccountRepository) findOne(ctx context.Context, query string, accountID string) (*domain.Account, error) {
	acc, err := r.scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return acc, nil
}

func (r *PgxAccountRepository) list(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := r.scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	return r.findOne(ctx, query, accountID)
}

// FindAccountByIDForUpdate retrieves an account and locks its row. Only meaningful inside RunInTx.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1 FOR UPDATE;`
	return r.findOne(ctx, query, accountID)
}

// ListAccounts retrieves every account ordered by institution and name.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY institution_name, name, account_id;`
	return r.list(ctx, query)
}

// ListAccountsByUser retrieves the accounts owned by a user.
func (r *PgxAccountRepository) ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY institution_name, name, account_id;`
	return r.list(ctx, query, userID)
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	token, err := r.sealToken(m.AccessToken)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = r.db.Exec(ctx, query,
		m.AccountID,
		m.UserID,
		m.ItemID,
		m.Name,
		m.Type,
		m.Subtype,
		m.Status,
		m.InstitutionName,
		m.Balance,
		m.LastRefreshed,
		m.LinkProvider,
		token,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// UpdateAccount overwrites the provider supplied fields of an existing account.
// Owner and creation time are kept.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	token, err := r.sealToken(m.AccessToken)
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts
		SET name = $2, access_token = $3, type = $4, balance = $5, subtype = $6, status = $7,
		    institution_name = $8, last_refreshed = $9, link_provider = $10, item_id = $11, updated_at = $12
		WHERE account_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		m.AccountID,
		m.Name,
		token,
		m.Type,
		m.Balance,
		m.Subtype,
		m.Status,
		m.InstitutionName,
		m.LastRefreshed,
		m.LinkProvider,
		m.ItemID,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, m.AccountID)
	}
	return nil
}

// UpdateRefreshState sets the balance and refresh time of an account.
func (r *PgxAccountRepository) UpdateRefreshState(ctx context.Context, accountID string, balance decimal.Decimal, refreshedAt time.Time) error {
	query := `UPDATE accounts SET balance = $2, last_refreshed = $3, updated_at = $3 WHERE account_id = $1;`
	tag, err := r.db.Exec(ctx, query, accountID, balance, refreshedAt)
	if err != nil {
		return fmt.Errorf("failed to update refresh state of account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return nil
}

// FindAccountDetails retrieves the provider metadata of an account.
func (r *PgxAccountRepository) FindAccountDetails(ctx context.Context, accountID string) (*domain.AccountDetails, error) {
	query := `SELECT account_id, enrollment_id, refresh_links FROM account_details WHERE account_id = $1;`
	var m models.AccountDetails
	err := r.db.QueryRow(ctx, query, accountID).Scan(&m.AccountID, &m.EnrollmentID, &m.RefreshLinks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: details for account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to find details for account %s: %w", accountID, err)
	}
	details := mapping.ToDomainAccountDetails(m)
	return &details, nil
}

// UpsertAccountDetails creates or replaces the details row of an account.
func (r *PgxAccountRepository) UpsertAccountDetails(ctx context.Context, details domain.AccountDetails) error {
	m, err := mapping.ToModelAccountDetails(details)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO account_details (account_id, enrollment_id, refresh_links)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE
		SET enrollment_id = EXCLUDED.enrollment_id, refresh_links = EXCLUDED.refresh_links;
	`
	if _, err := r.db.Exec(ctx, query, m.AccountID, m.EnrollmentID, m.RefreshLinks); err != nil {
		return fmt.Errorf("failed to upsert details for account %s: %w", m.AccountID, err)
	}
	return nil
}

// InsertHistoryIfAbsent adds a daily snapshot unless one exists for the same day.
func (r *PgxAccountRepository) InsertHistoryIfAbsent(ctx context.Context, history domain.AccountHistory) (bool, error) {
	m := mapping.ToModelAccountHistory(history)
	query := `
		INSERT INTO account_history (account_id, snapshot_date, balance, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, snapshot_date) DO NOTHING;
	`
	tag, err := r.db.Exec(ctx, query, m.AccountID, m.SnapshotDate, m.Balance, m.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert history for account %s: %w", m.AccountID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListAccountHistory retrieves the snapshots of an account, oldest first.
func (r *PgxAccountRepository) ListAccountHistory(ctx context.Context, accountID string) ([]domain.AccountHistory, error) {
	query := `
		SELECT account_id, snapshot_date, balance, created_at
		FROM account_history
		WHERE account_id = $1
		ORDER BY snapshot_date;
	`
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for account %s: %w", accountID, err)
	}
	defer rows.Close()

	history := []domain.AccountHistory{}
	for rows.Next() {
		var m models.AccountHistory
		if err := rows.Scan(&m.AccountID, &m.SnapshotDate, &m.Balance, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history = append(history, mapping.ToDomainAccountHistory(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return history, nil
}
