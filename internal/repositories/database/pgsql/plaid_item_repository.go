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
)

const plaidItemColumns = `item_id, user_id, access_token, institution_name, product, status,
	last_successful_update, created_at, updated_at`

type PgxPlaidItemRepository struct {
	BaseRepository
}

func newPgxPlaidItemRepository(db DBTX, sealer *utils.Sealer) *PgxPlaidItemRepository {
	return &PgxPlaidItemRepository{BaseRepository: BaseRepository{db: db, sealer: sealer}}
}

var _ portsrepo.PlaidItemRepository = (*PgxPlaidItemRepository)(nil)

func (r *PgxPlaidItemRepository) scanItem(row rowScanner) (*domain.PlaidItem, error) {
	var m models.PlaidItem
	err := row.Scan(
		&m.ItemID,
		&m.UserID,
		&m.AccessToken,
		&m.InstitutionName,
		&m.Product,
		&m.Status,
		&m.LastSuccessfulUpdate,
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
	item := mapping.ToDomainPlaidItem(m)
	return &item, nil
}

// FindItemByID retrieves an item by its provider id.
func (r *PgxPlaidItemRepository) FindItemByID(ctx context.Context, itemID string) (*domain.PlaidItem, error) {
	query := `SELECT ` + plaidItemColumns + ` FROM plaid_items WHERE item_id = $1;`
	item, err := r.scanItem(r.db.QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: item %s", apperrors.ErrNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to find item %s: %w", itemID, err)
	}
	return item, nil
}

// ListItems retrieves every linked item ordered by institution.
func (r *PgxPlaidItemRepository) ListItems(ctx context.Context) ([]domain.PlaidItem, error) {
	query := `SELECT ` + plaidItemColumns + ` FROM plaid_items ORDER BY institution_name, item_id;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []domain.PlaidItem{}
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}
	return items, nil
}

// SaveItem inserts an item or refreshes the credential, institution and status of an
// existing one, returning the stored row.
func (r *PgxPlaidItemRepository) SaveItem(ctx context.Context, item domain.PlaidItem) (*domain.PlaidItem, error) {
	m := mapping.ToModelPlaidItem(item)
	token, err := r.sealToken(m.AccessToken)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO plaid_items (` + plaidItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (item_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    institution_name = EXCLUDED.institution_name,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + plaidItemColumns + `;
	`
	saved, err := r.scanItem(r.db.QueryRow(ctx, query,
		m.ItemID,
		m.UserID,
		token,
		m.InstitutionName,
		m.Product,
		m.Status,
		m.LastSuccessfulUpdate,
		m.CreatedAt,
		m.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to save item %s: %w", m.ItemID, err)
	}
	return saved, nil
}

// MarkItemRefreshed records a successful item-level refresh.
func (r *PgxPlaidItemRepository) MarkItemRefreshed(ctx context.Context, itemID string, at time.Time) error {
	query := `UPDATE plaid_items SET last_successful_update = $2, updated_at = $2 WHERE item_id = $1;`
	tag, err := r.db.Exec(ctx, query, itemID, at)
	if err != nil {
		return fmt.Errorf("failed to mark item %s refreshed: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: item %s", apperrors.ErrNotFound, itemID)
	}
	return nil
}
