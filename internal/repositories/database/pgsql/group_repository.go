package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	"github.com/SscSPs/finance_dashboard_app/internal/models"
	"github.com/SscSPs/finance_dashboard_app/internal/utils/mapping"
)

type PgxGroupRepository struct {
	BaseRepository
}

func newPgxGroupRepository(db DBTX) *PgxGroupRepository {
	return &PgxGroupRepository{BaseRepository: BaseRepository{db: db}}
}

var _ portsrepo.AccountGroupRepository = (*PgxGroupRepository)(nil)

// SaveGroup inserts a new account group.
func (r *PgxGroupRepository) SaveGroup(ctx context.Context, group domain.AccountGroup) error {
	m := mapping.ToModelAccountGroup(group)
	query := `
		INSERT INTO account_groups (group_id, user_id, name, account_ids, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := r.db.Exec(ctx, query, m.GroupID, m.UserID, m.Name, m.AccountIDs, m.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: group %q already exists", apperrors.ErrDuplicate, m.Name)
		}
		return fmt.Errorf("failed to save group %s: %w", m.GroupID, err)
	}
	return nil
}

// ListGroupsByUser returns the groups of a user ordered by name.
func (r *PgxGroupRepository) ListGroupsByUser(ctx context.Context, userID string) ([]domain.AccountGroup, error) {
	query := `
		SELECT group_id, user_id, name, account_ids, created_at
		FROM account_groups
		WHERE user_id = $1
		ORDER BY name;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for user %s: %w", userID, err)
	}
	defer rows.Close()

	groups := []domain.AccountGroup{}
	for rows.Next() {
		var m models.AccountGroup
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Name, &m.AccountIDs, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, mapping.ToDomainAccountGroup(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}
	return groups, nil
}
