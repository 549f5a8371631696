package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	"github.com/SscSPs/finance_dashboard_app/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	"github.com/SscSPs/finance_dashboard_app/internal/models"
	"github.com/SscSPs/finance_dashboard_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `transaction_id, account_id, amount, date, description, category,
	merchant_name, merchant_type, created_at, updated_at`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(db DBTX) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{db: db}}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row rowScanner, extra ...any) (models.Transaction, error) {
	var m models.Transaction
	dest := []any{
		&m.TransactionID,
		&m.AccountID,
		&m.Amount,
		&m.Date,
		&m.Description,
		&m.Category,
		&m.MerchantName,
		&m.MerchantType,
		&m.CreatedAt,
		&m.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return m, err
}

// FindTransactionByID retrieves a transaction by its provider id.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// UpsertTransaction inserts the transaction or overwrites every mutable field of the
// stored row. xmax is zero only for freshly inserted tuples.
func (r *PgxTransactionRepository) UpsertTransaction(ctx context.Context, txn domain.Transaction) (bool, error) {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (transaction_id) DO UPDATE
		SET account_id = EXCLUDED.account_id,
		    amount = EXCLUDED.amount,
		    date = EXCLUDED.date,
		    description = EXCLUDED.description,
		    category = EXCLUDED.category,
		    merchant_name = EXCLUDED.merchant_name,
		    merchant_type = EXCLUDED.merchant_type,
		    updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted;
	`
	var inserted bool
	err := r.db.QueryRow(ctx, query,
		m.TransactionID,
		m.AccountID,
		m.Amount,
		m.Date,
		m.Description,
		m.Category,
		m.MerchantName,
		m.MerchantType,
		m.CreatedAt,
		m.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert transaction %s: %w", m.TransactionID, err)
	}
	return inserted, nil
}

// ListTransactionsWithAccounts returns one page of transactions joined with their account,
// newest date first, and the total transaction count.
func (r *PgxTransactionRepository) ListTransactionsWithAccounts(ctx context.Context, limit, offset int) ([]domain.TransactionWithAccount, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	if offset < 0 || offset >= total {
		return []domain.TransactionWithAccount{}, total, nil
	}

	query := `
		SELECT t.transaction_id, t.account_id, t.amount, t.date, t.description, t.category,
		       t.merchant_name, t.merchant_type, t.created_at, t.updated_at,
		       COALESCE(a.name, ''), COALESCE(a.institution_name, ''), COALESCE(a.subtype, '')
		FROM transactions t
		LEFT JOIN accounts a ON a.account_id = t.account_id
		ORDER BY t.date DESC, t.transaction_id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	out := []domain.TransactionWithAccount{}
	for rows.Next() {
		var row domain.TransactionWithAccount
		m, err := scanTransaction(rows, &row.AccountName, &row.InstitutionName, &row.Subtype)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		row.Transaction = mapping.ToDomainTransaction(m)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return out, total, nil
}

// ListAllTransactions returns every stored transaction ordered by date.
func (r *PgxTransactionRepository) ListAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY date, transaction_id;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	out := []domain.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		out = append(out, mapping.ToDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return out, nil
}
