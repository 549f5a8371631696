package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/finance_dashboard_app/internal/apperrors"
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	"github.com/SscSPs/finance_dashboard_app/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so repositories run
// unchanged inside or outside a unit of work.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db     DBTX
	sealer *utils.Sealer
}

// sealToken encrypts an access token before it is written.
func (r *BaseRepository) sealToken(token string) (string, error) {
	sealed, err := r.sealer.Seal(token)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to seal access token", err)
	}
	return sealed, nil
}

// openToken decrypts an access token read from the store.
func (r *BaseRepository) openToken(stored string) (string, error) {
	token, err := r.sealer.Open(stored)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to open access token", err)
	}
	return token, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Store opens units of work over a connection pool.
type Store struct {
	pool   *pgxpool.Pool
	sealer *utils.Sealer
}

// Ensure Store implements portsrepo.TransactionManager
var _ portsrepo.TransactionManager = (*Store)(nil)

// NewStore creates a Store. A nil sealer stores access tokens in the clear.
func NewStore(pool *pgxpool.Pool, sealer *utils.Sealer) *Store {
	return &Store{pool: pool, sealer: sealer}
}

// RunInTx begins a database transaction, hands fn repositories bound to it and
// commits when fn succeeds.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repos portsrepo.TxRepositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	// No-op once the transaction is committed
	defer func() { _ = tx.Rollback(ctx) }()

	repos := portsrepo.TxRepositories{
		Accounts:     newPgxAccountRepository(tx, s.sealer),
		Transactions: newPgxTransactionRepository(tx),
		Items:        newPgxPlaidItemRepository(tx, s.sealer),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}
