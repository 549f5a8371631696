package pgsql

import (
	portsrepo "github.com/SscSPs/finance_dashboard_app/internal/core/ports/repositories"
	"github.com/SscSPs/finance_dashboard_app/internal/utils"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool, sealer *utils.Sealer) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(dbPool, sealer),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		ItemRepo:        newPgxPlaidItemRepository(dbPool, sealer),
		GroupRepo:       newPgxGroupRepository(dbPool),
		TxManager:       NewStore(dbPool, sealer),
	}
}
