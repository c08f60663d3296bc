package pgsql

import (
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgsql adapter over one connection pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   newPgxAccountRepository(dbPool),
		LedgerRepo:    newPgxLedgerRepository(dbPool),
		DocumentRepo:  newPgxDocumentRepository(dbPool),
		InventoryRepo: newPgxInventoryRepository(dbPool),
		TxRunner:      NewTxRunner(dbPool),
	}
}
