// Package memory provides the in-memory persistence backend. It is the
// default when no database URL is configured and the backend the service
// tests run against. All adapters share one Store guarded by a single lock;
// transactions serialize on a second lock so a posting sequence observes a
// stable store.
package memory

import (
	"context"
	"sync"

	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
)

// Store is the shared backing state of every memory adapter.
type Store struct {
	mu sync.RWMutex
	// txMu serializes WithinTx scopes. Individual repository calls stay safe
	// under mu alone; the transaction lock only guarantees that multi-step
	// sequences do not interleave.
	txMu sync.Mutex

	accounts  map[string]domain.Account
	entries   []domain.JournalEntry
	documents map[domain.SourceType]map[string]domain.SourceDocument
	positions map[string]domain.InventoryPosition
	stockCard map[string][]domain.StockCardEntry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]domain.Account),
		documents: make(map[domain.SourceType]map[string]domain.SourceDocument),
		positions: make(map[string]domain.InventoryPosition),
		stockCard: make(map[string][]domain.StockCardEntry),
	}
}

// NewRepositoryProvider wires every memory adapter over one shared store.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   NewAccountRepository(store),
		LedgerRepo:    NewLedgerRepository(store),
		DocumentRepo:  NewDocumentRepository(store),
		InventoryRepo: NewInventoryRepository(store),
		TxRunner:      NewTxRunner(store),
	}
}

// txRunner serializes transactional scopes on the store lock. There is no
// rollback: services are expected to validate before they mutate.
type txRunner struct {
	store *Store
}

// NewTxRunner creates the memory transaction runner.
func NewTxRunner(store *Store) portsrepo.TxRunner {
	return &txRunner{store: store}
}

func (r *txRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()
	return fn(ctx)
}
