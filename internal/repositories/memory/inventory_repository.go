package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
)

type inventoryRepository struct {
	store *Store
}

// NewInventoryRepository creates the memory inventory adapter.
func NewInventoryRepository(store *Store) portsrepo.InventoryRepositoryFacade {
	return &inventoryRepository{store: store}
}

var _ portsrepo.InventoryRepositoryFacade = (*inventoryRepository)(nil)

func (r *inventoryRepository) FindPosition(ctx context.Context, productID string) (*domain.InventoryPosition, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	pos, ok := r.store.positions[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
	}
	return &pos, nil
}

func (r *inventoryRepository) SavePosition(ctx context.Context, pos domain.InventoryPosition) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.positions[pos.ProductID] = pos
	return nil
}

func (r *inventoryRepository) ListPositions(ctx context.Context) ([]domain.InventoryPosition, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	positions := make([]domain.InventoryPosition, 0, len(r.store.positions))
	for _, pos := range r.store.positions {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].ProductID < positions[j].ProductID })
	return positions, nil
}

func (r *inventoryRepository) AppendStockCard(ctx context.Context, entry domain.StockCardEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.stockCard[entry.ProductID] = append(r.store.stockCard[entry.ProductID], entry)
	return nil
}

func (r *inventoryRepository) ListStockCard(ctx context.Context, productID string) ([]domain.StockCardEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.StockCardEntry{}, r.store.stockCard[productID]...), nil
}
