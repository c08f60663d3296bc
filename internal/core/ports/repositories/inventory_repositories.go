package repositories

import (
	"context"

	"github.com/ketsolab/ketoan/internal/core/domain"
)

// InventoryRepositoryFacade persists weighted-average positions and the
// stock card. Positions are only ever written by the costing calculator.
type InventoryRepositoryFacade interface {
	// FindPosition returns apperrors.ErrNotFound for an unseen product.
	FindPosition(ctx context.Context, productID string) (*domain.InventoryPosition, error)
	SavePosition(ctx context.Context, pos domain.InventoryPosition) error
	ListPositions(ctx context.Context) ([]domain.InventoryPosition, error)
	AppendStockCard(ctx context.Context, entry domain.StockCardEntry) error
	ListStockCard(ctx context.Context, productID string) ([]domain.StockCardEntry, error)
}
