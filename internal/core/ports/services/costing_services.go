package services

import (
	"context"
	"time"

	"github.com/ketsolab/ketoan/internal/core/domain"
)

// CostingSvcFacade maintains moving weighted-average positions. Calls for the
// same product are serialized; the average is order-dependent.
type CostingSvcFacade interface {
	// ApplyReceipt folds a receipt into the product's moving average.
	ApplyReceipt(ctx context.Context, productID string, qty, unitCost int64, at time.Time, documentNo string) (*domain.InventoryPosition, error)
	// ApplyIssue removes stock at the current average and returns the unit
	// cost used. Fails with ErrValidation on insufficient stock unless
	// negative stock is allowed by configuration.
	ApplyIssue(ctx context.Context, productID string, qty int64, at time.Time, documentNo string) (*domain.InventoryPosition, int64, error)
	// EnsureAvailable checks that qty could be issued for the product right
	// now, without mutating anything. Callers issuing several lines check all
	// of them first so a failing line cannot leave earlier ones applied.
	EnsureAvailable(ctx context.Context, productID string, qty int64) error
	Position(ctx context.Context, productID string) (*domain.InventoryPosition, error)
	Positions(ctx context.Context) ([]domain.InventoryPosition, error)
	StockCard(ctx context.Context, productID string) ([]domain.StockCardEntry, error)
}
