package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// costingService maintains moving weighted-average unit costs. The average is
// order-dependent and non-commutative, so all updates for one product are
// serialized behind a per-product mutex. Positions are never recomputed
// retroactively: a late voucher consumes the average at processing time.
type costingService struct {
	BaseService
	inventoryRepo      portsrepo.InventoryRepositoryFacade
	allowNegativeStock bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCostingService creates the weighted-average costing calculator.
func NewCostingService(inventoryRepo portsrepo.InventoryRepositoryFacade, allowNegativeStock bool) portssvc.CostingSvcFacade {
	return &costingService{
		inventoryRepo:      inventoryRepo,
		allowNegativeStock: allowNegativeStock,
		locks:              make(map[string]*sync.Mutex),
	}
}

var _ portssvc.CostingSvcFacade = (*costingService)(nil)

// productLock returns the mutex serializing updates for one product.
func (s *costingService) productLock(productID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[productID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[productID] = l
	}
	return l
}

// currentPosition loads the position, treating an unseen product as empty.
func (s *costingService) currentPosition(ctx context.Context, productID string) (domain.InventoryPosition, error) {
	pos, err := s.inventoryRepo.FindPosition(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.InventoryPosition{ProductID: productID}, nil
		}
		return domain.InventoryPosition{}, err
	}
	return *pos, nil
}

// ApplyReceipt folds a receipt into the moving average:
// newAvg = (qty*avg + inQty*inCost) / (qty + inQty), rounded half-up to VND.
func (s *costingService) ApplyReceipt(ctx context.Context, productID string, qty, unitCost int64, at time.Time, documentNo string) (*domain.InventoryPosition, error) {
	if qty < 0 || unitCost < 0 {
		return nil, fmt.Errorf("%w: receipt quantity and unit cost must be non-negative", apperrors.ErrValidation)
	}

	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	pos, err := s.currentPosition(ctx, productID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load inventory position", slog.String("product_id", productID))
		return nil, fmt.Errorf("failed to load position for %s: %w", productID, err)
	}

	if qty == 0 {
		// Zero-quantity receipt is a no-op by contract.
		return &pos, nil
	}

	newQty := pos.QuantityOnHand + qty
	if newQty != 0 {
		oldValue := decimal.NewFromInt(pos.QuantityOnHand).Mul(decimal.NewFromInt(pos.AverageUnitCost))
		inValue := decimal.NewFromInt(qty).Mul(decimal.NewFromInt(unitCost))
		pos.AverageUnitCost = accounting.RoundVND(oldValue.Add(inValue).Div(decimal.NewFromInt(newQty)))
	}
	// A zero denominator (receipt closing out a negative balance) keeps the
	// prior average.
	pos.QuantityOnHand = newQty
	pos.UpdatedAt = at

	if err := s.inventoryRepo.SavePosition(ctx, pos); err != nil {
		s.LogError(ctx, err, "Failed to save inventory position", slog.String("product_id", productID))
		return nil, fmt.Errorf("failed to save position for %s: %w", productID, err)
	}
	if err := s.inventoryRepo.AppendStockCard(ctx, domain.StockCardEntry{
		ProductID:   productID,
		DocumentNo:  documentNo,
		MovedAt:     at,
		QtyIn:       qty,
		UnitCost:    unitCost,
		BalanceQty:  pos.QuantityOnHand,
		BalanceCost: pos.AverageUnitCost,
	}); err != nil {
		s.LogError(ctx, err, "Failed to append stock card entry", slog.String("product_id", productID))
		return nil, fmt.Errorf("failed to append stock card for %s: %w", productID, err)
	}

	s.LogDebug(ctx, "Receipt applied",
		slog.String("product_id", productID),
		slog.Int64("qty", qty),
		slog.Int64("new_avg", pos.AverageUnitCost))
	return &pos, nil
}

// ApplyIssue removes stock at the current average and returns the unit cost
// used for the issue. The average itself is unchanged by an issue.
func (s *costingService) ApplyIssue(ctx context.Context, productID string, qty int64, at time.Time, documentNo string) (*domain.InventoryPosition, int64, error) {
	if qty <= 0 {
		return nil, 0, fmt.Errorf("%w: issue quantity must be positive", apperrors.ErrValidation)
	}

	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	pos, err := s.currentPosition(ctx, productID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load inventory position", slog.String("product_id", productID))
		return nil, 0, fmt.Errorf("failed to load position for %s: %w", productID, err)
	}

	if pos.QuantityOnHand < qty {
		if !s.allowNegativeStock {
			return nil, 0, fmt.Errorf("%w: product %s has %d on hand, issue of %d requested (%s)",
				apperrors.ErrValidation, productID, pos.QuantityOnHand, qty, ErrInsufficientStock)
		}
		s.LogWarn(ctx, "Issue drives stock negative",
			slog.String("product_id", productID),
			slog.Int64("on_hand", pos.QuantityOnHand),
			slog.Int64("qty", qty))
	}

	unitCostUsed := pos.AverageUnitCost
	pos.QuantityOnHand -= qty
	pos.UpdatedAt = at

	if err := s.inventoryRepo.SavePosition(ctx, pos); err != nil {
		s.LogError(ctx, err, "Failed to save inventory position", slog.String("product_id", productID))
		return nil, 0, fmt.Errorf("failed to save position for %s: %w", productID, err)
	}
	if err := s.inventoryRepo.AppendStockCard(ctx, domain.StockCardEntry{
		ProductID:   productID,
		DocumentNo:  documentNo,
		MovedAt:     at,
		QtyOut:      qty,
		UnitCost:    unitCostUsed,
		BalanceQty:  pos.QuantityOnHand,
		BalanceCost: pos.AverageUnitCost,
	}); err != nil {
		s.LogError(ctx, err, "Failed to append stock card entry", slog.String("product_id", productID))
		return nil, 0, fmt.Errorf("failed to append stock card for %s: %w", productID, err)
	}

	s.LogDebug(ctx, "Issue applied",
		slog.String("product_id", productID),
		slog.Int64("qty", qty),
		slog.Int64("unit_cost_used", unitCostUsed))
	return &pos, unitCostUsed, nil
}

// EnsureAvailable verifies qty could be issued under the current position and
// the negative-stock policy. It mutates nothing.
func (s *costingService) EnsureAvailable(ctx context.Context, productID string, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: issue quantity must be positive", apperrors.ErrValidation)
	}
	if s.allowNegativeStock {
		return nil
	}

	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	pos, err := s.currentPosition(ctx, productID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load inventory position", slog.String("product_id", productID))
		return fmt.Errorf("failed to load position for %s: %w", productID, err)
	}
	if pos.QuantityOnHand < qty {
		return fmt.Errorf("%w: product %s has %d on hand, issue of %d requested (%s)",
			apperrors.ErrValidation, productID, pos.QuantityOnHand, qty, ErrInsufficientStock)
	}
	return nil
}

// Position returns the current snapshot for one product.
func (s *costingService) Position(ctx context.Context, productID string) (*domain.InventoryPosition, error) {
	pos, err := s.inventoryRepo.FindPosition(ctx, productID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find inventory position", slog.String("product_id", productID))
		}
		return nil, err
	}
	return pos, nil
}

// Positions returns all position snapshots.
func (s *costingService) Positions(ctx context.Context) ([]domain.InventoryPosition, error) {
	positions, err := s.inventoryRepo.ListPositions(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list inventory positions")
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	if positions == nil {
		return []domain.InventoryPosition{}, nil
	}
	return positions, nil
}

// StockCard returns the movement history for one product.
func (s *costingService) StockCard(ctx context.Context, productID string) ([]domain.StockCardEntry, error) {
	entries, err := s.inventoryRepo.ListStockCard(ctx, productID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list stock card", slog.String("product_id", productID))
		return nil, fmt.Errorf("failed to list stock card for %s: %w", productID, err)
	}
	if entries == nil {
		return []domain.StockCardEntry{}, nil
	}
	return entries, nil
}
