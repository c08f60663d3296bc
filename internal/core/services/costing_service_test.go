package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ketsolab/ketoan/internal/apperrors"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/core/services"
	"github.com/ketsolab/ketoan/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var moveDate = time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

func newCostingService(allowNegative bool) portssvc.CostingSvcFacade {
	store := memory.NewStore()
	return services.NewCostingService(memory.NewInventoryRepository(store), allowNegative)
}

func TestApplyReceiptComputesMovingAverage(t *testing.T) {
	ctx := context.Background()
	svc := newCostingService(false)

	pos, err := svc.ApplyReceipt(ctx, "P1", 100, 90_000, moveDate, "PNK-001")
	require.NoError(t, err)
	assert.Equal(t, int64(100), pos.QuantityOnHand)
	assert.Equal(t, int64(90_000), pos.AverageUnitCost)

	// (100*90,000 + 50*110,000) / 150 = 96,666.67 -> 96,667.
	pos, err = svc.ApplyReceipt(ctx, "P1", 50, 110_000, moveDate, "PNK-002")
	require.NoError(t, err)
	assert.Equal(t, int64(150), pos.QuantityOnHand)
	assert.Equal(t, int64(96_667), pos.AverageUnitCost)
}

func TestApplyReceiptZeroQuantityIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc := newCostingService(false)

	_, err := svc.ApplyReceipt(ctx, "P1", 100, 95_000, moveDate, "PNK-001")
	require.NoError(t, err)

	pos, err := svc.ApplyReceipt(ctx, "P1", 0, 999_999, moveDate, "PNK-002")
	require.NoError(t, err)
	assert.Equal(t, int64(100), pos.QuantityOnHand)
	assert.Equal(t, int64(95_000), pos.AverageUnitCost)

	// No stock card entry for the no-op.
	card, err := svc.StockCard(ctx, "P1")
	require.NoError(t, err)
	assert.Len(t, card, 1)
}

func TestApplyIssueUsesCurrentAverage(t *testing.T) {
	ctx := context.Background()
	svc := newCostingService(false)

	_, err := svc.ApplyReceipt(ctx, "P1", 150, 95_000, moveDate, "PNK-001")
	require.NoError(t, err)

	pos, unitCost, err := svc.ApplyIssue(ctx, "P1", 50, moveDate, "PXK-001")
	require.NoError(t, err)
	assert.Equal(t, int64(95_000), unitCost)
	assert.Equal(t, int64(100), pos.QuantityOnHand)
	// Issues never move the average.
	assert.Equal(t, int64(95_000), pos.AverageUnitCost)
	assert.Equal(t, int64(50*95_000), 50*unitCost)
}

func TestApplyIssueInsufficientStock(t *testing.T) {
	ctx := context.Background()
	svc := newCostingService(false)

	_, err := svc.ApplyReceipt(ctx, "P1", 10, 100_000, moveDate, "PNK-001")
	require.NoError(t, err)

	_, _, err = svc.ApplyIssue(ctx, "P1", 11, moveDate, "PXK-001")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestApplyIssueNegativeStockAllowedByConfig(t *testing.T) {
	ctx := context.Background()
	svc := newCostingService(true)

	_, err := svc.ApplyReceipt(ctx, "P1", 10, 100_000, moveDate, "PNK-001")
	require.NoError(t, err)

	pos, unitCost, err := svc.ApplyIssue(ctx, "P1", 15, moveDate, "PXK-001")
	require.NoError(t, err)
	assert.Equal(t, int64(-5), pos.QuantityOnHand)
	assert.Equal(t, int64(100_000), unitCost)
}

func TestStockCardRecordsRunningBalance(t *testing.T) {
	ctx := context.Background()
	svc := newCostingService(false)

	_, err := svc.ApplyReceipt(ctx, "P1", 100, 90_000, moveDate, "PNK-001")
	require.NoError(t, err)
	_, _, err = svc.ApplyIssue(ctx, "P1", 30, moveDate, "PXK-001")
	require.NoError(t, err)

	card, err := svc.StockCard(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, card, 2)

	assert.Equal(t, int64(100), card[0].QtyIn)
	assert.Equal(t, int64(100), card[0].BalanceQty)
	assert.Equal(t, int64(30), card[1].QtyOut)
	assert.Equal(t, int64(70), card[1].BalanceQty)
	assert.Equal(t, int64(90_000), card[1].UnitCost)
}

func TestConcurrentReceiptsKeepQuantityConsistent(t *testing.T) {
	ctx := context.Background()
	svc := newCostingService(false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplyReceipt(ctx, "P1", 10, 100_000, moveDate, "PNK")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	pos, err := svc.Position(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), pos.QuantityOnHand)
	assert.Equal(t, int64(100_000), pos.AverageUnitCost)
}

func TestEnsureAvailable(t *testing.T) {
	ctx := context.Background()
	svc := newCostingService(false)

	_, err := svc.ApplyReceipt(ctx, "P1", 10, 100_000, moveDate, "PNK-001")
	require.NoError(t, err)

	assert.NoError(t, svc.EnsureAvailable(ctx, "P1", 10))
	assert.ErrorIs(t, svc.EnsureAvailable(ctx, "P1", 11), apperrors.ErrValidation)
	assert.ErrorIs(t, svc.EnsureAvailable(ctx, "P2", 1), apperrors.ErrValidation)
	assert.ErrorIs(t, svc.EnsureAvailable(ctx, "P1", 0), apperrors.ErrValidation)

	// The check itself never moves stock.
	pos, err := svc.Position(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), pos.QuantityOnHand)

	permissive := newCostingService(true)
	assert.NoError(t, permissive.EnsureAvailable(ctx, "P9", 100))
}

func TestPositionUnknownProduct(t *testing.T) {
	svc := newCostingService(false)
	_, err := svc.Position(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
