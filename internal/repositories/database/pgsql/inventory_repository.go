package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxInventoryRepository struct {
	BaseRepository
}

func newPgxInventoryRepository(pool *pgxpool.Pool) portsrepo.InventoryRepositoryFacade {
	return &PgxInventoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InventoryRepositoryFacade = (*PgxInventoryRepository)(nil)

func (r *PgxInventoryRepository) FindPosition(ctx context.Context, productID string) (*domain.InventoryPosition, error) {
	var pos domain.InventoryPosition
	err := r.db(ctx).QueryRow(ctx, `
		SELECT product_id, quantity_on_hand, average_unit_cost, updated_at
		FROM inventory_positions WHERE product_id = $1`, productID).
		Scan(&pos.ProductID, &pos.QuantityOnHand, &pos.AverageUnitCost, &pos.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
		}
		return nil, fmt.Errorf("failed to query position of %s: %w", productID, err)
	}
	return &pos, nil
}

func (r *PgxInventoryRepository) SavePosition(ctx context.Context, pos domain.InventoryPosition) error {
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO inventory_positions (product_id, quantity_on_hand, average_unit_cost, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id) DO UPDATE
		SET quantity_on_hand = EXCLUDED.quantity_on_hand,
		    average_unit_cost = EXCLUDED.average_unit_cost,
		    updated_at = EXCLUDED.updated_at`,
		pos.ProductID, pos.QuantityOnHand, pos.AverageUnitCost, pos.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save position of %s: %w", pos.ProductID, err)
	}
	return nil
}

func (r *PgxInventoryRepository) ListPositions(ctx context.Context) ([]domain.InventoryPosition, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT product_id, quantity_on_hand, average_unit_cost, updated_at
		FROM inventory_positions ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.InventoryPosition
	for rows.Next() {
		var pos domain.InventoryPosition
		if err := rows.Scan(&pos.ProductID, &pos.QuantityOnHand, &pos.AverageUnitCost, &pos.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

func (r *PgxInventoryRepository) AppendStockCard(ctx context.Context, entry domain.StockCardEntry) error {
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO stock_card (product_id, document_no, moved_at, qty_in, qty_out, unit_cost, balance_qty, balance_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ProductID, entry.DocumentNo, entry.MovedAt, entry.QtyIn, entry.QtyOut, entry.UnitCost, entry.BalanceQty, entry.BalanceCost,
	)
	if err != nil {
		return fmt.Errorf("failed to append stock card for %s: %w", entry.ProductID, err)
	}
	return nil
}

func (r *PgxInventoryRepository) ListStockCard(ctx context.Context, productID string) ([]domain.StockCardEntry, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT product_id, document_no, moved_at, qty_in, qty_out, unit_cost, balance_qty, balance_cost
		FROM stock_card WHERE product_id = $1 ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock card of %s: %w", productID, err)
	}
	defer rows.Close()

	var entries []domain.StockCardEntry
	for rows.Next() {
		var e domain.StockCardEntry
		if err := rows.Scan(&e.ProductID, &e.DocumentNo, &e.MovedAt, &e.QtyIn, &e.QtyOut, &e.UnitCost, &e.BalanceQty, &e.BalanceCost); err != nil {
			return nil, fmt.Errorf("failed to scan stock card entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
