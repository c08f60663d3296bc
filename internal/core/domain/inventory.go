package domain

import "time"

// InventoryPosition is the moving weighted-average state of one product.
// AverageUnitCost is integer VND, rounded half-up on every receipt.
type InventoryPosition struct {
	ProductID       string    `json:"productID"`
	QuantityOnHand  int64     `json:"quantityOnHand"`
	AverageUnitCost int64     `json:"averageUnitCost"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// StockCardEntry is one movement on a product's stock card, kept for
// inventory reports.
type StockCardEntry struct {
	ProductID   string    `json:"productID"`
	DocumentNo  string    `json:"documentNo"`
	MovedAt     time.Time `json:"movedAt"`
	QtyIn       int64     `json:"qtyIn"`
	QtyOut      int64     `json:"qtyOut"`
	UnitCost    int64     `json:"unitCost"`
	BalanceQty  int64     `json:"balanceQty"`
	BalanceCost int64     `json:"balanceCost"`
}
