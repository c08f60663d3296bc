package dto

import "github.com/ketsolab/ketoan/internal/core/domain"

// TrialBalanceResponse wraps the trial balance rows with their grand totals.
type TrialBalanceResponse struct {
	Rows        []domain.TrialBalanceRow `json:"rows"`
	TotalDebit  int64                    `json:"totalDebit"`
	TotalCredit int64                    `json:"totalCredit"`
}

// ToTrialBalanceResponse totals the rows once for transport.
func ToTrialBalanceResponse(rows []domain.TrialBalanceRow) TrialBalanceResponse {
	resp := TrialBalanceResponse{Rows: rows}
	for _, r := range rows {
		resp.TotalDebit += r.TotalDebit
		resp.TotalCredit += r.TotalCredit
	}
	return resp
}

// PositionsResponse wraps the inventory position snapshot list.
type PositionsResponse struct {
	Positions []domain.InventoryPosition `json:"positions"`
}

// StockCardResponse wraps one product's stock card.
type StockCardResponse struct {
	ProductID string                  `json:"productID"`
	Entries   []domain.StockCardEntry `json:"entries"`
}
