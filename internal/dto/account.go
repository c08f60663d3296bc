package dto

import (
	"time"

	"github.com/ketsolab/ketoan/internal/core/domain"
)

// CreateAccountRequest defines the data needed to register a chart account.
// The acctcode rule checks digits-only, length 3..5, first digit 1..8.
type CreateAccountRequest struct {
	Code           string               `json:"code" binding:"required,acctcode"`
	Name           string               `json:"name" binding:"required"`
	ParentCode     *string              `json:"parentCode"` // Optional, must be code minus its last digit
	Nature         domain.AccountNature `json:"nature" binding:"required,oneof=DEBIT CREDIT BOTH"`
	DetailRequired bool                 `json:"detailRequired"`
}

// AccountResponse defines the data returned for a chart account.
type AccountResponse struct {
	Code           string               `json:"code"`
	Name           string               `json:"name"`
	ParentCode     string               `json:"parentCode,omitempty"`
	Level          int                  `json:"level"`
	Nature         domain.AccountNature `json:"nature"`
	Status         domain.AccountStatus `json:"status"`
	DetailRequired bool                 `json:"detailRequired"`
	IsParent       bool                 `json:"isParent"`
	CreatedAt      time.Time            `json:"createdAt"`
	LastUpdatedAt  time.Time            `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		Code:           acc.Code,
		Name:           acc.Name,
		ParentCode:     acc.ParentCode(),
		Level:          domain.LevelOf(acc.Code),
		Nature:         acc.Nature,
		Status:         acc.Status,
		DetailRequired: acc.DetailRequired,
		IsParent:       acc.IsParent,
		CreatedAt:      acc.CreatedAt,
		LastUpdatedAt:  acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ListAccountsResponse wraps the chart listing.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
