package repositories

import (
	"context"

	"github.com/ketsolab/ketoan/internal/core/domain"
)

// AccountReader provides read access to the chart of accounts.
type AccountReader interface {
	// FindAccountByCode returns apperrors.ErrNotFound when the code is unknown.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)
	// FindAccountsByCodes returns the accounts found, keyed by code. Missing
	// codes are simply absent from the map.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)
	// ListChildren returns the direct children of code (prefix plus one digit).
	ListChildren(ctx context.Context, code string) ([]domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountRepositoryFacade is the full persistence surface for the registry.
type AccountRepositoryFacade interface {
	AccountReader
	// SaveAccount returns apperrors.ErrDuplicate if the code already exists.
	SaveAccount(ctx context.Context, account domain.Account) error
	UpdateAccount(ctx context.Context, account domain.Account) error
}
