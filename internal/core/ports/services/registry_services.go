package services

import (
	"context"

	"github.com/ketsolab/ketoan/internal/core/domain"
	"github.com/ketsolab/ketoan/internal/dto"
)

// RegistrySvcFacade owns the chart-of-accounts hierarchy and its invariants.
type RegistrySvcFacade interface {
	// Register adds a detail account under an existing parent. It fails with
	// apperrors.ErrValidation (bad code, parent mismatch), ErrDuplicate, or
	// ErrNotFound (unknown parent).
	Register(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)
	Lookup(ctx context.Context, code string) (*domain.Account, error)
	Children(ctx context.Context, code string) ([]domain.Account, error)
	ListChart(ctx context.Context) ([]domain.Account, error)
	// Deactivate soft-deletes. Rejected for system accounts, accounts with
	// children, or accounts with ledger postings.
	Deactivate(ctx context.Context, code string, userID string) error
	// ValidateForPosting enforces that a journal line may only target a leaf,
	// active account.
	ValidateForPosting(ctx context.Context, code string) error
}
