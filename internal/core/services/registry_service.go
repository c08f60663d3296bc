package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/dto"
)

var (
	ErrInvalidCode     = errors.New("account code must be 3-5 digits with first digit 1-8")
	ErrParentMismatch  = errors.New("account code must extend its parent code by exactly one digit")
	ErrHasChildren     = errors.New("account has child accounts")
	ErrIsSystemAccount = errors.New("system accounts cannot be modified")
	ErrHasPostings     = errors.New("account has ledger postings")
	ErrAccountInactive = errors.New("account is inactive")
	ErrPostingToParent = errors.New("journal lines may only target leaf accounts")
)

// registryService owns the chart of accounts.
type registryService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
}

// NewRegistryService creates the chart-of-accounts registry.
func NewRegistryService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade) portssvc.RegistrySvcFacade {
	return &registryService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

var _ portssvc.RegistrySvcFacade = (*registryService)(nil)

// Register adds an account to the chart after validating the code-derived
// hierarchy rules.
func (s *registryService) Register(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if !domain.ValidAccountCode(req.Code) {
		return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrValidation, req.Code, ErrInvalidCode)
	}

	derivedParent := domain.ParentCodeOf(req.Code)
	if req.ParentCode != nil && *req.ParentCode != derivedParent {
		return nil, fmt.Errorf("%w: code %s under parent %s (%s)", apperrors.ErrValidation, req.Code, *req.ParentCode, ErrParentMismatch)
	}

	if derivedParent != "" {
		parent, err := s.accountRepo.FindAccountByCode(ctx, derivedParent)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s", apperrors.ErrNotFound, derivedParent)
			}
			s.LogError(ctx, err, "Failed to look up parent account", slog.String("parent_code", derivedParent))
			return nil, fmt.Errorf("failed to look up parent account %s: %w", derivedParent, err)
		}
		if !parent.IsActive() {
			return nil, fmt.Errorf("%w: parent account %s is inactive", apperrors.ErrValidation, derivedParent)
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		Code:           req.Code,
		Name:           req.Name,
		Nature:         req.Nature,
		Status:         domain.AccountActive,
		DetailRequired: req.DetailRequired,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, req.Code)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account %s: %w", req.Code, err)
	}

	// The new account turns its parent into a group account.
	if derivedParent != "" {
		parent, err := s.accountRepo.FindAccountByCode(ctx, derivedParent)
		if err == nil && !parent.IsParent {
			parent.IsParent = true
			parent.LastUpdatedAt = now
			parent.LastUpdatedBy = userID
			if err := s.accountRepo.UpdateAccount(ctx, *parent); err != nil {
				s.LogError(ctx, err, "Failed to mark parent as group account", slog.String("parent_code", derivedParent))
				return nil, fmt.Errorf("failed to update parent account %s: %w", derivedParent, err)
			}
		}
	}

	s.LogInfo(ctx, "Account registered", slog.String("code", account.Code), slog.String("name", account.Name))
	return &account, nil
}

// Lookup returns one account by code.
func (s *registryService) Lookup(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

// Children returns the direct children of an account.
func (s *registryService) Children(ctx context.Context, code string) ([]domain.Account, error) {
	if _, err := s.Lookup(ctx, code); err != nil {
		return nil, err
	}
	children, err := s.accountRepo.ListChildren(ctx, code)
	if err != nil {
		s.LogError(ctx, err, "Failed to list children", slog.String("code", code))
		return nil, fmt.Errorf("failed to list children of %s: %w", code, err)
	}
	return children, nil
}

// ListChart returns the whole chart ordered by code.
func (s *registryService) ListChart(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list chart of accounts")
		return nil, fmt.Errorf("failed to list chart of accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// Deactivate soft-deletes an account. System accounts, group accounts and
// accounts with ledger history stay.
func (s *registryService) Deactivate(ctx context.Context, code string, userID string) error {
	account, err := s.Lookup(ctx, code)
	if err != nil {
		return err
	}

	if account.IsSystem() {
		return fmt.Errorf("%w: %s (%s)", apperrors.ErrValidation, code, ErrIsSystemAccount)
	}

	children, err := s.accountRepo.ListChildren(ctx, code)
	if err != nil {
		s.LogError(ctx, err, "Failed to check children before deactivation", slog.String("code", code))
		return fmt.Errorf("failed to check children of %s: %w", code, err)
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: %s (%s)", apperrors.ErrValidation, code, ErrHasChildren)
	}

	hasPostings, err := s.ledgerRepo.HasLinesForAccount(ctx, code)
	if err != nil {
		s.LogError(ctx, err, "Failed to check ledger postings before deactivation", slog.String("code", code))
		return fmt.Errorf("failed to check postings of %s: %w", code, err)
	}
	if hasPostings {
		return fmt.Errorf("%w: %s (%s)", apperrors.ErrValidation, code, ErrHasPostings)
	}

	now := time.Now().UTC()
	account.Status = domain.AccountInactive
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("code", code))
		return fmt.Errorf("failed to deactivate account %s: %w", code, err)
	}

	s.LogInfo(ctx, "Account deactivated", slog.String("code", code))
	return nil
}

// ValidateForPosting enforces the leaf+active rule for journal line targets.
func (s *registryService) ValidateForPosting(ctx context.Context, code string) error {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
		}
		return err
	}
	if !account.IsActive() {
		return fmt.Errorf("%w: account %s (%s)", apperrors.ErrValidation, code, ErrAccountInactive)
	}
	if account.IsParent {
		return fmt.Errorf("%w: account %s (%s)", apperrors.ErrValidation, code, ErrPostingToParent)
	}
	return nil
}
