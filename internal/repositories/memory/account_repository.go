package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
)

type accountRepository struct {
	store *Store
}

// NewAccountRepository creates the memory chart-of-accounts adapter.
func NewAccountRepository(store *Store) portsrepo.AccountRepositoryFacade {
	return &accountRepository{store: store}
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func (r *accountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	account, ok := r.store.accounts[code]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, code)
	}
	return &account, nil
}

func (r *accountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	found := make(map[string]domain.Account, len(codes))
	for _, code := range codes {
		if account, ok := r.store.accounts[code]; ok {
			found[code] = account
		}
	}
	return found, nil
}

func (r *accountRepository) ListChildren(ctx context.Context, code string) ([]domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var children []domain.Account
	for _, account := range r.store.accounts {
		if account.ParentCode() == code {
			children = append(children, account)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Code < children[j].Code })
	return children, nil
}

func (r *accountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	accounts := make([]domain.Account, 0, len(r.store.accounts))
	for _, account := range r.store.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.accounts[account.Code]; exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.Code)
	}
	r.store.accounts[account.Code] = account
	return nil
}

func (r *accountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.accounts[account.Code]; !exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.Code)
	}
	r.store.accounts[account.Code] = account
	return nil
}
