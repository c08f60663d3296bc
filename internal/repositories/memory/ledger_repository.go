package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	"github.com/ketsolab/ketoan/internal/utils/pagination"
)

type ledgerRepository struct {
	store *Store
}

// NewLedgerRepository creates the memory append-only journal adapter.
func NewLedgerRepository(store *Store) portsrepo.LedgerRepositoryFacade {
	return &ledgerRepository{store: store}
}

var _ portsrepo.LedgerRepositoryFacade = (*ledgerRepository)(nil)

func copyEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = append([]domain.JournalLine{}, e.Lines...)
	return e
}

func (r *ledgerRepository) AppendEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	entry = copyEntry(entry)
	entry.Seq = int64(len(r.store.entries)) + 1
	r.store.entries = append(r.store.entries, entry)
	stored := copyEntry(entry)
	return &stored, nil
}

func (r *ledgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for i := range r.store.entries {
		if r.store.entries[i].EntryID == entryID {
			entry := copyEntry(r.store.entries[i])
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
}

func (r *ledgerRepository) FindEntriesBySource(ctx context.Context, sourceType domain.SourceType, sourceID string) ([]domain.JournalEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var entries []domain.JournalEntry
	for i := range r.store.entries {
		if r.store.entries[i].SourceType == sourceType && r.store.entries[i].SourceID == sourceID {
			entries = append(entries, copyEntry(r.store.entries[i]))
		}
	}
	return entries, nil
}

func (r *ledgerRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	afterSeq, err := decodeAfterSeq(nextToken)
	if err != nil {
		return nil, nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var page []domain.JournalEntry
	for i := range r.store.entries {
		if r.store.entries[i].Seq <= afterSeq {
			continue
		}
		page = append(page, copyEntry(r.store.entries[i]))
		if len(page) == limit {
			break
		}
	}
	return page, nextTokenFor(page, limit), nil
}

func (r *ledgerRepository) ListLinesByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	afterSeq, err := decodeAfterSeq(nextToken)
	if err != nil {
		return nil, nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var page []domain.JournalEntry
	for i := range r.store.entries {
		entry := &r.store.entries[i]
		if entry.Seq <= afterSeq || !touchesAccount(entry, accountCode) {
			continue
		}
		page = append(page, copyEntry(*entry))
		if len(page) == limit {
			break
		}
	}
	return page, nextTokenFor(page, limit), nil
}

func (r *ledgerRepository) HasLinesForAccount(ctx context.Context, accountCode string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for i := range r.store.entries {
		if touchesAccount(&r.store.entries[i], accountCode) {
			return true, nil
		}
	}
	return false, nil
}

func (r *ledgerRepository) SumByAccount(ctx context.Context, from, to time.Time) (map[string]domain.Movement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sums := make(map[string]domain.Movement)
	for i := range r.store.entries {
		entry := &r.store.entries[i]
		if !from.IsZero() && entry.EntryDate.Before(from) {
			continue
		}
		if !to.IsZero() && entry.EntryDate.After(to) {
			continue
		}
		for _, line := range entry.Lines {
			m := sums[line.AccountCode]
			m.Debit += line.Debit
			m.Credit += line.Credit
			sums[line.AccountCode] = m
		}
	}
	return sums, nil
}

func touchesAccount(entry *domain.JournalEntry, accountCode string) bool {
	for _, line := range entry.Lines {
		if line.AccountCode == accountCode {
			return true
		}
	}
	return false
}

func decodeAfterSeq(nextToken *string) (int64, error) {
	if nextToken == nil || *nextToken == "" {
		return 0, nil
	}
	seq, err := pagination.DecodeSeqToken(*nextToken)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	return seq, nil
}

func nextTokenFor(page []domain.JournalEntry, limit int) *string {
	if len(page) < limit || len(page) == 0 {
		return nil
	}
	token := pagination.EncodeSeqToken(page[len(page)-1].Seq)
	return &token
}
