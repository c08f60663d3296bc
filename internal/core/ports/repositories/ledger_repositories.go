package repositories

import (
	"context"
	"time"

	"github.com/ketsolab/ketoan/internal/core/domain"
)

// LedgerRepositoryFacade is the append-only journal store. Entries are never
// updated or deleted; cancellation appends a compensating entry.
type LedgerRepositoryFacade interface {
	// AppendEntry assigns the next sequence number, stores the entry and
	// returns it with Seq populated.
	AppendEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error)
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	// FindEntriesBySource returns all entries generated from one document, in
	// append order (original first, compensating entries after).
	FindEntriesBySource(ctx context.Context, sourceType domain.SourceType, sourceID string) ([]domain.JournalEntry, error)
	// ListEntries pages through the ledger in append order starting after the
	// sequence encoded in nextToken.
	ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
	// ListLinesByAccount pages through one account's lines in append order.
	ListLinesByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
	// HasLinesForAccount reports whether any posted line ever targeted the account.
	HasLinesForAccount(ctx context.Context, accountCode string) (bool, error)
	// SumByAccount aggregates debit/credit movement per account over entries
	// whose EntryDate falls in [from, to]. Zero times mean unbounded.
	SumByAccount(ctx context.Context, from, to time.Time) (map[string]domain.Movement, error)
}
