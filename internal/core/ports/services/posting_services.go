package services

import (
	"context"

	"github.com/ketsolab/ketoan/internal/core/domain"
)

// PostingSvcFacade turns draft source documents into balanced ledger entries
// and cancels them with compensating entries.
type PostingSvcFacade interface {
	// Post converts a Draft document into a balanced journal entry, applies
	// inventory side effects atomically, and marks the document Posted.
	// A non-Draft document fails with apperrors.ErrConflict.
	Post(ctx context.Context, sourceType domain.SourceType, documentID string, userID string) (*domain.JournalEntry, error)
	// Cancel marks the document Cancelled. A Posted document first gets a
	// compensating entry (debit/credit swapped); the returned entry is nil
	// when a Draft was cancelled.
	Cancel(ctx context.Context, sourceType domain.SourceType, documentID string, reason string, userID string) (*domain.JournalEntry, error)
}
