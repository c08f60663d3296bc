package repositories

import (
	"context"

	"github.com/ketsolab/ketoan/internal/core/domain"
)

// DocumentRepositoryFacade stores source documents across all variants.
// Documents are mutable only while Draft; the posting engine flips status
// inside the posting transaction.
type DocumentRepositoryFacade interface {
	// SaveDocument returns apperrors.ErrDuplicate when the document ID exists.
	SaveDocument(ctx context.Context, doc domain.SourceDocument) error
	// FindDocument returns apperrors.ErrNotFound when unknown.
	FindDocument(ctx context.Context, sourceType domain.SourceType, documentID string) (domain.SourceDocument, error)
	UpdateDocument(ctx context.Context, doc domain.SourceDocument) error
	// ListDocuments pages documents of one type by document date then
	// creation time, newest first.
	ListDocuments(ctx context.Context, sourceType domain.SourceType, limit int, nextToken *string) ([]domain.SourceDocument, *string, error)
}
