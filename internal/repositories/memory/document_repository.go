package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	"github.com/ketsolab/ketoan/internal/utils/pagination"
)

type documentRepository struct {
	store *Store
}

// NewDocumentRepository creates the memory source-document adapter.
func NewDocumentRepository(store *Store) portsrepo.DocumentRepositoryFacade {
	return &documentRepository{store: store}
}

var _ portsrepo.DocumentRepositoryFacade = (*documentRepository)(nil)

// cloneDocument deep-copies a document so callers never alias stored state.
func cloneDocument(doc domain.SourceDocument) domain.SourceDocument {
	switch d := doc.(type) {
	case *domain.Invoice:
		c := *d
		c.Lines = append([]domain.InvoiceLine{}, d.Lines...)
		return &c
	case *domain.WarehouseVoucher:
		c := *d
		c.Lines = append([]domain.VoucherLine{}, d.Lines...)
		return &c
	case *domain.BankTransaction:
		c := *d
		return &c
	case *domain.PayrollRun:
		c := *d
		c.Lines = append([]domain.PayrollLine{}, d.Lines...)
		return &c
	default:
		return doc
	}
}

func (r *documentRepository) SaveDocument(ctx context.Context, doc domain.SourceDocument) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byID, ok := r.store.documents[doc.SourceType()]
	if !ok {
		byID = make(map[string]domain.SourceDocument)
		r.store.documents[doc.SourceType()] = byID
	}
	id := doc.Header().DocumentID
	if _, exists := byID[id]; exists {
		return fmt.Errorf("%w: document %s", apperrors.ErrDuplicate, id)
	}
	byID[id] = cloneDocument(doc)
	return nil
}

func (r *documentRepository) FindDocument(ctx context.Context, sourceType domain.SourceType, documentID string) (domain.SourceDocument, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	doc, ok := r.store.documents[sourceType][documentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s document %s", apperrors.ErrNotFound, sourceType, documentID)
	}
	return cloneDocument(doc), nil
}

func (r *documentRepository) UpdateDocument(ctx context.Context, doc domain.SourceDocument) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id := doc.Header().DocumentID
	byID := r.store.documents[doc.SourceType()]
	if _, exists := byID[id]; !exists {
		return fmt.Errorf("%w: %s document %s", apperrors.ErrNotFound, doc.SourceType(), id)
	}
	byID[id] = cloneDocument(doc)
	return nil
}

func (r *documentRepository) ListDocuments(ctx context.Context, sourceType domain.SourceType, limit int, nextToken *string) ([]domain.SourceDocument, *string, error) {
	r.store.mu.RLock()
	docs := make([]domain.SourceDocument, 0, len(r.store.documents[sourceType]))
	for _, doc := range r.store.documents[sourceType] {
		docs = append(docs, cloneDocument(doc))
	}
	r.store.mu.RUnlock()

	// Newest first: document date, then creation time.
	sort.Slice(docs, func(i, j int) bool {
		hi, hj := docs[i].Header(), docs[j].Header()
		if !hi.DocumentDate.Equal(hj.DocumentDate) {
			return hi.DocumentDate.After(hj.DocumentDate)
		}
		return hi.CreatedAt.After(hj.CreatedAt)
	})

	start := 0
	if nextToken != nil && *nextToken != "" {
		docDate, createdAt, err := pagination.DecodeDateToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		for i, doc := range docs {
			h := doc.Header()
			if h.DocumentDate.Equal(docDate) && h.CreatedAt.Equal(createdAt) {
				start = i + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(docs) {
		end = len(docs)
	}
	page := docs[start:end]

	var token *string
	if end < len(docs) && len(page) > 0 {
		h := page[len(page)-1].Header()
		t := pagination.EncodeDateToken(h.DocumentDate, h.CreatedAt)
		token = &t
	}
	return page, token, nil
}
