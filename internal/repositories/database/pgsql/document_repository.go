package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	"github.com/ketsolab/ketoan/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDocumentRepository stores every document variant as a JSONB payload with
// the header fields lifted into columns for ordering and paging. The payload
// is the source of truth; the columns are derived on write.
type PgxDocumentRepository struct {
	BaseRepository
}

func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryFacade {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DocumentRepositoryFacade = (*PgxDocumentRepository)(nil)

func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, doc domain.SourceDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	header := doc.Header()
	_, err = r.db(ctx).Exec(ctx, `
		INSERT INTO documents (document_id, source_type, document_no, document_date, status, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		header.DocumentID, doc.SourceType(), header.DocumentNo, header.DocumentDate, header.Status, payload, header.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: document %s", apperrors.ErrDuplicate, header.DocumentID)
		}
		return fmt.Errorf("failed to insert document %s: %w", header.DocumentID, err)
	}
	return nil
}

func (r *PgxDocumentRepository) FindDocument(ctx context.Context, sourceType domain.SourceType, documentID string) (domain.SourceDocument, error) {
	var payload []byte
	err := r.db(ctx).QueryRow(ctx,
		`SELECT payload FROM documents WHERE source_type = $1 AND document_id = $2`,
		sourceType, documentID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s document %s", apperrors.ErrNotFound, sourceType, documentID)
		}
		return nil, fmt.Errorf("failed to query document %s: %w", documentID, err)
	}
	return unmarshalDocument(sourceType, payload)
}

func (r *PgxDocumentRepository) UpdateDocument(ctx context.Context, doc domain.SourceDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	header := doc.Header()
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE documents
		SET document_no = $3, document_date = $4, status = $5, payload = $6
		WHERE source_type = $1 AND document_id = $2`,
		doc.SourceType(), header.DocumentID, header.DocumentNo, header.DocumentDate, header.Status, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to update document %s: %w", header.DocumentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s document %s", apperrors.ErrNotFound, doc.SourceType(), header.DocumentID)
	}
	return nil
}

func (r *PgxDocumentRepository) ListDocuments(ctx context.Context, sourceType domain.SourceType, limit int, nextToken *string) ([]domain.SourceDocument, *string, error) {
	query := `
		SELECT payload FROM documents
		WHERE source_type = $1`
	args := []any{sourceType}

	if nextToken != nil && *nextToken != "" {
		docDate, createdAt, err := pagination.DecodeDateToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		query += ` AND (document_date, created_at) < ($2, $3)`
		args = append(args, docDate, createdAt)
	}
	query += fmt.Sprintf(` ORDER BY document_date DESC, created_at DESC LIMIT %d`, limit)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query %s documents: %w", sourceType, err)
	}
	defer rows.Close()

	var docs []domain.SourceDocument
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := unmarshalDocument(sourceType, payload)
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var token *string
	if len(docs) == limit && len(docs) > 0 {
		h := docs[len(docs)-1].Header()
		t := pagination.EncodeDateToken(h.DocumentDate, h.CreatedAt)
		token = &t
	}
	return docs, token, nil
}

func unmarshalDocument(sourceType domain.SourceType, payload []byte) (domain.SourceDocument, error) {
	var doc domain.SourceDocument
	switch sourceType {
	case domain.SourceInvoice:
		doc = &domain.Invoice{}
	case domain.SourceWarehouseVoucher:
		doc = &domain.WarehouseVoucher{}
	case domain.SourceBankTransaction:
		doc = &domain.BankTransaction{}
	case domain.SourcePayrollRun:
		doc = &domain.PayrollRun{}
	default:
		return nil, fmt.Errorf("%w: unknown source type %s", apperrors.ErrInternal, sourceType)
	}
	if err := json.Unmarshal(payload, doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s document: %w", sourceType, err)
	}
	return doc, nil
}
