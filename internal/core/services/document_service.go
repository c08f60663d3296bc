package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/dto"
)

var ErrNotDraft = errors.New("only Draft documents can be edited")

var payrollPeriodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// documentService manages source-document drafts. It never touches the ledger;
// posting and cancellation are the posting engine's job.
type documentService struct {
	BaseService
	documentRepo portsrepo.DocumentRepositoryFacade
}

// NewDocumentService creates the draft-document manager.
func NewDocumentService(documentRepo portsrepo.DocumentRepositoryFacade) portssvc.DocumentSvcFacade {
	return &documentService{documentRepo: documentRepo}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

func newHeader(documentNo string, documentDate time.Time, counterpart, memo, userID string) domain.DocumentHeader {
	now := time.Now().UTC()
	return domain.DocumentHeader{
		DocumentID:   uuid.NewString(),
		DocumentNo:   documentNo,
		DocumentDate: documentDate,
		Status:       domain.DocDraft,
		Counterpart:  counterpart,
		Memo:         memo,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
}

func (s *documentService) save(ctx context.Context, doc domain.SourceDocument) error {
	if err := s.documentRepo.SaveDocument(ctx, doc); err != nil {
		s.LogError(ctx, err, "Failed to save document", slog.String("document_id", doc.Header().DocumentID))
		return fmt.Errorf("failed to save document: %w", err)
	}
	s.LogInfo(ctx, "Document created",
		slog.String("source_type", string(doc.SourceType())),
		slog.String("document_id", doc.Header().DocumentID),
		slog.String("document_no", doc.Header().DocumentNo))
	return nil
}

// draftForEdit loads a document and rejects edits once it has left Draft.
func (s *documentService) draftForEdit(ctx context.Context, sourceType domain.SourceType, documentID string) (domain.SourceDocument, error) {
	doc, err := s.documentRepo.FindDocument(ctx, sourceType, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Header().Status != domain.DocDraft {
		return nil, fmt.Errorf("%w: document %s is %s (%s)", apperrors.ErrConflict, documentID, doc.Header().Status, ErrNotDraft)
	}
	return doc, nil
}

func (s *documentService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	invoice := &domain.Invoice{
		DocumentHeader: newHeader(req.DocumentNo, req.DocumentDate, req.Counterpart, req.Memo, userID),
		Direction:      req.Direction,
		Lines:          toInvoiceLines(req.Lines),
	}
	if err := s.save(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *documentService) UpdateInvoice(ctx context.Context, documentID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error) {
	doc, err := s.draftForEdit(ctx, domain.SourceInvoice, documentID)
	if err != nil {
		return nil, err
	}
	invoice := doc.(*domain.Invoice)

	if req.DocumentDate != nil {
		invoice.DocumentDate = *req.DocumentDate
	}
	if req.Counterpart != nil {
		invoice.Counterpart = *req.Counterpart
	}
	if req.Memo != nil {
		invoice.Memo = *req.Memo
	}
	if req.Lines != nil {
		invoice.Lines = toInvoiceLines(req.Lines)
	}
	invoice.LastUpdatedAt = time.Now().UTC()
	invoice.LastUpdatedBy = userID

	if err := s.documentRepo.UpdateDocument(ctx, invoice); err != nil {
		s.LogError(ctx, err, "Failed to update invoice", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to update invoice %s: %w", documentID, err)
	}
	return invoice, nil
}

func (s *documentService) CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, userID string) (*domain.WarehouseVoucher, error) {
	if !validVoucherSubtype(req.Direction, req.Subtype) {
		return nil, fmt.Errorf("%w: subtype %s does not belong to direction %s", apperrors.ErrValidation, req.Subtype, req.Direction)
	}
	voucher := &domain.WarehouseVoucher{
		DocumentHeader: newHeader(req.DocumentNo, req.DocumentDate, req.Counterpart, req.Memo, userID),
		Direction:      req.Direction,
		VoucherSubtype: req.Subtype,
		Lines:          toVoucherLines(req.Lines),
	}
	if err := s.save(ctx, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

func (s *documentService) UpdateVoucher(ctx context.Context, documentID string, req dto.UpdateVoucherRequest, userID string) (*domain.WarehouseVoucher, error) {
	doc, err := s.draftForEdit(ctx, domain.SourceWarehouseVoucher, documentID)
	if err != nil {
		return nil, err
	}
	voucher := doc.(*domain.WarehouseVoucher)

	if req.DocumentDate != nil {
		voucher.DocumentDate = *req.DocumentDate
	}
	if req.Counterpart != nil {
		voucher.Counterpart = *req.Counterpart
	}
	if req.Memo != nil {
		voucher.Memo = *req.Memo
	}
	if req.Lines != nil {
		voucher.Lines = toVoucherLines(req.Lines)
	}
	voucher.LastUpdatedAt = time.Now().UTC()
	voucher.LastUpdatedBy = userID

	if err := s.documentRepo.UpdateDocument(ctx, voucher); err != nil {
		s.LogError(ctx, err, "Failed to update voucher", slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to update voucher %s: %w", documentID, err)
	}
	return voucher, nil
}

func (s *documentService) CreateBankTransaction(ctx context.Context, req dto.CreateBankTxnRequest, userID string) (*domain.BankTransaction, error) {
	txn := &domain.BankTransaction{
		DocumentHeader: newHeader(req.DocumentNo, req.DocumentDate, req.Counterpart, req.Memo, userID),
		TxnType:        req.TxnType,
		IsCredit:       req.TxnType.CreditsBank(),
		Amount:         req.Amount,
	}
	if err := s.save(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *documentService) CreatePayrollRun(ctx context.Context, req dto.CreatePayrollRunRequest, userID string) (*domain.PayrollRun, error) {
	if !payrollPeriodPattern.MatchString(req.Period) {
		return nil, fmt.Errorf("%w: period %q must be YYYY-MM", apperrors.ErrValidation, req.Period)
	}
	run := &domain.PayrollRun{
		DocumentHeader: newHeader(req.DocumentNo, req.DocumentDate, "", req.Memo, userID),
		Period:         req.Period,
		Lines:          toPayrollLines(req.Lines),
	}
	if err := s.save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *documentService) GetDocument(ctx context.Context, sourceType domain.SourceType, documentID string) (domain.SourceDocument, error) {
	doc, err := s.documentRepo.FindDocument(ctx, sourceType, documentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find document", slog.String("document_id", documentID))
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, sourceType domain.SourceType, params dto.ListDocumentsParams) ([]domain.SourceDocument, *string, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	docs, nextToken, err := s.documentRepo.ListDocuments(ctx, sourceType, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list documents", slog.String("source_type", string(sourceType)))
		return nil, nil, fmt.Errorf("failed to list %s documents: %w", sourceType, err)
	}
	if docs == nil {
		docs = []domain.SourceDocument{}
	}
	return docs, nextToken, nil
}

func validVoucherSubtype(direction domain.VoucherDirection, subtype domain.VoucherSubtype) bool {
	switch direction {
	case domain.VoucherReceipt:
		return subtype == domain.VoucherPurchase || subtype == domain.VoucherSalesReturn
	case domain.VoucherIssue:
		return subtype == domain.VoucherSale || subtype == domain.VoucherProductionUse
	}
	return false
}

func toInvoiceLines(reqs []dto.InvoiceLineRequest) []domain.InvoiceLine {
	lines := make([]domain.InvoiceLine, len(reqs))
	for i, r := range reqs {
		account := ""
		if r.AccountCode != nil {
			account = *r.AccountCode
		}
		lines[i] = domain.InvoiceLine{
			Description: r.Description,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
			Discount:    r.Discount,
			VATRate:     r.VATRate,
			AccountCode: account,
		}
	}
	return lines
}

func toVoucherLines(reqs []dto.VoucherLineRequest) []domain.VoucherLine {
	lines := make([]domain.VoucherLine, len(reqs))
	for i, r := range reqs {
		lines[i] = domain.VoucherLine{ProductID: r.ProductID, Quantity: r.Quantity, UnitPrice: r.UnitPrice}
	}
	return lines
}

func toPayrollLines(reqs []dto.PayrollLineRequest) []domain.PayrollLine {
	lines := make([]domain.PayrollLine, len(reqs))
	for i, r := range reqs {
		lines[i] = domain.PayrollLine{
			EmployeeID:     r.EmployeeID,
			EmployeeName:   r.EmployeeName,
			GrossSalary:    r.GrossSalary,
			Allowances:     r.Allowances,
			InsuranceBase:  r.InsuranceBase,
			DependentCount: r.DependentCount,
		}
	}
	return lines
}
