package services

import (
	"context"

	"github.com/ketsolab/ketoan/internal/core/domain"
	"github.com/ketsolab/ketoan/internal/dto"
)

// DocumentSvcFacade manages source-document drafts. Editing is permitted only
// while a document is Draft; posting and cancellation belong to the posting
// engine.
type DocumentSvcFacade interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error)
	UpdateInvoice(ctx context.Context, documentID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error)
	CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, userID string) (*domain.WarehouseVoucher, error)
	UpdateVoucher(ctx context.Context, documentID string, req dto.UpdateVoucherRequest, userID string) (*domain.WarehouseVoucher, error)
	CreateBankTransaction(ctx context.Context, req dto.CreateBankTxnRequest, userID string) (*domain.BankTransaction, error)
	CreatePayrollRun(ctx context.Context, req dto.CreatePayrollRunRequest, userID string) (*domain.PayrollRun, error)
	GetDocument(ctx context.Context, sourceType domain.SourceType, documentID string) (domain.SourceDocument, error)
	ListDocuments(ctx context.Context, sourceType domain.SourceType, params dto.ListDocumentsParams) ([]domain.SourceDocument, *string, error)
}
