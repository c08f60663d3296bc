package dto

import (
	"time"

	"github.com/ketsolab/ketoan/internal/core/domain"
)

// InvoiceLineRequest is one billed item on an invoice draft.
type InvoiceLineRequest struct {
	Description string  `json:"description"`
	Quantity    int64   `json:"quantity" binding:"required,gt=0"`
	UnitPrice   int64   `json:"unitPrice" binding:"gte=0"`
	Discount    int64   `json:"discount" binding:"gte=0"`
	VATRate     int     `json:"vatRate"`
	AccountCode *string `json:"accountCode" binding:"omitempty,acctcode"`
}

// CreateInvoiceRequest creates an invoice in Draft status.
type CreateInvoiceRequest struct {
	DocumentNo   string                  `json:"documentNo" binding:"required"`
	DocumentDate time.Time               `json:"documentDate" binding:"required"`
	Direction    domain.InvoiceDirection `json:"direction" binding:"required,oneof=INPUT OUTPUT"`
	Counterpart  string                  `json:"counterpart" binding:"required"`
	Memo         string                  `json:"memo"`
	Lines        []InvoiceLineRequest    `json:"lines" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest edits a Draft invoice. Pointer fields distinguish
// "leave unchanged" from zero values.
type UpdateInvoiceRequest struct {
	DocumentDate *time.Time           `json:"documentDate"`
	Counterpart  *string              `json:"counterpart"`
	Memo         *string              `json:"memo"`
	Lines        []InvoiceLineRequest `json:"lines" binding:"omitempty,min=1,dive"`
}

// VoucherLineRequest is one product movement on a warehouse voucher draft.
type VoucherLineRequest struct {
	ProductID string `json:"productID" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice int64  `json:"unitPrice" binding:"gte=0"`
}

// CreateVoucherRequest creates a warehouse voucher in Draft status.
type CreateVoucherRequest struct {
	DocumentNo   string                  `json:"documentNo" binding:"required"`
	DocumentDate time.Time               `json:"documentDate" binding:"required"`
	Direction    domain.VoucherDirection `json:"direction" binding:"required,oneof=RECEIPT ISSUE"`
	Subtype      domain.VoucherSubtype   `json:"subtype" binding:"required,oneof=PURCHASE SALES_RETURN SALE PRODUCTION_USE"`
	Counterpart  string                  `json:"counterpart"`
	Memo         string                  `json:"memo"`
	Lines        []VoucherLineRequest    `json:"lines" binding:"required,min=1,dive"`
}

// UpdateVoucherRequest edits a Draft warehouse voucher.
type UpdateVoucherRequest struct {
	DocumentDate *time.Time           `json:"documentDate"`
	Counterpart  *string              `json:"counterpart"`
	Memo         *string              `json:"memo"`
	Lines        []VoucherLineRequest `json:"lines" binding:"omitempty,min=1,dive"`
}

// CreateBankTxnRequest creates a bank transaction in Draft status. The
// statement direction is derived from the transaction type, not supplied.
type CreateBankTxnRequest struct {
	DocumentNo   string             `json:"documentNo" binding:"required"`
	DocumentDate time.Time          `json:"documentDate" binding:"required"`
	TxnType      domain.BankTxnType `json:"txnType" binding:"required,oneof=DEPOSIT PAYMENT SALARY TAX_PAYMENT INTEREST FEE CASH_DEPOSIT CASH_WITHDRAWAL"`
	Amount       int64              `json:"amount" binding:"required,gt=0"`
	Counterpart  string             `json:"counterpart"`
	Memo         string             `json:"memo"`
}

// PayrollLineRequest is one employee's pay inputs for the period.
type PayrollLineRequest struct {
	EmployeeID     string `json:"employeeID" binding:"required"`
	EmployeeName   string `json:"employeeName"`
	GrossSalary    int64  `json:"grossSalary" binding:"required,gt=0"`
	Allowances     int64  `json:"allowances" binding:"gte=0"`
	InsuranceBase  int64  `json:"insuranceBase" binding:"required,gt=0"`
	DependentCount int    `json:"dependentCount" binding:"gte=0"`
}

// CreatePayrollRunRequest creates a payroll run in Draft status.
type CreatePayrollRunRequest struct {
	DocumentNo   string               `json:"documentNo" binding:"required"`
	DocumentDate time.Time            `json:"documentDate" binding:"required"`
	Period       string               `json:"period" binding:"required"`
	Memo         string               `json:"memo"`
	Lines        []PayrollLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CancelDocumentRequest carries the reason for cancelling a document.
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListDocumentsParams defines query parameters for listing documents.
type ListDocumentsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// DocumentEnvelope wraps any document variant in list/get responses.
type DocumentEnvelope struct {
	SourceType domain.SourceType `json:"sourceType"`
	Document   any               `json:"document"`
}

// ToDocumentEnvelope wraps a domain document for transport.
func ToDocumentEnvelope(doc domain.SourceDocument) DocumentEnvelope {
	return DocumentEnvelope{SourceType: doc.SourceType(), Document: doc}
}

// ListDocumentsResponse wraps a page of documents.
type ListDocumentsResponse struct {
	Documents []DocumentEnvelope `json:"documents"`
	NextToken *string            `json:"nextToken,omitempty"`
}
