package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/core/services"
	"github.com/ketsolab/ketoan/internal/dto"
	"github.com/ketsolab/ketoan/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var docDate = time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

func newDocumentService() portssvc.DocumentSvcFacade {
	store := memory.NewStore()
	return services.NewDocumentService(memory.NewDocumentRepository(store))
}

func invoiceRequest(docNo string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		DocumentNo:   docNo,
		DocumentDate: docDate,
		Direction:    domain.InvoiceOutput,
		Counterpart:  "Cong ty TNHH An Phat",
		Lines: []dto.InvoiceLineRequest{
			{Description: "Gao ST25", Quantity: 100, UnitPrice: 120_000, VATRate: 5},
		},
	}
}

func TestCreateInvoiceStartsAsDraft(t *testing.T) {
	ctx := context.Background()
	svc := newDocumentService()

	inv, err := svc.CreateInvoice(ctx, invoiceRequest("HD-001"), "user-1")
	require.NoError(t, err)

	assert.NotEmpty(t, inv.DocumentID)
	assert.Equal(t, domain.DocDraft, inv.Status)
	assert.Equal(t, "user-1", inv.CreatedBy)
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, int64(120_000), inv.Lines[0].UnitPrice)
}

func TestUpdateInvoiceDraftOnly(t *testing.T) {
	ctx := context.Background()
	svc := newDocumentService()

	inv, err := svc.CreateInvoice(ctx, invoiceRequest("HD-001"), "user-1")
	require.NoError(t, err)

	memo := "corrected memo"
	updated, err := svc.UpdateInvoice(ctx, inv.DocumentID, dto.UpdateInvoiceRequest{Memo: &memo}, "user-2")
	require.NoError(t, err)
	assert.Equal(t, "corrected memo", updated.Memo)
	assert.Equal(t, "user-2", updated.LastUpdatedBy)
	// Untouched fields stay.
	assert.Equal(t, "Cong ty TNHH An Phat", updated.Counterpart)
}

func TestUpdateInvoiceRejectedAfterDraft(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := memory.NewDocumentRepository(store)
	svc := services.NewDocumentService(repo)

	inv, err := svc.CreateInvoice(ctx, invoiceRequest("HD-001"), "user-1")
	require.NoError(t, err)

	inv.Status = domain.DocPosted
	require.NoError(t, repo.UpdateDocument(ctx, inv))

	memo := "too late"
	_, err = svc.UpdateInvoice(ctx, inv.DocumentID, dto.UpdateInvoiceRequest{Memo: &memo}, "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCreateVoucherSubtypeMustMatchDirection(t *testing.T) {
	ctx := context.Background()
	svc := newDocumentService()

	cases := []struct {
		direction domain.VoucherDirection
		subtype   domain.VoucherSubtype
		ok        bool
	}{
		{domain.VoucherReceipt, domain.VoucherPurchase, true},
		{domain.VoucherReceipt, domain.VoucherSalesReturn, true},
		{domain.VoucherIssue, domain.VoucherSale, true},
		{domain.VoucherIssue, domain.VoucherProductionUse, true},
		{domain.VoucherReceipt, domain.VoucherSale, false},
		{domain.VoucherIssue, domain.VoucherPurchase, false},
	}

	for i, tc := range cases {
		_, err := svc.CreateVoucher(ctx, dto.CreateVoucherRequest{
			DocumentNo:   "PNK-001",
			DocumentDate: docDate,
			Direction:    tc.direction,
			Subtype:      tc.subtype,
			Lines:        []dto.VoucherLineRequest{{ProductID: "P1", Quantity: 10, UnitPrice: 1000}},
		}, "user-1")
		if tc.ok {
			assert.NoError(t, err, "case %d", i)
		} else {
			assert.ErrorIs(t, err, apperrors.ErrValidation, "case %d", i)
		}
	}
}

func TestCreatePayrollRunValidatesPeriod(t *testing.T) {
	ctx := context.Background()
	svc := newDocumentService()

	line := dto.PayrollLineRequest{EmployeeID: "E001", GrossSalary: 20_000_000, InsuranceBase: 20_000_000}

	run, err := svc.CreatePayrollRun(ctx, dto.CreatePayrollRunRequest{
		DocumentNo:   "BL-2025-04",
		DocumentDate: docDate,
		Period:       "2025-04",
		Lines:        []dto.PayrollLineRequest{line},
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-04", run.Period)

	for _, period := range []string{"", "2025-13", "2025-00", "25-04", "2025/04", "2025-4"} {
		_, err := svc.CreatePayrollRun(ctx, dto.CreatePayrollRunRequest{
			DocumentNo:   "BL-x",
			DocumentDate: docDate,
			Period:       period,
			Lines:        []dto.PayrollLineRequest{line},
		}, "user-1")
		assert.ErrorIs(t, err, apperrors.ErrValidation, period)
	}
}

func TestCreateBankTransactionDerivesDirection(t *testing.T) {
	ctx := context.Background()
	svc := newDocumentService()

	deposit, err := svc.CreateBankTransaction(ctx, dto.CreateBankTxnRequest{
		DocumentNo:   "GBC-001",
		DocumentDate: docDate,
		TxnType:      domain.BankDeposit,
		Amount:       1_000_000,
	}, "user-1")
	require.NoError(t, err)
	assert.True(t, deposit.IsCredit)

	payment, err := svc.CreateBankTransaction(ctx, dto.CreateBankTxnRequest{
		DocumentNo:   "GBN-001",
		DocumentDate: docDate,
		TxnType:      domain.BankPayment,
		Amount:       1_000_000,
	}, "user-1")
	require.NoError(t, err)
	assert.False(t, payment.IsCredit)
}

func TestGetDocumentNotFound(t *testing.T) {
	svc := newDocumentService()
	_, err := svc.GetDocument(context.Background(), domain.SourceInvoice, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListDocumentsNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newDocumentService()

	older := invoiceRequest("HD-001")
	older.DocumentDate = docDate.AddDate(0, 0, -3)
	_, err := svc.CreateInvoice(ctx, older, "user-1")
	require.NoError(t, err)

	newer := invoiceRequest("HD-002")
	_, err = svc.CreateInvoice(ctx, newer, "user-1")
	require.NoError(t, err)

	docs, nextToken, err := svc.ListDocuments(ctx, domain.SourceInvoice, dto.ListDocumentsParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Nil(t, nextToken)
	assert.Equal(t, "HD-002", docs[0].Header().DocumentNo)
	assert.Equal(t, "HD-001", docs[1].Header().DocumentNo)
}

func TestListDocumentsPaging(t *testing.T) {
	ctx := context.Background()
	svc := newDocumentService()

	for i := 0; i < 5; i++ {
		req := invoiceRequest("HD-00" + string(rune('1'+i)))
		req.DocumentDate = docDate.AddDate(0, 0, -i)
		_, err := svc.CreateInvoice(ctx, req, "user-1")
		require.NoError(t, err)
	}

	firstPage, token, err := svc.ListDocuments(ctx, domain.SourceInvoice, dto.ListDocumentsParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	require.NotNil(t, token)

	secondPage, _, err := svc.ListDocuments(ctx, domain.SourceInvoice, dto.ListDocumentsParams{Limit: 2, NextToken: token})
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	assert.NotEqual(t, firstPage[0].Header().DocumentID, secondPage[0].Header().DocumentID)
}
