package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/core/services"
	"github.com/ketsolab/ketoan/internal/dto"
	"github.com/ketsolab/ketoan/internal/platform/config"
	"github.com/ketsolab/ketoan/internal/platform/seed"
	"github.com/ketsolab/ketoan/internal/repositories/memory"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// PostingEngineTestSuite runs the posting engine against the memory store with
// the standard seeded chart, so every rule resolves against real accounts.
type PostingEngineTestSuite struct {
	suite.Suite
	ctx      context.Context
	repos    portsrepo.RepositoryProvider
	services *portssvc.ServiceContainer
	docDate  time.Time
}

func (s *PostingEngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.docDate = time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	s.repos = memory.NewRepositoryProvider(memory.NewStore())
	require.NoError(s.T(), seed.EnsureChart(s.ctx, s.repos.AccountRepo))

	cfg := &config.Config{AllowNegativeStock: false}
	s.services = services.NewServiceContainer(cfg, s.repos, seed.DefaultSchedules(0))
}

func (s *PostingEngineTestSuite) createOutputInvoice() *domain.Invoice {
	inv, err := s.services.Document.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		DocumentNo:   "HD-001",
		DocumentDate: s.docDate,
		Direction:    domain.InvoiceOutput,
		Counterpart:  "Cong ty TNHH An Phat",
		Lines: []dto.InvoiceLineRequest{
			{Description: "Gao ST25", Quantity: 100, UnitPrice: 120_000, VATRate: 5},
		},
	}, "user-1")
	s.Require().NoError(err)
	return inv
}

func (s *PostingEngineTestSuite) receiveStock(qty, unitCost int64) {
	voucher, err := s.services.Document.CreateVoucher(s.ctx, dto.CreateVoucherRequest{
		DocumentNo:   "PNK-001",
		DocumentDate: s.docDate,
		Direction:    domain.VoucherReceipt,
		Subtype:      domain.VoucherPurchase,
		Counterpart:  "Nha cung cap A",
		Lines:        []dto.VoucherLineRequest{{ProductID: "P1", Quantity: qty, UnitPrice: unitCost}},
	}, "user-1")
	s.Require().NoError(err)
	_, err = s.services.Posting.Post(s.ctx, domain.SourceWarehouseVoucher, voucher.DocumentID, "user-1")
	s.Require().NoError(err)
}

func (s *PostingEngineTestSuite) lineAmount(entry *domain.JournalEntry, code string) (debit, credit int64) {
	for _, l := range entry.Lines {
		if l.AccountCode == code {
			debit += l.Debit
			credit += l.Credit
		}
	}
	return debit, credit
}

func (s *PostingEngineTestSuite) TestPostOutputInvoice() {
	inv := s.createOutputInvoice()

	entry, err := s.services.Posting.Post(s.ctx, domain.SourceInvoice, inv.DocumentID, "user-1")
	s.Require().NoError(err)
	s.Require().NotNil(entry)

	s.True(entry.Balanced())
	s.Equal(int64(12_600_000), entry.TotalDebit())

	debit, _ := s.lineAmount(entry, "131")
	s.Equal(int64(12_600_000), debit)
	_, revenue := s.lineAmount(entry, "5111")
	s.Equal(int64(12_000_000), revenue)
	_, vat := s.lineAmount(entry, "33311")
	s.Equal(int64(600_000), vat)

	doc, err := s.services.Document.GetDocument(s.ctx, domain.SourceInvoice, inv.DocumentID)
	s.Require().NoError(err)
	s.Equal(domain.DocPosted, doc.Header().Status)
}

func (s *PostingEngineTestSuite) TestPostTwiceConflicts() {
	inv := s.createOutputInvoice()

	_, err := s.services.Posting.Post(s.ctx, domain.SourceInvoice, inv.DocumentID, "user-1")
	s.Require().NoError(err)

	_, err = s.services.Posting.Post(s.ctx, domain.SourceInvoice, inv.DocumentID, "user-1")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *PostingEngineTestSuite) TestCancelPostedInvoiceAppendsCompensatingEntry() {
	inv := s.createOutputInvoice()

	original, err := s.services.Posting.Post(s.ctx, domain.SourceInvoice, inv.DocumentID, "user-1")
	s.Require().NoError(err)

	compensating, err := s.services.Posting.Cancel(s.ctx, domain.SourceInvoice, inv.DocumentID, "wrong customer", "user-1")
	s.Require().NoError(err)
	s.Require().NotNil(compensating)

	s.True(compensating.Reversal)
	s.True(compensating.Balanced())
	// Sides are swapped line for line.
	for i, l := range original.Lines {
		s.Equal(l.Debit, compensating.Lines[i].Credit)
		s.Equal(l.Credit, compensating.Lines[i].Debit)
	}

	doc, err := s.services.Document.GetDocument(s.ctx, domain.SourceInvoice, inv.DocumentID)
	s.Require().NoError(err)
	s.Equal(domain.DocCancelled, doc.Header().Status)
	s.Equal("wrong customer", doc.Header().CancelReason)

	// The ledger nets to zero for the document.
	entries, err := s.repos.LedgerRepo.FindEntriesBySource(s.ctx, domain.SourceInvoice, inv.DocumentID)
	s.Require().NoError(err)
	s.Len(entries, 2)
}

func (s *PostingEngineTestSuite) TestCancelDraftFlipsStatusOnly() {
	inv := s.createOutputInvoice()

	entry, err := s.services.Posting.Cancel(s.ctx, domain.SourceInvoice, inv.DocumentID, "typo", "user-1")
	s.Require().NoError(err)
	s.Nil(entry)

	doc, err := s.services.Document.GetDocument(s.ctx, domain.SourceInvoice, inv.DocumentID)
	s.Require().NoError(err)
	s.Equal(domain.DocCancelled, doc.Header().Status)
}

func (s *PostingEngineTestSuite) TestCancelCancelledConflicts() {
	inv := s.createOutputInvoice()

	_, err := s.services.Posting.Cancel(s.ctx, domain.SourceInvoice, inv.DocumentID, "typo", "user-1")
	s.Require().NoError(err)

	_, err = s.services.Posting.Cancel(s.ctx, domain.SourceInvoice, inv.DocumentID, "again", "user-1")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *PostingEngineTestSuite) TestPostPurchaseReceipt() {
	voucher, err := s.services.Document.CreateVoucher(s.ctx, dto.CreateVoucherRequest{
		DocumentNo:   "PNK-001",
		DocumentDate: s.docDate,
		Direction:    domain.VoucherReceipt,
		Subtype:      domain.VoucherPurchase,
		Lines:        []dto.VoucherLineRequest{{ProductID: "P1", Quantity: 150, UnitPrice: 95_000}},
	}, "user-1")
	s.Require().NoError(err)

	entry, err := s.services.Posting.Post(s.ctx, domain.SourceWarehouseVoucher, voucher.DocumentID, "user-1")
	s.Require().NoError(err)

	goods, _ := s.lineAmount(entry, "1561")
	s.Equal(int64(150*95_000), goods)
	_, payable := s.lineAmount(entry, "331")
	s.Equal(int64(150*95_000), payable)

	pos, err := s.services.Costing.Position(s.ctx, "P1")
	s.Require().NoError(err)
	s.Equal(int64(150), pos.QuantityOnHand)
	s.Equal(int64(95_000), pos.AverageUnitCost)
}

func (s *PostingEngineTestSuite) TestPostSaleIssueCostsAtAverage() {
	s.receiveStock(150, 95_000)

	voucher, err := s.services.Document.CreateVoucher(s.ctx, dto.CreateVoucherRequest{
		DocumentNo:   "PXK-001",
		DocumentDate: s.docDate,
		Direction:    domain.VoucherIssue,
		Subtype:      domain.VoucherSale,
		Lines:        []dto.VoucherLineRequest{{ProductID: "P1", Quantity: 50}},
	}, "user-1")
	s.Require().NoError(err)

	entry, err := s.services.Posting.Post(s.ctx, domain.SourceWarehouseVoucher, voucher.DocumentID, "user-1")
	s.Require().NoError(err)

	cogs, _ := s.lineAmount(entry, "632")
	s.Equal(int64(4_750_000), cogs)
	_, goods := s.lineAmount(entry, "1561")
	s.Equal(int64(4_750_000), goods)

	pos, err := s.services.Costing.Position(s.ctx, "P1")
	s.Require().NoError(err)
	s.Equal(int64(100), pos.QuantityOnHand)
	s.Equal(int64(95_000), pos.AverageUnitCost)
}

func (s *PostingEngineTestSuite) TestPostIssueInsufficientStock() {
	s.receiveStock(10, 95_000)

	voucher, err := s.services.Document.CreateVoucher(s.ctx, dto.CreateVoucherRequest{
		DocumentNo:   "PXK-001",
		DocumentDate: s.docDate,
		Direction:    domain.VoucherIssue,
		Subtype:      domain.VoucherSale,
		Lines:        []dto.VoucherLineRequest{{ProductID: "P1", Quantity: 11}},
	}, "user-1")
	s.Require().NoError(err)

	_, err = s.services.Posting.Post(s.ctx, domain.SourceWarehouseVoucher, voucher.DocumentID, "user-1")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)

	// The draft stays postable after a failed attempt.
	doc, err := s.services.Document.GetDocument(s.ctx, domain.SourceWarehouseVoucher, voucher.DocumentID)
	s.Require().NoError(err)
	s.Equal(domain.DocDraft, doc.Header().Status)
}

func (s *PostingEngineTestSuite) TestCancelIssueRestoresStockAtIssueCost() {
	s.receiveStock(150, 95_000)

	voucher, err := s.services.Document.CreateVoucher(s.ctx, dto.CreateVoucherRequest{
		DocumentNo:   "PXK-001",
		DocumentDate: s.docDate,
		Direction:    domain.VoucherIssue,
		Subtype:      domain.VoucherSale,
		Lines:        []dto.VoucherLineRequest{{ProductID: "P1", Quantity: 50}},
	}, "user-1")
	s.Require().NoError(err)

	_, err = s.services.Posting.Post(s.ctx, domain.SourceWarehouseVoucher, voucher.DocumentID, "user-1")
	s.Require().NoError(err)

	_, err = s.services.Posting.Cancel(s.ctx, domain.SourceWarehouseVoucher, voucher.DocumentID, "mis-pick", "user-1")
	s.Require().NoError(err)

	pos, err := s.services.Costing.Position(s.ctx, "P1")
	s.Require().NoError(err)
	s.Equal(int64(150), pos.QuantityOnHand)
	s.Equal(int64(95_000), pos.AverageUnitCost)
}

func (s *PostingEngineTestSuite) TestPostIssueFailingLineLeavesStockUntouched() {
	s.receiveStock(100, 95_000)

	// P2 has no stock, so the second line must fail, and the first line's
	// product must come through unchanged.
	voucher, err := s.services.Document.CreateVoucher(s.ctx, dto.CreateVoucherRequest{
		DocumentNo:   "PXK-001",
		DocumentDate: s.docDate,
		Direction:    domain.VoucherIssue,
		Subtype:      domain.VoucherSale,
		Lines: []dto.VoucherLineRequest{
			{ProductID: "P1", Quantity: 10},
			{ProductID: "P2", Quantity: 5},
		},
	}, "user-1")
	s.Require().NoError(err)

	_, err = s.services.Posting.Post(s.ctx, domain.SourceWarehouseVoucher, voucher.DocumentID, "user-1")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)

	pos, err := s.services.Costing.Position(s.ctx, "P1")
	s.Require().NoError(err)
	s.Equal(int64(100), pos.QuantityOnHand)

	card, err := s.services.Costing.StockCard(s.ctx, "P1")
	s.Require().NoError(err)
	s.Len(card, 1, "only the receipt movement")

	doc, err := s.services.Document.GetDocument(s.ctx, domain.SourceWarehouseVoucher, voucher.DocumentID)
	s.Require().NoError(err)
	s.Equal(domain.DocDraft, doc.Header().Status)

	entries, err := s.repos.LedgerRepo.FindEntriesBySource(s.ctx, domain.SourceWarehouseVoucher, voucher.DocumentID)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *PostingEngineTestSuite) TestPostIssueChecksSummedQuantityPerProduct() {
	s.receiveStock(10, 95_000)

	// Each line fits on its own, the sum does not.
	voucher, err := s.services.Document.CreateVoucher(s.ctx, dto.CreateVoucherRequest{
		DocumentNo:   "PXK-001",
		DocumentDate: s.docDate,
		Direction:    domain.VoucherIssue,
		Subtype:      domain.VoucherSale,
		Lines: []dto.VoucherLineRequest{
			{ProductID: "P1", Quantity: 6},
			{ProductID: "P1", Quantity: 6},
		},
	}, "user-1")
	s.Require().NoError(err)

	_, err = s.services.Posting.Post(s.ctx, domain.SourceWarehouseVoucher, voucher.DocumentID, "user-1")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)

	pos, err := s.services.Costing.Position(s.ctx, "P1")
	s.Require().NoError(err)
	s.Equal(int64(10), pos.QuantityOnHand)
}

func (s *PostingEngineTestSuite) TestCancelReceiptWithConsumedStockLeavesPositionsIntact() {
	s.receiveStock(100, 95_000)

	// Consume most of the received stock, then try to cancel the receipt.
	sale, err := s.services.Document.CreateVoucher(s.ctx, dto.CreateVoucherRequest{
		DocumentNo:   "PXK-001",
		DocumentDate: s.docDate,
		Direction:    domain.VoucherIssue,
		Subtype:      domain.VoucherSale,
		Lines:        []dto.VoucherLineRequest{{ProductID: "P1", Quantity: 80}},
	}, "user-1")
	s.Require().NoError(err)
	_, err = s.services.Posting.Post(s.ctx, domain.SourceWarehouseVoucher, sale.DocumentID, "user-1")
	s.Require().NoError(err)

	receipts, _, err := s.services.Document.ListDocuments(s.ctx, domain.SourceWarehouseVoucher, dto.ListDocumentsParams{Limit: 10})
	s.Require().NoError(err)
	var receiptID string
	for _, d := range receipts {
		if d.Header().DocumentNo == "PNK-001" {
			receiptID = d.Header().DocumentID
		}
	}
	s.Require().NotEmpty(receiptID)

	_, err = s.services.Posting.Cancel(s.ctx, domain.SourceWarehouseVoucher, receiptID, "wrong shipment", "user-1")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)

	pos, err := s.services.Costing.Position(s.ctx, "P1")
	s.Require().NoError(err)
	s.Equal(int64(20), pos.QuantityOnHand)

	// The failed cancellation left neither a compensating entry nor a status flip.
	entries, err := s.repos.LedgerRepo.FindEntriesBySource(s.ctx, domain.SourceWarehouseVoucher, receiptID)
	s.Require().NoError(err)
	s.Len(entries, 1)
	doc, err := s.services.Document.GetDocument(s.ctx, domain.SourceWarehouseVoucher, receiptID)
	s.Require().NoError(err)
	s.Equal(domain.DocPosted, doc.Header().Status)
}

func (s *PostingEngineTestSuite) TestPostBankTransactions() {
	cases := []struct {
		txnType domain.BankTxnType
		debit   string
		credit  string
	}{
		{domain.BankDeposit, "112", "131"},
		{domain.BankPayment, "331", "112"},
		{domain.BankInterest, "112", "515"},
		{domain.BankFee, "6422", "112"},
		{domain.BankTaxPayment, "33311", "112"},
		{domain.BankCashDeposit, "112", "111"},
		{domain.BankCashWithdrawal, "111", "112"},
	}

	for i, tc := range cases {
		txn, err := s.services.Document.CreateBankTransaction(s.ctx, dto.CreateBankTxnRequest{
			DocumentNo:   fmt.Sprintf("GBN-%03d", i+1),
			DocumentDate: s.docDate,
			TxnType:      tc.txnType,
			Amount:       1_000_000,
		}, "user-1")
		s.Require().NoError(err)

		entry, err := s.services.Posting.Post(s.ctx, domain.SourceBankTransaction, txn.DocumentID, "user-1")
		s.Require().NoError(err, string(tc.txnType))

		debit, _ := s.lineAmount(entry, tc.debit)
		s.Equal(int64(1_000_000), debit, string(tc.txnType))
		_, credit := s.lineAmount(entry, tc.credit)
		s.Equal(int64(1_000_000), credit, string(tc.txnType))
	}
}

func (s *PostingEngineTestSuite) TestPostPayrollRun() {
	run, err := s.services.Document.CreatePayrollRun(s.ctx, dto.CreatePayrollRunRequest{
		DocumentNo:   "BL-2025-04",
		DocumentDate: s.docDate,
		Period:       "2025-04",
		Lines: []dto.PayrollLineRequest{
			{EmployeeID: "E001", GrossSalary: 28_000_000, Allowances: 2_000_000, InsuranceBase: 28_000_000, DependentCount: 1},
		},
	}, "user-1")
	s.Require().NoError(err)

	entry, err := s.services.Posting.Post(s.ctx, domain.SourcePayrollRun, run.DocumentID, "user-1")
	s.Require().NoError(err)
	s.True(entry.Balanced())

	// Gross expense D6421/C334.
	expense, _ := s.lineAmount(entry, "6421")
	s.Equal(int64(30_000_000+6_020_000), expense)
	_, insurance := s.lineAmount(entry, "3383")
	s.Equal(int64(2_940_000+6_020_000), insurance)
	_, pit := s.lineAmount(entry, "3335")
	s.Equal(int64(999_000), pit)
}

func (s *PostingEngineTestSuite) TestPostUnknownDocument() {
	_, err := s.services.Posting.Post(s.ctx, domain.SourceInvoice, "missing", "user-1")
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestPostingEngineTestSuite(t *testing.T) {
	suite.Run(t, new(PostingEngineTestSuite))
}
