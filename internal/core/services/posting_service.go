package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/utils/accounting"
)

var (
	ErrNoPostingRule = errors.New("no posting rule for document subtype")
	ErrEmptyDocument = errors.New("document has no lines")
)

// postingService is the engine turning draft documents into balanced journal
// entries. Posting and cancellation of the same document are serialized behind
// a keyed mutex so two concurrent posts cannot both see Draft.
type postingService struct {
	BaseService
	documentRepo portsrepo.DocumentRepositoryFacade
	ledgerRepo   portsrepo.LedgerRepositoryFacade
	txRunner     portsrepo.TxRunner
	registrySvc  portssvc.RegistrySvcFacade
	costingSvc   portssvc.CostingSvcFacade
	taxSvc       portssvc.TaxSvcFacade

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPostingService creates the posting engine.
func NewPostingService(
	documentRepo portsrepo.DocumentRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	txRunner portsrepo.TxRunner,
	registrySvc portssvc.RegistrySvcFacade,
	costingSvc portssvc.CostingSvcFacade,
	taxSvc portssvc.TaxSvcFacade,
) portssvc.PostingSvcFacade {
	return &postingService{
		documentRepo: documentRepo,
		ledgerRepo:   ledgerRepo,
		txRunner:     txRunner,
		registrySvc:  registrySvc,
		costingSvc:   costingSvc,
		taxSvc:       taxSvc,
		locks:        make(map[string]*sync.Mutex),
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

func (s *postingService) documentLock(sourceType domain.SourceType, documentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := string(sourceType) + "/" + documentID
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Post converts a Draft document into a balanced journal entry, applying
// inventory side effects for warehouse vouchers, and flips the document to
// Posted. Everything happens inside one transaction scope.
func (s *postingService) Post(ctx context.Context, sourceType domain.SourceType, documentID string, userID string) (*domain.JournalEntry, error) {
	lock := s.documentLock(sourceType, documentID)
	lock.Lock()
	defer lock.Unlock()

	var posted *domain.JournalEntry
	err := s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := s.documentRepo.FindDocument(ctx, sourceType, documentID)
		if err != nil {
			return err
		}
		header := doc.Header()
		if header.Status != domain.DocDraft {
			return fmt.Errorf("%w: document %s is %s, only Draft documents can be posted", apperrors.ErrConflict, documentID, header.Status)
		}

		rule, ok := ruleTable[ruleKey{sourceType, doc.Subtype()}]
		if !ok {
			return fmt.Errorf("%w: %s/%s (%s)", apperrors.ErrValidation, sourceType, doc.Subtype(), ErrNoPostingRule)
		}

		// Validate the fixed template accounts before any side effect runs.
		for _, code := range rule.accounts() {
			if err := s.registrySvc.ValidateForPosting(ctx, code); err != nil {
				return err
			}
		}

		plan, err := s.compile(ctx, doc)
		if err != nil {
			return err
		}
		for _, line := range plan.Lines {
			if err := s.registrySvc.ValidateForPosting(ctx, line.AccountCode); err != nil {
				return err
			}
		}

		lines := accounting.CoalesceLines(rule.expand(plan))
		if err := accounting.ValidateEntryBalance(lines); err != nil {
			// A compiled-but-unbalanced entry is a rule-table defect, not a
			// caller mistake.
			s.LogError(ctx, err, "Posting rule produced an unbalanced entry",
				slog.String("source_type", string(sourceType)),
				slog.String("document_id", documentID))
			return fmt.Errorf("%w: entry for %s/%s: %s", apperrors.ErrIntegrity, sourceType, documentID, err)
		}

		now := time.Now().UTC()
		entry := domain.JournalEntry{
			EntryID:    uuid.NewString(),
			SourceType: sourceType,
			SourceID:   documentID,
			EntryDate:  header.DocumentDate,
			PostedAt:   now,
			Memo:       fmt.Sprintf("%s %s", rule.Memo, header.DocumentNo),
			Lines:      lines,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		stored, err := s.ledgerRepo.AppendEntry(ctx, entry)
		if err != nil {
			s.LogError(ctx, err, "Failed to append journal entry", slog.String("document_id", documentID))
			return fmt.Errorf("failed to append journal entry for %s: %w", documentID, err)
		}

		header.Status = domain.DocPosted
		header.LastUpdatedAt = now
		header.LastUpdatedBy = userID
		if err := s.documentRepo.UpdateDocument(ctx, doc); err != nil {
			s.LogError(ctx, err, "Failed to mark document posted", slog.String("document_id", documentID))
			return fmt.Errorf("failed to update document %s: %w", documentID, err)
		}

		posted = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Document posted",
		slog.String("source_type", string(sourceType)),
		slog.String("document_id", documentID),
		slog.String("entry_id", posted.EntryID),
		slog.Int64("total", posted.TotalDebit()))
	return posted, nil
}

// Cancel flips a document to Cancelled. A Posted document first gets a
// compensating entry and, for warehouse vouchers, the opposite inventory
// movement. The returned entry is nil when a Draft was cancelled.
func (s *postingService) Cancel(ctx context.Context, sourceType domain.SourceType, documentID string, reason string, userID string) (*domain.JournalEntry, error) {
	lock := s.documentLock(sourceType, documentID)
	lock.Lock()
	defer lock.Unlock()

	var compensating *domain.JournalEntry
	err := s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := s.documentRepo.FindDocument(ctx, sourceType, documentID)
		if err != nil {
			return err
		}
		header := doc.Header()

		switch header.Status {
		case domain.DocCancelled:
			return fmt.Errorf("%w: document %s is already cancelled", apperrors.ErrConflict, documentID)
		case domain.DocDraft:
			// No ledger trace yet; the flip alone is enough.
		case domain.DocPosted:
			entries, err := s.ledgerRepo.FindEntriesBySource(ctx, sourceType, documentID)
			if err != nil {
				s.LogError(ctx, err, "Failed to load entries for cancellation", slog.String("document_id", documentID))
				return fmt.Errorf("failed to load entries for %s: %w", documentID, err)
			}
			if len(entries) == 0 {
				return fmt.Errorf("%w: posted document %s has no journal entry", apperrors.ErrIntegrity, documentID)
			}
			original := entries[0]

			// A receipt cancellation issues the goods back out; verify the
			// stock is still there before the compensating entry lands.
			if voucher, ok := doc.(*domain.WarehouseVoucher); ok && voucher.Direction == domain.VoucherReceipt {
				if err := s.ensureIssuable(ctx, voucher.Lines); err != nil {
					return fmt.Errorf("voucher %s cancellation: %w", documentID, err)
				}
			}

			now := time.Now().UTC()
			entry := domain.JournalEntry{
				EntryID:    uuid.NewString(),
				SourceType: sourceType,
				SourceID:   documentID,
				EntryDate:  now,
				PostedAt:   now,
				Memo:       fmt.Sprintf("Cancellation of %s: %s", header.DocumentNo, reason),
				Reversal:   true,
				Lines:      original.Reversed(),
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     userID,
					LastUpdatedAt: now,
					LastUpdatedBy: userID,
				},
			}
			stored, err := s.ledgerRepo.AppendEntry(ctx, entry)
			if err != nil {
				s.LogError(ctx, err, "Failed to append compensating entry", slog.String("document_id", documentID))
				return fmt.Errorf("failed to append compensating entry for %s: %w", documentID, err)
			}
			compensating = stored

			if voucher, ok := doc.(*domain.WarehouseVoucher); ok {
				if err := s.reverseInventory(ctx, voucher); err != nil {
					return err
				}
			}
		}

		now := time.Now().UTC()
		header.Status = domain.DocCancelled
		header.CancelReason = reason
		header.LastUpdatedAt = now
		header.LastUpdatedBy = userID
		if err := s.documentRepo.UpdateDocument(ctx, doc); err != nil {
			s.LogError(ctx, err, "Failed to mark document cancelled", slog.String("document_id", documentID))
			return fmt.Errorf("failed to update document %s: %w", documentID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Document cancelled",
		slog.String("source_type", string(sourceType)),
		slog.String("document_id", documentID),
		slog.Bool("compensated", compensating != nil))
	return compensating, nil
}

// compile produces the named amounts and per-line journal lines for one
// document. Warehouse vouchers apply their inventory side effects here; issue
// lines get the average cost used stamped into UnitPrice so a later
// cancellation can restore stock at the same cost.
func (s *postingService) compile(ctx context.Context, doc domain.SourceDocument) (entryPlan, error) {
	switch d := doc.(type) {
	case *domain.Invoice:
		return s.compileInvoice(d)
	case *domain.WarehouseVoucher:
		return s.compileVoucher(ctx, d)
	case *domain.BankTransaction:
		if d.Amount <= 0 {
			return entryPlan{}, fmt.Errorf("%w: bank transaction amount must be positive", apperrors.ErrValidation)
		}
		return entryPlan{Amounts: map[string]int64{amtAmount: d.Amount}}, nil
	case *domain.PayrollRun:
		return s.compilePayroll(d)
	default:
		return entryPlan{}, fmt.Errorf("%w: unsupported document type %s", apperrors.ErrValidation, doc.SourceType())
	}
}

func (s *postingService) compileInvoice(inv *domain.Invoice) (entryPlan, error) {
	if len(inv.Lines) == 0 {
		return entryPlan{}, fmt.Errorf("%w: invoice %s (%s)", apperrors.ErrValidation, inv.DocumentID, ErrEmptyDocument)
	}

	var lines []domain.JournalLine
	var total, vat int64
	for i, line := range inv.Lines {
		result, err := s.taxSvc.VATLine(inv.DocumentDate, line.Quantity, line.UnitPrice, line.Discount, line.VATRate)
		if err != nil {
			return entryPlan{}, fmt.Errorf("invoice %s line %d: %w", inv.DocumentID, i+1, err)
		}
		total += result.Total
		vat += result.VAT
		if result.Amount == 0 {
			// A fully discounted line carries no value to post.
			continue
		}

		account := line.AccountCode
		if inv.Direction == domain.InvoiceOutput {
			if account == "" {
				account = defaultOutputLineAccount
			}
			lines = append(lines, domain.JournalLine{AccountCode: account, Credit: result.Amount, Memo: line.Description})
		} else {
			if account == "" {
				account = defaultInputLineAccount
			}
			lines = append(lines, domain.JournalLine{AccountCode: account, Debit: result.Amount, Memo: line.Description})
		}
	}

	return entryPlan{
		Amounts: map[string]int64{amtTotal: total, amtVAT: vat},
		Lines:   lines,
	}, nil
}

func (s *postingService) compileVoucher(ctx context.Context, v *domain.WarehouseVoucher) (entryPlan, error) {
	if len(v.Lines) == 0 {
		return entryPlan{}, fmt.Errorf("%w: voucher %s (%s)", apperrors.ErrValidation, v.DocumentID, ErrEmptyDocument)
	}

	switch v.Direction {
	case domain.VoucherReceipt:
		var value int64
		for i := range v.Lines {
			line := &v.Lines[i]
			if _, err := s.costingSvc.ApplyReceipt(ctx, line.ProductID, line.Quantity, line.UnitPrice, v.DocumentDate, v.DocumentNo); err != nil {
				return entryPlan{}, fmt.Errorf("voucher %s line %d: %w", v.DocumentID, i+1, err)
			}
			value += line.Quantity * line.UnitPrice
		}
		return entryPlan{Amounts: map[string]int64{amtValue: value}}, nil

	case domain.VoucherIssue:
		// Check every line before mutating any position; a failing line must
		// not leave earlier lines applied.
		if err := s.ensureIssuable(ctx, v.Lines); err != nil {
			return entryPlan{}, fmt.Errorf("voucher %s: %w", v.DocumentID, err)
		}
		var cost int64
		for i := range v.Lines {
			line := &v.Lines[i]
			_, unitCost, err := s.costingSvc.ApplyIssue(ctx, line.ProductID, line.Quantity, v.DocumentDate, v.DocumentNo)
			if err != nil {
				return entryPlan{}, fmt.Errorf("voucher %s line %d: %w", v.DocumentID, i+1, err)
			}
			line.UnitPrice = unitCost
			cost += line.Quantity * unitCost
		}
		return entryPlan{Amounts: map[string]int64{amtCost: cost}}, nil

	default:
		return entryPlan{}, fmt.Errorf("%w: unknown voucher direction %s", apperrors.ErrValidation, v.Direction)
	}
}

// ensureIssuable sums the issue quantities per product and checks each against
// the current position, so the availability check covers repeated lines for
// the same product as a whole.
func (s *postingService) ensureIssuable(ctx context.Context, lines []domain.VoucherLine) error {
	totals := make(map[string]int64, len(lines))
	order := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, seen := totals[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		totals[line.ProductID] += line.Quantity
	}
	for _, productID := range order {
		if err := s.costingSvc.EnsureAvailable(ctx, productID, totals[productID]); err != nil {
			return err
		}
	}
	return nil
}

func (s *postingService) compilePayroll(run *domain.PayrollRun) (entryPlan, error) {
	if len(run.Lines) == 0 {
		return entryPlan{}, fmt.Errorf("%w: payroll run %s (%s)", apperrors.ErrValidation, run.DocumentID, ErrEmptyDocument)
	}

	var gross, employeeIns, employerIns, pit int64
	for i, line := range run.Lines {
		breakdown, err := s.taxSvc.ComputePayroll(run.DocumentDate, line)
		if err != nil {
			return entryPlan{}, fmt.Errorf("payroll run %s line %d (%s): %w", run.DocumentID, i+1, line.EmployeeID, err)
		}
		gross += breakdown.Gross
		employeeIns += breakdown.EmployeeInsurance
		employerIns += breakdown.EmployerInsurance
		pit += breakdown.PIT
	}

	return entryPlan{Amounts: map[string]int64{
		amtGross:       gross,
		amtEmployeeIns: employeeIns,
		amtEmployerIns: employerIns,
		amtPIT:         pit,
	}}, nil
}

// reverseInventory applies the opposite stock movement for a cancelled
// voucher. Issue lines come back at the stamped unit cost; receipt lines go
// out at the prevailing average, which may drift from the receipt cost.
func (s *postingService) reverseInventory(ctx context.Context, v *domain.WarehouseVoucher) error {
	now := time.Now().UTC()
	docNo := v.DocumentNo + "-CXL"
	if v.Direction == domain.VoucherReceipt {
		// Cancelling a receipt issues the goods back out; the stock may have
		// been consumed since, so check all lines before touching any.
		if err := s.ensureIssuable(ctx, v.Lines); err != nil {
			return fmt.Errorf("voucher %s cancellation: %w", v.DocumentID, err)
		}
	}
	for i, line := range v.Lines {
		var err error
		switch v.Direction {
		case domain.VoucherReceipt:
			_, _, err = s.costingSvc.ApplyIssue(ctx, line.ProductID, line.Quantity, now, docNo)
		case domain.VoucherIssue:
			_, err = s.costingSvc.ApplyReceipt(ctx, line.ProductID, line.Quantity, line.UnitPrice, now, docNo)
		}
		if err != nil {
			return fmt.Errorf("voucher %s cancellation line %d: %w", v.DocumentID, i+1, err)
		}
	}
	return nil
}
