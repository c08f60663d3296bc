package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/dto"
)

// reportingService derives read-only aggregates from the append-only ledger.
// Nothing here is stored; every report is recomputed from entry lines, so a
// compensating entry automatically nets out of all of them.
type reportingService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// NewReportingService creates the ledger reporting service.
func NewReportingService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountReader) portssvc.ReportingSvcFacade {
	return &reportingService{ledgerRepo: ledgerRepo, accountRepo: accountRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// TrialBalance sums every account's movement up to asOf and places the
// closing balance on the account's normal side. Balanced entries guarantee
// total closing debits equal total closing credits.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	movements, err := s.ledgerRepo.SumByAccount(ctx, time.Time{}, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum ledger movement")
		return nil, fmt.Errorf("failed to sum ledger movement: %w", err)
	}

	codes := make([]string, 0, len(movements))
	for code := range movements {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts for trial balance")
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	names := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		names[a.Code] = a
	}

	rows := make([]domain.TrialBalanceRow, 0, len(codes))
	for _, code := range codes {
		m := movements[code]
		row := domain.TrialBalanceRow{
			AccountCode: code,
			TotalDebit:  m.Debit,
			TotalCredit: m.Credit,
		}
		account, known := names[code]
		if known {
			row.AccountName = account.Name
		}

		net := m.Debit - m.Credit
		switch {
		case known && account.Nature == domain.NatureCredit:
			row.ClosingCredit = -net
		case known && account.Nature == domain.NatureDebit:
			row.ClosingDebit = net
		default:
			// Dual-nature accounts land on whichever side the balance falls.
			if net >= 0 {
				row.ClosingDebit = net
			} else {
				row.ClosingCredit = -net
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// IncomeStatement nets revenue classes (5, 7) against expense classes (6, 8)
// over the period. Revenue accounts accumulate on the credit side, expenses on
// the debit side.
func (s *reportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatement, error) {
	movements, err := s.ledgerRepo.SumByAccount(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum ledger movement")
		return nil, fmt.Errorf("failed to sum ledger movement: %w", err)
	}

	codes := make([]string, 0, len(movements))
	for code := range movements {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts for income statement")
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.Code] = a.Name
	}

	statement := &domain.IncomeStatement{
		Revenue:  []domain.AccountAmount{},
		Expenses: []domain.AccountAmount{},
	}
	for _, code := range codes {
		m := movements[code]
		switch domain.AccountClass(code[0] - '0') {
		case domain.ClassRevenue, domain.ClassOtherIncome:
			amount := m.Credit - m.Debit
			statement.Revenue = append(statement.Revenue, domain.AccountAmount{AccountCode: code, Name: names[code], NetAmount: amount})
			statement.TotalRevenue += amount
		case domain.ClassExpense, domain.ClassOtherExpense:
			amount := m.Debit - m.Credit
			statement.Expenses = append(statement.Expenses, domain.AccountAmount{AccountCode: code, Name: names[code], NetAmount: amount})
			statement.TotalExpenses += amount
		}
	}
	statement.NetProfit = statement.TotalRevenue - statement.TotalExpenses
	return statement, nil
}

// VATSummary aggregates output VAT (credit balance of 33311) against
// deductible input VAT (debit balance of 1331) over the period.
func (s *reportingService) VATSummary(ctx context.Context, from, to time.Time) (*domain.VATSummary, error) {
	movements, err := s.ledgerRepo.SumByAccount(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum ledger movement")
		return nil, fmt.Errorf("failed to sum ledger movement: %w", err)
	}

	output := movements[acctOutputVAT]
	input := movements[acctInputVAT]
	summary := &domain.VATSummary{
		OutputVAT: output.Credit - output.Debit,
		InputVAT:  input.Debit - input.Credit,
	}
	summary.NetPayable = summary.OutputVAT - summary.InputVAT
	return summary, nil
}

// ListEntries pages the ledger in append order.
func (s *reportingService) ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	entries, nextToken, err := s.ledgerRepo.ListEntries(ctx, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries")
		return nil, nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	return entries, nextToken, nil
}

// AccountActivity pages the entries touching one account in append order.
func (s *reportingService) AccountActivity(ctx context.Context, accountCode string, params dto.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	if _, err := s.accountRepo.FindAccountByCode(ctx, accountCode); err != nil {
		return nil, nil, err
	}
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	entries, nextToken, err := s.ledgerRepo.ListLinesByAccount(ctx, accountCode, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account activity")
		return nil, nil, fmt.Errorf("failed to list activity of %s: %w", accountCode, err)
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	return entries, nextToken, nil
}
