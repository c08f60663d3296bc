package services

import (
	"context"
	"time"

	"github.com/ketsolab/ketoan/internal/core/domain"
	"github.com/ketsolab/ketoan/internal/dto"
)

// ReportingSvcFacade derives read-only aggregates from the ledger. The ledger
// is the single source of truth; nothing here is persisted independently.
type ReportingSvcFacade interface {
	TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)
	IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatement, error)
	VATSummary(ctx context.Context, from, to time.Time) (*domain.VATSummary, error)
	ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, *string, error)
	AccountActivity(ctx context.Context, accountCode string, params dto.ListEntriesParams) ([]domain.JournalEntry, *string, error)
}
