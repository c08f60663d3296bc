// Package seed carries the standard chart of accounts and statutory rate
// schedules loaded on startup. Both are data, not behavior: a law change ships
// as a new schedule appended here, an industry-specific chart as extra
// accounts registered over the seeded ones.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type chartRow struct {
	Code     string
	Name     string
	Nature   domain.AccountNature
	IsParent bool
	Detail   bool
}

// standardChart is the subset of the small-business chart the posting rules
// and reports depend on. All rows are system accounts.
var standardChart = []chartRow{
	{"111", "Cash on hand", domain.NatureDebit, false, false},
	{"112", "Cash in bank", domain.NatureDebit, false, true},
	{"131", "Trade receivables", domain.NatureBoth, false, true},
	{"133", "Deductible VAT", domain.NatureDebit, true, false},
	{"1331", "Deductible VAT on goods and services", domain.NatureDebit, false, false},
	{"154", "Work in progress", domain.NatureDebit, false, false},
	{"156", "Merchandise inventory", domain.NatureDebit, true, false},
	{"1561", "Merchandise purchase cost", domain.NatureDebit, false, true},
	{"331", "Trade payables", domain.NatureBoth, false, true},
	{"333", "Taxes payable to the state", domain.NatureCredit, true, false},
	{"3331", "VAT payable", domain.NatureCredit, true, false},
	{"33311", "Output VAT payable", domain.NatureCredit, false, false},
	{"3335", "Personal income tax payable", domain.NatureCredit, false, false},
	{"334", "Payables to employees", domain.NatureCredit, false, false},
	{"338", "Other payables", domain.NatureCredit, true, false},
	{"3383", "Social insurance payable", domain.NatureCredit, false, false},
	{"411", "Owner's capital", domain.NatureCredit, false, false},
	{"511", "Sales revenue", domain.NatureCredit, true, false},
	{"5111", "Revenue from goods sold", domain.NatureCredit, false, false},
	{"515", "Financial income", domain.NatureCredit, false, false},
	{"632", "Cost of goods sold", domain.NatureDebit, false, false},
	{"635", "Financial expense", domain.NatureDebit, false, false},
	{"642", "Administration expense", domain.NatureDebit, true, false},
	{"6421", "Staff cost", domain.NatureDebit, false, false},
	{"6422", "Office and management cost", domain.NatureDebit, false, false},
	{"711", "Other income", domain.NatureCredit, false, false},
	{"811", "Other expense", domain.NatureDebit, false, false},
}

// DefaultChart returns the seeded chart of accounts.
func DefaultChart() []domain.Account {
	now := time.Now().UTC()
	accounts := make([]domain.Account, len(standardChart))
	for i, row := range standardChart {
		accounts[i] = domain.Account{
			Code:           row.Code,
			Name:           row.Name,
			Nature:         row.Nature,
			Status:         domain.AccountSystem,
			DetailRequired: row.Detail,
			IsParent:       row.IsParent,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     "seed",
				LastUpdatedAt: now,
				LastUpdatedBy: "seed",
			},
		}
	}
	return accounts
}

// DefaultSchedules returns the statutory rate schedules. The 2020-07-01
// schedule carries the 11M/4.4M deductions; regionalBaseOverride replaces the
// built-in base salary when positive.
func DefaultSchedules(regionalBaseOverride int64) domain.ScheduleSet {
	base := int64(2_340_000)
	if regionalBaseOverride > 0 {
		base = regionalBaseOverride
	}
	return domain.ScheduleSet{
		{
			EffectiveFrom: time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC),
			VATRates:      []int{0, 5, 8, 10},
			PITBrackets: []domain.PITBracket{
				{UpTo: 5_000_000, Rate: decimal.NewFromInt(5), QuickDeduction: 0},
				{UpTo: 10_000_000, Rate: decimal.NewFromInt(10), QuickDeduction: 250_000},
				{UpTo: 18_000_000, Rate: decimal.NewFromInt(15), QuickDeduction: 750_000},
				{UpTo: 32_000_000, Rate: decimal.NewFromInt(20), QuickDeduction: 1_650_000},
				{UpTo: 52_000_000, Rate: decimal.NewFromInt(25), QuickDeduction: 3_250_000},
				{UpTo: 80_000_000, Rate: decimal.NewFromInt(30), QuickDeduction: 5_850_000},
				{UpTo: 0, Rate: decimal.NewFromInt(35), QuickDeduction: 9_850_000},
			},
			PersonalDeduction:  11_000_000,
			DependentDeduction: 4_400_000,
			Insurance: domain.InsuranceRates{
				EmployeePct: decimal.NewFromFloat(10.5),
				EmployerPct: decimal.NewFromFloat(21.5),
			},
			RegionalBaseSalary: base,
		},
	}
}

// EnsureChart saves any missing seed account. Existing accounts are left
// untouched so a restart never reverts operator changes.
func EnsureChart(ctx context.Context, repo portsrepo.AccountRepositoryFacade) error {
	for _, account := range DefaultChart() {
		if _, err := repo.FindAccountByCode(ctx, account.Code); err == nil {
			continue
		}
		if err := repo.SaveAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", account.Code, err)
		}
	}
	return nil
}
