package services

import (
	"time"

	"github.com/ketsolab/ketoan/internal/core/domain"
)

// TaxSvcFacade performs the statutory calculations. Every method resolves the
// rate schedule in force on the given date; a law change mid-year never
// rewrites earlier computations.
type TaxSvcFacade interface {
	// VATLine computes amount, VAT and total for one invoice line. Sentinel
	// rates (not taxable / not declared) yield zero VAT.
	VATLine(date time.Time, qty, unitPrice, discount int64, rate int) (domain.VATLineResult, error)
	// PIT computes progressive personal income tax on a monthly taxable amount.
	PIT(date time.Time, taxable int64) (int64, error)
	// TaxableIncome derives the PIT base from gross pay and deductions,
	// floored at zero.
	TaxableIncome(date time.Time, gross, insuranceDeduction int64, dependents int) (int64, error)
	// InsuranceSplit computes the employee and employer contributions over the
	// capped insurance base.
	InsuranceSplit(date time.Time, insuranceBase int64) (employee int64, employer int64, err error)
	// ComputePayroll runs the full withholding chain for one payroll line.
	ComputePayroll(date time.Time, line domain.PayrollLine) (domain.PayrollBreakdown, error)
}
