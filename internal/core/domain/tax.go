package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel VAT rates. Lines carrying these compute zero VAT but are still
// reported in the declaration summary.
const (
	VATNotTaxable  = -1
	VATNotDeclared = -2
)

// PITBracket is one progressive personal-income-tax bracket. UpTo is the
// upper bound of monthly taxable income in VND, 0 meaning unbounded (the top
// bracket). QuickDeduction is the precomputed constant for the quick formula
// tax = taxable*rate - deduction, which must agree with the bracket walk.
type PITBracket struct {
	UpTo           int64           `json:"upTo"`
	Rate           decimal.Decimal `json:"rate"` // percent, e.g. 5
	QuickDeduction int64           `json:"quickDeduction"`
}

// InsuranceRates are the mandatory social/health/unemployment contribution
// rate sums in percent, applied independently to the same capped base.
type InsuranceRates struct {
	EmployeePct decimal.Decimal `json:"employeePct"` // e.g. 10.5
	EmployerPct decimal.Decimal `json:"employerPct"` // e.g. 21.5
}

// RateSchedule is the full set of statutory rates in force from a given date.
// A mid-year law change is modelled as a new schedule, never by rewriting an
// old one; every computation picks the schedule by document date.
type RateSchedule struct {
	EffectiveFrom      time.Time      `json:"effectiveFrom"`
	VATRates           []int          `json:"vatRates"` // allowed percent rates, e.g. 0,5,8,10
	PITBrackets        []PITBracket   `json:"pitBrackets"`
	PersonalDeduction  int64          `json:"personalDeduction"`
	DependentDeduction int64          `json:"dependentDeduction"`
	Insurance          InsuranceRates `json:"insurance"`
	RegionalBaseSalary int64          `json:"regionalBaseSalary"`
}

// InsuranceCap returns the statutory ceiling on the contribution base.
func (s RateSchedule) InsuranceCap() int64 {
	return 20 * s.RegionalBaseSalary
}

// AllowsVATRate reports whether rate is a legal VAT rate under this schedule.
// Sentinel rates are always allowed.
func (s RateSchedule) AllowsVATRate(rate int) bool {
	if rate == VATNotTaxable || rate == VATNotDeclared {
		return true
	}
	for _, r := range s.VATRates {
		if r == rate {
			return true
		}
	}
	return false
}

// VATLineResult carries the derived amounts of a single invoice line.
type VATLineResult struct {
	Amount int64 `json:"amount"` // qty*price - discount
	VAT    int64 `json:"vat"`
	Total  int64 `json:"total"` // Amount + VAT
}

// PayrollBreakdown is the computed withholding for one payroll line.
type PayrollBreakdown struct {
	Gross             int64 `json:"gross"` // salary + allowances
	EmployeeInsurance int64 `json:"employeeInsurance"`
	EmployerInsurance int64 `json:"employerInsurance"`
	PIT               int64 `json:"pit"`
	Net               int64 `json:"net"`
}

// ScheduleSet is an ordered collection of rate schedules.
type ScheduleSet []RateSchedule

// ForDate returns the schedule in force on the given date: the latest
// schedule whose EffectiveFrom is not after it.
func (set ScheduleSet) ForDate(date time.Time) (RateSchedule, bool) {
	var found RateSchedule
	ok := false
	for _, s := range set {
		if s.EffectiveFrom.After(date) {
			continue
		}
		if !ok || s.EffectiveFrom.After(found.EffectiveFrom) {
			found = s
			ok = true
		}
	}
	return found, ok
}
