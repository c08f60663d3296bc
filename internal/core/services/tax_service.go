package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrNoScheduleForDate = errors.New("no rate schedule in force on date")
	ErrDisallowedVATRate = errors.New("VAT rate not allowed by schedule")
)

// taxService performs the statutory VAT, PIT and insurance calculations over a
// versioned set of rate schedules. The set is fixed at construction; a law
// change ships as a new schedule appended to the seed, never as an edit.
type taxService struct {
	BaseService
	schedules domain.ScheduleSet
}

// NewTaxService creates the tax calculator over the given schedules.
func NewTaxService(schedules domain.ScheduleSet) portssvc.TaxSvcFacade {
	return &taxService{schedules: schedules}
}

var _ portssvc.TaxSvcFacade = (*taxService)(nil)

func (s *taxService) scheduleFor(date time.Time) (domain.RateSchedule, error) {
	schedule, ok := s.schedules.ForDate(date)
	if !ok {
		return domain.RateSchedule{}, fmt.Errorf("%w: %s (%s)", apperrors.ErrValidation, date.Format("2006-01-02"), ErrNoScheduleForDate)
	}
	return schedule, nil
}

// VATLine computes amount, VAT and total for one invoice line. VAT is rounded
// per line, half up; sentinel rates yield zero VAT.
func (s *taxService) VATLine(date time.Time, qty, unitPrice, discount int64, rate int) (domain.VATLineResult, error) {
	schedule, err := s.scheduleFor(date)
	if err != nil {
		return domain.VATLineResult{}, err
	}
	if !schedule.AllowsVATRate(rate) {
		return domain.VATLineResult{}, fmt.Errorf("%w: rate %d%% (%s)", apperrors.ErrValidation, rate, ErrDisallowedVATRate)
	}

	amount := qty*unitPrice - discount
	if amount < 0 {
		return domain.VATLineResult{}, fmt.Errorf("%w: discount %d exceeds line amount %d", apperrors.ErrValidation, discount, qty*unitPrice)
	}

	var vat int64
	if rate > 0 {
		vat = accounting.PercentOf(amount, decimal.NewFromInt(int64(rate)))
	}
	return domain.VATLineResult{Amount: amount, VAT: vat, Total: amount + vat}, nil
}

// PIT walks the progressive brackets over the monthly taxable amount. The
// quick formula taxable*rate - quickDeduction on the marginal bracket gives
// the same result; the walk is authoritative.
func (s *taxService) PIT(date time.Time, taxable int64) (int64, error) {
	schedule, err := s.scheduleFor(date)
	if err != nil {
		return 0, err
	}
	if taxable <= 0 {
		return 0, nil
	}

	tax := decimal.Zero
	var lower int64
	for _, bracket := range schedule.PITBrackets {
		upper := bracket.UpTo
		if upper == 0 || taxable < upper {
			upper = taxable
		}
		if upper > lower {
			slice := decimal.NewFromInt(upper - lower)
			tax = tax.Add(slice.Mul(bracket.Rate).Div(decimal.NewFromInt(100)))
		}
		if bracket.UpTo == 0 || taxable <= bracket.UpTo {
			break
		}
		lower = bracket.UpTo
	}
	return accounting.RoundVND(tax), nil
}

// TaxableIncome derives the monthly PIT base: gross minus mandatory insurance,
// the personal deduction and per-dependent deductions, floored at zero.
func (s *taxService) TaxableIncome(date time.Time, gross, insuranceDeduction int64, dependents int) (int64, error) {
	schedule, err := s.scheduleFor(date)
	if err != nil {
		return 0, err
	}
	if dependents < 0 {
		return 0, fmt.Errorf("%w: dependent count must be non-negative", apperrors.ErrValidation)
	}

	taxable := gross - insuranceDeduction - schedule.PersonalDeduction - int64(dependents)*schedule.DependentDeduction
	if taxable < 0 {
		taxable = 0
	}
	return taxable, nil
}

// InsuranceSplit computes employee and employer contributions on the capped
// base. Both sides use the same base; each side rounds independently.
func (s *taxService) InsuranceSplit(date time.Time, insuranceBase int64) (int64, int64, error) {
	schedule, err := s.scheduleFor(date)
	if err != nil {
		return 0, 0, err
	}
	if insuranceBase < 0 {
		return 0, 0, fmt.Errorf("%w: insurance base must be non-negative", apperrors.ErrValidation)
	}

	base := insuranceBase
	if cap := schedule.InsuranceCap(); base > cap {
		base = cap
	}
	employee := accounting.PercentOf(base, schedule.Insurance.EmployeePct)
	employer := accounting.PercentOf(base, schedule.Insurance.EmployerPct)
	return employee, employer, nil
}

// ComputePayroll runs the full monthly withholding chain for one line:
// insurance on the capped base, then PIT on gross minus insurance and
// deductions, then net pay.
func (s *taxService) ComputePayroll(date time.Time, line domain.PayrollLine) (domain.PayrollBreakdown, error) {
	if line.GrossSalary < 0 || line.Allowances < 0 || line.InsuranceBase < 0 {
		return domain.PayrollBreakdown{}, fmt.Errorf("%w: payroll amounts must be non-negative", apperrors.ErrValidation)
	}

	gross := line.GrossSalary + line.Allowances
	employee, employer, err := s.InsuranceSplit(date, line.InsuranceBase)
	if err != nil {
		return domain.PayrollBreakdown{}, err
	}
	taxable, err := s.TaxableIncome(date, gross, employee, line.DependentCount)
	if err != nil {
		return domain.PayrollBreakdown{}, err
	}
	pit, err := s.PIT(date, taxable)
	if err != nil {
		return domain.PayrollBreakdown{}, err
	}

	return domain.PayrollBreakdown{
		Gross:             gross,
		EmployeeInsurance: employee,
		EmployerInsurance: employer,
		PIT:               pit,
		Net:               gross - employee - pit,
	}, nil
}
