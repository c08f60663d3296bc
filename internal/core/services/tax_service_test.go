package services_test

import (
	"testing"
	"time"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portssvc "github.com/ketsolab/ketoan/internal/core/ports/services"
	"github.com/ketsolab/ketoan/internal/core/services"
	"github.com/ketsolab/ketoan/internal/platform/seed"
	"github.com/ketsolab/ketoan/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taxDate = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

func newTaxService() portssvc.TaxSvcFacade {
	return services.NewTaxService(seed.DefaultSchedules(0))
}

func TestVATLine(t *testing.T) {
	svc := newTaxService()

	t.Run("standard line", func(t *testing.T) {
		res, err := svc.VATLine(taxDate, 100, 120_000, 0, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(12_000_000), res.Amount)
		assert.Equal(t, int64(600_000), res.VAT)
		assert.Equal(t, int64(12_600_000), res.Total)
	})

	t.Run("discount reduces base", func(t *testing.T) {
		res, err := svc.VATLine(taxDate, 10, 100_000, 50_000, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(950_000), res.Amount)
		assert.Equal(t, int64(95_000), res.VAT)
	})

	t.Run("sentinel rates yield zero VAT", func(t *testing.T) {
		for _, rate := range []int{domain.VATNotTaxable, domain.VATNotDeclared, 0} {
			res, err := svc.VATLine(taxDate, 10, 100_000, 0, rate)
			require.NoError(t, err)
			assert.Equal(t, int64(1_000_000), res.Amount)
			assert.Equal(t, int64(0), res.VAT)
			assert.Equal(t, res.Amount, res.Total)
		}
	})

	t.Run("disallowed rate rejected", func(t *testing.T) {
		_, err := svc.VATLine(taxDate, 1, 100, 0, 7)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("discount above line amount rejected", func(t *testing.T) {
		_, err := svc.VATLine(taxDate, 1, 100, 200, 10)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("no schedule for ancient date", func(t *testing.T) {
		_, err := svc.VATLine(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 1, 100, 0, 10)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestPITBracketWalkMatchesQuickFormula(t *testing.T) {
	svc := newTaxService()
	schedule, ok := seed.DefaultSchedules(0).ForDate(taxDate)
	require.True(t, ok)

	quick := func(taxable int64) int64 {
		if taxable <= 0 {
			return 0
		}
		for _, b := range schedule.PITBrackets {
			if b.UpTo == 0 || taxable <= b.UpTo {
				return accounting.RoundVND(
					decimal.NewFromInt(taxable).Mul(b.Rate).Div(decimal.NewFromInt(100))) - b.QuickDeduction
			}
		}
		return 0
	}

	for taxable := int64(0); taxable <= 200_000_000; taxable += 1_234_567 {
		got, err := svc.PIT(taxDate, taxable)
		require.NoError(t, err)
		assert.Equal(t, quick(taxable), got, "taxable=%d", taxable)
	}

	// Bracket boundaries exactly.
	for _, b := range schedule.PITBrackets {
		if b.UpTo == 0 {
			continue
		}
		got, err := svc.PIT(taxDate, b.UpTo)
		require.NoError(t, err)
		assert.Equal(t, quick(b.UpTo), got, "boundary=%d", b.UpTo)
	}
}

func TestPITKnownValues(t *testing.T) {
	svc := newTaxService()

	// 5M at 5% flat.
	got, err := svc.PIT(taxDate, 5_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(250_000), got)

	// 15M: 250k + 500k + 5M*15% = 1,500,000.
	got, err = svc.PIT(taxDate, 15_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), got)

	got, err = svc.PIT(taxDate, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	got, err = svc.PIT(taxDate, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestTaxableIncome(t *testing.T) {
	svc := newTaxService()

	// 30M gross, 2M insurance, 1 dependent: 30 - 2 - 11 - 4.4 = 12.6M.
	got, err := svc.TaxableIncome(taxDate, 30_000_000, 2_000_000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(12_600_000), got)

	// Floored at zero.
	got, err = svc.TaxableIncome(taxDate, 10_000_000, 1_000_000, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	_, err = svc.TaxableIncome(taxDate, 10_000_000, 0, -1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestInsuranceSplit(t *testing.T) {
	svc := newTaxService()

	t.Run("uncapped base", func(t *testing.T) {
		employee, employer, err := svc.InsuranceSplit(taxDate, 10_000_000)
		require.NoError(t, err)
		assert.Equal(t, int64(1_050_000), employee)
		assert.Equal(t, int64(2_150_000), employer)
	})

	t.Run("base above cap uses cap", func(t *testing.T) {
		cap := int64(20 * 2_340_000)
		employee, employer, err := svc.InsuranceSplit(taxDate, cap+50_000_000)
		require.NoError(t, err)
		capEmployee, capEmployer, err := svc.InsuranceSplit(taxDate, cap)
		require.NoError(t, err)
		assert.Equal(t, capEmployee, employee)
		assert.Equal(t, capEmployer, employer)
	})

	t.Run("negative base rejected", func(t *testing.T) {
		_, _, err := svc.InsuranceSplit(taxDate, -1)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestComputePayroll(t *testing.T) {
	svc := newTaxService()

	line := domain.PayrollLine{
		EmployeeID:     "E001",
		GrossSalary:    28_000_000,
		Allowances:     2_000_000,
		InsuranceBase:  28_000_000,
		DependentCount: 1,
	}
	breakdown, err := svc.ComputePayroll(taxDate, line)
	require.NoError(t, err)

	assert.Equal(t, int64(30_000_000), breakdown.Gross)
	// 28M * 10.5% / 21.5%.
	assert.Equal(t, int64(2_940_000), breakdown.EmployeeInsurance)
	assert.Equal(t, int64(6_020_000), breakdown.EmployerInsurance)
	// Taxable: 30 - 2.94 - 11 - 4.4 = 11.66M -> 250k + 500k + 1.66M*15% = 999k.
	assert.Equal(t, int64(999_000), breakdown.PIT)
	assert.Equal(t, breakdown.Gross-breakdown.EmployeeInsurance-breakdown.PIT, breakdown.Net)
}
