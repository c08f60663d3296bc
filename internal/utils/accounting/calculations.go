package accounting

import (
	"fmt"

	"github.com/ketsolab/ketoan/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RoundVND rounds a decimal amount to whole VND using round-half-up. This is
// the single rounding rule for the whole engine; derived amounts must be
// rounded per line, never on summed bases.
func RoundVND(d decimal.Decimal) int64 {
	// shopspring rounds half away from zero; amounts here are non-negative,
	// which makes that exactly half-up.
	return d.Round(0).IntPart()
}

// PercentOf computes amount*pct/100 rounded to whole VND.
func PercentOf(amount int64, pct decimal.Decimal) int64 {
	return RoundVND(decimal.NewFromInt(amount).Mul(pct).Div(decimal.NewFromInt(100)))
}

// ValidateEntryBalance checks the shape and the fundamental invariant of a
// set of journal lines: at least two lines, every line strictly one-sided
// with a positive amount, and total debits equal to total credits.
func ValidateEntryBalance(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("entry must have at least two lines, got %d", len(lines))
	}

	var debits, credits int64
	for i, l := range lines {
		if l.Debit < 0 || l.Credit < 0 {
			return fmt.Errorf("line %d for account %s has a negative amount", i, l.AccountCode)
		}
		if (l.Debit == 0) == (l.Credit == 0) {
			return fmt.Errorf("line %d for account %s must have exactly one of debit/credit set", i, l.AccountCode)
		}
		debits += l.Debit
		credits += l.Credit
	}

	if debits != credits {
		return fmt.Errorf("entry does not balance: debits %d, credits %d", debits, credits)
	}
	return nil
}

// CoalesceLines merges lines that target the same account on the same side,
// preserving first-seen order. Posting rules use this so multi-line documents
// produce one aggregate line per distinct target account.
func CoalesceLines(lines []domain.JournalLine) []domain.JournalLine {
	type key struct {
		code  string
		debit bool
	}
	index := make(map[key]int)
	out := make([]domain.JournalLine, 0, len(lines))
	for _, l := range lines {
		k := key{code: l.AccountCode, debit: l.Debit != 0}
		if i, ok := index[k]; ok {
			out[i].Debit += l.Debit
			out[i].Credit += l.Credit
			continue
		}
		index[k] = len(out)
		out = append(out, l)
	}
	return out
}
