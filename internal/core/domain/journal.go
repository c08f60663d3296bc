package domain

import "time"

// SourceType identifies the kind of source document a journal entry was
// generated from.
type SourceType string

const (
	SourceInvoice          SourceType = "INVOICE"
	SourceWarehouseVoucher SourceType = "WAREHOUSE_VOUCHER"
	SourceBankTransaction  SourceType = "BANK_TRANSACTION"
	SourcePayrollRun       SourceType = "PAYROLL_RUN"
)

// JournalLine is a single debit or credit against one leaf account. Amounts
// are integer VND; exactly one of Debit/Credit is non-zero.
type JournalLine struct {
	AccountCode string `json:"accountCode"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
	Memo        string `json:"memo,omitempty"`
}

// JournalEntry is a balanced, immutable set of journal lines produced by the
// posting engine. Reversal happens by appending a compensating entry, never by
// mutating or deleting an existing one.
type JournalEntry struct {
	EntryID    string        `json:"entryID"`
	Seq        int64         `json:"seq"`
	SourceType SourceType    `json:"sourceType"`
	SourceID   string        `json:"sourceID"`
	EntryDate  time.Time     `json:"entryDate"`
	PostedAt   time.Time     `json:"postedAt"`
	Memo       string        `json:"memo,omitempty"`
	Reversal   bool          `json:"reversal"`
	Lines      []JournalLine `json:"lines"`
	AuditFields
}

// TotalDebit sums the debit side of the entry.
func (e JournalEntry) TotalDebit() int64 {
	var sum int64
	for _, l := range e.Lines {
		sum += l.Debit
	}
	return sum
}

// TotalCredit sums the credit side of the entry.
func (e JournalEntry) TotalCredit() int64 {
	var sum int64
	for _, l := range e.Lines {
		sum += l.Credit
	}
	return sum
}

// Balanced reports the fundamental double-entry invariant.
func (e JournalEntry) Balanced() bool {
	return e.TotalDebit() == e.TotalCredit()
}

// Reversed returns a compensating entry: every line's debit and credit
// swapped, amounts untouched.
func (e JournalEntry) Reversed() []JournalLine {
	lines := make([]JournalLine, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLine{
			AccountCode: l.AccountCode,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Memo:        l.Memo,
		}
	}
	return lines
}
