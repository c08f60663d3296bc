package services

import "github.com/ketsolab/ketoan/internal/core/domain"

// Chart codes referenced by the posting rules. The seeded chart marks these as
// system accounts so they cannot be deactivated from under the rule table.
const (
	acctCash           = "111"
	acctBank           = "112"
	acctReceivables    = "131"
	acctInputVAT       = "1331"
	acctMerchandise    = "1561"
	acctWorkInProgress = "154"
	acctPayables       = "331"
	acctOutputVAT      = "33311"
	acctPITPayable     = "3335"
	acctSocialIns      = "3383"
	acctStaffPayable   = "334"
	acctSalesRevenue   = "5111"
	acctFinanceIncome  = "515"
	acctCOGS           = "632"
	acctStaffCost      = "6421"
	acctAdminCost      = "6422"
)

// Default line accounts when an invoice line names none.
const (
	defaultOutputLineAccount = acctSalesRevenue
	defaultInputLineAccount  = acctAdminCost
)

// Named amounts computed per document by the compile step. A template whose
// amount resolves to zero emits no lines.
const (
	amtTotal       = "total"
	amtVAT         = "vat"
	amtValue       = "value"
	amtCost        = "cost"
	amtAmount      = "amount"
	amtGross       = "gross"
	amtEmployeeIns = "employeeInsurance"
	amtEmployerIns = "employerInsurance"
	amtPIT         = "pit"
)

type ruleKey struct {
	Source  domain.SourceType
	Subtype string
}

// entryTemplate emits a debit line, a credit line, or both, carrying the named
// amount. An empty account on either side skips that side.
type entryTemplate struct {
	Debit  string
	Credit string
	Amount string
}

// postingRule is the declarative recipe turning one document subtype into
// journal lines. Per-line parts (invoice revenue/expense splits) are compiled
// separately; the templates cover the fixed-shape remainder.
type postingRule struct {
	Memo      string
	Templates []entryTemplate
}

// ruleTable maps every postable (source type, subtype) pair to its recipe.
// Adding a document subtype means adding a row here, not a code path.
var ruleTable = map[ruleKey]postingRule{
	{domain.SourceInvoice, string(domain.InvoiceOutput)}: {
		Memo: "Sales invoice",
		Templates: []entryTemplate{
			{Debit: acctReceivables, Amount: amtTotal},
			{Credit: acctOutputVAT, Amount: amtVAT},
		},
	},
	{domain.SourceInvoice, string(domain.InvoiceInput)}: {
		Memo: "Purchase invoice",
		Templates: []entryTemplate{
			{Debit: acctInputVAT, Amount: amtVAT},
			{Credit: acctPayables, Amount: amtTotal},
		},
	},

	{domain.SourceWarehouseVoucher, string(domain.VoucherPurchase)}: {
		Memo: "Goods receipt",
		Templates: []entryTemplate{
			{Debit: acctMerchandise, Credit: acctPayables, Amount: amtValue},
		},
	},
	{domain.SourceWarehouseVoucher, string(domain.VoucherSalesReturn)}: {
		Memo: "Sales return receipt",
		Templates: []entryTemplate{
			{Debit: acctMerchandise, Credit: acctCOGS, Amount: amtValue},
		},
	},
	{domain.SourceWarehouseVoucher, string(domain.VoucherSale)}: {
		Memo: "Goods issue for sale",
		Templates: []entryTemplate{
			{Debit: acctCOGS, Credit: acctMerchandise, Amount: amtCost},
		},
	},
	{domain.SourceWarehouseVoucher, string(domain.VoucherProductionUse)}: {
		Memo: "Goods issue to production",
		Templates: []entryTemplate{
			{Debit: acctWorkInProgress, Credit: acctMerchandise, Amount: amtCost},
		},
	},

	{domain.SourceBankTransaction, string(domain.BankDeposit)}: {
		Memo: "Customer deposit",
		Templates: []entryTemplate{
			{Debit: acctBank, Credit: acctReceivables, Amount: amtAmount},
		},
	},
	{domain.SourceBankTransaction, string(domain.BankPayment)}: {
		Memo: "Supplier payment",
		Templates: []entryTemplate{
			{Debit: acctPayables, Credit: acctBank, Amount: amtAmount},
		},
	},
	{domain.SourceBankTransaction, string(domain.BankSalary)}: {
		Memo: "Salary payment",
		Templates: []entryTemplate{
			{Debit: acctStaffPayable, Credit: acctBank, Amount: amtAmount},
		},
	},
	// VAT settles against the output sub-account; 3331 itself is a group
	// account and cannot take lines.
	{domain.SourceBankTransaction, string(domain.BankTaxPayment)}: {
		Memo: "Tax payment",
		Templates: []entryTemplate{
			{Debit: acctOutputVAT, Credit: acctBank, Amount: amtAmount},
		},
	},
	{domain.SourceBankTransaction, string(domain.BankInterest)}: {
		Memo: "Bank interest",
		Templates: []entryTemplate{
			{Debit: acctBank, Credit: acctFinanceIncome, Amount: amtAmount},
		},
	},
	{domain.SourceBankTransaction, string(domain.BankFee)}: {
		Memo: "Bank fee",
		Templates: []entryTemplate{
			{Debit: acctAdminCost, Credit: acctBank, Amount: amtAmount},
		},
	},
	{domain.SourceBankTransaction, string(domain.BankCashDeposit)}: {
		Memo: "Cash deposited to bank",
		Templates: []entryTemplate{
			{Debit: acctBank, Credit: acctCash, Amount: amtAmount},
		},
	},
	{domain.SourceBankTransaction, string(domain.BankCashWithdrawal)}: {
		Memo: "Cash withdrawn from bank",
		Templates: []entryTemplate{
			{Debit: acctCash, Credit: acctBank, Amount: amtAmount},
		},
	},

	{domain.SourcePayrollRun, "MONTHLY"}: {
		Memo: "Monthly payroll",
		Templates: []entryTemplate{
			{Debit: acctStaffCost, Credit: acctStaffPayable, Amount: amtGross},
			{Debit: acctStaffCost, Credit: acctSocialIns, Amount: amtEmployerIns},
			{Debit: acctStaffPayable, Credit: acctSocialIns, Amount: amtEmployeeIns},
			{Debit: acctStaffPayable, Credit: acctPITPayable, Amount: amtPIT},
		},
	},
}

// entryPlan is the compiled input to template application: named amounts plus
// per-line journal lines the templates cannot express.
type entryPlan struct {
	Amounts map[string]int64
	Lines   []domain.JournalLine
}

// expand applies the rule templates over the plan's amounts and appends the
// resulting lines to the plan's per-line ones. Zero amounts emit nothing.
func (r postingRule) expand(plan entryPlan) []domain.JournalLine {
	lines := append([]domain.JournalLine{}, plan.Lines...)
	for _, t := range r.Templates {
		amount := plan.Amounts[t.Amount]
		if amount == 0 {
			continue
		}
		if t.Debit != "" {
			lines = append(lines, domain.JournalLine{AccountCode: t.Debit, Debit: amount})
		}
		if t.Credit != "" {
			lines = append(lines, domain.JournalLine{AccountCode: t.Credit, Credit: amount})
		}
	}
	return lines
}

// accounts returns every account code the rule's templates can touch.
func (r postingRule) accounts() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range r.Templates {
		for _, code := range []string{t.Debit, t.Credit} {
			if code != "" && !seen[code] {
				seen[code] = true
				out = append(out, code)
			}
		}
	}
	return out
}
