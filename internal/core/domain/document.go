package domain

import "time"

// DocumentStatus is the lifecycle of every source document.
// Draft -> Posted -> Cancelled, with Draft -> Cancelled also allowed.
type DocumentStatus string

const (
	DocDraft     DocumentStatus = "DRAFT"
	DocPosted    DocumentStatus = "POSTED"
	DocCancelled DocumentStatus = "CANCELLED"
)

// InvoiceDirection distinguishes purchase (input) from sales (output) invoices.
type InvoiceDirection string

const (
	InvoiceInput  InvoiceDirection = "INPUT"
	InvoiceOutput InvoiceDirection = "OUTPUT"
)

// VoucherDirection distinguishes warehouse receipts from issues.
type VoucherDirection string

const (
	VoucherReceipt VoucherDirection = "RECEIPT"
	VoucherIssue   VoucherDirection = "ISSUE"
)

// VoucherSubtype names the business reason for a warehouse movement and
// selects the posting rule.
type VoucherSubtype string

const (
	VoucherPurchase      VoucherSubtype = "PURCHASE"
	VoucherSalesReturn   VoucherSubtype = "SALES_RETURN"
	VoucherSale          VoucherSubtype = "SALE"
	VoucherProductionUse VoucherSubtype = "PRODUCTION_USE"
)

// BankTxnType selects the posting rule for a bank transaction.
type BankTxnType string

const (
	BankDeposit        BankTxnType = "DEPOSIT"
	BankPayment        BankTxnType = "PAYMENT"
	BankSalary         BankTxnType = "SALARY"
	BankTaxPayment     BankTxnType = "TAX_PAYMENT"
	BankInterest       BankTxnType = "INTEREST"
	BankFee            BankTxnType = "FEE"
	BankCashDeposit    BankTxnType = "CASH_DEPOSIT"
	BankCashWithdrawal BankTxnType = "CASH_WITHDRAWAL"
)

// CreditsBank reports whether the transaction type increases the bank
// balance. The stored IsCredit flag is derived from this, never taken from
// the caller.
func (t BankTxnType) CreditsBank() bool {
	switch t {
	case BankDeposit, BankInterest, BankCashDeposit:
		return true
	}
	return false
}

// DocumentHeader carries the fields shared by every source-document variant.
type DocumentHeader struct {
	DocumentID   string         `json:"documentID"`
	DocumentNo   string         `json:"documentNo"`
	DocumentDate time.Time      `json:"documentDate"`
	Status       DocumentStatus `json:"status"`
	Counterpart  string         `json:"counterpart,omitempty"`
	Memo         string         `json:"memo,omitempty"`
	CancelReason string         `json:"cancelReason,omitempty"`
	AuditFields
}

// SourceDocument is the closed set of document variants the posting engine
// accepts. Each variant reports its source type and subtype so the engine can
// select a posting rule without switching on concrete types elsewhere.
type SourceDocument interface {
	Header() *DocumentHeader
	SourceType() SourceType
	Subtype() string
}

// InvoiceLine is one billed item. UnitPrice and Discount are integer VND;
// VATRate is a percent or one of the sentinel rates.
type InvoiceLine struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	Discount    int64  `json:"discount"`
	VATRate     int    `json:"vatRate"`
	AccountCode string `json:"accountCode"`
}

// Invoice is a sales (output) or purchase (input) invoice.
type Invoice struct {
	DocumentHeader
	Direction InvoiceDirection `json:"direction"`
	Lines     []InvoiceLine    `json:"lines"`
}

func (d *Invoice) Header() *DocumentHeader { return &d.DocumentHeader }
func (d *Invoice) SourceType() SourceType  { return SourceInvoice }
func (d *Invoice) Subtype() string         { return string(d.Direction) }

// VoucherLine is one product movement. UnitPrice is only meaningful for
// receipts; issues are costed at the moving average.
type VoucherLine struct {
	ProductID string `json:"productID"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// WarehouseVoucher records goods entering or leaving stock.
type WarehouseVoucher struct {
	DocumentHeader
	Direction      VoucherDirection `json:"direction"`
	VoucherSubtype VoucherSubtype   `json:"subtype"`
	Lines          []VoucherLine    `json:"lines"`
}

func (d *WarehouseVoucher) Header() *DocumentHeader { return &d.DocumentHeader }
func (d *WarehouseVoucher) SourceType() SourceType  { return SourceWarehouseVoucher }
func (d *WarehouseVoucher) Subtype() string         { return string(d.VoucherSubtype) }

// BankTransaction is a single money movement on a bank account.
type BankTransaction struct {
	DocumentHeader
	TxnType  BankTxnType `json:"txnType"`
	IsCredit bool        `json:"isCredit"`
	Amount   int64       `json:"amount"`
}

func (d *BankTransaction) Header() *DocumentHeader { return &d.DocumentHeader }
func (d *BankTransaction) SourceType() SourceType  { return SourceBankTransaction }
func (d *BankTransaction) Subtype() string         { return string(d.TxnType) }

// PayrollLine is one employee's pay for the period. GrossSalary, Allowances
// and InsuranceBase are integer VND.
type PayrollLine struct {
	EmployeeID     string `json:"employeeID"`
	EmployeeName   string `json:"employeeName"`
	GrossSalary    int64  `json:"grossSalary"`
	Allowances     int64  `json:"allowances"`
	InsuranceBase  int64  `json:"insuranceBase"`
	DependentCount int    `json:"dependentCount"`
}

// PayrollRun is a monthly payroll computation for a set of employees.
type PayrollRun struct {
	DocumentHeader
	Period string        `json:"period"` // YYYY-MM
	Lines  []PayrollLine `json:"lines"`
}

func (d *PayrollRun) Header() *DocumentHeader { return &d.DocumentHeader }
func (d *PayrollRun) SourceType() SourceType  { return SourcePayrollRun }
func (d *PayrollRun) Subtype() string         { return "MONTHLY" }
