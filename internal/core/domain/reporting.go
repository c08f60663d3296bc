package domain

// Movement is the summed debit/credit activity of one account over a period.
type Movement struct {
	Debit  int64 `json:"debit"`
	Credit int64 `json:"credit"`
}

// TrialBalanceRow is a single account row of the trial balance: period
// movement totals plus the closing balance placed on the account's normal
// side.
type TrialBalanceRow struct {
	AccountCode   string `json:"accountCode"`
	AccountName   string `json:"accountName"`
	TotalDebit    int64  `json:"totalDebit"`
	TotalCredit   int64  `json:"totalCredit"`
	ClosingDebit  int64  `json:"closingDebit"`
	ClosingCredit int64  `json:"closingCredit"`
}

// AccountAmount is an account with its net movement for a report section.
type AccountAmount struct {
	AccountCode string `json:"accountCode"`
	Name        string `json:"name"`
	NetAmount   int64  `json:"netAmount"`
}

// IncomeStatement is a simple P&L derived from the ledger: revenue classes
// (5, 7) against expense classes (6, 8).
type IncomeStatement struct {
	Revenue       []AccountAmount `json:"revenue"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  int64           `json:"totalRevenue"`
	TotalExpenses int64           `json:"totalExpenses"`
	NetProfit     int64           `json:"netProfit"`
}

// VATSummary aggregates output VAT payable against deductible input VAT.
type VATSummary struct {
	OutputVAT  int64 `json:"outputVAT"`
	InputVAT   int64 `json:"inputVAT"`
	NetPayable int64 `json:"netPayable"`
}
