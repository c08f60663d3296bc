package domain

// AccountClass is derived from the first digit of an account code and groups
// accounts by their role in the statements (short-term assets, liabilities,
// equity, revenue, expenses, other income/expense).
type AccountClass int

const (
	ClassCurrentAsset  AccountClass = 1
	ClassLongTermAsset AccountClass = 2
	ClassLiability     AccountClass = 3
	ClassEquity        AccountClass = 4
	ClassRevenue       AccountClass = 5
	ClassExpense       AccountClass = 6
	ClassOtherIncome   AccountClass = 7
	ClassOtherExpense  AccountClass = 8
)

// AccountNature declares on which side an account normally carries its balance.
// Control accounts such as 131 and 331 can legitimately swing both ways.
type AccountNature string

const (
	NatureDebit  AccountNature = "DEBIT"
	NatureCredit AccountNature = "CREDIT"
	NatureBoth   AccountNature = "BOTH"
)

// AccountStatus tracks the lifecycle of an account in the chart.
// System accounts are seeded from the standard chart and are immutable.
type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
	AccountSystem   AccountStatus = "SYSTEM"
)

// Account is a node in the chart-of-accounts hierarchy. The hierarchy is fully
// code-derived: 1561 is a child of 156, which is a child of 15... except codes
// of length 3 which are roots.
type Account struct {
	Code           string        `json:"code"`
	Name           string        `json:"name"`
	Nature         AccountNature `json:"nature"`
	Status         AccountStatus `json:"status"`
	DetailRequired bool          `json:"detailRequired"`
	IsParent       bool          `json:"isParent"`
	AuditFields
}

// Class returns the account class encoded in the first digit of the code.
func (a Account) Class() AccountClass {
	return AccountClass(a.Code[0] - '0')
}

// ParentCode returns the code of the direct parent, or "" for root accounts.
func (a Account) ParentCode() string {
	return ParentCodeOf(a.Code)
}

// IsSystem reports whether the account comes from the seeded standard chart.
func (a Account) IsSystem() bool {
	return a.Status == AccountSystem
}

// IsActive reports whether journal lines may reference the account at all.
// System accounts are always active.
func (a Account) IsActive() bool {
	return a.Status == AccountActive || a.Status == AccountSystem
}

// ParentCodeOf derives the parent code of an account code: the code minus its
// last digit, or "" when the code is a 3-digit root.
func ParentCodeOf(code string) string {
	if len(code) <= 3 {
		return ""
	}
	return code[:len(code)-1]
}

// LevelOf returns the nesting depth of a code: 1 for 3-digit roots, 2 for
// 4-digit children and so on.
func LevelOf(code string) int {
	return len(code) - 2
}

// ValidAccountCode reports whether code is a well-formed chart code: all
// digits, 3 to 5 characters, first digit in 1..8.
func ValidAccountCode(code string) bool {
	if len(code) < 3 || len(code) > 5 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return code[0] >= '1' && code[0] <= '8'
}
