package finance

import "time"

// MonthlyFinancialPoint is one month of aggregated figures for a company.
// Amounts are non-negative minor currency units.
type MonthlyFinancialPoint struct {
	Date     string `json:"date"`
	Revenue  int64  `json:"revenue"`
	COGS     int64  `json:"cogs"`
	Expenses int64  `json:"expenses"`
	Cash     int64  `json:"cash"`
}

// TransactionType classifies a synthetic transaction.
type TransactionType string

const (
	TypeRevenue TransactionType = "Revenue"
	TypeCOGS    TransactionType = "COGS"
	TypeExpense TransactionType = "Expense"
)

// Account is the report-level account a synthetic transaction is booked to.
type Account string

const (
	AccountSales     Account = "Sales"
	AccountCOGS      Account = "COGS"
	AccountPayroll   Account = "Payroll"
	AccountRent      Account = "Rent"
	AccountMarketing Account = "Marketing"
	AccountOther     Account = "Other"
)

// FilterAll disables account or type filtering.
const FilterAll = "All"

// SyntheticTransaction is derived from a MonthlyFinancialPoint for display only.
// IDs are random per call and must not be used as durable identities.
type SyntheticTransaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Account     Account         `json:"account"`
	Description string          `json:"description"`
	Amount      int64           `json:"amount"`
	Type        TransactionType `json:"type"`
}

// ReportFilters is the user-controlled query state for a P&L render.
type ReportFilters struct {
	Query     string          `json:"query"`
	MinAmount *int64          `json:"min_amount,omitempty"`
	MaxAmount *int64          `json:"max_amount,omitempty"`
	Account   string          `json:"account"`
	Type      string          `json:"type"`
	Expanded  map[string]bool `json:"expanded,omitempty"`
}

// RowType classifies a P&L row.
type RowType string

const (
	RowRevenue  RowType = "Revenue"
	RowCOGS     RowType = "COGS"
	RowExpense  RowType = "Expense"
	RowComputed RowType = "Computed"
)

// PLRow is one line of a rendered profit and loss report.
type PLRow struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Amount     int64   `json:"amount"`
	Type       RowType `json:"type"`
	Account    Account `json:"account,omitempty"`
	Expandable bool    `json:"expandable"`
}

// TransactionDetail is one ledger line in a drill-down.
type TransactionDetail struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Reference      string `json:"reference"`
	Description    string `json:"description"`
	Debit          int64  `json:"debit"`
	Credit         int64  `json:"credit"`
	RunningBalance int64  `json:"running_balance"`
	CreatedBy      string `json:"created_by"`
}

// DrillDownData is the resolved ledger for one account.
// Balance includes the children's balances; OwnBalance covers Transactions only.
// Fallback is set when the ledger could not be reached and the data is synthetic.
type DrillDownData struct {
	AccountCode  string              `json:"account_code"`
	AccountName  string              `json:"account_name"`
	Balance      int64               `json:"balance"`
	OwnBalance   int64               `json:"own_balance"`
	Transactions []TransactionDetail `json:"transactions"`
	Children     []DrillDownData     `json:"children,omitempty"`
	Fallback     bool                `json:"fallback"`
}

// AccountType is the chart-of-accounts classification.
type AccountType string

const (
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeCOGS      AccountType = "cogs"
	AccountTypeExpense   AccountType = "expense"
	AccountTypeAsset     AccountType = "asset"
	AccountTypeCash      AccountType = "cash"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
)

// AccountEntry is a chart-of-accounts entry.
type AccountEntry struct {
	Code       string      `json:"code"`
	Name       string      `json:"name"`
	Type       AccountType `json:"type"`
	ParentCode *string     `json:"parent_code"`
	IsGroup    bool        `json:"is_group"`
}

// TrialBalanceLine is one account balance inside a trial balance.
type TrialBalanceLine struct {
	AccountCode string `json:"account_code"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
}

// TrialBalance is a snapshot of account balances for one period.
type TrialBalance struct {
	ID        string             `json:"id"`
	CompanyID string             `json:"company_id"`
	Period    time.Time          `json:"period"`
	CreatedAt time.Time          `json:"created_at"`
	Lines     []TrialBalanceLine `json:"lines"`
}

// LedgerEntry is a general-ledger posting.
type LedgerEntry struct {
	ID          string    `json:"id"`
	AccountCode string    `json:"account_code"`
	Date        time.Time `json:"date"`
	Reference   string    `json:"reference"`
	Description string    `json:"description"`
	Debit       int64     `json:"debit"`
	Credit      int64     `json:"credit"`
	CreatedBy   string    `json:"created_by"`
}
