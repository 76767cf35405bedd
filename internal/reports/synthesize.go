package reports

import (
	"github.com/google/uuid"

	"consultflow-backend/internal/finance"
)

// split assigns a share of a monthly aggregate to one synthetic transaction.
// Shares are percentages; the last split of a category absorbs the rounding remainder.
type split struct {
	account     finance.Account
	description string
	percent     int64
}

var (
	revenueSplits = []split{
		{finance.AccountSales, "Product Sales", 70},
		{finance.AccountSales, "Service Revenue", 30},
	}
	cogsSplits = []split{
		{finance.AccountCOGS, "Raw Materials", 60},
		{finance.AccountCOGS, "Direct Labor", 40},
	}
	expenseSplits = []split{
		{finance.AccountPayroll, "Payroll", 50},
		{finance.AccountRent, "Office Rent", 20},
		{finance.AccountMarketing, "Marketing Campaigns", 20},
		{finance.AccountOther, "Other Operating Expenses", 10},
	}
)

// Synthesize expands monthly aggregates into transaction-level records.
// The split is deterministic except for the generated IDs.
func Synthesize(points []finance.MonthlyFinancialPoint) []finance.SyntheticTransaction {
	txns := make([]finance.SyntheticTransaction, 0, len(points)*8)
	for _, p := range points {
		txns = appendSplits(txns, p.Date, p.Revenue, finance.TypeRevenue, revenueSplits)
		txns = appendSplits(txns, p.Date, p.COGS, finance.TypeCOGS, cogsSplits)
		txns = appendSplits(txns, p.Date, p.Expenses, finance.TypeExpense, expenseSplits)
	}
	return txns
}

func appendSplits(txns []finance.SyntheticTransaction, date string, total int64, typ finance.TransactionType, splits []split) []finance.SyntheticTransaction {
	remaining := total
	for i, s := range splits {
		amount := total/100*s.percent + total%100*s.percent/100
		if i == len(splits)-1 {
			amount = remaining
		}
		remaining -= amount

		txns = append(txns, finance.SyntheticTransaction{
			ID:          uuid.NewString(),
			Date:        date,
			Account:     s.account,
			Description: s.description,
			Amount:      amount,
			Type:        typ,
		})
	}
	return txns
}
