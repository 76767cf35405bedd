package reports

import (
	"strings"

	"consultflow-backend/internal/finance"
)

// Row keys. The top-level keys are the ones clients put in the expanded set.
const (
	KeyRevenue     = "revenue"
	KeySales       = "sales"
	KeyCOGS        = "cogs"
	KeyMaterials   = "materials"
	KeyLabor       = "labor"
	KeyGrossProfit = "gross-profit"
	KeyExpenses    = "expenses"
	KeyNetIncome   = "net-income"
)

const childIndent = "  "

var expenseChildren = []finance.Account{
	finance.AccountPayroll,
	finance.AccountRent,
	finance.AccountMarketing,
	finance.AccountOther,
}

// ComputePLRows synthesizes transactions from points, filters them and builds the report rows.
func ComputePLRows(points []finance.MonthlyFinancialPoint, filters finance.ReportFilters) []finance.PLRow {
	txns := ApplyFilters(Synthesize(points), filters)
	return BuildRows(txns, filters.Expanded)
}

// BuildRows aggregates transactions into the fixed P&L structure:
// Revenue, COGS, Gross Profit, Operating Expenses, Net Income, with child rows
// under the expandable sections present in expanded.
func BuildRows(txns []finance.SyntheticTransaction, expanded map[string]bool) []finance.PLRow {
	revenueTotal := sumWhere(txns, func(t finance.SyntheticTransaction) bool { return t.Type == finance.TypeRevenue })
	cogsTotal := sumWhere(txns, func(t finance.SyntheticTransaction) bool { return t.Type == finance.TypeCOGS })
	expenseTotal := sumWhere(txns, func(t finance.SyntheticTransaction) bool { return t.Type == finance.TypeExpense })

	rows := make([]finance.PLRow, 0, 12)

	rows = append(rows, finance.PLRow{
		Key:        KeyRevenue,
		Label:      "Revenue",
		Amount:     revenueTotal,
		Type:       finance.RowRevenue,
		Expandable: true,
	})
	if expanded[KeyRevenue] {
		rows = append(rows, finance.PLRow{
			Key:     KeySales,
			Label:   childIndent + "Sales",
			Amount:  sumWhere(txns, byAccount(finance.AccountSales)),
			Type:    finance.RowRevenue,
			Account: finance.AccountSales,
		})
	}

	rows = append(rows, finance.PLRow{
		Key:        KeyCOGS,
		Label:      "Cost of Goods Sold",
		Amount:     -cogsTotal,
		Type:       finance.RowCOGS,
		Expandable: true,
	})
	if expanded[KeyCOGS] {
		rows = append(rows,
			finance.PLRow{
				Key:     KeyMaterials,
				Label:   childIndent + "Materials",
				Amount:  -sumWhere(txns, byDescription("Materials")),
				Type:    finance.RowCOGS,
				Account: finance.AccountCOGS,
			},
			finance.PLRow{
				Key:     KeyLabor,
				Label:   childIndent + "Labor",
				Amount:  -sumWhere(txns, byDescription("Labor")),
				Type:    finance.RowCOGS,
				Account: finance.AccountCOGS,
			},
		)
	}

	rows = append(rows, finance.PLRow{
		Key:    KeyGrossProfit,
		Label:  "Gross Profit",
		Amount: revenueTotal - cogsTotal,
		Type:   finance.RowComputed,
	})

	rows = append(rows, finance.PLRow{
		Key:        KeyExpenses,
		Label:      "Operating Expenses",
		Amount:     -expenseTotal,
		Type:       finance.RowExpense,
		Expandable: true,
	})
	if expanded[KeyExpenses] {
		for _, account := range expenseChildren {
			total := sumWhere(txns, byAccount(account))
			if total <= 0 {
				continue
			}
			rows = append(rows, finance.PLRow{
				Key:     strings.ToLower(string(account)),
				Label:   childIndent + string(account),
				Amount:  -total,
				Type:    finance.RowExpense,
				Account: account,
			})
		}
	}

	rows = append(rows, finance.PLRow{
		Key:    KeyNetIncome,
		Label:  "Net Income",
		Amount: revenueTotal - cogsTotal - expenseTotal,
		Type:   finance.RowComputed,
	})

	return rows
}

func sumWhere(txns []finance.SyntheticTransaction, match func(finance.SyntheticTransaction) bool) int64 {
	var total int64
	for _, t := range txns {
		if match(t) {
			total += t.Amount
		}
	}
	return total
}

func byAccount(a finance.Account) func(finance.SyntheticTransaction) bool {
	return func(t finance.SyntheticTransaction) bool { return t.Account == a }
}

func byDescription(substr string) func(finance.SyntheticTransaction) bool {
	return func(t finance.SyntheticTransaction) bool { return strings.Contains(t.Description, substr) }
}
