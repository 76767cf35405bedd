package reports

import (
	"sort"

	"consultflow-backend/internal/finance"
	"consultflow-backend/internal/period"
)

// PLTotals is the P&L computed from a single trial balance.
type PLTotals struct {
	Revenue int64 `json:"revenue"`
	COGS    int64 `json:"cogs"`
	Opex    int64 `json:"opex"`
	Cash    int64 `json:"cash"`
}

// ComputePLFromTB classifies trial-balance lines through the chart of accounts.
// Revenue is credit-normal; COGS, expenses and cash are debit-normal. Lines on
// group accounts or on codes missing from the chart are ignored.
func ComputePLFromTB(coa []finance.AccountEntry, tb finance.TrialBalance) PLTotals {
	byCode := make(map[string]finance.AccountEntry, len(coa))
	for _, a := range coa {
		byCode[a.Code] = a
	}

	var t PLTotals
	for _, line := range tb.Lines {
		acc, ok := byCode[line.AccountCode]
		if !ok || acc.IsGroup {
			continue
		}
		net := line.Debit - line.Credit
		switch acc.Type {
		case finance.AccountTypeRevenue:
			t.Revenue -= net
		case finance.AccountTypeCOGS:
			t.COGS += net
		case finance.AccountTypeExpense:
			t.Opex += net
		case finance.AccountTypeCash:
			t.Cash += net
		}
	}
	return t
}

// SeriesFromTrialBalances builds one point per month that has a trial balance
// inside r. When a month has several trial balances the latest created wins.
// Negative aggregates are clamped to zero.
func SeriesFromTrialBalances(coa []finance.AccountEntry, tbs []finance.TrialBalance, r period.Range) []finance.MonthlyFinancialPoint {
	latest := make(map[string]finance.TrialBalance)
	for _, tb := range tbs {
		if !r.Contains(tb.Period) {
			continue
		}
		month := period.MonthStart(tb.Period).Format("2006-01-02")
		if cur, ok := latest[month]; !ok || tb.CreatedAt.After(cur.CreatedAt) {
			latest[month] = tb
		}
	}

	points := make([]finance.MonthlyFinancialPoint, 0, len(latest))
	for month, tb := range latest {
		t := ComputePLFromTB(coa, tb)
		points = append(points, finance.MonthlyFinancialPoint{
			Date:     month,
			Revenue:  nonNegative(t.Revenue),
			COGS:     nonNegative(t.COGS),
			Expenses: nonNegative(t.Opex),
			Cash:     nonNegative(t.Cash),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
