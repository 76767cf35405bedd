package reports

import (
	"math"
	"testing"

	"consultflow-backend/internal/finance"
)

func TestSynthesize_ReconstructsAggregates(t *testing.T) {
	points := []finance.MonthlyFinancialPoint{
		{Date: "2024-01-01", Revenue: 100000, COGS: 40000, Expenses: 60000},
		{Date: "2024-02-01", Revenue: 100001, COGS: 33333, Expenses: 77777},
		{Date: "2024-03-01", Revenue: 1, COGS: 0, Expenses: 3},
		{Date: "2024-04-01", Revenue: math.MaxInt64, COGS: 500_000_000_000_000_000, Expenses: 9_000_000_000_000_000_000},
	}

	for _, p := range points {
		txns := Synthesize([]finance.MonthlyFinancialPoint{p})
		if len(txns) != 8 {
			t.Fatalf("%s: expected 8 transactions, got %d", p.Date, len(txns))
		}

		sums := map[finance.TransactionType]int64{}
		for _, tx := range txns {
			if tx.Amount < 0 {
				t.Errorf("%s: negative amount %+v", p.Date, tx)
			}
			if tx.Date != p.Date {
				t.Errorf("transaction date %s, want %s", tx.Date, p.Date)
			}
			sums[tx.Type] += tx.Amount
		}

		if sums[finance.TypeRevenue] != p.Revenue {
			t.Errorf("%s: revenue sum %d, want %d", p.Date, sums[finance.TypeRevenue], p.Revenue)
		}
		if sums[finance.TypeCOGS] != p.COGS {
			t.Errorf("%s: cogs sum %d, want %d", p.Date, sums[finance.TypeCOGS], p.COGS)
		}
		if sums[finance.TypeExpense] != p.Expenses {
			t.Errorf("%s: expense sum %d, want %d", p.Date, sums[finance.TypeExpense], p.Expenses)
		}
	}
}

func TestSynthesize_Splits(t *testing.T) {
	txns := Synthesize([]finance.MonthlyFinancialPoint{samplePoint})

	want := []struct {
		account     finance.Account
		description string
		amount      int64
		typ         finance.TransactionType
	}{
		{finance.AccountSales, "Product Sales", 70000, finance.TypeRevenue},
		{finance.AccountSales, "Service Revenue", 30000, finance.TypeRevenue},
		{finance.AccountCOGS, "Raw Materials", 24000, finance.TypeCOGS},
		{finance.AccountCOGS, "Direct Labor", 16000, finance.TypeCOGS},
		{finance.AccountPayroll, "Payroll", 30000, finance.TypeExpense},
		{finance.AccountRent, "Office Rent", 12000, finance.TypeExpense},
		{finance.AccountMarketing, "Marketing Campaigns", 12000, finance.TypeExpense},
		{finance.AccountOther, "Other Operating Expenses", 6000, finance.TypeExpense},
	}

	for i, w := range want {
		got := txns[i]
		if got.Account != w.account || got.Description != w.description || got.Amount != w.amount || got.Type != w.typ {
			t.Errorf("transaction %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestSynthesize_LargeTotals(t *testing.T) {
	txns := Synthesize([]finance.MonthlyFinancialPoint{
		{Date: "2024-01-01", Revenue: 9_000_000_000_000_000_000},
	})

	if txns[0].Amount != 6_300_000_000_000_000_000 {
		t.Errorf("product sales = %d, want 6300000000000000000", txns[0].Amount)
	}
	if txns[1].Amount != 2_700_000_000_000_000_000 {
		t.Errorf("service revenue = %d, want 2700000000000000000", txns[1].Amount)
	}
}

func TestSynthesize_IDsAreUniquePerCall(t *testing.T) {
	first := Synthesize([]finance.MonthlyFinancialPoint{samplePoint})
	second := Synthesize([]finance.MonthlyFinancialPoint{samplePoint})

	seen := map[string]bool{}
	for _, tx := range append(first, second...) {
		if tx.ID == "" {
			t.Fatal("expected a generated id")
		}
		if seen[tx.ID] {
			t.Errorf("duplicate id %s", tx.ID)
		}
		seen[tx.ID] = true
	}
}

func TestSynthesize_Empty(t *testing.T) {
	if got := Synthesize(nil); len(got) != 0 {
		t.Errorf("expected no transactions, got %d", len(got))
	}
}
