package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"consultflow-backend/internal/finance"
	"consultflow-backend/internal/loader"
	"consultflow-backend/internal/money"
)

type monthTotals struct {
	month    string
	revenue  decimal.Decimal
	cogs     decimal.Decimal
	expenses decimal.Decimal
	cashNet  decimal.Decimal
}

// MonthlySeries computes the P&L series in the database from ledger postings.
// It backs the loader's remote path in database reporting mode.
func (s *Store) MonthlySeries(ctx context.Context, req loader.Request) ([]finance.MonthlyFinancialPoint, error) {
	currency, err := s.CompanyCurrency(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	var opening decimal.Decimal
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(e.debit - e.credit), 0)
		FROM ledger_entries e
		JOIN accounts a ON a.company_id = e.company_id AND a.code = e.account_code
		WHERE e.company_id = $1 AND a.type = 'cash' AND e.entry_date < $2
	`, req.CompanyID, req.Range.From).Scan(&opening)
	if err != nil {
		return nil, fmt.Errorf("failed to query opening cash: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(date_trunc('month', e.entry_date), 'YYYY-MM-DD') AS month,
			COALESCE(SUM(CASE WHEN a.type = 'revenue' THEN e.credit - e.debit END), 0),
			COALESCE(SUM(CASE WHEN a.type = 'cogs' THEN e.debit - e.credit END), 0),
			COALESCE(SUM(CASE WHEN a.type = 'expense' THEN e.debit - e.credit END), 0),
			COALESCE(SUM(CASE WHEN a.type = 'cash' THEN e.debit - e.credit END), 0)
		FROM ledger_entries e
		JOIN accounts a ON a.company_id = e.company_id AND a.code = e.account_code
		WHERE e.company_id = $1 AND e.entry_date >= $2 AND e.entry_date < $3
		GROUP BY 1
		ORDER BY 1
	`, req.CompanyID, req.Range.From, req.Range.Until())
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly series: %w", err)
	}
	defer rows.Close()

	var months []monthTotals
	for rows.Next() {
		var m monthTotals
		if err := rows.Scan(&m.month, &m.revenue, &m.cogs, &m.expenses, &m.cashNet); err != nil {
			return nil, fmt.Errorf("failed to scan monthly totals: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return buildSeries(months, opening, currency), nil
}

// buildSeries converts monthly totals to points, carrying cash forward as a
// running balance from the opening amount. Negative values clamp to zero.
func buildSeries(months []monthTotals, opening decimal.Decimal, currency string) []finance.MonthlyFinancialPoint {
	points := make([]finance.MonthlyFinancialPoint, 0, len(months))
	cash := opening
	for _, m := range months {
		cash = cash.Add(m.cashNet)
		points = append(points, finance.MonthlyFinancialPoint{
			Date:     m.month,
			Revenue:  clampMinor(m.revenue, currency),
			COGS:     clampMinor(m.cogs, currency),
			Expenses: clampMinor(m.expenses, currency),
			Cash:     clampMinor(cash, currency),
		})
	}
	return points
}

func clampMinor(d decimal.Decimal, currency string) int64 {
	if d.IsNegative() {
		return 0
	}
	return money.ToMinor(d, currency)
}
