package main

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS companies (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		currency VARCHAR(3) NOT NULL DEFAULT 'USD',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS accounts (
		company_id VARCHAR(64) NOT NULL REFERENCES companies(id),
		code VARCHAR(32) NOT NULL,
		name VARCHAR(255) NOT NULL,
		type VARCHAR(20) NOT NULL,
		parent_code VARCHAR(32),
		is_group BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (company_id, code)
	);

	CREATE TABLE IF NOT EXISTS trial_balances (
		id SERIAL PRIMARY KEY,
		company_id VARCHAR(64) NOT NULL REFERENCES companies(id),
		period DATE NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS trial_balance_lines (
		id SERIAL PRIMARY KEY,
		trial_balance_id INTEGER NOT NULL REFERENCES trial_balances(id) ON DELETE CASCADE,
		account_code VARCHAR(32) NOT NULL,
		debit DECIMAL(14,2) NOT NULL DEFAULT 0,
		credit DECIMAL(14,2) NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS ledger_entries (
		id SERIAL PRIMARY KEY,
		company_id VARCHAR(64) NOT NULL REFERENCES companies(id),
		account_code VARCHAR(32) NOT NULL,
		entry_date DATE NOT NULL,
		reference VARCHAR(64) NOT NULL DEFAULT '',
		description VARCHAR(255) NOT NULL DEFAULT '',
		debit DECIMAL(14,2) NOT NULL DEFAULT 0,
		credit DECIMAL(14,2) NOT NULL DEFAULT 0,
		created_by VARCHAR(100) NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_entries_account_date ON ledger_entries(company_id, account_code, entry_date);
	CREATE INDEX IF NOT EXISTS idx_trial_balances_company_period ON trial_balances(company_id, period);
`

// Demo company with a small chart of accounts
const seedSQL = `
	INSERT INTO companies (id, name, currency) VALUES
		('demo', 'Demo Consulting Ltd', 'USD')
	ON CONFLICT (id) DO NOTHING;

	INSERT INTO accounts (company_id, code, name, type, parent_code, is_group) VALUES
		('demo', '1000', 'Assets', 'asset', NULL, TRUE),
		('demo', '1010', 'Operating Bank', 'cash', '1000', FALSE),
		('demo', '4000', 'Revenue', 'revenue', NULL, TRUE),
		('demo', '4100', 'Product Sales', 'revenue', '4000', FALSE),
		('demo', '4200', 'Service Revenue', 'revenue', '4000', FALSE),
		('demo', '5000', 'Cost of Goods Sold', 'cogs', NULL, TRUE),
		('demo', '5100', 'Raw Materials', 'cogs', '5000', FALSE),
		('demo', '5200', 'Direct Labor', 'cogs', '5000', FALSE),
		('demo', '6000', 'Operating Expenses', 'expense', NULL, TRUE),
		('demo', '6100', 'Payroll', 'expense', '6000', FALSE),
		('demo', '6200', 'Rent', 'expense', '6000', FALSE),
		('demo', '6300', 'Marketing', 'expense', '6000', FALSE),
		('demo', '6900', 'Other Operating Expenses', 'expense', '6000', FALSE)
	ON CONFLICT (company_id, code) DO NOTHING;
`

func ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func seedDefaultCompany(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, seedSQL); err != nil {
		return fmt.Errorf("failed to seed demo company: %w", err)
	}
	return nil
}

// Seed six months of ledger postings and three monthly trial balances for the demo company.
// Idempotent: will only run if the demo company has no ledger entries.
func seedDemoData(ctx context.Context, db *sql.DB) error {
	if err := seedDefaultCompany(ctx, db); err != nil {
		return err
	}

	var cnt int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE company_id = 'demo'`).Scan(&cnt); err != nil {
		return fmt.Errorf("checking ledger entries count: %w", err)
	}
	if cnt > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Every posting has its bank counterpart so the demo ledger balances
	const demoLedger = `
	INSERT INTO ledger_entries (company_id, account_code, entry_date, reference, description, debit, credit, created_by)
	SELECT 'demo', v.code,
		(date_trunc('month', CURRENT_DATE) - make_interval(months => m))::date + v.day_offset,
		v.ref || '-' || to_char(date_trunc('month', CURRENT_DATE) - make_interval(months => m), 'YYYYMM'),
		v.description, v.debit, v.credit, 'seed'
	FROM generate_series(0, 5) AS m
	CROSS JOIN (VALUES
		('4100', 2, 'INV', 'Product invoice batch', 0.00, 7000.00),
		('1010', 2, 'INV', 'Product invoice receipts', 7000.00, 0.00),
		('4200', 9, 'SRV', 'Advisory retainer', 0.00, 3000.00),
		('1010', 9, 'SRV', 'Advisory retainer receipt', 3000.00, 0.00),
		('5100', 4, 'PO', 'Materials purchase', 2400.00, 0.00),
		('5200', 14, 'LAB', 'Contract labor', 1600.00, 0.00),
		('1010', 14, 'PO', 'Supplier payments', 0.00, 4000.00),
		('6100', 24, 'PAY', 'Monthly payroll', 3000.00, 0.00),
		('6200', 0, 'RENT', 'Office rent', 1200.00, 0.00),
		('6300', 11, 'MKT', 'Campaign spend', 1200.00, 0.00),
		('6900', 19, 'OPEX', 'Software and sundries', 600.00, 0.00),
		('1010', 24, 'PAY', 'Operating payments', 0.00, 6000.00)
	) AS v(code, day_offset, ref, description, debit, credit)
	`
	if _, err := tx.ExecContext(ctx, demoLedger); err != nil {
		return fmt.Errorf("seeding demo ledger: %w", err)
	}

	// Month-end trial balances for the last three closed months: P&L accounts
	// carry the month's activity, cash accounts the cumulative balance
	const demoTrialBalances = `
	INSERT INTO trial_balances (company_id, period)
	SELECT 'demo', (date_trunc('month', CURRENT_DATE) - make_interval(months => m) + interval '1 month - 1 day')::date
	FROM generate_series(1, 3) AS m
	`
	if _, err := tx.ExecContext(ctx, demoTrialBalances); err != nil {
		return fmt.Errorf("seeding demo trial balances: %w", err)
	}

	const demoTrialBalanceLines = `
	INSERT INTO trial_balance_lines (trial_balance_id, account_code, debit, credit)
	SELECT tb.id, e.account_code, SUM(e.debit), SUM(e.credit)
	FROM trial_balances tb
	JOIN ledger_entries e ON e.company_id = tb.company_id AND e.entry_date <= tb.period
	JOIN accounts a ON a.company_id = e.company_id AND a.code = e.account_code
	WHERE tb.company_id = 'demo'
		AND (a.type = 'cash' OR e.entry_date >= date_trunc('month', tb.period))
	GROUP BY tb.id, e.account_code
	`
	if _, err := tx.ExecContext(ctx, demoTrialBalanceLines); err != nil {
		return fmt.Errorf("seeding demo trial balance lines: %w", err)
	}

	return tx.Commit()
}
