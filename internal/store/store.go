package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"consultflow-backend/internal/finance"
	"consultflow-backend/internal/money"
)

// ErrNotFound is returned when a company or account does not exist.
var ErrNotFound = errors.New("not found")

// Store reads ledger data from Postgres.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CompanyCurrency returns the reporting currency of a company.
func (s *Store) CompanyCurrency(ctx context.Context, companyID string) (string, error) {
	var currency string
	err := s.db.QueryRowContext(ctx, `SELECT currency FROM companies WHERE id = $1`, companyID).Scan(&currency)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("company %s: %w", companyID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query company: %w", err)
	}
	return currency, nil
}

// ListChartOfAccounts returns every account of a company ordered by code.
func (s *Store) ListChartOfAccounts(ctx context.Context, companyID string) ([]finance.AccountEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, type, parent_code, is_group
		FROM accounts
		WHERE company_id = $1
		ORDER BY code
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// GetAccount returns one chart-of-accounts entry.
func (s *Store) GetAccount(ctx context.Context, companyID, code string) (finance.AccountEntry, error) {
	var a finance.AccountEntry
	var parent sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT code, name, type, parent_code, is_group
		FROM accounts
		WHERE company_id = $1 AND code = $2
	`, companyID, code).Scan(&a.Code, &a.Name, &a.Type, &parent, &a.IsGroup)
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("account %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return a, fmt.Errorf("failed to query account: %w", err)
	}
	if parent.Valid {
		a.ParentCode = &parent.String
	}
	return a, nil
}

// ListChildAccounts returns the direct children of a group account.
func (s *Store) ListChildAccounts(ctx context.Context, companyID, parentCode string) ([]finance.AccountEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, type, parent_code, is_group
		FROM accounts
		WHERE company_id = $1 AND parent_code = $2
		ORDER BY code
	`, companyID, parentCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query child accounts: %w", err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func scanAccounts(rows *sql.Rows) ([]finance.AccountEntry, error) {
	accounts := make([]finance.AccountEntry, 0)
	for rows.Next() {
		var a finance.AccountEntry
		var parent sql.NullString
		if err := rows.Scan(&a.Code, &a.Name, &a.Type, &parent, &a.IsGroup); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if parent.Valid {
			p := parent.String
			a.ParentCode = &p
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ListTrialBalances returns every trial balance of a company with its lines.
func (s *Store) ListTrialBalances(ctx context.Context, companyID string) ([]finance.TrialBalance, error) {
	currency, err := s.CompanyCurrency(ctx, companyID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tb.id::text, tb.period, tb.created_at, l.account_code, l.debit, l.credit
		FROM trial_balances tb
		JOIN trial_balance_lines l ON l.trial_balance_id = tb.id
		WHERE tb.company_id = $1
		ORDER BY tb.period, tb.id, l.account_code
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balances: %w", err)
	}
	defer rows.Close()

	var tbs []finance.TrialBalance
	for rows.Next() {
		var (
			id            string
			periodEnd     time.Time
			createdAt     time.Time
			code          string
			debit, credit decimal.Decimal
		)
		if err := rows.Scan(&id, &periodEnd, &createdAt, &code, &debit, &credit); err != nil {
			return nil, fmt.Errorf("failed to scan trial balance line: %w", err)
		}
		if len(tbs) == 0 || tbs[len(tbs)-1].ID != id {
			tbs = append(tbs, finance.TrialBalance{
				ID:        id,
				CompanyID: companyID,
				Period:    periodEnd,
				CreatedAt: createdAt,
			})
		}
		tb := &tbs[len(tbs)-1]
		tb.Lines = append(tb.Lines, finance.TrialBalanceLine{
			AccountCode: code,
			Debit:       money.ToMinor(debit, currency),
			Credit:      money.ToMinor(credit, currency),
		})
	}
	return tbs, rows.Err()
}

// ListLedgerEntries returns an account's postings between from and to inclusive,
// ordered by date then reference.
func (s *Store) ListLedgerEntries(ctx context.Context, companyID, code string, from, to time.Time) ([]finance.LedgerEntry, error) {
	currency, err := s.CompanyCurrency(ctx, companyID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id::text, entry_date, reference, description, debit, credit, created_by
		FROM ledger_entries
		WHERE company_id = $1 AND account_code = $2 AND entry_date >= $3 AND entry_date <= $4
		ORDER BY entry_date, reference, id
	`, companyID, code, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]finance.LedgerEntry, 0)
	for rows.Next() {
		var (
			e             finance.LedgerEntry
			debit, credit decimal.Decimal
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.Reference, &e.Description, &debit, &credit, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.AccountCode = code
		e.Debit = money.ToMinor(debit, currency)
		e.Credit = money.ToMinor(credit, currency)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
