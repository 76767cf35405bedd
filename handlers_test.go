package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"consultflow-backend/internal/cache"
	"consultflow-backend/internal/drilldown"
	"consultflow-backend/internal/finance"
	"consultflow-backend/internal/loader"
)

type mockLoader struct {
	result loader.Result
	req    loader.Request
}

func (m *mockLoader) Load(ctx context.Context, req loader.Request) loader.Result {
	m.req = req
	return m.result
}

type mockLedger struct {
	fail bool
}

func (m *mockLedger) GetAccount(ctx context.Context, companyID, code string) (finance.AccountEntry, error) {
	if m.fail {
		return finance.AccountEntry{}, errors.New("ledger offline")
	}
	return finance.AccountEntry{Code: code, Name: "Payroll", Type: finance.AccountTypeExpense}, nil
}

func (m *mockLedger) ListLedgerEntries(ctx context.Context, companyID, code string, from, to time.Time) ([]finance.LedgerEntry, error) {
	return []finance.LedgerEntry{
		{ID: "1", Date: from, Reference: "PAY-1", Description: "Payroll", Debit: 30000},
	}, nil
}

func (m *mockLedger) ListChildAccounts(ctx context.Context, companyID, parentCode string) ([]finance.AccountEntry, error) {
	return nil, nil
}

type mockAccounts struct {
	accounts []finance.AccountEntry
	err      error
}

func (m *mockAccounts) ListChartOfAccounts(ctx context.Context, companyID string) ([]finance.AccountEntry, error) {
	return m.accounts, m.err
}

type mockCompanies map[string]string

func (m mockCompanies) CompanyCurrency(ctx context.Context, companyID string) (string, error) {
	currency, ok := m[companyID]
	if !ok {
		return "", errors.New("company not found")
	}
	return currency, nil
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(ctx context.Context) error { return m.err }

var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestAPI(l *mockLoader, ledger *mockLedger) *api {
	return &api{
		loader:    l,
		drill:     drilldown.New(ledger, cache.NewMemory(), drilldown.Options{}, zerolog.Nop()),
		accounts:  &mockAccounts{accounts: []finance.AccountEntry{{Code: "4100", Name: "Product Sales", Type: finance.AccountTypeRevenue}}},
		companies: mockCompanies{"acme": "USD"},
		db:        mockPinger{},
		currency:  "USD",
		log:       zerolog.Nop(),
		now:       func() time.Time { return fixedNow },
	}
}

func doGet(t *testing.T, a *api, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	newRouter(a).ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	a := newTestAPI(&mockLoader{}, &mockLedger{})

	w := doGet(t, a, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}

	a.db = mockPinger{err: errors.New("connection refused")}
	if w := doGet(t, a, "/health"); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for failed ping, got %d", w.Code)
	}
}

func TestGetPLReport(t *testing.T) {
	l := &mockLoader{result: loader.Result{
		Points: []finance.MonthlyFinancialPoint{{Date: "2024-01-01", Revenue: 100000, COGS: 40000, Expenses: 60000}},
		Source: loader.SourceTrialBalance,
	}}
	a := newTestAPI(l, &mockLedger{})
	a.companies = mockCompanies{"acme": "eur"}

	w := doGet(t, a, "/api/companies/acme/reports/pl?range=ytd&currency=EUR&expand=cogs&min=abc")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data     []finance.MonthlyFinancialPoint `json:"data"`
		Source   string                          `json:"source"`
		Currency string                          `json:"currency"`
		Rows     []struct {
			Key       string `json:"key"`
			Amount    int64  `json:"amount"`
			Formatted string `json:"formatted"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if l.req.CompanyID != "acme" || l.req.Currency != "EUR" || l.req.Range.From.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("unexpected loader request: %+v", l.req)
	}
	if resp.Source != loader.SourceTrialBalance || resp.Currency != "EUR" || len(resp.Data) != 1 {
		t.Errorf("unexpected response header fields: %+v", resp)
	}

	wantKeys := []string{"revenue", "cogs", "materials", "labor", "gross-profit", "expenses", "net-income"}
	if len(resp.Rows) != len(wantKeys) {
		t.Fatalf("expected %d rows, got %d", len(wantKeys), len(resp.Rows))
	}
	for i, key := range wantKeys {
		if resp.Rows[i].Key != key {
			t.Errorf("row %d = %s, want %s", i, resp.Rows[i].Key, key)
		}
	}
	if resp.Rows[1].Formatted != "-€400.00" {
		t.Errorf("cogs formatted = %q, want -€400.00", resp.Rows[1].Formatted)
	}
}

func TestGetPLReport_CompanyCurrency(t *testing.T) {
	l := &mockLoader{result: loader.Result{
		Points: []finance.MonthlyFinancialPoint{{Date: "2024-01-01", Revenue: 150000}},
		Source: loader.SourceTrialBalance,
	}}
	a := newTestAPI(l, &mockLedger{})
	a.companies = mockCompanies{"tokyo": "JPY"}

	w := doGet(t, a, "/api/companies/tokyo/reports/pl")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Currency string `json:"currency"`
		Rows     []struct {
			Key       string `json:"key"`
			Formatted string `json:"formatted"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Currency != "JPY" || l.req.Currency != "JPY" {
		t.Errorf("expected JPY report, got response %s request %s", resp.Currency, l.req.Currency)
	}
	if resp.Rows[0].Key != "revenue" || resp.Rows[0].Formatted != "¥150,000" {
		t.Errorf("revenue row = %+v, want ¥150,000", resp.Rows[0])
	}
}

func TestGetPLReport_CurrencyMismatch(t *testing.T) {
	l := &mockLoader{}
	a := newTestAPI(l, &mockLedger{})

	w := doGet(t, a, "/api/companies/acme/reports/pl?currency=JPY")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if l.req.CompanyID != "" {
		t.Error("loader should not run for a mismatched currency")
	}
}

func TestGetPLReport_UnknownCompanyUsesDefaultCurrency(t *testing.T) {
	l := &mockLoader{result: loader.Result{
		Points: []finance.MonthlyFinancialPoint{{Date: "2024-01-01", Revenue: 150000}},
		Source: loader.SourceRemote,
	}}
	a := newTestAPI(l, &mockLedger{})

	w := doGet(t, a, "/api/companies/globex/reports/pl")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if l.req.Currency != "USD" {
		t.Errorf("expected default currency, got %s", l.req.Currency)
	}
}

func TestGetPLReport_DataUnavailable(t *testing.T) {
	l := &mockLoader{result: loader.Result{
		Points: []finance.MonthlyFinancialPoint{},
		Err:    fmt.Errorf("%w for company acme: remote down", loader.ErrDataUnavailable),
	}}
	a := newTestAPI(l, &mockLedger{})

	w := doGet(t, a, "/api/companies/acme/reports/pl")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	var resp struct {
		Data      []finance.MonthlyFinancialPoint `json:"data"`
		Rows      []json.RawMessage               `json:"rows"`
		Error     string                          `json:"error"`
		Retryable bool                            `json:"retryable"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Error == "" || !resp.Retryable {
		t.Errorf("expected retryable error, got %+v", resp)
	}
	if resp.Data == nil || len(resp.Data) != 0 || resp.Rows == nil || len(resp.Rows) != 0 {
		t.Errorf("expected empty data and rows, got %s", w.Body.String())
	}
}

func TestGetPLReport_BadRange(t *testing.T) {
	a := newTestAPI(&mockLoader{}, &mockLedger{})

	w := doGet(t, a, "/api/companies/acme/reports/pl?range=fortnight")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetTransactions(t *testing.T) {
	l := &mockLoader{result: loader.Result{
		Points: []finance.MonthlyFinancialPoint{{Date: "2024-01-01", Revenue: 100000, COGS: 40000, Expenses: 60000}},
		Source: loader.SourceRemote,
	}}
	a := newTestAPI(l, &mockLedger{})

	w := doGet(t, a, "/api/companies/acme/reports/transactions?type=Expense&max=12000")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp transactionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	// Rent 12000, Marketing 12000, Other 6000
	if resp.Count != 3 || len(resp.Transactions) != 3 {
		t.Errorf("expected 3 transactions, got %d", resp.Count)
	}
}

func TestGetSeries(t *testing.T) {
	l := &mockLoader{result: loader.Result{
		Points: []finance.MonthlyFinancialPoint{{Date: "2024-02-01", Revenue: 1, Cash: 2}},
		Source: loader.SourceRemote,
	}}
	a := newTestAPI(l, &mockLedger{})

	w := doGet(t, a, "/api/companies/acme/reports/series?from=2024-01&to=2024-02")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if l.req.Currency != "USD" {
		t.Errorf("expected default currency, got %s", l.req.Currency)
	}
	if got := l.req.Range.To.Format("2006-01-02"); got != "2024-02-29" {
		t.Errorf("range end = %s, want 2024-02-29", got)
	}
}

func TestGetAccounts(t *testing.T) {
	a := newTestAPI(&mockLoader{}, &mockLedger{})

	w := doGet(t, a, "/api/companies/acme/accounts")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	a.accounts = &mockAccounts{err: errors.New("boom")}
	if w := doGet(t, a, "/api/companies/acme/accounts"); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestGetDrillDown(t *testing.T) {
	a := newTestAPI(&mockLoader{}, &mockLedger{})

	w := doGet(t, a, "/api/companies/acme/accounts/6100/drilldown?from=2024-03-01&to=2024-03-31")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var data finance.DrillDownData
	if err := json.Unmarshal(w.Body.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.AccountCode != "6100" || data.Balance != 30000 || data.Fallback {
		t.Errorf("unexpected drill-down: %+v", data)
	}
	if len(data.Transactions) != 1 || data.Transactions[0].Date != "2024-03-01" {
		t.Errorf("unexpected transactions: %+v", data.Transactions)
	}
}

func TestGetDrillDown_Fallback(t *testing.T) {
	a := newTestAPI(&mockLoader{}, &mockLedger{fail: true})

	w := doGet(t, a, "/api/companies/acme/accounts/6100/drilldown?range=last-month")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var data finance.DrillDownData
	if err := json.Unmarshal(w.Body.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !data.Fallback {
		t.Error("expected fallback data when the ledger is offline")
	}
	if data.Transactions[0].Date != "2024-02-01" {
		t.Errorf("fallback should start at the range start, got %s", data.Transactions[0].Date)
	}
}

func TestGetDrillDown_BadDates(t *testing.T) {
	a := newTestAPI(&mockLoader{}, &mockLedger{})

	w := doGet(t, a, "/api/companies/acme/accounts/6100/drilldown?from=2024-03-31&to=2024-03-01")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for inverted dates, got %d", w.Code)
	}
	w = doGet(t, a, "/api/companies/acme/accounts/6100/drilldown?from=soon&to=later")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unparseable dates, got %d", w.Code)
	}
}
