package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"consultflow-backend/internal/finance"
	"consultflow-backend/internal/loader"
	"consultflow-backend/internal/logger"
	"consultflow-backend/internal/money"
	"consultflow-backend/internal/period"
	"consultflow-backend/internal/reports"
)

type seriesLoader interface {
	Load(ctx context.Context, req loader.Request) loader.Result
}

type drillDowner interface {
	GetDrillDownData(ctx context.Context, companyID, accountCode string, from, to time.Time) (*finance.DrillDownData, error)
}

type accountLister interface {
	ListChartOfAccounts(ctx context.Context, companyID string) ([]finance.AccountEntry, error)
}

type companyDirectory interface {
	CompanyCurrency(ctx context.Context, companyID string) (string, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// api holds the dependencies of the HTTP handlers
type api struct {
	loader    seriesLoader
	drill     drillDowner
	accounts  accountLister
	companies companyDirectory
	db        pinger
	currency  string
	log       zerolog.Logger
	now       func() time.Time
}

// newRouter builds the gin engine with middleware and routes
func newRouter(a *api) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(a.log), gin.Recovery())

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", a.healthCheck)

	company := r.Group("/api/companies/:companyId")
	company.GET("/accounts", a.getAccounts)
	company.GET("/accounts/:code/drilldown", a.getDrillDown)
	company.GET("/reports/series", a.getSeries)
	company.GET("/reports/transactions", a.getTransactions)
	company.GET("/reports/pl", a.getPLReport)

	return r
}

// healthCheck handles the health check endpoint
func (a *api) healthCheck(c *gin.Context) {
	if err := a.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "consultflow-reporting",
	})
}

// getAccounts lists a company's chart of accounts
func (a *api) getAccounts(c *gin.Context) {
	accounts, err := a.accounts.ListChartOfAccounts(c.Request.Context(), c.Param("companyId"))
	if err != nil {
		a.requestLog(c).Error().Err(err).Msg("Failed to list accounts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "count": len(accounts)})
}

// getSeries returns the raw monthly series for a company and period
func (a *api) getSeries(c *gin.Context) {
	resp, ok := a.loadSeries(c)
	if !ok {
		return
	}
	c.JSON(statusFor(resp), resp)
}

// getTransactions returns the filtered synthetic transactions behind the report
func (a *api) getTransactions(c *gin.Context) {
	resp, ok := a.loadSeries(c)
	if !ok {
		return
	}
	filters := a.parseFilters(c)

	txns := reports.ApplyFilters(reports.Synthesize(resp.Data), filters)
	c.JSON(statusFor(resp), transactionsResponse{
		seriesResponse: resp,
		Transactions:   txns,
		Count:          len(txns),
	})
}

// getPLReport computes the profit and loss rows for a company and period
func (a *api) getPLReport(c *gin.Context) {
	resp, ok := a.loadSeries(c)
	if !ok {
		return
	}
	filters := a.parseFilters(c)

	rows := make([]rowView, 0)
	if resp.Error == "" {
		for _, row := range reports.ComputePLRows(resp.Data, filters) {
			rows = append(rows, rowView{PLRow: row, Formatted: money.Format(row.Amount, resp.Currency)})
		}
	}
	c.JSON(statusFor(resp), plResponse{seriesResponse: resp, Rows: rows})
}

// getDrillDown resolves one account's ledger, including child accounts for groups
func (a *api) getDrillDown(c *gin.Context) {
	from, to, err := a.drillDownDates(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := a.drill.GetDrillDownData(c.Request.Context(), c.Param("companyId"), c.Param("code"), from, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

// loadSeries resolves the request and runs the loader. It writes a 400 and
// returns false when the request itself is invalid.
func (a *api) loadSeries(c *gin.Context) (seriesResponse, bool) {
	req, err := a.reportRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return seriesResponse{}, false
	}

	res := a.loader.Load(c.Request.Context(), req)
	resp := seriesResponse{
		Data:     res.Points,
		Source:   res.Source,
		Currency: req.Currency,
		Range:    req.Range,
	}
	if res.Err != nil {
		resp.Data = []finance.MonthlyFinancialPoint{}
		resp.Error = res.Message()
		resp.Retryable = errors.Is(res.Err, loader.ErrDataUnavailable)
	}
	return resp, true
}

func (a *api) reportRequest(c *gin.Context) (loader.Request, error) {
	companyID := strings.TrimSpace(c.Param("companyId"))
	if companyID == "" {
		return loader.Request{}, fmt.Errorf("company id is required")
	}

	rng, err := period.Resolve(c.Query("range"), c.Query("from"), c.Query("to"), a.now())
	if err != nil {
		return loader.Request{}, err
	}

	currency, err := a.reportCurrency(c, companyID)
	if err != nil {
		return loader.Request{}, err
	}

	return loader.Request{CompanyID: companyID, Range: rng, Currency: currency}, nil
}

// reportCurrency is the company's own currency; stored amounts are in its
// minor units, so a different requested currency is rejected. When the company
// cannot be looked up the requested currency, or the default, is used.
func (a *api) reportCurrency(c *gin.Context, companyID string) (string, error) {
	requested := strings.ToUpper(strings.TrimSpace(c.Query("currency")))

	company, err := a.companies.CompanyCurrency(c.Request.Context(), companyID)
	if err != nil {
		a.requestLog(c).Warn().Err(err).Str("company_id", companyID).Msg("Company currency lookup failed")
		if requested != "" {
			return requested, nil
		}
		return a.currency, nil
	}

	company = strings.ToUpper(strings.TrimSpace(company))
	if requested != "" && requested != company {
		return "", fmt.Errorf("currency %s does not match company currency %s", requested, company)
	}
	return company, nil
}

func (a *api) parseFilters(c *gin.Context) finance.ReportFilters {
	filters, warnings := reports.ParseFilters(c.Request.URL.Query())
	for _, w := range warnings {
		a.requestLog(c).Debug().Err(w).Msg("Ignoring report filter")
	}
	return filters
}

// drillDownDates uses explicit from/to days when both are given, otherwise the range preset
func (a *api) drillDownDates(c *gin.Context) (time.Time, time.Time, error) {
	from, to := c.Query("from"), c.Query("to")
	if from != "" && to != "" && c.Query("range") == "" {
		f, err := period.ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		t, err := period.ParseDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return f, t, nil
	}

	rng, err := period.Resolve(c.Query("range"), from, to, a.now())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return rng.From, rng.To, nil
}

func (a *api) requestLog(c *gin.Context) *zerolog.Logger {
	log := logger.FromContext(c.Request.Context(), a.log)
	return &log
}

func statusFor(resp seriesResponse) int {
	if resp.Error != "" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
