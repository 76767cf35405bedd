package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"consultflow-backend/internal/finance"
	"consultflow-backend/internal/period"
	"consultflow-backend/internal/reports"
)

// ErrDataUnavailable means neither a trial balance nor the remote source could
// provide the series.
var ErrDataUnavailable = errors.New("financial data unavailable")

var errNoTrialBalance = errors.New("no trial balance for period")

// Source names reported in Result.Source.
const (
	SourceTrialBalance      = "trial_balance"
	SourceRemote            = "remote"
	SourceTrialBalanceRetry = "trial_balance_retry"
)

// TrialBalanceSource lists a company's trial balances and chart of accounts.
type TrialBalanceSource interface {
	ListTrialBalances(ctx context.Context, companyID string) ([]finance.TrialBalance, error)
	ListChartOfAccounts(ctx context.Context, companyID string) ([]finance.AccountEntry, error)
}

// RemoteSource returns a series computed outside this process.
type RemoteSource interface {
	MonthlySeries(ctx context.Context, req Request) ([]finance.MonthlyFinancialPoint, error)
}

// Request identifies the series to load.
type Request struct {
	CompanyID string
	Range     period.Range
	Currency  string
}

// Result carries either a full series or an error, never both.
type Result struct {
	Points []finance.MonthlyFinancialPoint `json:"data"`
	Source string                          `json:"source,omitempty"`
	Err    error                           `json:"-"`
}

// Message is the user-facing error text, empty on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Loader resolves monthly series, preferring trial balances over the remote source.
type Loader struct {
	tb     TrialBalanceSource
	remote RemoteSource
	log    zerolog.Logger
}

// New creates a Loader. remote may be nil, in which case only trial balances are used.
func New(tb TrialBalanceSource, remote RemoteSource, log zerolog.Logger) *Loader {
	return &Loader{
		tb:     tb,
		remote: remote,
		log:    log.With().Str("component", "loader").Logger(),
	}
}

// Load tries the trial balance, then the remote source, then the trial balance
// once more. It never returns partial data and never panics on source errors.
func (l *Loader) Load(ctx context.Context, req Request) Result {
	log := l.log.With().Str("company_id", req.CompanyID).Str("range", req.Range.String()).Logger()

	points, tbErr := l.fromTrialBalance(ctx, req)
	if tbErr == nil {
		return Result{Points: points, Source: SourceTrialBalance}
	}
	if !errors.Is(tbErr, errNoTrialBalance) {
		log.Warn().Err(tbErr).Msg("Trial balance path failed, trying remote source")
	} else {
		log.Debug().Msg("No trial balance in range, trying remote source")
	}

	remoteErr := errors.New("no remote source configured")
	if l.remote != nil {
		points, remoteErr = l.remote.MonthlySeries(ctx, req)
		if remoteErr == nil {
			return Result{Points: nonNil(points), Source: SourceRemote}
		}
		log.Warn().Err(remoteErr).Msg("Remote report source failed, retrying trial balance")
	}

	points, retryErr := l.fromTrialBalance(ctx, req)
	if retryErr == nil {
		return Result{Points: points, Source: SourceTrialBalanceRetry}
	}

	err := fmt.Errorf("%w for company %s: %v", ErrDataUnavailable, req.CompanyID, remoteErr)
	log.Error().Err(err).AnErr("trial_balance_error", retryErr).Msg("Failed to load financial data")
	return Result{Points: []finance.MonthlyFinancialPoint{}, Err: err}
}

func (l *Loader) fromTrialBalance(ctx context.Context, req Request) ([]finance.MonthlyFinancialPoint, error) {
	tbs, err := l.tb.ListTrialBalances(ctx, req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trial balances: %w", err)
	}
	if len(tbs) == 0 {
		return nil, errNoTrialBalance
	}

	coa, err := l.tb.ListChartOfAccounts(ctx, req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chart of accounts: %w", err)
	}

	points := reports.SeriesFromTrialBalances(coa, tbs, req.Range)
	if len(points) == 0 {
		return nil, errNoTrialBalance
	}
	return points, nil
}

func nonNil(points []finance.MonthlyFinancialPoint) []finance.MonthlyFinancialPoint {
	if points == nil {
		return []finance.MonthlyFinancialPoint{}
	}
	return points
}
