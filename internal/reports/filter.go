package reports

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"consultflow-backend/internal/finance"
)

// ErrFilterParse marks a filter bound that could not be parsed. Such bounds are
// treated as absent; callers log the error and never surface it.
var ErrFilterParse = errors.New("filter parse warning")

type boundKind int

const (
	lowerBound boundKind = iota
	upperBound
)

// ParseMinAmount parses an inclusive lower bound. Fractional values round up.
func ParseMinAmount(s string) (*int64, error) {
	return parseBound(s, lowerBound)
}

// ParseMaxAmount parses an inclusive upper bound. Fractional values round down.
func ParseMaxAmount(s string) (*int64, error) {
	return parseBound(s, upperBound)
}

// Empty input is absent with no error, "0" is a real bound of zero, anything
// non-numeric is absent and reported as ErrFilterParse.
func parseBound(s string, kind boundKind) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: amount bound %q is not a number", ErrFilterParse, s)
	}
	if kind == lowerBound {
		d = d.Ceil()
	} else {
		d = d.Floor()
	}
	if d.GreaterThan(maxBound) || d.LessThan(minBound) {
		return nil, fmt.Errorf("%w: amount bound %q is out of range", ErrFilterParse, s)
	}
	v := d.IntPart()
	return &v, nil
}

var (
	maxBound = decimal.NewFromInt(math.MaxInt64)
	minBound = decimal.NewFromInt(math.MinInt64)
)

// ParseFilters builds ReportFilters from query parameters
// (q, min, max, account, type, expand). Parse warnings are returned alongside
// the filters; the filters are always usable.
func ParseFilters(values url.Values) (finance.ReportFilters, []error) {
	var warnings []error
	f := finance.ReportFilters{
		Query:    values.Get("q"),
		Account:  values.Get("account"),
		Type:     values.Get("type"),
		Expanded: map[string]bool{},
	}

	var err error
	if f.MinAmount, err = ParseMinAmount(values.Get("min")); err != nil {
		warnings = append(warnings, err)
	}
	if f.MaxAmount, err = ParseMaxAmount(values.Get("max")); err != nil {
		warnings = append(warnings, err)
	}

	for _, raw := range values["expand"] {
		for _, key := range strings.Split(raw, ",") {
			if key = strings.TrimSpace(key); key != "" {
				f.Expanded[key] = true
			}
		}
	}
	return f, warnings
}

// ApplyFilters keeps the transactions that satisfy every active filter.
func ApplyFilters(txns []finance.SyntheticTransaction, f finance.ReportFilters) []finance.SyntheticTransaction {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	account := strings.TrimSpace(f.Account)
	typ := strings.TrimSpace(f.Type)
	out := make([]finance.SyntheticTransaction, 0, len(txns))

	for _, t := range txns {
		if query != "" && !strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		if f.MinAmount != nil && t.Amount < *f.MinAmount {
			continue
		}
		if f.MaxAmount != nil && t.Amount > *f.MaxAmount {
			continue
		}
		if isActive(account) && !strings.EqualFold(string(t.Account), account) {
			continue
		}
		if isActive(typ) && !strings.EqualFold(string(t.Type), typ) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isActive(v string) bool {
	return v != "" && !strings.EqualFold(v, finance.FilterAll)
}
