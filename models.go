package main

import (
	"consultflow-backend/internal/finance"
	"consultflow-backend/internal/period"
)

// seriesResponse wraps a loaded monthly series and the loader's error state
type seriesResponse struct {
	Data      []finance.MonthlyFinancialPoint `json:"data"`
	Source    string                          `json:"source,omitempty"`
	Currency  string                          `json:"currency"`
	Range     period.Range                    `json:"range"`
	Error     string                          `json:"error,omitempty"`
	Retryable bool                            `json:"retryable,omitempty"`
}

// rowView is a P&L row with its amount rendered in the report currency
type rowView struct {
	finance.PLRow
	Formatted string `json:"formatted"`
}

// plResponse is the profit and loss report
type plResponse struct {
	seriesResponse
	Rows []rowView `json:"rows"`
}

// transactionsResponse lists the filtered synthetic transactions
type transactionsResponse struct {
	seriesResponse
	Transactions []finance.SyntheticTransaction `json:"transactions"`
	Count        int                            `json:"count"`
}
