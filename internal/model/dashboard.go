package model

import (
	"github.com/shopspring/decimal"
)

// AccountTotals summarizes an owner's open receivables or payables
type AccountTotals struct {
	OverdueSum   decimal.Decimal `json:"overdue_sum"`
	DueTodaySum  decimal.Decimal `json:"due_today_sum"`
	PendingCount int64           `json:"pending_count"`
}

// DashboardSummary aggregates the owner's figures shown on the home screen
type DashboardSummary struct {
	ActiveClients   int64           `json:"active_clients"`
	ActiveProducts  int64           `json:"active_products"`
	MonthSalesCount int64           `json:"month_sales_count"`
	MonthSalesValue decimal.Decimal `json:"month_sales_value"`
	Receivables     AccountTotals   `json:"receivables"`
	Payables        AccountTotals   `json:"payables"`
}
