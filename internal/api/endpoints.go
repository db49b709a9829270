package api

import (
	"fmt"
	"time"

	"github.com/rickgao/t212-bridge/internal/ratelimit"
)

// Base URLs for the two account environments. Live is never selected
// implicitly; see config validation.
const (
	LiveBaseURL     = "https://live.trading212.com"
	PracticeBaseURL = "https://api-practice.trading212.com"
)

// Equity API paths.
const (
	pathOrders         = "/api/v0/equity/orders"
	pathOrderMarket    = "/api/v0/equity/orders/market"
	pathOrderLimit     = "/api/v0/equity/orders/limit"
	pathOrderStop      = "/api/v0/equity/orders/stop"
	pathOrderStopLimit = "/api/v0/equity/orders/stop_limit"
	pathAccountCash    = "/api/v0/equity/account/cash"
	pathAccountInfo    = "/api/v0/equity/account/info"
	pathPortfolio      = "/api/v0/equity/portfolio"
	pathInstruments    = "/api/v0/equity/metadata/instruments"
	pathHistoryOrders  = "/api/v0/equity/history/orders"
)

// Endpoint budget ids. Every client call names the bucket it draws from;
// config may override the numbers but not invent new ids.
const (
	EndpointOrdersExecute       = "orders_execute"
	EndpointOrdersCancel        = "orders_cancel"
	EndpointOrdersList          = "orders_list"
	EndpointOrderDetails        = "order_details"
	EndpointPortfolio           = "portfolio"
	EndpointAccountCash         = "account_cash"
	EndpointAccountInfo         = "account_info"
	EndpointMetadata            = "metadata"
	EndpointHistoryOrders       = "history_orders"
	EndpointHistoryDividends    = "history_dividends"
	EndpointHistoryTransactions = "history_transactions"
	EndpointPiesRead            = "pies_read"
	EndpointPiesWrite           = "pies_write"
)

// DefaultBudgets returns the broker's documented per-route limits. These
// are sliding windows: at most N requests within any window, not N per
// calendar interval.
func DefaultBudgets() []ratelimit.Budget {
	return []ratelimit.Budget{
		{ID: EndpointOrdersExecute, Limit: 1, Interval: 1 * time.Second},
		{ID: EndpointOrdersCancel, Limit: 1, Interval: 1 * time.Second},
		{ID: EndpointOrdersList, Limit: 1, Interval: 5 * time.Second},
		{ID: EndpointOrderDetails, Limit: 1, Interval: 1 * time.Second},
		{ID: EndpointPortfolio, Limit: 1, Interval: 5 * time.Second},
		{ID: EndpointAccountCash, Limit: 1, Interval: 2 * time.Second},
		{ID: EndpointAccountInfo, Limit: 1, Interval: 30 * time.Second},
		{ID: EndpointMetadata, Limit: 1, Interval: 30 * time.Second},
		{ID: EndpointHistoryOrders, Limit: 6, Interval: time.Minute},
		{ID: EndpointHistoryDividends, Limit: 6, Interval: time.Minute},
		{ID: EndpointHistoryTransactions, Limit: 6, Interval: time.Minute},
		{ID: EndpointPiesRead, Limit: 1, Interval: 30 * time.Second},
		{ID: EndpointPiesWrite, Limit: 1, Interval: 5 * time.Second},
	}
}

// MergeBudgets applies per-endpoint overrides onto the default table. An
// override keyed by an id the table does not carry is a config mistake
// and fails loudly rather than silently metering nothing.
func MergeBudgets(overrides map[string]ratelimit.Budget) ([]ratelimit.Budget, error) {
	budgets := DefaultBudgets()
	known := make(map[string]int, len(budgets))
	for i, b := range budgets {
		known[b.ID] = i
	}

	for id, o := range overrides {
		i, ok := known[id]
		if !ok {
			return nil, fmt.Errorf("unknown endpoint id %q in rate limit overrides", id)
		}
		budgets[i].Limit = o.Limit
		budgets[i].Interval = o.Interval
	}
	return budgets, nil
}
