package api

import "strings"

// Scope is a Trading212 API-key permission scope. The broker expects the
// scope of a request in an X-Scope header alongside the base credentials.
type Scope string

const (
	ScopeOrdersExecute       Scope = "orders:execute"
	ScopeOrdersRead          Scope = "orders:read"
	ScopePiesRead            Scope = "pies:read"
	ScopePiesWrite           Scope = "pies:write"
	ScopePortfolio           Scope = "portfolio"
	ScopeAccount             Scope = "account"
	ScopeMetadata            Scope = "metadata"
	ScopeHistoryOrders       Scope = "history:orders"
	ScopeHistoryDividends    Scope = "history:dividends"
	ScopeHistoryTransactions Scope = "history:transactions"
)

// ResolveScope classifies a request by method and path into the scope the
// broker requires. Pure function; rule order matters: execution paths
// shadow the generic /orders match, and pies branch on the verb because
// the collection is read or written depending on it. Returns false when
// no scope applies (base credentials only, no X-Scope header).
func ResolveScope(method, path string) (Scope, bool) {
	p := strings.ToLower(path)
	m := strings.ToUpper(method)

	switch {
	case strings.Contains(p, "/orders/market"),
		strings.Contains(p, "/orders/limit"),
		strings.Contains(p, "/orders/stop"):
		return ScopeOrdersExecute, true

	case strings.Contains(p, "/orders"):
		return ScopeOrdersRead, true

	case strings.Contains(p, "/pies"):
		if m == "POST" || m == "PUT" || m == "DELETE" {
			return ScopePiesWrite, true
		}
		return ScopePiesRead, true

	case strings.Contains(p, "/portfolio"):
		return ScopePortfolio, true

	case strings.Contains(p, "/account/cash"),
		strings.Contains(p, "/account/info"):
		return ScopeAccount, true

	case strings.Contains(p, "/metadata/instruments"),
		strings.Contains(p, "/metadata/exchanges"):
		return ScopeMetadata, true

	case strings.Contains(p, "/history/orders"):
		return ScopeHistoryOrders, true
	case strings.Contains(p, "/history/dividends"):
		return ScopeHistoryDividends, true
	case strings.Contains(p, "/history/transactions"):
		return ScopeHistoryTransactions, true
	}

	return "", false
}
