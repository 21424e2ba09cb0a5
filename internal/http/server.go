// Package http exposes the ledger engine over a thin JSON API. The
// handlers validate primitive inputs, call the service and map the
// error taxonomy to status codes; everything else lives below.
package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dejotaortega/finanzas-deiner/internal/cache"
	"github.com/dejotaortega/finanzas-deiner/internal/core"
	"github.com/dejotaortega/finanzas-deiner/internal/ledger"
	applog "github.com/dejotaortega/finanzas-deiner/internal/log"
)

func init() {
	// Amounts render as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Server struct {
	http.Server
	ledger *ledger.Service

	// Summary responses replay the whole log; cache them briefly and
	// drop the cache whenever a transaction lands.
	dailyCache   *cache.LRU[dailySummaryResponse]
	monthlyCache *cache.LRU[monthlySummaryResponse]
}

func NewServer(addr string, svc *ledger.Service, logger *applog.Logger) *Server {
	s := &Server{
		ledger:       svc,
		dailyCache:   cache.NewLRU[dailySummaryResponse](4, 30*time.Second),
		monthlyCache: cache.NewLRU[monthlySummaryResponse](4, 30*time.Second),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("PUT /api/accounts/{id}/balance", s.handleUpdateAccountBalance)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("POST /api/transactions", s.handleRecordTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)

	mux.HandleFunc("GET /api/summary/daily", s.handleDailySummary)
	mux.HandleFunc("GET /api/summary/monthly", s.handleMonthlySummary)
	mux.HandleFunc("GET /api/analysis", s.handleAnalysis)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	limiter := newRateLimiter(240)
	handler := applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(limiter.middleware(mux))

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

func (s *Server) invalidateSummaries() {
	s.dailyCache.Purge()
	s.monthlyCache.Purge()
}

type dailySummaryResponse struct {
	Days   []core.DaySummary `json:"days"`
	Totals core.Totals       `json:"totals"`
}

type monthlySummaryResponse struct {
	Months []core.MonthSummary `json:"months"`
	Totals core.Totals         `json:"totals"`
}
