package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dejotaortega/finanzas-deiner/internal/core"
	"github.com/dejotaortega/finanzas-deiner/internal/ledger"
)

// ---- accounts ----

type createAccountRequest struct {
	Name           string `json:"name"`
	InitialBalance string `json:"initial_balance"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("decode request: %v: %w", err, core.ErrValidation))
		return
	}

	// Lenient by design: an unparsable balance seeds the account at 0.
	account, err := s.ledger.CreateAccount(r.Context(), req.Name, core.ParseCurrency(req.InitialBalance))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := s.ledger.CurrentGlobalBalance(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Dashboard access opens the day: make sure today has a snapshot.
	snap, err := s.ledger.BootstrapToday(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accounts":       accounts,
		"total_balance":  total,
		"today_snapshot": snap,
	})
}

type updateBalanceRequest struct {
	Balance string `json:"balance"`
}

func (s *Server) handleUpdateAccountBalance(w http.ResponseWriter, r *http.Request) {
	var req updateBalanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("decode request: %v: %w", err, core.ErrValidation))
		return
	}
	if err := s.ledger.UpdateAccountBalance(r.Context(), r.PathValue("id"), req.Balance); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- transactions ----

type recordTransactionRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Account     string `json:"account"`
	Category    string `json:"category"`
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("decode request: %v: %w", err, core.ErrValidation))
		return
	}

	date, err := parseDateOrToday(req.Date)
	if err != nil {
		writeError(w, r, fmt.Errorf("%v: %w", err, core.ErrValidation))
		return
	}

	tx, err := s.ledger.RecordTransaction(r.Context(), ledger.RecordInput{
		Date:        date,
		Description: req.Description,
		RawAmount:   req.Amount,
		Kind:        core.ParseKind(req.Kind),
		AccountName: req.Account,
		Category:    req.Category,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if kind := q.Get("kind"); kind != "" {
		txs, err := s.ledger.ListTransactionsByKind(r.Context(), core.Kind(kind))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, txs)
		return
	}

	date, err := parseDateOrToday(q.Get("date"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%v: %w", err, core.ErrValidation))
		return
	}
	txs, err := s.ledger.ListTransactionsForDate(r.Context(), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// ---- reporting ----

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.dailyCache.Get("daily"); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	days, totals, err := s.ledger.DailySummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := dailySummaryResponse{Days: days, Totals: totals}
	s.dailyCache.Set("daily", resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.monthlyCache.Get("monthly"); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	months, totals, err := s.ledger.MonthlySummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := monthlySummaryResponse{Months: months, Totals: totals}
	s.monthlyCache.Set("monthly", resp)
	writeJSON(w, http.StatusOK, resp)
}

type periodReport struct {
	From         core.Date                  `json:"from"`
	To           core.Date                  `json:"to"`
	Transactions []core.FilteredTransaction `json:"transactions"`
	Summary      core.FilterSummary         `json:"summary"`
}

// handleAnalysis runs the filter once for the primary period and,
// when a compare period is named, a second time over the same log.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	primary, err := s.analyzePeriod(r, q.Get("period"), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := map[string]any{"primary": primary}
	if compareTag := q.Get("compare_period"); compareTag != "" {
		compare, err := s.analyzePeriod(r, compareTag, q.Get("compare_from"), q.Get("compare_to"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp["comparison"] = compare
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) analyzePeriod(r *http.Request, tag, fromStr, toStr string) (periodReport, error) {
	var from, to core.Date
	var err error
	if fromStr != "" {
		if from, err = core.ParseDate(fromStr); err != nil {
			return periodReport{}, fmt.Errorf("%v: %w", err, core.ErrValidation)
		}
	}
	if toStr != "" {
		if to, err = core.ParseDate(toStr); err != nil {
			return periodReport{}, fmt.Errorf("%v: %w", err, core.ErrValidation)
		}
	}

	q := r.URL.Query()
	kindFilter := q.Get("kind")
	if kindFilter == "" {
		kindFilter = core.KindAll
	}
	var categories []string
	if raw := q.Get("categories"); raw != "" {
		categories = strings.Split(raw, ",")
	}

	matches, summary, bounds, err := s.ledger.Analyze(r.Context(), tag, from, to, kindFilter, categories)
	if err != nil {
		return periodReport{}, err
	}
	return periodReport{
		From:         bounds.From,
		To:           bounds.To,
		Transactions: matches,
		Summary:      summary,
	}, nil
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	catalog := s.ledger.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"expense": catalog.Expense,
		"income":  catalog.Income,
	})
}
