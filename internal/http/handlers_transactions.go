package http

import (
	"net/http"

	"plutus/internal/auth"
	"plutus/internal/core"
	"plutus/internal/services"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	p := ParseMonthParams(r.URL.Query())
	txs, err := s.transactions.ListMonth(r.Context(), owner.ID, p.Year, p.Month, p.TZOffsetMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	var in services.CreateTransactionInput
	if err := decodeJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	tx, err := s.transactions.Create(r.Context(), owner.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	if err := s.transactions.Delete(r.Context(), owner.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	p := ParseMonthParams(r.URL.Query())
	summary, err := s.transactions.MonthlySummary(r.Context(), owner.ID, p.Year, p.Month, p.TZOffsetMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	p := ParseMonthParams(r.URL.Query())
	typeFilter := core.TransactionType(r.URL.Query().Get("type"))
	if typeFilter != "" && !typeFilter.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unknown transaction type"})
		return
	}

	summary, err := s.transactions.CategorySummary(r.Context(), owner.ID, p.Year, p.Month, p.TZOffsetMinutes, typeFilter)
	if err != nil {
		writeError(w, err)
		return
	}
	if summary.Categories == nil {
		summary.Categories = []core.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSavingsSummary(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	// Omitted month params mean all-time.
	year, month := -1, 0
	if hasMonthParams(r.URL.Query()) {
		p := ParseMonthParams(r.URL.Query())
		year, month = p.Year, p.Month
	}

	summary, err := s.transactions.SavingsSummary(r.Context(), owner.ID, year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
