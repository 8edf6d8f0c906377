package http

import (
	"net/http"

	"plutus/internal/auth"
	"plutus/internal/core"
	"plutus/internal/services"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	p := ParseMonthParams(r.URL.Query())
	budgets, err := s.budgets.List(r.Context(), owner.ID, p.Year, p.Month)
	if err != nil {
		writeError(w, err)
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	var in services.UpsertBudgetInput
	if err := decodeJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	budget, err := s.budgets.Upsert(r.Context(), owner.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	if err := s.budgets.Delete(r.Context(), owner.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	p := ParseMonthParams(r.URL.Query())
	report, err := s.budgets.Progress(r.Context(), owner.ID, p.Year, p.Month, p.TZOffsetMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	if report.Budgets == nil {
		report.Budgets = []core.BudgetProgress{}
	}
	if report.Unbudgeted == nil {
		report.Unbudgeted = []core.UnbudgetedSpending{}
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	p := ParseMonthParams(r.URL.Query())
	summary, err := s.budgets.ProgressSummary(r.Context(), owner.ID, p.Year, p.Month, p.TZOffsetMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
