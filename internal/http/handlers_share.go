package http

import (
	"net/http"

	"plutus/internal/auth"
	"plutus/internal/core"
)

type createShareRequest struct {
	Year          int `json:"year"`
	Month         int `json:"month"` // 0-based
	ExpiresInDays int `json:"expiresInDays,omitempty"`
}

type deleteAllSharesResponse struct {
	Deleted int64 `json:"deleted"`
}

// sharedViewResponse is the read-only month view behind a share token.
type sharedViewResponse struct {
	DisplayName string              `json:"displayName"`
	Year        int                 `json:"year"`
	Month       int                 `json:"month"`
	Summary     core.MonthlySummary `json:"summary"`
	Categories  core.CategorySummary `json:"categories"`
	Progress    core.ProgressReport `json:"progress"`
}

func (s *Server) handleCreateShareLink(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	var req createShareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	link, err := s.shares.Create(r.Context(), owner.ID, req.Year, req.Month, req.ExpiresInDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (s *Server) handleListShareLinks(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	links, err := s.shares.List(r.Context(), owner.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if links == nil {
		links = []core.ShareLink{}
	}
	writeJSON(w, http.StatusOK, links)
}

func (s *Server) handleDeleteShareLink(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	if err := s.shares.Delete(r.Context(), owner.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAllShareLinks(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	deleted, err := s.shares.DeleteAll(r.Context(), owner.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteAllSharesResponse{Deleted: deleted})
}

// handleSharedView serves the unauthenticated read-only view. The token
// decides the owner; year and month default to the link's but may be
// overridden by query parameters.
func (s *Server) handleSharedView(w http.ResponseWriter, r *http.Request) {
	shareID := r.PathValue("shareId")
	link, err := s.shares.Resolve(r.Context(), shareID)
	if err != nil {
		writeError(w, err)
		return
	}

	query := r.URL.Query()
	p := ParseMonthParams(query)
	year, month, tzOffset := link.Year, link.Month, p.TZOffsetMinutes
	if hasMonthParams(query) {
		year, month = p.Year, p.Month
	}

	owner, err := s.users.GetUserByID(r.Context(), link.OwnerID)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := s.transactions.MonthlySummary(r.Context(), link.OwnerID, year, month, tzOffset)
	if err != nil {
		writeError(w, err)
		return
	}
	categories, err := s.transactions.CategorySummary(r.Context(), link.OwnerID, year, month, tzOffset, core.Expense)
	if err != nil {
		writeError(w, err)
		return
	}
	if categories.Categories == nil {
		categories.Categories = []core.CategoryTotal{}
	}
	progress, err := s.budgets.Progress(r.Context(), link.OwnerID, year, month, tzOffset)
	if err != nil {
		writeError(w, err)
		return
	}
	if progress.Budgets == nil {
		progress.Budgets = []core.BudgetProgress{}
	}
	if progress.Unbudgeted == nil {
		progress.Unbudgeted = []core.UnbudgetedSpending{}
	}

	writeJSON(w, http.StatusOK, sharedViewResponse{
		DisplayName: owner.DisplayName,
		Year:        year,
		Month:       month,
		Summary:     summary,
		Categories:  categories,
		Progress:    progress,
	})
}
