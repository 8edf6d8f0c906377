package http

import (
	"net/http"
	"strings"

	"plutus/internal/auth"
	"plutus/internal/core"
)

type allocationRequest struct {
	Category  string `json:"category"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Priority  int    `json:"priority"`
	AlwaysAdd bool   `json:"alwaysAdd"`
}

func (s *Server) handleListAllocations(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	allocs, err := s.allocations.List(r.Context(), owner.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if allocs == nil {
		allocs = []core.Allocation{}
	}
	writeJSON(w, http.StatusOK, allocs)
}

func (s *Server) handlePutAllocation(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	var req allocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	alloc, err := s.allocations.Put(r.Context(), owner.ID, core.AllocationInput{
		Category:  req.Category,
		Type:      core.AllocationType(req.Type),
		Value:     req.Value,
		Priority:  req.Priority,
		AlwaysAdd: req.AlwaysAdd,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alloc)
}

func (s *Server) handleDeleteAllocation(w http.ResponseWriter, r *http.Request, owner auth.Owner) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing category parameter"})
		return
	}
	if err := s.allocations.Delete(r.Context(), owner.ID, category); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
